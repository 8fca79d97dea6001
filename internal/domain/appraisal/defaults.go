package appraisal

const (
	coreLeafWeight    = 0.3
	nonCoreLeafWeight = 0.1
)

// coreGroupLeaves mirrors Section 5 of the paper form: nine core competency
// groups of three rated behaviours each.
var coreGroupLeaves = map[string][]string{
	"organizationManagement":      {"planOrganizeWork", "workSystematically", "manageOthers"},
	"innovationStrategicThinking": {"supportChange", "thinkBroadly", "originalityThinking"},
	"leadershipDecisionMaking":    {"initiateAction", "acceptResponsibility", "exerciseJudgment"},
	"developingImproving":         {"organizationDevelopment", "customerSatisfaction", "personnelDevelopment"},
	"communication":               {"communicateDecisions", "negotiateManageConflict", "relateNetwork"},
	"jobKnowledgeTechnicalSkills": {"mentalPhysicalSkills", "crossFunctionalAwareness", "buildingApplyingExpertise"},
	"supportingCooperating":       {"workEffectively", "showSupport", "adhereEthics"},
	"maximizingProductivity":      {"motivateInspire", "acceptChallenges", "managePressure"},
	"budgetCostManagement":        {"financialAwareness", "businessProcesses", "resultBasedActions"},
}

var nonCoreGroupLeaves = map[string][]string{
	"developStaff":          {"developOthers", "provideGuidance"},
	"personalDevelopment":   {"eagernessForDevelopment", "innerDrive"},
	"deliveringResults":     {"customerSatisfaction", "qualityService"},
	"followingInstructions": {"regulations", "customerFeedback"},
	"respectCommitment":     {"respectSuperiors", "commitmentWork"},
	"teamWork":              {"functionInTeam", "workInTeam"},
}

func DefaultCoreCompetencies() CompetencySet {
	return defaultSet(coreGroupLeaves, coreLeafWeight)
}

func DefaultNonCoreCompetencies() CompetencySet {
	return defaultSet(nonCoreGroupLeaves, nonCoreLeafWeight)
}

func defaultSet(layout map[string][]string, weight float64) CompetencySet {
	groups := make(map[string]CompetencyGroup, len(layout))
	for name, leaves := range layout {
		items := make(map[string]CompetencyItem, len(leaves))
		for _, leaf := range leaves {
			items[leaf] = CompetencyItem{Weight: weight}
		}
		groups[name] = CompetencyGroup{Items: items}
	}
	return CompetencySet{Groups: groups}
}

// NewDocument returns an empty form with the full competency scaffolding and
// all derived fields at their recomputed zero values.
func NewDocument() Document {
	doc := Document{
		TrainingReceived: []TrainingEntry{},
		KeyResultAreas:   []KeyResultArea{},
		MidYearReview: MidYearReview{
			Targets:      []MidYearTarget{},
			Competencies: []MidYearCompetency{},
		},
		EndOfYearReview:  EndOfYearReview{Targets: []EndOfYearTarget{}},
		CoreCompetencies: DefaultCoreCompetencies(),
		NonCore:          DefaultNonCoreCompetencies(),
		Decision:         DecisionSuitable,
	}
	Recompute(&doc)
	return doc
}
