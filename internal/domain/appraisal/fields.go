package appraisal

// Mode is the perspective a form is opened in.
type Mode string

const (
	ModeAppraisee Mode = "appraisee"
	ModeAppraiser Mode = "appraiser"
	ModeView      Mode = "view"
)

// Form sections addressable by the permission table.
const (
	SectionEmployeeInfo     = "employeeInfo"
	SectionAppraiserInfo    = "appraiserInfo"
	SectionTrainingReceived = "trainingReceived"
	SectionKeyResultAreas   = "keyResultAreas"
	SectionObjectives       = "objectives"
	SectionMidYearReview    = "midYearReview"
	SectionEndOfYearReview  = "endOfYearReview"
	SectionCoreCompetencies = "coreCompetencies"
	SectionNonCore          = "nonCoreCompetencies"
	SectionOverall          = "overallAssessment"
	SectionAppraiserComment = "appraiserComments"
	SectionTrainingPlan     = "trainingDevelopmentPlan"
	SectionDecision         = "assessmentDecision"
	SectionAppraiseeComment = "appraiseeComments"
	SectionHODComments      = "hodComments"
)

var Sections = []string{
	SectionEmployeeInfo,
	SectionAppraiserInfo,
	SectionTrainingReceived,
	SectionKeyResultAreas,
	SectionObjectives,
	SectionMidYearReview,
	SectionEndOfYearReview,
	SectionCoreCompetencies,
	SectionNonCore,
	SectionOverall,
	SectionAppraiserComment,
	SectionTrainingPlan,
	SectionDecision,
	SectionAppraiseeComment,
	SectionHODComments,
}

// appraiserSections are hidden entirely from the appraisee while the review
// is in progress.
var appraiserSections = map[string]bool{
	SectionAppraiserInfo:    true,
	SectionCoreCompetencies: true,
	SectionNonCore:          true,
	SectionOverall:          true,
	SectionAppraiserComment: true,
	SectionTrainingPlan:     true,
	SectionDecision:         true,
	SectionHODComments:      true,
}

type FieldRule struct {
	Visible  bool `json:"visible"`
	Editable bool `json:"editable"`
}

// SectionRule resolves visibility and editability for one section given the
// viewing mode and the current workflow status.
func SectionRule(section string, mode Mode, status string) FieldRule {
	visible := mode != ModeAppraisee || !appraiserSections[section]
	if mode == ModeView {
		return FieldRule{Visible: true}
	}
	if status == StatusClosed || status == StatusReviewed {
		return FieldRule{Visible: visible}
	}

	editable := false
	switch mode {
	case ModeAppraisee:
		// Appraisee-authored sections freeze once the form leaves draft.
		editable = visible && status == StatusDraft
	case ModeAppraiser:
		if appraiserSections[section] {
			editable = status == StatusDraft || status == StatusPendingReview || status == StatusSubmitted
		} else {
			editable = status == StatusDraft
		}
	}
	return FieldRule{Visible: visible, Editable: editable}
}

// SectionRules evaluates the whole table once, for serving to clients.
func SectionRules(mode Mode, status string) map[string]FieldRule {
	rules := make(map[string]FieldRule, len(Sections))
	for _, section := range Sections {
		rules[section] = SectionRule(section, mode, status)
	}
	return rules
}

// ModeFor derives the editing mode an actor gets on an appraisal.
func (a *Appraisal) ModeFor(actor Actor) Mode {
	switch {
	case a.IsAppraiser(actor):
		return ModeAppraiser
	case a.IsEmployee(actor):
		return ModeAppraisee
	default:
		return ModeView
	}
}

// MergeEditable copies only the sections editable in the given mode/status
// from the incoming document onto the base, enforcing section permissions
// server-side. Derived fields are recomputed by the caller afterwards.
func MergeEditable(base Document, incoming Document, mode Mode, status string) Document {
	out := base
	for _, section := range Sections {
		if !SectionRule(section, mode, status).Editable {
			continue
		}
		copySection(&out, incoming, section)
	}
	return out
}

func copySection(dst *Document, src Document, section string) {
	switch section {
	case SectionEmployeeInfo:
		dst.EmployeeInfo = src.EmployeeInfo
	case SectionAppraiserInfo:
		dst.AppraiserInfo = src.AppraiserInfo
	case SectionTrainingReceived:
		dst.TrainingReceived = src.TrainingReceived
	case SectionKeyResultAreas:
		dst.KeyResultAreas = src.KeyResultAreas
	case SectionObjectives:
		dst.Objectives = src.Objectives
		dst.Competencies = src.Competencies
		dst.RoleSkills = src.RoleSkills
		dst.TrainingNeeds = src.TrainingNeeds
	case SectionMidYearReview:
		dst.MidYearReview = src.MidYearReview
	case SectionEndOfYearReview:
		dst.EndOfYearReview = src.EndOfYearReview
	case SectionCoreCompetencies:
		dst.CoreCompetencies = src.CoreCompetencies
	case SectionNonCore:
		dst.NonCore = src.NonCore
	case SectionOverall:
		// Only leaf-bearing inputs pass through; the overall block itself is
		// derived and recomputed after the merge.
	case SectionAppraiserComment:
		dst.AppraiserComments = src.AppraiserComments
		dst.AppraiserSig = src.AppraiserSig
	case SectionTrainingPlan:
		dst.TrainingPlan = src.TrainingPlan
	case SectionDecision:
		dst.Decision = src.Decision
	case SectionAppraiseeComment:
		dst.AppraiseeComments = src.AppraiseeComments
		dst.AppraiseeSig = src.AppraiseeSig
	case SectionHODComments:
		dst.HODComments = src.HODComments
		dst.HODName = src.HODName
		dst.HODSignature = src.HODSignature
		dst.HODDate = src.HODDate
	}
}
