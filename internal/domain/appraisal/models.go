package appraisal

import "time"

type Appraisal struct {
	ID          string    `json:"id"`
	EmployeeID  string    `json:"employeeId"`
	AppraiserID string    `json:"appraiserId"`
	PeriodStart time.Time `json:"periodStart"`
	PeriodEnd   time.Time `json:"periodEnd"`
	Status      string    `json:"status"`
	CreatedBy   string    `json:"createdBy"`
	Version     int       `json:"version"`
	Document    Document  `json:"document"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Document is the structured body of the appraisal form. Derived fields
// (group totals, averages, the overall assessment) are recomputed on every
// write and never trusted from client input.
type Document struct {
	EmployeeInfo      EmployeeInfo    `json:"employeeInfo"`
	AppraiserInfo     AppraiserInfo   `json:"appraiserInfo"`
	TrainingReceived  []TrainingEntry `json:"trainingReceived"`
	KeyResultAreas    []KeyResultArea `json:"keyResultAreas"`
	Objectives        []Objective     `json:"objectives,omitempty"`
	Competencies      []RatedItem     `json:"competencies,omitempty"`
	RoleSkills        []RatedItem     `json:"roleSkills,omitempty"`
	TrainingNeeds     []string        `json:"trainingNeeds,omitempty"`
	MidYearReview     MidYearReview   `json:"midYearReview"`
	EndOfYearReview   EndOfYearReview `json:"endOfYearReview"`
	CoreCompetencies  CompetencySet   `json:"coreCompetencies"`
	NonCore           CompetencySet   `json:"nonCoreCompetencies"`
	Overall           Overall         `json:"overallAssessment"`
	AppraiserComments string          `json:"appraiserComments"`
	TrainingPlan      string          `json:"trainingDevelopmentPlan"`
	Decision          string          `json:"assessmentDecision"`
	AppraiseeComments string          `json:"appraiseeComments"`
	HODComments       string          `json:"hodComments"`
	HODName           string          `json:"hodName"`
	HODSignature      string          `json:"hodSignature"`
	HODDate           string          `json:"hodDate"`
	AppraiserSig      Signature       `json:"appraiserSignature"`
	AppraiseeSig      Signature       `json:"appraiseeSignature"`
}

type EmployeeInfo struct {
	Title           string `json:"title"`
	Surname         string `json:"surname"`
	FirstName       string `json:"firstName"`
	OtherNames      string `json:"otherNames,omitempty"`
	Gender          string `json:"gender"`
	Grade           string `json:"grade"`
	Position        string `json:"position"`
	Department      string `json:"department"`
	AppointmentDate string `json:"appointmentDate"`
}

type AppraiserInfo struct {
	Title      string `json:"title"`
	Surname    string `json:"surname"`
	FirstName  string `json:"firstName"`
	OtherNames string `json:"otherNames,omitempty"`
	Position   string `json:"position"`
}

type TrainingEntry struct {
	Institution string `json:"institution"`
	Date        string `json:"date"`
	Programme   string `json:"programme"`
}

type KeyResultArea struct {
	ID                string `json:"id"`
	Area              string `json:"area"`
	Targets           string `json:"targets"`
	ResourcesRequired string `json:"resourcesRequired"`
}

type Objective struct {
	ID          string  `json:"id"`
	Description string  `json:"desc"`
	Target      string  `json:"target"`
	Achievement float64 `json:"achievement"`
}

type RatedItem struct {
	Name    string  `json:"name"`
	Rating  float64 `json:"rating"`
	Comment string  `json:"comment,omitempty"`
}

type MidYearReview struct {
	Targets            []MidYearTarget     `json:"targets"`
	Competencies       []MidYearCompetency `json:"competencies"`
	ReviewDate         string              `json:"reviewDate"`
	AppraiserSignature string              `json:"appraiserSignature"`
	AppraiseeSignature string              `json:"appraiseeSignature"`
}

type MidYearTarget struct {
	ID             string `json:"id"`
	Target         string `json:"target"`
	ProgressReview string `json:"progressReview"`
	Remarks        string `json:"remarks"`
}

type MidYearCompetency struct {
	ID             string `json:"id"`
	Competency     string `json:"competency"`
	ProgressReview string `json:"progressReview"`
	Remarks        string `json:"remarks"`
}

type EndOfYearReview struct {
	Targets       []EndOfYearTarget `json:"targets"`
	TotalScore    float64           `json:"totalScore"`
	AverageScore  float64           `json:"averageScore"`
	WeightedScore float64           `json:"weightedScore"`
}

type EndOfYearTarget struct {
	ID                    string  `json:"id"`
	Target                string  `json:"target"`
	PerformanceAssessment string  `json:"performanceAssessment"`
	Weight                float64 `json:"weight"`
	Score                 float64 `json:"score"`
	Comments              string  `json:"comments"`
}

type CompetencyItem struct {
	Weight float64 `json:"weight"`
	Score  float64 `json:"score"`
}

type CompetencyGroup struct {
	Items    map[string]CompetencyItem `json:"items"`
	Total    float64                   `json:"total"`
	Average  float64                   `json:"average"`
	Comments string                    `json:"comments,omitempty"`
}

type CompetencySet struct {
	Groups  map[string]CompetencyGroup `json:"groups"`
	Average float64                    `json:"average"`
}

type Overall struct {
	PerformanceScore    float64 `json:"performanceScore"`
	CoreCompetencies    float64 `json:"coreCompetenciesScore"`
	NonCoreCompetencies float64 `json:"nonCoreCompetenciesScore"`
	Total               float64 `json:"overallTotal"`
	Percentage          float64 `json:"overallPercentage"`
	Rating              int     `json:"overallRating"`
	RatingDescription   string  `json:"ratingDescription"`
}

type Signature struct {
	Name string `json:"name"`
	Date string `json:"date"`
}
