package appraisal

const (
	StatusDraft         = "draft"
	StatusPendingReview = "pending-review"
	StatusSubmitted     = "submitted"
	StatusReviewed      = "reviewed"
	StatusClosed        = "closed"

	CreatedByAppraisee = "appraisee"
	CreatedByAppraiser = "appraiser"

	DecisionOutstanding = "outstanding"
	DecisionSuitable    = "suitable"
	DecisionLikelyReady = "likely_ready"
	DecisionNotReady    = "not_ready"
	DecisionUnlikely    = "unlikely"
)

var Statuses = []string{
	StatusDraft,
	StatusPendingReview,
	StatusSubmitted,
	StatusReviewed,
	StatusClosed,
}

var AssessmentDecisions = []string{
	DecisionOutstanding,
	DecisionSuitable,
	DecisionLikelyReady,
	DecisionNotReady,
	DecisionUnlikely,
}

// EndOfYearContribution is the fixed share of the overall result carried by
// the end-of-year average, column (M) = (A) x 0.6 on the paper form.
const EndOfYearContribution = 0.6

// overallComponents is the number of 0-5 components summed into the overall
// total: performance score, core average, non-core average.
const overallComponents = 3

func ValidStatus(status string) bool {
	for _, candidate := range Statuses {
		if candidate == status {
			return true
		}
	}
	return false
}

func ValidDecision(decision string) bool {
	for _, candidate := range AssessmentDecisions {
		if candidate == decision {
			return true
		}
	}
	return false
}
