package appraisal

import "sort"

// Rating bands for the overall percentage. Thresholds are inclusive lower
// bounds, checked in descending order.
var ratingBands = []struct {
	Threshold   float64
	Rating      int
	Description string
}{
	{80, 5, "Exceptional, exceeded expectations"},
	{65, 4, "Exceeded Expectations"},
	{50, 3, "Met all Expectations"},
	{41, 2, "Below Expectation"},
	{0, 1, "Unacceptable"},
}

func RatingForPercentage(percentage float64) (int, string) {
	for _, band := range ratingBands {
		if percentage >= band.Threshold {
			return band.Rating, band.Description
		}
	}
	last := ratingBands[len(ratingBands)-1]
	return last.Rating, last.Description
}

// Recompute folds every derived field in the document from its leaf scores.
// It is idempotent: applying it twice yields the same document.
func Recompute(doc *Document) {
	recomputeSet(&doc.CoreCompetencies)
	recomputeSet(&doc.NonCore)
	recomputeEndOfYear(&doc.EndOfYearReview)

	doc.Overall.PerformanceScore = doc.EndOfYearReview.WeightedScore
	doc.Overall.CoreCompetencies = doc.CoreCompetencies.Average
	doc.Overall.NonCoreCompetencies = doc.NonCore.Average
	doc.Overall.Total = doc.Overall.PerformanceScore + doc.Overall.CoreCompetencies + doc.Overall.NonCoreCompetencies
	doc.Overall.Percentage = doc.Overall.Total / (overallComponents * 5) * 100
	doc.Overall.Rating, doc.Overall.RatingDescription = RatingForPercentage(doc.Overall.Percentage)
}

func recomputeSet(set *CompetencySet) {
	if len(set.Groups) == 0 {
		set.Average = 0
		return
	}
	sum := 0.0
	for name, group := range set.Groups {
		group.Total, group.Average = groupScores(group.Items)
		set.Groups[name] = group
		sum += group.Average
	}
	set.Average = sum / float64(len(set.Groups))
}

func groupScores(items map[string]CompetencyItem) (total, average float64) {
	weightSum := 0.0
	for _, item := range items {
		total += item.Score * item.Weight
		weightSum += item.Weight
	}
	if weightSum == 0 {
		return total, 0
	}
	return total, total / weightSum
}

func recomputeEndOfYear(review *EndOfYearReview) {
	total := 0.0
	for _, target := range review.Targets {
		total += target.Score
	}
	review.TotalScore = total
	if len(review.Targets) == 0 {
		review.AverageScore = 0
	} else {
		review.AverageScore = total / float64(len(review.Targets))
	}
	review.WeightedScore = review.AverageScore * EndOfYearContribution
}

// GroupNames returns the set's group names in stable order, used by the PDF
// renderer and anything else that iterates the map deterministically.
func (s CompetencySet) GroupNames() []string {
	names := make([]string, 0, len(s.Groups))
	for name := range s.Groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (g CompetencyGroup) ItemNames() []string {
	names := make([]string, 0, len(g.Items))
	for name := range g.Items {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
