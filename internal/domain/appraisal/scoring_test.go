package appraisal

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestGroupScores(t *testing.T) {
	items := map[string]CompetencyItem{
		"planOrganizeWork":   {Weight: 0.3, Score: 4},
		"workSystematically": {Weight: 0.3, Score: 4},
		"manageOthers":       {Weight: 0.3, Score: 4},
	}
	total, average := groupScores(items)
	if !almostEqual(total, 3.6) {
		t.Fatalf("expected total 3.6, got %v", total)
	}
	if !almostEqual(average, 4) {
		t.Fatalf("expected average 4, got %v", average)
	}
}

func TestGroupScoresZeroWeight(t *testing.T) {
	items := map[string]CompetencyItem{
		"planOrganizeWork": {Weight: 0, Score: 5},
	}
	total, average := groupScores(items)
	if total != 0 || average != 0 {
		t.Fatalf("expected zeros for zero weight, got total=%v average=%v", total, average)
	}
}

func TestCoreAverageIsMeanOfGroupAverages(t *testing.T) {
	doc := NewDocument()
	for name, group := range doc.CoreCompetencies.Groups {
		for leaf, item := range group.Items {
			item.Score = 4
			group.Items[leaf] = item
		}
		doc.CoreCompetencies.Groups[name] = group
	}
	Recompute(&doc)

	if !almostEqual(doc.CoreCompetencies.Average, 4) {
		t.Fatalf("expected core average 4, got %v", doc.CoreCompetencies.Average)
	}
	for name, group := range doc.CoreCompetencies.Groups {
		if !almostEqual(group.Average, 4) {
			t.Fatalf("group %s: expected average 4, got %v", name, group.Average)
		}
		if !almostEqual(group.Total, group.Average*0.9) {
			t.Fatalf("group %s: total %v inconsistent with average %v", name, group.Total, group.Average)
		}
	}
}

func TestEndOfYearTotals(t *testing.T) {
	review := EndOfYearReview{Targets: []EndOfYearTarget{
		{Weight: 5, Score: 4},
		{Weight: 5, Score: 3},
		{Weight: 5, Score: 5},
	}}
	recomputeEndOfYear(&review)

	if !almostEqual(review.TotalScore, 12) {
		t.Fatalf("expected total 12, got %v", review.TotalScore)
	}
	if !almostEqual(review.AverageScore, 4) {
		t.Fatalf("expected average 4, got %v", review.AverageScore)
	}
	if !almostEqual(review.WeightedScore, 2.4) {
		t.Fatalf("expected weighted 2.4, got %v", review.WeightedScore)
	}
}

func TestEndOfYearNoTargets(t *testing.T) {
	review := EndOfYearReview{}
	recomputeEndOfYear(&review)
	if review.TotalScore != 0 || review.AverageScore != 0 || review.WeightedScore != 0 {
		t.Fatalf("expected zeros for empty review, got %+v", review)
	}
}

func TestRatingBandBoundaries(t *testing.T) {
	cases := []struct {
		percentage float64
		rating     int
	}{
		{100, 5},
		{80, 5},
		{79, 4},
		{65, 4},
		{64, 3},
		{50, 3},
		{49, 2},
		{41, 2},
		{40, 1},
		{0, 1},
	}
	for _, tc := range cases {
		rating, _ := RatingForPercentage(tc.percentage)
		if rating != tc.rating {
			t.Fatalf("percentage %v: expected rating %d, got %d", tc.percentage, tc.rating, rating)
		}
	}
}

func TestRatingDescriptions(t *testing.T) {
	_, top := RatingForPercentage(95)
	if top != "Exceptional, exceeded expectations" {
		t.Fatalf("unexpected description for top band: %q", top)
	}
	_, bottom := RatingForPercentage(10)
	if bottom != "Unacceptable" {
		t.Fatalf("unexpected description for bottom band: %q", bottom)
	}
}

func TestRecomputeOverall(t *testing.T) {
	doc := NewDocument()
	// Core averages near 3.9 and non-core 4.25 alongside a performance score
	// of 4 should land at 81% and the top rating band.
	for name, group := range doc.CoreCompetencies.Groups {
		for leaf, item := range group.Items {
			item.Score = 3.9
			group.Items[leaf] = item
		}
		doc.CoreCompetencies.Groups[name] = group
	}
	for name, group := range doc.NonCore.Groups {
		for leaf, item := range group.Items {
			item.Score = 4.25
			group.Items[leaf] = item
		}
		doc.NonCore.Groups[name] = group
	}
	doc.EndOfYearReview.Targets = []EndOfYearTarget{{Score: 4 / EndOfYearContribution}}
	Recompute(&doc)

	if !almostEqual(doc.Overall.Total, 12.15) {
		t.Fatalf("expected overall total 12.15, got %v", doc.Overall.Total)
	}
	if !almostEqual(doc.Overall.Percentage, 81) {
		t.Fatalf("expected 81%%, got %v", doc.Overall.Percentage)
	}
	if doc.Overall.Rating != 5 {
		t.Fatalf("expected rating 5 at 81%%, got %d", doc.Overall.Rating)
	}
}

func TestRecomputeIdempotent(t *testing.T) {
	doc := NewDocument()
	doc.EndOfYearReview.Targets = []EndOfYearTarget{{Score: 4}, {Score: 5}}
	for name, group := range doc.CoreCompetencies.Groups {
		i := 0
		for leaf, item := range group.Items {
			item.Score = float64(3 + i%3)
			group.Items[leaf] = item
			i++
		}
		doc.CoreCompetencies.Groups[name] = group
	}

	Recompute(&doc)
	first := doc.Overall
	firstCore := doc.CoreCompetencies.Average

	Recompute(&doc)
	if doc.Overall != first {
		t.Fatalf("recompute not idempotent: %+v vs %+v", first, doc.Overall)
	}
	if !almostEqual(doc.CoreCompetencies.Average, firstCore) {
		t.Fatalf("core average drifted: %v vs %v", firstCore, doc.CoreCompetencies.Average)
	}
}

func TestStoredAggregatesNeverTrusted(t *testing.T) {
	doc := NewDocument()
	doc.Overall.Percentage = 99
	doc.Overall.Rating = 5
	doc.CoreCompetencies.Average = 5
	Recompute(&doc)

	if doc.Overall.Percentage != 0 || doc.Overall.Rating != 1 {
		t.Fatalf("hand-edited aggregates survived recompute: %+v", doc.Overall)
	}
	if doc.CoreCompetencies.Average != 0 {
		t.Fatalf("hand-edited core average survived recompute: %v", doc.CoreCompetencies.Average)
	}
}

func TestDefaultDocumentShape(t *testing.T) {
	doc := NewDocument()
	if len(doc.CoreCompetencies.Groups) != 9 {
		t.Fatalf("expected 9 core groups, got %d", len(doc.CoreCompetencies.Groups))
	}
	if len(doc.NonCore.Groups) != 6 {
		t.Fatalf("expected 6 non-core groups, got %d", len(doc.NonCore.Groups))
	}
	for name, group := range doc.CoreCompetencies.Groups {
		if len(group.Items) != 3 {
			t.Fatalf("core group %s: expected 3 items, got %d", name, len(group.Items))
		}
		for leaf, item := range group.Items {
			if !almostEqual(item.Weight, 0.3) {
				t.Fatalf("core leaf %s.%s: expected weight 0.3, got %v", name, leaf, item.Weight)
			}
		}
	}
	for name, group := range doc.NonCore.Groups {
		if len(group.Items) != 2 {
			t.Fatalf("non-core group %s: expected 2 items, got %d", name, len(group.Items))
		}
	}
}
