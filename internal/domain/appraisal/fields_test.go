package appraisal

import "testing"

func TestAppraiserSectionsHiddenFromAppraisee(t *testing.T) {
	for _, section := range []string{
		SectionAppraiserInfo,
		SectionCoreCompetencies,
		SectionNonCore,
		SectionOverall,
		SectionAppraiserComment,
		SectionTrainingPlan,
		SectionDecision,
		SectionHODComments,
	} {
		rule := SectionRule(section, ModeAppraisee, StatusDraft)
		if rule.Visible {
			t.Fatalf("section %s should be hidden in appraisee mode", section)
		}
		if rule.Editable {
			t.Fatalf("section %s should not be editable in appraisee mode", section)
		}
	}
}

func TestAppraiseeSectionsFreezeAfterDraft(t *testing.T) {
	if !SectionRule(SectionKeyResultAreas, ModeAppraisee, StatusDraft).Editable {
		t.Fatal("key result areas should be editable in draft")
	}
	for _, status := range []string{StatusPendingReview, StatusSubmitted, StatusReviewed, StatusClosed} {
		if SectionRule(SectionKeyResultAreas, ModeAppraisee, status).Editable {
			t.Fatalf("key result areas editable by appraisee at status %s", status)
		}
	}
}

func TestAppraiserScoringEditableDuringReview(t *testing.T) {
	for _, status := range []string{StatusDraft, StatusPendingReview, StatusSubmitted} {
		if !SectionRule(SectionCoreCompetencies, ModeAppraiser, status).Editable {
			t.Fatalf("core competencies should be editable by appraiser at %s", status)
		}
	}
	for _, status := range []string{StatusReviewed, StatusClosed} {
		if SectionRule(SectionCoreCompetencies, ModeAppraiser, status).Editable {
			t.Fatalf("core competencies editable at terminal status %s", status)
		}
	}
}

func TestViewModeSeesEverythingEditsNothing(t *testing.T) {
	for _, section := range Sections {
		rule := SectionRule(section, ModeView, StatusSubmitted)
		if !rule.Visible || rule.Editable {
			t.Fatalf("view mode rule wrong for %s: %+v", section, rule)
		}
	}
}

func TestMergeEditableStripsAppraiserSectionsFromAppraisee(t *testing.T) {
	base := NewDocument()
	incoming := NewDocument()
	incoming.AppraiserComments = "smuggled"
	incoming.Decision = DecisionOutstanding
	incoming.AppraiseeComments = "my honest view"
	group := incoming.CoreCompetencies.Groups["communication"]
	item := group.Items["relateNetwork"]
	item.Score = 5
	group.Items["relateNetwork"] = item
	incoming.CoreCompetencies.Groups["communication"] = group

	merged := MergeEditable(base, incoming, ModeAppraisee, StatusDraft)

	if merged.AppraiserComments != "" {
		t.Fatal("appraisee write leaked into appraiser comments")
	}
	if merged.Decision != DecisionSuitable {
		t.Fatalf("appraisee write changed the assessment decision: %q", merged.Decision)
	}
	if merged.CoreCompetencies.Groups["communication"].Items["relateNetwork"].Score != 0 {
		t.Fatal("appraisee write changed a core competency score")
	}
	if merged.AppraiseeComments != "my honest view" {
		t.Fatal("appraisee's own comments were dropped")
	}
}

func TestMergeEditableAppraiserScoring(t *testing.T) {
	base := NewDocument()
	incoming := NewDocument()
	group := incoming.CoreCompetencies.Groups["communication"]
	for leaf, item := range group.Items {
		item.Score = 4
		group.Items[leaf] = item
	}
	incoming.CoreCompetencies.Groups["communication"] = group
	incoming.KeyResultAreas = []KeyResultArea{{ID: "k1", Area: "late edit"}}

	merged := MergeEditable(base, incoming, ModeAppraiser, StatusPendingReview)

	if merged.CoreCompetencies.Groups["communication"].Items["relateNetwork"].Score != 4 {
		t.Fatal("appraiser scoring was not applied")
	}
	// Planning sections belong to the appraisee and are frozen by now.
	if len(merged.KeyResultAreas) != 0 {
		t.Fatal("appraiser modified frozen appraisee section")
	}
}
