package candidate

import "testing"

func TestStatusLabel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status Status
		expect string
	}{
		{StatusNew, "New"},
		{StatusInterviewScheduled, "Interview Scheduled"},
		{StatusOfferExtended, "Offer Extended"},
		{Status("custom__stage"), "Custom  Stage"},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			t.Parallel()
			if got := tt.status.Label(); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestStatusKnownAndActive(t *testing.T) {
	if !StatusOnboarding.Known() {
		t.Fatalf("onboarding must be a known status")
	}
	if StatusHired.Known() {
		t.Fatalf("hired is not part of the closed status set")
	}
	if StatusRejected.Active() || StatusHired.Active() {
		t.Fatalf("rejected and hired must not count as active")
	}
	if !StatusScreening.Active() {
		t.Fatalf("screening must count as active")
	}
}

func TestFlatContainsEveryColumn(t *testing.T) {
	progress := 40
	flat := Record{ID: 7, Name: "Jane", EngagementScore: 55, OnboardingProgress: &progress}.Flat()

	for _, col := range FlatColumns {
		if _, ok := flat[col]; !ok {
			t.Fatalf("column %q missing from flat row", col)
		}
	}
	if len(flat) != len(FlatColumns) {
		t.Fatalf("expected %d columns, got %d", len(FlatColumns), len(flat))
	}
	if flat["id"] != "7" || flat["engagementScore"] != "55" || flat["onboardingProgress"] != "40" {
		t.Fatalf("unexpected flat values: %+v", flat)
	}
}
