package tracker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/recruit-tracker/internal/alerts"
	"github.com/spigell/recruit-tracker/internal/candidate"
	"github.com/spigell/recruit-tracker/internal/clock"
	"github.com/spigell/recruit-tracker/internal/ingest"
	"github.com/spigell/recruit-tracker/internal/store"
)

// Wednesday.
var now = time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)

type fixedRand int

func (f fixedRand) IntN(int) int { return int(f) }

type failingDrafter struct{}

func (failingDrafter) Draft(context.Context, candidate.Record) (string, error) {
	return "", errors.New("model unavailable")
}

type rowsSource struct {
	rows []candidate.RawRow
	err  error
}

func (r rowsSource) Rows(context.Context) ([]candidate.RawRow, error) { return r.rows, r.err }

func newTracker(t *testing.T, mutate func(*Options)) *Tracker {
	t.Helper()
	opts := Options{
		Clock: clock.Fixed(now),
		Rand:  fixedRand(7),
	}
	if mutate != nil {
		mutate(&opts)
	}
	return New(opts)
}

func daysAgo(n int) string {
	return now.AddDate(0, 0, -n).Format(candidate.DateLayout)
}

func TestImportScoresStaleCandidate(t *testing.T) {
	t.Parallel()
	tr := newTracker(t, nil)

	imported, err := tr.Import(context.Background(), rowsSource{rows: []candidate.RawRow{
		{"Full Name": "Jane Doe", "Applied Date": daysAgo(7), "Email": "jane@example.com"},
	}})
	require.NoError(t, err)
	require.Len(t, imported, 1)

	rec := imported[0]
	assert.Equal(t, "Jane Doe", rec.Name)
	assert.Equal(t, candidate.RiskHigh, rec.GhostingRisk)
	assert.Equal(t, 30, rec.EngagementScore)
	assert.Equal(t, candidate.StatusNew, rec.Status)
	assert.Equal(t, candidate.NeverContacted, rec.LastContact)
	assert.Equal(t, 67, rec.ResponseRate)

	got := tr.Alerts()
	require.Len(t, got, 1)
	assert.Equal(t, "Jane Doe - High risk of ghosting", got[0].Message)
	assert.Equal(t, rec.ID, got[0].CandidateID)
	assert.Equal(t, candidate.RiskHigh, got[0].Severity)
}

func TestImportRowsScoring(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		row        candidate.RawRow
		risk       candidate.Risk
		engagement int
		rate       int
	}{
		{
			name:       "applied today",
			row:        candidate.RawRow{"name": "A", "appliedDate": daysAgo(0)},
			risk:       candidate.RiskLow,
			engagement: 100,
			rate:       67,
		},
		{
			name:       "three days is medium",
			row:        candidate.RawRow{"name": "B", "appliedDate": daysAgo(3)},
			risk:       candidate.RiskMedium,
			engagement: 70,
			rate:       67,
		},
		{
			name:       "missing date scores as today",
			row:        candidate.RawRow{"name": "C"},
			risk:       candidate.RiskLow,
			engagement: 100,
			rate:       67,
		},
		{
			name:       "garbage date scores as today",
			row:        candidate.RawRow{"name": "D", "appliedDate": "last week"},
			risk:       candidate.RiskLow,
			engagement: 100,
			rate:       67,
		},
		{
			name:       "future date scores as today",
			row:        candidate.RawRow{"name": "E", "appliedDate": "2030-01-01"},
			risk:       candidate.RiskLow,
			engagement: 100,
			rate:       67,
		},
		{
			name:       "explicit values win",
			row:        candidate.RawRow{"name": "F", "appliedDate": daysAgo(20), "ghostingRisk": "low", "engagementScore": "88", "responseRate": 40},
			risk:       candidate.RiskLow,
			engagement: 88,
			rate:       40,
		},
		{
			name:       "explicit zero engagement is kept",
			row:        candidate.RawRow{"name": "G", "engagementScore": 0},
			risk:       candidate.RiskLow,
			engagement: 0,
			rate:       67,
		},
		{
			name:       "explicit scores are clamped",
			row:        candidate.RawRow{"name": "H", "engagementScore": 250, "responseRate": -5},
			risk:       candidate.RiskLow,
			engagement: 100,
			rate:       0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tr := newTracker(t, nil)

			out, err := tr.ImportRows([]candidate.RawRow{tt.row})
			require.NoError(t, err)
			require.Len(t, out, 1)

			assert.Equal(t, tt.risk, out[0].GhostingRisk)
			assert.Equal(t, tt.engagement, out[0].EngagementScore)
			assert.Equal(t, tt.rate, out[0].ResponseRate)
		})
	}
}

func TestImportReadsSpreadsheetDateFormats(t *testing.T) {
	t.Parallel()
	tr := newTracker(t, nil)

	// All of these are 2025-01-08, seven days before now.
	out, err := tr.ImportRows([]candidate.RawRow{
		{"name": "ISO", "appliedDate": "2025-01-08"},
		{"name": "US", "appliedDate": "01/08/2025"},
		{"name": "Short", "appliedDate": "1/8/25"},
		{"name": "Spelled", "appliedDate": "Jan 8, 2025"},
		{"name": "Serial", "appliedDate": 45665},
		{"name": "Serial text", "appliedDate": "45665"},
	})
	require.NoError(t, err)
	require.Len(t, out, 6)

	for _, rec := range out {
		assert.Equal(t, candidate.RiskHigh, rec.GhostingRisk, rec.Name)
		assert.Equal(t, 30, rec.EngagementScore, rec.Name)
	}
	assert.Len(t, tr.Alerts(), 6)
}

func TestImportAssignsDistinctIDsAcrossBatches(t *testing.T) {
	t.Parallel()
	tr := newTracker(t, nil)

	rows := []candidate.RawRow{{"name": "A"}, {"name": "B"}, {"name": "C"}}
	first, err := tr.ImportRows(rows)
	require.NoError(t, err)
	second, err := tr.ImportRows(rows)
	require.NoError(t, err)

	seen := map[int64]bool{}
	for _, rec := range append(first, second...) {
		assert.False(t, seen[rec.ID], "id %d reused", rec.ID)
		seen[rec.ID] = true
	}
	assert.Len(t, tr.List(), 6)
}

func TestImportParseFailureLeavesStoreUntouched(t *testing.T) {
	t.Parallel()
	tr := newTracker(t, nil)
	_, err := tr.Add(ManualInput{Name: "Existing"})
	require.NoError(t, err)

	_, err = tr.Import(context.Background(), rowsSource{err: errors.New("broken file")})
	require.Error(t, err)
	assert.Len(t, tr.List(), 1)

	out, err := tr.ImportRows(nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestImportFromCSV(t *testing.T) {
	t.Parallel()
	tr := newTracker(t, nil)

	csv := "Name,Role,Applied Date,Email Address\nJane Doe,Electrician," + daysAgo(4) + ",jane@example.com\n"
	rows, err := ingest.ReadCSV(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)

	out, err := tr.ImportRows(rows)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Electrician", out[0].Position)
	assert.Equal(t, candidate.RiskMedium, out[0].GhostingRisk)
	assert.Equal(t, 60, out[0].EngagementScore)
	assert.Empty(t, tr.Alerts(), "medium risk at exactly 60 does not alert")
}

func TestAddManualCandidate(t *testing.T) {
	t.Parallel()
	tr := newTracker(t, nil)

	rec, err := tr.Add(ManualInput{Name: " Bob Builder ", Email: "bob@example.com"})
	require.NoError(t, err)

	assert.Equal(t, "Bob Builder", rec.Name)
	assert.Equal(t, candidate.DefaultPosition, rec.Position)
	assert.Equal(t, candidate.StatusNew, rec.Status)
	assert.Equal(t, candidate.RiskLow, rec.GhostingRisk)
	assert.Equal(t, 100, rec.EngagementScore)
	assert.Equal(t, 100, rec.ResponseRate)
	assert.Equal(t, candidate.JustNow, rec.LastContact)
	assert.Equal(t, "2025-01-15", rec.AppliedDate)
	assert.Empty(t, tr.Alerts())
}

func TestAddRejectsMalformedEmail(t *testing.T) {
	t.Parallel()
	tr := newTracker(t, nil)

	_, err := tr.Add(ManualInput{Name: "Bob", Email: "not-an-email"})
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, tr.List())

	rec, err := tr.Add(ManualInput{})
	require.NoError(t, err)
	assert.Equal(t, candidate.DefaultName, rec.Name)
}

func TestSendEngagementClearsDroppingAlert(t *testing.T) {
	t.Parallel()
	tr := newTracker(t, nil)

	out, err := tr.ImportRows([]candidate.RawRow{
		{"name": "Mia", "ghostingRisk": "medium", "engagementScore": 55},
	})
	require.NoError(t, err)
	id := out[0].ID
	require.Len(t, tr.Alerts(), 1)
	assert.Equal(t, "Mia - Engagement dropping", tr.Alerts()[0].Message)

	eng, ok := tr.SendEngagement(context.Background(), id)
	require.True(t, ok)
	assert.Equal(t, 65, eng.Record.EngagementScore)
	assert.Equal(t, candidate.JustNow, eng.Record.LastContact)
	assert.Contains(t, eng.Note, "Hi Mia,")
	assert.Empty(t, tr.Alerts())
}

func TestSendEngagementKeepsHighRiskAlert(t *testing.T) {
	t.Parallel()
	tr := newTracker(t, nil)

	out, err := tr.ImportRows([]candidate.RawRow{{"name": "Old", "appliedDate": daysAgo(10)}})
	require.NoError(t, err)

	for range 10 {
		_, ok := tr.SendEngagement(context.Background(), out[0].ID)
		require.True(t, ok)
	}

	rec, _ := tr.Get(out[0].ID)
	assert.Equal(t, 100, rec.EngagementScore, "score is capped")
	assert.Len(t, tr.Alerts(), 1, "high risk still alerts")
}

func TestSendEngagementUnknownAndDrafterFallback(t *testing.T) {
	t.Parallel()
	core, logs := observer.New(zapcore.WarnLevel)
	tr := newTracker(t, func(o *Options) {
		o.Drafter = failingDrafter{}
		o.Logger = zap.New(core)
	})

	_, ok := tr.SendEngagement(context.Background(), 42)
	assert.False(t, ok)

	rec, err := tr.Add(ManualInput{Name: "Ana Lopez", Position: "Plumber"})
	require.NoError(t, err)

	eng, ok := tr.SendEngagement(context.Background(), rec.ID)
	require.True(t, ok)
	assert.Contains(t, eng.Note, "Plumber")
	assert.Equal(t, 1, logs.FilterMessage("drafting outreach note failed, using template").Len())
}

func TestAutoSchedule(t *testing.T) {
	t.Parallel()
	tr := newTracker(t, func(o *Options) { o.ScheduleDelay = 0 })

	rec, err := tr.Add(ManualInput{Name: "Sam"})
	require.NoError(t, err)

	found, err := tr.AutoSchedule(rec.ID)
	require.NoError(t, err)
	require.True(t, found)
	tr.Wait()

	got, _ := tr.Get(rec.ID)
	assert.Equal(t, candidate.StatusInterviewScheduled, got.Status)
	assert.Equal(t, "2025-01-16 2:00 PM", got.ScheduledInterview)

	_, err = tr.AutoSchedule(rec.ID)
	require.ErrorIs(t, err, ErrNotSchedulable)

	found, err = tr.AutoSchedule(999)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestAutoScheduleCancelledByDelete(t *testing.T) {
	t.Parallel()
	tr := newTracker(t, func(o *Options) { o.ScheduleDelay = time.Hour })

	rec, err := tr.Add(ManualInput{Name: "Sam"})
	require.NoError(t, err)

	_, err = tr.AutoSchedule(rec.ID)
	require.NoError(t, err)
	assert.True(t, tr.Scheduling(rec.ID))

	assert.True(t, tr.Delete(rec.ID))
	tr.Wait()

	assert.False(t, tr.Scheduling(rec.ID))
	assert.Empty(t, tr.List())
}

func TestDeleteRemovesAlert(t *testing.T) {
	t.Parallel()
	tr := newTracker(t, nil)

	out, err := tr.ImportRows([]candidate.RawRow{
		{"name": "Stale", "appliedDate": daysAgo(8)},
		{"name": "Fresh"},
	})
	require.NoError(t, err)
	require.Len(t, tr.Alerts(), 1)

	assert.True(t, tr.Delete(out[0].ID))
	assert.Empty(t, tr.Alerts())
	assert.Len(t, tr.List(), 1)

	assert.False(t, tr.Delete(out[0].ID))
}

func TestClearCancelsEverything(t *testing.T) {
	t.Parallel()
	tr := newTracker(t, func(o *Options) { o.ScheduleDelay = time.Hour })

	out, err := tr.ImportRows([]candidate.RawRow{{"name": "A", "appliedDate": daysAgo(9)}, {"name": "B"}})
	require.NoError(t, err)
	_, err = tr.AutoSchedule(out[1].ID)
	require.NoError(t, err)

	assert.Equal(t, 2, tr.Clear())
	tr.Wait()

	assert.Empty(t, tr.List())
	assert.Empty(t, tr.Alerts())
	assert.False(t, tr.Scheduling(out[1].ID))
}

func TestObserverSeesEveryChange(t *testing.T) {
	t.Parallel()

	var (
		mu    sync.Mutex
		sizes []int
	)
	tr := newTracker(t, func(o *Options) {
		o.OnAlerts = func(a []candidate.Alert) {
			mu.Lock()
			defer mu.Unlock()
			sizes = append(sizes, len(a))
		}
	})

	out, err := tr.ImportRows([]candidate.RawRow{{"name": "A", "appliedDate": daysAgo(9)}})
	require.NoError(t, err)
	tr.Delete(out[0].ID)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{1, 0}, sizes)
}

func TestAlertsMatchDeriveAfterMutations(t *testing.T) {
	t.Parallel()
	tr := newTracker(t, nil)

	out, err := tr.ImportRows([]candidate.RawRow{
		{"name": "A", "appliedDate": daysAgo(1)},
		{"name": "B", "appliedDate": daysAgo(4)},
		{"name": "C", "appliedDate": daysAgo(12)},
		{"name": "D", "ghostingRisk": "medium", "engagementScore": 10},
	})
	require.NoError(t, err)

	risk := candidate.RiskHigh
	tr.Update(out[0].ID, store.Patch{GhostingRisk: &risk})
	tr.SendEngagement(context.Background(), out[3].ID)
	tr.Delete(out[2].ID)

	assert.Equal(t, alerts.Derive(tr.List()), tr.Alerts())
	assert.False(t, tr.Update(12345, store.Patch{GhostingRisk: &risk}))
}

func TestSummaryAndOnboarding(t *testing.T) {
	t.Parallel()
	tr := newTracker(t, nil)

	_, err := tr.ImportRows([]candidate.RawRow{
		{"name": "A", "status": "new"},
		{"name": "B", "status": "screening"},
		{"name": "C", "status": "onboarding", "hireDate": "2025-01-02", "onboardingProgress": "40"},
		{"name": "D", "status": "rejected"},
		{"name": "E", "status": "hired"},
		{"name": "F", "appliedDate": daysAgo(6)},
	})
	require.NoError(t, err)

	s := tr.Summary()
	assert.Equal(t, 6, s.Total)
	assert.Equal(t, 4, s.Active)
	assert.Equal(t, 1, s.Alerts)
	assert.Equal(t, 2, s.ByStatus[candidate.StatusNew])
	assert.Equal(t, 1, s.ByStatus[candidate.StatusScreening])
	assert.Equal(t, 0, s.ByStatus[candidate.StatusOfferExtended])
	assert.Len(t, s.ByStatus, len(candidate.PipelineStages))

	onboarding := tr.Onboarding()
	require.Len(t, onboarding, 1)
	assert.Equal(t, "C", onboarding[0].Name)
	require.NotNil(t, onboarding[0].OnboardingProgress)
	assert.Equal(t, 40, *onboarding[0].OnboardingProgress)
}

func TestSeedSampleAndExport(t *testing.T) {
	t.Parallel()
	tr := newTracker(t, nil)

	rec, added, err := tr.SeedSample()
	require.NoError(t, err)
	require.True(t, added)
	assert.Equal(t, "Sample Candidate", rec.Name)
	assert.Equal(t, 85, rec.EngagementScore)

	e, err := ingest.NewExporter("csv")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, tr.Export(&buf, e))
	assert.Contains(t, buf.String(), "Sample Candidate")
	assert.Contains(t, buf.String(), "Flooring Installer")
}

func TestSeedSampleSkipsNonEmptyDatabase(t *testing.T) {
	t.Parallel()
	tr := newTracker(t, nil)

	existing, err := tr.Add(ManualInput{Name: "Real Person"})
	require.NoError(t, err)

	_, added, err := tr.SeedSample()
	require.NoError(t, err)
	assert.False(t, added)

	list := tr.List()
	require.Len(t, list, 1)
	assert.Equal(t, existing.ID, list[0].ID)

	tr.Clear()
	_, added, err = tr.SeedSample()
	require.NoError(t, err)
	assert.True(t, added)

	_, added, err = tr.SeedSample()
	require.NoError(t, err)
	assert.False(t, added)
	assert.Len(t, tr.List(), 1)
}

func TestLoadReplacesRecords(t *testing.T) {
	t.Parallel()
	tr := newTracker(t, nil)
	_, err := tr.Add(ManualInput{Name: "Gone"})
	require.NoError(t, err)

	err = tr.Load([]candidate.Record{{ID: 1, Name: "Kept", GhostingRisk: candidate.RiskHigh}})
	require.NoError(t, err)

	list := tr.List()
	require.Len(t, list, 1)
	assert.Equal(t, "Kept", list[0].Name)
	assert.Len(t, tr.Alerts(), 1)
}

func TestLoadKeepsNewIDsAboveSnapshot(t *testing.T) {
	t.Parallel()

	rows := make([]candidate.RawRow, 50)
	for i := range rows {
		rows[i] = candidate.RawRow{"name": fmt.Sprintf("Candidate %d", i)}
	}

	first := newTracker(t, nil)
	_, err := first.ImportRows(rows)
	require.NoError(t, err)

	// A later run whose clock lands inside the range issued by the first one.
	second := newTracker(t, func(o *Options) { o.Clock = clock.Fixed(now.Add(time.Millisecond)) })
	require.NoError(t, second.Load(first.List()))

	added, err := second.Add(ManualInput{Name: "Walk-in"})
	require.NoError(t, err)

	imported, err := second.ImportRows([]candidate.RawRow{{"name": "X"}, {"name": "Y"}})
	require.NoError(t, err)

	seen := make(map[int64]struct{})
	for _, rec := range second.List() {
		_, dup := seen[rec.ID]
		require.False(t, dup, "id %d issued twice", rec.ID)
		seen[rec.ID] = struct{}{}
	}
	assert.Len(t, seen, 53)

	for _, rec := range first.List() {
		assert.Greater(t, added.ID, rec.ID)
		assert.Greater(t, imported[0].ID, rec.ID)
	}
}

func TestNextInterviewSlot(t *testing.T) {
	t.Parallel()

	tests := []struct {
		now  time.Time
		want string
	}{
		{now: time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC), want: "2025-01-16 2:00 PM"},
		{now: time.Date(2025, 1, 17, 9, 0, 0, 0, time.UTC), want: "2025-01-20 2:00 PM"},
		{now: time.Date(2025, 1, 18, 23, 0, 0, 0, time.UTC), want: "2025-01-20 2:00 PM"},
	}

	for _, tt := range tests {
		if got := NextInterviewSlot(tt.now); got != tt.want {
			t.Fatalf("NextInterviewSlot(%s) = %q, want %q", tt.now, got, tt.want)
		}
	}
}
