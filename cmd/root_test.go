package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/recruit-tracker/internal/candidate"
	"github.com/spigell/recruit-tracker/internal/filtering"
	"github.com/spigell/recruit-tracker/internal/tracker"
)

// These tests touch the global viper instance and must not run in parallel.

func withViper(t *testing.T, key string, value any) {
	t.Helper()
	prev := viper.Get(key)
	viper.Set(key, value)
	t.Cleanup(func() { viper.Set(key, prev) })
}

func TestGetConfigDefaults(t *testing.T) {
	cfg, err := getConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Schedule.Delay != 2*time.Second {
		t.Fatalf("unexpected schedule delay: %s", cfg.Schedule.Delay)
	}
	if cfg.Export.Format != "csv" {
		t.Fatalf("unexpected export format: %q", cfg.Export.Format)
	}
	if cfg.DB != app+".db" {
		t.Fatalf("unexpected db: %q", cfg.DB)
	}
	if cfg.AI.Enabled {
		t.Fatal("ai must be disabled by default")
	}
}

func TestGetConfigValidation(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value any
	}{
		{name: "unknown export format", key: "export.format", value: "xml"},
		{name: "negative delay", key: "schedule.delay", value: "-1s"},
		{name: "negative log length", key: "ai.gemini.max-log-length", value: -5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withViper(t, tt.key, tt.value)
			if _, err := getConfig(); err == nil {
				t.Fatalf("expected validation error for %s=%v", tt.key, tt.value)
			}
		})
	}
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	versionCmd.Run(versionCmd, nil)

	if !strings.HasPrefix(out.String(), app+" version: ") {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestCandidateLabel(t *testing.T) {
	rec := candidate.Record{
		ID: 42, Name: "Jane Doe", Position: "Electrician",
		Status: candidate.StatusInterviewScheduled, GhostingRisk: candidate.RiskHigh, EngagementScore: 30,
	}
	want := "42 Jane Doe / Electrician / Interview Scheduled / high risk / 30%"
	if got := candidateLabel(rec); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	s := &session{tracker: tracker.New(tracker.Options{})}
	if isSchedulable(s, rec) {
		t.Fatal("interview scheduled candidates cannot be scheduled again")
	}
	rec.Status = candidate.StatusScreening
	if !isSchedulable(s, rec) {
		t.Fatal("screening candidates can be scheduled")
	}
}

func TestIsSchedulableSkipsPendingBooking(t *testing.T) {
	tr := tracker.New(tracker.Options{ScheduleDelay: time.Hour})
	t.Cleanup(func() {
		tr.CancelPending()
		tr.Wait()
	})
	s := &session{tracker: tr}

	rec, err := tr.Add(tracker.ManualInput{Name: "Sam"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !isSchedulable(s, rec) {
		t.Fatal("new candidates can be scheduled")
	}

	if _, err := tr.AutoSchedule(rec.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if isSchedulable(s, rec) {
		t.Fatal("a candidate with a pending booking must not be offered another one")
	}
}

func TestListFiltersDisablesNamedSteps(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	steps := listFilters([]string{"active", " search "}, zap.New(core))

	statuses := filtering.Describe(steps)
	if len(statuses) != 4 {
		t.Fatalf("expected 4 filters, got %d", len(statuses))
	}
	for _, st := range statuses {
		wantEnabled := st.Name != "active" && st.Name != "search"
		if st.Enabled != wantEnabled {
			t.Fatalf("filter %s: enabled=%v, want %v", st.Name, st.Enabled, wantEnabled)
		}
	}

	entries := logs.FilterMessage("filter").All()
	if len(entries) != 4 {
		t.Fatalf("expected one log entry per filter, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["reason"]; got != "disabled by --no-filter" {
		t.Fatalf("unexpected reason for %v: %v", entries[0].ContextMap()["name"], got)
	}
}

func TestPrintSummary(t *testing.T) {
	var out bytes.Buffer
	printAlerts(&out, nil)
	if !strings.Contains(out.String(), "No engagement alerts") {
		t.Fatalf("unexpected output: %q", out.String())
	}

	out.Reset()
	printCandidates(&out, []candidate.Record{{ID: 1, Name: "Bob", Status: candidate.StatusNew, EngagementScore: 100, ResponseRate: 90}})
	if !strings.Contains(out.String(), "Bob") || !strings.Contains(out.String(), "100%") {
		t.Fatalf("unexpected output: %q", out.String())
	}
}
