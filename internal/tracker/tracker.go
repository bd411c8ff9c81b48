// Package tracker wires normalization, scoring, the candidate store and alert
// derivation into the operations the command line exposes.
//
// The store is the single source of truth. Alerts are never stored: every
// mutation re-derives them from the current records and hands the fresh list
// to the optional observer, and Alerts() derives them on demand.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/spigell/recruit-tracker/internal/ai"
	"github.com/spigell/recruit-tracker/internal/alerts"
	"github.com/spigell/recruit-tracker/internal/candidate"
	"github.com/spigell/recruit-tracker/internal/clock"
	"github.com/spigell/recruit-tracker/internal/ingest"
	"github.com/spigell/recruit-tracker/internal/logger"
	"github.com/spigell/recruit-tracker/internal/normalize"
	"github.com/spigell/recruit-tracker/internal/schedule"
	"github.com/spigell/recruit-tracker/internal/scoring"
	"github.com/spigell/recruit-tracker/internal/store"
)

const (
	DefaultScheduleDelay = 2 * time.Second
	EngagementBump       = 10

	// responseRate has no real model yet: imports without one get a placeholder in [60,99].
	placeholderRateBase   = 60
	placeholderRateSpread = 40

	manualResponseRate = 100
	interviewHour      = 14
)

var (
	ErrNotSchedulable = errors.New("only new or screening candidates can be scheduled")
	ErrInvalidInput   = errors.New("invalid candidate input")
)

// Rand supplies the placeholder response rate.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

type Options struct {
	Clock   clock.Clock
	IDs     clock.IDGenerator
	Rand    Rand
	Logger  *zap.Logger
	Drafter ai.Drafter
	// ScheduleDelay is how long auto-scheduling takes to book an interview.
	ScheduleDelay time.Duration
	// OnAlerts receives the re-derived alert list after every change.
	OnAlerts func([]candidate.Alert)
}

type Tracker struct {
	store      *store.Store
	normalizer *normalize.Normalizer
	scheduler  *schedule.Scheduler
	validate   *validator.Validate

	clock    clock.Clock
	ids      clock.IDGenerator
	rand     Rand
	logger   *zap.Logger
	drafter  ai.Drafter
	delay    time.Duration
	onAlerts func([]candidate.Alert)
}

func New(opts Options) *Tracker {
	if opts.Clock == nil {
		opts.Clock = clock.System
	}
	if opts.IDs == nil {
		opts.IDs = clock.NewSequence(opts.Clock)
	}
	if opts.Rand == nil {
		opts.Rand = globalRand{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Drafter == nil {
		opts.Drafter = ai.TemplateDrafter{}
	}
	if opts.ScheduleDelay < 0 {
		opts.ScheduleDelay = 0
	}

	return &Tracker{
		store:      store.New(),
		normalizer: normalize.New(opts.Logger),
		scheduler:  schedule.New(opts.Logger),
		validate:   validator.New(),
		clock:      opts.Clock,
		ids:        opts.IDs,
		rand:       opts.Rand,
		logger:     opts.Logger,
		drafter:    opts.Drafter,
		delay:      opts.ScheduleDelay,
		onAlerts:   opts.OnAlerts,
	}
}

// Import reads every row from src and adds the resulting candidates. A parse
// failure is returned as is and leaves the store untouched.
func (t *Tracker) Import(ctx context.Context, src ingest.RowSource) ([]candidate.Record, error) {
	rows, err := src.Rows(ctx)
	if err != nil {
		return nil, err
	}
	return t.ImportRows(rows)
}

// ImportRows normalizes and scores rows and appends them as one batch.
func (t *Tracker) ImportRows(rows []candidate.RawRow) ([]candidate.Record, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	now := t.clock.Now()
	today := clock.Today(t.clock)
	ids := t.ids.Batch(len(rows))

	records := make([]candidate.Record, 0, len(rows))
	for i, row := range rows {
		d := t.normalizer.Normalize(row, ids[i], now)
		rec := d.Record

		applied, ok := scoring.ParseDate(rec.AppliedDate)
		if !ok {
			t.logger.Debug("applied date is not a calendar date, scoring as today",
				append(logger.CandidateFields(rec.ID, rec.Name), zap.String("applied_date", rec.AppliedDate))...,
			)
		}

		res := scoring.Score(applied, today, d.ExplicitRisk, d.ExplicitEngagement)
		rec.GhostingRisk = res.GhostingRisk
		rec.EngagementScore = scoring.Bump(res.EngagementScore, 0)

		if d.ResponseRate != nil {
			rec.ResponseRate = scoring.Bump(*d.ResponseRate, 0)
		} else {
			rec.ResponseRate = placeholderRateBase + t.rand.IntN(placeholderRateSpread)
		}

		records = append(records, rec)
	}

	if err := t.store.BulkInsert(records); err != nil {
		return nil, fmt.Errorf("storing imported candidates: %w", err)
	}

	t.logger.Info("imported candidates", zap.Int("count", len(records)))
	t.refresh()

	return records, nil
}

// ManualInput is the add-candidate form.
type ManualInput struct {
	Name       string `validate:"max=200"`
	Email      string `validate:"omitempty,email"`
	Phone      string
	Position   string
	Location   string
	Skills     string
	Experience string
}

// Add creates a candidate from the form. New candidates start fresh: low risk,
// full engagement, regardless of any decay model.
func (t *Tracker) Add(in ManualInput) (candidate.Record, error) {
	in = trimInput(in)
	if err := t.validate.Struct(in); err != nil {
		return candidate.Record{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	fresh := scoring.Fresh()
	rec := candidate.Record{
		ID:              t.ids.Batch(1)[0],
		Name:            orDefault(in.Name, candidate.DefaultName),
		Position:        orDefault(in.Position, candidate.DefaultPosition),
		AppliedDate:     clock.Today(t.clock).Format(candidate.DateLayout),
		Status:          candidate.StatusNew,
		Phone:           in.Phone,
		Email:           in.Email,
		Location:        in.Location,
		Skills:          in.Skills,
		Experience:      in.Experience,
		GhostingRisk:    fresh.GhostingRisk,
		EngagementScore: fresh.EngagementScore,
		ResponseRate:    manualResponseRate,
		LastContact:     candidate.JustNow,
	}

	if err := t.store.Insert(rec); err != nil {
		return candidate.Record{}, fmt.Errorf("storing candidate: %w", err)
	}

	t.logger.Info("candidate added", logger.CandidateFields(rec.ID, rec.Name)...)
	t.refresh()

	return rec, nil
}

// SeedSample adds the demo candidate when the database is empty.
// It reports false and leaves the store alone otherwise.
func (t *Tracker) SeedSample() (candidate.Record, bool, error) {
	if n := t.store.Len(); n > 0 {
		t.logger.Debug("sample candidate skipped", zap.Int("candidates", n))
		return candidate.Record{}, false, nil
	}

	rec := candidate.Record{
		ID:              t.ids.Batch(1)[0],
		Name:            "Sample Candidate",
		Position:        "Flooring Installer",
		AppliedDate:     clock.Today(t.clock).Format(candidate.DateLayout),
		Status:          candidate.StatusNew,
		Phone:           "(555) 000-0000",
		Email:           "sample@email.com",
		GhostingRisk:    candidate.RiskLow,
		EngagementScore: 85,
		LastContact:     candidate.JustNow,
		ResponseRate:    95,
		Skills:          "Hardwood, Laminate, Tile",
		Experience:      "5 years",
		Location:        "Orlando, FL",
	}

	if err := t.store.Insert(rec); err != nil {
		return candidate.Record{}, false, fmt.Errorf("storing sample candidate: %w", err)
	}
	t.refresh()

	return rec, true, nil
}

// Update merges a partial change. Unknown ids are ignored.
func (t *Tracker) Update(id int64, p store.Patch) bool {
	if !t.store.Update(id, p) {
		t.logger.Debug("update for unknown candidate ignored", zap.Int64(logger.FieldCandidateID, id))
		return false
	}
	t.refresh()
	return true
}

// Engagement is the outcome of a send-engagement action.
type Engagement struct {
	Record candidate.Record
	// Note is the drafted outreach text. It is never sent anywhere.
	Note string
}

// SendEngagement records an outreach: contact becomes "Just now" and the
// engagement score rises by ten. The candidate's alert disappears only if the
// new values no longer qualify; nothing is suppressed.
func (t *Tracker) SendEngagement(ctx context.Context, id int64) (Engagement, bool) {
	contact := candidate.JustNow
	ok := t.store.Modify(id, func(rec candidate.Record) store.Patch {
		score := scoring.Bump(rec.EngagementScore, EngagementBump)
		return store.Patch{LastContact: &contact, EngagementScore: &score}
	})
	if !ok {
		t.logger.Debug("engagement for unknown candidate ignored", zap.Int64(logger.FieldCandidateID, id))
		return Engagement{}, false
	}

	rec, _ := t.store.Get(id)
	t.refresh()

	note, err := t.drafter.Draft(ctx, rec)
	if err != nil {
		t.logger.Warn("drafting outreach note failed, using template",
			append(logger.CandidateFields(rec.ID, rec.Name), zap.Error(err))...,
		)
		note, _ = ai.TemplateDrafter{}.Draft(ctx, rec)
	}

	t.logger.Info("engagement recorded",
		append(logger.CandidateFields(rec.ID, rec.Name), zap.Int("engagement_score", rec.EngagementScore))...,
	)

	return Engagement{Record: rec, Note: note}, true
}

// AutoSchedule books an interview after the configured delay. Unknown ids
// report false; candidates past screening get ErrNotSchedulable.
func (t *Tracker) AutoSchedule(id int64) (bool, error) {
	rec, ok := t.store.Get(id)
	if !ok {
		return false, nil
	}
	if rec.Status != candidate.StatusNew && rec.Status != candidate.StatusScreening {
		return true, fmt.Errorf("%w: %s is %s", ErrNotSchedulable, rec.Name, rec.Status.Label())
	}

	t.scheduler.After(id, t.delay, func(context.Context) {
		status := candidate.StatusInterviewScheduled
		slot := NextInterviewSlot(t.clock.Now())
		if !t.store.Update(id, store.Patch{Status: &status, ScheduledInterview: &slot}) {
			return
		}
		t.logger.Info("interview scheduled",
			append(logger.CandidateFields(rec.ID, rec.Name), zap.String("slot", slot))...,
		)
		t.refresh()
	})

	t.logger.Info("auto-scheduling interview",
		append(logger.CandidateFields(rec.ID, rec.Name), zap.Duration("delay", t.delay))...,
	)
	return true, nil
}

// Scheduling reports whether an auto-schedule is still pending for id.
func (t *Tracker) Scheduling(id int64) bool {
	return t.scheduler.Pending(id)
}

// Delete removes a candidate and cancels any booking still pending for it.
func (t *Tracker) Delete(id int64) bool {
	if t.scheduler.Cancel(id) {
		t.logger.Debug("pending interview booking cancelled", zap.Int64(logger.FieldCandidateID, id))
	}
	if !t.store.Remove(id) {
		return false
	}
	t.logger.Info("candidate deleted", zap.Int64(logger.FieldCandidateID, id))
	t.refresh()
	return true
}

// Clear empties the database and cancels every pending booking.
func (t *Tracker) Clear() int {
	t.scheduler.CancelAll()
	n := t.store.Len()
	t.store.Clear()
	t.logger.Info("database cleared", zap.Int("removed", n))
	t.refresh()
	return n
}

// Load replaces the store content, e.g. from a snapshot. Ids issued afterwards stay above the loaded ones.
func (t *Tracker) Load(records []candidate.Record) error {
	if err := t.store.Replace(records); err != nil {
		return err
	}

	var maxID int64
	for _, rec := range records {
		maxID = max(maxID, rec.ID)
	}
	t.ids.Observe(maxID)

	t.refresh()
	return nil
}

// CancelPending drops every auto-schedule that has not fired yet.
func (t *Tracker) CancelPending() int {
	return t.scheduler.CancelAll()
}

// Wait blocks until pending auto-schedules have completed or been cancelled.
func (t *Tracker) Wait() {
	t.scheduler.Wait()
}

func (t *Tracker) List() []candidate.Record {
	return t.store.List()
}

func (t *Tracker) Get(id int64) (candidate.Record, bool) {
	return t.store.Get(id)
}

func (t *Tracker) Alerts() []candidate.Alert {
	return alerts.Derive(t.store.List())
}

func (t *Tracker) Export(w io.Writer, e ingest.Exporter) error {
	return e.Export(w, t.store.List())
}

// Summary is the pipeline overview.
type Summary struct {
	Total    int
	Active   int
	Alerts   int
	ByStatus map[candidate.Status]int
}

func (t *Tracker) Summary() Summary {
	records := t.store.List()

	s := Summary{
		Total:    len(records),
		Alerts:   len(alerts.Derive(records)),
		ByStatus: make(map[candidate.Status]int, len(candidate.PipelineStages)),
	}
	for _, stage := range candidate.PipelineStages {
		s.ByStatus[stage] = 0
	}
	for _, rec := range records {
		if rec.Status.Active() {
			s.Active++
		}
		if _, ok := s.ByStatus[rec.Status]; ok {
			s.ByStatus[rec.Status]++
		}
	}
	return s
}

// Onboarding lists candidates in the onboarding stage.
func (t *Tracker) Onboarding() []candidate.Record {
	var out []candidate.Record
	for _, rec := range t.store.List() {
		if rec.Status == candidate.StatusOnboarding {
			out = append(out, rec)
		}
	}
	return out
}

func (t *Tracker) refresh() {
	current := alerts.Derive(t.store.List())
	t.logger.Debug("alerts recomputed", zap.Int("count", len(current)))
	if t.onAlerts != nil {
		t.onAlerts(current)
	}
}

// NextInterviewSlot picks 2:00 PM on the next weekday after now.
func NextInterviewSlot(now time.Time) string {
	d := now.AddDate(0, 0, 1)
	for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		d = d.AddDate(0, 0, 1)
	}
	slot := time.Date(d.Year(), d.Month(), d.Day(), interviewHour, 0, 0, 0, d.Location())
	return slot.Format(candidate.ScheduleSlotLayout)
}

func trimInput(in ManualInput) ManualInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Position = strings.TrimSpace(in.Position)
	in.Location = strings.TrimSpace(in.Location)
	in.Skills = strings.TrimSpace(in.Skills)
	in.Experience = strings.TrimSpace(in.Experience)
	return in
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
