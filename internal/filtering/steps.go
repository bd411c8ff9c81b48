package filtering

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spigell/recruit-tracker/internal/candidate"
)

// toggle carries the enable/disable state shared by every step.
type toggle struct {
	disabled bool
	reason   string
}

func (t *toggle) Disable(reason string) {
	t.disabled = true
	t.reason = reason
}

func (t *toggle) IsEnabled() bool { return !t.disabled }

type activeFilter struct {
	toggle
	only bool
}

// NewActive creates a filter that keeps only candidates still in the pipeline.
func NewActive() Filter {
	return &activeFilter{}
}

func (f *activeFilter) Name() string { return "active" }

func (f *activeFilter) Validate(cfg *Config) error {
	f.only = cfg != nil && cfg.ActiveOnly
	return nil
}

func (f *activeFilter) Apply(_ context.Context, _ Deps, records []candidate.Record) ([]candidate.Record, Step, error) {
	if !f.only {
		return records, Step{Initial: len(records), Left: len(records)}, nil
	}
	out, step := keep(records, func(rec candidate.Record) bool { return rec.Status.Active() })
	return out, step, nil
}

func (f *activeFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"active_only": strconv.FormatBool(f.only)},
	}
}

type statusesFilter struct {
	toggle
	allowed map[candidate.Status]bool
}

// NewStatuses creates a filter that keeps candidates in the configured statuses.
func NewStatuses() Filter {
	return &statusesFilter{}
}

func (f *statusesFilter) Name() string { return "statuses" }

func (f *statusesFilter) Validate(cfg *Config) error {
	f.allowed = nil
	if cfg == nil || len(cfg.Statuses) == 0 {
		return nil
	}

	f.allowed = make(map[candidate.Status]bool, len(cfg.Statuses))
	for _, raw := range cfg.Statuses {
		s := candidate.Status(strings.ToLower(strings.TrimSpace(raw)))
		if !s.Known() && s != candidate.StatusHired {
			return fmt.Errorf("unknown status %q", raw)
		}
		f.allowed[s] = true
	}
	return nil
}

func (f *statusesFilter) Apply(_ context.Context, _ Deps, records []candidate.Record) ([]candidate.Record, Step, error) {
	if len(f.allowed) == 0 {
		return records, Step{Initial: len(records), Left: len(records)}, nil
	}
	out, step := keep(records, func(rec candidate.Record) bool { return f.allowed[rec.Status] })
	return out, step, nil
}

type risksFilter struct {
	toggle
	allowed map[candidate.Risk]bool
}

// NewRisks creates a filter that keeps candidates with the configured ghosting risk levels.
func NewRisks() Filter {
	return &risksFilter{}
}

func (f *risksFilter) Name() string { return "risks" }

func (f *risksFilter) Validate(cfg *Config) error {
	f.allowed = nil
	if cfg == nil || len(cfg.Risks) == 0 {
		return nil
	}

	f.allowed = make(map[candidate.Risk]bool, len(cfg.Risks))
	for _, raw := range cfg.Risks {
		r := candidate.Risk(strings.ToLower(strings.TrimSpace(raw)))
		if !r.Known() {
			return fmt.Errorf("unknown risk level %q", raw)
		}
		f.allowed[r] = true
	}
	return nil
}

func (f *risksFilter) Apply(_ context.Context, _ Deps, records []candidate.Record) ([]candidate.Record, Step, error) {
	if len(f.allowed) == 0 {
		return records, Step{Initial: len(records), Left: len(records)}, nil
	}
	out, step := keep(records, func(rec candidate.Record) bool { return f.allowed[rec.GhostingRisk] })
	return out, step, nil
}

type searchFilter struct {
	toggle
	query string
}

// NewSearch creates a case-insensitive text filter over name, position, skills and location.
func NewSearch() Filter {
	return &searchFilter{}
}

func (f *searchFilter) Name() string { return "search" }

func (f *searchFilter) Validate(cfg *Config) error {
	f.query = ""
	if cfg != nil {
		f.query = strings.ToLower(strings.TrimSpace(cfg.Search))
	}
	return nil
}

func (f *searchFilter) Apply(_ context.Context, _ Deps, records []candidate.Record) ([]candidate.Record, Step, error) {
	if f.query == "" {
		return records, Step{Initial: len(records), Left: len(records)}, nil
	}
	out, step := keep(records, func(rec candidate.Record) bool {
		for _, field := range []string{rec.Name, rec.Position, rec.Skills, rec.Location} {
			if strings.Contains(strings.ToLower(field), f.query) {
				return true
			}
		}
		return false
	})
	return out, step, nil
}
