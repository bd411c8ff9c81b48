// Package normalize maps raw rows with unknown column naming onto the canonical candidate record.
package normalize

import (
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/spigell/recruit-tracker/internal/candidate"
)

// Aliases lists, per canonical key, the source columns checked in order. First non-empty wins.
var Aliases = map[string][]string{
	"name":               {"name", "Name", "Full Name"},
	"position":           {"position", "Position", "Role"},
	"appliedDate":        {"appliedDate", "Applied Date"},
	"status":             {"status", "Status"},
	"phone":              {"phone", "Phone", "Phone Number"},
	"email":              {"email", "Email", "Email Address"},
	"location":           {"location", "Location", "City"},
	"skills":             {"skills", "Skills"},
	"experience":         {"experience", "Experience"},
	"ghostingRisk":       {"ghostingRisk"},
	"engagementScore":    {"engagementScore"},
	"responseRate":       {"responseRate"},
	"lastContact":        {"lastContact"},
	"scheduledInterview": {"scheduledInterview"},
	"hireDate":           {"hireDate"},
	"retentionRisk":      {"retentionRisk"},
	"onboardingProgress": {"onboardingProgress"},
}

var numericKeys = []string{"engagementScore", "responseRate", "onboardingProgress"}

// fields is the decode target for a resolved row.
type fields struct {
	Name               string  `mapstructure:"name"`
	Position           string  `mapstructure:"position"`
	AppliedDate        string  `mapstructure:"appliedDate"`
	Status             string  `mapstructure:"status"`
	Phone              string  `mapstructure:"phone"`
	Email              string  `mapstructure:"email"`
	Location           string  `mapstructure:"location"`
	Skills             string  `mapstructure:"skills"`
	Experience         string  `mapstructure:"experience"`
	GhostingRisk       *string `mapstructure:"ghostingRisk"`
	EngagementScore    *int    `mapstructure:"engagementScore"`
	ResponseRate       *int    `mapstructure:"responseRate"`
	LastContact        string  `mapstructure:"lastContact"`
	ScheduledInterview string  `mapstructure:"scheduledInterview"`
	HireDate           string  `mapstructure:"hireDate"`
	RetentionRisk      string  `mapstructure:"retentionRisk"`
	OnboardingProgress *int    `mapstructure:"onboardingProgress"`
}

// Draft is a normalized record that still waits for scoring. Explicit values
// found in the row are carried separately so the scorer can honour them.
type Draft struct {
	Record             candidate.Record
	ExplicitRisk       *candidate.Risk
	ExplicitEngagement *int
	ResponseRate       *int
	// Gaps names canonical fields that fell back to a default.
	Gaps []string
}

type Normalizer struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{logger: logger}
}

// Normalize turns one raw row into a draft with the given id. ingestedAt supplies the default applied date.
// It never fails: missing or undecodable fields fall back to defaults.
func (n *Normalizer) Normalize(row candidate.RawRow, id int64, ingestedAt time.Time) Draft {
	resolved := Resolve(row)

	var gaps []string
	for _, key := range numericKeys {
		v, ok := resolved[key]
		if !ok {
			continue
		}
		var num int
		if err := mapstructure.WeakDecode(v, &num); err != nil {
			n.logger.Debug("dropping undecodable numeric field",
				zap.Int64("candidate_id", id),
				zap.String("field", key),
				zap.Any("value", v),
			)
			delete(resolved, key)
			gaps = append(gaps, key)
		}
	}

	var f fields
	if err := decode(resolved, &f); err != nil {
		// Only reachable with cell types mapstructure cannot coerce to strings, e.g. nested objects.
		n.logger.Warn("decoding normalized row", zap.Int64("candidate_id", id), zap.Error(err))
	}

	rec := candidate.Record{
		ID:                 id,
		Name:               f.Name,
		Position:           f.Position,
		AppliedDate:        f.AppliedDate,
		Status:             candidate.Status(f.Status),
		Phone:              f.Phone,
		Email:              f.Email,
		Location:           f.Location,
		Skills:             f.Skills,
		Experience:         f.Experience,
		LastContact:        f.LastContact,
		ScheduledInterview: f.ScheduledInterview,
		HireDate:           f.HireDate,
		RetentionRisk:      f.RetentionRisk,
		OnboardingProgress: f.OnboardingProgress,
	}

	if rec.Name == "" {
		rec.Name = candidate.DefaultName
		gaps = append(gaps, "name")
	}
	if rec.Position == "" {
		rec.Position = candidate.DefaultPosition
		gaps = append(gaps, "position")
	}
	if rec.Email == "" {
		gaps = append(gaps, "email")
	}
	if rec.AppliedDate == "" {
		rec.AppliedDate = ingestedAt.UTC().Format(candidate.DateLayout)
	}
	if rec.Status == "" {
		rec.Status = candidate.StatusNew
	}
	if rec.LastContact == "" {
		rec.LastContact = candidate.NeverContacted
	}

	d := Draft{
		Record:             rec,
		ExplicitEngagement: f.EngagementScore,
		ResponseRate:       f.ResponseRate,
		Gaps:               gaps,
	}
	if f.GhostingRisk != nil {
		risk := candidate.Risk(*f.GhostingRisk)
		d.ExplicitRisk = &risk
	}

	if len(gaps) > 0 {
		n.logger.Debug("row has missing fields, defaults applied",
			zap.Int64("candidate_id", id),
			zap.Strings("fields", gaps),
		)
	}

	return d
}

// Resolve walks the alias table and returns a map keyed by canonical names,
// containing only the fields the row actually supplies.
func Resolve(row candidate.RawRow) map[string]any {
	out := make(map[string]any, len(Aliases))
	for key, aliases := range Aliases {
		for _, alias := range aliases {
			v, ok := row[alias]
			if !ok || isEmpty(v) {
				continue
			}
			if s, ok := v.(string); ok {
				v = strings.TrimSpace(s)
			}
			out[key] = v
			break
		}
	}
	return out
}

func isEmpty(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	case fmt.Stringer:
		return strings.TrimSpace(val.String()) == ""
	default:
		return false
	}
}

func decode(input map[string]any, out *fields) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}
