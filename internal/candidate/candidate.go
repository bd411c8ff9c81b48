package candidate

import (
	"strconv"
	"strings"
)

const (
	DefaultName        = "Unknown"
	DefaultPosition    = "Not Specified"
	NeverContacted     = "Never"
	JustNow            = "Just now"
	DateLayout         = "2006-01-02"
	ScheduleSlotLayout = "2006-01-02 3:04 PM"
)

type Status string

const (
	StatusNew                Status = "new"
	StatusScreening          Status = "screening"
	StatusInterviewScheduled Status = "interview_scheduled"
	StatusOfferExtended      Status = "offer_extended"
	StatusOnboarding         Status = "onboarding"
	StatusRejected           Status = "rejected"
	// StatusHired is never assigned by the tracker but may arrive from imported data.
	StatusHired Status = "hired"
)

// PipelineStages lists the statuses shown as pipeline columns, in order.
var PipelineStages = []Status{
	StatusNew,
	StatusScreening,
	StatusInterviewScheduled,
	StatusOfferExtended,
	StatusOnboarding,
}

func (s Status) Known() bool {
	switch s {
	case StatusNew, StatusScreening, StatusInterviewScheduled,
		StatusOfferExtended, StatusOnboarding, StatusRejected:
		return true
	default:
		return false
	}
}

// Label renders a status for humans: "interview_scheduled" becomes "Interview Scheduled".
func (s Status) Label() string {
	words := strings.Split(string(s), "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// Active reports whether the candidate still counts toward the active pipeline.
func (s Status) Active() bool {
	return s != StatusRejected && s != StatusHired
}

type Risk string

const (
	RiskLow    Risk = "low"
	RiskMedium Risk = "medium"
	RiskHigh   Risk = "high"
)

func (r Risk) Known() bool {
	return r == RiskLow || r == RiskMedium || r == RiskHigh
}

// Record is the canonical candidate shape every ingestion path converges to.
type Record struct {
	ID                 int64  `json:"id" yaml:"id"`
	Name               string `json:"name" yaml:"name"`
	Position           string `json:"position" yaml:"position"`
	AppliedDate        string `json:"appliedDate" yaml:"appliedDate"`
	Status             Status `json:"status" yaml:"status"`
	Phone              string `json:"phone" yaml:"phone"`
	Email              string `json:"email" yaml:"email"`
	Location           string `json:"location" yaml:"location"`
	Skills             string `json:"skills" yaml:"skills"`
	Experience         string `json:"experience" yaml:"experience"`
	GhostingRisk       Risk   `json:"ghostingRisk" yaml:"ghostingRisk"`
	EngagementScore    int    `json:"engagementScore" yaml:"engagementScore"`
	ResponseRate       int    `json:"responseRate" yaml:"responseRate"`
	LastContact        string `json:"lastContact" yaml:"lastContact"`
	ScheduledInterview string `json:"scheduledInterview,omitempty" yaml:"scheduledInterview,omitempty"`

	// Onboarding view fields. The tracker never writes them; they only round-trip.
	HireDate           string `json:"hireDate,omitempty" yaml:"hireDate,omitempty"`
	RetentionRisk      string `json:"retentionRisk,omitempty" yaml:"retentionRisk,omitempty"`
	OnboardingProgress *int   `json:"onboardingProgress,omitempty" yaml:"onboardingProgress,omitempty"`
}

// FlatColumns is the export column order. Every canonical field is present.
var FlatColumns = []string{
	"id", "name", "position", "appliedDate", "status", "phone", "email",
	"location", "skills", "experience", "ghostingRisk", "engagementScore",
	"responseRate", "lastContact", "scheduledInterview", "hireDate",
	"retentionRisk", "onboardingProgress",
}

// Flat returns the record as an interchange row keyed by FlatColumns.
func (r Record) Flat() map[string]string {
	progress := ""
	if r.OnboardingProgress != nil {
		progress = strconv.Itoa(*r.OnboardingProgress)
	}

	return map[string]string{
		"id":                 strconv.FormatInt(r.ID, 10),
		"name":               r.Name,
		"position":           r.Position,
		"appliedDate":        r.AppliedDate,
		"status":             string(r.Status),
		"phone":              r.Phone,
		"email":              r.Email,
		"location":           r.Location,
		"skills":             r.Skills,
		"experience":         r.Experience,
		"ghostingRisk":       string(r.GhostingRisk),
		"engagementScore":    strconv.Itoa(r.EngagementScore),
		"responseRate":       strconv.Itoa(r.ResponseRate),
		"lastContact":        r.LastContact,
		"scheduledInterview": r.ScheduledInterview,
		"hireDate":           r.HireDate,
		"retentionRisk":      r.RetentionRisk,
		"onboardingProgress": progress,
	}
}

// Alert is a derived notice that a candidate currently needs outreach.
type Alert struct {
	ID          string `json:"id" yaml:"id"`
	CandidateID int64  `json:"candidateId" yaml:"candidateId"`
	Message     string `json:"message" yaml:"message"`
	Severity    Risk   `json:"severity" yaml:"severity"`
}

// RawRow is one parsed source row: arbitrary column names mapped to string or numeric cells.
type RawRow map[string]any
