package alerts

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/spigell/recruit-tracker/internal/candidate"
)

const (
	dropThreshold = 60

	highRiskReason = "High risk of ghosting"
	droppingReason = "Engagement dropping"
)

// namespace scopes alert ids so they stay stable for a candidate across recomputations.
var namespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("recruit-tracker/engagement-alert"))

// Qualifies reports whether a candidate needs an engagement alert.
func Qualifies(rec candidate.Record) bool {
	return rec.GhostingRisk == candidate.RiskHigh ||
		(rec.GhostingRisk == candidate.RiskMedium && rec.EngagementScore < dropThreshold)
}

// Derive recomputes the alert list from scratch, one alert per qualifying candidate, in record order.
func Derive(records []candidate.Record) []candidate.Alert {
	out := make([]candidate.Alert, 0)
	for _, rec := range records {
		if !Qualifies(rec) {
			continue
		}

		reason := droppingReason
		if rec.GhostingRisk == candidate.RiskHigh {
			reason = highRiskReason
		}

		out = append(out, candidate.Alert{
			ID:          AlertID(rec.ID),
			CandidateID: rec.ID,
			Message:     fmt.Sprintf("%s - %s", rec.Name, reason),
			Severity:    rec.GhostingRisk,
		})
	}
	return out
}

func AlertID(candidateID int64) string {
	return uuid.NewSHA1(namespace, []byte(strconv.FormatInt(candidateID, 10))).String()
}
