// Package scoring derives the ghosting risk and engagement score heuristics.
//
// The model is monotonic in idle time: every day since the application raises
// the perceived risk and lowers engagement by ten points, never below the floor.
package scoring

import (
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/spigell/recruit-tracker/internal/candidate"
)

const (
	MaxScore        = 100
	MinScore        = 0
	EngagementFloor = 30
	DecayPerDay     = 10

	mediumAfterDays = 2
	highAfterDays   = 5

	day = 24 * time.Hour
)

type Result struct {
	GhostingRisk    candidate.Risk
	EngagementScore int
}

// Score computes the risk pair for an application date. Explicit values win
// verbatim; only the missing ones are derived from the elapsed days.
func Score(applied, today time.Time, explicitRisk *candidate.Risk, explicitEngagement *int) Result {
	days := DaysSince(applied, today)

	res := Result{
		GhostingRisk:    RiskFor(days),
		EngagementScore: EngagementFor(days),
	}

	if explicitRisk != nil {
		res.GhostingRisk = *explicitRisk
	}
	if explicitEngagement != nil {
		res.EngagementScore = *explicitEngagement
	}

	return res
}

// Fresh is the state of a candidate that was just added by hand.
func Fresh() Result {
	return Result{GhostingRisk: candidate.RiskLow, EngagementScore: MaxScore}
}

// DaysSince returns whole days between applied and today, zero for future dates.
func DaysSince(applied, today time.Time) int {
	if applied.IsZero() {
		return 0
	}
	d := int(today.Sub(applied) / day)
	if d < 0 {
		return 0
	}
	return d
}

func RiskFor(days int) candidate.Risk {
	switch {
	case days > highAfterDays:
		return candidate.RiskHigh
	case days > mediumAfterDays:
		return candidate.RiskMedium
	default:
		return candidate.RiskLow
	}
}

func EngagementFor(days int) int {
	return clamp(MaxScore-days*DecayPerDay, EngagementFloor, MaxScore)
}

// Bump raises a score by delta while keeping it inside [0,100].
func Bump(score, delta int) int {
	return clamp(score+delta, MinScore, MaxScore)
}

// ParseDate reads an application date as it comes out of a spreadsheet:
// ISO dates and timestamps, US month-first dates, spelled-out months and
// Excel serial day numbers. Anything with a time of day is read as UTC.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if t, ok := parseLayouts(s); ok {
		return t, true
	}
	if t, ok := parseSerial(s); ok {
		return t, true
	}

	// Spreadsheets often render date cells with a trailing time, e.g. "1/8/25 0:00".
	if fields := strings.Fields(s); len(fields) > 1 {
		return parseLayouts(fields[0])
	}

	return time.Time{}, false
}

var dateLayouts = []string{
	candidate.DateLayout,
	time.RFC3339,
	"2006-1-2",
	"2006-1-2 15:04:05",
	"2006-1-2T15:04:05",
	"2006-1-2 15:04",
	"2006/1/2",
	"1/2/2006",
	"1/2/06",
	"1-2-2006",
	"1-2-06",
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 2 2006",
	"2 Jan 2006",
	"2 January 2006",
	"2-Jan-2006",
	"2-Jan-06",
	"Mon, Jan 2, 2006",
	"Monday, January 2, 2006",
}

func parseLayouts(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// Serial day numbers outside this range are more likely counts or ids than dates.
const (
	minSerial = 20000 // 1954-10-03
	maxSerial = 80000 // 2119-01-11
)

func parseSerial(s string) (time.Time, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < minSerial || f > maxSerial {
		return time.Time{}, false
	}

	t, err := excelize.ExcelDateToTime(f, false)
	if err != nil {
		return time.Time{}, false
	}

	t = t.UTC().Round(time.Minute)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
