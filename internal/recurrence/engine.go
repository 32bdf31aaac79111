// Package recurrence expands RFC 5545 recurrence strings into bounded,
// deterministic sets of civil dates and diffs those sets for the schedule
// reconciler.
package recurrence

import (
	"fmt"
	"sort"
	"strings"

	"time"

	"github.com/teambition/rrule-go"
)

// Engine expands recurrence rules within a bounded window.  Expansion is a
// pure function of the rule and the window, so repeated calls with the
// same inputs always produce the same day sequence.
type Engine struct {
	Location       *time.Location // venue timezone; days are civil dates in this zone
	HorizonDays    int            // forward materialization window for Window()
	MaxOccurrences int            // hard cap per expansion; guards open-ended rules
}

// NewEngine returns an engine with the given venue timezone, horizon and
// occurrence cap.
func NewEngine(loc *time.Location, horizonDays, maxOccurrences int) *Engine {
	return &Engine{Location: loc, HorizonDays: horizonDays, MaxOccurrences: maxOccurrences}
}

// Window returns the default expansion window: midnight of yesterday in
// the venue timezone (inclusive, so same-day edits still see today's and
// yesterday's occurrences) through now plus the configured horizon.
func (e *Engine) Window(now time.Time) (time.Time, time.Time) {
	local := now.In(e.Location)
	y, m, d := local.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, e.Location).AddDate(0, 0, -1)
	end := start.AddDate(0, 0, e.HorizonDays+1)
	return start, end
}

// ruleAnchor is the fixed DTSTART for recurring rules: a Monday well
// before any schedulable date.  A constant anchor keeps INTERVAL>1 rules
// in a stable phase no matter where the expansion window begins, so slots
// materialized by an earlier pass still match later expansions.
var ruleAnchor = Day{Year: 2020, Month: time.January, Date: 6}

// CheckRule reports whether rule parses as a recurrence string.  An empty
// rule is valid and simply has no occurrences.
func CheckRule(rule string) error {
	rule = strings.TrimSpace(rule)
	if rule == "" {
		return nil
	}
	if _, err := rrule.StrToRRuleSet(rule); err != nil {
		return fmt.Errorf("parse recurrence %q: %w", rule, err)
	}
	return nil
}

// Expand parses rule and returns every occurrence day inside
// [windowStart, windowEnd], sorted ascending, deduplicated, and capped at
// MaxOccurrences.  The rule may contain RRULE, RDATE and EXDATE lines; an
// empty rule expands to no days.  Recurring rules are anchored at a fixed
// epoch so the result depends only on the arguments and the phase of an
// INTERVAL rule never drifts with the window.
func (e *Engine) Expand(rule string, windowStart, windowEnd time.Time) ([]Day, error) {
	rule = strings.TrimSpace(rule)
	if rule == "" {
		return nil, nil
	}
	set, err := rrule.StrToRRuleSet(rule)
	if err != nil {
		return nil, fmt.Errorf("parse recurrence %q: %w", rule, err)
	}
	if set.GetRRule() != nil {
		set.DTStart(ruleAnchor.Midnight(e.Location))
	}

	occ := set.Between(windowStart.In(e.Location), windowEnd.In(e.Location), true)
	if e.MaxOccurrences > 0 && len(occ) > e.MaxOccurrences {
		occ = occ[:e.MaxOccurrences]
	}

	seen := make(map[Day]struct{}, len(occ))
	days := make([]Day, 0, len(occ))
	for _, t := range occ {
		d := DayOf(t, e.Location)
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		days = append(days, d)
	}
	sortDays(days)
	return days, nil
}

func sortDays(days []Day) {
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
}
