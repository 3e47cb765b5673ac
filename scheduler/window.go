package scheduler

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hexisle/island-conquest/models"
)

// gameZone is the fixed civil timezone all scheduling decisions are made in
// (UTC+2, no daylight-saving adjustment). Keeping it fixed keeps independent
// pollers in agreement about weekday and time-of-day.
var gameZone = time.FixedZone("UTC+2", 2*60*60)

// CanActivateNow reports whether a new session of the tournament may be
// activated at the given instant. It is a pure function of the tournament's
// recurrence constraints and the instant: excluded weekdays (0=Sunday) win
// over everything, then the daily active-hours window [start, end) applies
// when both bounds are configured.
func CanActivateNow(t *models.Tournament, now time.Time) bool {
	local := now.In(gameZone)

	if len(t.ExcludedDays) > 0 {
		weekday := int(local.Weekday())
		for _, d := range t.ExcludedDays {
			if d == weekday {
				return false
			}
		}
	}

	if t.ActiveHoursStart != nil && t.ActiveHoursEnd != nil {
		start, errStart := parseClock(*t.ActiveHoursStart)
		end, errEnd := parseClock(*t.ActiveHoursEnd)
		// Unparsable bounds are treated as no restriction; the authoring
		// flow validates them before they ever reach the database.
		if errStart == nil && errEnd == nil {
			minutes := local.Hour()*60 + local.Minute()
			if minutes < start || minutes >= end {
				return false
			}
		}
	}

	return true
}

// parseClock converts an "HH:MM" civil time to minutes since midnight.
func parseClock(s string) (int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q: %w", s, err)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q: %w", s, err)
	}
	if hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("clock time %q out of range", s)
	}
	return hours*60 + minutes, nil
}
