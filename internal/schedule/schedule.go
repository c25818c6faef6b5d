// Package schedule evaluates recurring curb-restriction windows such as
// alternate-side street cleaning: given a day-of-week set and a daily
// time window, it answers whether the rule is active at a reference
// instant and when the next occurrence starts.
package schedule

import (
	"fmt"
	"strings"
	"time"
)

// DefaultTimezone is the zone curb schedules are posted in.
const DefaultTimezone = "America/New_York"

// Countdown modes reported by Evaluate.
const (
	CountdownUntilStart = "until_start"
	CountdownUntilEnd   = "until_end"
)

// dayIndex uses Monday=0..Sunday=6 so posted ranges like "Fri-Mon" wrap
// the way sign text reads.
var dayTokens = map[string]int{
	"mon": 0, "monday": 0,
	"tue": 1, "tues": 1, "tuesday": 1,
	"wed": 2, "weds": 2, "wednesday": 2,
	"thu": 3, "thur": 3, "thurs": 3, "thursday": 3,
	"fri": 4, "friday": 4,
	"sat": 5, "saturday": 5,
	"sun": 6, "sunday": 6,
}

var indexToWeekday = [7]time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// DaySet is the set of weekdays a window recurs on.
type DaySet map[time.Weekday]bool

func weekdaysFromIndices(indices map[int]bool) DaySet {
	set := make(DaySet, len(indices))
	for idx := range indices {
		set[indexToWeekday[idx]] = true
	}
	return set
}

func mondayToFriday() DaySet {
	return DaySet{
		time.Monday: true, time.Tuesday: true, time.Wednesday: true,
		time.Thursday: true, time.Friday: true,
	}
}

// ParseDaysSpec interprets posted day text: named shortcuts ("weekdays",
// "daily", "weekends"), comma/ampersand/slash lists, and ranges including
// wrap-around ("Fri-Mon"). Empty or unrecognized text falls back to
// Mon-Fri, the most common posting.
func ParseDaysSpec(spec string) DaySet {
	raw := strings.ToLower(strings.TrimSpace(spec))
	if raw == "" {
		return mondayToFriday()
	}

	switch raw {
	case "daily", "everyday", "all", "all days":
		return DaySet{
			time.Monday: true, time.Tuesday: true, time.Wednesday: true,
			time.Thursday: true, time.Friday: true, time.Saturday: true, time.Sunday: true,
		}
	case "weekdays", "mon-fri":
		return mondayToFriday()
	case "weekends", "sat-sun":
		return DaySet{time.Saturday: true, time.Sunday: true}
	}

	normalized := strings.NewReplacer("&", ",", "/", ",", " and ", ",", ";", ",").Replace(raw)
	indices := make(map[int]bool)

	for _, part := range strings.Split(normalized, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if strings.Contains(part, "-") {
			bounds := strings.SplitN(part, "-", 2)
			startTok := strings.TrimSpace(bounds[0])
			endTok := strings.TrimSpace(bounds[1])
			startIdx, okStart := dayTokens[startTok]
			endIdx, okEnd := dayTokens[endTok]
			if !okStart || !okEnd {
				continue
			}
			if startIdx <= endIdx {
				for i := startIdx; i <= endIdx; i++ {
					indices[i] = true
				}
			} else {
				for i := startIdx; i < 7; i++ {
					indices[i] = true
				}
				for i := 0; i <= endIdx; i++ {
					indices[i] = true
				}
			}
			continue
		}

		if idx, ok := dayTokens[part]; ok {
			indices[idx] = true
		}
	}

	if len(indices) == 0 {
		return mondayToFriday()
	}
	return weekdaysFromIndices(indices)
}

// TimeOfDay is a wall-clock time within a day.
type TimeOfDay struct {
	Hour, Minute, Second int
}

var timeLayouts = []string{"15:04", "15:04:05", "3:04 PM", "3 PM"}

// ParseTimeOfDay accepts the time formats seen on upstream records and
// sign text; unparseable input yields the fallback.
func ParseTimeOfDay(value string, fallback TimeOfDay) TimeOfDay {
	candidate := strings.ToUpper(strings.TrimSpace(value))
	if candidate == "" {
		return fallback
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, candidate); err == nil {
			return TimeOfDay{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}
		}
	}
	return fallback
}

// Evaluation is the outcome of checking a recurring window against a
// reference instant.
type Evaluation struct {
	ActiveNow     bool
	NextStart     time.Time
	CurrentStart  *time.Time
	CurrentEnd    *time.Time
	Countdown     time.Duration
	CountdownMode string
}

// Window is a recurring restriction window.
type Window struct {
	Days  DaySet
	Start TimeOfDay
	End   TimeOfDay
}

func (t TimeOfDay) on(anchor time.Time) time.Time {
	return time.Date(anchor.Year(), anchor.Month(), anchor.Day(), t.Hour, t.Minute, t.Second, 0, anchor.Location())
}

func (w Window) bounds(anchor time.Time) (start, end time.Time) {
	start = w.Start.on(anchor)
	end = w.End.on(anchor)
	// Windows like 22:00-02:00 span midnight.
	if !end.After(start) {
		end = end.AddDate(0, 0, 1)
	}
	return start, end
}

// Evaluate reports whether the window is active at now, the next
// occurrence start at or after now, and the countdown: to the window's
// end while active, to the next start otherwise.
func (w Window) Evaluate(now time.Time, loc *time.Location) Evaluation {
	localNow := now.In(loc)

	ev := Evaluation{CountdownMode: CountdownUntilStart}

	if w.Days[localNow.Weekday()] {
		start, end := w.bounds(localNow)
		if !localNow.Before(start) && localNow.Before(end) {
			ev.ActiveNow = true
			ev.CurrentStart = &start
			ev.CurrentEnd = &end
		}
	}

	// Offsets are strictly increasing, so the first qualifying start is
	// the earliest; ties cannot happen.
	for offset := 0; offset <= 7; offset++ {
		anchor := localNow.AddDate(0, 0, offset)
		if !w.Days[anchor.Weekday()] {
			continue
		}
		start, _ := w.bounds(anchor)
		if !start.Before(localNow) {
			ev.NextStart = start
			break
		}
	}
	if ev.NextStart.IsZero() {
		// Degenerate day sets cannot reach here, but leave a sane value.
		ev.NextStart = w.Start.on(localNow.AddDate(0, 0, 1))
	}

	if ev.ActiveNow && ev.CurrentEnd != nil {
		ev.Countdown = ev.CurrentEnd.Sub(localNow)
		ev.CountdownMode = CountdownUntilEnd
	} else {
		ev.Countdown = ev.NextStart.Sub(localNow)
	}

	return ev
}

// FormatCountdown renders a duration the way drivers read it: "24h 0m".
// Negative durations clamp to zero.
func FormatCountdown(d time.Duration) string {
	total := int(d.Seconds())
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%dh %dm", total/3600, (total%3600)/60)
}
