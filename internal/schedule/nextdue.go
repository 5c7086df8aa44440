package schedule

import "time"

// DateOf truncates a time to midnight in its own location. All due-date
// comparisons in the engine happen at local-day granularity.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// NextDue returns the next date the rule comes due. With a last completion it
// is always strictly after that completion's day. Without one the chore is
// due immediately: the first matching date on or after today.
//
// The degraded flag reports that the rule's configuration was contradictory
// (e.g. MultiWeekly with no active weekdays) and a permissive fallback was
// used instead of failing — a missing due date would make the chore silently
// untrackable.
func NextDue(r Rule, lastDone *time.Time, today time.Time) (time.Time, bool) {
	if lastDone == nil {
		return firstOccurrence(r, DateOf(today))
	}
	last := DateOf(*lastDone)

	switch r.Kind {
	case Daily:
		return nextActiveWeekday(last.AddDate(0, 0, 1), r.Weekdays), false

	case MultiWeekly:
		if len(r.Weekdays) == 0 {
			// No active days to pick from: fall back to due every day.
			return last.AddDate(0, 0, 1), true
		}
		degraded := r.TimesPerWeek > len(r.Weekdays)
		return nextActiveWeekday(last.AddDate(0, 0, 1), r.Weekdays), degraded

	case Weekly:
		if r.Weekday != nil {
			return nextWeekday(last, *r.Weekday), false
		}
		return last.AddDate(0, 0, 7), false

	case Monthly:
		if r.Monthday != nil {
			return nextMonthday(last, *r.Monthday), false
		}
		return addMonthsClamped(last, 1), false

	case MultiMonthly:
		if len(r.Monthdays) == 0 {
			// Approximate with an even spread over a 30-day month.
			interval := 30
			if r.TimesPerMonth > 0 {
				interval = max(1, (30+r.TimesPerMonth/2)/r.TimesPerMonth)
			}
			return last.AddDate(0, 0, interval), true
		}
		degraded := r.TimesPerMonth > len(r.Monthdays)
		return nextActiveMonthday(last, r.sortedMonthdays()), degraded

	case Quarterly:
		return addMonthsClamped(last, 3), false

	case SemiAnnual:
		return addMonthsClamped(last, 6), false

	case Yearly:
		return addMonthsClamped(last, 12), false
	}

	// Unknown kind is caught at parse time; treat as weekly if it slips by.
	return last.AddDate(0, 0, 7), true
}

// firstOccurrence finds the first date matching the rule on or after today,
// for chores that have never been completed.
func firstOccurrence(r Rule, today time.Time) (time.Time, bool) {
	switch r.Kind {
	case Daily:
		return nextActiveWeekday(today, r.Weekdays), false

	case MultiWeekly:
		if len(r.Weekdays) == 0 {
			return today, true
		}
		return nextActiveWeekday(today, r.Weekdays), r.TimesPerWeek > len(r.Weekdays)

	case Weekly:
		if r.Weekday == nil {
			return today, false
		}
		if today.Weekday() == *r.Weekday {
			return today, false
		}
		return nextWeekday(today, *r.Weekday), false

	case Monthly:
		if r.Monthday == nil {
			return today, false
		}
		if today.Day() == clampDay(today.Year(), today.Month(), *r.Monthday) {
			return today, false
		}
		return nextMonthday(today, *r.Monthday), false

	case MultiMonthly:
		if len(r.Monthdays) == 0 {
			return today, true
		}
		days := r.sortedMonthdays()
		for _, d := range days {
			if today.Day() == d {
				return today, r.TimesPerMonth > len(days)
			}
		}
		return nextActiveMonthday(today, days), r.TimesPerMonth > len(days)

	case Quarterly:
		return nextAnchorOccurrence(r, today, 3), false

	case SemiAnnual:
		return nextAnchorOccurrence(r, today, 6), false

	case Yearly:
		return nextAnchorOccurrence(r, today, 12), false
	}

	return today, true
}

// nextActiveWeekday returns the earliest date on or after from whose weekday
// is in the set. An empty set means every day qualifies.
func nextActiveWeekday(from time.Time, days []time.Weekday) time.Time {
	if len(days) == 0 {
		return from
	}
	for i := 0; i < 7; i++ {
		d := from.AddDate(0, 0, i)
		for _, wd := range days {
			if d.Weekday() == wd {
				return d
			}
		}
	}
	return from
}

// nextWeekday returns the next occurrence of wd strictly after the given day.
func nextWeekday(after time.Time, wd time.Weekday) time.Time {
	ahead := (int(wd) - int(after.Weekday()) + 7) % 7
	if ahead == 0 {
		ahead = 7
	}
	return after.AddDate(0, 0, ahead)
}

// nextMonthday returns the next occurrence of the given day of month strictly
// after the given day, clamping to the last day of shorter months.
func nextMonthday(after time.Time, day int) time.Time {
	year, month := after.Year(), after.Month()
	if after.Day() >= clampDay(year, month, day) {
		month++
		if month > time.December {
			month = time.January
			year++
		}
	}
	return time.Date(year, month, clampDay(year, month, day), 0, 0, 0, 0, after.Location())
}

// nextActiveMonthday returns the earliest active day strictly after the given
// day, wrapping to the next month's earliest active day when none remain.
// days must be sorted ascending. Active days beyond a month's length fall
// through to the following month.
func nextActiveMonthday(after time.Time, days []int) time.Time {
	year, month := after.Year(), after.Month()
	for i := 0; i < 12; i++ {
		limit := daysInMonth(year, month)
		for _, d := range days {
			if d > limit {
				continue
			}
			candidate := time.Date(year, month, d, 0, 0, 0, 0, after.Location())
			if candidate.After(after) {
				return candidate
			}
		}
		month++
		if month > time.December {
			month = time.January
			year++
		}
	}
	// Every active day exceeds every month length; caught by validation.
	return after.AddDate(0, 0, 1)
}

// addMonthsClamped advances by whole calendar months, keeping the day of
// month and clamping to the target month's last day. Unlike AddDate this
// never spills into the following month (Jan 31 + 1 month = Feb 29 in 2024,
// not Mar 2).
func addMonthsClamped(d time.Time, months int) time.Time {
	total := int(d.Month()) - 1 + months
	year := d.Year() + total/12
	month := time.Month(total%12 + 1)
	return time.Date(year, month, clampDay(year, month, d.Day()), 0, 0, 0, 0, d.Location())
}

// nextAnchorOccurrence steps from the rule's anchor (StartMonth/StartDay) in
// whole periods and returns the earliest occurrence on or after today.
func nextAnchorOccurrence(r Rule, today time.Time, periodMonths int) time.Time {
	year := today.Year()
	candidate := time.Date(year-1, r.StartMonth, clampDay(year-1, r.StartMonth, r.StartDay), 0, 0, 0, 0, today.Location())
	for candidate.Before(today) {
		candidate = addMonthsClamped(candidate, periodMonths)
	}
	return candidate
}

func clampDay(year int, month time.Month, day int) int {
	if limit := daysInMonth(year, month); day > limit {
		return limit
	}
	return day
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
