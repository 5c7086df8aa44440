package schedule

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidRule is returned for rules with out-of-domain values or a
// malformed encoding. Contradictory-but-in-domain configuration never
// produces this error; it degrades instead (see NextDue).
var ErrInvalidRule = errors.New("invalid recurrence rule")

type Kind int

const (
	Daily Kind = iota
	Weekly
	MultiWeekly
	Monthly
	MultiMonthly
	Quarterly
	SemiAnnual
	Yearly
)

var kindNames = map[Kind]string{
	Daily:        "DAILY",
	Weekly:       "WEEKLY",
	MultiWeekly:  "MULTIWEEKLY",
	Monthly:      "MONTHLY",
	MultiMonthly: "MULTIMONTHLY",
	Quarterly:    "QUARTERLY",
	SemiAnnual:   "SEMIANNUAL",
	Yearly:       "YEARLY",
}

var kindFromName = map[string]Kind{
	"DAILY":        Daily,
	"WEEKLY":       Weekly,
	"MULTIWEEKLY":  MultiWeekly,
	"MONTHLY":      Monthly,
	"MULTIMONTHLY": MultiMonthly,
	"QUARTERLY":    Quarterly,
	"SEMIANNUAL":   SemiAnnual,
	"YEARLY":       Yearly,
}

var dayNames = map[string]time.Weekday{
	"SU": time.Sunday,
	"MO": time.Monday,
	"TU": time.Tuesday,
	"WE": time.Wednesday,
	"TH": time.Thursday,
	"FR": time.Friday,
	"SA": time.Saturday,
}

var dayAbbrev = map[time.Weekday]string{
	time.Sunday:    "SU",
	time.Monday:    "MO",
	time.Tuesday:   "TU",
	time.Wednesday: "WE",
	time.Thursday:  "TH",
	time.Friday:    "FR",
	time.Saturday:  "SA",
}

// Rule describes how often, and on which calendar positions, a chore comes
// due. Exactly the fields for the rule's Kind are meaningful; an unset
// weekday/monthday is nil, never an in-range sentinel.
type Rule struct {
	Kind Kind

	// Daily, MultiWeekly: weekdays the chore may fall on. Empty means every
	// day for Daily; for MultiWeekly it is a configuration error handled by
	// degradation in NextDue.
	Weekdays []time.Weekday

	// Weekly: the fixed weekday. Nil means a plain 7-day cadence from the
	// last completion.
	Weekday *time.Weekday

	// MultiWeekly: how many of the active weekdays are expected per week.
	TimesPerWeek int

	// Monthly: the fixed day of month (1-31), clamped to shorter months.
	// Nil means a plain one-calendar-month cadence.
	Monthday *int

	// MultiMonthly: active days of month and the expected count per month.
	Monthdays     []int
	TimesPerMonth int

	// Quarterly, SemiAnnual, Yearly: the anchor the period steps from.
	StartMonth time.Month
	StartDay   int
}

// Parse decodes a rule string such as "FREQ=MULTIWEEKLY;DAYS=MO,WE,FR;TIMES=2".
func Parse(s string) (Rule, error) {
	if s == "" {
		return Rule{}, fmt.Errorf("%w: empty rule", ErrInvalidRule)
	}

	var r Rule
	var hasFreq bool

	for _, part := range strings.Split(s, ";") {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			return Rule{}, fmt.Errorf("%w: invalid part %q", ErrInvalidRule, part)
		}
		key, val := kv[0], kv[1]

		switch key {
		case "FREQ":
			k, ok := kindFromName[val]
			if !ok {
				return Rule{}, fmt.Errorf("%w: unknown frequency %q", ErrInvalidRule, val)
			}
			r.Kind = k
			hasFreq = true

		case "DAYS":
			for _, d := range strings.Split(val, ",") {
				wd, ok := dayNames[strings.TrimSpace(d)]
				if !ok {
					return Rule{}, fmt.Errorf("%w: unknown day %q", ErrInvalidRule, d)
				}
				r.Weekdays = append(r.Weekdays, wd)
			}

		case "DAY":
			wd, ok := dayNames[val]
			if !ok {
				return Rule{}, fmt.Errorf("%w: unknown day %q", ErrInvalidRule, val)
			}
			r.Weekday = &wd

		case "MONTHDAY":
			n, err := strconv.Atoi(val)
			if err != nil || n < 1 || n > 31 {
				return Rule{}, fmt.Errorf("%w: invalid MONTHDAY %q", ErrInvalidRule, val)
			}
			r.Monthday = &n

		case "MONTHDAYS":
			for _, d := range strings.Split(val, ",") {
				n, err := strconv.Atoi(strings.TrimSpace(d))
				if err != nil || n < 1 || n > 31 {
					return Rule{}, fmt.Errorf("%w: invalid MONTHDAYS entry %q", ErrInvalidRule, d)
				}
				r.Monthdays = append(r.Monthdays, n)
			}

		case "TIMES":
			n, err := strconv.Atoi(val)
			if err != nil || n < 1 {
				return Rule{}, fmt.Errorf("%w: invalid TIMES %q", ErrInvalidRule, val)
			}
			// Meaning depends on FREQ; assigned after the loop.
			r.TimesPerWeek = n
			r.TimesPerMonth = n

		case "STARTMONTH":
			n, err := strconv.Atoi(val)
			if err != nil || n < 1 || n > 12 {
				return Rule{}, fmt.Errorf("%w: invalid STARTMONTH %q", ErrInvalidRule, val)
			}
			r.StartMonth = time.Month(n)

		case "STARTDAY":
			n, err := strconv.Atoi(val)
			if err != nil || n < 1 || n > 31 {
				return Rule{}, fmt.Errorf("%w: invalid STARTDAY %q", ErrInvalidRule, val)
			}
			r.StartDay = n

		default:
			return Rule{}, fmt.Errorf("%w: unsupported key %q", ErrInvalidRule, key)
		}
	}

	if !hasFreq {
		return Rule{}, fmt.Errorf("%w: FREQ is required", ErrInvalidRule)
	}

	// TIMES only applies to the multi kinds.
	if r.Kind != MultiWeekly {
		r.TimesPerWeek = 0
	}
	if r.Kind != MultiMonthly {
		r.TimesPerMonth = 0
	}

	if err := r.validate(); err != nil {
		return Rule{}, err
	}
	return r, nil
}

func (r Rule) validate() error {
	switch r.Kind {
	case Daily:
		// Empty weekday set means every day.
	case Weekly:
		if len(r.Weekdays) > 0 {
			return fmt.Errorf("%w: WEEKLY takes DAY, not DAYS", ErrInvalidRule)
		}
	case MultiWeekly:
		if r.TimesPerWeek > 7 {
			return fmt.Errorf("%w: TIMES %d exceeds days in a week", ErrInvalidRule, r.TimesPerWeek)
		}
	case Monthly:
	case MultiMonthly:
		if r.TimesPerMonth > 31 {
			return fmt.Errorf("%w: TIMES %d exceeds days in a month", ErrInvalidRule, r.TimesPerMonth)
		}
	case Quarterly, SemiAnnual, Yearly:
		if r.StartMonth == 0 || r.StartDay == 0 {
			return fmt.Errorf("%w: %s requires STARTMONTH and STARTDAY", ErrInvalidRule, kindNames[r.Kind])
		}
	default:
		return fmt.Errorf("%w: unknown kind %d", ErrInvalidRule, r.Kind)
	}
	return nil
}

// String serializes the rule back to its storage encoding.
func (r Rule) String() string {
	parts := []string{"FREQ=" + kindNames[r.Kind]}

	if len(r.Weekdays) > 0 {
		days := make([]string, len(r.Weekdays))
		for i, d := range r.Weekdays {
			days[i] = dayAbbrev[d]
		}
		parts = append(parts, "DAYS="+strings.Join(days, ","))
	}
	if r.Weekday != nil {
		parts = append(parts, "DAY="+dayAbbrev[*r.Weekday])
	}
	if r.Monthday != nil {
		parts = append(parts, fmt.Sprintf("MONTHDAY=%d", *r.Monthday))
	}
	if len(r.Monthdays) > 0 {
		days := make([]string, len(r.Monthdays))
		for i, d := range r.Monthdays {
			days[i] = strconv.Itoa(d)
		}
		parts = append(parts, "MONTHDAYS="+strings.Join(days, ","))
	}
	if r.TimesPerWeek > 0 {
		parts = append(parts, fmt.Sprintf("TIMES=%d", r.TimesPerWeek))
	}
	if r.TimesPerMonth > 0 {
		parts = append(parts, fmt.Sprintf("TIMES=%d", r.TimesPerMonth))
	}
	if r.StartMonth != 0 {
		parts = append(parts, fmt.Sprintf("STARTMONTH=%d", int(r.StartMonth)))
	}
	if r.StartDay != 0 {
		parts = append(parts, fmt.Sprintf("STARTDAY=%d", r.StartDay))
	}

	return strings.Join(parts, ";")
}

// Describe returns a human-readable description of the rule.
func (r Rule) Describe() string {
	switch r.Kind {
	case Daily:
		if len(r.Weekdays) > 0 {
			return "Every " + joinDayNames(r.Weekdays)
		}
		return "Every day"
	case Weekly:
		if r.Weekday != nil {
			return "Weekly on " + r.Weekday.String()
		}
		return "Weekly"
	case MultiWeekly:
		return fmt.Sprintf("%d times a week (%s)", r.TimesPerWeek, joinDayNames(r.Weekdays))
	case Monthly:
		if r.Monthday != nil {
			return fmt.Sprintf("Monthly on day %d", *r.Monthday)
		}
		return "Monthly"
	case MultiMonthly:
		return fmt.Sprintf("%d times a month", r.TimesPerMonth)
	case Quarterly:
		return fmt.Sprintf("Quarterly from %s %d", r.StartMonth, r.StartDay)
	case SemiAnnual:
		return fmt.Sprintf("Twice a year from %s %d", r.StartMonth, r.StartDay)
	case Yearly:
		return fmt.Sprintf("Yearly on %s %d", r.StartMonth, r.StartDay)
	}
	return ""
}

func joinDayNames(days []time.Weekday) string {
	names := make([]string, len(days))
	for i, d := range days {
		names[i] = d.String()[:3]
	}
	return strings.Join(names, ", ")
}

// sortedMonthdays returns the rule's active monthdays in ascending order.
func (r Rule) sortedMonthdays() []int {
	days := make([]int, len(r.Monthdays))
	copy(days, r.Monthdays)
	sort.Ints(days)
	return days
}
