package schedule

import (
	"errors"
	"testing"
	"time"
)

func TestParseDaily(t *testing.T) {
	r, err := Parse("FREQ=DAILY")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if r.Kind != Daily {
		t.Errorf("kind = %v, want Daily", r.Kind)
	}
	if len(r.Weekdays) != 0 {
		t.Errorf("weekdays = %v, want empty", r.Weekdays)
	}
}

func TestParseDailyWithActiveDays(t *testing.T) {
	r, err := Parse("FREQ=DAILY;DAYS=MO,WE,FR")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []time.Weekday{time.Monday, time.Wednesday, time.Friday}
	if len(r.Weekdays) != len(want) {
		t.Fatalf("weekdays = %v, want %v", r.Weekdays, want)
	}
	for i, d := range want {
		if r.Weekdays[i] != d {
			t.Errorf("weekdays[%d] = %v, want %v", i, r.Weekdays[i], d)
		}
	}
}

func TestParseWeeklyFixedDay(t *testing.T) {
	r, err := Parse("FREQ=WEEKLY;DAY=WE")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if r.Weekday == nil || *r.Weekday != time.Wednesday {
		t.Errorf("weekday = %v, want Wednesday", r.Weekday)
	}
}

func TestParseWeeklyUnsetDay(t *testing.T) {
	r, err := Parse("FREQ=WEEKLY")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	// Absent, not a sentinel value
	if r.Weekday != nil {
		t.Errorf("weekday = %v, want nil", r.Weekday)
	}
}

func TestParseMultiWeekly(t *testing.T) {
	r, err := Parse("FREQ=MULTIWEEKLY;DAYS=MO,WE,FR,SA;TIMES=3")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if r.TimesPerWeek != 3 {
		t.Errorf("times per week = %d, want 3", r.TimesPerWeek)
	}
	if r.TimesPerMonth != 0 {
		t.Errorf("times per month = %d, want 0", r.TimesPerMonth)
	}
}

func TestParseMultiMonthly(t *testing.T) {
	r, err := Parse("FREQ=MULTIMONTHLY;MONTHDAYS=1,15;TIMES=2")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(r.Monthdays) != 2 || r.Monthdays[0] != 1 || r.Monthdays[1] != 15 {
		t.Errorf("monthdays = %v, want [1 15]", r.Monthdays)
	}
	if r.TimesPerMonth != 2 {
		t.Errorf("times per month = %d, want 2", r.TimesPerMonth)
	}
}

func TestParseAnchorKinds(t *testing.T) {
	for _, rule := range []string{
		"FREQ=QUARTERLY;STARTMONTH=3;STARTDAY=15",
		"FREQ=SEMIANNUAL;STARTMONTH=3;STARTDAY=15",
		"FREQ=YEARLY;STARTMONTH=3;STARTDAY=15",
	} {
		r, err := Parse(rule)
		if err != nil {
			t.Fatalf("parse %q: %v", rule, err)
		}
		if r.StartMonth != time.March || r.StartDay != 15 {
			t.Errorf("%q: anchor = %v %d, want March 15", rule, r.StartMonth, r.StartDay)
		}
	}
}

func TestParseRejectsOutOfDomain(t *testing.T) {
	cases := []string{
		"",
		"DAYS=MO",                        // no FREQ
		"FREQ=FORTNIGHTLY",               // unknown kind
		"FREQ=WEEKLY;DAY=XX",             // unknown day
		"FREQ=MONTHLY;MONTHDAY=32",       // out of range
		"FREQ=MONTHLY;MONTHDAY=0",        // out of range
		"FREQ=MULTIMONTHLY;MONTHDAYS=40", // out of range
		"FREQ=QUARTERLY;STARTMONTH=13;STARTDAY=1",
		"FREQ=YEARLY",                    // missing anchor
		"FREQ=MULTIWEEKLY;DAYS=MO;TIMES=8",
	}
	for _, c := range cases {
		if _, err := Parse(c); !errors.Is(err, ErrInvalidRule) {
			t.Errorf("Parse(%q) = %v, want ErrInvalidRule", c, err)
		}
	}
}

func TestRuleRoundTrip(t *testing.T) {
	rules := []string{
		"FREQ=DAILY",
		"FREQ=DAILY;DAYS=MO,TU",
		"FREQ=WEEKLY;DAY=SU",
		"FREQ=MULTIWEEKLY;DAYS=MO,WE,FR;TIMES=2",
		"FREQ=MONTHLY;MONTHDAY=31",
		"FREQ=MULTIMONTHLY;MONTHDAYS=1,15;TIMES=2",
		"FREQ=QUARTERLY;STARTMONTH=1;STARTDAY=1",
		"FREQ=YEARLY;STARTMONTH=12;STARTDAY=24",
	}
	for _, s := range rules {
		r, err := Parse(s)
		if err != nil {
			t.Fatalf("parse %q: %v", s, err)
		}
		if got := r.String(); got != s {
			t.Errorf("round trip %q = %q", s, got)
		}
	}
}

func TestDescribe(t *testing.T) {
	r, err := Parse("FREQ=MULTIWEEKLY;DAYS=MO,WE;TIMES=2")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := "2 times a week (Mon, Wed)"
	if got := r.Describe(); got != want {
		t.Errorf("describe = %q, want %q", got, want)
	}
}
