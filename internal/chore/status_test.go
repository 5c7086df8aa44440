package chore

import (
	"testing"
	"time"

	"github.com/rjohnstone/chorewheel/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func at(y int, m time.Month, d, hour int) time.Time {
	return time.Date(y, m, d, hour, 0, 0, 0, time.UTC)
}

func whole(by string, t time.Time) model.Completion {
	return model.Completion{DoneBy: by, DoneAt: t}
}

func sub(id int64, by string, t time.Time) model.Completion {
	return model.Completion{SubtaskID: &id, DoneBy: by, DoneAt: t}
}

func TestClassifyOverdue(t *testing.T) {
	got := Classify(day(2024, 1, 3), nil, day(2024, 1, 5))
	if got != StatusOverdue {
		t.Errorf("status = %q, want overdue", got)
	}
}

func TestClassifyDueToday(t *testing.T) {
	got := Classify(day(2024, 1, 5), nil, day(2024, 1, 5))
	if got != StatusDueToday {
		t.Errorf("status = %q, want due_today", got)
	}
}

func TestClassifyUpcoming(t *testing.T) {
	got := Classify(day(2024, 1, 10), nil, day(2024, 1, 5))
	if got != StatusUpcoming {
		t.Errorf("status = %q, want upcoming", got)
	}
}

func TestClassifySameDayCompletionSuppressesDue(t *testing.T) {
	// Completed earlier today: not nagging again even if the recomputed
	// due date lands on or before today.
	done := at(2024, 1, 5, 9)
	for _, due := range []time.Time{day(2024, 1, 3), day(2024, 1, 5)} {
		if got := Classify(due, &done, at(2024, 1, 5, 18)); got != StatusUpcoming {
			t.Errorf("due %v: status = %q, want upcoming", due, got)
		}
	}
}

func TestClassifyYesterdayCompletionDoesNotSuppress(t *testing.T) {
	done := at(2024, 1, 4, 23)
	if got := Classify(day(2024, 1, 5), &done, at(2024, 1, 5, 8)); got != StatusDueToday {
		t.Errorf("status = %q, want due_today", got)
	}
}
