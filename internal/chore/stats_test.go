package chore

import (
	"testing"

	"github.com/rjohnstone/chorewheel/internal/model"
)

func dailyChore(id, assignee string) model.Chore {
	return model.Chore{ID: id, Name: id, RecurrenceRule: "FREQ=DAILY", AssignedTo: assignee}
}

func TestDailyStats(t *testing.T) {
	chores := []ChoreLog{
		{
			// Completed today: counts toward both totals.
			Chore: dailyChore("dishes", "alice"),
			Log:   []model.Completion{whole("alice", at(2024, 1, 10, 9))},
		},
		{
			// Due today, not done yet.
			Chore: dailyChore("laundry", "alice"),
			Log:   []model.Completion{whole("alice", day(2024, 1, 9))},
		},
		{
			// Not due until Friday: off today's plate.
			Chore: model.Chore{ID: "vacuum", RecurrenceRule: "FREQ=WEEKLY;DAY=FR", AssignedTo: "alice"},
			Log:   []model.Completion{whole("alice", day(2024, 1, 5))},
		},
		{
			// Someone else's chore.
			Chore: dailyChore("bins", "bob"),
			Log:   []model.Completion{whole("bob", day(2024, 1, 9))},
		},
	}

	got := DailyStats("alice", chores, at(2024, 1, 10, 12))
	if got.Total != 2 || got.Completed != 1 {
		t.Errorf("stats = %+v, want completed 1 of 2", got)
	}
}

func TestDailyStatsRotationAware(t *testing.T) {
	bob := "bob"
	c := model.Chore{ID: "dishes", RecurrenceRule: "FREQ=DAILY", AssignedTo: "alice", AlternateWith: &bob}
	chores := []ChoreLog{{
		Chore: c,
		Log:   []model.Completion{whole("alice", day(2024, 1, 9))},
	}}

	// Alice went yesterday, so today the chore is on Bob's plate.
	if got := DailyStats("alice", chores, day(2024, 1, 10)); got.Total != 0 {
		t.Errorf("alice total = %d, want 0", got.Total)
	}
	if got := DailyStats("bob", chores, day(2024, 1, 10)); got.Total != 1 {
		t.Errorf("bob total = %d, want 1", got.Total)
	}
}

func TestMonthlyStats(t *testing.T) {
	chores := []ChoreLog{
		{
			Chore: dailyChore("dishes", "alice"),
			Log: []model.Completion{
				whole("alice", day(2024, 1, 5)),
				whole("bob", day(2024, 1, 6)),
				whole("alice", day(2023, 12, 31)), // previous month, excluded
			},
		},
		{
			Chore: dailyChore("laundry", "bob"),
			Log: []model.Completion{
				whole("alice", day(2024, 1, 8)),
				sub(1, "alice", day(2024, 1, 9)), // subtask record, excluded
			},
		},
	}

	got := MonthlyStats("alice", chores, day(2024, 1, 15))
	if got.Completed != 2 || got.Total != 3 {
		t.Fatalf("stats = %+v, want completed 2 of 3", got)
	}
	if got.Percentage != 67 {
		t.Errorf("percentage = %d, want 67", got.Percentage)
	}
}

func TestMonthlyStatsEmptyMonth(t *testing.T) {
	got := MonthlyStats("alice", nil, day(2024, 1, 15))
	if got.Total != 0 || got.Percentage != 0 {
		t.Errorf("stats = %+v, want zeroes", got)
	}
}
