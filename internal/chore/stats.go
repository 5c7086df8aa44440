package chore

import (
	"time"

	"github.com/rjohnstone/chorewheel/internal/model"
	"github.com/rjohnstone/chorewheel/internal/schedule"
)

// ChoreLog pairs a chore with its subtasks and completion history — the
// immutable input snapshot the engine and aggregator work from.
type ChoreLog struct {
	Chore    model.Chore
	Subtasks []model.Subtask
	Log      []model.Completion
}

// DayStats counts an assignee's workload for a single day.
type DayStats struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// MonthStats counts an assignee's completions for the month containing asOf
// and their share of the household total.
type MonthStats struct {
	Completed  int `json:"completed"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// DailyStats reports, for the day containing asOf, how many of the chores
// currently resolving to the assignee are on today's plate (due, overdue, or
// already completed today) and how many of those were completed today.
func DailyStats(assigneeID string, chores []ChoreLog, asOf time.Time) DayStats {
	var stats DayStats
	day := schedule.DateOf(asOf)

	for _, cl := range chores {
		if CurrentAssignee(cl.Chore, cl.Log) != assigneeID {
			continue
		}
		ev, err := Evaluate(cl, asOf)
		if err != nil {
			continue
		}

		doneToday := completedOn(cl.Log, day)
		if ev.Status == StatusOverdue || ev.Status == StatusDueToday || doneToday {
			stats.Total++
			if doneToday {
				stats.Completed++
			}
		}
	}
	return stats
}

// MonthlyStats reports the assignee's whole-chore completions in the month
// containing asOf against the household total for the same month. The
// percentage is the assignee's share, rounded; an empty month is 0%, not a
// division failure.
func MonthlyStats(assigneeID string, chores []ChoreLog, asOf time.Time) MonthStats {
	start := time.Date(asOf.Year(), asOf.Month(), 1, 0, 0, 0, 0, asOf.Location())
	end := schedule.DateOf(asOf).AddDate(0, 0, 1)

	var stats MonthStats
	for _, cl := range chores {
		for _, rec := range cl.Log {
			if rec.SubtaskID != nil || rec.DoneAt.Before(start) || !rec.DoneAt.Before(end) {
				continue
			}
			stats.Total++
			if rec.DoneBy == assigneeID {
				stats.Completed++
			}
		}
	}

	if stats.Total > 0 {
		stats.Percentage = (100*stats.Completed + stats.Total/2) / stats.Total
	}
	return stats
}

func completedOn(log []model.Completion, day time.Time) bool {
	for _, rec := range log {
		if rec.SubtaskID == nil && schedule.DateOf(rec.DoneAt).Equal(day) {
			return true
		}
	}
	return false
}
