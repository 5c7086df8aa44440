package chore

import (
	"time"

	"github.com/rjohnstone/chorewheel/internal/model"
	"github.com/rjohnstone/chorewheel/internal/schedule"
)

// CurrentStreak counts consecutive satisfied periods ending at asOf, walking
// backward until the first unsatisfied period or the start of recorded
// history. For plain chores a period is a calendar day satisfied by at least
// one completion; multiple completions on the same day count once. Chores
// with subtasks use their policy's streak contract instead.
func CurrentStreak(c model.Chore, subtasks []model.Subtask, log []model.Completion, asOf time.Time) int {
	if len(log) == 0 {
		return 0
	}

	period := model.PeriodDay
	if c.SubtaskPolicy != nil && c.SubtaskPolicy.StreakType == model.StreakPeriod {
		period = c.SubtaskPolicy.Period
	}

	earliest := schedule.DateOf(log[0].DoneAt)
	for _, rec := range log {
		if d := schedule.DateOf(rec.DoneAt); d.Before(earliest) {
			earliest = d
		}
	}

	streak := 0
	cursor := schedule.DateOf(asOf)
	for {
		if !periodSatisfied(c, subtasks, log, cursor) {
			break
		}
		streak++

		prev := previousPeriodEnd(period, cursor)
		if prev.Before(earliest) && !PeriodStart(period, prev).Equal(PeriodStart(period, earliest)) {
			break
		}
		cursor = prev
	}
	return streak
}

// periodSatisfied checks the completion contract for the period containing
// the cursor date.
func periodSatisfied(c model.Chore, subtasks []model.Subtask, log []model.Completion, cursor time.Time) bool {
	if c.SubtaskPolicy != nil {
		return !StreakBroken(subtasks, log, *c.SubtaskPolicy, cursor)
	}

	day := schedule.DateOf(cursor)
	for _, rec := range log {
		if rec.SubtaskID == nil && schedule.DateOf(rec.DoneAt).Equal(day) {
			return true
		}
	}
	return false
}

// previousPeriodEnd returns the last day of the period before the one
// containing the cursor.
func previousPeriodEnd(period model.PolicyPeriod, cursor time.Time) time.Time {
	return PeriodStart(period, cursor).AddDate(0, 0, -1)
}
