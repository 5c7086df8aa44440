package chore

import (
	"time"

	"github.com/rjohnstone/chorewheel/internal/schedule"
)

type Status string

const (
	StatusOverdue  Status = "overdue"
	StatusDueToday Status = "due_today"
	StatusUpcoming Status = "upcoming"
)

// Classify maps a chore's next-due date and last completion to a due status.
// Overdue takes priority over DueToday: a chore whose due date has passed
// stays visibly overdue even when a recomputation against a stale last
// completion lands on today. The only thing that suppresses Overdue and
// DueToday is a completion on the same local day as today.
func Classify(nextDue time.Time, lastDone *time.Time, today time.Time) Status {
	day := schedule.DateOf(today)
	due := schedule.DateOf(nextDue)

	if lastDone != nil && schedule.DateOf(*lastDone).Equal(day) {
		return StatusUpcoming
	}
	if due.Before(day) {
		return StatusOverdue
	}
	if due.Equal(day) {
		return StatusDueToday
	}
	return StatusUpcoming
}
