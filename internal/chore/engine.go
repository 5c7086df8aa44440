package chore

import (
	"time"

	"github.com/rjohnstone/chorewheel/internal/schedule"
)

// Evaluation is the full due-state snapshot for one chore at one instant.
type Evaluation struct {
	NextDue           time.Time      `json:"next_due"`
	Status            Status         `json:"status"`
	CurrentAssignee   string         `json:"current_assignee"`
	SubtasksSatisfied *bool          `json:"subtasks_satisfied,omitempty"`
	Subtasks          []SubtaskState `json:"subtasks,omitempty"`
	Streak            int            `json:"streak"`
	LastDone          *time.Time     `json:"last_done,omitempty"`
	Degraded          bool           `json:"degraded"`
}

// Evaluate computes the chore's next due date, due status, current
// assignee, subtask satisfaction, and streak from an immutable snapshot.
// now is injected by the caller; the engine never reads a clock. A rule that
// fails to parse is the caller's contract violation and is returned as an
// error wrapping schedule.ErrInvalidRule.
func Evaluate(cl ChoreLog, now time.Time) (Evaluation, error) {
	rule, err := schedule.Parse(cl.Chore.RecurrenceRule)
	if err != nil {
		return Evaluation{}, err
	}

	ev := Evaluation{
		CurrentAssignee: CurrentAssignee(cl.Chore, cl.Log),
		Streak:          CurrentStreak(cl.Chore, cl.Subtasks, cl.Log, now),
	}

	lastDone := lastCompletion(cl, now)
	ev.LastDone = lastDone

	if cl.Chore.SubtaskPolicy != nil {
		states := DeriveSubtaskState(cl.Subtasks, cl.Log, cl.Chore.SubtaskPolicy.Period, now)
		satisfied := IsChoreSatisfied(states, cl.Chore.SubtaskPolicy.CompletionType)
		ev.Subtasks = states
		ev.SubtasksSatisfied = &satisfied
	}

	ev.NextDue, ev.Degraded = schedule.NextDue(rule, lastDone, now)
	ev.Status = Classify(ev.NextDue, lastDone, now)
	return ev, nil
}

// lastCompletion derives the chore's effective last completion instant. For
// plain chores it is the most recent whole-chore record. For chores with
// subtasks, satisfying the completion policy within the current period also
// counts: the latest qualifying subtask record stands in for a whole-chore
// completion, so the due date rolls forward without a separate mark-done.
func lastCompletion(cl ChoreLog, now time.Time) *time.Time {
	var last *time.Time
	for i := range cl.Log {
		rec := &cl.Log[i]
		if rec.SubtaskID != nil {
			continue
		}
		if last == nil || rec.DoneAt.After(*last) {
			last = &rec.DoneAt
		}
	}

	policy := cl.Chore.SubtaskPolicy
	if policy == nil {
		return last
	}

	states := DeriveSubtaskState(cl.Subtasks, cl.Log, policy.Period, now)
	if !IsChoreSatisfied(states, policy.CompletionType) {
		return last
	}

	// Policy satisfied this period: the newest in-period subtask record is
	// the effective completion instant.
	start := PeriodStart(policy.Period, now)
	for i := range cl.Log {
		rec := &cl.Log[i]
		if rec.SubtaskID == nil || rec.DoneAt.Before(start) {
			continue
		}
		if last == nil || rec.DoneAt.After(*last) {
			last = &rec.DoneAt
		}
	}
	return last
}
