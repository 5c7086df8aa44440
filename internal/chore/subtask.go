package chore

import (
	"time"

	"github.com/rjohnstone/chorewheel/internal/model"
	"github.com/rjohnstone/chorewheel/internal/schedule"
)

// SubtaskState is the derived completion projection for one subtask. The
// completion log is authoritative; this is recomputed, never stored.
type SubtaskState struct {
	model.Subtask
	Completed bool `json:"completed"`
}

// PeriodStart returns the start of the policy period containing asOf.
// Weeks start on Monday.
func PeriodStart(p model.PolicyPeriod, asOf time.Time) time.Time {
	day := schedule.DateOf(asOf)
	switch p {
	case model.PeriodWeek:
		offset := (int(day.Weekday()) - int(time.Monday) + 7) % 7
		return day.AddDate(0, 0, -offset)
	case model.PeriodMonth:
		return time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
	default:
		return day
	}
}

// DeriveSubtaskState folds the completion log into per-subtask completed
// flags for the policy period containing asOf. A subtask is completed when
// at least one of its records falls within [period start, asOf].
func DeriveSubtaskState(subtasks []model.Subtask, log []model.Completion, period model.PolicyPeriod, asOf time.Time) []SubtaskState {
	start := PeriodStart(period, asOf)
	end := schedule.DateOf(asOf)
	done := make(map[int64]bool)
	for _, c := range log {
		if c.SubtaskID == nil {
			continue
		}
		if c.DoneAt.Before(start) || schedule.DateOf(c.DoneAt).After(end) {
			continue
		}
		done[*c.SubtaskID] = true
	}

	states := make([]SubtaskState, len(subtasks))
	for i, st := range subtasks {
		states[i] = SubtaskState{Subtask: st, Completed: done[st.ID]}
	}
	return states
}

// IsChoreSatisfied reports whether the parent chore counts as completed
// under the given completion policy. A chore with no subtasks is never
// satisfied through this path.
func IsChoreSatisfied(states []SubtaskState, ct model.CompletionType) bool {
	if len(states) == 0 {
		return false
	}
	switch ct {
	case model.CompletionAny:
		for _, s := range states {
			if s.Completed {
				return true
			}
		}
		return false
	default: // all
		for _, s := range states {
			if !s.Completed {
				return false
			}
		}
		return true
	}
}

// StreakBroken reports whether the streak contract failed for the period
// containing asOf. Period streaks require the completion policy to be
// satisfied at least once within the policy period; Daily streaks require at
// least one subtask completion on asOf's calendar day regardless of which
// subtask.
func StreakBroken(subtasks []model.Subtask, log []model.Completion, policy model.SubtaskPolicy, asOf time.Time) bool {
	switch policy.StreakType {
	case model.StreakDaily:
		day := schedule.DateOf(asOf)
		for _, c := range log {
			if c.SubtaskID != nil && schedule.DateOf(c.DoneAt).Equal(day) {
				return false
			}
		}
		return true
	default: // period
		states := DeriveSubtaskState(subtasks, log, policy.Period, asOf)
		return !IsChoreSatisfied(states, policy.CompletionType)
	}
}
