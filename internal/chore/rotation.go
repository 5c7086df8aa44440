package chore

import "github.com/rjohnstone/chorewheel/internal/model"

// CurrentAssignee resolves who is responsible for the chore right now from
// its static assignment plus the completion log (chronological, oldest
// first). Without alternation the static assignment holds unconditionally.
//
// With alternation, responsibility flips off the most recent whole-chore
// completion done by one of the two configured parties: the primary just
// went, so the alternate is next, and vice versa. Completions by anyone else
// hold the rotation where it was rather than handing it to a configured
// party out of turn.
func CurrentAssignee(c model.Chore, log []model.Completion) string {
	if c.AlternateWith == nil || c.AssignedTo == model.AssigneeAnyone {
		return c.AssignedTo
	}
	alternate := *c.AlternateWith

	for i := len(log) - 1; i >= 0; i-- {
		if log[i].SubtaskID != nil {
			// Subtask touches don't hand off the whole chore.
			continue
		}
		switch log[i].DoneBy {
		case c.AssignedTo:
			return alternate
		case alternate:
			return c.AssignedTo
		}
	}
	return c.AssignedTo
}
