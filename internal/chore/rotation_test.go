package chore

import (
	"testing"

	"github.com/rjohnstone/chorewheel/internal/model"
)

func alternating(assigned, alternate string) model.Chore {
	return model.Chore{AssignedTo: assigned, AlternateWith: &alternate}
}

func TestCurrentAssigneeNoAlternation(t *testing.T) {
	c := model.Chore{AssignedTo: "alice"}
	log := []model.Completion{whole("bob", day(2024, 1, 1))}

	if got := CurrentAssignee(c, log); got != "alice" {
		t.Errorf("assignee = %q, want alice", got)
	}
}

func TestCurrentAssigneeEmptyLog(t *testing.T) {
	c := alternating("alice", "bob")
	if got := CurrentAssignee(c, nil); got != "alice" {
		t.Errorf("assignee = %q, want alice", got)
	}
}

func TestCurrentAssigneeOscillates(t *testing.T) {
	c := alternating("alice", "bob")

	var log []model.Completion
	want := []string{"alice", "bob", "alice", "bob", "alice"}
	for i, expected := range want {
		if got := CurrentAssignee(c, log); got != expected {
			t.Fatalf("turn %d: assignee = %q, want %q", i, got, expected)
		}
		log = append(log, whole(expected, day(2024, 1, i+1)))
	}
}

func TestCurrentAssigneeUnrecognizedCompleterHolds(t *testing.T) {
	c := alternating("alice", "bob")
	log := []model.Completion{
		whole("alice", day(2024, 1, 1)),
		whole("carol", day(2024, 1, 2)), // guest pitch-in, rotation holds
	}

	if got := CurrentAssignee(c, log); got != "bob" {
		t.Errorf("assignee = %q, want bob", got)
	}
}

func TestCurrentAssigneeSubtaskRecordsIgnored(t *testing.T) {
	c := alternating("alice", "bob")
	log := []model.Completion{
		whole("alice", day(2024, 1, 1)),
		sub(7, "bob", day(2024, 1, 2)),
	}

	// Bob only ticked a subtask; the whole chore is still his turn.
	if got := CurrentAssignee(c, log); got != "bob" {
		t.Errorf("assignee = %q, want bob", got)
	}
}

func TestCurrentAssigneeAnyoneNeverRotates(t *testing.T) {
	bob := "bob"
	c := model.Chore{AssignedTo: model.AssigneeAnyone, AlternateWith: &bob}
	log := []model.Completion{whole("bob", day(2024, 1, 1))}

	if got := CurrentAssignee(c, log); got != model.AssigneeAnyone {
		t.Errorf("assignee = %q, want %q", got, model.AssigneeAnyone)
	}
}
