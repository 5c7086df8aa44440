package store

import (
	"testing"
	"time"

	"github.com/rjohnstone/chorewheel/internal/model"
)

func testChore(id string) model.Chore {
	return model.Chore{
		ID:             id,
		Name:           "Wash dishes",
		Icon:           "mdi:dishwasher",
		Priority:       model.PriorityMedium,
		RecurrenceRule: "FREQ=DAILY",
		AssignedTo:     "alice",
	}
}

func TestChoreCRUD(t *testing.T) {
	cs := NewChoreStore(setupTestDB(t))

	// Create
	c, err := cs.Create(testChore("c1"))
	if err != nil {
		t.Fatalf("create chore: %v", err)
	}
	if c.Name != "Wash dishes" {
		t.Errorf("name = %q, want %q", c.Name, "Wash dishes")
	}
	if c.RecurrenceRule != "FREQ=DAILY" {
		t.Errorf("recurrence_rule = %q, want %q", c.RecurrenceRule, "FREQ=DAILY")
	}
	if c.AlternateWith != nil {
		t.Errorf("alternate_with = %v, want nil", *c.AlternateWith)
	}
	if c.SubtaskPolicy != nil {
		t.Error("subtask_policy should be nil")
	}

	// Update
	bob := "bob"
	c.Name = "Wash all dishes"
	c.AlternateWith = &bob
	updated, err := cs.Update(*c)
	if err != nil {
		t.Fatalf("update chore: %v", err)
	}
	if updated.Name != "Wash all dishes" {
		t.Errorf("updated name = %q, want %q", updated.Name, "Wash all dishes")
	}
	if updated.AlternateWith == nil || *updated.AlternateWith != "bob" {
		t.Errorf("alternate_with = %v, want bob", updated.AlternateWith)
	}

	// List
	chores, err := cs.List()
	if err != nil {
		t.Fatalf("list chores: %v", err)
	}
	if len(chores) != 1 {
		t.Fatalf("expected 1 chore, got %d", len(chores))
	}

	// Delete
	if err := cs.Delete("c1"); err != nil {
		t.Fatalf("delete chore: %v", err)
	}
	got, err := cs.GetByID("c1")
	if err != nil {
		t.Fatalf("get deleted chore: %v", err)
	}
	if got != nil {
		t.Error("expected nil for deleted chore")
	}
}

func TestChoreSubtaskPolicyRoundTrip(t *testing.T) {
	cs := NewChoreStore(setupTestDB(t))

	c := testChore("c1")
	c.SubtaskPolicy = &model.SubtaskPolicy{
		CompletionType: model.CompletionAny,
		StreakType:     model.StreakPeriod,
		Period:         model.PeriodWeek,
	}
	created, err := cs.Create(c)
	if err != nil {
		t.Fatalf("create chore: %v", err)
	}
	if created.SubtaskPolicy == nil {
		t.Fatal("subtask_policy = nil after round trip")
	}
	if created.SubtaskPolicy.CompletionType != model.CompletionAny ||
		created.SubtaskPolicy.StreakType != model.StreakPeriod ||
		created.SubtaskPolicy.Period != model.PeriodWeek {
		t.Errorf("policy = %+v, want any/period/week", created.SubtaskPolicy)
	}
}

func TestReplaceSubtasksKeepsMatchingIDs(t *testing.T) {
	cs := NewChoreStore(setupTestDB(t))
	cs.Create(testChore("c1"))

	first, err := cs.ReplaceSubtasks("c1", []string{"wipe counters", "mop floor"})
	if err != nil {
		t.Fatalf("replace subtasks: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("expected 2 subtasks, got %d", len(first))
	}
	mopID := first[1].ID

	// Rename one, keep one, reorder
	second, err := cs.ReplaceSubtasks("c1", []string{"mop floor", "empty bin"})
	if err != nil {
		t.Fatalf("replace subtasks: %v", err)
	}
	if len(second) != 2 {
		t.Fatalf("expected 2 subtasks, got %d", len(second))
	}
	if second[0].Name != "mop floor" || second[0].ID != mopID {
		t.Errorf("kept subtask = %+v, want mop floor with id %d", second[0], mopID)
	}
	if second[1].Name != "empty bin" {
		t.Errorf("new subtask = %q, want empty bin", second[1].Name)
	}
}

func TestCompletionLogChronological(t *testing.T) {
	cs := NewChoreStore(setupTestDB(t))
	cs.Create(testChore("c1"))

	base := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)
	cs.CreateCompletion("c1", nil, "bob", base.Add(2*time.Hour))
	cs.CreateCompletion("c1", nil, "alice", base)

	log, err := cs.ListCompletions("c1")
	if err != nil {
		t.Fatalf("list completions: %v", err)
	}
	if len(log) != 2 {
		t.Fatalf("expected 2 completions, got %d", len(log))
	}
	if log[0].DoneBy != "alice" || log[1].DoneBy != "bob" {
		t.Errorf("order = %q, %q, want alice then bob", log[0].DoneBy, log[1].DoneBy)
	}
}

func TestCompletionSubtaskRecord(t *testing.T) {
	cs := NewChoreStore(setupTestDB(t))
	cs.Create(testChore("c1"))

	subtasks, _ := cs.ReplaceSubtasks("c1", []string{"wipe counters"})
	stID := subtasks[0].ID

	rec, err := cs.CreateCompletion("c1", &stID, "alice", time.Now())
	if err != nil {
		t.Fatalf("create subtask completion: %v", err)
	}
	if rec.SubtaskID == nil || *rec.SubtaskID != stID {
		t.Errorf("subtask_id = %v, want %d", rec.SubtaskID, stID)
	}
}

func TestDeleteLastCompletion(t *testing.T) {
	cs := NewChoreStore(setupTestDB(t))
	cs.Create(testChore("c1"))

	base := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)
	cs.CreateCompletion("c1", nil, "alice", base)
	cs.CreateCompletion("c1", nil, "bob", base.Add(time.Hour))

	removed, err := cs.DeleteLastCompletion("c1")
	if err != nil {
		t.Fatalf("delete last completion: %v", err)
	}
	if !removed {
		t.Fatal("removed = false, want true")
	}

	log, _ := cs.ListCompletions("c1")
	if len(log) != 1 || log[0].DoneBy != "alice" {
		t.Errorf("log = %+v, want only alice's record", log)
	}

	// Subtask records are not undo targets
	subtasks, _ := cs.ReplaceSubtasks("c1", []string{"step"})
	cs.CreateCompletion("c1", &subtasks[0].ID, "alice", base.Add(2*time.Hour))

	removed, _ = cs.DeleteLastCompletion("c1")
	if !removed {
		t.Fatal("removed = false, want alice's whole-chore record gone")
	}
	removed, err = cs.DeleteLastCompletion("c1")
	if err != nil {
		t.Fatalf("delete last completion: %v", err)
	}
	if removed {
		t.Error("removed = true with only subtask records left")
	}
}

func TestDeleteChoreCascades(t *testing.T) {
	cs := NewChoreStore(setupTestDB(t))
	cs.Create(testChore("c1"))
	cs.ReplaceSubtasks("c1", []string{"a", "b"})
	cs.CreateCompletion("c1", nil, "alice", time.Now())

	if err := cs.Delete("c1"); err != nil {
		t.Fatalf("delete chore: %v", err)
	}

	subtasks, _ := cs.ListSubtasks("c1")
	if len(subtasks) != 0 {
		t.Errorf("expected 0 subtasks after cascade, got %d", len(subtasks))
	}
	log, _ := cs.ListCompletions("c1")
	if len(log) != 0 {
		t.Errorf("expected 0 completions after cascade, got %d", len(log))
	}
}

func TestLoadAssemblesSnapshot(t *testing.T) {
	cs := NewChoreStore(setupTestDB(t))

	cl, err := cs.Load("missing")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cl != nil {
		t.Fatal("expected nil for missing chore")
	}

	cs.Create(testChore("c1"))
	cs.ReplaceSubtasks("c1", []string{"a"})
	cs.CreateCompletion("c1", nil, "alice", time.Now())

	cl, err = cs.Load("c1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cl.Chore.ID != "c1" || len(cl.Subtasks) != 1 || len(cl.Log) != 1 {
		t.Errorf("snapshot = %+v, want chore with 1 subtask and 1 record", cl)
	}
}

func TestLoadAll(t *testing.T) {
	cs := NewChoreStore(setupTestDB(t))

	cs.Create(testChore("c1"))
	second := testChore("c2")
	second.Name = "Vacuum"
	cs.Create(second)
	cs.CreateCompletion("c1", nil, "alice", time.Now())

	logs, err := cs.LoadAll()
	if err != nil {
		t.Fatalf("load all: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(logs))
	}
	for _, cl := range logs {
		if cl.Chore.ID == "c1" && len(cl.Log) != 1 {
			t.Errorf("c1 log = %d records, want 1", len(cl.Log))
		}
		if cl.Chore.ID == "c2" && len(cl.Log) != 0 {
			t.Errorf("c2 log = %d records, want 0", len(cl.Log))
		}
	}
}
