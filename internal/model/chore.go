package model

import "time"

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// CompletionType decides when a chore with subtasks counts as completed.
type CompletionType string

const (
	CompletionAll CompletionType = "all"
	CompletionAny CompletionType = "any"
)

// StreakType decides what preserves a streak for a chore with subtasks:
// satisfying the completion policy once per period, or touching at least one
// subtask every calendar day.
type StreakType string

const (
	StreakPeriod StreakType = "period"
	StreakDaily  StreakType = "daily"
)

// PolicyPeriod is the window the subtask completion policy is evaluated over.
type PolicyPeriod string

const (
	PeriodDay   PolicyPeriod = "day"
	PeriodWeek  PolicyPeriod = "week"
	PeriodMonth PolicyPeriod = "month"
)

// SubtaskPolicy configures partial-completion semantics. It is nil on chores
// without subtasks.
type SubtaskPolicy struct {
	CompletionType CompletionType `json:"completion_type"`
	StreakType     StreakType     `json:"streak_type"`
	Period         PolicyPeriod   `json:"period"`
}

type Chore struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Icon            string         `json:"icon"`
	Priority        Priority       `json:"priority"`
	DurationMinutes int            `json:"duration_minutes"`
	Description     string         `json:"description"`
	RecurrenceRule  string         `json:"recurrence_rule"`
	AssignedTo      string         `json:"assigned_to"`
	AlternateWith   *string        `json:"alternate_with"`
	NotifyWhenDue   bool           `json:"notify_when_due"`
	SubtaskPolicy   *SubtaskPolicy `json:"subtask_policy,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

type Subtask struct {
	ID       int64  `json:"id"`
	ChoreID  string `json:"chore_id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
}

// Completion is one immutable entry in a chore's completion log. SubtaskID is
// set when the record satisfies a single subtask rather than the chore as a
// whole. The log is the source of truth; any per-subtask "completed" flag is
// a projection derived from it.
type Completion struct {
	ID        int64     `json:"id"`
	ChoreID   string    `json:"chore_id"`
	SubtaskID *int64    `json:"subtask_id,omitempty"`
	DoneBy    string    `json:"done_by"`
	DoneAt    time.Time `json:"done_at"`
}
