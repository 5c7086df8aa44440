package model

import "time"

// AssigneeAnyone is the reserved assignee id meaning no specific person is
// responsible for a chore. It is valid as a static assignment but can never
// appear as the completer on a completion record.
const AssigneeAnyone = "anyone"

type Assignee struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	Active    bool      `json:"active"`
	HasPIN    bool      `json:"has_pin"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
