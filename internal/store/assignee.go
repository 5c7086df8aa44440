package store

import (
	"database/sql"
	"fmt"

	"github.com/rjohnstone/chorewheel/internal/model"
)

type AssigneeStore struct {
	db *sql.DB
}

func NewAssigneeStore(db *sql.DB) *AssigneeStore {
	return &AssigneeStore{db: db}
}

const assigneeCols = `id, name, color, pin_hash IS NOT NULL, active, sort_order, created_at, updated_at`

func scanAssignee(scanner interface{ Scan(...any) error }) (*model.Assignee, error) {
	var a model.Assignee
	err := scanner.Scan(&a.ID, &a.Name, &a.Color, &a.HasPIN, &a.Active, &a.SortOrder, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *AssigneeStore) Create(id, name, color string) (*model.Assignee, error) {
	var maxOrder int
	err := s.db.QueryRow(`SELECT COALESCE(MAX(sort_order), -1) FROM assignees`).Scan(&maxOrder)
	if err != nil {
		return nil, fmt.Errorf("query max sort_order: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO assignees (id, name, color, sort_order) VALUES (?, ?, ?, ?)`,
		id, name, color, maxOrder+1,
	)
	if err != nil {
		return nil, fmt.Errorf("insert assignee: %w", err)
	}
	return s.GetByID(id)
}

func (s *AssigneeStore) GetByID(id string) (*model.Assignee, error) {
	row := s.db.QueryRow(`SELECT `+assigneeCols+` FROM assignees WHERE id = ?`, id)
	a, err := scanAssignee(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get assignee: %w", err)
	}
	return a, nil
}

func (s *AssigneeStore) List() ([]model.Assignee, error) {
	rows, err := s.db.Query(`SELECT ` + assigneeCols + ` FROM assignees ORDER BY sort_order ASC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list assignees: %w", err)
	}
	defer rows.Close()

	var assignees []model.Assignee
	for rows.Next() {
		a, err := scanAssignee(rows)
		if err != nil {
			return nil, fmt.Errorf("scan assignee: %w", err)
		}
		assignees = append(assignees, *a)
	}
	return assignees, rows.Err()
}

func (s *AssigneeStore) Update(id, name, color string, active bool) (*model.Assignee, error) {
	_, err := s.db.Exec(
		`UPDATE assignees SET name = ?, color = ?, active = ?, updated_at = datetime('now') WHERE id = ?`,
		name, color, active, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update assignee: %w", err)
	}
	return s.GetByID(id)
}

func (s *AssigneeStore) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM assignees WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete assignee: %w", err)
	}
	return nil
}

func (s *AssigneeStore) UpdateSortOrder(ids []string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for i, id := range ids {
		if _, err := tx.Exec(`UPDATE assignees SET sort_order = ? WHERE id = ?`, i, id); err != nil {
			return fmt.Errorf("update sort order for %q: %w", id, err)
		}
	}
	return tx.Commit()
}

func (s *AssigneeStore) SetPIN(id, hashedPIN string) error {
	_, err := s.db.Exec(`UPDATE assignees SET pin_hash = ? WHERE id = ?`, hashedPIN, id)
	if err != nil {
		return fmt.Errorf("set pin: %w", err)
	}
	return nil
}

func (s *AssigneeStore) ClearPIN(id string) error {
	_, err := s.db.Exec(`UPDATE assignees SET pin_hash = NULL WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("clear pin: %w", err)
	}
	return nil
}

// GetPINHash returns the stored bcrypt hash, or "" when no PIN is set.
func (s *AssigneeStore) GetPINHash(id string) (string, error) {
	var hash sql.NullString
	err := s.db.QueryRow(`SELECT pin_hash FROM assignees WHERE id = ?`, id).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("assignee not found")
	}
	if err != nil {
		return "", fmt.Errorf("query pin: %w", err)
	}
	if !hash.Valid {
		return "", nil
	}
	return hash.String, nil
}

func (s *AssigneeStore) NameExists(name, excludeID string) (bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM assignees WHERE name = ? AND id != ?`,
		name, excludeID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check name exists: %w", err)
	}
	return count > 0, nil
}
