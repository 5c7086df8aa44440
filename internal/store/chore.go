package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rjohnstone/chorewheel/internal/chore"
	"github.com/rjohnstone/chorewheel/internal/model"
)

type ChoreStore struct {
	db *sql.DB
}

func NewChoreStore(db *sql.DB) *ChoreStore {
	return &ChoreStore{db: db}
}

// --- Chore methods ---

const choreCols = `id, name, icon, priority, duration_minutes, description, recurrence_rule,
	assigned_to, alternate_with, notify_when_due,
	subtasks_completion_type, subtasks_streak_type, subtasks_period,
	created_at, updated_at`

func scanChore(scanner interface{ Scan(...any) error }) (*model.Chore, error) {
	var c model.Chore
	var alternateWith, completionType, streakType, period sql.NullString

	err := scanner.Scan(
		&c.ID, &c.Name, &c.Icon, &c.Priority, &c.DurationMinutes, &c.Description,
		&c.RecurrenceRule, &c.AssignedTo, &alternateWith, &c.NotifyWhenDue,
		&completionType, &streakType, &period,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if alternateWith.Valid {
		c.AlternateWith = &alternateWith.String
	}
	if completionType.Valid {
		c.SubtaskPolicy = &model.SubtaskPolicy{
			CompletionType: model.CompletionType(completionType.String),
			StreakType:     model.StreakType(streakType.String),
			Period:         model.PolicyPeriod(period.String),
		}
	}
	return &c, nil
}

func policyCols(c model.Chore) (completionType, streakType, period sql.NullString) {
	if c.SubtaskPolicy == nil {
		return
	}
	completionType = sql.NullString{String: string(c.SubtaskPolicy.CompletionType), Valid: true}
	streakType = sql.NullString{String: string(c.SubtaskPolicy.StreakType), Valid: true}
	period = sql.NullString{String: string(c.SubtaskPolicy.Period), Valid: true}
	return
}

func (s *ChoreStore) Create(c model.Chore) (*model.Chore, error) {
	var alternateWith sql.NullString
	if c.AlternateWith != nil {
		alternateWith = sql.NullString{String: *c.AlternateWith, Valid: true}
	}
	completionType, streakType, period := policyCols(c)

	_, err := s.db.Exec(
		`INSERT INTO chores (id, name, icon, priority, duration_minutes, description, recurrence_rule,
			assigned_to, alternate_with, notify_when_due,
			subtasks_completion_type, subtasks_streak_type, subtasks_period)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Icon, c.Priority, c.DurationMinutes, c.Description, c.RecurrenceRule,
		c.AssignedTo, alternateWith, c.NotifyWhenDue,
		completionType, streakType, period,
	)
	if err != nil {
		return nil, fmt.Errorf("insert chore: %w", err)
	}
	return s.GetByID(c.ID)
}

func (s *ChoreStore) GetByID(id string) (*model.Chore, error) {
	row := s.db.QueryRow(`SELECT `+choreCols+` FROM chores WHERE id = ?`, id)
	c, err := scanChore(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get chore: %w", err)
	}
	return c, nil
}

func (s *ChoreStore) List() ([]model.Chore, error) {
	rows, err := s.db.Query(`SELECT ` + choreCols + ` FROM chores ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list chores: %w", err)
	}
	defer rows.Close()

	var chores []model.Chore
	for rows.Next() {
		c, err := scanChore(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chore: %w", err)
		}
		chores = append(chores, *c)
	}
	return chores, rows.Err()
}

func (s *ChoreStore) Update(c model.Chore) (*model.Chore, error) {
	var alternateWith sql.NullString
	if c.AlternateWith != nil {
		alternateWith = sql.NullString{String: *c.AlternateWith, Valid: true}
	}
	completionType, streakType, period := policyCols(c)

	_, err := s.db.Exec(
		`UPDATE chores SET name = ?, icon = ?, priority = ?, duration_minutes = ?, description = ?,
			recurrence_rule = ?, assigned_to = ?, alternate_with = ?, notify_when_due = ?,
			subtasks_completion_type = ?, subtasks_streak_type = ?, subtasks_period = ?,
			updated_at = datetime('now')
		 WHERE id = ?`,
		c.Name, c.Icon, c.Priority, c.DurationMinutes, c.Description,
		c.RecurrenceRule, c.AssignedTo, alternateWith, c.NotifyWhenDue,
		completionType, streakType, period,
		c.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update chore: %w", err)
	}
	return s.GetByID(c.ID)
}

func (s *ChoreStore) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM chores WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete chore: %w", err)
	}
	return nil
}

// --- Subtask methods ---

func (s *ChoreStore) ListSubtasks(choreID string) ([]model.Subtask, error) {
	rows, err := s.db.Query(
		`SELECT id, chore_id, name, position FROM subtasks WHERE chore_id = ? ORDER BY position ASC, id ASC`,
		choreID,
	)
	if err != nil {
		return nil, fmt.Errorf("list subtasks: %w", err)
	}
	defer rows.Close()

	var subtasks []model.Subtask
	for rows.Next() {
		var st model.Subtask
		if err := rows.Scan(&st.ID, &st.ChoreID, &st.Name, &st.Position); err != nil {
			return nil, fmt.Errorf("scan subtask: %w", err)
		}
		subtasks = append(subtasks, st)
	}
	return subtasks, rows.Err()
}

func (s *ChoreStore) GetSubtask(id int64) (*model.Subtask, error) {
	var st model.Subtask
	err := s.db.QueryRow(
		`SELECT id, chore_id, name, position FROM subtasks WHERE id = ?`, id,
	).Scan(&st.ID, &st.ChoreID, &st.Name, &st.Position)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get subtask: %w", err)
	}
	return &st, nil
}

// ReplaceSubtasks swaps the chore's subtask list for the given names, in
// order. Existing subtasks with matching names keep their ids so their
// completion history stays attached.
func (s *ChoreStore) ReplaceSubtasks(choreID string, names []string) ([]model.Subtask, error) {
	existing, err := s.ListSubtasks(choreID)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]int64, len(existing))
	for _, st := range existing {
		byName[st.Name] = st.ID
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	keep := make(map[int64]bool, len(names))
	for i, name := range names {
		if id, ok := byName[name]; ok {
			if _, err := tx.Exec(`UPDATE subtasks SET position = ? WHERE id = ?`, i, id); err != nil {
				return nil, fmt.Errorf("update subtask position: %w", err)
			}
			keep[id] = true
			continue
		}
		result, err := tx.Exec(
			`INSERT INTO subtasks (chore_id, name, position) VALUES (?, ?, ?)`,
			choreID, name, i,
		)
		if err != nil {
			return nil, fmt.Errorf("insert subtask: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("last insert id: %w", err)
		}
		keep[id] = true
	}

	for _, st := range existing {
		if !keep[st.ID] {
			if _, err := tx.Exec(`DELETE FROM subtasks WHERE id = ?`, st.ID); err != nil {
				return nil, fmt.Errorf("delete subtask: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.ListSubtasks(choreID)
}

// --- Completion methods ---

const completionCols = `id, chore_id, subtask_id, done_by, done_at`

func scanCompletion(scanner interface{ Scan(...any) error }) (*model.Completion, error) {
	var c model.Completion
	var subtaskID sql.NullInt64

	err := scanner.Scan(&c.ID, &c.ChoreID, &subtaskID, &c.DoneBy, &c.DoneAt)
	if err != nil {
		return nil, err
	}

	if subtaskID.Valid {
		c.SubtaskID = &subtaskID.Int64
	}
	return &c, nil
}

func (s *ChoreStore) CreateCompletion(choreID string, subtaskID *int64, doneBy string, doneAt time.Time) (*model.Completion, error) {
	var stID sql.NullInt64
	if subtaskID != nil {
		stID = sql.NullInt64{Int64: *subtaskID, Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO completions (chore_id, subtask_id, done_by, done_at) VALUES (?, ?, ?, ?)`,
		choreID, stID, doneBy, doneAt.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert completion: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+completionCols+` FROM completions WHERE id = ?`, id)
	c, err := scanCompletion(row)
	if err != nil {
		return nil, fmt.Errorf("get completion: %w", err)
	}
	return c, nil
}

// ListCompletions returns the chore's full log in chronological order, the
// order the due-state engine expects.
func (s *ChoreStore) ListCompletions(choreID string) ([]model.Completion, error) {
	rows, err := s.db.Query(
		`SELECT `+completionCols+` FROM completions WHERE chore_id = ? ORDER BY done_at ASC, id ASC`,
		choreID,
	)
	if err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}
	defer rows.Close()
	return scanCompletions(rows)
}

func (s *ChoreStore) ListCompletionsByDateRange(start, end time.Time) ([]model.Completion, error) {
	rows, err := s.db.Query(
		`SELECT `+completionCols+` FROM completions WHERE done_at >= ? AND done_at < ? ORDER BY done_at ASC, id ASC`,
		start.UTC(), end.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("list completions by range: %w", err)
	}
	defer rows.Close()
	return scanCompletions(rows)
}

// DeleteLastCompletion removes the chore's most recent whole-chore record,
// the undo for an accidental mark-done. It reports whether a record existed.
func (s *ChoreStore) DeleteLastCompletion(choreID string) (bool, error) {
	result, err := s.db.Exec(
		`DELETE FROM completions WHERE id = (
			SELECT id FROM completions WHERE chore_id = ? AND subtask_id IS NULL
			ORDER BY done_at DESC, id DESC LIMIT 1
		)`,
		choreID,
	)
	if err != nil {
		return false, fmt.Errorf("delete last completion: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

func scanCompletions(rows *sql.Rows) ([]model.Completion, error) {
	var completions []model.Completion
	for rows.Next() {
		c, err := scanCompletion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan completion: %w", err)
		}
		completions = append(completions, *c)
	}
	return completions, rows.Err()
}

// --- Snapshot loading ---

// Load assembles the engine's input snapshot for one chore. Returns nil when
// the chore does not exist.
func (s *ChoreStore) Load(id string) (*chore.ChoreLog, error) {
	c, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, nil
	}

	subtasks, err := s.ListSubtasks(id)
	if err != nil {
		return nil, err
	}
	log, err := s.ListCompletions(id)
	if err != nil {
		return nil, err
	}
	return &chore.ChoreLog{Chore: *c, Subtasks: subtasks, Log: log}, nil
}

// LoadAll assembles snapshots for every chore with two bulk queries instead
// of per-chore round trips.
func (s *ChoreStore) LoadAll() ([]chore.ChoreLog, error) {
	chores, err := s.List()
	if err != nil {
		return nil, err
	}

	subtasksByChore := make(map[string][]model.Subtask)
	rows, err := s.db.Query(`SELECT id, chore_id, name, position FROM subtasks ORDER BY position ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list all subtasks: %w", err)
	}
	for rows.Next() {
		var st model.Subtask
		if err := rows.Scan(&st.ID, &st.ChoreID, &st.Name, &st.Position); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan subtask: %w", err)
		}
		subtasksByChore[st.ChoreID] = append(subtasksByChore[st.ChoreID], st)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	logByChore := make(map[string][]model.Completion)
	rows, err = s.db.Query(`SELECT ` + completionCols + ` FROM completions ORDER BY done_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list all completions: %w", err)
	}
	for rows.Next() {
		c, err := scanCompletion(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan completion: %w", err)
		}
		logByChore[c.ChoreID] = append(logByChore[c.ChoreID], *c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	logs := make([]chore.ChoreLog, len(chores))
	for i, c := range chores {
		logs[i] = chore.ChoreLog{
			Chore:    c,
			Subtasks: subtasksByChore[c.ID],
			Log:      logByChore[c.ID],
		}
	}
	return logs, nil
}
