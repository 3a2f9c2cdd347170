package assignment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"followup/internal/adapters/storage"
	domain "followup/internal/domain/assignment"
)

const selectColumns = "SELECT id, servant_id, person_id, week_start, completed, completed_at, undo_deadline, created_at FROM weekly_assignment"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new AssignmentStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a WeeklyAssignment by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error wrapping domain.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.WeeklyAssignment, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id)
	entity, err := scanAssignment(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.WeeklyAssignment{}, fmt.Errorf("assignment %s: %w", id, domain.ErrNotFound)
	}
	return entity, err
}

// SaveWeek writes a generated batch for one week. The existence check, the
// optional delete and the inserts share one transaction.
// PRE: every record in batch has WeekStart == weekStart and a unique ID
// POST: Returns how many existing rows were replaced. Without replace, an
// existing batch yields domain.ErrAlreadyGenerated and nothing is written
func (s *SQLiteStore) SaveWeek(ctx context.Context, weekStart string, batch []domain.WeeklyAssignment, replace bool) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin save week: %w", err)
	}
	defer tx.Rollback()

	var existing int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM weekly_assignment WHERE week_start = ?", weekStart).Scan(&existing); err != nil {
		return 0, fmt.Errorf("count week: %w", err)
	}
	if existing > 0 {
		if !replace {
			return 0, domain.ErrAlreadyGenerated
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM weekly_assignment WHERE week_start = ?", weekStart); err != nil {
			return 0, fmt.Errorf("delete week: %w", err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO weekly_assignment (id, servant_id, person_id, week_start, completed, completed_at, undo_deadline, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, a := range batch {
		if a.WeekStart != weekStart {
			return 0, fmt.Errorf("assignment %s is for week %s, not %s", a.ID, a.WeekStart, weekStart)
		}
		_, err := stmt.ExecContext(ctx,
			a.ID,
			a.ServantID,
			a.PersonID,
			a.WeekStart,
			a.Completed,
			storage.NullTime(a.CompletedAt),
			storage.NullTime(a.UndoDeadline),
			storage.FormatTime(a.CreatedAt),
		)
		if err != nil {
			return 0, fmt.Errorf("insert assignment: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit save week: %w", err)
	}
	return existing, nil
}

// ListByWeek returns every assignment for a week.
// PRE: weekStart is YYYY-MM-DD
// POST: Returns assignments grouped by servant
func (s *SQLiteStore) ListByWeek(ctx context.Context, weekStart string) ([]domain.WeeklyAssignment, error) {
	return s.list(ctx, " WHERE week_start = ? ORDER BY servant_id, created_at, id", weekStart)
}

// ListByServant returns one servant's assignments for a week.
// PRE: servantID is non-empty, weekStart is YYYY-MM-DD
// POST: Returns uncompleted assignments first
func (s *SQLiteStore) ListByServant(ctx context.Context, servantID, weekStart string) ([]domain.WeeklyAssignment, error) {
	return s.list(ctx, " WHERE servant_id = ? AND week_start = ? ORDER BY completed, created_at, id", servantID, weekStart)
}

// MarkCompleted records a completion and its undo deadline.
// PRE: completedAt <= undoDeadline
// POST: Row is completed, or domain.ErrAlreadyCompleted / ErrNotFound is returned
func (s *SQLiteStore) MarkCompleted(ctx context.Context, id string, completedAt, undoDeadline time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE weekly_assignment SET completed = 1, completed_at = ?, undo_deadline = ?
		WHERE id = ? AND completed = 0`,
		storage.FormatTime(completedAt), storage.FormatTime(undoDeadline), id,
	)
	if err != nil {
		return fmt.Errorf("complete assignment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return s.explainMiss(ctx, id, domain.ErrAlreadyCompleted)
	}
	return nil
}

// MarkUncompleted reverts a completion if now is still before the stored
// undo deadline.
// POST: Row is uncompleted, or one of domain.ErrNotCompleted,
// ErrUndoWindowExpired, ErrNotFound is returned
// INVARIANT: the deadline is checked by the same statement that writes
func (s *SQLiteStore) MarkUncompleted(ctx context.Context, id string, now time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE weekly_assignment SET completed = 0, completed_at = NULL, undo_deadline = NULL
		WHERE id = ? AND completed = 1 AND undo_deadline > ?`,
		id, storage.FormatTime(now),
	)
	if err != nil {
		return fmt.Errorf("undo assignment: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}

	current, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !current.Completed {
		return domain.ErrNotCompleted
	}
	return domain.ErrUndoWindowExpired
}

// explainMiss turns a zero-row conditional update into ErrNotFound or conflict.
func (s *SQLiteStore) explainMiss(ctx context.Context, id string, conflict error) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	return conflict
}

func (s *SQLiteStore) list(ctx context.Context, tail string, args ...any) ([]domain.WeeklyAssignment, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+tail, args...)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	var results []domain.WeeklyAssignment
	for rows.Next() {
		entity, err := scanAssignment(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// scanAssignment extracts a WeeklyAssignment from a row scanner function.
func scanAssignment(scan func(dest ...any) error) (domain.WeeklyAssignment, error) {
	var entity domain.WeeklyAssignment
	var completedAt, undoDeadline sql.NullString
	var createdAt string
	err := scan(
		&entity.ID,
		&entity.ServantID,
		&entity.PersonID,
		&entity.WeekStart,
		&entity.Completed,
		&completedAt,
		&undoDeadline,
		&createdAt,
	)
	if err != nil {
		return domain.WeeklyAssignment{}, err
	}
	entity.CompletedAt, _ = storage.ParseNullTime(completedAt)
	entity.UndoDeadline, _ = storage.ParseNullTime(undoDeadline)
	entity.CreatedAt, _ = storage.ParseTime(createdAt)
	return entity, nil
}
