package attendance

import (
	"context"
	"fmt"
	"strings"

	"followup/internal/adapters/storage"
	domain "followup/internal/domain/attendance"
	domainPerson "followup/internal/domain/person"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new AttendanceStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Record appends an attendance record and advances the person's last
// attendance date in the same transaction.
// PRE: entity has been validated
// POST: One row inserted and person.last_attendance_date >= entity.Date;
// domain.ErrAlreadyMarked if the person already has a record for that date
// INVARIANT: last_attendance_date never moves backwards
func (s *SQLiteStore) Record(ctx context.Context, entity domain.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin attendance: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM person WHERE id = ?", entity.PersonID).Scan(&exists); err != nil {
		return fmt.Errorf("check person: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("person %s: %w", entity.PersonID, domainPerson.ErrNotFound)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO attendance (id, person_id, date, recorded_by, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(person_id, date) DO NOTHING`,
		entity.ID,
		entity.PersonID,
		entity.Date,
		entity.RecordedBy,
		storage.FormatTime(entity.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert attendance: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrAlreadyMarked
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE person SET last_attendance_date = ?
		WHERE id = ? AND (last_attendance_date IS NULL OR last_attendance_date < ?)`,
		entity.Date, entity.PersonID, entity.Date,
	)
	if err != nil {
		return fmt.Errorf("update last attendance: %w", err)
	}
	return tx.Commit()
}

// ListSince returns every record dated on or after date.
// PRE: date is YYYY-MM-DD
// POST: Returns records ordered by date
func (s *SQLiteStore) ListSince(ctx context.Context, date string) ([]domain.Record, error) {
	return s.list(ctx, " WHERE date >= ? ORDER BY date, person_id", date)
}

// ListByPerson returns a person's most recent records, newest first.
// A non-positive limit returns all of them.
func (s *SQLiteStore) ListByPerson(ctx context.Context, personID string, limit int) ([]domain.Record, error) {
	var qb strings.Builder
	qb.WriteString(" WHERE person_id = ? ORDER BY date DESC")
	args := []any{personID}
	if limit > 0 {
		qb.WriteString(" LIMIT ?")
		args = append(args, limit)
	}
	return s.list(ctx, qb.String(), args...)
}

func (s *SQLiteStore) list(ctx context.Context, tail string, args ...any) ([]domain.Record, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, person_id, date, recorded_by, created_at FROM attendance"+tail, args...)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	defer rows.Close()

	var results []domain.Record
	for rows.Next() {
		var r domain.Record
		var createdAt string
		if err := rows.Scan(&r.ID, &r.PersonID, &r.Date, &r.RecordedBy, &createdAt); err != nil {
			return nil, err
		}
		r.CreatedAt, _ = storage.ParseTime(createdAt)
		results = append(results, r)
	}
	return results, rows.Err()
}
