package person

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"followup/internal/adapters/storage"
	domain "followup/internal/domain/person"
)

const selectColumns = "SELECT id, name, phone, gender, last_attendance_date, created_at FROM person"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new PersonStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Person by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error wrapping domain.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Person, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id)
	entity, err := scanPerson(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Person{}, fmt.Errorf("person %s: %w", id, domain.ErrNotFound)
	}
	return entity, err
}

// Save persists a Person to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update); LastAttendanceDate is only
// written on insert since attendance marking owns it afterwards
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Person) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO person (id, name, phone, gender, last_attendance_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name=excluded.name,
			phone=excluded.phone,
			gender=excluded.gender`,
		entity.ID,
		entity.Name,
		entity.Phone,
		entity.Gender,
		storage.NullString(entity.LastAttendanceDate),
		storage.FormatTime(entity.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("save person: %w", err)
	}
	return nil
}

// Delete removes a Person and, by cascade, their attendance and assignments.
// PRE: id is non-empty
// POST: Entity with given id is removed, or domain.ErrNotFound is returned
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM person WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete person: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("person %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// List retrieves People based on the filter.
// PRE: filter has valid parameters
// POST: Returns matching entities in the requested order
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Person, error) {
	where, args := buildWhere(filter)

	var qb strings.Builder
	qb.WriteString(selectColumns)
	qb.WriteString(where)
	switch filter.Sort {
	case SortLastAttendance:
		// Never-attended first, then the longest absent.
		qb.WriteString(" ORDER BY last_attendance_date IS NOT NULL, last_attendance_date, name COLLATE NOCASE")
	case SortNewest:
		qb.WriteString(" ORDER BY created_at DESC")
	default:
		qb.WriteString(" ORDER BY name COLLATE NOCASE")
	}
	if filter.Limit > 0 {
		qb.WriteString(" LIMIT ? OFFSET ?")
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list people: %w", err)
	}
	defer rows.Close()

	var results []domain.Person
	for rows.Next() {
		entity, err := scanPerson(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// Count returns the number of people matching the filter, ignoring paging.
func (s *SQLiteStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := buildWhere(filter)
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM person"+where, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count people: %w", err)
	}
	return count, nil
}

func buildWhere(filter ListFilter) (string, []any) {
	var clauses []string
	var args []any
	if q := strings.TrimSpace(filter.Search); q != "" {
		clauses = append(clauses, "(LOWER(name) LIKE ? OR phone LIKE ?)")
		pattern := "%" + strings.ToLower(q) + "%"
		args = append(args, pattern, pattern)
	}
	if filter.Gender != "" {
		clauses = append(clauses, "gender = ?")
		args = append(args, filter.Gender)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// scanPerson extracts a Person from a row scanner function.
func scanPerson(scan func(dest ...any) error) (domain.Person, error) {
	var entity domain.Person
	var lastAttendance sql.NullString
	var createdAt string
	if err := scan(
		&entity.ID,
		&entity.Name,
		&entity.Phone,
		&entity.Gender,
		&lastAttendance,
		&createdAt,
	); err != nil {
		return domain.Person{}, err
	}
	entity.LastAttendanceDate = lastAttendance.String
	entity.CreatedAt, _ = storage.ParseTime(createdAt)
	return entity, nil
}
