package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"followup/internal/adapters/storage"
	domain "followup/internal/domain/profile"
)

const selectColumns = "SELECT account_id, name, gender, approved, created_at FROM profile"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new ProfileStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByAccountID retrieves the Profile belonging to an account.
// PRE: accountID is non-empty
// POST: Returns the entity or an error wrapping domain.ErrNotFound
func (s *SQLiteStore) GetByAccountID(ctx context.Context, accountID string) (domain.Profile, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE account_id = ?", accountID)
	entity, err := scanProfile(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Profile{}, fmt.Errorf("profile %s: %w", accountID, domain.ErrNotFound)
	}
	return entity, err
}

// Save persists a Profile to the database.
// PRE: entity has been validated and its account exists
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Profile) error {
	if _, err := s.db.ExecContext(ctx, upsertSQL, profileArgs(entity)...); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

const upsertSQL = `
	INSERT INTO profile (account_id, name, gender, approved, created_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(account_id) DO UPDATE SET
		name=excluded.name,
		gender=excluded.gender,
		approved=excluded.approved`

// SaveTx upserts a Profile inside a caller-owned transaction.
func SaveTx(ctx context.Context, tx *sql.Tx, entity domain.Profile) error {
	if _, err := tx.ExecContext(ctx, upsertSQL, profileArgs(entity)...); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

func profileArgs(entity domain.Profile) []any {
	return []any{
		entity.AccountID,
		entity.Name,
		entity.Gender,
		entity.Approved,
		storage.FormatTime(entity.CreatedAt),
	}
}

// ListByAccountIDs returns the profiles for the given accounts, optionally
// only approved ones.
// PRE: none
// POST: Returns at most one profile per ID, ordered by name
func (s *SQLiteStore) ListByAccountIDs(ctx context.Context, ids []string, approvedOnly bool) ([]domain.Profile, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	query := selectColumns + " WHERE account_id IN (" + placeholders + ")"
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	if approvedOnly {
		query += " AND approved = 1"
	}
	query += " ORDER BY name COLLATE NOCASE, account_id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var results []domain.Profile
	for rows.Next() {
		entity, err := scanProfile(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// scanProfile extracts a Profile from a row scanner function.
func scanProfile(scan func(dest ...any) error) (domain.Profile, error) {
	var entity domain.Profile
	var createdAt string
	if err := scan(&entity.AccountID, &entity.Name, &entity.Gender, &entity.Approved, &createdAt); err != nil {
		return domain.Profile{}, err
	}
	entity.CreatedAt, _ = storage.ParseTime(createdAt)
	return entity, nil
}
