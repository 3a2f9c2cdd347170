package member

import (
	"context"
	"fmt"
	"strings"

	"followup/internal/adapters/storage"
	accountStore "followup/internal/adapters/storage/account"
	profileStore "followup/internal/adapters/storage/profile"
	domainAccount "followup/internal/domain/account"
	domain "followup/internal/domain/profile"
)

const selectColumns = `
	SELECT a.id, a.email, a.role, p.name, p.gender, p.approved, a.created_at
	FROM account a JOIN profile p ON p.account_id = a.id`

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new MemberStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Register creates an account and its profile together.
// PRE: both values have been validated; acct.ID == prof.AccountID
// POST: Both rows exist, or neither does
func (s *SQLiteStore) Register(ctx context.Context, acct domainAccount.Account, prof domain.Profile) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin register: %w", err)
	}
	defer tx.Rollback()

	var taken int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM account WHERE email = ?", domainAccount.NormalizeEmail(acct.Email)).Scan(&taken); err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if taken > 0 {
		return domainAccount.ErrEmailTaken
	}

	if err := accountStore.SaveTx(ctx, tx, acct); err != nil {
		return err
	}
	if err := profileStore.SaveTx(ctx, tx, prof); err != nil {
		return err
	}
	return tx.Commit()
}

// SetApproval writes an account's role and its profile's approval flag.
// PRE: role is one of domainAccount.ValidRoles
// POST: Both columns are updated atomically, or domain.ErrNotFound is returned
func (s *SQLiteStore) SetApproval(ctx context.Context, accountID, role string, approved bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin approval: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "UPDATE account SET role = ? WHERE id = ?", role, accountID)
	if err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("account %s: %w", accountID, domainAccount.ErrNotFound)
	}

	res, err = tx.ExecContext(ctx, "UPDATE profile SET approved = ? WHERE account_id = ?", approved, accountID)
	if err != nil {
		return fmt.Errorf("update approval: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("profile %s: %w", accountID, domain.ErrNotFound)
	}
	return tx.Commit()
}

// List retrieves Members based on the filter.
// PRE: filter has valid parameters
// POST: Returns matching members, oldest request first
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Member, error) {
	where, args := buildWhere(filter)
	query := selectColumns + where + " ORDER BY a.created_at, a.id"
	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var results []domain.Member
	for rows.Next() {
		var m domain.Member
		var createdAt string
		if err := rows.Scan(&m.AccountID, &m.Email, &m.Role, &m.Name, &m.Gender, &m.Approved, &createdAt); err != nil {
			return nil, err
		}
		m.CreatedAt, _ = storage.ParseTime(createdAt)
		results = append(results, m)
	}
	return results, rows.Err()
}

// Count returns the number of members matching the filter, ignoring paging.
func (s *SQLiteStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := buildWhere(filter)
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM account a JOIN profile p ON p.account_id = a.id"+where, args...).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count members: %w", err)
	}
	return n, nil
}

func buildWhere(filter ListFilter) (string, []any) {
	var clauses []string
	var args []any
	if filter.Role != "" {
		clauses = append(clauses, "a.role = ?")
		args = append(args, filter.Role)
	}
	if filter.Approved != nil {
		clauses = append(clauses, "p.approved = ?")
		args = append(args, *filter.Approved)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}
