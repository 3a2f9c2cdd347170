package member

import (
	"context"
	"errors"
	"testing"
	"time"

	"followup/internal/adapters/storage"
	accountStore "followup/internal/adapters/storage/account"
	domainAccount "followup/internal/domain/account"
	domain "followup/internal/domain/profile"
)

type fixture struct {
	store    *SQLiteStore
	accounts *accountStore.SQLiteStore
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db, err := storage.OpenAndMigrate(context.Background(), storage.MemoryPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return fixture{store: NewSQLiteStore(db), accounts: accountStore.NewSQLiteStore(db)}
}

func register(t *testing.T, f fixture, id, email, gender string, at time.Time) {
	t.Helper()
	err := f.store.Register(context.Background(),
		domainAccount.Account{ID: id, Email: email, Role: domainAccount.RolePending, CreatedAt: at},
		domain.Profile{AccountID: id, Name: "Name " + id, Gender: gender, CreatedAt: at},
	)
	if err != nil {
		t.Fatalf("Register(%s): %v", id, err)
	}
}

func TestSQLiteStore_Register(t *testing.T) {
	f := newFixture(t)
	now := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	register(t, f, "a1", "mina@church.org", "male", now)

	err := f.store.Register(context.Background(),
		domainAccount.Account{ID: "a2", Email: "MINA@church.org", Role: domainAccount.RolePending},
		domain.Profile{AccountID: "a2", Name: "Dup", Gender: "male"},
	)
	if !errors.Is(err, domainAccount.ErrEmailTaken) {
		t.Errorf("duplicate Register = %v, want ErrEmailTaken", err)
	}

	// A failed profile insert must roll back the account.
	err = f.store.Register(context.Background(),
		domainAccount.Account{ID: "a3", Email: "bad@church.org", Role: domainAccount.RolePending},
		domain.Profile{AccountID: "a3", Name: "Bad", Gender: "unknown"},
	)
	if err == nil {
		t.Fatal("expected CHECK violation for bad gender")
	}
	if _, err := f.accounts.GetByID(context.Background(), "a3"); !errors.Is(err, domainAccount.ErrNotFound) {
		t.Errorf("account a3 survived a failed register: %v", err)
	}
}

func TestSQLiteStore_SetApprovalAndList(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	base := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	register(t, f, "a1", "a1@x.y", "male", base)
	register(t, f, "a2", "a2@x.y", "female", base.Add(time.Minute))
	register(t, f, "a3", "a3@x.y", "male", base.Add(2*time.Minute))

	if err := f.store.SetApproval(ctx, "a2", domainAccount.RoleMember, true); err != nil {
		t.Fatalf("SetApproval: %v", err)
	}

	approved, err := f.store.List(ctx, ListFilter{Role: domainAccount.RoleMember, Approved: Bool(true)})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(approved) != 1 || approved[0].AccountID != "a2" || !approved[0].Eligible() {
		t.Errorf("approved = %+v", approved)
	}

	pending, err := f.store.Count(ctx, ListFilter{Role: domainAccount.RolePending})
	if err != nil || pending != 2 {
		t.Errorf("Count(pending) = %d, %v; want 2", pending, err)
	}

	page, err := f.store.List(ctx, ListFilter{Limit: 1, Offset: 2})
	if err != nil || len(page) != 1 || page[0].AccountID != "a3" {
		t.Errorf("paged List = %+v, %v", page, err)
	}

	if err := f.store.SetApproval(ctx, "ghost", domainAccount.RoleMember, true); !errors.Is(err, domainAccount.ErrNotFound) {
		t.Errorf("SetApproval(ghost) = %v, want ErrNotFound", err)
	}
}
