package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"venturecore/pkg/domain"
)

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "venture.db")

	store, err := NewStore(path, domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	var userID string
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		user, err := tx.CreateUser(domain.User{Email: "durable@x.com", Role: domain.RoleStartup})
		if err != nil {
			return err
		}
		userID = user.ID
		st, err := tx.CreateStartup(domain.Startup{OwnerID: user.ID, Name: "Durable", ApplicationStatus: domain.ApplicationNeedsCompletion})
		if err != nil {
			return err
		}
		tx.SetSession(domain.Session{UserID: user.ID, ProjectID: &st.ID})
		return nil
	}); err != nil {
		t.Fatalf("transaction: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewStore(path, domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = reopened.Close() }()

	user, ok := reopened.GetUser(userID)
	if !ok || user.Email != "durable@x.com" {
		t.Fatalf("expected persisted user, got %+v ok=%v", user, ok)
	}
	startups := reopened.ListStartups()
	if len(startups) != 1 || startups[0].OwnerID != userID {
		t.Fatalf("expected persisted startup, got %+v", startups)
	}
	sess, ok := reopened.Session()
	if !ok || sess.UserID != userID {
		t.Fatalf("expected persisted session, got %+v ok=%v", sess, ok)
	}
}

func TestSQLiteStoreDefaultsPath(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "nested", "dir", "state.db"), domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("open with nested dirs: %v", err)
	}
	if store.Path() == "" {
		t.Fatalf("expected configured path")
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestSQLiteStoreEmptyDatabaseStartsClean(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "fresh.db"), domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = store.Close() }()
	if got := len(store.ListUsers()); got != 0 {
		t.Fatalf("fresh database must be empty, got %d users", got)
	}
	if _, ok := store.Session(); ok {
		t.Fatalf("fresh database must have no session")
	}
}
