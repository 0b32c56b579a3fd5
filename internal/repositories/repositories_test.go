package repositories

import (
	"database/sql"
	"testing"

	"github.com/desertthunder/mrx/internal/session"
	"github.com/desertthunder/mrx/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.OpenSessionDatabase(shared.DatabaseConfig{Path: ":memory:"})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSessionRepository(t *testing.T) {
	t.Run("Load Empty", func(t *testing.T) {
		repo := NewSessionRepository(setupTestDB(t))

		token, user, err := repo.Load()
		if err != nil {
			t.Fatalf("failed to load: %v", err)
		}
		if token != "" || user != "" {
			t.Errorf("expected empty session, got %q %q", token, user)
		}
	})

	t.Run("Save And Load", func(t *testing.T) {
		repo := NewSessionRepository(setupTestDB(t))

		if err := repo.Save("tok", `{"id":"u1"}`); err != nil {
			t.Fatalf("failed to save: %v", err)
		}

		token, user, err := repo.Load()
		if err != nil {
			t.Fatalf("failed to load: %v", err)
		}
		if token != "tok" || user != `{"id":"u1"}` {
			t.Errorf("unexpected session %q %q", token, user)
		}
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		repo := NewSessionRepository(setupTestDB(t))

		if err := repo.Save("old", "a"); err != nil {
			t.Fatalf("failed to save: %v", err)
		}
		if err := repo.Save("new", "b"); err != nil {
			t.Fatalf("failed to save: %v", err)
		}

		token, user, _ := repo.Load()
		if token != "new" || user != "b" {
			t.Errorf("unexpected session %q %q", token, user)
		}
		if n, _ := repo.Count(); n != 2 {
			t.Errorf("expected 2 keys, got %d", n)
		}
	})

	t.Run("Clear Removes Both Keys", func(t *testing.T) {
		repo := NewSessionRepository(setupTestDB(t))

		if err := repo.Save("tok", "user"); err != nil {
			t.Fatalf("failed to save: %v", err)
		}
		if err := repo.Clear(); err != nil {
			t.Fatalf("failed to clear: %v", err)
		}
		if n, _ := repo.Count(); n != 0 {
			t.Errorf("expected no keys, got %d", n)
		}
	})

	t.Run("Failed Save Writes Nothing", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewSessionRepository(db)

		if _, err := db.Exec(`CREATE TRIGGER reject_user BEFORE INSERT ON session_store
			WHEN NEW.key = 'user' BEGIN SELECT RAISE(ABORT, 'rejected'); END`); err != nil {
			t.Fatalf("failed to create trigger: %v", err)
		}

		if err := repo.Save("tok", "user"); err == nil {
			t.Fatal("expected save to fail")
		}
		if n, _ := repo.Count(); n != 0 {
			t.Errorf("expected rollback to leave no keys, got %d", n)
		}
	})

	t.Run("Closed Database", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewSessionRepository(db)
		db.Close()

		if _, _, err := repo.Load(); err == nil {
			t.Error("expected load error")
		}
		if err := repo.Save("a", "b"); err == nil {
			t.Error("expected save error")
		}
		if err := repo.Clear(); err == nil {
			t.Error("expected clear error")
		}
	})

	t.Run("Backs A Session Store", func(t *testing.T) {
		repo := NewSessionRepository(setupTestDB(t))
		if err := repo.Set(session.TokenKey, "orphan"); err != nil {
			t.Fatalf("failed to seed: %v", err)
		}

		store := session.NewStore(session.StoreOpts{Storage: repo})
		store.Init()

		if store.IsAuthenticated() {
			t.Error("expected partial session to start anonymous")
		}
		if n, _ := repo.Count(); n != 0 {
			t.Errorf("expected partial session to be cleared, got %d keys", n)
		}
	})
}
