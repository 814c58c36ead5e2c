package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kf5fay/group-gifting/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "gifting-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func TestSQLiteStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("PutGroup then GetGroup round trips", func(t *testing.T) {
		doc := []byte(`{"groupName":"Smith Family","users":{}}`)
		if err := store.PutGroup(ctx, "smith-family", doc); err != nil {
			t.Fatalf("PutGroup failed: %v", err)
		}

		got, err := store.GetGroup(ctx, "smith-family")
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		if string(got) != string(doc) {
			t.Errorf("document mismatch: got %s, want %s", got, doc)
		}
	})

	t.Run("PutGroup overwrites the whole document", func(t *testing.T) {
		first := []byte(`{"groupName":"v1","users":{}}`)
		second := []byte(`{"groupName":"v2","users":{"Ann":{"items":[]}}}`)

		if err := store.PutGroup(ctx, "overwrite", first); err != nil {
			t.Fatalf("first PutGroup failed: %v", err)
		}
		if err := store.PutGroup(ctx, "overwrite", second); err != nil {
			t.Fatalf("second PutGroup failed: %v", err)
		}

		got, err := store.GetGroup(ctx, "overwrite")
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		if string(got) != string(second) {
			t.Errorf("expected later write to win, got %s", got)
		}
	})

	t.Run("GetGroup returns ErrNotFound for missing id", func(t *testing.T) {
		_, err := store.GetGroup(ctx, "nope")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("DeleteGroup removes the document", func(t *testing.T) {
		if err := store.PutGroup(ctx, "doomed", []byte(`{}`)); err != nil {
			t.Fatalf("PutGroup failed: %v", err)
		}
		if err := store.DeleteGroup(ctx, "doomed"); err != nil {
			t.Fatalf("DeleteGroup failed: %v", err)
		}
		_, err := store.GetGroup(ctx, "doomed")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
	})

	t.Run("DeleteGroup returns ErrNotFound for missing id", func(t *testing.T) {
		err := store.DeleteGroup(ctx, "never-existed")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestDeleteOlderThan(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Write one stale and one fresh document by steering the store clock.
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return base }
	if err := store.PutGroup(ctx, "stale", []byte(`{}`)); err != nil {
		t.Fatalf("PutGroup failed: %v", err)
	}

	store.now = func() time.Time { return base.Add(48 * time.Hour) }
	if err := store.PutGroup(ctx, "fresh", []byte(`{}`)); err != nil {
		t.Fatalf("PutGroup failed: %v", err)
	}

	cutoff := base.Add(24 * time.Hour)
	n, err := store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		t.Fatalf("DeleteOlderThan failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 deleted, got %d", n)
	}

	if _, err := store.GetGroup(ctx, "stale"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("stale group should be gone, got %v", err)
	}
	if _, err := store.GetGroup(ctx, "fresh"); err != nil {
		t.Errorf("fresh group should survive, got %v", err)
	}

	// Second consecutive sweep with no intervening writes is a no-op.
	n, err = store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		t.Fatalf("second DeleteOlderThan failed: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 deleted on repeat sweep, got %d", n)
	}
}

func TestDeleteOlderThan_ExactCutoffSurvives(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return at }
	if err := store.PutGroup(ctx, "boundary", []byte(`{}`)); err != nil {
		t.Fatalf("PutGroup failed: %v", err)
	}

	// Only strictly-older documents are removed.
	n, err := store.DeleteOlderThan(ctx, at)
	if err != nil {
		t.Fatalf("DeleteOlderThan failed: %v", err)
	}
	if n != 0 {
		t.Errorf("document modified exactly at cutoff should survive, deleted %d", n)
	}
}

func TestPutGroup_PreservesCreatedAt(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return base }
	if err := store.PutGroup(ctx, "g", []byte(`{"v":1}`)); err != nil {
		t.Fatalf("PutGroup failed: %v", err)
	}

	store.now = func() time.Time { return base.Add(time.Hour) }
	if err := store.PutGroup(ctx, "g", []byte(`{"v":2}`)); err != nil {
		t.Fatalf("PutGroup failed: %v", err)
	}

	var createdAt, updatedAt int64
	err := store.db.QueryRowContext(ctx,
		"SELECT created_at, updated_at FROM groups WHERE id = ?", "g",
	).Scan(&createdAt, &updatedAt)
	if err != nil {
		t.Fatalf("row query failed: %v", err)
	}
	if createdAt != base.Unix() {
		t.Errorf("created_at changed on overwrite: %d", createdAt)
	}
	if updatedAt != base.Add(time.Hour).Unix() {
		t.Errorf("updated_at not bumped: %d", updatedAt)
	}
}
