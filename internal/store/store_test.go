package store

import (
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store := New(db)
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return store
}

func TestTokenEmpty(t *testing.T) {
	store := setupTestStore(t)

	tok, err := store.Token()
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if tok != "" {
		t.Errorf("Token = %q on empty store, want empty", tok)
	}
}

func TestSaveAndGetToken(t *testing.T) {
	store := setupTestStore(t)

	if err := store.SaveToken("111-222-333-444", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("SaveToken: %v", err)
	}

	tok, err := store.Token()
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if tok != "111-222-333-444" {
		t.Errorf("Token = %q, want 111-222-333-444", tok)
	}
}

func TestSaveTokenNeverOverwrites(t *testing.T) {
	store := setupTestStore(t)

	if err := store.SaveToken("111-222-333-444", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("first SaveToken: %v", err)
	}
	if err := store.SaveToken("555-666-777-888", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("second SaveToken: %v", err)
	}

	tok, err := store.Token()
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if tok != "111-222-333-444" {
		t.Errorf("Token = %q, want original token preserved", tok)
	}
}

func TestExpiredTokenReportedAbsent(t *testing.T) {
	store := setupTestStore(t)

	if err := store.SaveToken("111-222-333-444", time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("SaveToken: %v", err)
	}

	tok, err := store.Token()
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if tok != "" {
		t.Errorf("Token = %q for expired token, want empty", tok)
	}

	// Purged: a fresh token may now be issued.
	if err := store.SaveToken("555-666-777-888", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("SaveToken after expiry: %v", err)
	}
	tok, err = store.Token()
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if tok != "555-666-777-888" {
		t.Errorf("Token = %q after reissue, want new token", tok)
	}
}
