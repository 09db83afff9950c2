package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

// NewTestDB creates an in-memory SQLite database with the application schema
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	// One connection, or each query may land on a fresh empty :memory: db.
	db.SetMaxOpenConns(1)

	schema := `
	CREATE TABLE IF NOT EXISTS profiles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		email VARCHAR(255) NOT NULL UNIQUE,
		name VARCHAR(255),
		password_hash VARCHAR(255) NOT NULL,
		role VARCHAR(50) NOT NULL DEFAULT 'user',
		plan VARCHAR(50) NOT NULL DEFAULT 'starter',
		appeal_quota INTEGER,
		trial_end_date INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS appeals (
		id TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL,
		payer VARCHAR(255) NOT NULL,
		denial_code VARCHAR(100) NOT NULL,
		letter_text TEXT NOT NULL DEFAULT '',
		status VARCHAR(50) NOT NULL DEFAULT 'draft',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		FOREIGN KEY (user_id) REFERENCES profiles(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_appeals_user_status ON appeals(user_id, status);
	`

	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// SeedProfile inserts a profile row directly and returns its ID. A negative
// quota means unlimited (NULL).
func SeedProfile(t *testing.T, db *sql.DB, email, plan string, quota int64) int64 {
	t.Helper()

	var q interface{}
	if quota >= 0 {
		q = quota
	}

	now := time.Now()
	res, err := db.ExecContext(context.Background(), `
		INSERT INTO profiles (email, name, password_hash, role, plan, appeal_quota, trial_end_date, created_at, updated_at)
		VALUES (?, ?, 'x', 'user', ?, ?, ?, ?, ?)
	`, email, "Test Clinic", plan, q, now.AddDate(0, 0, 7).Unix(), now.Unix(), now.Unix())
	if err != nil {
		t.Fatalf("Failed to seed profile: %v", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("Failed to get seeded profile id: %v", err)
	}
	return id
}
