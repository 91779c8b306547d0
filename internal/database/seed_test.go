package database

import (
	"context"
	"testing"
)

func TestSeedIdempotent(t *testing.T) {
	db, err := Connect(context.Background(), testDSN(), DefaultPool)
	if err != nil {
		t.Skipf("skipping: DB not available: %v", err)
	}
	defer db.Close()

	if _, err := Migrate(context.Background(), db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	// Seed should be callable safely: it creates data only when tables are
	// empty. We call it twice to verify idempotency. We don't clear the
	// database first because other test packages may be running
	// concurrently against the same database.
	if err := Seed(db); err != nil {
		t.Fatalf("first Seed: %v", err)
	}
	if err := Seed(db); err != nil {
		t.Fatalf("second Seed: %v", err)
	}

	// Verify admin user exists.
	var userCount int
	if err := db.QueryRow("SELECT COUNT(*) FROM users WHERE role = 'admin'").Scan(&userCount); err != nil {
		t.Fatalf("count admin users: %v", err)
	}
	if userCount < 1 {
		t.Errorf("expected at least 1 admin user, got %d", userCount)
	}

	// Verify the category tree has at least one root with a child.
	var childCount int
	if err := db.QueryRow(`
		SELECT COUNT(*) FROM categories c
		JOIN categories p ON p.id = c.parent_id
		WHERE p.parent_id IS NULL`).Scan(&childCount); err != nil {
		t.Fatalf("count child categories: %v", err)
	}
	if childCount < 1 {
		t.Errorf("expected seeded child categories, got %d", childCount)
	}
}
