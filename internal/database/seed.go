package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// seedCategories is the starter taxonomy for development databases.
// Parents are referenced by slug and must appear before their children.
var seedCategories = []struct {
	name, slug, typ, parent string
}{
	{"Новости", "news", "article", ""},
	{"Технологии", "technology", "article", "news"},
	{"Наука", "science", "article", "news"},
	{"Видео", "video", "video", ""},
	{"Интервью", "interviews", "video", "video"},
}

// Seed populates the database with initial development data: a default
// admin user and a small category tree. Each part is skipped when its
// table already has rows.
func Seed(db *sql.DB) error {
	if err := seedAdmin(db); err != nil {
		return err
	}
	return seedTaxonomy(db)
}

func seedAdmin(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("users already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO users (email, password_hash, display_name, role)
		VALUES ($1, $2, $3, $4)
	`, "admin@mediaservice.local", string(hash), "Admin", "admin")
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	slog.Info("database seeded with default admin user",
		"email", "admin@mediaservice.local",
		"password", "admin",
	)
	return nil
}

func seedTaxonomy(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM categories").Scan(&count); err != nil {
		return fmt.Errorf("seed check categories: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed begin tx: %w", err)
	}
	defer tx.Rollback()

	ids := make(map[string]int64, len(seedCategories))
	for _, c := range seedCategories {
		var parent *int64
		if c.parent != "" {
			id := ids[c.parent]
			parent = &id
		}
		var id int64
		err := tx.QueryRow(`
			INSERT INTO categories (name, slug, type, parent_id)
			VALUES ($1, $2, $3, $4) RETURNING id
		`, c.name, c.slug, c.typ, parent).Scan(&id)
		if err != nil {
			return fmt.Errorf("seed category %s: %w", c.slug, err)
		}
		ids[c.slug] = id
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}
	slog.Info("database seeded with sample categories", "count", len(seedCategories))
	return nil
}
