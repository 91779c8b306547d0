// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"

	"mediaservice/internal/models"
)

func TestUserStoreCreate(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)
	ctx := context.Background()

	email := "test-create@store-test.local"
	t.Cleanup(func() { cleanUsers(t, db, email) })

	user, err := s.Create(ctx, email, "testpass123", "Test User", models.RoleEditor)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if user.ID == uuid.Nil {
		t.Error("expected non-nil UUID")
	}
	if user.Email != email {
		t.Errorf("email: got %q, want %q", user.Email, email)
	}
	if user.Role != models.RoleEditor {
		t.Errorf("role: got %q, want %q", user.Role, models.RoleEditor)
	}
	if user.PasswordHash == "" || user.PasswordHash == "testpass123" {
		t.Error("password hash must be set and not plaintext")
	}
}

func TestUserStoreCreateRejectsUnknownRole(t *testing.T) {
	s := NewUserStore(nil)
	_, err := s.Create(context.Background(), "x@store-test.local", "pass", "X", models.Role("reader"))
	if err == nil || !strings.Contains(err.Error(), "reader") {
		t.Errorf("Create with unknown role: got %v", err)
	}
}

func TestUserStoreFind(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)
	ctx := context.Background()

	email := "test-find@store-test.local"
	t.Cleanup(func() { cleanUsers(t, db, email) })

	user, err := s.FindByEmail(ctx, email)
	if err != nil {
		t.Fatalf("FindByEmail (not found): %v", err)
	}
	if user != nil {
		t.Error("expected nil for non-existent user")
	}

	created, err := s.Create(ctx, email, "pass", "Find Me", models.RoleAuthor)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	byEmail, err := s.FindByEmail(ctx, email)
	if err != nil || byEmail == nil {
		t.Fatalf("FindByEmail: %v, %v", byEmail, err)
	}
	if byEmail.ID != created.ID {
		t.Errorf("ID mismatch: got %s, want %s", byEmail.ID, created.ID)
	}
}

func TestUserStoreAuthenticate(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)
	ctx := context.Background()

	email := "test-auth@store-test.local"
	t.Cleanup(func() { cleanUsers(t, db, email) })

	if _, err := s.Create(ctx, email, "correct-password", "PW Check", models.RoleEditor); err != nil {
		t.Fatalf("Create: %v", err)
	}

	tests := []struct {
		name     string
		email    string
		password string
		wantUser bool
	}{
		{"correct password", email, "correct-password", true},
		{"wrong password", email, "wrong-password", false},
		{"empty password", email, "", false},
		{"unknown email", "nobody@store-test.local", "correct-password", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := s.Authenticate(ctx, tt.email, tt.password)
			if err != nil {
				t.Fatalf("Authenticate: %v", err)
			}
			if (u != nil) != tt.wantUser {
				t.Errorf("got user %v, want user=%v", u, tt.wantUser)
			}
		})
	}
}
