package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/lab-records/internal/apperror"
	"github.com/sakif/lab-records/internal/model"
)

// createTestUser creates a user and fails the test if it errors.
func createTestUser(t *testing.T, db *DB, username string) *model.User {
	t.Helper()
	user := &model.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "$2a$04$not-a-real-hash",
		Role:         model.RoleUser,
	}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestCreateUser(t *testing.T) {
	db := newTestDB(t)

	user := &model.User{
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "hash",
		LabID:        strPtr("lab-1"),
		Role:         model.RoleResearchAssistant,
	}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	if user.ID == "" {
		t.Error("CreateUser() did not set user.ID")
	}
	if user.CreatedAt.IsZero() {
		t.Error("CreateUser() did not set user.CreatedAt")
	}

	got, err := db.GetUserByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if got.Username != "alice" || got.Email != "alice@example.com" {
		t.Errorf("got %s/%s, want alice/alice@example.com", got.Username, got.Email)
	}
	if got.PasswordHash != "hash" {
		t.Errorf("PasswordHash = %q, want %q", got.PasswordHash, "hash")
	}
	if got.LabID == nil || *got.LabID != "lab-1" {
		t.Errorf("LabID = %v, want lab-1", got.LabID)
	}
	if got.Role != model.RoleResearchAssistant {
		t.Errorf("Role = %q, want %q", got.Role, model.RoleResearchAssistant)
	}
	if !got.CreatedAt.Equal(user.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, user.CreatedAt)
	}
}

func TestCreateUserDuplicate(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "alice")

	tests := []struct {
		name     string
		username string
		email    string
	}{
		{"same username", "alice", "other@example.com"},
		{"same email", "bob", "alice@example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := db.CreateUser(context.Background(), &model.User{
				Username: tt.username, Email: tt.email, PasswordHash: "h", Role: model.RoleUser,
			})
			if !errors.Is(err, apperror.ErrAlreadyExists) {
				t.Errorf("CreateUser() error = %v, want ErrAlreadyExists", err)
			}
		})
	}
}

// =========================================================================
// READ TESTS
// =========================================================================

func TestGetUserNotFound(t *testing.T) {
	db := newTestDB(t)

	if _, err := db.GetUserByID(context.Background(), "nonexistent"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetUserByID() error = %v, want ErrNotFound", err)
	}
	if _, err := db.GetUserByUsername(context.Background(), "nobody"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetUserByUsername() error = %v, want ErrNotFound", err)
	}
}

func TestGetUserByUsername(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "alice")
	createTestUser(t, db, "bob")

	got, err := db.GetUserByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetUserByUsername() error = %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("ID = %s, want %s", got.ID, created.ID)
	}
}

func TestUserExists(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "alice")

	tests := []struct {
		name     string
		username string
		email    string
		want     bool
	}{
		{"username match", "alice", "x@example.com", true},
		{"email match", "x", "alice@example.com", true},
		{"no match", "bob", "bob@example.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.UserExists(context.Background(), tt.username, tt.email)
			if err != nil {
				t.Fatalf("UserExists() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("UserExists() = %v, want %v", got, tt.want)
			}
		})
	}
}

// =========================================================================
// UPDATE / DELETE TESTS
// =========================================================================

func TestUpdatePasswordHash(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")

	updated, err := db.UpdatePasswordHash(context.Background(), user.ID, "new-hash")
	if err != nil {
		t.Fatalf("UpdatePasswordHash() error = %v", err)
	}
	if updated.PasswordHash != "new-hash" {
		t.Errorf("PasswordHash = %q, want new-hash", updated.PasswordHash)
	}

	if _, err := db.UpdatePasswordHash(context.Background(), "missing", "h"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("UpdatePasswordHash(missing) error = %v, want ErrNotFound", err)
	}
}

func TestDeleteUser(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")

	deleted, err := db.DeleteUser(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("DeleteUser() error = %v", err)
	}
	if !deleted {
		t.Error("DeleteUser() = false, want true")
	}

	deleted, err = db.DeleteUser(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("second DeleteUser() error = %v", err)
	}
	if deleted {
		t.Error("second DeleteUser() = true, want false")
	}

	if _, err := db.GetUserByID(context.Background(), user.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetUserByID() after delete error = %v, want ErrNotFound", err)
	}
}
