package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sakif/lab-records/internal/apperror"
	"github.com/sakif/lab-records/internal/ident"
	"github.com/sakif/lab-records/internal/model"
	"github.com/sakif/lab-records/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

const userColumns = `id, username, email, password_hash, lab_id, role, created_at`

// CreateUser inserts a new user, filling in ID and CreatedAt.
//
// The UNIQUE constraints on username and email back up the service's
// existence check: a racing duplicate insert still comes back as
// apperror.AlreadyExists rather than a raw driver error.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	user.ID = ident.New()
	user.CreatedAt = time.Now().UTC()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		nullable(user.LabID),
		string(user.Role),
		user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.AlreadyExists(apperror.MsgUserExists)
		}
		return fmt.Errorf("sqlite: inserting user %q: %w", user.Username, err)
	}

	return nil
}

// GetUserByID retrieves a user by ID.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)

	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("User", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}
	return u, nil
}

// GetUserByUsername retrieves a user by exact username.
// Returns apperror.ErrNotFound if no user has that username.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username)

	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("User", username)
		}
		return nil, fmt.Errorf("sqlite: getting user %q: %w", username, err)
	}
	return u, nil
}

// UserExists reports whether a user holds this username or this email.
func (db *DB) UserExists(ctx context.Context, username, email string) (bool, error) {
	var exists bool
	err := db.conn.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE username = ? OR email = ?)`,
		username, email,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking user existence: %w", err)
	}
	return exists, nil
}

// UpdatePasswordHash overwrites the stored hash and returns the updated user.
func (db *DB) UpdatePasswordHash(ctx context.Context, id, hash string) (*model.User, error) {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE id = ?`, hash, id)
	if err != nil {
		return nil, fmt.Errorf("sqlite: updating password for user %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, apperror.NotFound("User", id)
	}

	return db.GetUserByID(ctx, id)
}

// DeleteUser removes a user. The bool reports whether a row was removed.
//
// Mice and log entries that reference the user are left alone; their reads
// report the owner as unresolved.
func (db *DB) DeleteUser(ctx context.Context, id string) (bool, error) {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("sqlite: deleting user %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

func scanUser(row *sql.Row) (*model.User, error) {
	var (
		u     model.User
		labID sql.NullString
		role  string
	)
	if err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&labID,
		&role,
		&u.CreatedAt,
	); err != nil {
		return nil, err
	}
	u.LabID = ptr(labID)
	u.Role = model.Role(role)
	return &u, nil
}
