package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/lab-records/internal/apperror"
	"github.com/sakif/lab-records/internal/auth"
	"github.com/sakif/lab-records/internal/model"
	"github.com/sakif/lab-records/internal/repository"
	"github.com/sakif/lab-records/internal/validate"
)

// RegisterInput is the body of a registration request. Passwords must be
// between 6 and 72 characters.
type RegisterInput struct {
	Username string     `json:"username" validate:"required"`
	Email    string     `json:"email"    validate:"required"`
	Password string     `json:"password" validate:"required,min=6,max=72"`
	LabID    *string    `json:"labId"    validate:"omitempty,xid"`
	Role     model.Role `json:"role"     validate:"omitempty,role"`
}

// UpdatePasswordInput is the body of a password change request.
type UpdatePasswordInput struct {
	ID       string `json:"id"       validate:"required,xid"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// UserService handles registration, login and account changes.
//
// passwords is injected so tests can run bcrypt at its minimum cost.
type UserService struct {
	repo      repository.UserRepository
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(repo repository.UserRepository, passwords *auth.PasswordService, logger *slog.Logger) *UserService {
	return &UserService{
		repo:      repo,
		passwords: passwords,
		logger:    logger,
	}
}

// Register creates an account.
//
// Username is trimmed and email trimmed and lowercased before anything else.
// A single existence check covers both username and email, so the
// AlreadyExists error does not say which one collided. The returned user
// carries the password hash; hiding it is the HTTP layer's job.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.LabID = optional(in.LabID)
	in.Role = model.Role(strings.TrimSpace(string(in.Role)))

	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if in.Role == "" {
		in.Role = model.RoleUser
	}

	exists, err := s.repo.UserExists(ctx, in.Username, in.Email)
	if err != nil {
		s.logger.Error("failed to check user existence",
			slog.String("username", in.Username),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("registering user: %w", err)
	}
	if exists {
		return nil, apperror.AlreadyExists(apperror.MsgUserExists)
	}

	hash, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		LabID:        in.LabID,
		Role:         in.Role,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		logStoreError(s.logger, "failed to create user", err, slog.String("username", in.Username))
		return nil, fmt.Errorf("registering user: %w", err)
	}

	s.logger.Info("user registered",
		slog.String("id", user.ID),
		slog.String("username", user.Username),
	)
	return user, nil
}

// Login checks a username/password pair.
//
// The user lookup happens before the hash comparison, so an unknown username
// (UserNotFound) is distinguishable from a wrong password (WrongPassword).
func (s *UserService) Login(ctx context.Context, username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)

	var missing []string
	if username == "" {
		missing = append(missing, "username")
	}
	if password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return nil, apperror.MissingFields(missing...)
	}

	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.UserNotFound()
		}
		s.logger.Error("failed to look up user",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("logging in: %w", err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrMismatch) {
			s.logger.Info("login rejected", slog.String("username", username))
			return nil, apperror.WrongPassword()
		}
		s.logger.Error("failed to verify password",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("logging in: %w", err)
	}

	s.logger.Info("user logged in", slog.String("id", user.ID))
	return user, nil
}

// UpdatePassword rehashes and stores a new password. The old password is not
// checked here.
func (s *UserService) UpdatePassword(ctx context.Context, in UpdatePasswordInput) (*model.User, error) {
	in.ID = strings.TrimSpace(in.ID)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	hash, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.UpdatePasswordHash(ctx, in.ID, hash)
	if err != nil {
		logStoreError(s.logger, "failed to update password", err, slog.String("id", in.ID))
		return nil, fmt.Errorf("updating password: %w", err)
	}

	s.logger.Info("password updated", slog.String("id", user.ID))
	return user, nil
}

// GetUser returns one account.
func (s *UserService) GetUser(ctx context.Context, id string) (*model.User, error) {
	id, err := checkID("id", id)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		logStoreError(s.logger, "failed to get user", err, slog.String("id", id))
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return user, nil
}

// DeleteUser removes an account. The bool reports whether one was removed.
func (s *UserService) DeleteUser(ctx context.Context, id string) (bool, error) {
	id, err := checkID("id", id)
	if err != nil {
		return false, err
	}

	deleted, err := s.repo.DeleteUser(ctx, id)
	if err != nil {
		s.logger.Error("failed to delete user",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return false, fmt.Errorf("deleting user: %w", err)
	}

	if deleted {
		s.logger.Info("user deleted", slog.String("id", id))
	}
	return deleted, nil
}

func (s *UserService) hash(password string) (string, error) {
	hash, err := s.passwords.Hash(password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return "", apperror.ValidationFailed("password",
				fmt.Sprintf("password must be at most %d bytes", auth.MaxPasswordBytes))
		}
		s.logger.Error("failed to hash password", slog.String("error", err.Error()))
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return hash, nil
}
