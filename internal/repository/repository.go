// Package repository declares the persistence contracts the services depend on.
//
// Implementations translate "no such row" into apperror.NotFound and
// uniqueness violations into apperror.AlreadyExists. They do not validate
// identifiers or enforce required fields; that happens in the service layer
// before any call lands here.
package repository

import (
	"context"

	"github.com/sakif/lab-records/internal/model"
)

// MouseOrder selects the sort applied to mouse listings.
type MouseOrder int

const (
	OrderByName          MouseOrder = iota // name ascending
	OrderByCreatedAtDesc                   // newest first
)

// MouseFilter narrows a mouse listing. Empty fields are ignored.
type MouseFilter struct {
	LabID         string
	UserID        string
	AvailableOnly bool
	Order         MouseOrder
}

// LogEntryFilter narrows a log-entry listing. Exactly one field is expected
// to be set. Results are always newest first.
type LogEntryFilter struct {
	MouseID string
	LabID   string
	UserID  string
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	// UserExists reports whether any user has the given username OR email.
	UserExists(ctx context.Context, username, email string) (bool, error)
	UpdatePasswordHash(ctx context.Context, id, hash string) (*model.User, error)
	DeleteUser(ctx context.Context, id string) (bool, error)
}

type MouseRepository interface {
	CreateMouse(ctx context.Context, mouse *model.Mouse) error
	// MouseNameTaken reports whether a mouse with this name already exists.
	MouseNameTaken(ctx context.Context, name string) (bool, error)
	GetMouseByID(ctx context.Context, id string) (*model.Mouse, error)
	GetMouseByName(ctx context.Context, name string) (*model.Mouse, error)
	ListMice(ctx context.Context, filter MouseFilter) ([]model.Mouse, error)
	UpdateMouseAvailability(ctx context.Context, id string, available bool) (*model.Mouse, error)
	UpdateMouseNotes(ctx context.Context, id, notes string) (*model.Mouse, error)
	DeleteMouse(ctx context.Context, id string) (bool, error)
}

type LogEntryRepository interface {
	CreateLogEntry(ctx context.Context, entry *model.LogEntry) error
	GetLogEntry(ctx context.Context, id string) (*model.LogEntry, error)
	ListLogEntries(ctx context.Context, filter LogEntryFilter) ([]model.LogEntry, error)
	UpdateLogEntryContent(ctx context.Context, id, content string) (*model.LogEntry, error)
	DeleteLogEntry(ctx context.Context, id string) (bool, error)
}

type LabRepository interface {
	CreateLab(ctx context.Context, lab *model.Lab) error
	GetLab(ctx context.Context, id string) (*model.Lab, error)
	ListLabs(ctx context.Context) ([]model.Lab, error)
	CreateProtocol(ctx context.Context, protocol *model.Protocol) error
	GetProtocol(ctx context.Context, id string) (*model.Protocol, error)
}
