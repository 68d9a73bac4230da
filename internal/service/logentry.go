package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/lab-records/internal/apperror"
	"github.com/sakif/lab-records/internal/model"
	"github.com/sakif/lab-records/internal/repository"
	"github.com/sakif/lab-records/internal/validate"
)

// PostLogEntryInput is the body of a log entry creation request. Mice
// accepts a single id or an array of ids.
type PostLogEntryInput struct {
	UserID  string           `json:"userId"  validate:"required,xid"`
	LabID   string           `json:"labId"   validate:"required,xid"`
	Mice    model.StringList `json:"mice"    validate:"required,min=1,dive,xid"`
	Content string           `json:"content" validate:"required"`
}

// LogEntryService handles log entries.
type LogEntryService struct {
	repo   repository.LogEntryRepository
	logger *slog.Logger
}

// NewLogEntryService creates a new LogEntryService.
func NewLogEntryService(repo repository.LogEntryRepository, logger *slog.Logger) *LogEntryService {
	return &LogEntryService{
		repo:   repo,
		logger: logger,
	}
}

// Post stores a new entry. Referenced user, lab and mice are not required to
// exist.
func (s *LogEntryService) Post(ctx context.Context, in PostLogEntryInput) (*model.LogEntry, error) {
	in.UserID = strings.TrimSpace(in.UserID)
	in.LabID = strings.TrimSpace(in.LabID)
	in.Content = strings.TrimSpace(in.Content)
	if in.Mice != nil {
		mice := make(model.StringList, len(in.Mice))
		for i, id := range in.Mice {
			mice[i] = strings.TrimSpace(id)
		}
		in.Mice = mice
	}

	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	entry := &model.LogEntry{
		UserID:  in.UserID,
		LabID:   in.LabID,
		Mice:    model.NewRefs(in.Mice),
		Content: in.Content,
	}
	if err := s.repo.CreateLogEntry(ctx, entry); err != nil {
		logStoreError(s.logger, "failed to create log entry", err, slog.String("user_id", in.UserID))
		return nil, fmt.Errorf("posting log entry: %w", err)
	}

	s.logger.Info("log entry posted",
		slog.String("id", entry.ID),
		slog.String("user_id", entry.UserID),
		slog.Int("mice", len(entry.Mice)),
	)

	created, err := s.repo.GetLogEntry(ctx, entry.ID)
	if err != nil {
		logStoreError(s.logger, "failed to reload log entry", err, slog.String("id", entry.ID))
		return nil, fmt.Errorf("posting log entry: %w", err)
	}
	return created, nil
}

// Get returns one entry with its user, lab and mice joined in.
func (s *LogEntryService) Get(ctx context.Context, id string) (*model.LogEntry, error) {
	id, err := checkID("id", id)
	if err != nil {
		return nil, err
	}

	entry, err := s.repo.GetLogEntry(ctx, id)
	if err != nil {
		logStoreError(s.logger, "failed to get log entry", err, slog.String("id", id))
		return nil, fmt.Errorf("reading log entry: %w", err)
	}
	return entry, nil
}

// ListByMouse returns every entry that mentions mouseID, newest first.
func (s *LogEntryService) ListByMouse(ctx context.Context, mouseID string) ([]model.LogEntry, error) {
	mouseID, err := checkID("mouseId", mouseID)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, repository.LogEntryFilter{MouseID: mouseID})
}

// ListByLab returns a lab's entries, newest first.
func (s *LogEntryService) ListByLab(ctx context.Context, labID string) ([]model.LogEntry, error) {
	labID, err := checkID("labId", labID)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, repository.LogEntryFilter{LabID: labID})
}

// ListByUser returns a user's entries, newest first.
func (s *LogEntryService) ListByUser(ctx context.Context, userID string) ([]model.LogEntry, error) {
	userID, err := checkID("userId", userID)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, repository.LogEntryFilter{UserID: userID})
}

func (s *LogEntryService) list(ctx context.Context, filter repository.LogEntryFilter) ([]model.LogEntry, error) {
	entries, err := s.repo.ListLogEntries(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list log entries", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing log entries: %w", err)
	}
	return entries, nil
}

// UpdateContent replaces an entry's text.
func (s *LogEntryService) UpdateContent(ctx context.Context, id, content string) (*model.LogEntry, error) {
	id = strings.TrimSpace(id)
	content = strings.TrimSpace(content)

	var missing []string
	if id == "" {
		missing = append(missing, "id")
	}
	if content == "" {
		missing = append(missing, "content")
	}
	if len(missing) > 0 {
		return nil, apperror.MissingFields(missing...)
	}

	id, err := checkID("id", id)
	if err != nil {
		return nil, err
	}

	entry, err := s.repo.UpdateLogEntryContent(ctx, id, content)
	if err != nil {
		logStoreError(s.logger, "failed to update log entry", err, slog.String("id", id))
		return nil, fmt.Errorf("updating log entry: %w", err)
	}

	s.logger.Info("log entry updated", slog.String("id", id))
	return entry, nil
}

// Delete removes an entry. The bool reports whether one was removed.
func (s *LogEntryService) Delete(ctx context.Context, id string) (bool, error) {
	id, err := checkID("id", id)
	if err != nil {
		return false, err
	}

	deleted, err := s.repo.DeleteLogEntry(ctx, id)
	if err != nil {
		s.logger.Error("failed to delete log entry",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return false, fmt.Errorf("deleting log entry: %w", err)
	}

	if deleted {
		s.logger.Info("log entry deleted", slog.String("id", id))
	}
	return deleted, nil
}
