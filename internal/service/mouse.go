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

// CreateMouseInput is the body of a mouse creation request.
//
// Genotype accepts either one string or an array. The optional references
// are nil when absent; Availability defaults to true.
type CreateMouseInput struct {
	Name         string           `json:"name"         validate:"required"`
	Sex          model.Sex        `json:"sex"          validate:"required,oneof=male female"`
	Genotype     model.StringList `json:"genotype"     validate:"required,min=1"`
	Strain       string           `json:"strain"       validate:"required"`
	BirthDate    string           `json:"birthDate"    validate:"required,date"`
	Availability *bool            `json:"availability"`
	Notes        *string          `json:"notes"`
	UserID       string           `json:"userId"       validate:"required,xid"`
	LabID        *string          `json:"labId"        validate:"omitempty,xid"`
	ProtocolID   *string          `json:"protocolId"   validate:"omitempty,xid"`
	MotherID     *string          `json:"motherId"     validate:"omitempty,xid"`
	FatherID     *string          `json:"fatherId"     validate:"omitempty,xid"`
	Littermates  []string         `json:"littermates"  validate:"dive,xid"`
}

// MouseOptions tunes MouseService.
type MouseOptions struct {
	// RequireLabProtocol makes labId and protocolId mandatory on Create.
	RequireLabProtocol bool
}

// MouseService handles mouse records.
type MouseService struct {
	repo   repository.MouseRepository
	opts   MouseOptions
	logger *slog.Logger
}

// NewMouseService creates a new MouseService.
func NewMouseService(repo repository.MouseRepository, opts MouseOptions, logger *slog.Logger) *MouseService {
	return &MouseService{
		repo:   repo,
		opts:   opts,
		logger: logger,
	}
}

// Create validates, normalises and stores a new mouse.
//
// Mouse names are unique across the whole database.
func (s *MouseService) Create(ctx context.Context, in CreateMouseInput) (*model.Mouse, error) {
	in = normaliseMouseInput(in)

	if err := s.validateCreate(in); err != nil {
		return nil, err
	}

	birthDate, err := validate.ParseDate(in.BirthDate)
	if err != nil {
		return nil, apperror.ValidationFailed("birthDate", err.Error())
	}

	taken, err := s.repo.MouseNameTaken(ctx, in.Name)
	if err != nil {
		s.logger.Error("failed to check mouse name",
			slog.String("name", in.Name),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating mouse: %w", err)
	}
	if taken {
		return nil, apperror.AlreadyExists("Mouse already exists")
	}

	available := true
	if in.Availability != nil {
		available = *in.Availability
	}

	mouse := &model.Mouse{
		Name:        in.Name,
		Sex:         in.Sex,
		Genotype:    in.Genotype,
		Strain:      in.Strain,
		BirthDate:   birthDate,
		Available:   available,
		Notes:       in.Notes,
		UserID:      in.UserID,
		LabID:       in.LabID,
		ProtocolID:  in.ProtocolID,
		MotherID:    in.MotherID,
		FatherID:    in.FatherID,
		Littermates: model.NewRefs(in.Littermates),
	}
	if err := s.repo.CreateMouse(ctx, mouse); err != nil {
		logStoreError(s.logger, "failed to create mouse", err, slog.String("name", in.Name))
		return nil, fmt.Errorf("creating mouse: %w", err)
	}

	s.logger.Info("mouse created",
		slog.String("id", mouse.ID),
		slog.String("name", mouse.Name),
		slog.String("user_id", mouse.UserID),
	)

	// Re-read so the response carries the same joined shape as Info.
	created, err := s.repo.GetMouseByID(ctx, mouse.ID)
	if err != nil {
		logStoreError(s.logger, "failed to reload mouse", err, slog.String("id", mouse.ID))
		return nil, fmt.Errorf("creating mouse: %w", err)
	}
	return created, nil
}

func (s *MouseService) validateCreate(in CreateMouseInput) error {
	err := validate.Struct(in)
	if apperror.KindOf(err) == apperror.KindMissingFields || !s.opts.RequireLabProtocol {
		return err
	}

	var missing []string
	if in.LabID == nil {
		missing = append(missing, "labId")
	}
	if in.ProtocolID == nil {
		missing = append(missing, "protocolId")
	}
	if len(missing) > 0 {
		return apperror.MissingFields(missing...)
	}
	return err
}

func normaliseMouseInput(in CreateMouseInput) CreateMouseInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Sex = model.Sex(strings.TrimSpace(string(in.Sex)))
	in.Strain = strings.TrimSpace(in.Strain)
	in.BirthDate = strings.TrimSpace(in.BirthDate)
	in.UserID = strings.TrimSpace(in.UserID)
	in.Notes = optional(in.Notes)
	in.LabID = optional(in.LabID)
	in.ProtocolID = optional(in.ProtocolID)
	in.MotherID = optional(in.MotherID)
	in.FatherID = optional(in.FatherID)

	if in.Genotype != nil {
		genotype := model.StringList{}
		for _, g := range in.Genotype {
			if g = strings.TrimSpace(g); g != "" {
				genotype = append(genotype, g)
			}
		}
		in.Genotype = genotype
	}

	littermates := []string{}
	for _, id := range in.Littermates {
		if id = strings.TrimSpace(id); id != "" {
			littermates = append(littermates, id)
		}
	}
	in.Littermates = littermates

	return in
}

// Info looks a mouse up by name with every relation joined in.
func (s *MouseService) Info(ctx context.Context, name string) (*model.Mouse, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.MissingFields("name")
	}

	mouse, err := s.repo.GetMouseByName(ctx, name)
	if err != nil {
		logStoreError(s.logger, "failed to get mouse", err, slog.String("name", name))
		return nil, fmt.Errorf("getting mouse: %w", err)
	}
	return mouse, nil
}

// ListByLab returns a lab's mice sorted by name.
func (s *MouseService) ListByLab(ctx context.Context, labID string) ([]model.Mouse, error) {
	labID, err := checkID("labId", labID)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, repository.MouseFilter{LabID: labID, Order: repository.OrderByName})
}

// ListAvailable returns a lab's available mice sorted by name.
func (s *MouseService) ListAvailable(ctx context.Context, labID string) ([]model.Mouse, error) {
	labID, err := checkID("labId", labID)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, repository.MouseFilter{LabID: labID, AvailableOnly: true, Order: repository.OrderByName})
}

// ListByUser returns a user's mice, newest first.
func (s *MouseService) ListByUser(ctx context.Context, userID string) ([]model.Mouse, error) {
	userID, err := checkID("userId", userID)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, repository.MouseFilter{UserID: userID, Order: repository.OrderByCreatedAtDesc})
}

func (s *MouseService) list(ctx context.Context, filter repository.MouseFilter) ([]model.Mouse, error) {
	mice, err := s.repo.ListMice(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list mice", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing mice: %w", err)
	}
	return mice, nil
}

// UpdateAvailability sets the availability flag. A nil flag counts as
// missing so that only a real boolean is accepted.
func (s *MouseService) UpdateAvailability(ctx context.Context, id string, available *bool) (*model.Mouse, error) {
	id = strings.TrimSpace(id)

	var missing []string
	if id == "" {
		missing = append(missing, "id")
	}
	if available == nil {
		missing = append(missing, "availability")
	}
	if len(missing) > 0 {
		return nil, apperror.MissingFields(missing...)
	}

	id, err := checkID("id", id)
	if err != nil {
		return nil, err
	}

	mouse, err := s.repo.UpdateMouseAvailability(ctx, id, *available)
	if err != nil {
		logStoreError(s.logger, "failed to update mouse availability", err, slog.String("id", id))
		return nil, fmt.Errorf("updating mouse availability: %w", err)
	}

	s.logger.Info("mouse availability updated",
		slog.String("id", id),
		slog.Bool("available", mouse.Available),
	)
	return mouse, nil
}

// UpdateNotes replaces a mouse's notes. Notes must be non-empty after trimming.
func (s *MouseService) UpdateNotes(ctx context.Context, id, notes string) (*model.Mouse, error) {
	id = strings.TrimSpace(id)
	notes = strings.TrimSpace(notes)

	var missing []string
	if id == "" {
		missing = append(missing, "id")
	}
	if notes == "" {
		missing = append(missing, "notes")
	}
	if len(missing) > 0 {
		return nil, apperror.MissingFields(missing...)
	}

	id, err := checkID("id", id)
	if err != nil {
		return nil, err
	}

	mouse, err := s.repo.UpdateMouseNotes(ctx, id, notes)
	if err != nil {
		logStoreError(s.logger, "failed to update mouse notes", err, slog.String("id", id))
		return nil, fmt.Errorf("updating mouse notes: %w", err)
	}

	s.logger.Info("mouse notes updated", slog.String("id", id))
	return mouse, nil
}

// Delete removes a mouse. The bool reports whether one was removed.
func (s *MouseService) Delete(ctx context.Context, id string) (bool, error) {
	id, err := checkID("id", id)
	if err != nil {
		return false, err
	}

	deleted, err := s.repo.DeleteMouse(ctx, id)
	if err != nil {
		s.logger.Error("failed to delete mouse",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return false, fmt.Errorf("deleting mouse: %w", err)
	}

	if deleted {
		s.logger.Info("mouse deleted", slog.String("id", id))
	}
	return deleted, nil
}
