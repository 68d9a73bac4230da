package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/lab-records/internal/model"
	"github.com/sakif/lab-records/internal/repository"
	"github.com/sakif/lab-records/internal/validate"
)

// CreateLabInput is the body of a lab creation request.
type CreateLabInput struct {
	Name string `json:"name" validate:"required"`
}

// CreateProtocolInput is the body of a protocol creation request.
type CreateProtocolInput struct {
	Title string  `json:"title" validate:"required"`
	LabID *string `json:"labId" validate:"omitempty,xid"`
}

// LabService manages the labs and research protocols that mice and log
// entries point at.
type LabService struct {
	repo   repository.LabRepository
	logger *slog.Logger
}

// NewLabService creates a new LabService.
func NewLabService(repo repository.LabRepository, logger *slog.Logger) *LabService {
	return &LabService{
		repo:   repo,
		logger: logger,
	}
}

// CreateLab stores a new lab.
func (s *LabService) CreateLab(ctx context.Context, in CreateLabInput) (*model.Lab, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	lab := &model.Lab{Name: in.Name}
	if err := s.repo.CreateLab(ctx, lab); err != nil {
		logStoreError(s.logger, "failed to create lab", err, slog.String("name", in.Name))
		return nil, fmt.Errorf("creating lab: %w", err)
	}

	s.logger.Info("lab created", slog.String("id", lab.ID), slog.String("name", lab.Name))
	return lab, nil
}

// GetLab returns one lab.
func (s *LabService) GetLab(ctx context.Context, id string) (*model.Lab, error) {
	id, err := checkID("id", id)
	if err != nil {
		return nil, err
	}

	lab, err := s.repo.GetLab(ctx, id)
	if err != nil {
		logStoreError(s.logger, "failed to get lab", err, slog.String("id", id))
		return nil, fmt.Errorf("getting lab: %w", err)
	}
	return lab, nil
}

// ListLabs returns every lab sorted by name.
func (s *LabService) ListLabs(ctx context.Context) ([]model.Lab, error) {
	labs, err := s.repo.ListLabs(ctx)
	if err != nil {
		s.logger.Error("failed to list labs", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing labs: %w", err)
	}
	return labs, nil
}

// CreateProtocol stores a new protocol, optionally owned by a lab.
func (s *LabService) CreateProtocol(ctx context.Context, in CreateProtocolInput) (*model.Protocol, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.LabID = optional(in.LabID)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	protocol := &model.Protocol{Title: in.Title, LabID: in.LabID}
	if err := s.repo.CreateProtocol(ctx, protocol); err != nil {
		logStoreError(s.logger, "failed to create protocol", err, slog.String("title", in.Title))
		return nil, fmt.Errorf("creating protocol: %w", err)
	}

	s.logger.Info("protocol created", slog.String("id", protocol.ID), slog.String("title", protocol.Title))
	return protocol, nil
}

// GetProtocol returns one protocol.
func (s *LabService) GetProtocol(ctx context.Context, id string) (*model.Protocol, error) {
	id, err := checkID("id", id)
	if err != nil {
		return nil, err
	}

	protocol, err := s.repo.GetProtocol(ctx, id)
	if err != nil {
		logStoreError(s.logger, "failed to get protocol", err, slog.String("id", id))
		return nil, fmt.Errorf("getting protocol: %w", err)
	}
	return protocol, nil
}
