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

var _ repository.LabRepository = (*DB)(nil)

// CreateLab inserts a lab, filling in ID and CreatedAt.
func (db *DB) CreateLab(ctx context.Context, lab *model.Lab) error {
	lab.ID = ident.New()
	lab.CreatedAt = time.Now().UTC()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO labs (id, name, created_at) VALUES (?, ?, ?)`,
		lab.ID, lab.Name, lab.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.AlreadyExists("Lab already exists")
		}
		return fmt.Errorf("sqlite: inserting lab %q: %w", lab.Name, err)
	}
	return nil
}

// GetLab returns a lab by id, or apperror.ErrNotFound.
func (db *DB) GetLab(ctx context.Context, id string) (*model.Lab, error) {
	var lab model.Lab
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM labs WHERE id = ?`, id,
	).Scan(&lab.ID, &lab.Name, &lab.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("Lab", id)
		}
		return nil, fmt.Errorf("sqlite: getting lab %s: %w", id, err)
	}
	return &lab, nil
}

// ListLabs returns every lab sorted by name.
func (db *DB) ListLabs(ctx context.Context) ([]model.Lab, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name, created_at FROM labs ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing labs: %w", err)
	}
	defer rows.Close()

	labs := []model.Lab{}
	for rows.Next() {
		var lab model.Lab
		if err := rows.Scan(&lab.ID, &lab.Name, &lab.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning lab row: %w", err)
		}
		labs = append(labs, lab)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating labs: %w", err)
	}
	return labs, nil
}

// CreateProtocol inserts a protocol, filling in ID and CreatedAt.
func (db *DB) CreateProtocol(ctx context.Context, protocol *model.Protocol) error {
	protocol.ID = ident.New()
	protocol.CreatedAt = time.Now().UTC()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO protocols (id, title, lab_id, created_at) VALUES (?, ?, ?, ?)`,
		protocol.ID, protocol.Title, nullable(protocol.LabID), protocol.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting protocol %q: %w", protocol.Title, err)
	}
	return nil
}

// GetProtocol returns a protocol by id, or apperror.ErrNotFound.
func (db *DB) GetProtocol(ctx context.Context, id string) (*model.Protocol, error) {
	var (
		p     model.Protocol
		labID sql.NullString
	)
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, title, lab_id, created_at FROM protocols WHERE id = ?`, id,
	).Scan(&p.ID, &p.Title, &labID, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("Protocol", id)
		}
		return nil, fmt.Errorf("sqlite: getting protocol %s: %w", id, err)
	}
	p.LabID = ptr(labID)
	return &p, nil
}
