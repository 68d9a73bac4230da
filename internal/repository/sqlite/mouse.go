package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sakif/lab-records/internal/apperror"
	"github.com/sakif/lab-records/internal/ident"
	"github.com/sakif/lab-records/internal/model"
	"github.com/sakif/lab-records/internal/repository"
)

var _ repository.MouseRepository = (*DB)(nil)

// mouseSelect joins every relation a mouse read exposes. LEFT JOIN keeps the
// mouse when a referenced record has been deleted; the joined id column is
// then NULL and the summary stays nil.
const mouseSelect = `
SELECT m.id, m.name, m.sex, m.genotype, m.strain, m.birth_date, m.available, m.notes,
       m.user_id, m.lab_id, m.protocol_id, m.mother_id, m.father_id, m.created_at,
       u.id, u.username, u.email,
       l.id, l.name,
       p.id, p.title,
       mo.id, mo.name, mo.strain,
       fa.id, fa.name, fa.strain
FROM mice m
LEFT JOIN users u     ON u.id  = m.user_id
LEFT JOIN labs l      ON l.id  = m.lab_id
LEFT JOIN protocols p ON p.id  = m.protocol_id
LEFT JOIN mice mo     ON mo.id = m.mother_id
LEFT JOIN mice fa     ON fa.id = m.father_id`

// CreateMouse inserts a mouse and its ordered littermate list in one
// transaction, filling in ID and CreatedAt.
func (db *DB) CreateMouse(ctx context.Context, mouse *model.Mouse) error {
	genotype, err := json.Marshal([]string(mouse.Genotype))
	if err != nil {
		return fmt.Errorf("sqlite: encoding genotype: %w", err)
	}

	mouse.ID = ident.New()
	mouse.CreatedAt = time.Now().UTC()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning mouse insert: %w", err)
	}
	defer tx.Rollback() // no-op after Commit

	_, err = tx.ExecContext(ctx,
		`INSERT INTO mice (id, name, sex, genotype, strain, birth_date, available, notes,
		                   user_id, lab_id, protocol_id, mother_id, father_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		mouse.ID,
		mouse.Name,
		string(mouse.Sex),
		string(genotype),
		mouse.Strain,
		mouse.BirthDate.UTC(),
		mouse.Available,
		nullable(mouse.Notes),
		mouse.UserID,
		nullable(mouse.LabID),
		nullable(mouse.ProtocolID),
		nullable(mouse.MotherID),
		nullable(mouse.FatherID),
		mouse.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.AlreadyExists("Mouse already exists")
		}
		return fmt.Errorf("sqlite: inserting mouse %q: %w", mouse.Name, err)
	}

	for i, ref := range mouse.Littermates {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO mouse_littermates (mouse_id, position, littermate_id) VALUES (?, ?, ?)`,
			mouse.ID, i, ref.ID,
		); err != nil {
			return fmt.Errorf("sqlite: inserting littermate %s of mouse %s: %w", ref.ID, mouse.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing mouse %s: %w", mouse.ID, err)
	}
	return nil
}

// MouseNameTaken reports whether any mouse already uses name.
func (db *DB) MouseNameTaken(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := db.conn.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM mice WHERE name = ?)`, name,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking mouse name %q: %w", name, err)
	}
	return exists, nil
}

// GetMouseByID returns the fully joined mouse, or apperror.ErrNotFound.
func (db *DB) GetMouseByID(ctx context.Context, id string) (*model.Mouse, error) {
	return db.getMouse(ctx, "m.id = ?", id)
}

// GetMouseByName returns the fully joined mouse, or apperror.ErrNotFound.
func (db *DB) GetMouseByName(ctx context.Context, name string) (*model.Mouse, error) {
	return db.getMouse(ctx, "m.name = ?", name)
}

func (db *DB) getMouse(ctx context.Context, where string, arg string) (*model.Mouse, error) {
	mice, err := db.queryMice(ctx, mouseSelect+" WHERE "+where, arg)
	if err != nil {
		return nil, err
	}
	if len(mice) == 0 {
		return nil, apperror.NotFound("Mouse", arg)
	}
	return &mice[0], nil
}

// ListMice returns the mice matching filter, sorted as filter.Order asks.
func (db *DB) ListMice(ctx context.Context, filter repository.MouseFilter) ([]model.Mouse, error) {
	var (
		conds []string
		args  []any
	)
	if filter.LabID != "" {
		conds = append(conds, "m.lab_id = ?")
		args = append(args, filter.LabID)
	}
	if filter.UserID != "" {
		conds = append(conds, "m.user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.AvailableOnly {
		conds = append(conds, "m.available = 1")
	}

	query := mouseSelect
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	switch filter.Order {
	case repository.OrderByCreatedAtDesc:
		query += " ORDER BY m.created_at DESC, m.id DESC"
	default:
		query += " ORDER BY m.name ASC"
	}

	return db.queryMice(ctx, query, args...)
}

// UpdateMouseAvailability sets the availability flag and returns the updated mouse.
func (db *DB) UpdateMouseAvailability(ctx context.Context, id string, available bool) (*model.Mouse, error) {
	if err := db.updateMouse(ctx, id, `UPDATE mice SET available = ? WHERE id = ?`, available, id); err != nil {
		return nil, err
	}
	return db.GetMouseByID(ctx, id)
}

// UpdateMouseNotes replaces the notes and returns the updated mouse.
func (db *DB) UpdateMouseNotes(ctx context.Context, id, notes string) (*model.Mouse, error) {
	if err := db.updateMouse(ctx, id, `UPDATE mice SET notes = ? WHERE id = ?`, notes, id); err != nil {
		return nil, err
	}
	return db.GetMouseByID(ctx, id)
}

func (db *DB) updateMouse(ctx context.Context, id, query string, args ...any) error {
	result, err := db.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("sqlite: updating mouse %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("Mouse", id)
	}
	return nil
}

// DeleteMouse removes a mouse and its own littermate list. Other mice and log
// entries that point at it keep their references, which then read as
// unresolved.
func (db *DB) DeleteMouse(ctx context.Context, id string) (bool, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("sqlite: beginning mouse delete: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `DELETE FROM mice WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("sqlite: deleting mouse %s: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM mouse_littermates WHERE mouse_id = ?`, id); err != nil {
		return false, fmt.Errorf("sqlite: deleting littermates of mouse %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("sqlite: committing mouse delete %s: %w", id, err)
	}
	return rowsAffected > 0, nil
}

// queryMice runs a mouseSelect query and attaches littermates.
//
// The rows are fully read and closed before the littermate query runs: an
// in-memory database has a single pooled connection, and a second query
// issued while rows are open would wait on it forever.
func (db *DB) queryMice(ctx context.Context, query string, args ...any) ([]model.Mouse, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: querying mice: %w", err)
	}

	mice := []model.Mouse{}
	for rows.Next() {
		m, err := scanMouse(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("sqlite: scanning mouse row: %w", err)
		}
		mice = append(mice, *m)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("sqlite: iterating mice: %w", err)
	}
	rows.Close()

	if err := db.attachLittermates(ctx, mice); err != nil {
		return nil, err
	}
	return mice, nil
}

func (db *DB) attachLittermates(ctx context.Context, mice []model.Mouse) error {
	if len(mice) == 0 {
		return nil
	}

	index := make(map[string]int, len(mice))
	args := make([]any, len(mice))
	for i := range mice {
		mice[i].Littermates = []model.MouseRef{}
		index[mice[i].ID] = i
		args[i] = mice[i].ID
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT ml.mouse_id, ml.littermate_id, lm.id, lm.name, lm.strain
		 FROM mouse_littermates ml
		 LEFT JOIN mice lm ON lm.id = ml.littermate_id
		 WHERE ml.mouse_id IN (`+placeholders(len(args))+`)
		 ORDER BY ml.mouse_id, ml.position`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("sqlite: querying littermates: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			mouseID, littermateID string
			sumID, name, strain   sql.NullString
		)
		if err := rows.Scan(&mouseID, &littermateID, &sumID, &name, &strain); err != nil {
			return fmt.Errorf("sqlite: scanning littermate row: %w", err)
		}
		i := index[mouseID]
		mice[i].Littermates = append(mice[i].Littermates, model.MouseRef{
			ID:    littermateID,
			Mouse: mouseSummary(sumID, name, strain),
		})
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("sqlite: iterating littermates: %w", err)
	}
	return nil
}

func scanMouse(rows *sql.Rows) (*model.Mouse, error) {
	var (
		m                                  model.Mouse
		sex, genotype                      string
		notes, labID, protocolID           sql.NullString
		motherID, fatherID                 sql.NullString
		userSumID, username, email         sql.NullString
		labSumID, labName                  sql.NullString
		protocolSumID, protocolTitle       sql.NullString
		motherSumID, motherName, motherStr sql.NullString
		fatherSumID, fatherName, fatherStr sql.NullString
	)
	if err := rows.Scan(
		&m.ID, &m.Name, &sex, &genotype, &m.Strain, &m.BirthDate, &m.Available, &notes,
		&m.UserID, &labID, &protocolID, &motherID, &fatherID, &m.CreatedAt,
		&userSumID, &username, &email,
		&labSumID, &labName,
		&protocolSumID, &protocolTitle,
		&motherSumID, &motherName, &motherStr,
		&fatherSumID, &fatherName, &fatherStr,
	); err != nil {
		return nil, err
	}

	var tags []string
	if err := json.Unmarshal([]byte(genotype), &tags); err != nil {
		return nil, fmt.Errorf("decoding genotype of mouse %s: %w", m.ID, err)
	}
	m.Genotype = model.StringList(tags)

	m.Sex = model.Sex(sex)
	m.Notes = ptr(notes)
	m.LabID = ptr(labID)
	m.ProtocolID = ptr(protocolID)
	m.MotherID = ptr(motherID)
	m.FatherID = ptr(fatherID)

	if userSumID.Valid {
		m.User = &model.UserSummary{ID: userSumID.String, Username: username.String, Email: email.String}
	}
	if labSumID.Valid {
		m.Lab = &model.LabSummary{ID: labSumID.String, Name: labName.String}
	}
	if protocolSumID.Valid {
		m.Protocol = &model.ProtocolSummary{ID: protocolSumID.String, Title: protocolTitle.String}
	}
	m.Mother = mouseSummary(motherSumID, motherName, motherStr)
	m.Father = mouseSummary(fatherSumID, fatherName, fatherStr)

	return &m, nil
}

func mouseSummary(id, name, strain sql.NullString) *model.MouseSummary {
	if !id.Valid {
		return nil
	}
	return &model.MouseSummary{ID: id.String, Name: name.String, Strain: strain.String}
}
