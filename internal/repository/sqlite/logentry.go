package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/sakif/lab-records/internal/apperror"
	"github.com/sakif/lab-records/internal/ident"
	"github.com/sakif/lab-records/internal/model"
	"github.com/sakif/lab-records/internal/repository"
)

var _ repository.LogEntryRepository = (*DB)(nil)

const logEntrySelect = `
SELECT e.id, e.user_id, e.lab_id, e.content, e.created_at,
       u.id, u.username, u.email,
       l.id, l.name
FROM log_entries e
LEFT JOIN users u ON u.id = e.user_id
LEFT JOIN labs l  ON l.id = e.lab_id`

// CreateLogEntry inserts an entry and its ordered mouse list, filling in ID
// and CreatedAt.
func (db *DB) CreateLogEntry(ctx context.Context, entry *model.LogEntry) error {
	entry.ID = ident.New()
	entry.CreatedAt = time.Now().UTC()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning log entry insert: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO log_entries (id, user_id, lab_id, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		entry.ID, entry.UserID, entry.LabID, entry.Content, entry.CreatedAt,
	); err != nil {
		return fmt.Errorf("sqlite: inserting log entry: %w", err)
	}

	for i, ref := range entry.Mice {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO log_entry_mice (entry_id, position, mouse_id) VALUES (?, ?, ?)`,
			entry.ID, i, ref.ID,
		); err != nil {
			return fmt.Errorf("sqlite: linking mouse %s to log entry %s: %w", ref.ID, entry.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing log entry %s: %w", entry.ID, err)
	}
	return nil
}

// GetLogEntry returns the joined entry, or apperror.ErrNotFound.
func (db *DB) GetLogEntry(ctx context.Context, id string) (*model.LogEntry, error) {
	entries, err := db.queryLogEntries(ctx, logEntrySelect+" WHERE e.id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, apperror.NotFound("Log entry", id)
	}
	return &entries[0], nil
}

// ListLogEntries returns matching entries, newest first.
func (db *DB) ListLogEntries(ctx context.Context, filter repository.LogEntryFilter) ([]model.LogEntry, error) {
	var (
		conds []string
		args  []any
	)
	if filter.MouseID != "" {
		conds = append(conds, "e.id IN (SELECT entry_id FROM log_entry_mice WHERE mouse_id = ?)")
		args = append(args, filter.MouseID)
	}
	if filter.LabID != "" {
		conds = append(conds, "e.lab_id = ?")
		args = append(args, filter.LabID)
	}
	if filter.UserID != "" {
		conds = append(conds, "e.user_id = ?")
		args = append(args, filter.UserID)
	}

	query := logEntrySelect
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY e.created_at DESC, e.id DESC"

	return db.queryLogEntries(ctx, query, args...)
}

// UpdateLogEntryContent replaces the content and returns the updated entry.
// CreatedAt is left untouched.
func (db *DB) UpdateLogEntryContent(ctx context.Context, id, content string) (*model.LogEntry, error) {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE log_entries SET content = ? WHERE id = ?`, content, id)
	if err != nil {
		return nil, fmt.Errorf("sqlite: updating log entry %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, apperror.NotFound("Log entry", id)
	}

	return db.GetLogEntry(ctx, id)
}

// DeleteLogEntry removes an entry and its mouse links.
func (db *DB) DeleteLogEntry(ctx context.Context, id string) (bool, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("sqlite: beginning log entry delete: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `DELETE FROM log_entries WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("sqlite: deleting log entry %s: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM log_entry_mice WHERE entry_id = ?`, id); err != nil {
		return false, fmt.Errorf("sqlite: unlinking mice from log entry %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("sqlite: committing log entry delete %s: %w", id, err)
	}
	return rowsAffected > 0, nil
}

// queryLogEntries reads every row before attaching mice; see queryMice.
func (db *DB) queryLogEntries(ctx context.Context, query string, args ...any) ([]model.LogEntry, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: querying log entries: %w", err)
	}

	entries := []model.LogEntry{}
	for rows.Next() {
		var (
			e                          model.LogEntry
			userSumID, username, email sql.NullString
			labSumID, labName          sql.NullString
		)
		if err := rows.Scan(
			&e.ID, &e.UserID, &e.LabID, &e.Content, &e.CreatedAt,
			&userSumID, &username, &email,
			&labSumID, &labName,
		); err != nil {
			rows.Close()
			return nil, fmt.Errorf("sqlite: scanning log entry row: %w", err)
		}
		if userSumID.Valid {
			e.User = &model.UserSummary{ID: userSumID.String, Username: username.String, Email: email.String}
		}
		if labSumID.Valid {
			e.Lab = &model.LabSummary{ID: labSumID.String, Name: labName.String}
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("sqlite: iterating log entries: %w", err)
	}
	rows.Close()

	if err := db.attachEntryMice(ctx, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (db *DB) attachEntryMice(ctx context.Context, entries []model.LogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	index := make(map[string]int, len(entries))
	args := make([]any, len(entries))
	for i := range entries {
		entries[i].Mice = []model.MouseRef{}
		index[entries[i].ID] = i
		args[i] = entries[i].ID
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT em.entry_id, em.mouse_id, m.id, m.name, m.strain
		 FROM log_entry_mice em
		 LEFT JOIN mice m ON m.id = em.mouse_id
		 WHERE em.entry_id IN (`+placeholders(len(args))+`)
		 ORDER BY em.entry_id, em.position`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("sqlite: querying log entry mice: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			entryID, mouseID    string
			sumID, name, strain sql.NullString
		)
		if err := rows.Scan(&entryID, &mouseID, &sumID, &name, &strain); err != nil {
			return fmt.Errorf("sqlite: scanning log entry mouse row: %w", err)
		}
		i := index[entryID]
		entries[i].Mice = append(entries[i].Mice, model.MouseRef{
			ID:    mouseID,
			Mouse: mouseSummary(sumID, name, strain),
		})
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("sqlite: iterating log entry mice: %w", err)
	}
	return nil
}
