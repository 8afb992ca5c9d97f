package postgres

import (
	"context"

	"hotspotd/internal/domain"
)

var _ domain.CommandJournal = (*DB)(nil)

// Append records one executed command outcome.
func (d *DB) Append(ctx context.Context, e domain.JournalEntry) error {
	_, err := d.sql.ExecContext(ctx,
		"INSERT INTO command_journal (command_id, command_type, status, message, created_at) VALUES ($1, $2, $3, $4, $5)",
		e.CommandID, e.Type, e.Status, e.Message, e.CreatedAt,
	)
	return err
}

// Recent returns the most recent entries up to limit, newest first.
func (d *DB) Recent(ctx context.Context, limit int) ([]domain.JournalEntry, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT id, command_id, command_type, status, message, created_at FROM command_journal ORDER BY created_at DESC, id DESC LIMIT $1",
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.JournalEntry
	for rows.Next() {
		var e domain.JournalEntry
		if err := rows.Scan(&e.ID, &e.CommandID, &e.Type, &e.Status, &e.Message, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
