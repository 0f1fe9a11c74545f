package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/hrygo/nlcal/store"
)

func (d *DB) CreateEntry(ctx context.Context, create *store.Entry) (*store.Entry, error) {
	fields := []string{"uid", "created_ts", "start_date", "start_time", "title", "utc_offset", "source"}
	args := []any{create.UID, create.CreatedTs, create.Date, create.Time, create.Title, create.Offset, create.Source}

	stmt := `INSERT INTO entry (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		RETURNING id`
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(&create.ID); err != nil {
		return nil, fmt.Errorf("failed to create entry: %w", err)
	}
	return create, nil
}

func (d *DB) ListEntries(ctx context.Context, find *store.FindEntry) ([]*store.Entry, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.UID; v != nil {
		where, args = append(where, "uid = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.FromDate; v != nil {
		where, args = append(where, "start_date >= "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.ToDate; v != nil {
		where, args = append(where, "start_date <= "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `
		SELECT id, uid, created_ts, start_date, start_time, title, utc_offset, source
		FROM entry
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY start_date ASC, start_time ASC, id ASC`
	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	list := make([]*store.Entry, 0)
	for rows.Next() {
		var entry store.Entry
		if err := rows.Scan(
			&entry.ID,
			&entry.UID,
			&entry.CreatedTs,
			&entry.Date,
			&entry.Time,
			&entry.Title,
			&entry.Offset,
			&entry.Source,
		); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		list = append(list, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

func (d *DB) DeleteEntry(ctx context.Context, delete *store.DeleteEntry) error {
	result, err := d.db.ExecContext(ctx, "DELETE FROM entry WHERE id = "+placeholder(1), delete.ID)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("entry %d: %w", delete.ID, store.ErrEntryNotFound)
	}
	return nil
}
