package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// SQLiteSlotStore implements Slot on the save_slots table.
type SQLiteSlotStore struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewSQLiteSlotStore(db *sqlx.DB) *SQLiteSlotStore {
	return &SQLiteSlotStore{db: db, now: time.Now}
}

func (r *SQLiteSlotStore) Get(ctx context.Context, key string) ([]byte, error) {
	var payload []byte
	err := r.db.GetContext(ctx, &payload, `SELECT payload FROM save_slots WHERE slot = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read slot %q: %w", key, err)
	}
	return payload, nil
}

func (r *SQLiteSlotStore) Set(ctx context.Context, key string, payload []byte) error {
	query := `
		INSERT INTO save_slots (slot, payload, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(slot) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at
	`
	if _, err := r.db.ExecContext(ctx, query, key, payload, r.now().UnixMilli()); err != nil {
		return fmt.Errorf("failed to write slot %q: %w", key, err)
	}
	return nil
}

func (r *SQLiteSlotStore) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM save_slots WHERE slot = ?`, key); err != nil {
		return fmt.Errorf("failed to delete slot %q: %w", key, err)
	}
	return nil
}

type slotRow struct {
	Slot      string `db:"slot"`
	Size      int    `db:"size"`
	UpdatedAt int64  `db:"updated_at"`
}

func (r *SQLiteSlotStore) List(ctx context.Context) ([]SlotInfo, error) {
	var rows []slotRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT slot, length(payload) AS size, updated_at FROM save_slots ORDER BY slot`)
	if err != nil {
		return nil, fmt.Errorf("failed to list slots: %w", err)
	}

	infos := make([]SlotInfo, 0, len(rows))
	for _, row := range rows {
		infos = append(infos, SlotInfo{
			Slot:      row.Slot,
			Size:      row.Size,
			UpdatedAt: time.UnixMilli(row.UpdatedAt),
		})
	}
	return infos, nil
}
