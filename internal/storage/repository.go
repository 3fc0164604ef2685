package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	devicedomain "github.com/micro-ha/device-inventory/internal/domain/device"
)

const maxHistoryEntries = 200

// Record appends one mutation of d to the device history.
func (r *Repository) Record(ctx context.Context, action devicedomain.Action, d devicedomain.Device) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO device_history (id, device_name, action, ip_address, type, location, occurred_at, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM device_history))`,
		uuid.NewString(),
		d.Name,
		string(action),
		d.IPAddress,
		string(d.Type),
		d.Location,
		r.now().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert history entry: %w", err)
	}
	return nil
}

// ListByDevice returns the most recent history entries for name, newest first.
func (r *Repository) ListByDevice(ctx context.Context, name string) ([]devicedomain.HistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, device_name, action, ip_address, type, location, occurred_at
		FROM device_history
		WHERE device_name = ?
		ORDER BY seq DESC
		LIMIT ?`, name, maxHistoryEntries)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	out := make([]devicedomain.HistoryEntry, 0)
	for rows.Next() {
		var (
			entry      devicedomain.HistoryEntry
			action     string
			kind       string
			occurredAt string
		)
		if err := rows.Scan(&entry.ID, &entry.DeviceName, &action, &entry.IPAddress, &kind, &entry.Location, &occurredAt); err != nil {
			return nil, err
		}
		entry.Action = devicedomain.Action(action)
		entry.Type = devicedomain.Type(kind)
		if t, err := time.Parse(time.RFC3339Nano, occurredAt); err == nil {
			entry.OccurredAt = t.UTC()
		} else if r.logger != nil {
			r.logger.Warn("unparseable history timestamp", "id", entry.ID, "value", occurredAt)
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}
