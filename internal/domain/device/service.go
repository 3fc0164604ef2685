package device

import (
	"context"
	"time"
)

// Action names a device mutation recorded in history and change events.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// HistoryEntry is one recorded mutation of a device.
type HistoryEntry struct {
	ID         string    `json:"id"`
	DeviceName string    `json:"device_name"`
	Action     Action    `json:"action"`
	IPAddress  string    `json:"ip_address"`
	Type       Type      `json:"type"`
	Location   string    `json:"location"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Service exposes device use-cases used by the HTTP layer. Every non-nil
// error it returns is a *Error.
type Service interface {
	List(ctx context.Context) ([]Device, error)
	Create(ctx context.Context, in Payload) (Device, error)
	Get(ctx context.Context, name string) (Device, error)
	Update(ctx context.Context, name string, in Payload) (Device, error)
	Delete(ctx context.Context, name string) error
	History(ctx context.Context, name string) ([]HistoryEntry, error)
}
