package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	devicedomain "github.com/micro-ha/device-inventory/internal/domain/device"
)

// Pinger reports whether the device store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StoreMonitor tracks store reachability in the background.
type StoreMonitor interface {
	Up() bool
	TriggerRefresh()
}

// ErrorObserver counts error envelopes by code.
type ErrorObserver interface {
	ObserveError(code string)
}

// API groups HTTP handlers and dependencies.
type API struct {
	devices  devicedomain.Service
	store    Pinger
	monitor  StoreMonitor
	observer ErrorObserver
	logger   *slog.Logger
}

// New creates HTTP handlers with explicit dependencies. monitor and observer
// may be nil.
func New(
	devices devicedomain.Service,
	store Pinger,
	monitor StoreMonitor,
	observer ErrorObserver,
	logger *slog.Logger,
) *API {
	if logger == nil {
		logger = slog.Default()
	}
	return &API{
		devices:  devices,
		store:    store,
		monitor:  monitor,
		observer: observer,
		logger:   logger,
	}
}

// Logger returns request logger used by HTTP middleware.
func (a *API) Logger() *slog.Logger {
	return a.logger
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// WriteError writes the standard error envelope.
func WriteError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}

// refreshStore asks the monitor for an early ping so its state catches up
// with what a request just observed.
func (a *API) refreshStore() {
	if a.monitor != nil {
		a.monitor.TriggerRefresh()
	}
}
