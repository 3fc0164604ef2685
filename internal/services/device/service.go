package device

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	devicedomain "github.com/micro-ha/device-inventory/internal/domain/device"
)

// HistoryStore records and reads device mutations.
type HistoryStore interface {
	Record(ctx context.Context, action devicedomain.Action, d devicedomain.Device) error
	ListByDevice(ctx context.Context, name string) ([]devicedomain.HistoryEntry, error)
}

// Publisher fans device changes out to live subscribers.
type Publisher interface {
	Publish(action devicedomain.Action, d devicedomain.Device)
}

// Service implements device.Service use-cases.
type Service struct {
	repo    devicedomain.Repository
	history HistoryStore
	events  Publisher
	logger  *slog.Logger
}

// New creates device service. history and events may be nil.
func New(
	repo devicedomain.Repository,
	history HistoryStore,
	events Publisher,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:    repo,
		history: history,
		events:  events,
		logger:  logger,
	}
}

// List returns every stored device.
func (s *Service) List(ctx context.Context) ([]devicedomain.Device, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, devicedomain.Internal(fmt.Errorf("list devices: %w", err))
	}
	if items == nil {
		items = []devicedomain.Device{}
	}
	return items, nil
}

// Create validates the payload and stores a new device. A name collision is
// reported as Conflict whether the pre-check or the unique index catches it.
func (s *Service) Create(ctx context.Context, in devicedomain.Payload) (devicedomain.Device, error) {
	d, err := devicedomain.ValidateCreate(in)
	if err != nil {
		return devicedomain.Device{}, err
	}

	_, err = s.repo.FindByName(ctx, d.Name)
	switch {
	case err == nil:
		return devicedomain.Device{}, devicedomain.Conflict(d.Name, devicedomain.ErrDuplicateName)
	case !errors.Is(err, devicedomain.ErrNotFound):
		return devicedomain.Device{}, devicedomain.Internal(fmt.Errorf("find device %q: %w", d.Name, err))
	}

	if err := s.repo.Insert(ctx, d); err != nil {
		if errors.Is(err, devicedomain.ErrDuplicateName) {
			return devicedomain.Device{}, devicedomain.Conflict(d.Name, err)
		}
		return devicedomain.Device{}, devicedomain.Internal(fmt.Errorf("insert device %q: %w", d.Name, err))
	}

	s.changed(ctx, devicedomain.ActionCreate, d)
	return d, nil
}

// Get returns device by name.
func (s *Service) Get(ctx context.Context, name string) (devicedomain.Device, error) {
	name, err := normalizeName(name)
	if err != nil {
		return devicedomain.Device{}, err
	}
	d, err := s.repo.FindByName(ctx, name)
	if errors.Is(err, devicedomain.ErrNotFound) {
		return devicedomain.Device{}, devicedomain.NotFound(name)
	}
	if err != nil {
		return devicedomain.Device{}, devicedomain.Internal(fmt.Errorf("find device %q: %w", name, err))
	}
	return d, nil
}

// Update replaces ip_address, type and location of an existing device. The
// payload is validated before storage is touched.
func (s *Service) Update(ctx context.Context, name string, in devicedomain.Payload) (devicedomain.Device, error) {
	name, err := normalizeName(name)
	if err != nil {
		return devicedomain.Device{}, err
	}
	attrs, err := devicedomain.ValidateUpdate(name, in)
	if err != nil {
		return devicedomain.Device{}, err
	}

	d, err := s.repo.Update(ctx, name, attrs)
	if errors.Is(err, devicedomain.ErrNotFound) {
		return devicedomain.Device{}, devicedomain.NotFound(name)
	}
	if err != nil {
		return devicedomain.Device{}, devicedomain.Internal(fmt.Errorf("update device %q: %w", name, err))
	}

	s.changed(ctx, devicedomain.ActionUpdate, d)
	return d, nil
}

// Delete removes device by name.
func (s *Service) Delete(ctx context.Context, name string) error {
	name, err := normalizeName(name)
	if err != nil {
		return err
	}
	d, err := s.repo.Delete(ctx, name)
	if errors.Is(err, devicedomain.ErrNotFound) {
		return devicedomain.NotFound(name)
	}
	if err != nil {
		return devicedomain.Internal(fmt.Errorf("delete device %q: %w", name, err))
	}

	s.changed(ctx, devicedomain.ActionDelete, d)
	return nil
}

// History returns recorded mutations of a device, newest first. Deleted
// devices keep their history.
func (s *Service) History(ctx context.Context, name string) ([]devicedomain.HistoryEntry, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}
	if s.history == nil {
		return []devicedomain.HistoryEntry{}, nil
	}
	entries, err := s.history.ListByDevice(ctx, name)
	if err != nil {
		return nil, devicedomain.Internal(fmt.Errorf("list history for %q: %w", name, err))
	}
	if entries == nil {
		entries = []devicedomain.HistoryEntry{}
	}
	return entries, nil
}

// changed records and publishes a committed mutation. Neither step can fail
// the request: the write already happened.
func (s *Service) changed(ctx context.Context, action devicedomain.Action, d devicedomain.Device) {
	s.logger.Info("device "+string(action)+"d", "name", d.Name, "type", d.Type, "ip_address", d.IPAddress)
	if s.history != nil {
		if err := s.history.Record(context.WithoutCancel(ctx), action, d); err != nil {
			s.logger.Warn("device history write failed", "name", d.Name, "action", action, "err", err)
		}
	}
	if s.events != nil {
		s.events.Publish(action, d)
	}
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", devicedomain.BadRequest("name is required")
	}
	return name, nil
}
