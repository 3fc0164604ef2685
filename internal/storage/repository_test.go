package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	devicedomain "github.com/micro-ha/device-inventory/internal/domain/device"
	"github.com/micro-ha/device-inventory/internal/logging"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	repo, err := New(context.Background(), filepath.Join(t.TempDir(), "nested", "history.db"), logging.Discard())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestRecordAndListByDevice(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }

	r1 := devicedomain.Device{Name: "r1", IPAddress: "10.0.0.1", Type: devicedomain.TypeRouter, Location: "NY"}
	sw := devicedomain.Device{Name: "sw1", IPAddress: "10.0.1.1", Type: devicedomain.TypeSwitch, Location: "NY"}

	steps := []struct {
		action devicedomain.Action
		device devicedomain.Device
	}{
		{devicedomain.ActionCreate, r1},
		{devicedomain.ActionCreate, sw},
		{devicedomain.ActionUpdate, r1.WithAttributes(devicedomain.Attributes{IPAddress: "10.0.0.2", Type: devicedomain.TypeSwitch, Location: "LA"})},
		{devicedomain.ActionDelete, r1},
	}
	for _, step := range steps {
		if err := repo.Record(ctx, step.action, step.device); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	entries, err := repo.ListByDevice(ctx, "r1")
	if err != nil {
		t.Fatalf("ListByDevice failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries for r1, got %d", len(entries))
	}
	wantActions := []devicedomain.Action{devicedomain.ActionDelete, devicedomain.ActionUpdate, devicedomain.ActionCreate}
	for i, entry := range entries {
		if entry.Action != wantActions[i] {
			t.Fatalf("entry %d action = %s, want %s", i, entry.Action, wantActions[i])
		}
		if entry.ID == "" || !entry.OccurredAt.Equal(fixed) {
			t.Fatalf("entry %d has unexpected id/time: %+v", i, entry)
		}
	}
	if entries[1].IPAddress != "10.0.0.2" || entries[1].Type != devicedomain.TypeSwitch || entries[1].Location != "LA" {
		t.Fatalf("update entry does not hold new attributes: %+v", entries[1])
	}

	none, err := repo.ListByDevice(ctx, "unknown")
	if err != nil {
		t.Fatalf("ListByDevice failed: %v", err)
	}
	if none == nil || len(none) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", none)
	}
}

func TestNewIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	for i := 0; i < 2; i++ {
		repo, err := New(context.Background(), path, logging.Discard())
		if err != nil {
			t.Fatalf("open %d failed: %v", i, err)
		}
		if err := repo.Record(context.Background(), devicedomain.ActionCreate, devicedomain.Device{Name: "r1", IPAddress: "10.0.0.1", Type: devicedomain.TypeRouter, Location: "NY"}); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
		_ = repo.Close()
	}

	repo, err := New(context.Background(), path, logging.Discard())
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer repo.Close()
	entries, err := repo.ListByDevice(context.Background(), "r1")
	if err != nil || len(entries) != 2 {
		t.Fatalf("expected 2 persisted entries, got %d (%v)", len(entries), err)
	}
}
