package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/notigate/notigate/internal/notify"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAndRecent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC)
	attempts := []notify.Attempt{
		{Time: base, Rule: "invoices", Notifier: "notify.telegram", OK: true, Duration: 120 * time.Millisecond},
		{Time: base.Add(time.Minute), Rule: "tickets", Notifier: "notify.telegram", OK: false, Error: "Forbidden", Duration: 80 * time.Millisecond},
	}
	for _, a := range attempts {
		if err := store.Record(ctx, a); err != nil {
			t.Fatalf("Record() error: %v", err)
		}
	}

	got, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Recent() returned %d attempts, want 2", len(got))
	}

	// Newest first.
	if got[0].Rule != "tickets" {
		t.Errorf("got[0].Rule = %q, want %q", got[0].Rule, "tickets")
	}
	if got[0].OK {
		t.Error("got[0].OK = true, want false")
	}
	if got[0].Error != "Forbidden" {
		t.Errorf("got[0].Error = %q, want %q", got[0].Error, "Forbidden")
	}
	if got[1].Rule != "invoices" || !got[1].OK {
		t.Errorf("got[1] = %+v, want successful invoices attempt", got[1])
	}
	if got[1].Duration != 120*time.Millisecond {
		t.Errorf("got[1].Duration = %v, want 120ms", got[1].Duration)
	}
	if !got[1].Time.Equal(base) {
		t.Errorf("got[1].Time = %v, want %v", got[1].Time, base)
	}
}

func TestRecentLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		a := notify.Attempt{
			Time:     time.Now().Add(time.Duration(i) * time.Second),
			Rule:     "r",
			Notifier: "notify.mock",
			OK:       true,
		}
		if err := store.Record(ctx, a); err != nil {
			t.Fatalf("Record() error: %v", err)
		}
	}

	got, err := store.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("Recent() error: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("Recent(3) returned %d attempts, want 3", len(got))
	}
}

func TestRecentEmpty(t *testing.T) {
	store := openTestStore(t)

	got, err := store.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent() error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Recent() on empty store returned %d attempts", len(got))
	}
}

func TestOpenCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "history.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	_ = store.Close()
}
