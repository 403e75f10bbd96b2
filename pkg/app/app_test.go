package app

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/notigate/notigate/internal/core"
	"github.com/notigate/notigate/internal/notify"
)

func init() {
	core.RegisterModule(notify.NewMockNotifier("appmock"))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "notigate.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

const validConfig = `
version: "1"
modules:
  notify.appmock: {}
settings:
  notify.appmock:
    apiKey: secret
rules:
  Billing:
    notifier: notify.appmock
    settings:
      target: "12345"
`

func TestBuildWiresNotifiersAndRules(t *testing.T) {
	a, err := Build(context.Background(), Params{
		ConfigPath: writeConfig(t, validConfig),
		DataDir:    t.TempDir(),
		Logger:     discardLogger(),
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer a.Close()

	rules := a.Dispatcher.Rules()
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}

	err = a.Dispatcher.Dispatch(context.Background(), "Billing", notify.Notification{
		Title:   "Invoice",
		Message: "overdue",
	})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	n, _ := a.Dispatcher.Notifier("notify.appmock")
	mock := n.(*notify.MockNotifier)
	got := mock.Delivered()
	if len(got) != 1 {
		t.Fatalf("expected 1 delivery, got %d", len(got))
	}
	if got[0].ModuleSettings.Get("apiKey") != "secret" {
		t.Errorf("module settings not wired: %v", got[0].ModuleSettings)
	}
	if got[0].RuleSettings.Get("target") != "12345" {
		t.Errorf("rule settings not wired: %v", got[0].RuleSettings)
	}
}

func TestBuildRecordsHistory(t *testing.T) {
	a, err := Build(context.Background(), Params{
		ConfigPath: writeConfig(t, validConfig),
		DataDir:    t.TempDir(),
		Logger:     discardLogger(),
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer a.Close()

	if err := a.Dispatcher.Dispatch(context.Background(), "Billing", notify.Notification{Title: "x"}); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	attempts, err := a.History.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(attempts) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(attempts))
	}
	if !attempts[0].OK {
		t.Errorf("expected successful attempt, got %+v", attempts[0])
	}
}

func TestBuildRejectsInvalidConfig(t *testing.T) {
	_, err := Build(context.Background(), Params{
		ConfigPath: writeConfig(t, "version: \"2\"\n"),
		DataDir:    t.TempDir(),
		Logger:     discardLogger(),
	})
	if err == nil {
		t.Fatal("expected error for unsupported version")
	}
}

func TestBuildMissingConfigFile(t *testing.T) {
	_, err := Build(context.Background(), Params{
		ConfigPath: filepath.Join(t.TempDir(), "absent.yaml"),
		Logger:     discardLogger(),
	})
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestBuildParsesHeartbeat(t *testing.T) {
	cfg := validConfig + `
heartbeat:
  schedule: "0 9 * * *"
  rule: Billing
  quiet_hours: "23:00-07:00"
`
	a, err := Build(context.Background(), Params{
		ConfigPath: writeConfig(t, cfg),
		DataDir:    t.TempDir(),
		Logger:     discardLogger(),
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer a.Close()

	if a.Heartbeat == nil {
		t.Fatal("expected heartbeat to be configured")
	}
}

func TestDefaultDataDirHonorsXDG(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")
	if got, want := DefaultDataDir(), "/tmp/xdg-data/notigate"; got != want {
		t.Errorf("DefaultDataDir() = %q, want %q", got, want)
	}
}
