package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/notigate/notigate/internal/core"
	"github.com/notigate/notigate/internal/notify"
	"gopkg.in/yaml.v3"
)

func init() {
	// One notifier for the registry-dependent validation tests.
	core.RegisterModule(notify.NewMockNotifier("cfgmock"))
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "notigate.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadParsesRulesAndSettings(t *testing.T) {
	path := writeConfig(t, `
version: "1"
modules:
  notify.cfgmock: {}
settings:
  notify.cfgmock:
    apiKey: shh
rules:
  invoices:
    notifier: notify.cfgmock
    settings:
      target: billing-room
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Version != "1" {
		t.Errorf("Version = %q, want %q", cfg.Version, "1")
	}
	if cfg.Settings["notify.cfgmock"]["apiKey"] != "shh" {
		t.Errorf("settings not parsed: %v", cfg.Settings)
	}
	rule, ok := cfg.Rules["invoices"]
	if !ok {
		t.Fatal("rule invoices missing")
	}
	if rule.Notifier != "notify.cfgmock" || rule.Settings["target"] != "billing-room" {
		t.Errorf("unexpected rule: %+v", rule)
	}
}

func TestLoadExpandsEnvVars(t *testing.T) {
	t.Setenv("NOTIGATE_TEST_KEY", "from-env")

	path := writeConfig(t, `
version: "1"
settings:
  notify.cfgmock:
    apiKey: ${NOTIGATE_TEST_KEY}
    other: ${NOTIGATE_TEST_MISSING:-fallback}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got := cfg.Settings["notify.cfgmock"]["apiKey"]; got != "from-env" {
		t.Errorf("apiKey = %q, want %q", got, "from-env")
	}
	if got := cfg.Settings["notify.cfgmock"]["other"]; got != "fallback" {
		t.Errorf("other = %q, want %q", got, "fallback")
	}
}

func TestLoadUnresolvedVarFails(t *testing.T) {
	path := writeConfig(t, `
version: "1"
settings:
  notify.cfgmock:
    apiKey: ${NOTIGATE_DEFINITELY_UNSET}
`)

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unresolved variable")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string // substring; empty means valid
	}{
		{
			name: "valid",
			cfg: Config{
				Version: "1",
				Rules: map[string]RuleConfig{
					"ok": {Notifier: "notify.cfgmock", Settings: map[string]string{"target": "x"}},
				},
			},
		},
		{
			name:    "missing version",
			cfg:     Config{},
			wantErr: "version field is required",
		},
		{
			name:    "unsupported version",
			cfg:     Config{Version: "2"},
			wantErr: "unsupported version",
		},
		{
			name: "unknown notifier in rule",
			cfg: Config{
				Version: "1",
				Rules:   map[string]RuleConfig{"bad": {Notifier: "notify.nope"}},
			},
			wantErr: "unknown notifier",
		},
		{
			name: "missing required rule field",
			cfg: Config{
				Version: "1",
				Rules:   map[string]RuleConfig{"bad": {Notifier: "notify.cfgmock"}},
			},
			wantErr: `missing required field "target"`,
		},
		{
			name: "settings for unknown notifier",
			cfg: Config{
				Version:  "1",
				Settings: map[string]map[string]string{"notify.nope": {}},
			},
			wantErr: "do not match a registered notifier",
		},
		{
			name: "heartbeat references unknown rule",
			cfg: Config{
				Version:   "1",
				Heartbeat: &HeartbeatConfig{Schedule: "0 9 * * *", Rule: "ghost"},
			},
			wantErr: "not a configured rule",
		},
		{
			name: "heartbeat without schedule",
			cfg: Config{
				Version: "1",
				Rules: map[string]RuleConfig{
					"ok": {Notifier: "notify.cfgmock", Settings: map[string]string{"target": "x"}},
				},
				Heartbeat: &HeartbeatConfig{Rule: "ok"},
			},
			wantErr: "heartbeat.schedule is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(&tt.cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestResolveOrdersNotifiersFirst(t *testing.T) {
	cfg := &Config{
		Modules: map[string]yaml.Node{
			"gateway.http":    {},
			"notify.telegram": {},
			"notify.cfgmock":  {},
		},
	}

	got := Resolve(cfg)
	want := []string{"notify.cfgmock", "notify.telegram", "gateway.http"}
	if len(got) != len(want) {
		t.Fatalf("Resolve() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Resolve()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
