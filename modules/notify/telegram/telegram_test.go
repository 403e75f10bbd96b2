package telegram

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/notigate/notigate/internal/notify"
)

func TestValidateConfigRejectsMalformedTokenLocally(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tg := newTestModule(t, srv.URL)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"missing", "nocolon"},
		{"absent key", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := notify.Settings{}
			if tt.token != "" {
				settings["botToken"] = tt.token
			}

			err := tg.ValidateConfig(context.Background(), settings)

			var ce *notify.ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("error = %v, want *notify.ConfigError", err)
			}
			if ce.Reason != "token empty or malformed" {
				t.Errorf("Reason = %q, want %q", ce.Reason, "token empty or malformed")
			}
		})
	}

	if n := calls.Load(); n != 0 {
		t.Errorf("made %d network calls, want 0", n)
	}
}

func TestValidateConfigCallsGetUpdates(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		if r.URL.Path != "/bot123:SECRET/getUpdates" {
			t.Errorf("path = %s, want /bot123:SECRET/getUpdates", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true,"result":[]}`))
	}))
	defer srv.Close()

	tg := newTestModule(t, srv.URL)

	err := tg.ValidateConfig(context.Background(), notify.Settings{"botToken": "123:SECRET"})
	if err != nil {
		t.Fatalf("ValidateConfig() error: %v", err)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("made %d getUpdates calls, want exactly 1", n)
	}
}

func TestValidateConfigNon200CarriesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"ok":false,"error_code":401,"description":"Unauthorized"}`))
	}))
	defer srv.Close()

	tg := newTestModule(t, srv.URL)

	err := tg.ValidateConfig(context.Background(), notify.Settings{"botToken": "123:BAD"})

	var ce *notify.ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("error = %v, want *notify.ConfigError", err)
	}
	want := `{"ok":false,"error_code":401,"description":"Unauthorized"}`
	if ce.Reason != want {
		t.Errorf("Reason = %q, want response body verbatim %q", ce.Reason, want)
	}
}

func TestValidateConfigTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // connection refused from here on

	tg := newTestModule(t, srv.URL)

	err := tg.ValidateConfig(context.Background(), notify.Settings{"botToken": "123:SECRET"})

	var ce *notify.ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("error = %v, want *notify.ConfigError", err)
	}
	if ce.Unwrap() == nil {
		t.Error("transport cause not preserved via Unwrap")
	}
}

func TestDeliverRequiresChatID(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tg := newTestModule(t, srv.URL)

	err := tg.Deliver(context.Background(),
		notify.Notification{Title: "T", Message: "M", URL: "U"},
		notify.Settings{"botToken": "123:SECRET"},
		notify.Settings{}, // no chatID
	)

	var de *notify.DeliveryError
	if !errors.As(err, &de) {
		t.Fatalf("error = %v, want *notify.DeliveryError", err)
	}
	if de.Message != "no chat ID" {
		t.Errorf("Message = %q, want %q", de.Message, "no chat ID")
	}
	if n := calls.Load(); n != 0 {
		t.Errorf("made %d network calls, want 0", n)
	}
}

func TestDeliverFormatsAndPostsForm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/bot123:SECRET/sendMessage" {
			t.Errorf("path = %s, want /bot123:SECRET/sendMessage", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.PostForm.Get("chat_id"); got != "-100200300" {
			t.Errorf("chat_id = %q, want %q", got, "-100200300")
		}
		if got := r.PostForm.Get("text"); got != "<b>T</b>\n\nM\n\nU" {
			t.Errorf("text = %q, want %q", got, "<b>T</b>\n\nM\n\nU")
		}
		if got := r.PostForm.Get("parse_mode"); got != "HTML" {
			t.Errorf("parse_mode = %q, want %q", got, "HTML")
		}
		if got := r.PostForm.Get("disable_web_page_preview"); got != "true" {
			t.Errorf("disable_web_page_preview = %q, want %q", got, "true")
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	tg := newTestModule(t, srv.URL)

	err := tg.Deliver(context.Background(),
		notify.Notification{Title: "T", Message: "M", URL: "U"},
		notify.Settings{"botToken": "123:SECRET"},
		notify.Settings{"chatID": "-100200300"},
	)
	if err != nil {
		t.Fatalf("Deliver() error: %v", err)
	}
}

func TestDeliverNon200CarriesBodyVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("Forbidden"))
	}))
	defer srv.Close()

	tg := newTestModule(t, srv.URL)

	err := tg.Deliver(context.Background(),
		notify.Notification{Title: "T", Message: "M", URL: "U"},
		notify.Settings{"botToken": "123:SECRET"},
		notify.Settings{"chatID": "42"},
	)

	var de *notify.DeliveryError
	if !errors.As(err, &de) {
		t.Fatalf("error = %v, want *notify.DeliveryError", err)
	}
	if de.Message != "Forbidden" {
		t.Errorf("Message = %q, want %q", de.Message, "Forbidden")
	}
}

func TestDeliverTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	tg := newTestModule(t, srv.URL)

	err := tg.Deliver(context.Background(),
		notify.Notification{Title: "T"},
		notify.Settings{"botToken": "123:SECRET"},
		notify.Settings{"chatID": "42"},
	)

	var de *notify.DeliveryError
	if !errors.As(err, &de) {
		t.Fatalf("error = %v, want *notify.DeliveryError", err)
	}
	if de.Unwrap() == nil {
		t.Error("transport cause not preserved via Unwrap")
	}
}

func TestIdentityAndSchemas(t *testing.T) {
	tg := &Telegram{}

	id := tg.Identity()
	if id.Name != "Telegram" {
		t.Errorf("Name = %q, want %q", id.Name, "Telegram")
	}
	if id.Logo != "icon_telegram.png" {
		t.Errorf("Logo = %q, want %q", id.Logo, "icon_telegram.png")
	}

	ms := tg.ModuleSchema()
	token, ok := ms["botToken"]
	if !ok {
		t.Fatal("module schema missing botToken")
	}
	if token.Type != notify.FieldSecret {
		t.Errorf("botToken type = %q, want secret", token.Type)
	}

	rs := tg.RuleSchema()
	chat, ok := rs["chatID"]
	if !ok {
		t.Fatal("rule schema missing chatID")
	}
	if chat.Type != notify.FieldText || !chat.Required {
		t.Errorf("chatID descriptor = %+v, want required text field", chat)
	}
}

func TestResolveFieldAlwaysEmpty(t *testing.T) {
	tg := &Telegram{}
	got, err := tg.ResolveField(context.Background(), "anything", notify.Settings{"botToken": "1:a"})
	if err != nil {
		t.Fatalf("ResolveField() error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("ResolveField() = %v, want empty mapping", got)
	}
}

func TestConfigValidation(t *testing.T) {
	tg := &Telegram{}
	tg.config.APIURL = "ftp://api.example"
	if err := tg.Provision(nil); err != nil {
		t.Fatalf("Provision() error: %v", err)
	}
	if err := tg.Validate(); err == nil {
		t.Error("expected Validate() to reject invalid api_url")
	}
}
