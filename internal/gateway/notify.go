package gateway

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/notigate/notigate/internal/notify"
)

// maxHookBody bounds the size of accepted hook payloads.
const maxHookBody = 256 << 10

// handleNotify returns the handler for POST /hooks/notify/{rule}. The body
// is a JSON notification {title, message, url}; the rule name selects the
// configured destination.
func (g *Gateway) handleNotify() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rule := chi.URLParam(r, "rule")
		if rule == "" {
			http.Error(w, "missing rule", http.StatusBadRequest)
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, maxHookBody))
		if err != nil {
			http.Error(w, "failed to read body", http.StatusBadRequest)
			return
		}

		var n notify.Notification
		if err := json.Unmarshal(body, &n); err != nil {
			http.Error(w, "invalid JSON body", http.StatusBadRequest)
			return
		}

		if err := g.dispatcher.Dispatch(r.Context(), rule, n); err != nil {
			switch {
			case errors.Is(err, notify.ErrNoRule):
				http.Error(w, "unknown rule: "+rule, http.StatusNotFound)
			case errors.Is(err, notify.ErrNoNotifier):
				http.Error(w, "rule has no registered notifier", http.StatusNotFound)
			default:
				// Delivery failed downstream; the attempt is already logged
				// and recorded by the dispatcher.
				http.Error(w, err.Error(), http.StatusBadGateway)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}
}
