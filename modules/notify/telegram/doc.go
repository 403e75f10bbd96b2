// Package telegram implements the Telegram notification module for notigate.
//
// It relays platform events to a Telegram chat or channel via the Bot HTTP
// API. The module declares two settings schemas for the host UI — a
// module-level bot token and a per-rule chat ID — verifies the token against
// the getUpdates endpoint at save time, and delivers notifications as
// HTML-formatted sendMessage calls.
//
// The module registers itself as "notify.telegram" via init(). Every call is
// stateless and independent; the only mutable state is the HTTP client built
// during provisioning.
//
// No external Telegram library is used — the module communicates with the
// Bot API via raw net/http.
package telegram
