package telegram

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/notigate/notigate/internal/core"
	"github.com/notigate/notigate/internal/notify"
	"gopkg.in/yaml.v3"
)

func init() {
	core.RegisterModule(&Telegram{})
}

// Compile-time interface guards.
var (
	_ notify.Notifier   = (*Telegram)(nil)
	_ core.Configurable = (*Telegram)(nil)
	_ core.Provisioner  = (*Telegram)(nil)
	_ core.Validator    = (*Telegram)(nil)
)

// Telegram implements the Telegram notification module.
type Telegram struct {
	config Config
	client *Client
}

// ModuleInfo implements core.Module.
func (t *Telegram) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "notify.telegram",
		New: func() core.Module { return &Telegram{} },
	}
}

// Configure implements core.Configurable.
func (t *Telegram) Configure(node *yaml.Node) error {
	if err := node.Decode(&t.config); err != nil {
		return fmt.Errorf("telegram: decode config: %w", err)
	}
	return nil
}

// Provision implements core.Provisioner.
func (t *Telegram) Provision(_ *core.AppContext) error {
	t.config.defaults()
	t.client = NewClient(t.config.APIURL, &http.Client{Timeout: t.config.Timeout})
	return nil
}

// Validate implements core.Validator.
func (t *Telegram) Validate() error {
	return t.config.validate()
}

// Identity implements notify.Notifier.
func (t *Telegram) Identity() notify.Identity {
	return notify.Identity{
		Name: "Telegram",
		Logo: "icon_telegram.png",
	}
}

// ModuleSchema implements notify.Notifier.
func (t *Telegram) ModuleSchema() notify.Schema {
	return notify.Schema{
		"botToken": {
			Label:       "Bot token",
			Type:        notify.FieldSecret,
			Description: "Token issued by @BotFather, format <bot_id>:<secret>",
		},
	}
}

// RuleSchema implements notify.Notifier.
func (t *Telegram) RuleSchema() notify.Schema {
	return notify.Schema{
		"chatID": {
			Label:       "Chat ID",
			Type:        notify.FieldText,
			Description: "Identifier of the destination chat or channel",
			Required:    true,
		},
	}
}

// ValidateConfig implements notify.Notifier. It checks the token shape
// locally, then verifies the credential against the getUpdates endpoint.
func (t *Telegram) ValidateConfig(ctx context.Context, settings notify.Settings) error {
	token := settings.Get("botToken")
	if token == "" || !strings.Contains(token, ":") {
		return &notify.ConfigError{Reason: "token empty or malformed"}
	}

	status, body, err := t.client.GetUpdates(ctx, token)
	if err != nil {
		return &notify.ConfigError{Reason: "getUpdates request failed", Err: err}
	}
	if status != http.StatusOK {
		return &notify.ConfigError{Reason: string(body)}
	}
	return nil
}

// ResolveField implements notify.Notifier. No Telegram schema field is
// dynamic, so this always returns an empty mapping.
func (t *Telegram) ResolveField(_ context.Context, _ string, _ notify.Settings) (map[string]string, error) {
	return map[string]string{}, nil
}

// Deliver implements notify.Notifier. The notification is rendered as a
// bold title, the message body, and the URL, separated by blank lines.
// Title, message, and URL are interpolated unescaped into parse_mode=HTML
// text; stray <, > or & in caller content can make Telegram reject the
// message.
func (t *Telegram) Deliver(ctx context.Context, n notify.Notification, moduleSettings, ruleSettings notify.Settings) error {
	chatID := ruleSettings.Get("chatID")
	if chatID == "" {
		return &notify.DeliveryError{Message: "no chat ID"}
	}

	text := "<b>" + n.Title + "</b>\n\n" + n.Message + "\n\n" + n.URL

	status, body, err := t.client.SendMessage(ctx, moduleSettings.Get("botToken"), chatID, text)
	if err != nil {
		return &notify.DeliveryError{Message: "sendMessage request failed", Err: err}
	}
	if status != http.StatusOK {
		return &notify.DeliveryError{Message: string(body)}
	}
	return nil
}
