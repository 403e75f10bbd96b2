package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// maxResponseBytes bounds reads of API response bodies.
const maxResponseBytes = 1 << 20

// Client is a thin HTTP wrapper around the two Bot API methods this module
// needs. The bot token is passed per call rather than held by the client —
// it belongs to host-persisted settings, not to module state.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Client for the given Bot API base URL. A nil httpc
// falls back to a plain http.Client; timeout and pooling policy belong to
// the injected client.
func NewClient(baseURL string, httpc *http.Client) *Client {
	if httpc == nil {
		httpc = &http.Client{}
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    httpc,
	}
}

// GetUpdates issues GET /bot<token>/getUpdates and returns the HTTP status
// code and raw response body. HTTP error statuses are returned as ordinary
// responses; only transport failures produce an error.
func (c *Client) GetUpdates(ctx context.Context, token string) (int, []byte, error) {
	endpoint := fmt.Sprintf("%s/bot%s/getUpdates", c.baseURL, token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("telegram: create getUpdates request: %w", err)
	}

	return c.do(req, "getUpdates")
}

// SendMessage issues POST /bot<token>/sendMessage with a form-encoded body.
// The text is sent with parse_mode=HTML and link previews disabled. As with
// GetUpdates, non-2xx statuses are returned, not raised.
func (c *Client) SendMessage(ctx context.Context, token, chatID, text string) (int, []byte, error) {
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, token)

	form := url.Values{
		"chat_id":                  {chatID},
		"text":                     {text},
		"parse_mode":               {"HTML"},
		"disable_web_page_preview": {"true"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return 0, nil, fmt.Errorf("telegram: create sendMessage request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return c.do(req, "sendMessage")
}

// do executes the request and reads a bounded response body. The method name
// is used in error messages instead of the URL, which carries the token.
func (c *Client) do(req *http.Request, method string) (int, []byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("telegram: %s request failed: %w", method, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, nil, fmt.Errorf("telegram: read %s response: %w", method, err)
	}

	return resp.StatusCode, body, nil
}
