package telegram

import "testing"

// newTestModule provisions a Telegram module pointed at a test server.
func newTestModule(t *testing.T, baseURL string) *Telegram {
	t.Helper()

	tg := &Telegram{}
	tg.config.APIURL = baseURL
	if err := tg.Provision(nil); err != nil {
		t.Fatalf("Provision() error: %v", err)
	}
	if err := tg.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	return tg
}
