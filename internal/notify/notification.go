package notify

// Notification is a single platform event to be relayed to a destination.
// It is constructed by the caller per triggered event, passed by value, and
// never persisted by notifiers.
type Notification struct {
	// Title is the short headline of the event.
	Title string `json:"title"`

	// Message is the event body text.
	Message string `json:"message"`

	// URL points back at the triggering object in the platform UI.
	URL string `json:"url"`
}
