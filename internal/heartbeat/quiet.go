package heartbeat

import (
	"fmt"
	"strings"
	"time"
)

const clockLayout = "15:04"

// QuietHours is a daily window during which heartbeats are suppressed,
// expressed as offsets from midnight. A start after the end wraps across
// midnight ("23:00-07:00" covers late evening through early morning).
type QuietHours struct {
	Start time.Duration
	End   time.Duration
}

// ParseQuietHours parses a "HH:MM-HH:MM" window.
func ParseQuietHours(s string) (QuietHours, error) {
	from, to, found := strings.Cut(s, "-")
	if !found {
		return QuietHours{}, fmt.Errorf("%w: expected HH:MM-HH:MM, got %q", ErrInvalidQuiet, s)
	}

	start, err := clockOffset(from)
	if err != nil {
		return QuietHours{}, fmt.Errorf("%w: start: %w", ErrInvalidQuiet, err)
	}
	end, err := clockOffset(to)
	if err != nil {
		return QuietHours{}, fmt.Errorf("%w: end: %w", ErrInvalidQuiet, err)
	}

	return QuietHours{Start: start, End: end}, nil
}

// clockOffset converts an "HH:MM" clock time into a duration past midnight.
func clockOffset(s string) (time.Duration, error) {
	t, err := time.Parse(clockLayout, strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// IsQuiet reports whether t falls inside the window. The caller converts t
// to the timezone the window is defined in.
func (q QuietHours) IsQuiet(t time.Time) bool {
	now := time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second

	if q.Start <= q.End {
		return now >= q.Start && now < q.End
	}
	// Window wraps midnight.
	return now >= q.Start || now < q.End
}
