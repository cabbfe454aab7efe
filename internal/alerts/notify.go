package alerts

import (
	"context"
	"errors"
	"unicode/utf8"
)

// Permission is the platform's answer to "may we show notifications".
type Permission int

// Permission states.
const (
	PermissionUndetermined Permission = iota
	PermissionGranted
	PermissionDenied
)

func (p Permission) String() string {
	switch p {
	case PermissionGranted:
		return "granted"
	case PermissionDenied:
		return "denied"
	default:
		return "undetermined"
	}
}

// ErrNotifierUnavailable is returned by Show when no notification backend exists.
var ErrNotifierUnavailable = errors.New("platform notifications unavailable")

// Notification is a single platform notification request.
type Notification struct {
	Title string
	Body  string
	// Tag is stable per alert so the platform replaces rather than stacks.
	Tag string
	// RequireInteraction keeps the notification on screen until the user acts.
	RequireInteraction bool
}

// Notifier is the platform notification capability.
type Notifier interface {
	// Available reports whether the backend can be used on this host.
	Available() bool

	// Permission returns the current permission without prompting.
	Permission() Permission

	// RequestPermission prompts for permission where the platform supports it.
	RequestPermission(ctx context.Context) (Permission, error)

	// Show displays a notification. It must return once ctx is done.
	Show(ctx context.Context, n Notification) error
}

// ClickHandler is invoked with the notification tag when the user clicks a
// notification. Hosts use it to bring the app forward on the inventory view.
type ClickHandler func(tag string)

// NotifierOptions configures the platform notifier.
type NotifierOptions struct {
	// Enabled false makes the notifier report itself unavailable.
	Enabled bool
	AppName string
	OnClick ClickHandler
}

// truncate shortens s to at most max bytes for display in notifications,
// never splitting a UTF-8 sequence.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
