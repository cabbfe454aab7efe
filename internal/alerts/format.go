package alerts

import "fmt"

// tagPrefix namespaces notification tags so the platform replaces a
// notification for the same alert instead of stacking a second one.
const tagPrefix = "pantry-alert-"

// NotificationTag returns the stable platform tag for an alert id.
func NotificationTag(alertID string) string {
	return tagPrefix + alertID
}

// Title returns the notification title for a severity.
func Title(s Severity) string {
	switch s {
	case SeverityExpired:
		return "Item Expired"
	case SeverityCritical:
		return "Item Expiring Soon"
	case SeverityWarning:
		return "Expiration Warning"
	default:
		return "Expiration Reminder"
	}
}

// RelativeDays describes a signed day count in natural language:
// "today", "tomorrow", "N days ago" or "in N days".
func RelativeDays(days int) string {
	switch {
	case days == 0:
		return "today"
	case days == 1:
		return "tomorrow"
	case days == -1:
		return "1 day ago"
	case days < 0:
		return fmt.Sprintf("%d days ago", -days)
	default:
		return fmt.Sprintf("in %d days", days)
	}
}

// FormatNotification builds the title and body for an alert.
func FormatNotification(a Alert) (title, body string) {
	title = Title(a.Severity)

	name := a.ItemName
	if name == "" {
		name = "An item"
	}

	switch {
	case a.DaysUntilExpiration < 0:
		body = fmt.Sprintf("%s expired %s", name, RelativeDays(a.DaysUntilExpiration))
	default:
		body = fmt.Sprintf("%s expires %s", name, RelativeDays(a.DaysUntilExpiration))
	}
	if a.Category != "" {
		body = fmt.Sprintf("%s (%s)", body, a.Category)
	}
	return title, body
}
