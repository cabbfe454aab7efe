//go:build darwin

package alerts

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// OSAScriptNotifier sends macOS system notifications via osascript.
// osascript has no notion of tags or click callbacks, so repeated
// notifications for the same alert stack in Notification Center.
type OSAScriptNotifier struct {
	enabled bool
	appName string
	logger  *zap.Logger
}

// NewOSAScriptNotifier creates a new macOS notification sender.
// If opts.Enabled is false the notifier reports itself unavailable.
func NewOSAScriptNotifier(opts NotifierOptions, logger *zap.Logger) *OSAScriptNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	appName := opts.AppName
	if appName == "" {
		appName = "pantry-alerts"
	}
	if opts.OnClick != nil {
		logger.Debug("osascript_click_unsupported")
	}
	return &OSAScriptNotifier{enabled: opts.Enabled, appName: appName, logger: logger}
}

// NewPlatformNotifier creates the platform-appropriate notifier for macOS.
func NewPlatformNotifier(opts NotifierOptions, logger *zap.Logger) Notifier {
	return NewOSAScriptNotifier(opts, logger)
}

// Available reports whether osascript exists and the notifier is enabled.
func (n *OSAScriptNotifier) Available() bool {
	if !n.enabled {
		return false
	}
	_, err := exec.LookPath("osascript")
	return err == nil
}

// Permission is reported as granted; macOS prompts on first display.
func (n *OSAScriptNotifier) Permission() Permission {
	return PermissionGranted
}

// RequestPermission returns PermissionGranted without prompting.
func (n *OSAScriptNotifier) RequestPermission(ctx context.Context) (Permission, error) {
	return PermissionGranted, nil
}

// Show executes osascript to display a macOS notification.
func (n *OSAScriptNotifier) Show(ctx context.Context, notif Notification) error {
	if !n.enabled {
		return ErrNotifierUnavailable
	}
	return exec.CommandContext(ctx, "osascript", "-e", buildAppleScript(n.appName, notif)).Run()
}

func buildAppleScript(appName string, notif Notification) string {
	// Escape double quotes in the message to prevent AppleScript injection.
	title := escapeAppleScript(truncate(notif.Title, 120))
	subtitle := escapeAppleScript(appName)
	message := escapeAppleScript(truncate(notif.Body, 500))

	script := fmt.Sprintf(
		`display notification "%s" with title "%s" subtitle "%s"`,
		message, title, subtitle,
	)
	if notif.RequireInteraction {
		script += ` sound name "Glass"`
	}
	return script
}

// escapeAppleScript escapes characters that could break AppleScript strings.
func escapeAppleScript(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return s
}
