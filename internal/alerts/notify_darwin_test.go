//go:build darwin

package alerts

import (
	"strings"
	"testing"
)

func TestBuildAppleScript(t *testing.T) {
	// We don't actually run osascript in tests to avoid UI popups.
	script := buildAppleScript("pantry-alerts", Notification{
		Title:              "Item Expired",
		Body:               `"Fancy" cheese expired 2 days ago`,
		Tag:                "pantry-alert-1",
		RequireInteraction: true,
	})

	if !strings.Contains(script, `\"Fancy\" cheese`) {
		t.Errorf("expected escaped quotes in script, got %q", script)
	}
	if !strings.Contains(script, `with title "Item Expired"`) {
		t.Errorf("expected title in script, got %q", script)
	}
	if !strings.HasSuffix(script, `sound name "Glass"`) {
		t.Errorf("expected sound for interaction-required notification, got %q", script)
	}
}

func TestEscapeAppleScript(t *testing.T) {
	escaped := escapeAppleScript(`He said "hello" and \n stuff`)
	expected := `He said \"hello\" and \\n stuff`
	if escaped != expected {
		t.Errorf("escapeAppleScript: expected %q, got %q", expected, escaped)
	}
}

func TestNewOSAScriptNotifier(t *testing.T) {
	enabled := NewOSAScriptNotifier(NotifierOptions{Enabled: true}, nil)
	if !enabled.enabled {
		t.Error("expected notifier to be enabled")
	}
	if enabled.appName != "pantry-alerts" {
		t.Errorf("appName = %q, want default", enabled.appName)
	}

	disabled := NewOSAScriptNotifier(NotifierOptions{Enabled: false}, nil)
	if disabled.Available() {
		t.Error("expected disabled notifier to be unavailable")
	}
}
