//go:build !linux && !darwin

package alerts

import (
	"context"

	"go.uber.org/zap"
)

// unavailableNotifier is used on platforms without a notification backend.
type unavailableNotifier struct{}

// NewPlatformNotifier returns a notifier that is never available.
func NewPlatformNotifier(opts NotifierOptions, logger *zap.Logger) Notifier {
	return unavailableNotifier{}
}

func (unavailableNotifier) Available() bool { return false }

func (unavailableNotifier) Permission() Permission { return PermissionDenied }

func (unavailableNotifier) RequestPermission(ctx context.Context) (Permission, error) {
	return PermissionDenied, nil
}

func (unavailableNotifier) Show(ctx context.Context, n Notification) error {
	return ErrNotifierUnavailable
}
