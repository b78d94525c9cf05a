package storage

import (
	"context"

	"mintwatch/internal/model"
)

// Archive is an optional sink recording dispatched notifications. Archive
// failures never block the notification flow.
type Archive interface {
	PutNotifications(ctx context.Context, notifications []model.Notification) error
}
