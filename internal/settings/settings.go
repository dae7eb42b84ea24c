// Package settings stores per-user transcode preferences.
package settings

import (
	"context"

	"github.com/transcodehub/transcodebot/internal/models"
)

// Repository persists user settings.
type Repository interface {
	GetByUserID(ctx context.Context, userID int64) (*models.UserSettings, error)
	Upsert(ctx context.Context, settings *models.UserSettings) (*models.UserSettings, error)
}

// UseCase is the settings business logic surface.
type UseCase interface {
	Get(ctx context.Context, userID int64) (*models.UserSettings, error)
	Update(ctx context.Context, settings *models.UserSettings) (*models.UserSettings, error)
}
