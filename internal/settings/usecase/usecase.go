package usecase

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/transcodehub/transcodebot/internal/models"
	"github.com/transcodehub/transcodebot/internal/settings"
	"github.com/transcodehub/transcodebot/pkg/logger"
	"github.com/transcodehub/transcodebot/pkg/utils"
)

type settingsUC struct {
	repo   settings.Repository
	logger logger.Logger
}

func NewSettingsUseCase(repo settings.Repository, log logger.Logger) settings.UseCase {
	return &settingsUC{repo: repo, logger: log}
}

// Get returns the user's stored settings, falling back to defaults for
// users who never changed anything.
func (u *settingsUC) Get(ctx context.Context, userID int64) (*models.UserSettings, error) {
	stored, err := u.repo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.DefaultSettings(userID), nil
		}
		return nil, errors.Wrap(err, "settingsUC.Get.GetByUserID")
	}
	return stored, nil
}

func (u *settingsUC) Update(ctx context.Context, s *models.UserSettings) (*models.UserSettings, error) {
	if err := utils.ValidateStruct(ctx, s); err != nil {
		return nil, errors.Wrap(err, "settingsUC.Update.ValidateStruct")
	}
	updated, err := u.repo.Upsert(ctx, s)
	if err != nil {
		return nil, errors.Wrap(err, "settingsUC.Update.Upsert")
	}
	u.logger.Infof("settings updated: user=%d upload=%s preset=%q crf=%d", updated.UserID, updated.UploadType, updated.Preset, updated.CRF)
	return updated, nil
}
