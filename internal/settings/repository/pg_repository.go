package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/transcodehub/transcodebot/internal/models"
	"github.com/transcodehub/transcodebot/internal/settings"
)

type settingsRepo struct {
	db *sqlx.DB
}

func NewSettingsRepository(db *sqlx.DB) settings.Repository {
	return &settingsRepo{db: db}
}

func (r *settingsRepo) GetByUserID(ctx context.Context, userID int64) (*models.UserSettings, error) {
	stored := &models.UserSettings{}
	if err := r.db.GetContext(ctx, stored, getSettingsQuery, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, errors.Wrap(err, "settingsRepo.GetByUserID.GetContext")
	}
	return stored, nil
}

func (r *settingsRepo) Upsert(ctx context.Context, s *models.UserSettings) (*models.UserSettings, error) {
	stored := &models.UserSettings{}
	if err := r.db.QueryRowxContext(ctx, upsertSettingsQuery,
		s.UserID, s.UploadType, s.Preset, s.CRF, s.NotifyDone,
	).StructScan(stored); err != nil {
		return nil, errors.Wrap(err, "settingsRepo.Upsert.StructScan")
	}
	return stored, nil
}
