package repository

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/transcodehub/transcodebot/internal/models"
	"github.com/transcodehub/transcodebot/internal/settings"
)

// memoryRepo keeps settings in process memory. Used when Postgres is
// not configured; settings then last only for the process lifetime.
type memoryRepo struct {
	mu    sync.RWMutex
	items map[int64]models.UserSettings
}

func NewMemoryRepository() settings.Repository {
	return &memoryRepo{items: make(map[int64]models.UserSettings)}
}

func (r *memoryRepo) GetByUserID(_ context.Context, userID int64) (*models.UserSettings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored, ok := r.items[userID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	out := stored
	return &out, nil
}

func (r *memoryRepo) Upsert(_ context.Context, s *models.UserSettings) (*models.UserSettings, error) {
	stored := *s
	stored.UpdatedAt = time.Now()
	r.mu.Lock()
	r.items[s.UserID] = stored
	r.mu.Unlock()
	out := stored
	return &out, nil
}
