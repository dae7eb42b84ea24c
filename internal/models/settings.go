package models

import "time"

const (
	UploadTypeVideo    = "video"
	UploadTypeDocument = "document"
)

// UserSettings are per-user preferences persisted across sessions.
// Empty Preset / zero CRF mean "inherit the configured default".
type UserSettings struct {
	UserID     int64     `json:"user_id" db:"user_id" validate:"required"`
	UploadType string    `json:"upload_type" db:"upload_type" validate:"oneof=video document"`
	Preset     string    `json:"preset" db:"preset" validate:"omitempty,lte=20"`
	CRF        int       `json:"crf" db:"crf" validate:"gte=0,lte=51"`
	NotifyDone bool      `json:"notify_done" db:"notify_done"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

func DefaultSettings(userID int64) *UserSettings {
	return &UserSettings{
		UserID:     userID,
		UploadType: UploadTypeVideo,
		NotifyDone: true,
	}
}
