package models

import (
	"path/filepath"
	"strings"
	"time"
)

type SessionState string

const (
	StateIdle               SessionState = "idle"
	StateAwaitingVideo      SessionState = "awaiting_video"
	StateAwaitingOperation  SessionState = "awaiting_operation"
	StateAwaitingParameters SessionState = "awaiting_parameters"
	StateProcessing         SessionState = "processing"
	StateDone               SessionState = "done"
)

// FileMeta describes an uploaded file without touching its content.
type FileMeta struct {
	Name     string  `json:"name" validate:"required,lte=255"`
	Size     int64   `json:"size" validate:"gte=0"`
	MIME     string  `json:"mime" validate:"omitempty,lte=100"`
	Duration float64 `json:"duration" validate:"omitempty,gte=0"`
}

// Ext returns the lower-cased file extension, dot included.
func (m FileMeta) Ext() string {
	return strings.ToLower(filepath.Ext(m.Name))
}

type PendingVideo struct {
	Path string
	Meta FileMeta
}

// Session tracks one user's progress toward a transcode request. It is
// mutated only by the session manager, under the session's own lock.
type Session struct {
	UserID       int64
	State        SessionState
	Video        *PendingVideo
	Operation    Operation
	SubtitlePath string
	SubtitleMeta FileMeta
	Resolution   Resolution
	ActiveJobID  string
	CreatedAt    time.Time
	LastActivity time.Time
}

func NewSession(userID int64) *Session {
	now := time.Now()
	return &Session{
		UserID:       userID,
		State:        StateIdle,
		CreatedAt:    now,
		LastActivity: now,
	}
}

// ClearRequest drops the collected video/operation/parameter inputs.
func (s *Session) ClearRequest() {
	s.Video = nil
	s.Operation = ""
	s.SubtitlePath = ""
	s.SubtitleMeta = FileMeta{}
	s.Resolution = ""
	s.ActiveJobID = ""
}
