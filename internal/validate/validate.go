// Package validate implements the upload policy checks: container
// extension allow-lists and size ceilings. It inspects metadata only
// and never touches file content.
package validate

import (
	"context"

	"github.com/transcodehub/transcodebot/internal/config"
	"github.com/transcodehub/transcodebot/internal/models"
	"github.com/transcodehub/transcodebot/pkg/utils"
)

var videoExts = map[string]struct{}{
	".mp4": {}, ".mkv": {}, ".avi": {}, ".mov": {}, ".webm": {},
	".flv": {}, ".ts": {}, ".m4v": {}, ".3gp": {},
}

var subtitleExts = map[string]struct{}{
	".srt": {}, ".ass": {}, ".ssa": {}, ".vtt": {}, ".sub": {},
}

// IsVideoName reports whether a file name carries a supported video
// container extension.
func IsVideoName(name string) bool {
	_, ok := videoExts[utils.Ext(name)]
	return ok
}

// IsSubtitleName reports whether a file name carries a supported
// subtitle extension.
func IsSubtitleName(name string) bool {
	_, ok := subtitleExts[utils.Ext(name)]
	return ok
}

type Validator struct {
	cfg *config.Config
}

func New(cfg *config.Config) *Validator {
	return &Validator{cfg: cfg}
}

// ValidateVideo checks an uploaded video against the input policy.
func (v *Validator) ValidateVideo(ctx context.Context, meta models.FileMeta) error {
	if err := utils.ValidateStruct(ctx, &meta); err != nil {
		return models.NewInvalidParameter(err.Error())
	}
	if !IsVideoName(meta.Name) {
		return models.NewUnsupportedFormat(meta.Ext())
	}
	if meta.Size > v.cfg.Files.MaxVideoSize {
		return models.NewSizeExceeded(meta.Size, v.cfg.Files.MaxVideoSize)
	}
	return nil
}

// ValidateSubtitle checks an uploaded subtitle file. Empty subtitle
// files are rejected outright.
func (v *Validator) ValidateSubtitle(ctx context.Context, meta models.FileMeta) error {
	if err := utils.ValidateStruct(ctx, &meta); err != nil {
		return models.NewInvalidParameter(err.Error())
	}
	if !IsSubtitleName(meta.Name) {
		return models.NewUnsupportedFormat(meta.Ext())
	}
	if meta.Size == 0 {
		return models.NewInvalidParameter("subtitle file is empty")
	}
	if meta.Size > v.cfg.Files.MaxSubtitleSize {
		return models.NewSizeExceeded(meta.Size, v.cfg.Files.MaxSubtitleSize)
	}
	return nil
}
