package telegram

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/transcodehub/transcodebot/internal/jobs"
	"github.com/transcodehub/transcodebot/internal/models"
)

const helpText = `I turn videos around for you.

Send me a video file, then pick an operation:
  - burn subtitles from a .srt/.ass/.ssa/.vtt/.sub file into the video
  - rescale the video to a standard resolution

Commands:
  /settings  change how results are delivered
  /cancel    abort the current request
  /help      show this message`

const progressBarWidth = 10

func progressBar(percent int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent * progressBarWidth / 100
	return strings.Repeat("▰", filled) + strings.Repeat("▱", progressBarWidth-filled)
}

func formatElapsed(d time.Duration) string {
	d = d.Round(time.Second)
	if d >= time.Minute {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%ds", int(d.Seconds()))
}

func formatSettings(prefs *models.UserSettings) string {
	var sb strings.Builder
	sb.WriteString("Your settings:\n")
	fmt.Fprintf(&sb, "  delivery: %s\n", prefs.UploadType)
	if prefs.Preset != "" {
		fmt.Fprintf(&sb, "  encoder preset: %s\n", prefs.Preset)
	} else {
		sb.WriteString("  encoder preset: default\n")
	}
	if prefs.CRF > 0 {
		fmt.Fprintf(&sb, "  quality (CRF): %d\n", prefs.CRF)
	} else {
		sb.WriteString("  quality (CRF): default\n")
	}
	if prefs.NotifyDone {
		sb.WriteString("  completion note: on")
	} else {
		sb.WriteString("  completion note: off")
	}
	return sb.String()
}

func formatQueue(views []jobs.JobView) string {
	if len(views) == 0 {
		return "The queue is empty."
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d job(s) in flight:\n", len(views))
	for _, v := range views {
		fmt.Fprintf(&sb, "  %s  %s  %s  (session %d)\n", v.JobID[:8], v.Operation, v.Status, v.SessionID)
	}
	return sb.String()
}

func isErr(err, target error) bool {
	return errors.Is(err, target)
}
