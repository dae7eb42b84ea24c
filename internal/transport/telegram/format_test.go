package telegram

import (
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/transcodehub/transcodebot/internal/models"
)

func TestProgressBar(t *testing.T) {
	tests := []struct {
		percent int
		filled  int
	}{
		{0, 0},
		{9, 0},
		{10, 1},
		{55, 5},
		{100, 10},
		{150, 10},
		{-5, 0},
	}
	for _, tt := range tests {
		got := progressBar(tt.percent)
		if n := strings.Count(got, "▰"); n != tt.filled {
			t.Errorf("progressBar(%d) has %d filled, want %d", tt.percent, n, tt.filled)
		}
	}
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{45 * time.Second, "45s"},
		{90 * time.Second, "1m 30s"},
		{3 * time.Minute, "3m 0s"},
	}
	for _, tt := range tests {
		if got := formatElapsed(tt.in); got != tt.want {
			t.Errorf("formatElapsed(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUserErrorText(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"busy", models.ErrBusy, "previous request"},
		{"wrapped busy", errors.Wrap(models.ErrBusy, "dispatch"), "previous request"},
		{"overloaded", models.ErrOverloaded, "busy right now"},
		{"timed out", models.ErrTimedOut, "took too long"},
		{"transcode failed", models.ErrTranscodeFailed, "failed"},
		{"validation detail surfaces", models.NewInvalidParameter("subtitle file is empty"), "subtitle file is empty"},
		{"internal stays generic", errors.New("pq: connection refused"), "on my side"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := userErrorText(tt.err)
			if !strings.Contains(got, tt.want) {
				t.Errorf("userErrorText(%v) = %q, want it to mention %q", tt.err, got, tt.want)
			}
		})
	}
}

func TestFormatQueue(t *testing.T) {
	if got := formatQueue(nil); !strings.Contains(got, "empty") {
		t.Errorf("empty queue text = %q", got)
	}
}
