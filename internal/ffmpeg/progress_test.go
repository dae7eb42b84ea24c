package ffmpeg

import (
	"testing"
	"time"
)

func TestProgressStateFeed(t *testing.T) {
	state := newProgressState(100) // 100 second input
	now := time.Now()

	lines := []string{
		"out_time_us=25000000",
		"speed=2.5x",
		"progress=continue",
	}
	var got progressUpdate
	var ok bool
	for _, line := range lines {
		if upd, emitted := state.feed(line, now); emitted {
			got, ok = upd, true
		}
	}
	if !ok {
		t.Fatal("no update emitted on progress boundary")
	}
	if got.Percent != 25 {
		t.Errorf("percent = %d, want 25", got.Percent)
	}
	if got.Speed != "2.5x" {
		t.Errorf("speed = %q, want 2.5x", got.Speed)
	}
	// 75 seconds left at 2.5x real time.
	if got.ETA != "30s" {
		t.Errorf("eta = %q, want 30s", got.ETA)
	}
}

func TestProgressStateThrottles(t *testing.T) {
	state := newProgressState(100)
	base := time.Now()

	if _, ok := state.feed("progress=continue", base); !ok {
		t.Fatal("first boundary should emit")
	}
	if _, ok := state.feed("progress=continue", base.Add(time.Second)); ok {
		t.Error("boundary inside the throttle window should not emit")
	}
	if _, ok := state.feed("progress=continue", base.Add(progressInterval+time.Second)); !ok {
		t.Error("boundary after the throttle window should emit")
	}
}

func TestProgressStateUnknownDuration(t *testing.T) {
	state := newProgressState(0)
	if _, ok := state.feed("progress=continue", time.Now()); ok {
		t.Error("no updates without a known duration")
	}
}

func TestProgressCapsAtNinetyNine(t *testing.T) {
	state := newProgressState(10)
	state.feed("out_time_us=99000000", time.Now())
	upd := state.snapshot()
	if upd.Percent != 99 {
		t.Errorf("percent = %d, want cap at 99", upd.Percent)
	}
}

func TestParseSpeed(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"2.5x", 2.5},
		{" 1x", 1},
		{"0.48x", 0.48},
		{"N/A", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := parseSpeed(tt.in); got != tt.want {
			t.Errorf("parseSpeed(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFormatETA(t *testing.T) {
	tests := []struct {
		secs int
		want string
	}{
		{30, "30s"},
		{60, "60s"},
		{61, "1m 1s"},
		{150, "2m 30s"},
	}
	for _, tt := range tests {
		if got := formatETA(tt.secs); got != tt.want {
			t.Errorf("formatETA(%d) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}
