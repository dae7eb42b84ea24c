package utils

import (
	"strings"
	"testing"
)

func TestFormatSize(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{512, "512 B"},
		{1536, "1.5 KB"},
		{5 << 20, "5.0 MB"},
		{3 << 30, "3.0 GB"},
	}
	for _, tt := range tests {
		if got := FormatSize(tt.in); got != tt.want {
			t.Errorf("FormatSize(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSafeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"movie.mp4", "movie.mp4"},
		{`a/b\c.mp4`, "a_b_c.mp4"},
		{"a   lot    of spaces.mp4", "a lot of spaces.mp4"},
		{"", "file"},
	}
	for _, tt := range tests {
		if got := SafeFileName(tt.in); got != tt.want {
			t.Errorf("SafeFileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSafeFileNameLength(t *testing.T) {
	long := strings.Repeat("a", 300) + ".mp4"
	got := SafeFileName(long)
	if len(got) > 200 {
		t.Errorf("len = %d, want <= 200", len(got))
	}
	if !strings.HasSuffix(got, ".mp4") {
		t.Errorf("extension lost: %q", got)
	}
}

func TestOutputFileName(t *testing.T) {
	tests := []struct {
		original string
		suffix   string
		want     string
	}{
		{"movie.mkv", "subtitled", "movie_subtitled.mp4"},
		{"movie.mp4", "1280x720", "movie_1280x720.mp4"},
		{".mp4", "subtitled", "video_subtitled.mp4"},
	}
	for _, tt := range tests {
		if got := OutputFileName(tt.original, tt.suffix); got != tt.want {
			t.Errorf("OutputFileName(%q, %q) = %q, want %q", tt.original, tt.suffix, got, tt.want)
		}
	}
}

func TestExt(t *testing.T) {
	if got := Ext("A.SRT"); got != ".srt" {
		t.Errorf("Ext = %q, want .srt", got)
	}
	if got := Ext("noext"); got != "" {
		t.Errorf("Ext = %q, want empty", got)
	}
}
