package config

import (
	"testing"
	"time"
)

func TestApplyDefaults(t *testing.T) {
	var c Config
	c.applyDefaults()

	if c.Worker.PoolSize != 2 {
		t.Errorf("PoolSize = %d, want 2", c.Worker.PoolSize)
	}
	if c.Worker.QueueDepth != 8 {
		t.Errorf("QueueDepth = %d, want 8", c.Worker.QueueDepth)
	}
	if c.Worker.JobDeadline != 30*time.Minute {
		t.Errorf("JobDeadline = %v, want 30m", c.Worker.JobDeadline)
	}
	if c.FFmpeg.Bin != "ffmpeg" || c.FFmpeg.ProbeBin != "ffprobe" {
		t.Errorf("binaries = %q/%q", c.FFmpeg.Bin, c.FFmpeg.ProbeBin)
	}
	if c.FFmpeg.VideoCodec != "libx264" || c.FFmpeg.AudioCodec != "aac" {
		t.Errorf("codecs = %q/%q", c.FFmpeg.VideoCodec, c.FFmpeg.AudioCodec)
	}
	if c.FFmpeg.CRF != 23 {
		t.Errorf("CRF = %d, want 23", c.FFmpeg.CRF)
	}
	if c.Files.TempDir == "" {
		t.Error("TempDir should default to a real directory")
	}
	if c.Redis.JobKeyPrefix == "" {
		t.Error("JobKeyPrefix should have a default")
	}
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	c := Config{
		Worker: WorkerConfig{PoolSize: 6, QueueDepth: 32, JobDeadline: time.Hour},
		FFmpeg: FFmpegConfig{CRF: 18, Preset: "slow"},
	}
	c.applyDefaults()

	if c.Worker.PoolSize != 6 || c.Worker.QueueDepth != 32 || c.Worker.JobDeadline != time.Hour {
		t.Errorf("worker config overridden: %+v", c.Worker)
	}
	if c.FFmpeg.CRF != 18 || c.FFmpeg.Preset != "slow" {
		t.Errorf("ffmpeg config overridden: %+v", c.FFmpeg)
	}
}
