package ffmpeg

import (
	"bytes"
	"context"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/transcodehub/transcodebot/internal/config"
	"github.com/transcodehub/transcodebot/internal/filters"
	"github.com/transcodehub/transcodebot/internal/models"
	"github.com/transcodehub/transcodebot/pkg/logger"
)

func integrationConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		FFmpeg: config.FFmpegConfig{
			Bin:        "ffmpeg",
			ProbeBin:   "ffprobe",
			VideoCodec: "libx264",
			AudioCodec: "aac",
			Preset:     "ultrafast",
			CRF:        28,
		},
		Logger: config.Logger{Level: "error", Encoding: "console"},
	}
}

func requireTranscoder(t *testing.T) {
	t.Helper()
	for _, bin := range []string{"ffmpeg", "ffprobe"} {
		if _, err := exec.LookPath(bin); err != nil {
			t.Skipf("%s not installed", bin)
		}
	}
}

// makeSource renders a one second synthetic clip to encode against.
func makeSource(t *testing.T, dir string) string {
	t.Helper()
	src := filepath.Join(dir, "src.mp4")
	cmd := exec.Command("ffmpeg", "-y",
		"-f", "lavfi", "-i", "testsrc=duration=1:size=320x240:rate=10",
		"-pix_fmt", "yuv420p",
		src,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("source render failed: %v\n%s", err, out)
	}
	return src
}

func integrationExecutor(t *testing.T) *Executor {
	t.Helper()
	cfg := integrationConfig(t)
	log := logger.NewApiLogger(cfg)
	log.InitLogger()
	return NewExecutor(cfg, log)
}

func TestExecutorChangeResolutionProducesExactDimensions(t *testing.T) {
	requireTranscoder(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	dir := t.TempDir()
	src := makeSource(t, dir)
	out := filepath.Join(dir, "out.mp4")

	plan, err := filters.Build(filters.Request{
		Operation:  models.OperationChangeResolution,
		VideoPath:  src,
		Resolution: models.Resolution720p,
		OutputPath: out,
	}, filters.Options{VideoCodec: "libx264", Preset: "ultrafast", CRF: 28})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	exe := integrationExecutor(t)
	job := models.NewJob(1, models.OperationChangeResolution, plan, time.Minute)
	job.InputPath = src
	if err := exe.Run(ctx, job, nil); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// A 320x240 source into a 720p frame must come out at exactly
	// 1280x720, pillarboxed, never cropped or stretched.
	w, h, err := exe.ProbeDimensions(ctx, out)
	if err != nil {
		t.Fatalf("ProbeDimensions: %v", err)
	}
	if w != 1280 || h != 720 {
		t.Errorf("output is %dx%d, want 1280x720", w, h)
	}

	srcDur, err := exe.ProbeDuration(ctx, src)
	if err != nil {
		t.Fatalf("ProbeDuration(src): %v", err)
	}
	outDur, err := exe.ProbeDuration(ctx, out)
	if err != nil {
		t.Fatalf("ProbeDuration(out): %v", err)
	}
	if math.Abs(outDur-srcDur) > 0.6 {
		t.Errorf("output duration %.2fs drifted from source %.2fs", outDur, srcDur)
	}
}

func TestExecutorBurnSubtitlesKeepsDuration(t *testing.T) {
	requireTranscoder(t)
	if !hasAssFilter(t) {
		t.Skip("ffmpeg built without the ass filter")
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	dir := t.TempDir()
	src := makeSource(t, dir)
	sub := filepath.Join(dir, "sub.srt")
	srt := "1\n00:00:00,000 --> 00:00:01,000\nhello\n"
	if err := os.WriteFile(sub, []byte(srt), 0o644); err != nil {
		t.Fatalf("write subtitle: %v", err)
	}
	out := filepath.Join(dir, "out.mp4")

	plan, err := filters.Build(filters.Request{
		Operation:      models.OperationBurnSubtitles,
		VideoPath:      src,
		SubtitlePath:   sub,
		NormalizedPath: filepath.Join(dir, "sub.ass"),
		OutputPath:     out,
	}, filters.Options{VideoCodec: "libx264", AudioCodec: "aac", Preset: "ultrafast", CRF: 28})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	exe := integrationExecutor(t)
	job := models.NewJob(1, models.OperationBurnSubtitles, plan, time.Minute)
	job.InputPath = src
	job.SubtitlePath = sub
	if err := exe.Run(ctx, job, nil); err != nil {
		t.Fatalf("Run: %v", err)
	}

	srcDur, err := exe.ProbeDuration(ctx, src)
	if err != nil {
		t.Fatalf("ProbeDuration(src): %v", err)
	}
	outDur, err := exe.ProbeDuration(ctx, out)
	if err != nil {
		t.Fatalf("ProbeDuration(out): %v", err)
	}
	if math.Abs(outDur-srcDur) > 0.6 {
		t.Errorf("output duration %.2fs drifted from source %.2fs", outDur, srcDur)
	}
}

func hasAssFilter(t *testing.T) bool {
	t.Helper()
	out, err := exec.Command("ffmpeg", "-hide_banner", "-filters").CombinedOutput()
	if err != nil {
		return false
	}
	return bytes.Contains(out, []byte(" ass "))
}
