package filters

import (
	"errors"
	"strings"
	"testing"

	"github.com/transcodehub/transcodebot/internal/models"
)

var testOpts = Options{
	VideoCodec: "libx264",
	AudioCodec: "aac",
	Preset:     "fast",
	CRF:        23,
}

func TestNeedsNormalization(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/tmp/a.srt", true},
		{"/tmp/a.vtt", true},
		{"/tmp/a.sub", true},
		{"/tmp/a.ass", false},
		{"/tmp/a.ssa", false},
		{"/tmp/a.ASS", false},
	}
	for _, tt := range tests {
		if got := NeedsNormalization(tt.path); got != tt.want {
			t.Errorf("NeedsNormalization(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestBuildBurnSubtitlesWithNormalization(t *testing.T) {
	req := Request{
		Operation:      models.OperationBurnSubtitles,
		VideoPath:      "/tmp/in.mp4",
		SubtitlePath:   "/tmp/subs.srt",
		NormalizedPath: "/tmp/subs_norm.ass",
		OutputPath:     "/tmp/out.mp4",
	}

	plan, err := Build(req, testOpts)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(plan.Steps) != 2 {
		t.Fatalf("got %d steps, want 2", len(plan.Steps))
	}
	if plan.Steps[0].Name != "normalize-subtitle" {
		t.Errorf("first step = %q, want normalize-subtitle", plan.Steps[0].Name)
	}
	if plan.Steps[1].Name != "burn-subtitles" {
		t.Errorf("second step = %q, want burn-subtitles", plan.Steps[1].Name)
	}
	if plan.OutputPath != req.OutputPath {
		t.Errorf("OutputPath = %q, want %q", plan.OutputPath, req.OutputPath)
	}

	burn := strings.Join(plan.Steps[1].Args, " ")
	if !strings.Contains(burn, "ass=/tmp/subs_norm.ass") {
		t.Errorf("burn args missing normalized ass filter: %s", burn)
	}
	if !strings.Contains(burn, "-crf 23") || !strings.Contains(burn, "-preset fast") {
		t.Errorf("burn args missing encoder options: %s", burn)
	}
	if !strings.Contains(burn, "-movflags +faststart") {
		t.Errorf("burn args missing faststart: %s", burn)
	}
}

func TestBuildBurnSubtitlesAssPassthrough(t *testing.T) {
	req := Request{
		Operation:    models.OperationBurnSubtitles,
		VideoPath:    "/tmp/in.mkv",
		SubtitlePath: "/tmp/styled.ass",
		OutputPath:   "/tmp/out.mp4",
	}

	plan, err := Build(req, testOpts)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(plan.Steps) != 1 {
		t.Fatalf("got %d steps, want 1", len(plan.Steps))
	}
	args := strings.Join(plan.Steps[0].Args, " ")
	if !strings.Contains(args, "ass=/tmp/styled.ass") {
		t.Errorf("burn args should reference the original ass file: %s", args)
	}
}

func TestBuildBurnSubtitlesMissingNormalizedPath(t *testing.T) {
	req := Request{
		Operation:    models.OperationBurnSubtitles,
		VideoPath:    "/tmp/in.mp4",
		SubtitlePath: "/tmp/subs.srt",
		OutputPath:   "/tmp/out.mp4",
	}
	if _, err := Build(req, testOpts); !errors.Is(err, models.ErrInternalFault) {
		t.Errorf("got %v, want ErrInternalFault", err)
	}
}

func TestBuildChangeResolution(t *testing.T) {
	req := Request{
		Operation:  models.OperationChangeResolution,
		VideoPath:  "/tmp/in.mp4",
		Resolution: models.Resolution720p,
		OutputPath: "/tmp/out.mp4",
	}

	plan, err := Build(req, testOpts)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(plan.Steps) != 1 {
		t.Fatalf("got %d steps, want 1", len(plan.Steps))
	}

	args := strings.Join(plan.Steps[0].Args, " ")
	wantVF := "scale=1280:720:force_original_aspect_ratio=decrease,pad=1280:720:(ow-iw)/2:(oh-ih)/2:black"
	if !strings.Contains(args, wantVF) {
		t.Errorf("args missing scale+pad filter:\n got %s\nwant %s", args, wantVF)
	}
	if !strings.Contains(args, "-c:a copy") {
		t.Errorf("resolution change should copy audio: %s", args)
	}
}

func TestBuildChangeResolutionUnknownPreset(t *testing.T) {
	req := Request{
		Operation:  models.OperationChangeResolution,
		VideoPath:  "/tmp/in.mp4",
		Resolution: models.Resolution("999p"),
		OutputPath: "/tmp/out.mp4",
	}
	_, err := Build(req, testOpts)
	if _, ok := models.AsValidation(err); !ok {
		t.Errorf("got %v, want validation error", err)
	}
}

func TestBuildUnknownOperation(t *testing.T) {
	if _, err := Build(Request{Operation: "explode"}, testOpts); !errors.Is(err, models.ErrInvalidOperation) {
		t.Errorf("got %v, want ErrInvalidOperation", err)
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	req := Request{
		Operation:  models.OperationChangeResolution,
		VideoPath:  "/tmp/in.mp4",
		Resolution: models.Resolution1080p,
		OutputPath: "/tmp/out.mp4",
	}
	first, err := Build(req, testOpts)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	second, err := Build(req, testOpts)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	a := strings.Join(first.Steps[0].Args, " ")
	b := strings.Join(second.Steps[0].Args, " ")
	if a != b {
		t.Errorf("same request produced different args:\n%s\n%s", a, b)
	}
}

func TestEscapeFilterValue(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`/tmp/plain.ass`, `/tmp/plain.ass`},
		{`C:\subs.ass`, `C\:\\subs.ass`},
		{`/tmp/it's.ass`, `/tmp/it\'s.ass`},
		{`/tmp/a,b.ass`, `/tmp/a\,b.ass`},
		{`/tmp/[draft] ep1.ass`, `/tmp/\[draft\] ep1.ass`},
	}
	for _, tt := range tests {
		if got := escapeFilterValue(tt.in); got != tt.want {
			t.Errorf("escapeFilterValue(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
