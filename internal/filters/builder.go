// Package filters translates an operation plus its parameters into the
// ordered ffmpeg argument lists for a job. Everything here is pure:
// no I/O, no clock, fully deterministic for a given request.
package filters

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/transcodehub/transcodebot/internal/models"
	"github.com/transcodehub/transcodebot/pkg/utils"
)

// Options carry the encoder knobs shared by every operation.
type Options struct {
	VideoCodec string
	AudioCodec string
	Preset     string
	CRF        int
}

// Request is the fully resolved input for one plan. NormalizedPath must
// be set when NeedsNormalization reports true for the subtitle path.
type Request struct {
	Operation      models.Operation
	VideoPath      string
	SubtitlePath   string
	NormalizedPath string
	Resolution     models.Resolution
	OutputPath     string
}

// NeedsNormalization reports whether a subtitle file must be converted
// to an intermediate .ass representation before burning. ASS/SSA inputs
// already carry their own styling and pass through unchanged.
func NeedsNormalization(subtitlePath string) bool {
	switch utils.Ext(subtitlePath) {
	case ".ass", ".ssa":
		return false
	default:
		return true
	}
}

// Build resolves a request into an encode plan. The returned step args
// never include the binary name or progress flags; the executor owns
// those.
func Build(req Request, opts Options) (*models.EncodePlan, error) {
	switch req.Operation {
	case models.OperationBurnSubtitles:
		return buildBurnSubtitles(req, opts)
	case models.OperationChangeResolution:
		return buildChangeResolution(req, opts)
	default:
		return nil, models.ErrInvalidOperation
	}
}

func buildBurnSubtitles(req Request, opts Options) (*models.EncodePlan, error) {
	if req.VideoPath == "" || req.SubtitlePath == "" || req.OutputPath == "" {
		return nil, fmt.Errorf("%w: incomplete burn request", models.ErrInternalFault)
	}

	var steps []models.EncodeStep
	burnSource := req.SubtitlePath

	if NeedsNormalization(req.SubtitlePath) {
		if req.NormalizedPath == "" {
			return nil, fmt.Errorf("%w: missing normalized subtitle path", models.ErrInternalFault)
		}
		// One rendering code path for every subtitle format: convert
		// to ASS with the default style first, burn the ASS after.
		steps = append(steps, models.EncodeStep{
			Name: "normalize-subtitle",
			Args: []string{"-y", "-i", req.SubtitlePath, "-f", "ass", req.NormalizedPath},
		})
		burnSource = req.NormalizedPath
	}

	steps = append(steps, models.EncodeStep{
		Name: "burn-subtitles",
		Args: []string{
			"-y",
			"-i", req.VideoPath,
			"-vf", "ass=" + escapeFilterValue(burnSource),
			"-c:v", opts.VideoCodec,
			"-preset", opts.Preset,
			"-crf", strconv.Itoa(opts.CRF),
			"-c:a", opts.AudioCodec,
			"-b:a", "192k",
			"-movflags", "+faststart",
			req.OutputPath,
		},
	})

	return &models.EncodePlan{Steps: steps, OutputPath: req.OutputPath}, nil
}

func buildChangeResolution(req Request, opts Options) (*models.EncodePlan, error) {
	if req.VideoPath == "" || req.OutputPath == "" {
		return nil, fmt.Errorf("%w: incomplete resolution request", models.ErrInternalFault)
	}
	dims, ok := req.Resolution.Dimensions()
	if !ok {
		return nil, models.NewInvalidParameter(fmt.Sprintf("unknown resolution %q", req.Resolution))
	}

	// Scale to fit inside the target, then pad to the exact frame with
	// centered black bars. Output dimensions are always exactly (w,h).
	vf := fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2:black",
		dims.Width, dims.Height, dims.Width, dims.Height,
	)

	step := models.EncodeStep{
		Name: "change-resolution",
		Args: []string{
			"-y",
			"-i", req.VideoPath,
			"-vf", vf,
			"-c:v", opts.VideoCodec,
			"-preset", opts.Preset,
			"-crf", strconv.Itoa(opts.CRF),
			"-c:a", "copy",
			"-movflags", "+faststart",
			req.OutputPath,
		},
	}

	return &models.EncodePlan{Steps: []models.EncodeStep{step}, OutputPath: req.OutputPath}, nil
}

// escapeFilterValue escapes a path for use inside an ffmpeg filter
// argument. Backslash, quote and colon are special at the option level;
// comma and square brackets are special at the filtergraph level.
func escapeFilterValue(path string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		`'`, `\'`,
		`:`, `\:`,
		`,`, `\,`,
		`[`, `\[`,
		`]`, `\]`,
	)
	return r.Replace(path)
}
