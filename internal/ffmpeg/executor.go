// Package ffmpeg drives the external transcoder process. The rest of
// the system treats it as opaque: argument lists in, an exit status and
// an output file out.
package ffmpeg

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/transcodehub/transcodebot/internal/config"
	"github.com/transcodehub/transcodebot/internal/models"
	"github.com/transcodehub/transcodebot/pkg/logger"
)

const (
	stderrTailBytes  = 800
	progressInterval = 3 * time.Second
)

type Executor struct {
	bin      string
	probeBin string
	logger   logger.Logger
}

func NewExecutor(cfg *config.Config, log logger.Logger) *Executor {
	bin := cfg.FFmpeg.Bin
	if resolved, err := exec.LookPath(bin); err == nil {
		bin = resolved
	}
	probeBin := cfg.FFmpeg.ProbeBin
	if resolved, err := exec.LookPath(probeBin); err == nil {
		probeBin = resolved
	}
	return &Executor{bin: bin, probeBin: probeBin, logger: log}
}

// Run executes every step of the job's plan in order and verifies the
// final output is a readable, non-empty file. Progress is reported for
// the last step only, which is always the actual encode.
func (e *Executor) Run(ctx context.Context, job *models.Job, progress models.ProgressFunc) error {
	duration, err := e.ProbeDuration(ctx, job.InputPath)
	if err != nil {
		e.logger.Warnf("job %s: duration probe failed: %v", job.JobID, err)
		duration = 0
	}

	for i, step := range job.Plan.Steps {
		var pf models.ProgressFunc
		if i == len(job.Plan.Steps)-1 {
			pf = progress
		}
		if err := e.runStep(ctx, step, duration, pf); err != nil {
			return err
		}
	}

	info, err := os.Stat(job.Plan.OutputPath)
	if err != nil || info.Size() == 0 {
		// External tools can exit 0 without producing usable output.
		return ErrEmptyOutput
	}
	if w, h, err := e.ProbeDimensions(ctx, job.Plan.OutputPath); err != nil {
		e.logger.Warnf("job %s: output probe failed: %v", job.JobID, err)
	} else {
		e.logger.Infof("job %s: output %dx%d, %d bytes", job.JobID, w, h, info.Size())
	}
	return nil
}

func (e *Executor) runStep(ctx context.Context, step models.EncodeStep, duration float64, progress models.ProgressFunc) error {
	args := append([]string{"-hide_banner", "-progress", "pipe:1", "-nostats"}, step.Args...)
	cmd := exec.CommandContext(ctx, e.bin, args...)

	var stderrBuf bytes.Buffer
	cmd.Stderr = &stderrBuf

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to open stdout pipe: %w", err)
	}

	e.logger.Debugf("ffmpeg step %s: %s %v", step.Name, e.bin, args)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start transcoder: %w", err)
	}

	e.readProgress(stdout, duration, progress)

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &ExecError{
			Step:    step.Name,
			ExitErr: err,
			Stderr:  tail(stderrBuf.Bytes(), stderrTailBytes),
		}
	}
	return nil
}

// readProgress consumes the -progress pipe:1 key=value stream and
// reports percent/speed/ETA through the callback, throttled.
func (e *Executor) readProgress(r io.Reader, duration float64, progress models.ProgressFunc) {
	scanner := bufio.NewScanner(r)
	state := newProgressState(duration)
	for scanner.Scan() {
		if upd, ok := state.feed(scanner.Text(), time.Now()); ok && progress != nil {
			progress(upd.Percent, upd.Speed, upd.ETA)
		}
	}
	if progress != nil && state.sawEnd {
		progress(100, state.speed, "0s")
	}
}

func tail(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[len(b)-n:])
}
