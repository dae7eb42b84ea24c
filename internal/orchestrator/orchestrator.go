// Package orchestrator glues a completed session request to the worker
// pool: it plans the encode, reserves output artifacts, submits the job
// and routes the terminal result back to the chat and the session.
package orchestrator

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/transcodehub/transcodebot/internal/artifacts"
	"github.com/transcodehub/transcodebot/internal/config"
	"github.com/transcodehub/transcodebot/internal/filters"
	"github.com/transcodehub/transcodebot/internal/jobs"
	"github.com/transcodehub/transcodebot/internal/models"
	"github.com/transcodehub/transcodebot/internal/session"
	"github.com/transcodehub/transcodebot/internal/settings"
	"github.com/transcodehub/transcodebot/internal/transport"
	"github.com/transcodehub/transcodebot/pkg/logger"
	"github.com/transcodehub/transcodebot/pkg/utils"
)

// Submitter is the slice of the worker pool the orchestrator needs.
type Submitter interface {
	Submit(job *models.Job, onProgress models.ProgressFunc, onDone jobs.ResultFunc) error
}

type Orchestrator struct {
	cfg       *config.Config
	logger    logger.Logger
	pool      Submitter
	transport transport.Transport
	settings  settings.UseCase

	notifier session.Manager
}

func New(
	cfg *config.Config,
	log logger.Logger,
	pool Submitter,
	tr transport.Transport,
	settingsUC settings.UseCase,
) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		logger:    log,
		pool:      pool,
		transport: tr,
		settings:  settingsUC,
	}
}

// Bind wires the session manager in after construction. The manager
// needs the orchestrator as its job starter, so one of the two has to
// be attached late.
func (o *Orchestrator) Bind(notifier session.Manager) {
	o.notifier = notifier
}

// StartJob plans and submits the job for a fully collected session. On
// acceptance the scope, including the freshly reserved output paths,
// belongs to the job and is released when the job closes out.
func (o *Orchestrator) StartJob(ctx context.Context, sess *models.Session, scope *artifacts.Scope) (string, error) {
	if sess.Video == nil {
		return "", errors.Wrap(models.ErrInternalFault, "job start without a pending video")
	}
	userID := sess.UserID

	prefs, err := o.settings.Get(ctx, userID)
	if err != nil {
		o.logger.Warnf("session %d: settings lookup failed, using defaults: %v", userID, err)
		prefs = models.DefaultSettings(userID)
	}

	// Reserve through the scope so a job that finishes before Submit
	// even returns still finds its outputs under ReleaseAll.
	output := scope.Acquire(artifacts.KindOutput, ".mp4")

	req := filters.Request{
		Operation:  sess.Operation,
		VideoPath:  sess.Video.Path,
		Resolution: sess.Resolution,
		OutputPath: output.Path,
	}

	var intermediate *artifacts.Artifact
	if sess.Operation == models.OperationBurnSubtitles {
		req.SubtitlePath = sess.SubtitlePath
		if filters.NeedsNormalization(sess.SubtitlePath) {
			intermediate = scope.Acquire(artifacts.KindIntermediate, ".ass")
			req.NormalizedPath = intermediate.Path
		}
	}

	plan, err := filters.Build(req, o.encodeOptions(prefs))
	if err != nil {
		dropAll(scope, output, intermediate)
		return "", err
	}

	job := models.NewJob(userID, sess.Operation, plan, o.cfg.Worker.JobDeadline)
	job.InputPath = sess.Video.Path
	job.SubtitlePath = sess.SubtitlePath
	job.Resolution = sess.Resolution

	outputName := o.outputName(sess)
	onProgress := func(percent int, speed, eta string) {
		o.transport.NotifyProgress(context.Background(), userID, percent, speed, eta)
	}
	onDone := func(result models.JobResult) {
		o.closeOut(userID, outputName, scope, result)
	}

	if err := o.pool.Submit(job, onProgress, onDone); err != nil {
		// The collected inputs stay in the scope for a retry; only the
		// reservations made here go.
		dropAll(scope, output, intermediate)
		return "", err
	}
	return job.JobID, nil
}

func (o *Orchestrator) encodeOptions(prefs *models.UserSettings) filters.Options {
	opts := filters.Options{
		VideoCodec: o.cfg.FFmpeg.VideoCodec,
		AudioCodec: o.cfg.FFmpeg.AudioCodec,
		Preset:     o.cfg.FFmpeg.Preset,
		CRF:        o.cfg.FFmpeg.CRF,
	}
	if prefs.Preset != "" {
		opts.Preset = prefs.Preset
	}
	if prefs.CRF > 0 {
		opts.CRF = prefs.CRF
	}
	return opts
}

func (o *Orchestrator) outputName(sess *models.Session) string {
	switch sess.Operation {
	case models.OperationBurnSubtitles:
		return utils.OutputFileName(sess.Video.Meta.Name, "subtitled")
	case models.OperationChangeResolution:
		if dims, ok := sess.Resolution.Dimensions(); ok {
			return utils.OutputFileName(sess.Video.Meta.Name, fmt.Sprintf("%dx%d", dims.Width, dims.Height))
		}
	}
	return utils.OutputFileName(sess.Video.Meta.Name, "processed")
}

// closeOut is the single exit path for every job. The ordering is
// deliberate: on success the output is delivered before any file is
// deleted; on every other status the files go first.
func (o *Orchestrator) closeOut(userID int64, outputName string, scope *artifacts.Scope, result models.JobResult) {
	ctx := context.Background()

	switch result.Status {
	case models.JobStatusSucceeded:
		if err := o.transport.DeliverResult(ctx, userID, result.OutputPath, outputName, result.Elapsed); err != nil {
			o.logger.Errorf("job %s: delivery failed: %v", result.JobID, err)
			scope.ReleaseAll()
			o.transport.ReportError(ctx, userID, models.ErrTranscodeFailed)
		} else {
			scope.ReleaseAll()
		}
	case models.JobStatusCancelled:
		scope.ReleaseAll()
	case models.JobStatusTimedOut:
		scope.ReleaseAll()
		o.logger.Warnf("job %s: timed out: %s", result.JobID, result.Detail)
		o.transport.ReportError(ctx, userID, models.ErrTimedOut)
	default:
		scope.ReleaseAll()
		o.logger.Errorf("job %s: failed: %s", result.JobID, result.Detail)
		o.transport.ReportError(ctx, userID, models.ErrTranscodeFailed)
	}

	if o.notifier == nil {
		o.logger.Errorf("job %s: no session notifier bound", result.JobID)
		return
	}
	if err := o.notifier.Dispatch(ctx, userID, session.JobFinished{Result: result}); err != nil {
		o.logger.Errorf("job %s: session close failed: %v", result.JobID, err)
	}
}

func dropAll(scope *artifacts.Scope, as ...*artifacts.Artifact) {
	for _, a := range as {
		_ = scope.Drop(a)
	}
}
