package usecase

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/transcodehub/transcodebot/internal/artifacts"
	"github.com/transcodehub/transcodebot/internal/config"
	"github.com/transcodehub/transcodebot/internal/models"
	"github.com/transcodehub/transcodebot/internal/session"
	"github.com/transcodehub/transcodebot/internal/transport"
	"github.com/transcodehub/transcodebot/internal/validate"
	"github.com/transcodehub/transcodebot/pkg/logger"
	"github.com/transcodehub/transcodebot/pkg/metrics"
)

// entry pairs one session with its artifact scope. All mutation happens
// under the entry mutex, which serializes events per user.
type entry struct {
	mu    sync.Mutex
	sess  *models.Session
	scope *artifacts.Scope
}

type sessionManager struct {
	cfg       *config.Config
	logger    logger.Logger
	metrics   *metrics.Metrics
	validator *validate.Validator
	store     *artifacts.Store
	transport transport.Transport
	starter   session.JobStarter
	canceller session.JobCanceller

	mu       sync.Mutex
	sessions map[int64]*entry
}

func NewSessionManager(
	cfg *config.Config,
	log logger.Logger,
	m *metrics.Metrics,
	validator *validate.Validator,
	store *artifacts.Store,
	tr transport.Transport,
	starter session.JobStarter,
	canceller session.JobCanceller,
) session.Manager {
	return &sessionManager{
		cfg:       cfg,
		logger:    log,
		metrics:   m,
		validator: validator,
		store:     store,
		transport: tr,
		starter:   starter,
		canceller: canceller,
		sessions:  make(map[int64]*entry),
	}
}

func (m *sessionManager) entryFor(userID int64) *entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	en, ok := m.sessions[userID]
	if !ok {
		en = &entry{
			sess:  models.NewSession(userID),
			scope: m.store.NewScope(scopeOwner(userID)),
		}
		m.sessions[userID] = en
		if m.metrics != nil {
			m.metrics.SessionsActive.Inc()
		}
	}
	return en
}

func scopeOwner(userID int64) string {
	return "u" + strconv.FormatInt(userID, 10)
}

// Dispatch applies one event under the user's session lock. A held lock
// is the ordering guarantee: two events for the same user can never
// interleave their transitions.
func (m *sessionManager) Dispatch(ctx context.Context, userID int64, ev session.Event) error {
	en := m.entryFor(userID)
	en.mu.Lock()
	defer en.mu.Unlock()

	en.sess.LastActivity = time.Now()

	switch e := ev.(type) {
	case session.VideoReceived:
		return m.onVideo(ctx, en, e)
	case session.OperationChosen:
		return m.onOperation(ctx, en, e)
	case session.SubtitleReceived:
		return m.onSubtitle(ctx, en, e)
	case session.ResolutionChosen:
		return m.onResolution(ctx, en, e)
	case session.Cancel:
		return m.onCancel(ctx, en)
	case session.JobFinished:
		return m.onJobFinished(en, e)
	default:
		return errors.Wrap(models.ErrInternalFault, "unknown session event")
	}
}

func (m *sessionManager) onVideo(ctx context.Context, en *entry, ev session.VideoReceived) error {
	sess := en.sess
	if sess.State == models.StateProcessing {
		releaseIncoming(ev.Artifact)
		return models.ErrBusy
	}

	if err := m.validator.ValidateVideo(ctx, ev.Meta); err != nil {
		// Invalid input never moves the state machine.
		releaseIncoming(ev.Artifact)
		return err
	}

	// A new upload replaces any half-collected request.
	if sess.State == models.StateAwaitingOperation || sess.State == models.StateAwaitingParameters {
		en.scope.ReleaseAll()
	}
	sess.ClearRequest()
	en.scope.Adopt(ev.Artifact)
	sess.Video = &models.PendingVideo{Path: ev.Artifact.Path, Meta: ev.Meta}
	sess.State = models.StateAwaitingOperation

	m.logger.Infof("session %d: video accepted %q (%d bytes)", sess.UserID, ev.Meta.Name, ev.Meta.Size)
	return m.transport.PromptOperation(ctx, sess.UserID, ev.Meta.Name)
}

func (m *sessionManager) onOperation(ctx context.Context, en *entry, ev session.OperationChosen) error {
	sess := en.sess
	if sess.State == models.StateProcessing {
		return models.ErrBusy
	}
	if sess.State != models.StateAwaitingOperation {
		return models.NewInvalidParameter("upload a video before choosing an operation")
	}

	switch ev.Op {
	case models.OperationBurnSubtitles, models.OperationChangeResolution:
	default:
		return models.ErrInvalidOperation
	}

	sess.Operation = ev.Op
	sess.State = models.StateAwaitingParameters
	m.logger.Infof("session %d: operation %s", sess.UserID, ev.Op)
	return m.transport.PromptParameters(ctx, sess.UserID, ev.Op)
}

func (m *sessionManager) onSubtitle(ctx context.Context, en *entry, ev session.SubtitleReceived) error {
	sess := en.sess
	if sess.State == models.StateProcessing {
		releaseIncoming(ev.Artifact)
		return models.ErrBusy
	}
	if sess.State != models.StateAwaitingParameters || sess.Operation != models.OperationBurnSubtitles {
		releaseIncoming(ev.Artifact)
		return models.NewInvalidParameter("a subtitle file is not expected right now")
	}

	if err := m.validator.ValidateSubtitle(ctx, ev.Meta); err != nil {
		releaseIncoming(ev.Artifact)
		return err
	}

	en.scope.Adopt(ev.Artifact)
	sess.SubtitlePath = ev.Artifact.Path
	sess.SubtitleMeta = ev.Meta

	m.logger.Infof("session %d: subtitle accepted %q", sess.UserID, ev.Meta.Name)
	return m.startProcessing(ctx, en)
}

func (m *sessionManager) onResolution(ctx context.Context, en *entry, ev session.ResolutionChosen) error {
	sess := en.sess
	if sess.State == models.StateProcessing {
		return models.ErrBusy
	}
	if sess.State != models.StateAwaitingParameters || sess.Operation != models.OperationChangeResolution {
		return models.NewInvalidParameter("a resolution choice is not expected right now")
	}

	res, err := models.ParseResolution(ev.Token)
	if err != nil {
		return err
	}
	sess.Resolution = res

	m.logger.Infof("session %d: resolution %s", sess.UserID, res)
	return m.startProcessing(ctx, en)
}

// startProcessing moves the session to Processing and hands the request
// plus its artifact scope to the job starter. On acceptance the scope
// belongs to the job's lifecycle; the session gets a fresh one.
func (m *sessionManager) startProcessing(ctx context.Context, en *entry) error {
	sess := en.sess
	sess.State = models.StateProcessing

	jobID, err := m.starter.StartJob(ctx, sess, en.scope)
	if err != nil {
		if errors.Is(err, models.ErrOverloaded) {
			// Inputs stay collected so the user can retry shortly.
			sess.State = models.StateAwaitingParameters
			return err
		}
		m.logger.Errorf("session %d: job start failed: %v", sess.UserID, err)
		en.scope.ReleaseAll()
		en.scope = m.store.NewScope(scopeOwner(sess.UserID))
		sess.ClearRequest()
		sess.State = models.StateIdle
		return err
	}

	sess.ActiveJobID = jobID
	en.scope = m.store.NewScope(scopeOwner(sess.UserID))
	m.transport.NotifyQueued(ctx, sess.UserID)
	m.logger.Infof("session %d: job %s started", sess.UserID, jobID)
	return nil
}

func (m *sessionManager) onCancel(ctx context.Context, en *entry) error {
	sess := en.sess

	if sess.State == models.StateProcessing && sess.ActiveJobID != "" {
		if !m.canceller.Cancel(sess.ActiveJobID) {
			m.logger.Warnf("session %d: cancel raced job %s completion", sess.UserID, sess.ActiveJobID)
		}
	}

	en.scope.ReleaseAll()
	en.scope = m.store.NewScope(scopeOwner(sess.UserID))
	sess.ClearRequest()
	sess.State = models.StateIdle
	m.transport.NotifyReset(ctx, sess.UserID, "cancelled")
	return nil
}

// onJobFinished closes the Processing state. Results for a job the
// session no longer tracks are dropped; the job's own cleanup already
// ran.
func (m *sessionManager) onJobFinished(en *entry, ev session.JobFinished) error {
	sess := en.sess
	if sess.State != models.StateProcessing || sess.ActiveJobID != ev.Result.JobID {
		m.logger.Debugf("session %d: dropping stale result for job %s", sess.UserID, ev.Result.JobID)
		return nil
	}

	sess.ClearRequest()
	sess.State = models.StateDone
	m.logger.Infof("session %d: job %s closed with status %s", sess.UserID, ev.Result.JobID, ev.Result.Status)
	return nil
}

// Run sweeps sessions whose owners walked away mid-request. Processing
// sessions are never swept; the job deadline bounds those.
func (m *sessionManager) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.cfg.Session.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			m.sweep(ctx)
		}
	}
}

func (m *sessionManager) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-m.cfg.Session.Timeout)

	m.mu.Lock()
	stale := make([]*entry, 0)
	for userID, en := range m.sessions {
		en.mu.Lock()
		expired := en.sess.State != models.StateProcessing && en.sess.LastActivity.Before(cutoff)
		en.mu.Unlock()
		if expired {
			delete(m.sessions, userID)
			stale = append(stale, en)
		}
	}
	m.mu.Unlock()

	for _, en := range stale {
		en.mu.Lock()
		hadRequest := en.sess.Video != nil
		en.scope.ReleaseAll()
		en.sess.ClearRequest()
		en.sess.State = models.StateIdle
		userID := en.sess.UserID
		en.mu.Unlock()

		if m.metrics != nil {
			m.metrics.SessionsActive.Dec()
		}
		if hadRequest {
			m.transport.NotifyReset(ctx, userID, "inactive for too long")
		}
		m.logger.Infof("session %d: swept after inactivity", userID)
	}
}

func releaseIncoming(a *artifacts.Artifact) {
	if a != nil {
		_ = a.Release()
	}
}
