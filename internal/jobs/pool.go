package jobs

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/transcodehub/transcodebot/internal/config"
	"github.com/transcodehub/transcodebot/internal/models"
	"github.com/transcodehub/transcodebot/pkg/logger"
	"github.com/transcodehub/transcodebot/pkg/metrics"
	"github.com/transcodehub/transcodebot/pkg/utils"
)

// ResultFunc receives the terminal result of a job exactly once.
type ResultFunc func(result models.JobResult)

type entry struct {
	job        *models.Job
	onProgress models.ProgressFunc
	onDone     ResultFunc
	enqueued   time.Time

	// cancel is published by the worker once the job's run context
	// exists; cancelRequested covers a Cancel that lands before then.
	cancel          context.CancelFunc
	cancelRequested bool
}

// Pool is a fixed-size worker pool over a bounded queue. Submission is
// non-blocking: a full queue rejects immediately instead of stalling
// the caller.
type Pool struct {
	cfg     *config.Config
	logger  logger.Logger
	metrics *metrics.Metrics
	runner  Runner
	repo    StatusRepository

	queue chan string

	mu      sync.Mutex
	entries map[string]*entry
}

func NewPool(cfg *config.Config, log logger.Logger, m *metrics.Metrics, runner Runner, repo StatusRepository) *Pool {
	if repo == nil {
		repo = NewNoopStatusRepository()
	}
	return &Pool{
		cfg:     cfg,
		logger:  log,
		metrics: m,
		runner:  runner,
		repo:    repo,
		queue:   make(chan string, cfg.Worker.QueueDepth),
		entries: make(map[string]*entry),
	}
}

// Start launches the workers. They drain the queue until ctx is
// cancelled.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.cfg.Worker.PoolSize; i++ {
		go p.worker(ctx, i)
	}
	p.logger.Infof("worker pool started: %d workers, queue depth %d", p.cfg.Worker.PoolSize, p.cfg.Worker.QueueDepth)
}

// Submit enqueues a job. It returns models.ErrOverloaded without
// blocking when the queue is full.
func (p *Pool) Submit(job *models.Job, onProgress models.ProgressFunc, onDone ResultFunc) error {
	en := &entry{
		job:        job,
		onProgress: onProgress,
		onDone:     onDone,
		enqueued:   time.Now(),
	}

	p.mu.Lock()
	p.entries[job.JobID] = en
	p.mu.Unlock()

	select {
	case p.queue <- job.JobID:
	default:
		p.mu.Lock()
		delete(p.entries, job.JobID)
		p.mu.Unlock()
		return models.ErrOverloaded
	}

	if p.metrics != nil {
		p.metrics.QueueDepth.Inc()
	}
	if err := p.repo.UpdateStatus(context.Background(), job); err != nil {
		p.logger.Warnf("job %s: status mirror failed: %v", job.JobID, err)
	}
	p.logger.Infof("job %s queued: session=%d op=%s", job.JobID, job.SessionID, job.Operation)
	return nil
}

// Cancel stops a job. A queued job is removed and finished as Cancelled
// immediately; a running job has its context cancelled and finishes
// through its worker, exactly once. Returns false when the job is
// unknown or already terminal.
func (p *Pool) Cancel(jobID string) bool {
	p.mu.Lock()
	en, ok := p.entries[jobID]
	if !ok {
		p.mu.Unlock()
		return false
	}
	if en.cancel != nil {
		cancel := en.cancel
		p.mu.Unlock()
		cancel()
		return true
	}

	// Only a compare-and-swap from Queued may short-circuit: a job that
	// already went Running must finish through its worker or the runner
	// would keep executing with nobody to stop it.
	if en.job.AdvanceFrom(models.JobStatusQueued, models.JobStatusCancelled) {
		p.mu.Unlock()
		p.finish(en, models.JobResult{
			JobID:     en.job.JobID,
			SessionID: en.job.SessionID,
			Status:    models.JobStatusCancelled,
		})
		return true
	}

	// Running, but the worker has not published its cancel func yet.
	// Leave a note it honors the moment it does.
	en.cancelRequested = true
	p.mu.Unlock()
	return true
}

func (p *Pool) worker(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			return
		case jobID := <-p.queue:
			if p.metrics != nil {
				p.metrics.QueueDepth.Dec()
			}
			p.mu.Lock()
			en, ok := p.entries[jobID]
			p.mu.Unlock()
			if !ok || en.job.Status().Terminal() {
				continue
			}
			p.waitForCPU(ctx)
			p.runJob(ctx, id, en)
		}
	}
}

// waitForCPU holds a worker back while host CPU usage is above the
// configured ceiling. Disabled when no ceiling is set.
func (p *Pool) waitForCPU(ctx context.Context) {
	max := p.cfg.Worker.MaxCPUUsage
	if max <= 0 {
		return
	}
	for {
		ok, usage := utils.CheckCPUUsage(max)
		if ok {
			return
		}
		p.logger.Infof("cpu usage %.1f%% above ceiling %.1f%%, holding back", usage, max)
		select {
		case <-ctx.Done():
			return
		case <-time.After(5 * time.Second):
		}
	}
}

func (p *Pool) runJob(ctx context.Context, workerID int, en *entry) {
	job := en.job
	if !job.Advance(models.JobStatusRunning) {
		return
	}

	runCtx, cancel := context.WithTimeout(ctx, job.Deadline)
	p.mu.Lock()
	en.cancel = cancel
	requested := en.cancelRequested
	p.mu.Unlock()
	defer cancel()
	if requested {
		cancel()
	}

	if err := p.repo.UpdateStatus(context.Background(), job); err != nil {
		p.logger.Warnf("job %s: status mirror failed: %v", job.JobID, err)
	}
	p.logger.Infof("worker %d: job %s running: session=%d op=%s", workerID, job.JobID, job.SessionID, job.Operation)

	start := time.Now()
	err := p.runner.Run(runCtx, job, p.wrapProgress(en))
	elapsed := time.Since(start)

	result := models.JobResult{
		JobID:     job.JobID,
		SessionID: job.SessionID,
		Elapsed:   elapsed,
	}
	switch {
	case err == nil:
		result.Status = models.JobStatusSucceeded
		result.OutputPath = job.Plan.OutputPath
	case errors.Is(err, context.Canceled):
		result.Status = models.JobStatusCancelled
	case errors.Is(err, context.DeadlineExceeded):
		result.Status = models.JobStatusTimedOut
		result.Detail = err.Error()
	default:
		result.Status = models.JobStatusFailed
		result.Detail = err.Error()
	}

	if !job.Advance(result.Status) {
		// Lost the race against a concurrent cancel.
		result.Status = job.Status()
		result.OutputPath = ""
	}
	p.finish(en, result)
	p.logger.Infof("worker %d: job %s finished: status=%s elapsed=%s", workerID, job.JobID, result.Status, elapsed.Round(time.Millisecond))
}

func (p *Pool) wrapProgress(en *entry) models.ProgressFunc {
	return func(percent int, speed, eta string) {
		if err := p.repo.UpdateProgress(context.Background(), en.job.JobID, percent); err != nil {
			p.logger.Debugf("job %s: progress mirror failed: %v", en.job.JobID, err)
		}
		if en.onProgress != nil {
			en.onProgress(percent, speed, eta)
		}
	}
}

func (p *Pool) finish(en *entry, result models.JobResult) {
	p.mu.Lock()
	delete(p.entries, en.job.JobID)
	p.mu.Unlock()

	if p.metrics != nil {
		p.metrics.JobsTotal.WithLabelValues(string(result.Status)).Inc()
		p.metrics.JobDuration.Observe(result.Elapsed.Seconds())
	}
	if err := p.repo.UpdateStatus(context.Background(), en.job); err != nil {
		p.logger.Warnf("job %s: status mirror failed: %v", en.job.JobID, err)
	}
	if en.onDone != nil {
		// Asynchronous on purpose: Cancel may run finish while the
		// caller still holds its own session lock, and the done handler
		// re-enters that lock.
		go en.onDone(result)
	}
}

// Snapshot lists every non-terminal job known to the pool.
func (p *Pool) Snapshot() []JobView {
	p.mu.Lock()
	defer p.mu.Unlock()
	views := make([]JobView, 0, len(p.entries))
	for _, en := range p.entries {
		views = append(views, JobView{
			JobID:     en.job.JobID,
			SessionID: en.job.SessionID,
			Operation: en.job.Operation,
			Status:    en.job.Status(),
			CreatedAt: en.job.CreatedAt,
		})
	}
	return views
}
