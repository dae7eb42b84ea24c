package models

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type Operation string

const (
	OperationBurnSubtitles    Operation = "burn_subtitles"
	OperationChangeResolution Operation = "change_resolution"
)

type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
	JobStatusTimedOut  JobStatus = "timed_out"
	JobStatusCancelled JobStatus = "cancelled"
)

var jobStatusRank = map[JobStatus]int{
	JobStatusQueued:    0,
	JobStatusRunning:   1,
	JobStatusSucceeded: 2,
	JobStatusFailed:    2,
	JobStatusTimedOut:  2,
	JobStatusCancelled: 2,
}

// Terminal reports whether no further status transition is allowed.
func (s JobStatus) Terminal() bool {
	return jobStatusRank[s] == 2
}

// ProgressFunc receives encode progress: percent complete, the encoder
// speed multiplier and a human readable ETA.
type ProgressFunc func(percent int, speed, eta string)

// EncodeStep is one external transcoder invocation. Args do not include
// the binary name or progress flags; the executor prepends those.
type EncodeStep struct {
	Name string
	Args []string
}

// EncodePlan is the resolved, ordered set of transcoder invocations for
// one job, ending with a file at OutputPath.
type EncodePlan struct {
	Steps      []EncodeStep
	OutputPath string
}

// Job is one concrete transcode request. All fields except the status
// are immutable after construction; the status only moves forward.
type Job struct {
	JobID        string
	SessionID    int64
	Operation    Operation
	InputPath    string
	SubtitlePath string
	Resolution   Resolution
	Plan         *EncodePlan
	Deadline     time.Duration
	CreatedAt    time.Time

	mu     sync.Mutex
	status JobStatus
}

func NewJob(sessionID int64, op Operation, plan *EncodePlan, deadline time.Duration) *Job {
	return &Job{
		JobID:     uuid.New().String(),
		SessionID: sessionID,
		Operation: op,
		Plan:      plan,
		Deadline:  deadline,
		CreatedAt: time.Now(),
		status:    JobStatusQueued,
	}
}

func (j *Job) Status() JobStatus {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status
}

// Advance moves the job status forward. Backward transitions and
// transitions out of a terminal status are ignored and return false.
func (j *Job) Advance(next JobStatus) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.advanceLocked(next)
}

// AdvanceFrom moves the status to next only when it currently equals
// from. Concurrent movers can rely on exactly one of them winning.
func (j *Job) AdvanceFrom(from, next JobStatus) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.status != from {
		return false
	}
	return j.advanceLocked(next)
}

func (j *Job) advanceLocked(next JobStatus) bool {
	if j.status.Terminal() || jobStatusRank[next] <= jobStatusRank[j.status] {
		return false
	}
	j.status = next
	return true
}

// JobResult is the terminal outcome of a job as delivered to its owner.
// Detail carries operator-side diagnostics and is never shown verbatim
// to end users.
type JobResult struct {
	JobID      string
	SessionID  int64
	Status     JobStatus
	OutputPath string
	Detail     string
	Elapsed    time.Duration
}
