package models

import (
	"testing"
	"time"
)

func TestJobAdvanceForwardOnly(t *testing.T) {
	job := NewJob(42, OperationBurnSubtitles, &EncodePlan{OutputPath: "/tmp/out.mp4"}, time.Minute)

	if got := job.Status(); got != JobStatusQueued {
		t.Fatalf("new job status = %s, want queued", got)
	}
	if !job.Advance(JobStatusRunning) {
		t.Fatal("queued -> running should be allowed")
	}
	if job.Advance(JobStatusQueued) {
		t.Error("running -> queued must be rejected")
	}
	if !job.Advance(JobStatusSucceeded) {
		t.Fatal("running -> succeeded should be allowed")
	}
	if job.Advance(JobStatusFailed) {
		t.Error("terminal status must not change")
	}
	if got := job.Status(); got != JobStatusSucceeded {
		t.Errorf("status = %s, want succeeded", got)
	}
}

func TestJobAdvanceQueuedStraightToTerminal(t *testing.T) {
	job := NewJob(1, OperationChangeResolution, &EncodePlan{}, time.Minute)
	if !job.Advance(JobStatusCancelled) {
		t.Fatal("queued -> cancelled should be allowed")
	}
	if job.Advance(JobStatusRunning) {
		t.Error("cancelled -> running must be rejected")
	}
}

func TestJobAdvanceFromRequiresExactStatus(t *testing.T) {
	job := NewJob(1, OperationChangeResolution, &EncodePlan{}, time.Minute)

	if !job.Advance(JobStatusRunning) {
		t.Fatal("queued -> running should be allowed")
	}
	if job.AdvanceFrom(JobStatusQueued, JobStatusCancelled) {
		t.Error("AdvanceFrom(queued, ...) must fail once the job is running")
	}
	if got := job.Status(); got != JobStatusRunning {
		t.Fatalf("status = %s, want running", got)
	}
	if !job.AdvanceFrom(JobStatusRunning, JobStatusCancelled) {
		t.Fatal("AdvanceFrom(running, cancelled) should be allowed")
	}
	if job.AdvanceFrom(JobStatusCancelled, JobStatusFailed) {
		t.Error("terminal status must not change")
	}
}

func TestJobStatusTerminal(t *testing.T) {
	tests := []struct {
		status JobStatus
		want   bool
	}{
		{JobStatusQueued, false},
		{JobStatusRunning, false},
		{JobStatusSucceeded, true},
		{JobStatusFailed, true},
		{JobStatusTimedOut, true},
		{JobStatusCancelled, true},
	}
	for _, tt := range tests {
		if got := tt.status.Terminal(); got != tt.want {
			t.Errorf("%s.Terminal() = %v, want %v", tt.status, got, tt.want)
		}
	}
}
