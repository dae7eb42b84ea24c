// Package session tracks each user's progress from upload to finished
// job through a per-user state machine.
package session

import (
	"context"

	"github.com/transcodehub/transcodebot/internal/artifacts"
	"github.com/transcodehub/transcodebot/internal/models"
)

// Manager serializes events per user and drives the state machine.
type Manager interface {
	// Dispatch applies one event to the user's session. Events for the
	// same user are applied strictly in order.
	Dispatch(ctx context.Context, userID int64, ev Event) error
	// Run blocks sweeping inactive sessions until ctx is cancelled.
	Run(ctx context.Context) error
}

// JobStarter builds and submits the job for a fully collected session.
// It returns the job ID on acceptance.
type JobStarter interface {
	StartJob(ctx context.Context, sess *models.Session, scope *artifacts.Scope) (string, error)
}

// JobCanceller aborts an in-flight job by ID.
type JobCanceller interface {
	Cancel(jobID string) bool
}
