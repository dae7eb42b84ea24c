// Package transport abstracts the chat surface the pipeline talks to.
package transport

import (
	"context"
	"time"

	"github.com/transcodehub/transcodebot/internal/models"
)

// Transport delivers pipeline output back to a user. Implementations
// must be safe for concurrent use; notification methods are best effort
// and never block job completion on chat errors.
type Transport interface {
	// PromptOperation asks the user to pick an operation for the video
	// they just uploaded.
	PromptOperation(ctx context.Context, userID int64, videoName string) error
	// PromptParameters asks for the chosen operation's missing inputs.
	PromptParameters(ctx context.Context, userID int64, op models.Operation) error
	// NotifyQueued tells the user their job was accepted.
	NotifyQueued(ctx context.Context, userID int64)
	// NotifyProgress updates the user's in-flight progress display.
	NotifyProgress(ctx context.Context, userID int64, percent int, speed, eta string)
	// DeliverResult uploads the finished file to the user's chat.
	DeliverResult(ctx context.Context, userID int64, outputPath, fileName string, elapsed time.Duration) error
	// ReportError tells the user their request failed, in user-safe
	// terms.
	ReportError(ctx context.Context, userID int64, err error)
	// NotifyReset tells the user their session went back to idle.
	NotifyReset(ctx context.Context, userID int64, reason string)
}
