package session

import (
	"github.com/transcodehub/transcodebot/internal/artifacts"
	"github.com/transcodehub/transcodebot/internal/models"
)

// Event is one user-visible occurrence dispatched into a session. Each
// concrete event carries exactly the data its transition needs.
type Event interface {
	eventName() string
}

// VideoReceived carries a downloaded video upload. The artifact is
// owned by the manager from dispatch on: it is adopted into the session
// scope on acceptance and released on rejection.
type VideoReceived struct {
	Artifact *artifacts.Artifact
	Meta     models.FileMeta
}

// OperationChosen selects what to do with the pending video.
type OperationChosen struct {
	Op models.Operation
}

// SubtitleReceived carries a downloaded subtitle upload, with the same
// artifact ownership rules as VideoReceived.
type SubtitleReceived struct {
	Artifact *artifacts.Artifact
	Meta     models.FileMeta
}

// ResolutionChosen selects the target resolution by preset token.
type ResolutionChosen struct {
	Token string
}

// Cancel aborts the session's current request from any state.
type Cancel struct{}

// JobFinished feeds a job's terminal result back into its session.
type JobFinished struct {
	Result models.JobResult
}

func (VideoReceived) eventName() string    { return "video_received" }
func (OperationChosen) eventName() string  { return "operation_chosen" }
func (SubtitleReceived) eventName() string { return "subtitle_received" }
func (ResolutionChosen) eventName() string { return "resolution_chosen" }
func (Cancel) eventName() string           { return "cancel" }
func (JobFinished) eventName() string      { return "job_finished" }
