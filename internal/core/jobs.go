package core

import "context"

// ReviewRequest is a unit of work for the background review pipeline: one
// target plus the force flag carried over from the triggering command.
// InstallationID is set for webhook-originated requests so the worker can
// authenticate as the GitHub App installation instead of a PAT.
type ReviewRequest struct {
	Ref            TargetRef
	Force          bool
	InstallationID int64
}

// Job is a runnable background task.
type Job interface {
	Run(ctx context.Context, req *ReviewRequest) error
}

// JobDispatcher queues review requests for asynchronous processing.
type JobDispatcher interface {
	Dispatch(ctx context.Context, req *ReviewRequest) error
	Stop()
}
