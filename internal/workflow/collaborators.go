package workflow

import (
	"context"

	"github.com/tmercer/lectern/internal/lecture"
)

// Processor submits one finalized artifact for remote processing.
type Processor interface {
	SubmitLecture(context.Context, lecture.Artifact) (lecture.Result, error)
}

// Committer publishes a completed result to downstream consumers
// (library persistence, quiz handoff, chat seeding).
type Committer interface {
	Commit(ctx context.Context, result lecture.Result, sourceFile string) error
}

// CommitFunc adapts a function to the Committer interface.
type CommitFunc func(context.Context, lecture.Result, string) error

func (f CommitFunc) Commit(ctx context.Context, result lecture.Result, sourceFile string) error {
	return f(ctx, result, sourceFile)
}

// Notifier is the workflow-facing subset of presentation behavior. The
// controller emits transition outcomes; rendering stays outside the pipeline.
type Notifier interface {
	ShowCapturing(context.Context)
	ShowProcessing(context.Context)
	ShowCompleted(context.Context)
	ShowError(context.Context, string)
}

// noopNotifier preserves workflow flow when no presenter is wired.
type noopNotifier struct{}

func (noopNotifier) ShowCapturing(context.Context)     {}
func (noopNotifier) ShowProcessing(context.Context)    {}
func (noopNotifier) ShowCompleted(context.Context)     {}
func (noopNotifier) ShowError(context.Context, string) {}
