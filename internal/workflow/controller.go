// Package workflow coordinates the lecture pipeline: capture lifecycle,
// submission, completion, and failure recovery.
package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tmercer/lectern/internal/fsm"
	"github.com/tmercer/lectern/internal/ipc"
	"github.com/tmercer/lectern/internal/lecture"
)

type action int

const (
	actionStop action = iota + 1
	actionCancel
)

// Result is the complete lifecycle output returned by one Run or Submit call.
type Result struct {
	State         fsm.State
	Lecture       *lecture.Result
	Cancelled     bool
	Err           error
	AudioDevice   string
	BytesCaptured int64
	Duration      string
	StartedAt     time.Time
	FinishedAt    time.Time
}

// Controller owns the pipeline status and the in-flight artifact. Status is
// mutated only here, in response to defined transition events.
type Controller struct {
	logger   *slog.Logger
	recorder Recorder
	process  Processor
	commit   Committer
	notifier Notifier

	mu       sync.RWMutex
	state    fsm.State
	artifact *lecture.Artifact
	result   *lecture.Result

	actions chan action
}

// NewController constructs a workflow controller with safe default fallbacks.
func NewController(
	logger *slog.Logger,
	recorder Recorder,
	processor Processor,
	committer Committer,
	notifier Notifier,
) *Controller {
	if recorder == nil {
		recorder = PlaceholderRecorder{}
	}
	if committer == nil {
		committer = CommitFunc(func(context.Context, lecture.Result, string) error { return nil })
	}
	if notifier == nil {
		notifier = noopNotifier{}
	}

	return &Controller{
		logger:   logger,
		recorder: recorder,
		process:  processor,
		commit:   committer,
		notifier: notifier,
		state:    fsm.StateIdle,
		actions:  make(chan action, 1),
	}
}

// State returns the current pipeline status snapshot.
func (c *Controller) State() fsm.State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// AcceptsIngestion reports whether a new source event may enter the pipeline.
// Completed and Failed return to idle implicitly on the next ingestion.
func (c *Controller) AcceptsIngestion() bool {
	switch c.State() {
	case fsm.StateIdle, fsm.StateCompleted, fsm.StateFailed:
		return true
	default:
		return false
	}
}

// Lecture returns the stored result of the last completed run, if any.
func (c *Controller) Lecture() *lecture.Result {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.result
}

// RetainedArtifact returns the artifact held for retry after a failed run.
func (c *Controller) RetainedArtifact() *lecture.Artifact {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.artifact
}

// transition applies one pipeline event to the controller state.
func (c *Controller) transition(event fsm.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := fsm.Transition(c.state, event)
	if err != nil {
		return err
	}
	c.state = next
	return nil
}

// Run executes one live-capture lifecycle: capture until stop/cancel, then
// submit the finalized artifact and wait for completion or failure.
func (c *Controller) Run(ctx context.Context) Result {
	result := Result{StartedAt: time.Now()}

	if err := c.transition(fsm.EventCapture); err != nil {
		return c.finish(result, err)
	}

	c.notifier.ShowCapturing(ctx)

	if err := c.recorder.Start(ctx); err != nil {
		// Capture never began: the pipeline returns to idle, not failed.
		c.notifier.ShowError(ctx, "Unable to start recording")
		_ = c.transition(fsm.EventAbort)
		return c.finish(result, err)
	}

	select {
	case <-ctx.Done():
		_ = c.recorder.Cancel(context.Background())
		c.notifier.ShowError(context.Background(), "Cancelled")
		_ = c.transition(fsm.EventAbort)
		return c.finish(result, ctx.Err())
	case a := <-c.actions:
		switch a {
		case actionCancel:
			_ = c.recorder.Cancel(context.Background())
			_ = c.transition(fsm.EventAbort)
			result.Cancelled = true
			return c.finish(result, nil)
		case actionStop:
			output, err := c.recorder.StopAndFinalize(ctx)
			result.AudioDevice = output.AudioDevice
			result.BytesCaptured = output.BytesCaptured
			result.Duration = output.Duration
			if err != nil {
				c.notifier.ShowError(context.Background(), "Recording failed")
				_ = c.transition(fsm.EventAbort)
				return c.finish(result, err)
			}
			return c.submit(ctx, output.Artifact, result)
		default:
			_ = c.recorder.Cancel(context.Background())
			_ = c.transition(fsm.EventAbort)
			return c.finish(result, fmt.Errorf("unknown action %d", a))
		}
	}
}

// Submit executes one upload lifecycle for an already-normalized artifact.
func (c *Controller) Submit(ctx context.Context, artifact lecture.Artifact) Result {
	result := Result{StartedAt: time.Now()}

	if !c.AcceptsIngestion() {
		return c.finish(result, fmt.Errorf("cannot submit while %s", c.State()))
	}

	// A finished prior run is superseded by the new ingestion.
	switch c.State() {
	case fsm.StateCompleted, fsm.StateFailed:
		_ = c.transition(fsm.EventReset)
	}

	return c.submit(ctx, artifact, result)
}

// Retry resubmits the artifact retained from a failed run.
func (c *Controller) Retry(ctx context.Context) Result {
	result := Result{StartedAt: time.Now()}

	c.mu.Lock()
	if c.state != fsm.StateFailed || c.artifact == nil {
		c.mu.Unlock()
		return c.finish(result, fmt.Errorf("nothing to retry from state %s", c.State()))
	}
	artifact := *c.artifact
	c.mu.Unlock()

	_ = c.transition(fsm.EventReset)
	return c.submit(ctx, artifact, result)
}

// Reset acknowledges a terminal state, releasing any retained artifact.
func (c *Controller) Reset() error {
	if err := c.transition(fsm.EventReset); err != nil {
		return err
	}
	c.mu.Lock()
	c.artifact = nil
	c.mu.Unlock()
	return nil
}

// submit drives one artifact through Processing to Completed or Failed.
// The prior result is discarded on entry: a new run fully supersedes it.
func (c *Controller) submit(ctx context.Context, artifact lecture.Artifact, result Result) Result {
	if err := c.transition(fsm.EventSubmit); err != nil {
		return c.finish(result, err)
	}

	c.mu.Lock()
	c.artifact = &artifact
	c.result = nil
	c.mu.Unlock()

	c.notifier.ShowProcessing(ctx)

	if c.process == nil {
		c.toFailed()
		c.notifier.ShowError(context.Background(), "Processing unavailable")
		return c.finish(result, fmt.Errorf("no processor configured"))
	}

	processed, err := c.process.SubmitLecture(ctx, artifact)
	if err != nil {
		// The artifact stays retained so the user can retry without
		// re-recording.
		c.toFailed()
		c.notifier.ShowError(context.Background(), "Failed to process lecture")
		return c.finish(result, err)
	}

	if err := c.commit.Commit(ctx, processed, artifact.Filename); err != nil {
		c.toFailed()
		c.notifier.ShowError(context.Background(), "Failed to store results")
		return c.finish(result, err)
	}

	c.mu.Lock()
	c.result = &processed
	c.artifact = nil
	c.mu.Unlock()

	_ = c.transition(fsm.EventComplete)
	c.notifier.ShowCompleted(ctx)

	result.Lecture = &processed
	return c.finish(result, nil)
}

// toFailed marks the current run failed, keeping the retained artifact.
func (c *Controller) toFailed() {
	_ = c.transition(fsm.EventFail)
}

// finish stamps the lifecycle result with terminal state and timing.
func (c *Controller) finish(result Result, err error) Result {
	result.State = c.State()
	result.Err = err
	result.FinishedAt = time.Now()
	c.logResult(result)
	return result
}

// Handle serves control commands for the active capture session.
func (c *Controller) Handle(_ context.Context, req ipc.Request) ipc.Response {
	switch req.Command {
	case "status":
		resp := ipc.Response{OK: true, State: string(c.State()), Message: "status"}
		if c.State() == fsm.StateCapturing {
			resp.Elapsed = c.recorder.Elapsed()
		}
		return resp
	case "stop":
		return c.requestStop()
	case "cancel":
		return c.requestCancel()
	default:
		return ipc.Response{OK: false, State: string(c.State()), Error: fmt.Sprintf("unknown command: %s", req.Command)}
	}
}

// requestStop enqueues a stop action when state permits it.
func (c *Controller) requestStop() ipc.Response {
	state := c.State()
	if state == fsm.StateProcessing {
		return ipc.Response{OK: false, State: string(state), Error: "already processing"}
	}
	if state != fsm.StateCapturing {
		return ipc.Response{OK: false, State: string(state), Error: fmt.Sprintf("cannot stop from state %s", state)}
	}

	select {
	case c.actions <- actionStop:
		return ipc.Response{OK: true, State: string(state), Message: "stop requested"}
	default:
		return ipc.Response{OK: true, State: string(state), Message: "stop already requested"}
	}
}

// requestCancel enqueues a cancel action when state permits it.
func (c *Controller) requestCancel() ipc.Response {
	state := c.State()
	if state == fsm.StateProcessing {
		return ipc.Response{OK: false, State: string(state), Error: "cannot cancel while processing"}
	}
	if state != fsm.StateCapturing {
		return ipc.Response{OK: false, State: string(state), Error: fmt.Sprintf("cannot cancel from state %s", state)}
	}

	select {
	case c.actions <- actionCancel:
		return ipc.Response{OK: true, State: string(state), Message: "cancel requested"}
	default:
		return ipc.Response{OK: true, State: string(state), Message: "cancel already requested"}
	}
}

// logResult emits one structured record per lifecycle completion.
func (c *Controller) logResult(result Result) {
	if c.logger == nil {
		return
	}
	fields := []any{
		"state", result.State,
		"cancelled", result.Cancelled,
		"duration_ms", result.FinishedAt.Sub(result.StartedAt).Milliseconds(),
		"audio_device", result.AudioDevice,
		"bytes_captured", result.BytesCaptured,
	}
	if result.Err != nil {
		c.logger.Error("pipeline run failed", append(fields, "error", result.Err.Error())...)
		return
	}
	c.logger.Info("pipeline run finished", fields...)
}
