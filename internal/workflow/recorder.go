package workflow

import (
	"context"
	"errors"

	"github.com/tmercer/lectern/internal/lecture"
)

var (
	// ErrRecorderUnavailable indicates runtime capture wiring is missing.
	ErrRecorderUnavailable = errors.New("audio capture pipeline not available")
)

// CaptureOutput is the recorder result consumed by the workflow controller.
type CaptureOutput struct {
	Artifact      lecture.Artifact
	AudioDevice   string
	BytesCaptured int64
	Duration      string
}

// Recorder abstracts live microphone capture for workflow orchestration.
type Recorder interface {
	Start(context.Context) error
	StopAndFinalize(context.Context) (CaptureOutput, error)
	Cancel(context.Context) error
	Elapsed() string
}

// PlaceholderRecorder is a no-op placeholder used in tests/fallback wiring.
type PlaceholderRecorder struct{}

func (PlaceholderRecorder) Start(context.Context) error {
	return nil
}

func (PlaceholderRecorder) StopAndFinalize(context.Context) (CaptureOutput, error) {
	return CaptureOutput{}, ErrRecorderUnavailable
}

func (PlaceholderRecorder) Cancel(context.Context) error {
	return nil
}

func (PlaceholderRecorder) Elapsed() string {
	return ""
}
