// Package pipeline wires live microphone capture into the workflow recorder
// contract.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/tmercer/lectern/internal/audio"
	"github.com/tmercer/lectern/internal/config"
	"github.com/tmercer/lectern/internal/workflow"
)

// Recorder owns one end-to-end capture -> finalize pipeline instance.
type Recorder struct {
	cfg    config.AudioConfig
	logger *slog.Logger

	mu        sync.Mutex
	session   *audio.Session
	selection audio.Selection
}

// NewRecorder constructs a live-capture recorder from audio config.
func NewRecorder(cfg config.AudioConfig, logger *slog.Logger) *Recorder {
	return &Recorder{cfg: cfg, logger: logger}
}

// Start resolves device selection and begins an exclusive recording session.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.session != nil {
		return fmt.Errorf("recorder already started")
	}

	session, selection, err := audio.Begin(ctx, r.cfg.Input, r.cfg.Fallback)
	if err != nil {
		return err
	}
	if selection.Warning != "" {
		r.logWarn(selection.Warning)
	}

	r.session = session
	r.selection = selection
	return nil
}

// StopAndFinalize ends the session and returns the finalized WAV artifact.
// The session is consumed either way; the device handle is always released.
func (r *Recorder) StopAndFinalize(_ context.Context) (workflow.CaptureOutput, error) {
	r.mu.Lock()
	session := r.session
	selection := r.selection
	r.session = nil
	r.mu.Unlock()

	if session == nil {
		return workflow.CaptureOutput{}, workflow.ErrRecorderUnavailable
	}

	output := workflow.CaptureOutput{
		AudioDevice:   describeDevice(selection.Device),
		BytesCaptured: session.BytesCaptured(),
		Duration:      session.ElapsedString(),
	}

	artifact, err := session.StopAndFinalize()
	if err != nil {
		return output, err
	}
	output.Artifact = artifact
	return output, nil
}

// Cancel discards the in-progress session without producing an artifact.
func (r *Recorder) Cancel(_ context.Context) error {
	r.mu.Lock()
	session := r.session
	r.session = nil
	r.mu.Unlock()

	if session != nil {
		session.Discard()
	}
	return nil
}

// Elapsed reports the running session duration for status queries.
func (r *Recorder) Elapsed() string {
	r.mu.Lock()
	session := r.session
	r.mu.Unlock()

	if session == nil {
		return ""
	}
	return session.ElapsedString()
}

// describeDevice formats device metadata for logs and status output.
func describeDevice(device audio.Device) string {
	description := strings.TrimSpace(device.Description)
	id := strings.TrimSpace(device.ID)
	if description == "" {
		return id
	}
	if id == "" {
		return description
	}
	return fmt.Sprintf("%s (%s)", description, id)
}

// logWarn emits warning-level logs when logger is configured.
func (r *Recorder) logWarn(message string) {
	if r.logger == nil {
		return
	}
	r.logger.Warn(message)
}
