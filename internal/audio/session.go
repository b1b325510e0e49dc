package audio

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tmercer/lectern/internal/lecture"
)

// handle is the session-facing subset of capture behavior.
type handle interface {
	Stop() error
	PCM() []byte
	BytesCaptured() int64
}

// deviceHeld enforces exclusive ownership of the capture device: at most one
// recording session may exist at a time.
var deviceHeld atomic.Bool

func claimDevice() bool {
	return deviceHeld.CompareAndSwap(false, true)
}

func releaseDevice() {
	deviceHeld.Store(false)
}

// Session is one in-progress recording: an exclusive capture handle, ordered
// chunk accumulation, and a 1-second-resolution duration counter. It exists
// only between Begin and StopAndFinalize/Discard.
type Session struct {
	handle    handle
	startedAt time.Time

	secs atomic.Int64
	done chan struct{}

	mu      sync.Mutex
	stopped bool
}

// Begin acquires the microphone and starts a recording session.
// Fails with ErrDeviceUnavailable when a session is already active or no
// usable device exists, and ErrPermissionDenied when the platform refuses.
func Begin(ctx context.Context, input string, fallback string) (*Session, Selection, error) {
	if !claimDevice() {
		return nil, Selection{}, fmt.Errorf("%w: a recording session is already active", ErrDeviceUnavailable)
	}

	selection, err := SelectDevice(ctx, input, fallback)
	if err != nil {
		releaseDevice()
		return nil, Selection{}, err
	}

	capture, err := StartCapture(ctx, selection.Device)
	if err != nil {
		releaseDevice()
		return nil, Selection{}, err
	}

	return newSession(capture, time.Second), selection, nil
}

// newSession wraps a capture handle and starts the duration counter.
// The caller must already hold the device claim; the session releases it.
func newSession(h handle, tick time.Duration) *Session {
	s := &Session{
		handle:    h,
		startedAt: time.Now(),
		done:      make(chan struct{}),
	}

	go func() {
		ticker := time.NewTicker(tick)
		defer ticker.Stop()
		for {
			select {
			case <-s.done:
				return
			case <-ticker.C:
				s.secs.Add(1)
			}
		}
	}()

	return s
}

// Elapsed returns whole seconds since the session started.
func (s *Session) Elapsed() int {
	return int(s.secs.Load())
}

// ElapsedString returns the elapsed duration formatted for display.
func (s *Session) ElapsedString() string {
	return FormatDuration(s.Elapsed())
}

// BytesCaptured reports total PCM bytes accumulated so far.
func (s *Session) BytesCaptured() int64 {
	return s.handle.BytesCaptured()
}

// StopAndFinalize stops the duration counter, releases the device handle
// unconditionally, and concatenates the accumulated chunks into one WAV
// artifact. The handle release happens exactly once per session even when
// finalization fails.
func (s *Session) StopAndFinalize() (lecture.Artifact, error) {
	already, stopErr := s.stop()
	if already {
		return lecture.Artifact{}, fmt.Errorf("recording session already stopped")
	}
	if stopErr != nil {
		return lecture.Artifact{}, fmt.Errorf("finalize recording: %w", stopErr)
	}

	pcm := s.handle.PCM()
	if len(pcm) == 0 {
		return lecture.Artifact{}, ErrNoAudioCaptured
	}

	return lecture.Artifact{
		Data:      EncodeWAV(pcm),
		MediaType: "audio/wav",
		Filename:  lecture.RecordingFilename(s.startedAt),
	}, nil
}

// Discard stops the session and drops the accumulated audio.
func (s *Session) Discard() {
	_, _ = s.stop()
}

// stop tears the session down: counter halted and device released exactly
// once, synchronously, regardless of the handle's stop outcome.
func (s *Session) stop() (alreadyStopped bool, err error) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return true, nil
	}
	s.stopped = true
	close(s.done)
	s.mu.Unlock()

	err = s.handle.Stop()
	releaseDevice()
	return false, err
}
