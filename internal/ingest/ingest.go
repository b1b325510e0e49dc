// Package ingest normalizes audio source events (dropped file, browsed file,
// finalized recording) into one canonical artifact for submission.
package ingest

import (
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/tmercer/lectern/internal/lecture"
)

var (
	// ErrPipelineBusy indicates ingestion was attempted while a run is active.
	ErrPipelineBusy = errors.New("pipeline busy: a lecture is already being captured or processed")
	// ErrUnsupportedMedia indicates a source whose declared type is not audio.
	ErrUnsupportedMedia = errors.New("unsupported media type: expected an audio file")
)

// Gate reports whether the workflow can accept a new ingestion.
type Gate interface {
	AcceptsIngestion() bool
}

// GateFunc adapts a function to the Gate interface.
type GateFunc func() bool

func (f GateFunc) AcceptsIngestion() bool { return f() }

// Selector normalizes the three input paths into one AudioArtifact each.
// Exactly one artifact is produced per accepted source event.
type Selector struct {
	gate Gate
}

// NewSelector constructs a selector guarded by the workflow gate.
func NewSelector(gate Gate) *Selector {
	if gate == nil {
		gate = GateFunc(func() bool { return true })
	}
	return &Selector{gate: gate}
}

// FromDrop normalizes a drag-and-drop source. Non-audio drops are silently
// ignored: no artifact, no error.
func (s *Selector) FromDrop(path string, declaredType string) (*lecture.Artifact, error) {
	if declaredType == "" {
		declaredType = MediaTypeForFile(path)
	}
	if !IsAudioType(declaredType) {
		return nil, nil
	}
	if !s.gate.AcceptsIngestion() {
		return nil, ErrPipelineBusy
	}
	artifact, err := readArtifact(path, declaredType)
	if err != nil {
		return nil, err
	}
	return &artifact, nil
}

// FromFile normalizes a browsed file source. Non-audio selections surface
// ErrUnsupportedMedia.
func (s *Selector) FromFile(path string) (lecture.Artifact, error) {
	mediaType := MediaTypeForFile(path)
	if !IsAudioType(mediaType) {
		return lecture.Artifact{}, fmt.Errorf("%w: %q", ErrUnsupportedMedia, filepath.Base(path))
	}
	if !s.gate.AcceptsIngestion() {
		return lecture.Artifact{}, ErrPipelineBusy
	}
	return readArtifact(path, mediaType)
}

// FromRecording normalizes a finalized live-recording artifact.
func (s *Selector) FromRecording(artifact lecture.Artifact) (lecture.Artifact, error) {
	if !s.gate.AcceptsIngestion() {
		return lecture.Artifact{}, ErrPipelineBusy
	}
	return artifact, nil
}

// IsAudioType reports whether a declared media type matches the audio pattern.
func IsAudioType(mediaType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(mediaType)), "audio/")
}

// MediaTypeForFile derives the declared media type from a filename extension.
func MediaTypeForFile(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	case ".m4a":
		return "audio/mp4"
	case ".ogg", ".oga":
		return "audio/ogg"
	case ".flac":
		return "audio/flac"
	case ".webm":
		return "audio/webm"
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "application/octet-stream"
}

// readArtifact loads the file payload, keeping the original filename.
func readArtifact(path string, mediaType string) (lecture.Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return lecture.Artifact{}, fmt.Errorf("read audio file: %w", err)
	}
	return lecture.Artifact{
		Data:      data,
		MediaType: mediaType,
		Filename:  filepath.Base(path),
	}, nil
}
