// Package audio handles input-device discovery, microphone capture sessions,
// and finalization of raw PCM into submittable audio artifacts.
package audio

import "errors"

var (
	// ErrPermissionDenied indicates the platform refused microphone access.
	ErrPermissionDenied = errors.New("microphone access denied")
	// ErrDeviceUnavailable indicates no usable input device could be acquired.
	ErrDeviceUnavailable = errors.New("audio input device unavailable")
	// ErrNoAudioCaptured indicates a session stopped before any PCM arrived.
	ErrNoAudioCaptured = errors.New("no audio captured")
)
