package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tmercer/lectern/internal/lecture"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func openGate() Gate  { return GateFunc(func() bool { return true }) }
func closedGate() Gate { return GateFunc(func() bool { return false }) }

func TestFromFileNormalizesAudio(t *testing.T) {
	path := writeFile(t, "lecture.mp3", []byte("mp3-bytes"))

	artifact, err := NewSelector(openGate()).FromFile(path)
	require.NoError(t, err)
	require.Equal(t, []byte("mp3-bytes"), artifact.Data)
	require.Equal(t, "audio/mpeg", artifact.MediaType)
	require.Equal(t, "lecture.mp3", artifact.Filename)
}

func TestFromFileRejectsNonAudio(t *testing.T) {
	path := writeFile(t, "notes.pdf", []byte("%PDF"))

	_, err := NewSelector(openGate()).FromFile(path)
	require.ErrorIs(t, err, ErrUnsupportedMedia)
}

func TestFromDropSilentlyIgnoresNonAudio(t *testing.T) {
	path := writeFile(t, "slides.pdf", []byte("%PDF"))

	artifact, err := NewSelector(openGate()).FromDrop(path, "application/pdf")
	require.NoError(t, err)
	require.Nil(t, artifact)
}

func TestFromDropAcceptsDeclaredAudio(t *testing.T) {
	path := writeFile(t, "clip.bin", []byte("wav-bytes"))

	artifact, err := NewSelector(openGate()).FromDrop(path, "audio/wav")
	require.NoError(t, err)
	require.NotNil(t, artifact)
	require.Equal(t, "audio/wav", artifact.MediaType)
	require.Equal(t, []byte("wav-bytes"), artifact.Data)
}

func TestBusyPipelineRejectsIngestion(t *testing.T) {
	path := writeFile(t, "lecture.wav", []byte("x"))
	selector := NewSelector(closedGate())

	_, err := selector.FromFile(path)
	require.ErrorIs(t, err, ErrPipelineBusy)

	_, err = selector.FromDrop(path, "audio/wav")
	require.ErrorIs(t, err, ErrPipelineBusy)

	_, err = selector.FromRecording(lecture.Artifact{Data: []byte("x"), MediaType: "audio/wav"})
	require.ErrorIs(t, err, ErrPipelineBusy)
}

func TestBusyPipelineStillIgnoresNonAudioDropSilently(t *testing.T) {
	// Media-type validation happens first: a non-audio drop never surfaces
	// the busy error.
	artifact, err := NewSelector(closedGate()).FromDrop("slides.pdf", "application/pdf")
	require.NoError(t, err)
	require.Nil(t, artifact)
}

func TestMediaTypeForFile(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{path: "a.mp3", want: "audio/mpeg"},
		{path: "a.wav", want: "audio/wav"},
		{path: "a.m4a", want: "audio/mp4"},
		{path: "a.ogg", want: "audio/ogg"},
		{path: "a.flac", want: "audio/flac"},
		{path: "a.unknownext", want: "application/octet-stream"},
	}
	for _, tc := range tests {
		require.Equal(t, tc.want, MediaTypeForFile(tc.path), tc.path)
	}
}

func TestIsAudioType(t *testing.T) {
	require.True(t, IsAudioType("audio/wav"))
	require.True(t, IsAudioType(" AUDIO/mpeg "))
	require.False(t, IsAudioType("video/mp4"))
	require.False(t, IsAudioType(""))
}
