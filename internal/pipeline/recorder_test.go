package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tmercer/lectern/internal/audio"
	"github.com/tmercer/lectern/internal/config"
	"github.com/tmercer/lectern/internal/workflow"
)

func TestStopWithoutStartIsUnavailable(t *testing.T) {
	recorder := NewRecorder(config.AudioConfig{}, nil)

	_, err := recorder.StopAndFinalize(context.Background())
	require.ErrorIs(t, err, workflow.ErrRecorderUnavailable)
}

func TestCancelWithoutStartIsHarmless(t *testing.T) {
	recorder := NewRecorder(config.AudioConfig{}, nil)
	require.NoError(t, recorder.Cancel(context.Background()))
	require.Empty(t, recorder.Elapsed())
}

func TestDescribeDevice(t *testing.T) {
	tests := []struct {
		device audio.Device
		want   string
	}{
		{device: audio.Device{ID: "mic0", Description: "Built-in Microphone"}, want: "Built-in Microphone (mic0)"},
		{device: audio.Device{ID: "mic0"}, want: "mic0"},
		{device: audio.Device{Description: "USB Mic"}, want: "USB Mic"},
		{device: audio.Device{ID: "  ", Description: "  "}, want: ""},
	}
	for _, tc := range tests {
		require.Equal(t, tc.want, describeDevice(tc.device))
	}
}
