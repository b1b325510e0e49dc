package audio

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{seconds: 0, want: "0:00"},
		{seconds: 5, want: "0:05"},
		{seconds: 59, want: "0:59"},
		{seconds: 60, want: "1:00"},
		{seconds: 125, want: "2:05"},
		{seconds: 3600, want: "60:00"},
		{seconds: -3, want: "0:00"},
	}

	for _, tc := range tests {
		require.Equal(t, tc.want, FormatDuration(tc.seconds))
	}
}
