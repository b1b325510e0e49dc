package audio

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeWAVHeader(t *testing.T) {
	pcm := make([]byte, 12000)
	out := EncodeWAV(pcm)

	require.Len(t, out, 44+len(pcm))
	require.Equal(t, "RIFF", string(out[0:4]))
	require.Equal(t, "WAVE", string(out[8:12]))
	require.Equal(t, "fmt ", string(out[12:16]))
	require.Equal(t, "data", string(out[36:40]))

	require.Equal(t, uint32(36+len(pcm)), binary.LittleEndian.Uint32(out[4:8]))
	require.Equal(t, uint16(1), binary.LittleEndian.Uint16(out[20:22]))
	require.Equal(t, uint16(1), binary.LittleEndian.Uint16(out[22:24]))
	require.Equal(t, uint32(16000), binary.LittleEndian.Uint32(out[24:28]))
	require.Equal(t, uint32(32000), binary.LittleEndian.Uint32(out[28:32]))
	require.Equal(t, uint16(16), binary.LittleEndian.Uint16(out[34:36]))
	require.Equal(t, uint32(len(pcm)), binary.LittleEndian.Uint32(out[40:44]))
}

func TestEncodeWAVEmptyPayload(t *testing.T) {
	out := EncodeWAV(nil)
	require.Len(t, out, 44)
	require.Equal(t, uint32(0), binary.LittleEndian.Uint32(out[40:44]))
}
