package audio

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/jfreymuth/pulse"
	pulseproto "github.com/jfreymuth/pulse/proto"
)

const captureFragmentBytes = 640 // 20ms @ 16kHz mono s16

// Capture accumulates raw PCM chunks from one pulse record stream in strict
// arrival order. It releases the pulse client and stream exactly once.
type Capture struct {
	device Device

	client *pulse.Client
	stream *pulse.RecordStream

	mu      sync.Mutex
	chunks  [][]byte
	stopped bool

	bytes atomic.Int64
}

// StartCapture creates and starts a 16kHz mono s16 record stream.
func StartCapture(ctx context.Context, selected Device) (*Capture, error) {
	client, err := pulse.NewClient(
		pulse.ClientApplicationName("lectern"),
		pulse.ClientApplicationIconName("audio-input-microphone"),
	)
	if err != nil {
		return nil, classifyDeviceError(fmt.Errorf("connect pulse server: %w", err))
	}

	source, err := client.SourceByID(selected.ID)
	if err != nil {
		client.Close()
		return nil, classifyDeviceError(fmt.Errorf("resolve source %q: %w", selected.ID, err))
	}

	capture := &Capture{device: selected, client: client}

	writer := pulse.NewWriter(writerFunc(capture.onPCM), pulseproto.FormatInt16LE)
	stream, err := client.NewRecord(
		writer,
		pulse.RecordSource(source),
		pulse.RecordMono,
		pulse.RecordSampleRate(sampleRate),
		pulse.RecordBufferFragmentSize(captureFragmentBytes),
		pulse.RecordMediaName("lectern lecture capture"),
	)
	if err != nil {
		client.Close()
		return nil, classifyDeviceError(fmt.Errorf("create record stream: %w", err))
	}

	capture.stream = stream
	stream.Start()

	go func() {
		<-ctx.Done()
		_ = capture.Stop()
	}()

	return capture, nil
}

// Device returns capture metadata for logging and diagnostics.
func (c *Capture) Device() Device {
	return c.device
}

// BytesCaptured reports total PCM bytes accepted so far.
func (c *Capture) BytesCaptured() int64 {
	return c.bytes.Load()
}

// PCM returns the ordered concatenation of all captured chunks.
func (c *Capture) PCM() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	var size int
	for _, chunk := range c.chunks {
		size += len(chunk)
	}
	out := make([]byte, 0, size)
	for _, chunk := range c.chunks {
		out = append(out, chunk...)
	}
	return out
}

// Stop halts the stream and releases the device handle exactly once.
// Safe to call repeatedly; later calls are no-ops.
func (c *Capture) Stop() error {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return nil
	}
	c.stopped = true
	c.mu.Unlock()

	if c.stream != nil {
		c.stream.Stop()
		c.stream.Close()
	}
	if c.client != nil {
		c.client.Close()
	}
	return nil
}

// onPCM receives raw pulse frames and appends them in arrival order.
func (c *Capture) onPCM(buffer []byte) (int, error) {
	if len(buffer) == 0 {
		return 0, nil
	}

	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return 0, io.EOF
	}
	chunk := make([]byte, len(buffer))
	copy(chunk, buffer)
	c.chunks = append(c.chunks, chunk)
	c.mu.Unlock()

	c.bytes.Add(int64(len(buffer)))
	return len(buffer), nil
}

// writerFunc adapts a function to io.Writer for pulse.NewWriter.
type writerFunc func([]byte) (int, error)

func (f writerFunc) Write(b []byte) (int, error) {
	return f(b)
}
