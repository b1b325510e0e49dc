package audio

import (
	"context"
	"fmt"
	"strings"

	"github.com/jfreymuth/pulse"
	pulseproto "github.com/jfreymuth/pulse/proto"
)

// Device describes one input source surfaced to lectern.
type Device struct {
	ID          string
	Description string
	Available   bool
	Muted       bool
	Default     bool
}

// Selection is the resolved capture source plus optional fallback warning context.
type Selection struct {
	Device   Device
	Warning  string
	Fallback bool
}

// ListDevices returns available input sources with default/availability metadata.
func ListDevices(_ context.Context) ([]Device, error) {
	client, err := pulse.NewClient(
		pulse.ClientApplicationName("lectern"),
		pulse.ClientApplicationIconName("audio-input-microphone"),
	)
	if err != nil {
		return nil, classifyDeviceError(fmt.Errorf("connect pulse server: %w", err))
	}
	defer client.Close()

	defaultSource, err := client.DefaultSource()
	if err != nil {
		return nil, classifyDeviceError(fmt.Errorf("read default source: %w", err))
	}
	defaultID := defaultSource.ID()

	var sourceInfos pulseproto.GetSourceInfoListReply
	if err := client.RawRequest(&pulseproto.GetSourceInfoList{}, &sourceInfos); err != nil {
		return nil, classifyDeviceError(fmt.Errorf("list sources: %w", err))
	}

	devices := make([]Device, 0, len(sourceInfos))
	for _, source := range sourceInfos {
		if source == nil {
			continue
		}
		devices = append(devices, Device{
			ID:          source.SourceName,
			Description: source.Device,
			Available:   sourceAvailable(source),
			Muted:       source.Mute,
			Default:     source.SourceName == defaultID,
		})
	}
	return devices, nil
}

// SelectDevice resolves audio.input/audio.fallback preferences against live devices.
func SelectDevice(ctx context.Context, input string, fallback string) (Selection, error) {
	devices, err := ListDevices(ctx)
	if err != nil {
		return Selection{}, err
	}
	return selectFromList(devices, input, fallback)
}

// selectFromList applies selection policy to a pre-fetched device list.
func selectFromList(devices []Device, input string, fallback string) (Selection, error) {
	if len(devices) == 0 {
		return Selection{}, fmt.Errorf("%w: no input devices found", ErrDeviceUnavailable)
	}

	primary := matchDevice(devices, input)
	if primary == nil && !isDefaultTerm(input) {
		return Selection{}, fmt.Errorf("%w: audio.input %q did not match any device", ErrDeviceUnavailable, input)
	}
	if primary != nil && usable(*primary) {
		return Selection{Device: *primary}, nil
	}

	reason := "not found"
	if primary != nil {
		reason = "unavailable"
		if primary.Muted {
			reason = "muted"
		}
	}

	substitute := matchDevice(devices, fallback)
	if substitute == nil || !usable(*substitute) {
		return Selection{}, fmt.Errorf("%w: preferred input is %s and no usable fallback exists", ErrDeviceUnavailable, reason)
	}

	warning := fmt.Sprintf("audio.input %q is %s; falling back to %q", input, reason, substitute.ID)
	return Selection{Device: *substitute, Warning: warning, Fallback: true}, nil
}

// matchDevice resolves a preference term to a device: "default" (or empty)
// selects the server default, anything else substring-matches id/description.
func matchDevice(devices []Device, term string) *Device {
	term = strings.TrimSpace(strings.ToLower(term))
	for i := range devices {
		dev := &devices[i]
		if isDefaultTerm(term) {
			if dev.Default {
				return dev
			}
			continue
		}
		if strings.Contains(strings.ToLower(dev.ID), term) ||
			strings.Contains(strings.ToLower(dev.Description), term) {
			return dev
		}
	}
	return nil
}

func isDefaultTerm(term string) bool {
	term = strings.TrimSpace(strings.ToLower(term))
	return term == "" || term == "default"
}

func usable(device Device) bool {
	return device.Available && !device.Muted
}

// classifyDeviceError maps platform failures onto the capture error taxonomy.
func classifyDeviceError(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "access denied") || strings.Contains(msg, "permission") {
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}
	return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
}

// sourceAvailable maps source port availability to a simple boolean.
func sourceAvailable(source *pulseproto.GetSourceInfoReply) bool {
	if source == nil {
		return false
	}
	if len(source.Ports) == 0 {
		return true
	}
	for _, port := range source.Ports {
		if port.Name != source.ActivePortName {
			continue
		}
		// PulseAudio values: unknown=0, no=1, yes=2.
		return port.Available == 0 || port.Available == 2
	}
	return true
}
