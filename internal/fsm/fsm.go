// Package fsm defines the lecture pipeline states and their legal transitions.
package fsm

import "fmt"

type State string

type Event string

const (
	StateIdle       State = "idle"
	StateCapturing  State = "capturing"
	StateProcessing State = "processing"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

const (
	// EventCapture starts a live recording session.
	EventCapture Event = "capture"
	// EventSubmit hands a finalized artifact to remote processing.
	EventSubmit Event = "submit"
	// EventAbort discards an active recording session (cancel or capture error).
	EventAbort Event = "abort"
	// EventComplete records a successful processing response.
	EventComplete Event = "complete"
	// EventFail records a processing failure.
	EventFail Event = "fail"
	// EventReset acknowledges a terminal state and returns to idle.
	EventReset Event = "reset"
)

// Transition returns the successor state for one event, or an error when the
// event is not legal in the current state. The current state is returned
// unchanged on error.
func Transition(current State, event Event) (State, error) {
	switch current {
	case StateIdle:
		switch event {
		case EventCapture:
			return StateCapturing, nil
		case EventSubmit:
			return StateProcessing, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateCapturing:
		switch event {
		case EventSubmit:
			return StateProcessing, nil
		case EventAbort:
			return StateIdle, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateProcessing:
		switch event {
		case EventComplete:
			return StateCompleted, nil
		case EventFail:
			return StateFailed, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateCompleted:
		switch event {
		case EventReset:
			return StateIdle, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateFailed:
		switch event {
		case EventReset:
			return StateIdle, nil
		default:
			return current, invalidTransition(current, event)
		}
	default:
		return current, fmt.Errorf("unknown state %q", current)
	}
}

func invalidTransition(state State, event Event) error {
	return fmt.Errorf("invalid transition: %s --(%s)--> ?", state, event)
}
