// Package ipc carries control commands between lectern invocations over a
// unix socket: one owner process serves, later invocations forward.
package ipc

// Request is one control command sent to the owning capture process.
type Request struct {
	Command string `json:"command"`
}

// Response reports command outcome plus a pipeline state snapshot.
type Response struct {
	OK      bool   `json:"ok"`
	State   string `json:"state,omitempty"`
	Elapsed string `json:"elapsed,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}
