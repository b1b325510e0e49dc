// Package notify renders pipeline status for the user. Presentation stays
// outside the workflow controller; this package only consumes its events.
package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

type messages struct {
	capturing  string
	processing string
	completed  string
	errorText  string
}

func defaultMessages() messages {
	return messages{
		capturing:  "Recording… run `lectern stop` to finish or `lectern cancel` to discard.",
		processing: "Processing lecture…",
		completed:  "Lecture processed. Try `lectern chat`, `lectern quiz`, or `lectern export`.",
		errorText:  "Lecture pipeline error",
	}
}

// Console prints one status line per pipeline transition.
type Console struct {
	logger   *slog.Logger
	messages messages

	mu  sync.Mutex
	out io.Writer
}

// NewConsole creates a console notifier writing to out.
func NewConsole(out io.Writer, logger *slog.Logger) *Console {
	return &Console{out: out, logger: logger, messages: defaultMessages()}
}

// ShowCapturing signals that the microphone is live.
func (c *Console) ShowCapturing(context.Context) {
	c.println(c.messages.capturing)
}

// ShowProcessing signals the post-capture submission state.
func (c *Console) ShowProcessing(context.Context) {
	c.println(c.messages.processing)
}

// ShowCompleted signals a finished run with stored results.
func (c *Console) ShowCompleted(context.Context) {
	c.println(c.messages.completed)
}

// ShowError displays a failure-state message.
func (c *Console) ShowError(_ context.Context, text string) {
	if text == "" {
		text = c.messages.errorText
	}
	c.println(text)
}

func (c *Console) println(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := fmt.Fprintln(c.out, text); err != nil && c.logger != nil {
		c.logger.Debug("status output failed", "error", err.Error())
	}
}
