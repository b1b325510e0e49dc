// Package chat runs the transcript question-and-answer session for a
// processed lecture. Chat failures degrade to a fallback answer and never
// touch pipeline state.
package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/tmercer/lectern/internal/lecture"
)

// FallbackAnswer is shown in place of an assistant reply when the query
// service fails. The turn still completes and is recorded.
const FallbackAnswer = "Sorry, I encountered an error while analyzing the transcript."

// ErrNoTranscript indicates chat was opened before any lecture completed.
var ErrNoTranscript = errors.New("no lecture transcript available for chat")

// Querier answers a question against a lecture transcript.
type Querier interface {
	Query(ctx context.Context, transcript string, question string) (string, error)
}

// Archive persists chat turns per lecture.
type Archive interface {
	AppendChat(lectureID string, entry lecture.ChatEntry) error
	ChatHistory(lectureID string) ([]lecture.ChatEntry, error)
}

// Session is a chat conversation bound to one stored lecture.
type Session struct {
	lectureID  string
	transcript string
	querier    Querier
	archive    Archive
	logger     *slog.Logger
}

// NewSession opens a chat session for a stored lecture.
func NewSession(lectureID, transcript string, querier Querier, archive Archive, logger *slog.Logger) (*Session, error) {
	if strings.TrimSpace(transcript) == "" {
		return nil, ErrNoTranscript
	}
	return &Session{
		lectureID:  lectureID,
		transcript: transcript,
		querier:    querier,
		archive:    archive,
		logger:     logger,
	}, nil
}

// Seed records the assistant greeting once, when the conversation is empty.
func (s *Session) Seed(greeting string) error {
	if strings.TrimSpace(greeting) == "" {
		return nil
	}
	history, err := s.archive.ChatHistory(s.lectureID)
	if err != nil {
		return err
	}
	if len(history) > 0 {
		return nil
	}
	return s.archive.AppendChat(s.lectureID, lecture.ChatEntry{
		Role:    lecture.RoleAssistant,
		Content: greeting,
	})
}

// History returns the conversation so far, in append order.
func (s *Session) History() ([]lecture.ChatEntry, error) {
	return s.archive.ChatHistory(s.lectureID)
}

// Ask records the user question, queries the service, and records the reply.
// A failed query substitutes FallbackAnswer instead of surfacing an error.
func (s *Session) Ask(ctx context.Context, question string) (lecture.ChatEntry, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return lecture.ChatEntry{}, errors.New("empty question")
	}

	if err := s.archive.AppendChat(s.lectureID, lecture.ChatEntry{
		Role:    lecture.RoleUser,
		Content: question,
	}); err != nil {
		return lecture.ChatEntry{}, err
	}

	answer, err := s.querier.Query(ctx, s.transcript, question)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("chat query failed", "lecture_id", s.lectureID, "error", err.Error())
		}
		answer = FallbackAnswer
	}

	reply := lecture.ChatEntry{Role: lecture.RoleAssistant, Content: answer}
	if err := s.archive.AppendChat(s.lectureID, reply); err != nil {
		return lecture.ChatEntry{}, err
	}
	return reply, nil
}
