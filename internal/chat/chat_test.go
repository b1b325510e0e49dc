package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tmercer/lectern/internal/lecture"
)

type memArchive struct {
	entries   map[string][]lecture.ChatEntry
	appendErr error
}

func newMemArchive() *memArchive {
	return &memArchive{entries: map[string][]lecture.ChatEntry{}}
}

func (a *memArchive) AppendChat(lectureID string, entry lecture.ChatEntry) error {
	if a.appendErr != nil {
		return a.appendErr
	}
	a.entries[lectureID] = append(a.entries[lectureID], entry)
	return nil
}

func (a *memArchive) ChatHistory(lectureID string) ([]lecture.ChatEntry, error) {
	return a.entries[lectureID], nil
}

type fakeQuerier struct {
	answer string
	err    error

	gotTranscript string
	gotQuestion   string
}

func (f *fakeQuerier) Query(_ context.Context, transcript, question string) (string, error) {
	f.gotTranscript = transcript
	f.gotQuestion = question
	return f.answer, f.err
}

func TestAskRecordsBothTurns(t *testing.T) {
	archive := newMemArchive()
	querier := &fakeQuerier{answer: "Photosynthesis converts light to chemical energy."}
	session, err := NewSession("lec-1", "the transcript", querier, archive, nil)
	require.NoError(t, err)

	reply, err := session.Ask(context.Background(), "  What is photosynthesis? ")
	require.NoError(t, err)
	require.Equal(t, lecture.RoleAssistant, reply.Role)
	require.Equal(t, querier.answer, reply.Content)

	require.Equal(t, "the transcript", querier.gotTranscript)
	require.Equal(t, "What is photosynthesis?", querier.gotQuestion)

	history, err := session.History()
	require.NoError(t, err)
	require.Equal(t, []lecture.ChatEntry{
		{Role: lecture.RoleUser, Content: "What is photosynthesis?"},
		{Role: lecture.RoleAssistant, Content: querier.answer},
	}, history)
}

func TestAskSubstitutesFallbackOnQueryError(t *testing.T) {
	archive := newMemArchive()
	querier := &fakeQuerier{err: errors.New("service returned HTTP 502")}
	session, err := NewSession("lec-1", "t", querier, archive, nil)
	require.NoError(t, err)

	reply, err := session.Ask(context.Background(), "anything?")
	require.NoError(t, err)
	require.Equal(t, FallbackAnswer, reply.Content)

	history, err := session.History()
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, FallbackAnswer, history[1].Content)
}

func TestAskRejectsEmptyQuestion(t *testing.T) {
	session, err := NewSession("lec-1", "t", &fakeQuerier{}, newMemArchive(), nil)
	require.NoError(t, err)

	_, err = session.Ask(context.Background(), "   ")
	require.Error(t, err)
}

func TestSeedOnlyOnEmptyHistory(t *testing.T) {
	archive := newMemArchive()
	session, err := NewSession("lec-1", "t", &fakeQuerier{}, archive, nil)
	require.NoError(t, err)

	require.NoError(t, session.Seed("Hi! Ask me about the lecture."))
	require.NoError(t, session.Seed("Hi! Ask me about the lecture."))

	history, err := session.History()
	require.NoError(t, err)
	require.Equal(t, []lecture.ChatEntry{
		{Role: lecture.RoleAssistant, Content: "Hi! Ask me about the lecture."},
	}, history)
}

func TestNewSessionRequiresTranscript(t *testing.T) {
	_, err := NewSession("lec-1", "   ", &fakeQuerier{}, newMemArchive(), nil)
	require.ErrorIs(t, err, ErrNoTranscript)
}

func TestAskPropagatesArchiveFailure(t *testing.T) {
	archive := newMemArchive()
	archive.appendErr = errors.New("database is locked")
	session, err := NewSession("lec-1", "t", &fakeQuerier{answer: "a"}, archive, nil)
	require.NoError(t, err)

	_, err = session.Ask(context.Background(), "q")
	require.Error(t, err)
}
