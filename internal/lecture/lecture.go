// Package lecture defines the data model shared across the processing pipeline.
package lecture

import (
	"fmt"
	"time"
)

// Artifact is one finalized audio payload ready for submission.
// Immutable once created; owned by the workflow controller for one run.
type Artifact struct {
	Data      []byte
	MediaType string
	Filename  string
}

// Size returns the payload length in bytes.
func (a Artifact) Size() int64 {
	return int64(len(a.Data))
}

// RecordingFilename derives the synthetic filename for a live capture.
func RecordingFilename(capturedAt time.Time) string {
	return fmt.Sprintf("recording_%d.wav", capturedAt.UnixMilli())
}

// Flashcard is one question/answer study pair.
type Flashcard struct {
	Question string `json:"q"`
	Answer   string `json:"a"`
}

// QuizQuestion is one multiple-choice question with four options.
type QuizQuestion struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   int      `json:"answer"`
}

// Result holds the study materials produced by one successful pipeline run.
// Immutable after creation; a new run supersedes it entirely.
type Result struct {
	Transcript string         `json:"transcript"`
	Summary    []string       `json:"summary"`
	Flashcards []Flashcard    `json:"flashcards"`
	Quiz       []QuizQuestion `json:"quiz"`
}

// Chat roles for transcript entries.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatEntry is one message in the append-only chat transcript.
type ChatEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// QuizSnapshot is the quiz handoff payload written on pipeline completion.
// Demo marks built-in placeholder content shown when no lecture was processed.
type QuizSnapshot struct {
	Questions []QuizQuestion `json:"questions"`
	Demo      bool           `json:"demo"`
	WrittenAt time.Time      `json:"written_at"`
}

// DemoQuiz returns the built-in placeholder quiz used when no processed
// quiz snapshot exists.
func DemoQuiz() QuizSnapshot {
	return QuizSnapshot{
		Demo: true,
		Questions: []QuizQuestion{
			{
				Question: "What does lectern turn a recorded lecture into?",
				Options:  []string{"Study materials", "A slide deck", "A podcast", "A video"},
				Answer:   0,
			},
			{
				Question: "Which input paths does lectern accept for lecture audio?",
				Options:  []string{"Video files only", "Live recording or audio upload", "Plain text", "Images"},
				Answer:   1,
			},
			{
				Question: "Where does a processed quiz come from?",
				Options:  []string{"A built-in question bank", "Manual entry", "The lecture transcript", "Another app"},
				Answer:   2,
			},
		},
	}
}
