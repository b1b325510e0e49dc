package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/tmercer/lectern/internal/lecture"
)

// Record is one completed lecture stored in the library.
type Record struct {
	ID         string
	Title      string
	SourceFile string
	Result     lecture.Result
	CreatedAt  time.Time
}

// SaveLecture stores one completed result and returns the persisted record.
func (s *Store) SaveLecture(result lecture.Result, sourceFile string) (Record, error) {
	record := Record{
		ID:         ulid.Make().String(),
		Title:      titleFromSource(sourceFile),
		SourceFile: sourceFile,
		Result:     result,
		CreatedAt:  time.Now().UTC(),
	}

	summaryJSON, err := json.Marshal(result.Summary)
	if err != nil {
		return Record{}, fmt.Errorf("encode summary: %w", err)
	}
	flashcardsJSON, err := json.Marshal(result.Flashcards)
	if err != nil {
		return Record{}, fmt.Errorf("encode flashcards: %w", err)
	}
	quizJSON, err := json.Marshal(result.Quiz)
	if err != nil {
		return Record{}, fmt.Errorf("encode quiz: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO lectures (id, title, source_file, transcript, summary_json, flashcards_json, quiz_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.Title, record.SourceFile, result.Transcript,
		string(summaryJSON), string(flashcardsJSON), string(quizJSON),
		record.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return Record{}, fmt.Errorf("insert lecture: %w", err)
	}
	return record, nil
}

// LatestLecture returns the most recently stored lecture.
func (s *Store) LatestLecture() (Record, error) {
	row := s.db.QueryRow(`
		SELECT id, title, source_file, transcript, summary_json, flashcards_json, quiz_json, created_at
		FROM lectures ORDER BY created_at DESC, id DESC LIMIT 1`)
	return scanRecord(row)
}

// Lecture returns one stored lecture by id.
func (s *Store) Lecture(id string) (Record, error) {
	row := s.db.QueryRow(`
		SELECT id, title, source_file, transcript, summary_json, flashcards_json, quiz_json, created_at
		FROM lectures WHERE id = ?`, id)
	return scanRecord(row)
}

// ListLectures returns library records newest first, without result payloads.
func (s *Store) ListLectures() ([]Record, error) {
	rows, err := s.db.Query(`
		SELECT id, title, source_file, created_at
		FROM lectures ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list lectures: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var record Record
		var createdAt int64
		if err := rows.Scan(&record.ID, &record.Title, &record.SourceFile, &createdAt); err != nil {
			return nil, fmt.Errorf("scan lecture row: %w", err)
		}
		record.CreatedAt = time.UnixMilli(createdAt).UTC()
		records = append(records, record)
	}
	return records, rows.Err()
}

// AppendChat stores one chat transcript entry for a lecture.
func (s *Store) AppendChat(lectureID string, entry lecture.ChatEntry) error {
	_, err := s.db.Exec(`
		INSERT INTO chat_messages (lecture_id, role, content, created_at)
		VALUES (?, ?, ?, ?)`,
		lectureID, entry.Role, entry.Content, time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("append chat entry: %w", err)
	}
	return nil
}

// ChatHistory returns a lecture's chat entries in append order.
func (s *Store) ChatHistory(lectureID string) ([]lecture.ChatEntry, error) {
	rows, err := s.db.Query(`
		SELECT role, content FROM chat_messages WHERE lecture_id = ? ORDER BY id ASC`, lectureID)
	if err != nil {
		return nil, fmt.Errorf("load chat history: %w", err)
	}
	defer rows.Close()

	entries := []lecture.ChatEntry{}
	for rows.Next() {
		var entry lecture.ChatEntry
		if err := rows.Scan(&entry.Role, &entry.Content); err != nil {
			return nil, fmt.Errorf("scan chat row: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// WriteQuizSnapshot replaces the single quiz handoff row. Written once per
// pipeline completion; a newer run fully supersedes the old snapshot.
func (s *Store) WriteQuizSnapshot(snapshot lecture.QuizSnapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode quiz snapshot: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO quiz_handoff (id, payload, written_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, written_at = excluded.written_at`,
		string(payload), time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("write quiz snapshot: %w", err)
	}
	return nil
}

// ReadQuizSnapshot returns the stored handoff snapshot, or ok=false when the
// quiz view should fall back to demo content.
func (s *Store) ReadQuizSnapshot() (lecture.QuizSnapshot, bool, error) {
	var payload string
	err := s.db.QueryRow(`SELECT payload FROM quiz_handoff WHERE id = 1`).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return lecture.QuizSnapshot{}, false, nil
	}
	if err != nil {
		return lecture.QuizSnapshot{}, false, fmt.Errorf("read quiz snapshot: %w", err)
	}

	var snapshot lecture.QuizSnapshot
	if err := json.Unmarshal([]byte(payload), &snapshot); err != nil {
		return lecture.QuizSnapshot{}, false, fmt.Errorf("decode quiz snapshot: %w", err)
	}
	return snapshot, true, nil
}

func scanRecord(row *sql.Row) (Record, error) {
	var record Record
	var summaryJSON, flashcardsJSON, quizJSON string
	var createdAt int64

	err := row.Scan(
		&record.ID, &record.Title, &record.SourceFile, &record.Result.Transcript,
		&summaryJSON, &flashcardsJSON, &quizJSON, &createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNoLecture
	}
	if err != nil {
		return Record{}, fmt.Errorf("scan lecture: %w", err)
	}

	if err := json.Unmarshal([]byte(summaryJSON), &record.Result.Summary); err != nil {
		return Record{}, fmt.Errorf("decode summary: %w", err)
	}
	if err := json.Unmarshal([]byte(flashcardsJSON), &record.Result.Flashcards); err != nil {
		return Record{}, fmt.Errorf("decode flashcards: %w", err)
	}
	if err := json.Unmarshal([]byte(quizJSON), &record.Result.Quiz); err != nil {
		return Record{}, fmt.Errorf("decode quiz: %w", err)
	}
	record.CreatedAt = time.UnixMilli(createdAt).UTC()
	return record, nil
}

// titleFromSource derives a display title from the submitted filename.
func titleFromSource(sourceFile string) string {
	base := sourceFile
	if idx := strings.LastIndexByte(base, '/'); idx >= 0 {
		base = base[idx+1:]
	}
	if idx := strings.LastIndexByte(base, '.'); idx > 0 {
		base = base[:idx]
	}
	if base == "" {
		return "Untitled lecture"
	}
	return base
}
