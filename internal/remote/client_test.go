package remote

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tmercer/lectern/internal/config"
	"github.com/tmercer/lectern/internal/lecture"
)

func newClient(baseURL string) *Client {
	return New(config.ServiceConfig{BaseURL: baseURL, TimeoutSeconds: 5}, nil)
}

func sampleArtifact() lecture.Artifact {
	return lecture.Artifact{
		Data:      make([]byte, 12000),
		MediaType: "audio/wav",
		Filename:  "recording_1700000000000.wav",
	}
}

func TestSubmitLectureDecodesFullResponse(t *testing.T) {
	want := lecture.Result{
		Transcript: "t",
		Summary:    []string{"a", "b"},
		Flashcards: []lecture.Flashcard{{Question: "Q1", Answer: "A1"}},
		Quiz: []lecture.QuizQuestion{
			{Question: "Q", Options: []string{"1", "2", "3", "4"}, Answer: 0},
		},
	}

	var gotFilename, gotMediaType string
	var gotBytes int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/process_lecture", r.URL.Path)

		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()

		payload, err := io.ReadAll(file)
		require.NoError(t, err)
		gotBytes = len(payload)
		gotFilename = header.Filename
		gotMediaType = header.Header.Get("Content-Type")

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(want))
	}))
	defer server.Close()

	result, err := newClient(server.URL).SubmitLecture(context.Background(), sampleArtifact())
	require.NoError(t, err)
	require.Equal(t, want, result)
	require.Equal(t, 12000, gotBytes)
	require.Equal(t, "recording_1700000000000.wav", gotFilename)
	require.Equal(t, "audio/wav", gotMediaType)
}

func TestSubmitLectureNonOKStatusIsGenericFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"detail":"AI Quota Exceeded"}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newClient(server.URL).SubmitLecture(context.Background(), sampleArtifact())
	require.ErrorIs(t, err, ErrSubmissionFailed)
	require.Contains(t, err.Error(), "HTTP 429")
	// No structured error body is parsed.
	require.NotContains(t, err.Error(), "Quota")
}

func TestSubmitLectureTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	_, err := newClient(server.URL).SubmitLecture(context.Background(), sampleArtifact())
	require.ErrorIs(t, err, ErrSubmissionFailed)
}

func TestSubmitLectureUndecodableBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	_, err := newClient(server.URL).SubmitLecture(context.Background(), sampleArtifact())
	require.ErrorIs(t, err, ErrSubmissionFailed)
}

func TestQueryRoundtrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat", r.URL.Path)

		var req queryRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "lecture transcript", req.Transcript)
		require.Equal(t, "what is this about?", req.Question)

		require.NoError(t, json.NewEncoder(w).Encode(queryResponse{Response: "it is about testing"}))
	}))
	defer server.Close()

	answer, err := newClient(server.URL).Query(context.Background(), "lecture transcript", "what is this about?")
	require.NoError(t, err)
	require.Equal(t, "it is about testing", answer)
}

func TestQueryErrorPropagates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := newClient(server.URL).Query(context.Background(), "t", "q")
	require.Error(t, err)
	require.Contains(t, err.Error(), "HTTP 500")
}

func TestHealthy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	require.NoError(t, newClient(server.URL).Healthy(context.Background()))

	server.Close()
	require.Error(t, newClient(server.URL).Healthy(context.Background()))
}
