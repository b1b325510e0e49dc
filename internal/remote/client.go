// Package remote talks to the lecture-processing service over HTTP.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/tmercer/lectern/internal/config"
	"github.com/tmercer/lectern/internal/lecture"
)

// ErrSubmissionFailed wraps any transport or server failure from submitLecture.
// The caller surfaces it as a generic user-facing message; no structured error
// body is parsed.
var ErrSubmissionFailed = errors.New("lecture processing failed")

// Client issues submission and query requests against the remote service.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// New constructs a client from service configuration.
func New(cfg config.ServiceConfig, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		logger:  logger,
	}
}

// SubmitLecture uploads one audio artifact and decodes the full study-material
// response. The response is all-or-nothing: any transport error, non-2xx
// status, or undecodable body maps to ErrSubmissionFailed.
func (c *Client) SubmitLecture(ctx context.Context, artifact lecture.Artifact) (lecture.Result, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := createAudioPart(writer, artifact)
	if err != nil {
		return lecture.Result{}, fmt.Errorf("%w: build upload: %v", ErrSubmissionFailed, err)
	}
	if _, err := part.Write(artifact.Data); err != nil {
		return lecture.Result{}, fmt.Errorf("%w: build upload: %v", ErrSubmissionFailed, err)
	}
	if err := writer.Close(); err != nil {
		return lecture.Result{}, fmt.Errorf("%w: build upload: %v", ErrSubmissionFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/process_lecture", body)
	if err != nil {
		return lecture.Result{}, fmt.Errorf("%w: %v", ErrSubmissionFailed, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logWarn("lecture submission transport error", "error", err.Error())
		return lecture.Result{}, fmt.Errorf("%w: %v", ErrSubmissionFailed, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return lecture.Result{}, fmt.Errorf("%w: read response: %v", ErrSubmissionFailed, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logWarn("lecture submission rejected", "status", resp.StatusCode)
		return lecture.Result{}, fmt.Errorf("%w: service returned HTTP %d", ErrSubmissionFailed, resp.StatusCode)
	}

	var result lecture.Result
	if err := json.Unmarshal(respBody, &result); err != nil {
		return lecture.Result{}, fmt.Errorf("%w: decode response: %v", ErrSubmissionFailed, err)
	}

	if c.logger != nil {
		c.logger.Info("lecture processed",
			"bytes", artifact.Size(),
			"latency_ms", time.Since(started).Milliseconds(),
			"summary_items", len(result.Summary),
			"flashcards", len(result.Flashcards),
			"quiz_questions", len(result.Quiz),
		)
	}
	return result, nil
}

type queryRequest struct {
	Transcript string `json:"transcript"`
	Question   string `json:"question"`
}

type queryResponse struct {
	Response string `json:"response"`
}

// Query sends the current transcript plus a user question and returns the
// assistant's answer. Errors propagate so the chat layer can substitute its
// fallback message; they never affect pipeline state.
func (c *Client) Query(ctx context.Context, transcript string, question string) (string, error) {
	payload, err := json.Marshal(queryRequest{Transcript: transcript, Question: question})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("query service: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read query response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("query service returned HTTP %d", resp.StatusCode)
	}

	var decoded queryResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return "", fmt.Errorf("decode query response: %w", err)
	}
	return decoded.Response, nil
}

// Healthy probes the service base URL; any HTTP response counts as reachable.
func (c *Client) Healthy(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("reach service: %w", err)
	}
	_ = resp.Body.Close()
	return nil
}

// createAudioPart builds the single audio file field with its declared media type.
func createAudioPart(writer *multipart.Writer, artifact lecture.Artifact) (io.Writer, error) {
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, artifact.Filename))
	mediaType := artifact.MediaType
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}
	header.Set("Content-Type", mediaType)
	return writer.CreatePart(header)
}

func (c *Client) logWarn(message string, args ...any) {
	if c.logger == nil {
		return
	}
	c.logger.Warn(message, args...)
}
