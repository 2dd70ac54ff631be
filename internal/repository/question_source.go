package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrInvalidSegment is returned when a section or topic cannot be used as a path segment.
var ErrInvalidSegment = errors.New("invalid path segment")

// maxQuestionPayload bounds a single question file.
const maxQuestionPayload = 8 << 20

// QuestionSource fetches the raw JSON question array for a section/topic pair.
type QuestionSource interface {
	Fetch(ctx context.Context, section, topic string) ([]byte, error)
	Describe(section, topic string) string
}

// StatusError is a non-2xx reply from an HTTP question source.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}

// ValidSegment reports whether s is safe to use as one path segment.
func ValidSegment(s string) bool {
	if s == "" || s == "." || s == ".." {
		return false
	}
	return !strings.ContainsAny(s, "/\\\x00")
}

// ─── HTTP ────────────────────────────────────────────────────────────

// HTTPQuestionSource reads {base}/data/{section}/{topic}.json.
type HTTPQuestionSource struct {
	baseURL string
	client  *http.Client
}

// NewHTTPQuestionSource creates a source rooted at baseURL.
func NewHTTPQuestionSource(baseURL string, client *http.Client) *HTTPQuestionSource {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &HTTPQuestionSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

func (s *HTTPQuestionSource) Describe(section, topic string) string {
	return fmt.Sprintf("%s/data/%s/%s.json", s.baseURL, url.PathEscape(section), url.PathEscape(topic))
}

// Fetch performs a single GET. There is no retry.
func (s *HTTPQuestionSource) Fetch(ctx context.Context, section, topic string) ([]byte, error) {
	if !ValidSegment(section) || !ValidSegment(topic) {
		return nil, ErrInvalidSegment
	}

	target := s.Describe(section, topic)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{URL: target, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxQuestionPayload))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// ─── Filesystem ──────────────────────────────────────────────────────

// FileQuestionSource reads {dir}/{section}/{topic}.json.
type FileQuestionSource struct {
	dir string
}

// NewFileQuestionSource creates a source rooted at dir.
func NewFileQuestionSource(dir string) *FileQuestionSource {
	return &FileQuestionSource{dir: dir}
}

func (s *FileQuestionSource) Describe(section, topic string) string {
	return filepath.Join(s.dir, section, topic+".json")
}

func (s *FileQuestionSource) Fetch(ctx context.Context, section, topic string) ([]byte, error) {
	if !ValidSegment(section) || !ValidSegment(topic) {
		return nil, ErrInvalidSegment
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.Describe(section, topic))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(io.LimitReader(f, maxQuestionPayload))
}
