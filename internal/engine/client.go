// Package engine is the HTTP client for the remote processing service that
// performs transcription and subtitle synthesis. The service's internals
// are opaque; only the wire contract lives here.
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"
)

// Word is one word-level timing entry of a transcript.
type Word struct {
	Text    string  `json:"text"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker"`
}

// TranscriptResult is the parsed response of a transcription call.
type TranscriptResult struct {
	Text            string
	Words           []Word
	DurationSeconds float64
}

// TransportError wraps failures to reach the engine at all: DNS, refused
// connections, timeouts.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return "engine unreachable: " + e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }

// RemoteError is an error reported by the engine itself: an error status,
// a success:false payload, or a response body that cannot be parsed.
type RemoteError struct {
	Status  int // 0 when the HTTP status was fine but the payload was not
	Message string
}

func (e *RemoteError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("engine error (status %d): %s", e.Status, e.Message)
	}
	return "engine error: " + e.Message
}

// Client talks to the processing engine.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the engine at baseURL. The timeout bounds each
// call end to end; transcription of long media can take a while.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// transcribeResponse mirrors the engine's JSON shape.
type transcribeResponse struct {
	Success  bool    `json:"success"`
	Error    string  `json:"error"`
	Text     string  `json:"text"`
	Words    []Word  `json:"words"`
	Duration float64 `json:"duration"`
}

// Transcribe uploads the media file and returns the parsed transcript.
func (c *Client) Transcribe(ctx context.Context, filePath, fileName string) (*TranscriptResult, error) {
	resp, err := c.postFile(ctx, "/transcribe", filePath, fileName)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &RemoteError{Status: resp.StatusCode, Message: errorMessage(body)}
	}

	var parsed transcribeResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &RemoteError{Message: "malformed response body"}
	}
	if !parsed.Success {
		msg := parsed.Error
		if msg == "" {
			msg = "transcription failed"
		}
		return nil, &RemoteError{Message: msg}
	}

	return &TranscriptResult{
		Text:            parsed.Text,
		Words:           parsed.Words,
		DurationSeconds: parsed.Duration,
	}, nil
}

// RenderSubtitles uploads the media file and returns the subtitled video
// as an opaque byte stream. The caller closes the stream.
func (c *Client) RenderSubtitles(ctx context.Context, filePath, fileName string) (io.ReadCloser, error) {
	resp, err := c.postFile(ctx, "/upload/video", filePath, fileName)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &RemoteError{Status: resp.StatusCode, Message: errorMessage(body)}
	}

	return resp.Body, nil
}

// postFile sends the media file as a multipart form with field "file".
func (c *Client) postFile(ctx context.Context, endpoint, filePath, fileName string) (*http.Response, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open media file: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("copy media data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	url := c.baseURL + endpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	log.Printf("[engine] POST %s (%s)", url, fileName)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	return resp, nil
}

// errorMessage extracts {"error": "..."} from an error body, falling back
// to the raw text.
func errorMessage(body []byte) string {
	var parsed struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != "" {
		return parsed.Error
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200] + "..."
	}
	if msg == "" {
		msg = "no error detail"
	}
	return msg
}
