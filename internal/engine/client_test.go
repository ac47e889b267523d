package engine

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeTempMedia(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.wav")
	if err := os.WriteFile(path, []byte("fake-audio-data"), 0644); err != nil {
		t.Fatalf("write temp media: %v", err)
	}
	return path
}

func TestTranscribeSuccess(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/transcribe" {
			t.Errorf("path = %s, want /transcribe", r.URL.Path)
		}
		if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			t.Errorf("content-type = %s, want multipart", r.Header.Get("Content-Type"))
		}

		if err := r.ParseMultipartForm(10 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		f, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer f.Close()
		if header.Filename != "clip.wav" {
			t.Errorf("filename = %s, want clip.wav", header.Filename)
		}
		data, _ := io.ReadAll(f)
		if string(data) != "fake-audio-data" {
			t.Errorf("uploaded content = %q", data)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"success": true,
			"text": "hello world",
			"words": [
				{"text": "hello", "start": 0.1, "end": 0.5, "speaker": "A"},
				{"text": "world", "start": 0.6, "end": 1.0, "speaker": "B"}
			],
			"duration": 600
		}`))
	}))
	defer ts.Close()

	c := New(ts.URL, 5*time.Second)
	result, err := c.Transcribe(context.Background(), writeTempMedia(t), "clip.wav")
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}

	if result.Text != "hello world" {
		t.Errorf("text = %q", result.Text)
	}
	if len(result.Words) != 2 || result.Words[1].Speaker != "B" {
		t.Errorf("unexpected words: %+v", result.Words)
	}
	if result.DurationSeconds != 600 {
		t.Errorf("duration = %v, want 600", result.DurationSeconds)
	}
}

func TestTranscribeRemoteFailurePayload(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success": false, "error": "no audio track"}`))
	}))
	defer ts.Close()

	c := New(ts.URL, 5*time.Second)
	_, err := c.Transcribe(context.Background(), writeTempMedia(t), "clip.wav")

	var remote *RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("expected RemoteError, got %v", err)
	}
	if remote.Message != "no audio track" {
		t.Errorf("message = %q", remote.Message)
	}
}

func TestTranscribeNon2xx(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model not loaded"}`, http.StatusInternalServerError)
	}))
	defer ts.Close()

	c := New(ts.URL, 5*time.Second)
	_, err := c.Transcribe(context.Background(), writeTempMedia(t), "clip.wav")

	var remote *RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("expected RemoteError, got %v", err)
	}
	if remote.Status != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", remote.Status)
	}
	if remote.Message != "model not loaded" {
		t.Errorf("message = %q", remote.Message)
	}
}

func TestTranscribeMalformedBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer ts.Close()

	c := New(ts.URL, 5*time.Second)
	_, err := c.Transcribe(context.Background(), writeTempMedia(t), "clip.wav")

	var remote *RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("expected RemoteError, got %v", err)
	}
}

func TestTranscribeTransportError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() // refuse connections

	c := New(ts.URL, time.Second)
	_, err := c.Transcribe(context.Background(), writeTempMedia(t), "clip.wav")

	var transport *TransportError
	if !errors.As(err, &transport) {
		t.Fatalf("expected TransportError, got %v", err)
	}
}

func TestRenderSubtitlesSuccess(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/upload/video" {
			t.Errorf("path = %s, want /upload/video", r.URL.Path)
		}
		w.Header().Set("Content-Type", "video/mp4")
		w.Write([]byte("subtitled-video-bytes"))
	}))
	defer ts.Close()

	c := New(ts.URL, 5*time.Second)
	body, err := c.RenderSubtitles(context.Background(), writeTempMedia(t), "clip.wav")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if string(data) != "subtitled-video-bytes" {
		t.Errorf("body = %q", data)
	}
}

func TestRenderSubtitlesNon2xx(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "out of disk", http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	c := New(ts.URL, 5*time.Second)
	_, err := c.RenderSubtitles(context.Background(), writeTempMedia(t), "clip.wav")

	var remote *RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("expected RemoteError, got %v", err)
	}
	if remote.Status != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", remote.Status)
	}
	if remote.Message != "out of disk" {
		t.Errorf("message = %q", remote.Message)
	}
}
