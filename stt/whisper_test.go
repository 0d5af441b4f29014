package stt

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"murmur.town/fault"
)

func testAudioFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chunk_000.wav")
	if err := os.WriteFile(path, []byte("RIFFfake"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestWhisperTranscribe(t *testing.T) {
	var gotPath string
	var gotModel string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/transcriptions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		gotModel = r.FormValue("model")
		if f, header, err := r.FormFile("file"); err == nil {
			gotPath = header.Filename
			f.Close()
		}
		json.NewEncoder(w).Encode(map[string]string{"text": " hello world "})
	}))
	defer server.Close()

	w := NewWhisper(server.URL, "", log.Default())
	text, err := w.Transcribe(context.Background(), Request{
		AudioPath:      testAudioFile(t),
		Model:          "Systran/faster-whisper-large-v3",
		Language:       "zh",
		ResponseFormat: "json",
	})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if text != "hello world" {
		t.Errorf("text = %q", text)
	}
	if gotModel != "Systran/faster-whisper-large-v3" {
		t.Errorf("model = %q", gotModel)
	}
	if filepath.Base(gotPath) != "chunk_000.wav" {
		t.Errorf("file = %q", gotPath)
	}
}

func TestWhisperBackendError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model exploded", http.StatusInternalServerError)
	}))
	defer server.Close()

	w := NewWhisper(server.URL, "", log.Default())
	_, err := w.Transcribe(context.Background(), Request{AudioPath: testAudioFile(t)})
	if !fault.Is(err, fault.BackendError) {
		t.Errorf("err = %v, want BackendError", err)
	}
}

func TestWhisperBackendUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing listens any more

	w := NewWhisper(server.URL, "", log.Default())
	_, err := w.Transcribe(context.Background(), Request{AudioPath: testAudioFile(t)})
	if !fault.Is(err, fault.BackendUnavailable) {
		t.Errorf("err = %v, want BackendUnavailable", err)
	}
}
