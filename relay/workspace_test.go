package relay

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
)

func testWorkspace(t *testing.T) *Workspace {
	t.Helper()
	work, err := NewWorkspace(t.TempDir(), "test", log.New(io.Discard))
	if err != nil {
		t.Fatal(err)
	}
	return work
}

func TestWorkspaceSaveAudio(t *testing.T) {
	work := testWorkspace(t)

	path, err := work.SaveAudio("webm", []byte{1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Ext(path) != ".webm" {
		t.Errorf("path = %q, want .webm extension", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "\x01\x02\x03" {
		t.Errorf("stored bytes = %v", data)
	}
}

func TestWorkspaceRemoveMissingIsQuiet(t *testing.T) {
	work := testWorkspace(t)
	work.Remove(filepath.Join(work.ChunkDir(), "not_there.wav"))
	work.Remove("")
}

func TestWorkspaceCloseWipesEverything(t *testing.T) {
	work := testWorkspace(t)

	if _, err := work.SaveAudio("wav", []byte("x")); err != nil {
		t.Fatal(err)
	}
	chunk := filepath.Join(work.ChunkDir(), "chunk_000.wav")
	if err := os.WriteFile(chunk, []byte("y"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := work.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(work.root); !os.IsNotExist(err) {
		t.Errorf("workspace root still exists: %v", err)
	}
}

func TestChunkJobReleaseIsIdempotent(t *testing.T) {
	work := testWorkspace(t)

	path := filepath.Join(work.ChunkDir(), "chunk_000.wav")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	job := &chunkJob{id: "j", path: path, work: work}
	job.release()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("chunk still exists after release: %v", err)
	}
	job.release()
	job.release()
}
