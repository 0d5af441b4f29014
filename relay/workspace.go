package relay

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
)

// Workspace is the per-session directory that owns every temporary audio
// artifact. No other session may reference its files, and closing it wipes
// whatever an aborted job left behind.
type Workspace struct {
	root   string
	logger *log.Logger
}

func NewWorkspace(baseDir, sessionID string, logger *log.Logger) (*Workspace, error) {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	root := filepath.Join(baseDir, "murmur_"+sessionID)
	if err := os.MkdirAll(filepath.Join(root, "chunks"), 0o755); err != nil {
		return nil, fmt.Errorf("create session workspace: %w", err)
	}
	return &Workspace{root: root, logger: logger}, nil
}

// SaveAudio writes one raw client payload and returns its path.
func (w *Workspace) SaveAudio(fileType string, data []byte) (string, error) {
	name := fmt.Sprintf("audio_%d.%s", time.Now().UnixNano(), fileType)
	path := filepath.Join(w.root, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("save audio: %w", err)
	}
	return path, nil
}

// ChunkDir is where the segmenter drops its cut files.
func (w *Workspace) ChunkDir() string {
	return filepath.Join(w.root, "chunks")
}

// Remove deletes one artifact. Also fine to call for paths already gone.
func (w *Workspace) Remove(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		w.logger.Error("remove artifact", "path", path, "error", err)
	}
}

// Close wipes the whole workspace.
func (w *Workspace) Close() error {
	return os.RemoveAll(w.root)
}

// chunkJob is one unit of work moving through the pipeline. It owns its
// audio file; release deletes it exactly once on whichever exit path runs
// first.
type chunkJob struct {
	id       string
	path     string
	ordinal  int
	work     *Workspace
	released bool
}

func (j *chunkJob) release() {
	if j.released {
		return
	}
	j.released = true
	j.work.Remove(j.path)
}
