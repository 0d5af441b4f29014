package snd

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNewFFmpegParsesWrappedCommand(t *testing.T) {
	f, err := NewFFmpeg("nice -n10 /usr/bin/ffmpeg", 30*time.Second, log.Default())
	if err != nil {
		t.Fatalf("NewFFmpeg: %v", err)
	}
	if len(f.argv) != 3 || f.argv[0] != "nice" || f.argv[2] != "/usr/bin/ffmpeg" {
		t.Errorf("argv = %v", f.argv)
	}
}

func TestNewFFmpegRejectsEmptyCommand(t *testing.T) {
	if _, err := NewFFmpeg("", 30*time.Second, log.Default()); err == nil {
		t.Error("expected an error for empty command")
	}
}

func TestNormalizeArgs(t *testing.T) {
	args := strings.Join(normalizeArgs("in.webm", "out.wav"), " ")

	for _, want := range []string{
		"-i in.webm",
		"-ac 1",
		"-ar 16000",
		"-c:a pcm_s16le",
		"+bitexact",
		"-f wav out.wav",
	} {
		if !strings.Contains(args, want) {
			t.Errorf("normalize args missing %q: %s", want, args)
		}
	}
}

func TestDetectArgs(t *testing.T) {
	args := strings.Join(detectArgs("norm.wav"), " ")
	if !strings.Contains(args, "silencedetect") {
		t.Errorf("detect args missing filter: %s", args)
	}
	if !strings.HasSuffix(args, "-f null -") {
		t.Errorf("detect pass must discard output: %s", args)
	}
}
