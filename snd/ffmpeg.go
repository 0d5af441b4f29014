package snd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-shellwords"

	"murmur.town/fault"
)

// FFmpeg runs the ffmpeg binary for both normalization and chunk cutting.
type FFmpeg struct {
	argv     []string
	maxChunk time.Duration
	logger   *log.Logger
}

// NewFFmpeg parses command as a shell word list so operators can configure
// wrappers ("nice -n10 /usr/bin/ffmpeg").
func NewFFmpeg(
	command string,
	maxChunk time.Duration,
	logger *log.Logger,
) (*FFmpeg, error) {
	argv, err := shellwords.Parse(command)
	if err != nil {
		return nil, fmt.Errorf("parse ffmpeg command: %w", err)
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("ffmpeg command is empty")
	}
	if maxChunk <= 0 {
		maxChunk = 30 * time.Second
	}
	return &FFmpeg{argv: argv, maxChunk: maxChunk, logger: logger}, nil
}

func (f *FFmpeg) run(ctx context.Context, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, f.argv[0], append(append([]string{}, f.argv[1:]...), args...)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stderr.String(), err
}

// normalizeArgs builds the argument list that converts inPath into bitexact
// mono 16 kHz PCM WAV, so identical input bytes produce identical output
// bytes.
func normalizeArgs(inPath, outPath string) []string {
	return []string{
		"-y", "-hide_banner", "-nostdin",
		"-i", inPath,
		"-ac", fmt.Sprint(Channels),
		"-ar", fmt.Sprint(SampleRate),
		"-c:a", "pcm_s16le",
		"-fflags", "+bitexact",
		"-flags:a", "+bitexact",
		"-f", "wav",
		outPath,
	}
}

func (f *FFmpeg) Normalize(ctx context.Context, inPath string) (string, error) {
	outPath := strings.TrimSuffix(inPath, filepath.Ext(inPath)) + "_norm.wav"
	stderr, err := f.run(ctx, normalizeArgs(inPath, outPath))
	if err != nil {
		return "", fault.New(fault.Conversion,
			"normalize %s: %v: %s", filepath.Base(inPath), err, tail(stderr))
	}
	f.logger.Debug("normalized", "in", inPath, "out", outPath)
	return outPath, nil
}

func (f *FFmpeg) Split(ctx context.Context, wavPath, outDir string) (ChunkSeq, error) {
	duration, err := WavDuration(wavPath)
	if err != nil {
		return nil, fault.Wrap(fault.Segmentation, err)
	}

	stderr, err := f.run(ctx, detectArgs(wavPath))
	if err != nil {
		return nil, fault.New(fault.Segmentation,
			"silence scan %s: %v: %s", filepath.Base(wavPath), err, tail(stderr))
	}
	silences := ParseSilences(strings.NewReader(stderr))
	spans := PlanCuts(duration, f.maxChunk, silences)

	f.logger.Debug("split plan",
		"duration", duration, "silences", len(silences), "chunks", len(spans))

	return &segments{
		ffmpeg: f,
		src:    wavPath,
		outDir: outDir,
		spans:  spans,
	}, nil
}

// detectArgs builds the silence-scan pass; output is discarded, the
// detection filter reports on stderr.
func detectArgs(wavPath string) []string {
	return []string{
		"-hide_banner", "-nostdin",
		"-i", wavPath,
		"-af", "silencedetect=noise=-30dB:d=0.5",
		"-f", "null", "-",
	}
}

type segments struct {
	ffmpeg *FFmpeg
	src    string
	outDir string
	spans  []Span
	next   int
}

func (s *segments) Next(ctx context.Context) (string, error) {
	if s.next >= len(s.spans) {
		return "", io.EOF
	}
	span := s.spans[s.next]
	outPath := filepath.Join(s.outDir, fmt.Sprintf("chunk_%03d.wav", s.next))
	args := []string{
		"-y", "-hide_banner", "-nostdin",
		"-ss", formatSeconds(span.Start),
		"-to", formatSeconds(span.End),
		"-i", s.src,
		"-c", "copy",
		outPath,
	}
	stderr, err := s.ffmpeg.run(ctx, args)
	if err != nil {
		return "", fault.New(fault.Segmentation,
			"cut chunk %d: %v: %s", s.next, err, tail(stderr))
	}
	s.next++
	return outPath, nil
}

func formatSeconds(d time.Duration) string {
	return fmt.Sprintf("%.3f", d.Seconds())
}

// tail trims ffmpeg stderr to its informative last lines.
func tail(s string) string {
	s = strings.TrimSpace(s)
	lines := strings.Split(s, "\n")
	if len(lines) > 3 {
		lines = lines[len(lines)-3:]
	}
	return strings.Join(lines, " / ")
}
