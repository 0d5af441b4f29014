package snd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-audio/wav"
)

// Silence is one low-energy region reported by the detection pass.
type Silence struct {
	Start time.Duration
	End   time.Duration
}

// Mid is the preferred cut point inside the silence.
func (s Silence) Mid() time.Duration {
	return s.Start + (s.End-s.Start)/2
}

// Span is one planned chunk, [Start, End) within the source audio.
type Span struct {
	Start time.Duration
	End   time.Duration
}

// ParseSilences extracts silence regions from ffmpeg silencedetect stderr
// output. Lines look like:
//
//	[silencedetect @ 0x...] silence_start: 12.803
//	[silencedetect @ 0x...] silence_end: 13.52 | silence_duration: 0.717
func ParseSilences(r io.Reader) []Silence {
	var out []Silence
	var start time.Duration
	var open bool

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if v, ok := fieldAfter(line, "silence_start:"); ok {
			start = v
			open = true
		} else if v, ok := fieldAfter(line, "silence_end:"); ok && open {
			out = append(out, Silence{Start: start, End: v})
			open = false
		}
	}
	return out
}

func fieldAfter(line, marker string) (time.Duration, bool) {
	idx := strings.Index(line, marker)
	if idx < 0 {
		return 0, false
	}
	rest := strings.TrimSpace(line[idx+len(marker):])
	if cut := strings.IndexByte(rest, ' '); cut >= 0 {
		rest = rest[:cut]
	}
	seconds, err := strconv.ParseFloat(rest, 64)
	if err != nil {
		return 0, false
	}
	return time.Duration(seconds * float64(time.Second)), true
}

// PlanCuts lays out chunk spans over total, preferring to cut at silence
// midpoints and falling back to a fixed cut when no silence lands inside
// the current window. Spans cover the whole input in order with no gaps.
func PlanCuts(total, maxChunk time.Duration, silences []Silence) []Span {
	if total <= 0 {
		return nil
	}
	if maxChunk <= 0 || total <= maxChunk {
		return []Span{{Start: 0, End: total}}
	}

	var spans []Span
	start := time.Duration(0)
	for total-start > maxChunk {
		window := start + maxChunk
		cut := window
		// Last silence midpoint inside (start, window].
		for _, s := range silences {
			mid := s.Mid()
			if mid > start && mid <= window {
				cut = mid
			}
		}
		spans = append(spans, Span{Start: start, End: cut})
		start = cut
	}
	spans = append(spans, Span{Start: start, End: total})
	return spans
}

// WavDuration probes the audio duration of a WAV file.
func WavDuration(path string) (time.Duration, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open wav: %w", err)
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return 0, fmt.Errorf("not a valid wav file: %s", path)
	}
	duration, err := decoder.Duration()
	if err != nil {
		return 0, fmt.Errorf("probe wav duration: %w", err)
	}
	return duration, nil
}
