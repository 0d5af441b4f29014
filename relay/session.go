package relay

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"murmur.town/etc"
	"murmur.town/fault"
	"murmur.town/llm"
	"murmur.town/metrics"
	"murmur.town/snd"
	"murmur.town/stt"
)

// Backends are the external collaborators one session dispatches to. All of
// them are shared across sessions and must be safe for concurrent use.
type Backends struct {
	Transcoder  snd.Transcoder
	Splitter    snd.Splitter
	Transcriber stt.Transcriber
	Model       llm.LanguageModel
}

type Config struct {
	// HeartbeatInterval between unsolicited keepalive events.
	HeartbeatInterval time.Duration
	// WorkDir hosts per-session workspaces; empty means the OS temp dir.
	WorkDir string
}

const DefaultHeartbeatInterval = 50 * time.Second

// Session owns one client connection: it reads commands, runs the chunk
// pipeline strictly one job at a time, and pushes results back in order.
type Session struct {
	id       string
	ch       Channel
	backends Backends
	cfg      Config
	metrics  *metrics.Metrics
	logger   *log.Logger

	work  *Workspace
	queue chan *Command

	// epoch is bumped by Stop; a job that captured an older epoch discards
	// its results instead of emitting them.
	epoch atomic.Int64
}

func NewSession(
	ch Channel,
	backends Backends,
	cfg Config,
	m *metrics.Metrics,
	logger *log.Logger,
) *Session {
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = DefaultHeartbeatInterval
	}
	id := etc.NewFreshID()
	return &Session{
		id:       id,
		ch:       ch,
		backends: backends,
		cfg:      cfg,
		metrics:  m,
		logger:   logger.With("session", id),
		queue:    make(chan *Command, 16),
	}
}

func (s *Session) ID() string {
	return s.id
}

// Run services the connection until the channel closes, then releases every
// session resource. It blocks.
func (s *Session) Run(ctx context.Context) error {
	work, err := NewWorkspace(s.cfg.WorkDir, s.id, s.logger)
	if err != nil {
		return err
	}
	s.work = work

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.metrics.ActiveSessions.Inc()
	defer s.metrics.ActiveSessions.Dec()
	s.logger.Info("session open")

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		s.heartbeat(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for cmd := range s.queue {
			if ctx.Err() != nil {
				continue
			}
			s.process(ctx, cmd)
		}
	}()

	s.read(ctx)

	// Channel is gone: no new work may start, in-flight work settles, then
	// the workspace is wiped.
	cancel()
	close(s.queue)
	wg.Wait()

	s.logger.Info("session closed")
	return s.work.Close()
}

// read handles inbound frames until the channel closes. Ping and Stop act
// immediately; audio-bearing commands queue behind the pipeline.
func (s *Session) read(ctx context.Context) {
	for {
		raw, err := s.ch.Next()
		if err != nil {
			return
		}

		cmd, err := ParseCommand(raw)
		if err != nil {
			s.metrics.ProtocolErrors.Inc()
			s.emit(ErrorEvent(err.Error()))
			continue
		}
		s.metrics.CommandsReceived.WithLabelValues(cmd.Type).Inc()

		switch cmd.Type {
		case CommandPing:
			s.emit(PongEvent())
		case CommandStop:
			s.epoch.Add(1)
			s.logger.Info("stop", "epoch", s.epoch.Load())
		default:
			select {
			case s.queue <- cmd:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (s *Session) heartbeat(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.HeartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.emit(StatusEvent("keepalive"))
		}
	}
}

// process runs one audio-bearing command through transcode, optional
// segmentation, and the per-chunk pipeline, one chunk at a time.
func (s *Session) process(ctx context.Context, cmd *Command) {
	epoch := s.epoch.Load()

	raw, err := s.work.SaveAudio(cmd.FileType, cmd.Audio)
	if err != nil {
		s.emit(ErrorEvent(fmt.Sprintf("store audio: %v", err)))
		return
	}

	if cmd.Type == CommandUpload {
		s.emit(StatusEvent("upload received"))
	}

	normalized, err := s.backends.Transcoder.Normalize(ctx, raw)
	s.work.Remove(raw)
	if err != nil {
		s.fail(ctx, epoch, err)
		return
	}

	if cmd.Type == CommandAudio {
		job := &chunkJob{id: etc.NewFreshID(), path: normalized, work: s.work}
		s.runJob(ctx, epoch, cmd, job)
		return
	}

	defer s.work.Remove(normalized)

	seq, err := s.backends.Splitter.Split(ctx, normalized, s.work.ChunkDir())
	if err != nil {
		s.fail(ctx, epoch, err)
		return
	}

	ordinal := 0
	for ctx.Err() == nil && s.epoch.Load() == epoch {
		path, err := seq.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Later chunks can't be ordered once the segmenter fails, so
			// the whole upload stops here.
			s.fail(ctx, epoch, err)
			return
		}
		job := &chunkJob{
			id:      etc.NewFreshID(),
			path:    path,
			ordinal: ordinal,
			work:    s.work,
		}
		s.runJob(ctx, epoch, cmd, job)
		ordinal++
	}

	if ctx.Err() == nil && s.epoch.Load() == epoch {
		s.emit(StatusEvent("processing complete"))
	}
}

// runJob takes one chunk through transcribe and, for translation or
// conversation, generate. The job's artifact is released on every path out.
func (s *Session) runJob(ctx context.Context, epoch int64, cmd *Command, job *chunkJob) {
	defer job.release()
	defer s.metrics.ChunksProcessed.Inc()

	data, err := os.ReadFile(job.path)
	if err != nil {
		s.emit(ErrorEvent(fmt.Sprintf("chunk %d: read audio: %v", job.ordinal+1, err)))
		return
	}
	audio := base64.StdEncoding.EncodeToString(data)

	started := time.Now()
	text, err := s.backends.Transcriber.Transcribe(ctx, stt.Request{
		AudioPath:      job.path,
		Model:          cmd.Model,
		Language:       cmd.Language,
		ResponseFormat: cmd.ResponseFormat,
		Temperature:    cmd.Temperature,
	})
	s.metrics.TranscribeDuration.Observe(time.Since(started).Seconds())
	if s.discard(ctx, epoch) {
		return
	}
	if err != nil {
		s.fail(ctx, epoch, fmt.Errorf("chunk %d: %w", job.ordinal+1, err))
		return
	}

	s.emit(TranscriptionEvent(job.id, text, audio))

	// Silence produces an empty transcript; there is nothing to translate
	// or reply to.
	if cmd.Operation == OpTranscription || text == "" {
		return
	}

	prompt, err := llm.PromptFor(llm.Task(cmd.Operation), cmd.OutputLanguage, text)
	if err != nil {
		s.emit(ErrorEvent(fmt.Sprintf("chunk %d: %v", job.ordinal+1, err)))
		return
	}

	started = time.Now()
	reply, err := s.backends.Model.Complete(ctx, prompt)
	s.metrics.GenerateDuration.Observe(time.Since(started).Seconds())
	if s.discard(ctx, epoch) {
		return
	}
	if err != nil {
		s.fail(ctx, epoch, fmt.Errorf("chunk %d: %w", job.ordinal+1, err))
		return
	}

	s.emit(GeneratedEvent(cmd.Operation, job.id, reply, audio))
}

// discard reports whether results arriving now belong to a stopped command
// or a closed session and must not be emitted.
func (s *Session) discard(ctx context.Context, epoch int64) bool {
	return ctx.Err() != nil || s.epoch.Load() != epoch
}

// fail reports one job-level failure as a single error event. The session,
// its heartbeat, and any queued work continue.
func (s *Session) fail(ctx context.Context, epoch int64, err error) {
	kind, ok := fault.KindOf(err)
	if !ok {
		kind = fault.BackendError
	}
	s.metrics.JobFailures.WithLabelValues(kind.String()).Inc()
	s.logger.Error("job failed", "kind", kind.String(), "error", err)
	if s.discard(ctx, epoch) {
		return
	}
	s.emit(ErrorEvent(err.Error()))
}

func (s *Session) emit(ev Event) {
	s.metrics.EventsEmitted.WithLabelValues(ev.Type).Inc()
	if err := s.ch.Emit(ev); err != nil {
		s.logger.Debug("emit failed", "type", ev.Type, "error", err)
	}
}
