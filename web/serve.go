package web

import (
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"murmur.town/llm"
	"murmur.town/metrics"
	"murmur.town/relay"
	"murmur.town/snd"
	"murmur.town/stt"
)

// Server holds everything one listener needs: the shared backends, the
// per-session relay config, and the metrics registry exposed at /metrics.
type Server struct {
	backends relay.Backends
	cfg      relay.Config
	metrics  *metrics.Metrics
	registry *prometheus.Registry
	logger   *log.Logger

	maxMessageBytes int64
	upgrader        websocket.Upgrader
}

func NewServer(
	backends relay.Backends,
	cfg relay.Config,
	maxMessageBytes int64,
	logger *log.Logger,
) *Server {
	registry := prometheus.NewRegistry()
	return &Server{
		backends:        backends,
		cfg:             cfg,
		metrics:         metrics.New(registry),
		registry:        registry,
		logger:          logger,
		maxMessageBytes: maxMessageBytes,
		upgrader: websocket.Upgrader{
			// Browser clients connect from arbitrary pages.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/ws", s.handleSocket)
	r.Post("/digest", s.handleDigest)
	r.Handle("/metrics", promhttp.HandlerFor(
		s.registry,
		promhttp.HandlerOpts{},
	))

	return r
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "murmur streaming transcription relay")
	fmt.Fprintln(w, "GET  /ws       websocket session")
	fmt.Fprintln(w, "POST /digest   transcript digest")
	fmt.Fprintln(w, "GET  /metrics  prometheus metrics")
}

func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade", "error", err)
		return
	}

	socket := NewSocket(conn, s.maxMessageBytes)
	defer socket.Close()

	session := relay.NewSession(socket, s.backends, s.cfg, s.metrics, s.logger)
	if err := session.Run(r.Context()); err != nil {
		s.logger.Error("session", "id", session.ID(), "error", err)
	}
}

func (s *Server) Serve(port int) error {
	s.logger.Info("http", "url", fmt.Sprintf("http://localhost:%d", port))
	return http.ListenAndServe(fmt.Sprintf(":%d", port), s.Router())
}

var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the transcription relay server",
	Long:  `This command starts the websocket relay and its HTTP endpoints.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := log.Default()

		ffmpeg, err := snd.NewFFmpeg(
			viper.GetString("ffmpeg_path"),
			time.Duration(viper.GetInt("chunk_seconds"))*time.Second,
			logger,
		)
		if err != nil {
			return err
		}

		whisper := stt.NewWhisper(
			viper.GetString("transcription_api_base_url"),
			viper.GetString("transcription_api_key"),
			logger,
		)
		model := llm.NewOpenAI(
			viper.GetString("llm_api_base_url"),
			viper.GetString("llm_api_key"),
			viper.GetString("llm_model"),
			logger,
		)

		server := NewServer(
			relay.Backends{
				Transcoder:  ffmpeg,
				Splitter:    ffmpeg,
				Transcriber: whisper,
				Model:       model,
			},
			relay.Config{
				HeartbeatInterval: time.Duration(
					viper.GetInt("heartbeat_seconds"),
				) * time.Second,
				WorkDir: viper.GetString("work_dir"),
			},
			viper.GetInt64("max_message_bytes"),
			logger,
		)
		return server.Serve(viper.GetInt("port"))
	},
}
