package api

import (
	"context"
	"html/template"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/lox/transcriptfmt/internal/clipboard"
	"github.com/lox/transcriptfmt/internal/transcript"
)

// Server is the transcript processor web UI.
type Server struct {
	coord    *transcript.Coordinator
	copier   *clipboard.Copier
	endpoint string
	listen   string
	tmpl     *template.Template
	log      zerolog.Logger
}

// NewServer wires the UI to a coordinator and a host clipboard copier.
// endpoint is only shown on the page and in /health.
func NewServer(coord *transcript.Coordinator, copier *clipboard.Copier, endpoint, listen string, log zerolog.Logger) *Server {
	return &Server{
		coord:    coord,
		copier:   copier,
		endpoint: endpoint,
		listen:   listen,
		tmpl:     newTemplates(),
		log:      log.With().Str("component", "api").Logger(),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/submit", s.handleSubmit)
	mux.HandleFunc("/partials/result", s.handleResultPartial)
	mux.HandleFunc("/copy", s.handleCopyText)
	mux.HandleFunc("/api/copy", s.handleAPICopy)
	mux.HandleFunc("/api/state", s.handleAPIState)
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:    s.listen,
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	s.log.Info().Str("listen", s.listen).Str("endpoint", s.endpoint).Msg("starting server")
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
