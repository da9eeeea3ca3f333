package processor

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/lox/transcriptfmt/internal/metrics"
	"github.com/lox/transcriptfmt/internal/models"
)

// DefaultListen is the address the processing endpoint binds by default.
const DefaultListen = "127.0.0.1:9010"

const maxRequestBytes = 1 << 20

// Server is the transcript processing endpoint: it accepts
// {"user_url": ...}, formats the transcript and answers with HTML.
type Server struct {
	listen    string
	formatter Formatter
	resolver  *Resolver
	validate  *validator.Validate
	log       zerolog.Logger
}

// NewServer creates the endpoint. A nil formatter is allowed; requests then
// fail with 500 until the service is configured.
func NewServer(listen string, formatter Formatter, resolver *Resolver, log zerolog.Logger) *Server {
	if listen == "" {
		listen = DefaultListen
	}
	if resolver == nil {
		resolver = NewResolver(nil)
	}
	return &Server{
		listen:    listen,
		formatter: formatter,
		resolver:  resolver,
		validate:  validator.New(),
		log:       log.With().Str("component", "processor").Logger(),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/transcript", s.handleTranscript)
	mux.HandleFunc("/health", s.handleHealth)
	return withCORS(mux)
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

	s.log.Info().Str("listen", s.listen).Msg("starting processing endpoint")
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		s.fail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}
	if s.formatter == nil {
		s.fail(w, http.StatusInternalServerError, "Transcript engine not initialized.")
		return
	}

	var req models.TranscriptRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes))
	if err := dec.Decode(&req); err != nil {
		s.fail(w, http.StatusUnprocessableEntity, "invalid request body: "+err.Error())
		return
	}
	req.UserURL = strings.TrimSpace(req.UserURL)
	if err := s.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			s.fail(w, http.StatusUnprocessableEntity, "user_url: "+verrs[0].Tag())
			return
		}
		s.fail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	start := time.Now()
	reqID := r.Header.Get("X-Request-ID")
	transcript, err := s.resolver.Resolve(r.Context(), req.UserURL)
	if err != nil {
		s.log.Error().Str("id", reqID).Err(err).Msg("resolve input")
		s.fail(w, http.StatusInternalServerError, "Transcript transformation error: "+err.Error())
		return
	}

	formatted, err := s.formatter.Format(r.Context(), transcript)
	if err != nil {
		s.log.Error().Str("id", reqID).Err(err).Msg("format transcript")
		s.fail(w, http.StatusInternalServerError, "Transcript transformation error: "+err.Error())
		return
	}

	s.log.Info().Str("id", reqID).Int("chars", len(transcript)).Dur("took", time.Since(start)).Msg("transcript formatted")
	metrics.ProcessorRequestsTotal.WithLabelValues(strconv.Itoa(http.StatusOK)).Inc()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(RenderHTML(formatted)))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if s.formatter == nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(map[string]string{"status": status}); err != nil {
		s.log.Warn().Err(err).Msg("health: write response")
	}
}

func (s *Server) fail(w http.ResponseWriter, code int, detail string) {
	metrics.ProcessorRequestsTotal.WithLabelValues(strconv.Itoa(code)).Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}

// withCORS allows any origin so the page can call the endpoint directly.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
