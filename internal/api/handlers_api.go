package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lox/transcriptfmt/internal/clipboard"
	"github.com/lox/transcriptfmt/internal/htmlutil"
	"github.com/lox/transcriptfmt/internal/models"
)

// successContent returns the HTML of the current result when it succeeded.
func (s *Server) successContent() (string, bool) {
	r := s.coord.Result()
	if r == nil || !r.Success || r.Content == "" {
		return "", false
	}
	return r.Content, true
}

// handleCopyText serves the plain-text rendition for the page's clipboard script.
func (s *Server) handleCopyText(w http.ResponseWriter, r *http.Request) {
	content, ok := s.successContent()
	if !ok {
		http.Error(w, "no processed transcript", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(htmlutil.ToText(content)))
}

type copyResponse struct {
	Path   clipboard.Path `json:"path"`
	Copied bool           `json:"copied"`
	Text   string         `json:"text"`
}

// handleAPICopy places the text on the host's clipboard.
func (s *Server) handleAPICopy(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	content, ok := s.successContent()
	if !ok {
		http.Error(w, clipboard.ErrNoContent.Error(), http.StatusNotFound)
		return
	}

	text, path, err := s.copier.Copy(content)
	if err != nil {
		var cerr *clipboard.Error
		if errors.As(err, &cerr) {
			s.log.Error().Err(err).Msg("copy failed on both paths")
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, copyResponse{Path: path, Copied: s.copier.Indicator().Copied(), Text: text})
}

type stateResponse struct {
	Loading bool                     `json:"loading"`
	Copied  bool                     `json:"copied"`
	Result  *models.TranscriptResult `json:"result"`
}

func (s *Server) handleAPIState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, stateResponse{
		Loading: s.coord.Loading(),
		Copied:  s.copier.Indicator().Copied(),
		Result:  s.coord.Result(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"status":   "ok",
		"loading":  s.coord.Loading(),
		"endpoint": s.endpoint,
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
