package api

import (
	"errors"
	"net/http"

	"github.com/lox/transcriptfmt/internal/models"
	"github.com/lox/transcriptfmt/internal/transcript"
)

// errorHint follows every failure message on the page.
const errorHint = "Please check your input and try again. Make sure the API endpoint is accessible."

// Output templates offered in the advanced options panel. They are not sent
// to the processing endpoint.
var outputTemplates = []string{"Standard Summary", "Detailed Notes", "Action Items", "Executive Brief"}

// PageData is rendered by index.html and result.html.
type PageData struct {
	Input     string
	Loading   bool
	Result    *models.TranscriptResult
	Endpoint  string
	ErrorHint string
	Templates []string
}

func (s *Server) pageData() PageData {
	data := PageData{
		Loading:   s.coord.Loading(),
		Result:    s.coord.Result(),
		Endpoint:  s.endpoint,
		ErrorHint: errorHint,
		Templates: outputTemplates,
	}
	if data.Result != nil {
		data.Input = data.Result.Input
	}
	return data
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if err := s.tmpl.ExecuteTemplate(w, "index.html", s.pageData()); err != nil {
		s.log.Error().Err(err).Msg("template error")
	}
}

func (s *Server) handleResultPartial(w http.ResponseWriter, r *http.Request) {
	if err := s.tmpl.ExecuteTemplate(w, "result.html", s.pageData()); err != nil {
		s.log.Error().Err(err).Msg("template error")
	}
}

// handleSubmit runs one submission. The page script sends HX-Request and
// swaps the returned result panel into place; plain form posts are
// redirected back to the page. Blank input makes no call.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	_, err := s.coord.Submit(r.Context(), r.FormValue("user_input"))
	switch {
	case errors.Is(err, transcript.ErrEmptyInput):
	case errors.Is(err, transcript.ErrBusy):
		http.Error(w, err.Error(), http.StatusConflict)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if r.Header.Get("HX-Request") == "true" {
		s.handleResultPartial(w, r)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
