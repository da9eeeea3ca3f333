// Package clipboard copies the plain-text rendition of a result to the
// system clipboard, falling back to an OSC52 terminal escape sequence when
// no clipboard utility is available.
package clipboard

import (
	"errors"
	"fmt"
	"io"

	"github.com/atotto/clipboard"
	"github.com/aymanbagabas/go-osc52/v2"
	"github.com/rs/zerolog"

	"github.com/lox/transcriptfmt/internal/htmlutil"
	"github.com/lox/transcriptfmt/internal/metrics"
)

var (
	// ErrNoContent is returned when there is nothing to copy.
	ErrNoContent = errors.New("no content to copy")
	// ErrUnsupported is returned by SystemWriter when no clipboard utility exists.
	ErrUnsupported = errors.New("system clipboard unsupported")
)

// Path identifies which writer completed a copy.
type Path string

const (
	PathPrimary  Path = "primary"
	PathFallback Path = "fallback"
	PathFailed   Path = "failed"
)

// Writer places text on a clipboard.
type Writer interface {
	WriteText(text string) error
}

// SystemWriter writes through the OS clipboard (pbcopy, xclip, xsel, wl-copy, Windows API).
type SystemWriter struct{}

func (SystemWriter) WriteText(text string) error {
	if clipboard.Unsupported {
		return ErrUnsupported
	}
	return clipboard.WriteAll(text)
}

// OSC52Writer emits an OSC52 sequence, which most terminal emulators turn
// into a clipboard write. Set Tmux when running inside tmux.
type OSC52Writer struct {
	Out  io.Writer
	Tmux bool
}

func (w OSC52Writer) WriteText(text string) error {
	seq := osc52.New(text)
	if w.Tmux {
		seq = seq.Tmux()
	}
	if _, err := seq.WriteTo(w.Out); err != nil {
		return fmt.Errorf("write osc52 sequence: %w", err)
	}
	return nil
}

// Error reports that both clipboard paths failed.
type Error struct {
	Primary  error
	Fallback error
}

func (e *Error) Error() string {
	return fmt.Sprintf("copy failed: %v (fallback: %v)", e.Primary, e.Fallback)
}

func (e *Error) Unwrap() []error {
	return []error{e.Primary, e.Fallback}
}

// Copier converts HTML to text once and writes it through the primary
// writer, retrying the same text through the fallback on failure.
type Copier struct {
	primary   Writer
	fallback  Writer
	indicator *Indicator
	log       zerolog.Logger
}

func NewCopier(primary, fallback Writer, indicator *Indicator, log zerolog.Logger) *Copier {
	return &Copier{
		primary:   primary,
		fallback:  fallback,
		indicator: indicator,
		log:       log.With().Str("component", "clipboard").Logger(),
	}
}

// Indicator returns the copied indicator updated by Copy.
func (c *Copier) Indicator() *Indicator {
	return c.indicator
}

// Copy writes the plain-text form of content and returns the text written
// and the path that succeeded.
func (c *Copier) Copy(content string) (string, Path, error) {
	if content == "" {
		return "", PathFailed, ErrNoContent
	}
	text := htmlutil.ToText(content)

	perr := c.primary.WriteText(text)
	if perr == nil {
		c.done(PathPrimary)
		return text, PathPrimary, nil
	}
	c.log.Warn().Err(perr).Msg("clipboard write failed, using fallback")

	if c.fallback == nil {
		metrics.CopiesTotal.WithLabelValues(string(PathFailed)).Inc()
		return "", PathFailed, &Error{Primary: perr, Fallback: errors.New("no fallback configured")}
	}
	if ferr := c.fallback.WriteText(text); ferr != nil {
		metrics.CopiesTotal.WithLabelValues(string(PathFailed)).Inc()
		return "", PathFailed, &Error{Primary: perr, Fallback: ferr}
	}
	c.done(PathFallback)
	return text, PathFallback, nil
}

func (c *Copier) done(path Path) {
	metrics.CopiesTotal.WithLabelValues(string(path)).Inc()
	if c.indicator != nil {
		c.indicator.Set()
	}
	c.log.Debug().Str("path", string(path)).Msg("copied content")
}
