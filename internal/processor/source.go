package processor

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/lox/transcriptfmt/internal/htmlutil"
	"github.com/lox/transcriptfmt/internal/httputil"
)

// maxPageBytes caps how much of a fetched page is read.
const maxPageBytes = 5 << 20

// Resolver turns user input into transcript text. Plain text passes
// through. A URL is transcribed when a Transcriber is configured, otherwise
// the page it points at is fetched and stripped to text. URLs that resolve
// to private or loopback addresses are refused.
type Resolver struct {
	httpClient   *http.Client
	transcriber  Transcriber
	lookup       lookupFunc
	allowPrivate bool
}

// NewResolver returns a Resolver. transcriber may be nil.
func NewResolver(transcriber Transcriber) *Resolver {
	return &Resolver{
		httpClient:  publicOnlyClient(httputil.DefaultTimeout),
		transcriber: transcriber,
		lookup:      net.DefaultResolver.LookupIPAddr,
	}
}

// IsURL reports whether input is a single absolute http(s) URL.
func IsURL(input string) bool {
	if strings.ContainsAny(input, " \n\t") {
		return false
	}
	u, err := url.Parse(input)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Resolve returns the transcript text for input.
func (r *Resolver) Resolve(ctx context.Context, input string) (string, error) {
	input = strings.TrimSpace(input)
	if !IsURL(input) {
		return input, nil
	}

	if !r.allowPrivate {
		u, _ := url.Parse(input)
		if err := checkHost(ctx, r.lookup, u.Hostname()); err != nil {
			return "", err
		}
	}

	if r.transcriber != nil {
		return r.transcriber.Transcribe(ctx, input)
	}
	return r.fetchPage(ctx, input)
}

func (r *Resolver) fetchPage(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", httputil.UserAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: unexpected status: %d", pageURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", pageURL, err)
	}

	text := string(body)
	if strings.Contains(resp.Header.Get("Content-Type"), "html") {
		text = htmlutil.StripText(text)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("fetch %s: no text found", pageURL)
	}
	return text, nil
}
