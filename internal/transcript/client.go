package transcript

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lox/transcriptfmt/internal/httputil"
	"github.com/lox/transcriptfmt/internal/metrics"
	"github.com/lox/transcriptfmt/internal/models"
)

// DefaultEndpoint is where the processing service listens by default.
const DefaultEndpoint = "http://127.0.0.1:9010/transcript"

// errEmptyBody keeps the result invariant: a success always has content.
var errEmptyBody = errors.New("empty response from processing endpoint")

// Client sends transcripts to the processing endpoint.
type Client struct {
	httpClient *http.Client
	endpoint   string
	log        zerolog.Logger
}

// NewClient creates a client for endpoint. No timeout is set on the
// underlying HTTP client; callers bound requests with their context.
func NewClient(endpoint string, log zerolog.Logger) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		httpClient: httputil.NewClient(0),
		endpoint:   endpoint,
		log:        log.With().Str("component", "transcript").Logger(),
	}
}

// Endpoint returns the configured processing endpoint URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Process makes exactly one request with the trimmed input and always
// returns a result; failures are captured in it rather than returned.
func (c *Client) Process(ctx context.Context, input string) *models.TranscriptResult {
	start := time.Now()
	result := &models.TranscriptResult{
		ID:        uuid.NewString(),
		Input:     strings.TrimSpace(input),
		CreatedAt: start,
	}

	body, err := c.post(ctx, result.ID, result.Input)
	result.Duration = time.Since(start)
	metrics.SubmissionLatency.Observe(result.Duration.Seconds())

	if err == nil && body == "" {
		err = transportError(errEmptyBody)
	}
	if err != nil {
		var te *TransportError
		if !errors.As(err, &te) {
			te = transportError(err)
		}
		result.Success = false
		result.Error = te.Message
		result.StatusCode = te.StatusCode
		metrics.SubmissionsTotal.WithLabelValues("failure").Inc()
		c.log.Warn().Str("id", result.ID).Int("status", te.StatusCode).Err(err).Dur("took", result.Duration).Msg("transcript request failed")
		return result
	}

	result.Success = true
	result.Content = body
	result.StatusCode = http.StatusOK
	metrics.SubmissionsTotal.WithLabelValues("success").Inc()
	c.log.Info().Str("id", result.ID).Int("bytes", len(body)).Dur("took", result.Duration).Msg("transcript processed")
	return result
}

func (c *Client) post(ctx context.Context, id, input string) (string, error) {
	payload, err := json.Marshal(models.TranscriptRequest{UserURL: input})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", transportError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", httputil.UserAgent)
	req.Header.Set("X-Request-ID", id)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Any non-2xx is a failure regardless of body.
		io.Copy(io.Discard, resp.Body)
		return "", statusError(resp.StatusCode)
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", transportError(err)
	}
	return string(b), nil
}
