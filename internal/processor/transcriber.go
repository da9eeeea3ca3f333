package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/lox/transcriptfmt/internal/httputil"
	"github.com/lox/transcriptfmt/internal/metrics"
)

const (
	DefaultAssemblyAIURL = "https://api.assemblyai.com"
	DefaultSpeechModel   = "universal"
	DefaultDownloader    = "yt-dlp"

	defaultPollInterval = 3 * time.Second
	defaultMaxWait      = 30 * time.Minute
)

// Transcriber turns a media URL into transcript text.
type Transcriber interface {
	Transcribe(ctx context.Context, mediaURL string) (string, error)
}

// Downloader fetches the audio track of mediaURL into dir and returns the file path.
type Downloader interface {
	Download(ctx context.Context, mediaURL, dir string) (string, error)
}

// CommandDownloader runs a yt-dlp compatible command. The output template
// and the URL are appended to Args.
type CommandDownloader struct {
	Command string
	Args    []string
}

// NewCommandDownloader returns a downloader that asks command for the best
// m4a audio stream.
func NewCommandDownloader(command string) CommandDownloader {
	if command == "" {
		command = DefaultDownloader
	}
	return CommandDownloader{
		Command: command,
		Args:    []string{"-f", "bestaudio[ext=m4a]/bestaudio", "--no-playlist"},
	}
}

func (d CommandDownloader) Download(ctx context.Context, mediaURL, dir string) (string, error) {
	args := append(append([]string{}, d.Args...), "-o", filepath.Join(dir, "audio.%(ext)s"), mediaURL)
	out, err := exec.CommandContext(ctx, d.Command, args...).CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("%s: %w: %s", d.Command, err, strings.TrimSpace(string(out)))
	}

	matches, err := filepath.Glob(filepath.Join(dir, "audio.*"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", errors.New("audio file was not downloaded")
	}
	return matches[0], nil
}

// AssemblyAI transcribes audio through the AssemblyAI v2 API: upload the
// file, start a transcript, then poll until it completes or fails.
type AssemblyAI struct {
	baseURL     string
	apiKey      string
	speechModel string
	downloader  Downloader
	httpClient  *http.Client
	log         zerolog.Logger

	pollInterval time.Duration
	maxWait      time.Duration
}

func NewAssemblyAI(apiKey, baseURL, speechModel string, downloader Downloader, log zerolog.Logger) (*AssemblyAI, error) {
	if apiKey == "" {
		return nil, errors.New("ASSEMBLYAI_API_KEY environment variable not set")
	}
	if baseURL == "" {
		baseURL = DefaultAssemblyAIURL
	}
	if speechModel == "" {
		speechModel = DefaultSpeechModel
	}
	if downloader == nil {
		downloader = NewCommandDownloader("")
	}
	return &AssemblyAI{
		baseURL:      strings.TrimRight(baseURL, "/"),
		apiKey:       apiKey,
		speechModel:  speechModel,
		downloader:   downloader,
		httpClient:   httputil.NewClient(10 * time.Minute),
		log:          log.With().Str("component", "assemblyai").Logger(),
		pollInterval: defaultPollInterval,
		maxWait:      defaultMaxWait,
	}, nil
}

func (a *AssemblyAI) Transcribe(ctx context.Context, mediaURL string) (string, error) {
	dir, err := os.MkdirTemp("", "transcriptfmt-audio-*")
	if err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	path, err := a.downloader.Download(ctx, mediaURL, dir)
	if err != nil {
		return "", fmt.Errorf("download audio: %w", err)
	}

	uploadURL, err := a.upload(ctx, path)
	if err != nil {
		return "", err
	}

	id, err := a.start(ctx, uploadURL)
	if err != nil {
		return "", err
	}
	a.log.Info().Str("transcript_id", id).Str("media", mediaURL).Msg("transcription started")

	text, err := a.poll(ctx, id)
	if err != nil {
		metrics.TranscriptionsTotal.WithLabelValues("error").Inc()
		return "", err
	}
	metrics.TranscriptionsTotal.WithLabelValues("completed").Inc()
	return text, nil
}

func (a *AssemblyAI) upload(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open audio: %w", err)
	}
	defer f.Close()

	var out struct {
		UploadURL string `json:"upload_url"`
	}
	if err := a.do(ctx, http.MethodPost, "/v2/upload", f, "application/octet-stream", &out); err != nil {
		return "", fmt.Errorf("upload audio: %w", err)
	}
	if out.UploadURL == "" {
		return "", errors.New("upload audio: no upload_url returned")
	}
	return out.UploadURL, nil
}

func (a *AssemblyAI) start(ctx context.Context, audioURL string) (string, error) {
	body, err := json.Marshal(map[string]string{
		"audio_url":    audioURL,
		"speech_model": a.speechModel,
	})
	if err != nil {
		return "", err
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := a.do(ctx, http.MethodPost, "/v2/transcript", bytes.NewReader(body), "application/json", &out); err != nil {
		return "", fmt.Errorf("start transcription: %w", err)
	}
	if out.ID == "" {
		return "", errors.New("start transcription: no id returned")
	}
	return out.ID, nil
}

type transcriptStatus struct {
	Status string `json:"status"`
	Text   string `json:"text"`
	Error  string `json:"error"`
}

// poll waits for the transcript, backing off between checks. An "error"
// status or a 4xx response stops polling immediately.
func (a *AssemblyAI) poll(ctx context.Context, id string) (string, error) {
	var text string
	operation := func() error {
		var st transcriptStatus
		if err := a.do(ctx, http.MethodGet, "/v2/transcript/"+id, nil, "", &st); err != nil {
			var se *statusErr
			if errors.As(err, &se) && se.code < 500 {
				return backoff.Permanent(fmt.Errorf("poll transcription: %w", err))
			}
			return fmt.Errorf("poll transcription: %w", err)
		}

		switch st.Status {
		case "completed":
			text = st.Text
			return nil
		case "error":
			return backoff.Permanent(fmt.Errorf("transcription failed: %s", st.Error))
		default:
			a.log.Debug().Str("transcript_id", id).Str("status", st.Status).Msg("transcription pending")
			return fmt.Errorf("transcription %s", st.Status)
		}
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = a.pollInterval
	bo.MaxInterval = 5 * a.pollInterval
	bo.MaxElapsedTime = a.maxWait
	bo.Reset()

	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		return "", err
	}
	return text, nil
}

type statusErr struct {
	code int
	body string
}

func (e *statusErr) Error() string {
	return fmt.Sprintf("unexpected status: %d: %s", e.code, e.body)
}

func (a *AssemblyAI) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", a.apiKey)
	req.Header.Set("User-Agent", httputil.UserAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &statusErr{code: resp.StatusCode, body: strings.TrimSpace(string(b))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
