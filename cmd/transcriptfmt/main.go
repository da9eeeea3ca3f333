package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"

	"github.com/lox/transcriptfmt/internal/api"
	"github.com/lox/transcriptfmt/internal/clipboard"
	"github.com/lox/transcriptfmt/internal/htmlutil"
	"github.com/lox/transcriptfmt/internal/logging"
	"github.com/lox/transcriptfmt/internal/processor"
	"github.com/lox/transcriptfmt/internal/transcript"
)

type Globals struct {
	LogLevel  string `help:"Log level (debug, info, warn, error)." default:"info" env:"LOG_LEVEL"`
	LogFormat string `help:"Log format." default:"console" enum:"console,json" env:"LOG_FORMAT"`
}

func (g *Globals) logger() zerolog.Logger {
	return logging.New(g.LogLevel, g.LogFormat, os.Stderr)
}

type CLI struct {
	Globals

	Serve     ServeCmd     `cmd:"" default:"1" help:"Run the transcript web UI."`
	Processor ProcessorCmd `cmd:"" help:"Run the transcript processing endpoint."`
	Submit    SubmitCmd    `cmd:"" help:"Submit one transcript and print the plain-text result."`
}

type ServeCmd struct {
	Listen   string `help:"Address to listen on." default:":8080" env:"LISTEN"`
	Endpoint string `help:"Processing endpoint URL." default:"http://127.0.0.1:9010/transcript" env:"TRANSCRIPT_ENDPOINT"`
	Tmux     bool   `help:"Wrap the OSC52 clipboard fallback for tmux." env:"CLIPBOARD_TMUX"`
}

func (c *ServeCmd) Run(g *Globals) error {
	log := g.logger()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	coord := transcript.NewCoordinator(transcript.NewClient(c.Endpoint, log))
	copier := newCopier(c.Tmux, log)
	server := api.NewServer(coord, copier, c.Endpoint, c.Listen, log)
	return server.Run(ctx)
}

type ProcessorCmd struct {
	Listen string `help:"Address to listen on." default:"127.0.0.1:9010" env:"PROCESSOR_LISTEN"`
	APIKey string `help:"OpenAI API key." env:"OPENAI_API_KEY"`
	Model  string `help:"Chat model used to format transcripts." default:"gpt-4o-mini" env:"OPENAI_MODEL"`

	AssemblyAIKey string `name:"assemblyai-key" help:"AssemblyAI API key. Media URLs are fetched as web pages when unset." env:"ASSEMBLYAI_API_KEY"`
	AssemblyAIURL string `name:"assemblyai-url" help:"AssemblyAI API base URL." default:"https://api.assemblyai.com" env:"ASSEMBLYAI_BASE_URL"`
	SpeechModel   string `help:"AssemblyAI speech model." default:"universal" env:"ASSEMBLYAI_SPEECH_MODEL"`
	Downloader    string `help:"yt-dlp compatible command used to fetch audio." default:"yt-dlp" env:"YTDLP_PATH"`
}

func (c *ProcessorCmd) Run(g *Globals) error {
	log := g.logger()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Keep serving without a formatter so callers get a clear 500.
	var formatter processor.Formatter
	if f, err := processor.NewOpenAIFormatter(c.APIKey, c.Model); err != nil {
		log.Error().Err(err).Msg("transcript engine not initialized")
	} else {
		formatter = f
		log.Info().Str("model", c.Model).Msg("transcript engine loaded")
	}

	var transcriber processor.Transcriber
	if t, err := processor.NewAssemblyAI(c.AssemblyAIKey, c.AssemblyAIURL, c.SpeechModel, processor.NewCommandDownloader(c.Downloader), log); err != nil {
		log.Warn().Err(err).Msg("media transcription disabled, URLs are fetched as web pages")
	} else {
		transcriber = t
		log.Info().Str("downloader", c.Downloader).Str("speech_model", c.SpeechModel).Msg("media transcription enabled")
	}

	server := processor.NewServer(c.Listen, formatter, processor.NewResolver(transcriber), log)
	return server.Run(ctx)
}

type SubmitCmd struct {
	Input    string        `arg:"" optional:"" help:"Transcript URL or text. Reads stdin when empty or \"-\"."`
	Endpoint string        `help:"Processing endpoint URL." default:"http://127.0.0.1:9010/transcript" env:"TRANSCRIPT_ENDPOINT"`
	HTML     bool          `help:"Print the returned HTML instead of plain text."`
	Copy     bool          `help:"Copy the plain-text result to the clipboard."`
	Tmux     bool          `help:"Wrap the OSC52 clipboard fallback for tmux." env:"CLIPBOARD_TMUX"`
	Timeout  time.Duration `help:"Give up after this long (0 waits indefinitely)." default:"0s"`
}

func (c *SubmitCmd) Run(g *Globals) error {
	log := g.logger()

	input := c.Input
	if input == "" || input == "-" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		input = string(b)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	if c.Timeout > 0 {
		var tcancel context.CancelFunc
		ctx, tcancel = context.WithTimeout(ctx, c.Timeout)
		defer tcancel()
	}

	coord := transcript.NewCoordinator(transcript.NewClient(c.Endpoint, log))
	result, err := coord.Submit(ctx, input)
	if err != nil {
		return err
	}
	if !result.Success {
		return errors.New(result.Error)
	}

	if c.HTML {
		fmt.Println(htmlutil.BodyHTML(result.Content))
	} else {
		fmt.Println(htmlutil.ToText(result.Content))
	}

	if c.Copy {
		_, path, err := newCopier(c.Tmux, log).Copy(result.Content)
		if err != nil {
			return err
		}
		log.Info().Str("path", string(path)).Msg("copied to clipboard")
	}
	return nil
}

func newCopier(tmux bool, log zerolog.Logger) *clipboard.Copier {
	fallback := clipboard.OSC52Writer{Out: os.Stderr, Tmux: tmux}
	return clipboard.NewCopier(clipboard.SystemWriter{}, fallback, clipboard.NewIndicator(), log)
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("transcriptfmt"),
		kong.Description("Send transcripts to a processing endpoint and copy the formatted result."),
		kong.UsageOnError(),
		kong.Configuration(kongdotenv.ENVFileReader, ".env"),
	)
	ctx.FatalIfErrorf(ctx.Run(&cli.Globals))
}
