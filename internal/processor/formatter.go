package processor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o-mini"

// Formatter restructures raw transcript text into topic-grouped markdown.
type Formatter interface {
	Format(ctx context.Context, transcript string) (string, error)
}

// OpenAIFormatter formats transcripts with a chat completion.
type OpenAIFormatter struct {
	client openai.Client
	model  string
}

// NewOpenAIFormatter returns an error when apiKey is empty so the endpoint
// can report itself as not initialised instead of failing per request.
func NewOpenAIFormatter(apiKey, model string, opts ...option.RequestOption) (*OpenAIFormatter, error) {
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY environment variable not set")
	}
	if model == "" {
		model = DefaultModel
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &OpenAIFormatter{
		client: openai.NewClient(opts...),
		model:  model,
	}, nil
}

func (f *OpenAIFormatter) Format(ctx context.Context, transcript string) (string, error) {
	resp, err := f.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(f.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(BuildPrompt(transcript)),
		},
		Temperature: openai.Float(0.2),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices returned")
	}
	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		return "", errors.New("empty completion returned")
	}
	return out, nil
}

const systemPrompt = `You format raw transcripts into structured, readable notes.
Never invent content. Keep the original wording and sentence order.`

// BuildPrompt wraps the transcript in formatting instructions. The output
// shape (--- separators, ### headings, - bullets) is what RenderHTML expects.
func BuildPrompt(transcript string) string {
	var sb strings.Builder
	sb.WriteString("Reformat the transcript between the markers.\n\n")
	sb.WriteString("<transcript-start>\n")
	sb.WriteString(transcript)
	sb.WriteString("\n<transcript-end>\n\n")
	sb.WriteString(`Steps:
1. Find the distinct discussion topics, reusing the exact words of the transcript for their names.
2. List every topic under a "Topics Discussed" heading.
3. Under a heading per topic, place the transcript lines that belong to it.
4. Drop timestamps and speaker labels.

Output only this structure:

---

### Topics Discussed
- <topic 1>
- <topic 2>

---

### <topic 1>
<lines for topic 1>

---

### <topic 2>
<lines for topic 2>

---
`)
	return sb.String()
}
