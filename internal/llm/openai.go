package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Compile-time interface check
var _ Client = (*OpenAI)(nil)

// CompletionsService defines the interface for making chat completion API calls.
// This abstraction enables testing without calling the real OpenAI API.
type CompletionsService interface {
	New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// OpenAI implements Client using OpenAI's chat completions API.
type OpenAI struct {
	completions CompletionsService
}

// Options configures the OpenAI client.
type Options struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// NewOpenAI creates a chat client. SDK retries are disabled: every logical
// operation makes a single attempt.
func NewOpenAI(opts Options) *OpenAI {
	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithMaxRetries(0),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	if opts.Timeout > 0 {
		reqOpts = append(reqOpts, option.WithRequestTimeout(opts.Timeout))
	}
	client := openai.NewClient(reqOpts...)
	return &OpenAI{completions: client.Chat.Completions}
}

// Complete sends the system and user messages and returns the first choice's content.
func (o *OpenAI) Complete(ctx context.Context, req Request) (string, error) {
	resp, err := o.completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			openai.UserMessage(req.User),
		}),
		Model: openai.F(openai.ChatModel(req.Model)),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrGenerationFailed, req.Task, err)
	}

	if resp == nil || len(resp.Choices) == 0 {
		return "", nil
	}

	return resp.Choices[0].Message.Content, nil
}
