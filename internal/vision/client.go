// Package vision sends analysis requests to a vision-capable
// chat-completions model service.
package vision

import (
	"context"
	"errors"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/docsight/docsight/internal/config"
	"github.com/docsight/docsight/internal/domain"
)

// insightsHeading prefixes answers produced from page images. Presentation
// convention only; the model output is returned otherwise untouched.
const insightsHeading = "### Insights\n\n"

// Client is an immutable model service client. Construct it once at startup
// and inject it wherever analysis is needed.
type Client struct {
	api       openai.Client
	model     string
	maxTokens int64
	timeout   time.Duration
}

// NewClient creates a client for the configured model service. An empty
// BaseURL targets the default OpenAI endpoint; any OpenAI-compatible backend
// works through cfg.BaseURL.
func NewClient(cfg *config.VisionConfig, apiKey string) *Client {
	// Every failure is terminal for its request; the SDK's default retry
	// policy would hide that.
	opts := []option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &Client{
		api:       openai.NewClient(opts...),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		timeout:   cfg.Timeout(),
	}
}

// Analyze sends one composite user message, the prompt followed by the
// images in order, and returns the extracted answer text. When images were
// present the answer is prefixed with a fixed markdown heading. The call is
// bounded by the configured timeout; nothing is retried.
func (c *Client) Analyze(ctx context.Context, prompt string, images []domain.ImagePayload) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:     c.model,
		Messages:  []openai.ChatCompletionMessageParamUnion{buildMessage(prompt, images)},
		MaxTokens: openai.Int(c.maxTokens),
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			return "", domain.TimeoutError("model service call timed out", err)
		}
		return "", domain.UpstreamError("model service request failed", err)
	}
	if len(resp.Choices) == 0 {
		return "", domain.UpstreamError("model service returned no choices", nil)
	}

	answer := resp.Choices[0].Message.Content
	if len(images) > 0 {
		answer = insightsHeading + answer
	}
	return answer, nil
}

// buildMessage assembles the single user message: the text prompt first,
// then one inline image per payload, preserving page order.
func buildMessage(prompt string, images []domain.ImagePayload) openai.ChatCompletionMessageParamUnion {
	if len(images) == 0 {
		return openai.UserMessage(prompt)
	}
	parts := make([]openai.ChatCompletionContentPartUnionParam, 0, len(images)+1)
	parts = append(parts, openai.TextContentPart(prompt))
	for _, img := range images {
		parts = append(parts, openai.ImageContentPart(
			openai.ChatCompletionContentPartImageImageURLParam{URL: img.DataURI()},
		))
	}
	return openai.UserMessage(parts)
}
