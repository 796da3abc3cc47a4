// Package vision sends a normalized image to the Anthropic messages API
// and extracts the generated description.
package vision

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

var (
	// ErrAnalysisFailed wraps every analysis failure surfaced to callers.
	ErrAnalysisFailed = errors.New("image analysis failed")
	// ErrServiceUnavailable marks transport failures and timeouts.
	ErrServiceUnavailable = errors.New("analysis service unavailable")
	// ErrServiceError marks a non-success response from the provider.
	ErrServiceError = errors.New("analysis service error")
	// ErrMalformedResponse marks a response without usable text content.
	ErrMalformedResponse = errors.New("malformed analysis response")
)

// Analyzer is the capability the upload pipeline depends on.
type Analyzer interface {
	Analyze(ctx context.Context, imageBytes []byte, mediaType, systemPrompt, userPrompt string) (string, error)
}

// Client calls Claude with vision input. One request per analysis, no retries;
// a failed call aborts the upload it belongs to.
type Client struct {
	api       anthropic.Client
	model     string
	maxTokens int64
	timeout   time.Duration
}

// NewClient builds a Client for the given credentials and bounds.
func NewClient(apiKey, model string, maxTokens int, timeout time.Duration) *Client {
	return &Client{
		api:       anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:     model,
		maxTokens: int64(maxTokens),
		timeout:   timeout,
	}
}

// Analyze submits the image with both prompts as a single multimodal message
// and returns the textual result. The call is bounded by the client timeout.
func (c *Client) Analyze(ctx context.Context, imageBytes []byte, mediaType, systemPrompt, userPrompt string) (string, error) {
	if len(imageBytes) == 0 {
		return "", fmt.Errorf("%w: %w: empty image", ErrAnalysisFailed, ErrMalformedResponse)
	}
	if !isImageMediaType(mediaType) {
		return "", fmt.Errorf("%w: unsupported media type %q", ErrAnalysisFailed, mediaType)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	encoded := base64.StdEncoding.EncodeToString(imageBytes)

	message, err := c.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(userPrompt),
				anthropic.NewImageBlockBase64(mediaType, encoded),
			),
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrAnalysisFailed, classify(err))
	}

	text := extractText(message)
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: %w", ErrAnalysisFailed, ErrMalformedResponse)
	}
	return text, nil
}

// classify folds SDK and transport errors into the package sentinels. The
// provider error detail is kept for logs but the sentinel decides handling.
func classify(err error) error {
	var apierr *anthropic.Error
	if errors.As(err, &apierr) {
		return fmt.Errorf("%w: status %d", ErrServiceError, apierr.StatusCode)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
}

func extractText(message *anthropic.Message) string {
	if message == nil {
		return ""
	}
	var sb strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String()
}

func isImageMediaType(mediaType string) bool {
	switch mediaType {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return true
	}
	return false
}
