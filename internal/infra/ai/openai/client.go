package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	domai "github.com/fanoo2/backend/internal/domain/ai"
	"github.com/fanoo2/backend/internal/infra/ai/prompt"
)

const (
	defaultModel     = "gpt-4o"
	defaultMaxTokens = 800
	defaultTimeout   = 20 * time.Second
)

// Options configures the annotator client
type Options struct {
	APIKey      string
	Model       string
	BaseURL     string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
}

// Client annotates text through the chat completions API in JSON mode.
type Client struct {
	api         *openai.Client
	configured  bool
	model       string
	maxTokens   int
	temperature float32
	timeout     time.Duration
}

func NewClient(opt Options) *Client {
	cfg := openai.DefaultConfig(opt.APIKey)
	if opt.BaseURL != "" {
		cfg.BaseURL = opt.BaseURL
	}
	timeout := opt.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}

	c := &Client{
		api:         openai.NewClientWithConfig(cfg),
		configured:  strings.TrimSpace(opt.APIKey) != "",
		model:       opt.Model,
		maxTokens:   opt.MaxTokens,
		temperature: opt.Temperature,
		timeout:     timeout,
	}
	if c.model == "" {
		c.model = defaultModel
	}
	if c.maxTokens <= 0 {
		c.maxTokens = defaultMaxTokens
	}
	return c
}

// Annotate makes a single completion request; there are no retries.
func (c *Client) Annotate(ctx context.Context, text string) ([]string, error) {
	if !c.configured {
		return nil, domai.ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: c.model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.GetSystemPrompt()},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: c.temperature,
	}
	// Reasoning models (o1/o3/o4/gpt-5*) take MaxCompletionTokens and reject a temperature
	if isReasoningModel(c.model) {
		req.MaxCompletionTokens = c.maxTokens
		req.Temperature = 0
	} else {
		req.MaxTokens = c.maxTokens
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, classify(err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return nil, domai.ErrEmptyResponse
	}

	return parseAnnotations(resp.Choices[0].Message.Content)
}

func isReasoningModel(model string) bool {
	for _, p := range []string{"o1", "o3", "o4", "gpt-5"} {
		if strings.HasPrefix(model, p) {
			return true
		}
	}
	return false
}

// parseAnnotations enforces {"annotations": [string, ...]}.
func parseAnnotations(content string) ([]string, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", domai.ErrMalformedResponse, err)
	}
	field, ok := raw["annotations"]
	if !ok {
		return nil, fmt.Errorf("%w: missing annotations field", domai.ErrMalformedResponse)
	}
	// pointers keep null elements distinguishable from empty strings
	var items []*string
	if err := json.Unmarshal(field, &items); err != nil || items == nil {
		return nil, fmt.Errorf("%w: annotations must be an array of strings", domai.ErrMalformedResponse)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: annotations is empty", domai.ErrMalformedResponse)
	}
	var out prompt.Completion
	out.Annotations = make([]string, 0, len(items))
	for i, item := range items {
		if item == nil {
			return nil, fmt.Errorf("%w: annotation %d is null", domai.ErrMalformedResponse, i)
		}
		out.Annotations = append(out.Annotations, *item)
	}
	return out.Annotations, nil
}

// classify maps go-openai errors onto the provider taxonomy.
func classify(err error) error {
	status := 0
	msg := err.Error()

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
		msg = apiErr.Message
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}

	switch status {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", domai.ErrUnauthorized, msg)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", domai.ErrRateLimited, msg)
	case http.StatusForbidden:
		return fmt.Errorf("%w: %s", domai.ErrForbidden, msg)
	default:
		return fmt.Errorf("%w: %s", domai.ErrProvider, msg)
	}
}
