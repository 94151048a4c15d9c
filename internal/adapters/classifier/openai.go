package classifier

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/okian/hangout/internal/domain/model"
	"github.com/okian/hangout/pkg/metrics"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o-mini"
	defaultTimeout = 15 * time.Second
	maxReplyBytes  = 1 << 20
)

const systemPrompt = `You are an intelligent event matcher for a social platform called "Hangout Buddies".
Your goal is to match a user's natural language request with the available events.

Return a JSON object with:
1. "matches": an array of EXACT event IDs (strings) from the provided list that match the user's intent.
2. "reasoning": a short, friendly sentence explaining why you picked these events.

IMPORTANT Rules:
- Use the EXACT 'id' field provided in the JSON. Do not hallucinate or modify IDs.
- Be flexible. If the user asks for "sports", include anything physical like hiking, biking, yoga, or basketball.
- If the user asks for "food", include dining, networking with food, or social events.
- If nothing fits well, return an empty matches array.`

// OpenAIClient calls an OpenAI-compatible chat completions endpoint in
// JSON mode.
type OpenAIClient struct {
	apiKey  string
	baseURL string
	model   string
	timeout time.Duration
	http    *http.Client
}

// Option configures an OpenAIClient.
type Option func(*OpenAIClient)

// WithBaseURL sets the API root, e.g. "https://api.openai.com/v1".
func WithBaseURL(u string) Option {
	return func(c *OpenAIClient) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithModel sets the chat model.
func WithModel(m string) Option {
	return func(c *OpenAIClient) {
		if m != "" {
			c.model = m
		}
	}
}

// WithTimeout bounds each call.
func WithTimeout(d time.Duration) Option {
	return func(c *OpenAIClient) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *OpenAIClient) {
		if h != nil {
			c.http = h
		}
	}
}

// NewOpenAIClient returns a client using apiKey for bearer auth.
func NewOpenAIClient(apiKey string, opts ...Option) *OpenAIClient {
	c := &OpenAIClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		model:   defaultModel,
		timeout: defaultTimeout,
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	ResponseFormat responseFormat `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Classify sends the query and candidate summaries to the model.
func (c *OpenAIClient) Classify(ctx context.Context, query string, candidates []model.EventSummary) (Result, error) {
	if c.apiKey == "" {
		return Result{}, ErrNotConfigured
	}
	start := time.Now()
	res, err := c.classify(ctx, query, candidates)
	metrics.RecordClassifierLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordClassifierError(Kind(err))
	}
	return res, err
}

func (c *OpenAIClient) classify(ctx context.Context, query string, candidates []model.EventSummary) (Result, error) {
	catalog, err := json.Marshal(candidates)
	if err != nil {
		return Result{}, fmt.Errorf("encode candidates: %w", err)
	}
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: fmt.Sprintf("User Request: %q\n\nAvailable Events:\n%s", query, catalog)},
		},
		ResponseFormat: responseFormat{Type: "json_object"},
	})
	if err != nil {
		return Result{}, fmt.Errorf("encode request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return Result{}, fmt.Errorf("%w: read reply: %w", ErrUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{}, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var chat chatResponse
	if err := json.Unmarshal(raw, &chat); err != nil {
		return Result{}, fmt.Errorf("%w: decode completion: %w", ErrMalformed, err)
	}
	if len(chat.Choices) == 0 {
		return Result{}, fmt.Errorf("%w: no choices", ErrMalformed)
	}
	return ParseReply(chat.Choices[0].Message.Content)
}

// ParseReply decodes the model's content into a Result. Markdown code
// fences around the JSON are tolerated. A missing "matches" key is an empty
// match list.
func ParseReply(content string) (Result, error) {
	content = stripFences(content)
	if content == "" {
		return Result{}, fmt.Errorf("%w: empty content", ErrMalformed)
	}
	var res Result
	if err := json.Unmarshal([]byte(content), &res); err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return res, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// Drop the info string, e.g. "json".
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = ""
	}
	s = strings.TrimSpace(s)
	return strings.TrimSpace(strings.TrimSuffix(s, "```"))
}
