package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pkoukk/tiktoken-go"

	"github.com/kilka221/assistant/internal/domain"
	"github.com/kilka221/assistant/internal/domain/ports/adapter"
	"github.com/kilka221/assistant/internal/infra/metrics"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.CompletionAdapter = (*OpenAICompatAdapter)(nil)

const (
	turnTemperature      = 0.3 // low temperature keeps the JSON stable
	narrativeTemperature = 0.5
)

// OpenAICompatAdapter implements the completion port against any
// OpenAI-compatible chat-completions gateway. Base URL is configurable;
// chat completions path is the standard /chat/completions.
type OpenAICompatAdapter struct {
	apiKey string
	base   string // e.g., https://api.openai.com/v1
	model  string
	client *http.Client
	enc    *tiktoken.Tiktoken
}

func NewOpenAICompatAdapter(apiKey, model, base string) (*OpenAICompatAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("completion api key empty")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	if base == "" {
		base = "https://api.openai.com/v1"
	}
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		// Gateways expose models tiktoken has never heard of; the
		// cl100k_base vocabulary is a close enough count for metrics.
		// Token accounting is best-effort: a nil encoder reports 0.
		enc, _ = tiktoken.GetEncoding("cl100k_base")
	}
	return &OpenAICompatAdapter{
		apiKey: apiKey,
		base:   strings.TrimRight(base, "/"),
		model:  model,
		client: &http.Client{Timeout: 60 * time.Second},
		enc:    enc,
	}, nil
}

type completionRequest struct {
	Model          string                `json:"model"`
	Messages       []adapter.WireMessage `json:"messages"`
	Temperature    float64               `json:"temperature"`
	ResponseFormat *responseFormat       `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

func (o *OpenAICompatAdapter) SendTurn(ctx context.Context, req adapter.TurnRequest) (*adapter.TurnResult, error) {
	wire := make([]adapter.WireMessage, 0, len(req.History)+2)
	wire = append(wire, adapter.WireMessage{Role: "system", Content: buildSystemPrompt(req)})
	wire = append(wire, buildTranscript(req)...)

	raw, err := o.complete(ctx, completionRequest{
		Model:          o.model,
		Messages:       wire,
		Temperature:    turnTemperature,
		ResponseFormat: &responseFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, err
	}
	return decodeTurnResult(raw)
}

// InitializeNarrative degrades gracefully: the caller gets the original
// text back on any failure, never an error.
func (o *OpenAICompatAdapter) InitializeNarrative(ctx context.Context, baseInfo string) (string, error) {
	raw, err := o.complete(ctx, completionRequest{
		Model:       o.model,
		Messages:    []adapter.WireMessage{{Role: "user", Content: narrativePrompt(baseInfo)}},
		Temperature: narrativeTemperature,
	})
	if err != nil || strings.TrimSpace(raw) == "" {
		return baseInfo, nil
	}
	return raw, nil
}

func (o *OpenAICompatAdapter) complete(ctx context.Context, body completionRequest) (string, error) {
	start := time.Now()
	raw, err := o.doComplete(ctx, body)
	metrics.ObserveCompletionCall(
		"openai", o.model,
		o.countTokens(body.Messages),
		int(time.Since(start).Milliseconds()),
		err == nil,
	)
	return raw, err
}

func (o *OpenAICompatAdapter) doComplete(ctx context.Context, body completionRequest) (string, error) {
	b, _ := json.Marshal(body)
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, o.base+"/chat/completions", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("completion http %d", resp.StatusCode)
	}

	var payload struct {
		Choices []struct {
			Message adapter.WireMessage `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrMalformedResult, err)
	}
	for _, c := range payload.Choices {
		if c.Message.Content != "" {
			return c.Message.Content, nil
		}
	}
	return "", domain.ErrEmptyCompletion
}

func (o *OpenAICompatAdapter) countTokens(messages []adapter.WireMessage) int {
	if o.enc == nil {
		return 0
	}
	n := 0
	for _, m := range messages {
		n += len(o.enc.Encode(m.Content, nil, nil))
	}
	return n
}
