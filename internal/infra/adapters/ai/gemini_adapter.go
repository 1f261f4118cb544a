package ai

import (
	"context"
	"errors"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/kilka221/assistant/internal/domain/ports/adapter"
	"github.com/kilka221/assistant/internal/infra/metrics"
)

var _ adapter.CompletionAdapter = (*GeminiAdapter)(nil)

// GeminiAdapter implements the completion port via the official SDK,
// selected when only a Gemini key is configured.
type GeminiAdapter struct {
	client *genai.Client
	model  string
}

func NewGeminiAdapter(ctx context.Context, apiKey, model string) (*GeminiAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: empty api key")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &GeminiAdapter{client: c, model: model}, nil
}

func (g *GeminiAdapter) SendTurn(ctx context.Context, req adapter.TurnRequest) (*adapter.TurnResult, error) {
	contents := toGenAIContents(buildTranscript(req))
	cfg := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr[float32](turnTemperature),
		ResponseMIMEType:  "application/json",
		SystemInstruction: genai.NewContentFromText(buildSystemPrompt(req), genai.RoleUser),
	}

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	metrics.ObserveCompletionCall("gemini", g.model, 0, int(time.Since(start).Milliseconds()), err == nil)
	if err != nil {
		return nil, err
	}
	return decodeTurnResult(resp.Text())
}

func (g *GeminiAdapter) InitializeNarrative(ctx context.Context, baseInfo string) (string, error) {
	contents := []*genai.Content{genai.NewContentFromText(narrativePrompt(baseInfo), genai.RoleUser)}
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](narrativeTemperature),
	}

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	metrics.ObserveCompletionCall("gemini", g.model, 0, int(time.Since(start).Milliseconds()), err == nil)
	if err != nil {
		return baseInfo, nil
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return baseInfo, nil
	}
	return text, nil
}

func toGenAIContents(messages []adapter.WireMessage) []*genai.Content {
	out := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		role := genai.Role(genai.RoleUser)
		if m.Role == "assistant" {
			role = genai.RoleModel
		}
		out = append(out, genai.NewContentFromText(m.Content, role))
	}
	return out
}
