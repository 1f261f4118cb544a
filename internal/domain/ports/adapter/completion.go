package adapter

import (
	"context"

	"github.com/kilka221/assistant/internal/domain/model"
)

// WireMessage is a chat message in the shape the completion endpoint
// accepts: user/assistant roles only.
type WireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// TurnRequest carries everything one turn sends to the model: the full
// stored history (role filtering happens in the adapter), the new user
// text, and the continuity context interpolated into the system prompt.
type TurnRequest struct {
	History  []model.Message
	NewText  string
	Profile  model.UserProfile
	UserName string
	Previous model.ClinicalAnalysis
}

// TurnAnalysis mirrors the "analysis" object of the strict-JSON reply.
type TurnAnalysis struct {
	Sentiment          float64  `json:"sentiment"`
	SentimentReasoning string   `json:"sentiment_reasoning"`
	Status             string   `json:"status"`
	Triggers           []string `json:"triggers"`
	Recommendations    []string `json:"recommendations"`
}

// TurnHypotheses mirrors the "hypotheses" object of the reply.
type TurnHypotheses struct {
	Primary   model.Hypothesis   `json:"primary"`
	Secondary []model.Hypothesis `json:"secondary"`
}

// TurnResult is the validated reply for one turn. Optional sections are
// nil when the model omitted them; NarrativeUpdate distinguishes JSON
// null (no biography change) from a present rewrite.
type TurnResult struct {
	Response        string          `json:"response"`
	Analysis        *TurnAnalysis   `json:"analysis"`
	Hypotheses      *TurnHypotheses `json:"hypotheses"`
	NarrativeUpdate *string         `json:"narrativeUpdate"`
}

// CompletionAdapter is the port for the hosted model. One round trip per
// call, no retry, no streaming; errors are terminal for the turn.
type CompletionAdapter interface {
	// SendTurn issues one strict-JSON chat completion and returns the
	// decoded result. Any transport or schema failure is an error.
	SendTurn(ctx context.Context, req TurnRequest) (*TurnResult, error)

	// InitializeNarrative generates a structured life-story portrait
	// from free text. On any failure it returns baseInfo unchanged.
	InitializeNarrative(ctx context.Context, baseInfo string) (string, error)
}
