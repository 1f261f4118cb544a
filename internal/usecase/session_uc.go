// File: internal/usecase/session_uc.go
package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/kilka221/assistant/internal/domain"
	"github.com/kilka221/assistant/internal/domain/model"
	"github.com/kilka221/assistant/internal/domain/ports/adapter"
	"github.com/kilka221/assistant/internal/domain/ports/repository"
	"github.com/kilka221/assistant/internal/infra/logging"
	"github.com/kilka221/assistant/internal/infra/metrics"
)

// Translator resolves localized engine strings (welcome, system notices).
type Translator interface {
	T(key string, args ...interface{}) string
	Lang() string
}

// TurnOutcome is what one submission produced: the optimistically
// appended user message plus the assistant reply, or a system notice
// when the turn failed. Analysis/ChartPoint are nil when the reply
// carried no analysis section.
type TurnOutcome struct {
	UserMessage model.Message          `json:"userMessage"`
	Reply       model.Message          `json:"reply"`
	Analysis    *model.ClinicalAnalysis `json:"analysis,omitempty"`
	ChartPoint  *model.ChartDataPoint  `json:"chartPoint,omitempty"`
	Failed      bool                   `json:"failed"`
}

// Snapshot is a deep copy of session state handed to the view layer.
type Snapshot struct {
	Identity      model.Identity       `json:"identity"`
	Bundle        *model.SessionBundle `json:"bundle"`
	Language      string               `json:"language"`
	IsLoading     bool                 `json:"isLoading"`
	IsProcessing  bool                 `json:"isProcessing"`
	FreeRemaining int                  `json:"freeRemaining"`
}

// Session owns the authoritative in-memory bundle for one logged-in
// identity. It is constructed at login and persists write-through after
// every mutation. One turn is in flight at a time; the busy flags are
// advisory for the view layer, the mutex guards memory.
type Session struct {
	mu       sync.Mutex
	identity model.Identity
	bundle   *model.SessionBundle
	tr       Translator

	store     repository.SessionStore
	ai        adapter.CompletionAdapter
	freeLimit int

	isLoading    bool
	isProcessing bool

	log *zerolog.Logger
}

// load fails over to a freshly seeded bundle when nothing is stored for
// the identity, and when the stored blob is corrupt (the corrupted data
// is lost; there is no recovery path). Stored blobs missing newer
// profile fields merge over defaults.
func (s *Session) load(ctx context.Context) error {
	seedStatus := s.tr.T("analysis.initial_status")
	seedHyp := s.tr.T("analysis.initial_hypothesis")

	blob, err := s.store.LoadBundle(ctx, s.identity.ID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		s.bundle = model.NewSeededBundle(s.tr.T("chat.welcome", s.identity.Name), seedStatus, seedHyp)
		s.persist(ctx)
	case err != nil:
		return err
	default:
		b, derr := model.DecodeBundle(blob, seedStatus, seedHyp)
		if derr != nil {
			s.log.Error().Err(derr).Str("identity_id", s.identity.ID).Msg("corrupt session bundle, falling back to seeded state")
			b = model.NewSeededBundle(s.tr.T("chat.welcome", s.identity.Name), seedStatus, seedHyp)
			s.bundle = b
			s.persist(ctx)
			return nil
		}
		s.bundle = b
	}
	return nil
}

// SubmitUserMessage runs one turn. The user message is appended and the
// quota consumed before the remote call resolves; neither is rolled
// back on failure (the typed message is kept on purpose). A quota
// rejection mutates nothing and issues no request.
func (s *Session) SubmitUserMessage(ctx context.Context, text string) (*TurnOutcome, error) {
	defer logging.TraceDuration(s.log, "Session.SubmitUserMessage")()

	s.mu.Lock()
	defer s.mu.Unlock()

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.ErrInvalidArgument
	}

	if !s.bundle.Profile.IsSubscribed && s.bundle.Profile.MessageCount >= s.freeLimit {
		metrics.QuotaBlocked()
		return nil, domain.ErrQuotaExceeded
	}

	// History as it stood before this turn; the adapter appends the new
	// text itself and drops system-role entries from the wire transcript.
	history := make([]model.Message, len(s.bundle.Messages))
	copy(history, s.bundle.Messages)

	userMsg := model.NewMessage(model.RoleUser, text)
	s.bundle.AppendMessage(userMsg)
	s.bundle.Profile.MessageCount++
	s.persist(ctx)

	s.isLoading = true
	defer func() { s.isLoading = false }()

	res, err := s.ai.SendTurn(ctx, adapter.TurnRequest{
		History:  history,
		NewText:  text,
		Profile:  s.bundle.Profile,
		UserName: s.identity.Name,
		Previous: s.bundle.Analysis,
	})
	if err != nil {
		s.log.Warn().Err(err).
			Str("identity_id", s.identity.ID).
			Str("text", logging.Redact(text)).
			Msg("turn completion failed")
		notice := model.NewMessage(model.RoleSystem, s.tr.T("chat.connection_lost"))
		s.bundle.AppendMessage(notice)
		s.persist(ctx)
		metrics.TurnCompleted(false)
		return &TurnOutcome{UserMessage: userMsg, Reply: notice, Failed: true}, nil
	}

	reply, point := s.applyTurnResult(res)
	s.persist(ctx)
	metrics.TurnCompleted(true)

	out := &TurnOutcome{UserMessage: userMsg, Reply: reply, ChartPoint: point}
	if res.Analysis != nil {
		a := s.bundle.Analysis
		out.Analysis = &a
	}
	return out, nil
}

func (s *Session) applyTurnResult(res *adapter.TurnResult) (model.Message, *model.ChartDataPoint) {
	reply := model.NewMessage(model.RoleAssistant, res.Response)
	s.bundle.AppendMessage(reply)

	var point *model.ChartDataPoint
	if res.Analysis != nil {
		smooth := model.SmoothSentiment(s.bundle.LastChartSentiment(), res.Analysis.Sentiment)

		a := &s.bundle.Analysis
		a.Sentiment = smooth
		a.Status = res.Analysis.Status
		a.SentimentReasoning = res.Analysis.SentimentReasoning
		a.Triggers = orEmpty(res.Analysis.Triggers)
		a.Recommendations = orEmpty(res.Analysis.Recommendations)

		if res.Hypotheses != nil {
			a.PrimaryHypothesis = res.Hypotheses.Primary
			a.SecondaryHypotheses = res.Hypotheses.Secondary
			if a.SecondaryHypotheses == nil {
				a.SecondaryHypotheses = []model.Hypothesis{}
			}
		}

		p := s.bundle.AppendChartPoint(smooth, res.Analysis.Status, res.Analysis.SentimentReasoning)
		point = &p
	}

	if s.bundle.Profile.IsStoryModeActive && res.NarrativeUpdate != nil && *res.NarrativeUpdate != "" {
		s.bundle.Profile.StoryText = *res.NarrativeUpdate
	}
	return reply, point
}

// ActivateStoryMode generates the initial life-story portrait. Failure
// leaves the profile untouched and surfaces nothing to the user.
func (s *Session) ActivateStoryMode(ctx context.Context, initialText string) error {
	defer logging.TraceDuration(s.log, "Session.ActivateStoryMode")()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.isProcessing = true
	defer func() { s.isProcessing = false }()

	portrait, err := s.ai.InitializeNarrative(ctx, initialText)
	if err != nil {
		s.log.Debug().Err(err).Msg("narrative initialization failed, story mode left inactive")
		return nil
	}

	s.bundle.Profile.IsStoryModeActive = true
	s.bundle.Profile.StoryText = portrait
	s.persist(ctx)
	return nil
}

// UpdateProfile replaces the profile wholesale (settings and manual
// story edits go through here).
func (s *Session) UpdateProfile(ctx context.Context, p model.UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bundle.Profile = p
	s.persist(ctx)
}

// Subscribe is a trusted local transition; the external confirmation
// step is out of scope. Always succeeds and confirms in-transcript.
func (s *Session) Subscribe(ctx context.Context) model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bundle.Profile.IsSubscribed = true
	notice := model.NewMessage(model.RoleSystem, s.tr.T("chat.subscription_active"))
	s.bundle.AppendMessage(notice)
	s.persist(ctx)
	return notice
}

// Snapshot deep-copies current state for the view layer.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	remaining := s.freeLimit - s.bundle.Profile.MessageCount
	if remaining < 0 || s.bundle.Profile.IsSubscribed {
		remaining = 0
	}
	return Snapshot{
		Identity:      s.identity,
		Bundle:        s.bundle.Clone(),
		Language:      s.tr.Lang(),
		IsLoading:     s.isLoading,
		IsProcessing:  s.isProcessing,
		FreeRemaining: remaining,
	}
}

func (s *Session) Identity() model.Identity { return s.identity }

// persist is best-effort write-through: a failed write is logged and
// counted, the in-memory state stays authoritative for the session.
func (s *Session) persist(ctx context.Context) {
	blob, err := s.bundle.Encode()
	if err == nil {
		err = s.store.SaveBundle(ctx, s.identity.ID, blob)
	}
	metrics.BundleWrite(err)
	if err != nil {
		s.log.Error().Err(err).Str("identity_id", s.identity.ID).Msg("bundle write-through failed")
	}
}

func orEmpty(xs []string) []string {
	if xs == nil {
		return []string{}
	}
	return xs
}
