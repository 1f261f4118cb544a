// File: cmd/demo/main.go
//
// Offline demo: drives the state engine through a scripted conversation
// against the noop completion adapter and prints the resulting chart.
// No network, no database file left behind (in-memory store).
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/kilka221/assistant/internal/domain"
	"github.com/kilka221/assistant/internal/domain/model"
	aiAdapters "github.com/kilka221/assistant/internal/infra/adapters/ai"
	"github.com/kilka221/assistant/internal/infra/i18n"
	"github.com/kilka221/assistant/internal/infra/metrics"
	"github.com/kilka221/assistant/internal/usecase"
)

// memStore is a throwaway in-memory SessionStore for the demo.
type memStore struct {
	mu         sync.Mutex
	identities map[string]model.Identity
	bundles    map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{identities: map[string]model.Identity{}, bundles: map[string][]byte{}}
}

func (m *memStore) ListIdentities(ctx context.Context) ([]model.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Identity, 0, len(m.identities))
	for _, id := range m.identities {
		out = append(out, id)
	}
	return out, nil
}

func (m *memStore) SaveIdentity(ctx context.Context, id model.Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.identities[id.ID]; ok {
		return domain.ErrAlreadyExists
	}
	m.identities[id.ID] = id
	return nil
}

func (m *memStore) FindIdentity(ctx context.Context, id string) (*model.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	identity, ok := m.identities[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &identity, nil
}

func (m *memStore) DeleteIdentity(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.identities[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.identities, id)
	delete(m.bundles, id)
	return nil
}

func (m *memStore) LoadBundle(ctx context.Context, identityID string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	blob, ok := m.bundles[identityID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return blob, nil
}

func (m *memStore) SaveBundle(ctx context.Context, identityID string, blob []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bundles[identityID] = append([]byte(nil), blob...)
	return nil
}

func (m *memStore) DeleteBundle(ctx context.Context, identityID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.bundles, identityID)
	return nil
}

func main() {
	ctx := context.Background()
	logger := zerolog.New(os.Stderr).Level(zerolog.WarnLevel)
	metrics.MustRegister()

	store := newMemStore()
	ai := aiAdapters.NewNoopAdapter()

	tr, err := i18n.NewTranslator(i18n.LocalesFS, "ru")
	if err != nil {
		log.Fatalf("i18n: %v", err)
	}
	translators := map[string]usecase.Translator{"ru": tr}

	sessions := usecase.NewSessionManager(store, ai, translators, "ru", 5, &logger)
	identities := usecase.NewIdentityUseCase(store, sessions, &logger)

	identity, err := identities.Create(ctx, "Алекс")
	if err != nil {
		log.Fatalf("create identity: %v", err)
	}
	sess, err := sessions.Login(ctx, identity.ID, "ru")
	if err != nil {
		log.Fatalf("login: %v", err)
	}

	script := []struct {
		text      string
		sentiment float64
	}{
		{"Сегодня был тяжелый день на работе.", -0.4},
		{"Начальник снова раскритиковал мой отчет.", -0.7},
		{"Но вечером я поговорил с другом, и стало легче.", 0.3},
		{"Кажется, я понял, что слишком строг к себе.", 0.6},
	}

	for _, step := range script {
		ai.Sentiment = step.sentiment
		outcome, err := sess.SubmitUserMessage(ctx, step.text)
		if err != nil {
			log.Fatalf("turn: %v", err)
		}
		fmt.Printf("you: %s\n", step.text)
		fmt.Printf("assistant: %s\n\n", outcome.Reply.Content)
	}

	snap := sess.Snapshot()
	fmt.Println("sentiment trend (delta capped at ±0.25 per turn):")
	for _, p := range snap.Bundle.ChartData {
		fmt.Printf("  step %d: %+0.2f  %s\n", p.Step, p.Sentiment, p.Status)
	}
	fmt.Printf("\nfree messages remaining: %d\n", snap.FreeRemaining)
}
