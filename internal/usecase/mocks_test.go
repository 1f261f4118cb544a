// File: internal/usecase/mocks_test.go
package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/kilka221/assistant/internal/domain"
	"github.com/kilka221/assistant/internal/domain/model"
	"github.com/kilka221/assistant/internal/domain/ports/adapter"
)

// memStore is a small in-memory SessionStore used by unit tests.
type memStore struct {
	mu         sync.Mutex
	identities map[string]model.Identity
	bundles    map[string][]byte
	saveErr    error // used by tests to simulate write failures
}

func newMemStore() *memStore {
	return &memStore{identities: make(map[string]model.Identity), bundles: make(map[string][]byte)}
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
	return append([]byte(nil), blob...), nil
}

func (m *memStore) SaveBundle(ctx context.Context, identityID string, blob []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.bundles[identityID] = append([]byte(nil), blob...)
	return nil
}

func (m *memStore) DeleteBundle(ctx context.Context, identityID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.bundles, identityID)
	return nil
}

// fakeAI is a scriptable CompletionAdapter.
type fakeAI struct {
	mu           sync.Mutex
	turnCalls    int
	lastRequest  adapter.TurnRequest
	result       *adapter.TurnResult
	turnErr      error
	narrative    string
	narrativeErr error
}

func (f *fakeAI) SendTurn(ctx context.Context, req adapter.TurnRequest) (*adapter.TurnResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.turnCalls++
	f.lastRequest = req
	if f.turnErr != nil {
		return nil, f.turnErr
	}
	if f.result != nil {
		return f.result, nil
	}
	return &adapter.TurnResult{Response: "ok"}, nil
}

func (f *fakeAI) InitializeNarrative(ctx context.Context, baseInfo string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.narrativeErr != nil {
		return "", f.narrativeErr
	}
	if f.narrative != "" {
		return f.narrative, nil
	}
	return baseInfo, nil
}

func (f *fakeAI) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.turnCalls
}

// fakeTranslator returns the key itself (formatted), so assertions can
// match on keys instead of locale text.
type fakeTranslator struct{ lang string }

func (f fakeTranslator) T(key string, args ...interface{}) string {
	if len(args) > 0 {
		return fmt.Sprintf(key+":%v", args...)
	}
	return key
}

func (f fakeTranslator) Lang() string { return f.lang }

func testLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func newTestManager(store *memStore, ai *fakeAI, freeLimit int) *sessionManager {
	translators := map[string]Translator{
		"ru": fakeTranslator{lang: "ru"},
		"en": fakeTranslator{lang: "en"},
	}
	return NewSessionManager(store, ai, translators, "ru", freeLimit, testLogger())
}

func mustIdentity(store *memStore, name string) model.Identity {
	id, err := model.NewIdentity(name)
	if err != nil {
		panic(err)
	}
	if err := store.SaveIdentity(context.Background(), *id); err != nil {
		panic(err)
	}
	return *id
}
