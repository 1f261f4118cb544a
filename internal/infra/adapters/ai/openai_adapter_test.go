//go:build !integration

package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kilka221/assistant/internal/domain"
	"github.com/kilka221/assistant/internal/domain/model"
	"github.com/kilka221/assistant/internal/domain/ports/adapter"
)

func testAdapter(baseURL string) *OpenAICompatAdapter {
	// Built directly to skip the tiktoken vocabulary download.
	return &OpenAICompatAdapter{
		apiKey: "test-key",
		base:   baseURL,
		model:  "gpt-4o-mini",
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

func chatCompletion(content string) string {
	b, _ := json.Marshal(map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	})
	return string(b)
}

func TestOpenAICompatSendTurn(t *testing.T) {
	var captured completionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("auth header = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chatCompletion(`{"response": "Понимаю.", "analysis": {"sentiment": -0.4, "status": "Валидация"}}`)))
	}))
	defer srv.Close()

	a := testAdapter(srv.URL)
	res, err := a.SendTurn(context.Background(), adapter.TurnRequest{
		History:  []model.Message{{Role: model.RoleUser, Content: "Тяжелый день."}},
		NewText:  "Начальник критиковал отчет.",
		UserName: "Алекс",
	})
	if err != nil {
		t.Fatalf("SendTurn: %v", err)
	}
	if res.Response != "Понимаю." || res.Analysis == nil || res.Analysis.Sentiment != -0.4 {
		t.Errorf("unexpected result: %+v", res)
	}

	if captured.Temperature != turnTemperature {
		t.Errorf("temperature = %v, want %v", captured.Temperature, turnTemperature)
	}
	if captured.ResponseFormat == nil || captured.ResponseFormat.Type != "json_object" {
		t.Errorf("response_format = %+v, want json_object", captured.ResponseFormat)
	}
	if len(captured.Messages) != 3 { // system + 1 history + new text
		t.Fatalf("wire messages = %d, want 3", len(captured.Messages))
	}
	if captured.Messages[0].Role != "system" {
		t.Errorf("first wire message role = %s, want system", captured.Messages[0].Role)
	}
	if last := captured.Messages[2]; last.Role != "user" || last.Content != "Начальник критиковал отчет." {
		t.Errorf("last wire message = %+v", last)
	}
}

func TestOpenAICompatSendTurnErrors(t *testing.T) {
	t.Run("http error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer srv.Close()

		if _, err := testAdapter(srv.URL).SendTurn(context.Background(), adapter.TurnRequest{NewText: "x"}); err == nil {
			t.Fatal("expected error for HTTP 429")
		}
	})

	t.Run("empty choices", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"choices": []}`))
		}))
		defer srv.Close()

		_, err := testAdapter(srv.URL).SendTurn(context.Background(), adapter.TurnRequest{NewText: "x"})
		if !errors.Is(err, domain.ErrEmptyCompletion) {
			t.Fatalf("err = %v, want ErrEmptyCompletion", err)
		}
	})

	t.Run("non-json completion content", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(chatCompletion("plain prose, not the contract")))
		}))
		defer srv.Close()

		_, err := testAdapter(srv.URL).SendTurn(context.Background(), adapter.TurnRequest{NewText: "x"})
		if !errors.Is(err, domain.ErrMalformedResult) {
			t.Fatalf("err = %v, want ErrMalformedResult", err)
		}
	})
}

func TestOpenAICompatInitializeNarrative(t *testing.T) {
	t.Run("returns generated portrait", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req completionRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			if req.ResponseFormat != nil {
				t.Error("narrative calls must not force json_object")
			}
			if req.Temperature != narrativeTemperature {
				t.Errorf("temperature = %v, want %v", req.Temperature, narrativeTemperature)
			}
			_, _ = w.Write([]byte(chatCompletion("### Портрет")))
		}))
		defer srv.Close()

		got, err := testAdapter(srv.URL).InitializeNarrative(context.Background(), "Я вырос на севере.")
		if err != nil {
			t.Fatalf("InitializeNarrative: %v", err)
		}
		if got != "### Портрет" {
			t.Errorf("portrait = %q", got)
		}
	})

	t.Run("degrades to the input on failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		got, err := testAdapter(srv.URL).InitializeNarrative(context.Background(), "исходный текст")
		if err != nil {
			t.Fatalf("narrative failure must not surface: %v", err)
		}
		if got != "исходный текст" {
			t.Errorf("got %q, want the original text back", got)
		}
	})
}
