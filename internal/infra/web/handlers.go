package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kilka221/assistant/internal/domain"
	"github.com/kilka221/assistant/internal/domain/model"
	"github.com/kilka221/assistant/internal/infra/logging"
)

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// ----- identities -----

func (s *Server) handleListIdentities(w http.ResponseWriter, r *http.Request) {
	list, err := s.identities.List(r.Context())
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list identities")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"identities": list})
}

func (s *Server) handleCreateIdentity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	identity, err := s.identities.Create(r.Context(), req.Name)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			jsonError(w, http.StatusBadRequest, "name is required")
			return
		}
		jsonError(w, http.StatusInternalServerError, "failed to create identity")
		return
	}
	writeJSON(w, http.StatusCreated, identity)
}

func (s *Server) handleDeleteIdentity(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.identities.Delete(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			jsonError(w, http.StatusNotFound, "identity not found")
			return
		}
		jsonError(w, http.StatusInternalServerError, "failed to delete identity")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ----- session lifecycle -----

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IdentityID string `json:"identity_id"`
		Language   string `json:"language"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sess, err := s.sessions.Login(r.Context(), req.IdentityID, req.Language)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			jsonError(w, http.StatusNotFound, "identity not found")
		case errors.Is(err, domain.ErrUnsupportedLang):
			jsonError(w, http.StatusBadRequest, "unsupported language")
		default:
			logging.With(r.Context(), s.log).Error().Err(err).Msg("login failed")
			jsonError(w, http.StatusInternalServerError, "login failed")
		}
		return
	}

	snap := sess.Snapshot()
	if _, err := s.auth.Mint(w, req.IdentityID, snap.Language); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to mint session token")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	s.sessions.Logout(sess.Identity().ID)
	s.auth.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sessionFrom(r).Snapshot())
}

// ----- chat turns -----

func (s *Server) handleSubmitMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	outcome, err := sessionFrom(r).SubmitUserMessage(r.Context(), req.Text)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrQuotaExceeded):
			// The view layer responds by opening the subscription prompt.
			jsonError(w, http.StatusPaymentRequired, "quota_exceeded")
		case errors.Is(err, domain.ErrInvalidArgument):
			jsonError(w, http.StatusBadRequest, "text is required")
		default:
			logging.With(r.Context(), s.log).Error().Err(err).Msg("turn failed")
			jsonError(w, http.StatusInternalServerError, "turn failed")
		}
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

// ----- profile/story/subscription -----

func (s *Server) handleActivateStory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sess := sessionFrom(r)
	if err := sess.ActivateStoryMode(r.Context(), req.Text); err != nil {
		jsonError(w, http.StatusInternalServerError, "story activation failed")
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var profile model.UserProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sess := sessionFrom(r)
	sess.UpdateProfile(r.Context(), profile)
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	notice := sess.Subscribe(r.Context())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"confirmation": notice,
		"snapshot":     sess.Snapshot(),
	})
}

// ----- static content -----

func (s *Server) handlePolicy(w http.ResponseWriter, r *http.Request) {
	lang := r.URL.Query().Get("lang")
	text, ok := s.policies[lang]
	if !ok {
		jsonError(w, http.StatusBadRequest, "unsupported language")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"lang": lang, "policy": text})
}
