package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cardduel/draft-backend/internal/draft"
	"github.com/cardduel/draft-backend/internal/room"
	"github.com/cardduel/draft-backend/internal/session"
	"github.com/cardduel/draft-backend/pkg/types"
)

// The polling surface mirrors the websocket operations as stateless JSON
// calls: every response carries an "ok" flag plus either a payload or an
// error code.

func JoinRoom(svc *session.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := chi.URLParam(r, "id")

		var body struct {
			PlayerID string `json:"playerId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.PlayerID == "" {
			writeError(w, http.StatusBadRequest, types.CodeBadPayload)
			return
		}

		res, err := svc.JoinRoom(r.Context(), roomID, body.PlayerID)
		if err != nil {
			writeError(w, statusFor(err), session.ErrorCode(err))
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"ok":     true,
			"room":   res.Room,
			"youAre": res.Seat,
			"reason": res.Reason,
		})
	}
}

func GetRoom(svc *session.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rm, err := svc.EnsureRoom(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, "server_error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"id":      rm.ID,
			"status":  rm.Status,
			"players": rm.Players,
		})
	}
}

func EnsureGame(svc *session.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := svc.EnsureGame(r.Context(), chi.URLParam(r, "id"))
		if errors.Is(err, draft.ErrRoomNotReady) {
			writeError(w, http.StatusConflict, "waiting_for_opponent")
			return
		}
		if err != nil {
			writeError(w, statusFor(err), session.ErrorCode(err))
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "game": snap})
	}
}

func Pick(svc *session.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := chi.URLParam(r, "id")

		var body struct {
			PlayerID string `json:"playerId"`
			Card     string `json:"card"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.PlayerID == "" || body.Card == "" {
			writeError(w, http.StatusBadRequest, types.CodeBadPayload)
			return
		}

		snap, err := svc.Pick(r.Context(), roomID, body.PlayerID, body.Card)
		if err != nil {
			writeError(w, statusFor(err), session.ErrorCode(err))
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "game": snap})
	}
}

func Healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, room.ErrRoomFull):
		return http.StatusConflict
	case errors.Is(err, session.ErrGameNotFound):
		return http.StatusNotFound
	case errors.Is(err, draft.ErrNotYourTurn),
		errors.Is(err, draft.ErrInvalidPlayer),
		errors.Is(err, draft.ErrInvalidCard),
		errors.Is(err, draft.ErrCardAlreadyTaken),
		errors.Is(err, draft.ErrDraftFinished):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]any{"ok": false, "error": code})
}
