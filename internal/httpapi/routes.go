package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/cardduel/draft-backend/internal/hub"
	"github.com/cardduel/draft-backend/internal/session"
	"github.com/cardduel/draft-backend/internal/ws"
)

func SetupRoutes(svc *session.Service, h *hub.Hub, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Post("/rooms/{id}/join", JoinRoom(svc))
		r.Get("/rooms/{id}", GetRoom(svc))
		r.Get("/games/{id}", EnsureGame(svc))
		r.Post("/games/{id}/pick", Pick(svc))
	})
	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(svc, h, log))

	return r
}
