package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/", h.Root)
	r.Get("/health", h.Health)

	r.Post("/auth/token", h.IssueToken)
	r.Post("/upload", h.UploadClip)

	r.Get("/watch/{clipID}", h.WatchPage)
	r.Get("/api/clips/{clipID}", h.GetClip)
	r.Get("/api/users/{owner}/clips", h.ListOwnerClips)

	return r
}
