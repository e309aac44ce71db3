package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"cliplink/internal/clip/models"
	"cliplink/internal/clip/service"
	"cliplink/internal/clip/token"
)

type Handler struct {
	svc            *service.Service
	tokens         *token.Service
	validate       *validator.Validate
	maxUploadBytes int64
	logger         zerolog.Logger
}

func New(svc *service.Service, tokens *token.Service, maxUploadBytes int64, logger zerolog.Logger) *Handler {
	return &Handler{
		svc:            svc,
		tokens:         tokens,
		validate:       validator.New(validator.WithRequiredStructEnabled()),
		maxUploadBytes: maxUploadBytes,
		logger:         logger.With().Str("component", "httpapi").Logger(),
	}
}

func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "cliplink API",
		"version": "1.0",
		"endpoints": map[string]string{
			"auth":     "POST /auth/token",
			"upload":   "POST /upload",
			"watch":    "GET /watch/{clip_id}",
			"metadata": "GET /api/clips/{clip_id}",
			"by_owner": "GET /api/users/{owner}/clips",
		},
	})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) IssueToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "invalid form body")
		return
	}

	username := r.PostFormValue("username")
	if username == "" {
		writeErrorJSON(w, http.StatusBadRequest, "username is required")
		return
	}

	signed, err := h.tokens.Issue(username)
	if err != nil {
		h.logger.Error().Err(err).Msg("token issue failed")
		writeErrorJSON(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{
		Token:     signed,
		ExpiresIn: int(h.tokens.TTL().Seconds()),
	})
}

// UploadClip accepts a multipart body {file, username, optional media hints}
// plus an optional bearer token. The token is advisory: absent means the
// upload proceeds unauthenticated under the claimed username.
func (h *Handler) UploadClip(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	defer r.Body.Close()

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeErrorJSON(w, http.StatusRequestEntityTooLarge, "upload exceeds size limit")
			return
		}
		writeErrorJSON(w, http.StatusBadRequest, "invalid multipart body")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	form := uploadForm{Username: r.PostFormValue("username")}
	if ok := h.parseHints(w, r, &form); !ok {
		return
	}
	if err := h.validate.Struct(form); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "invalid form fields")
		return
	}

	size := header.Size

	res, err := h.svc.SubmitClip(r.Context(), service.SubmitInput{
		File:        file,
		Filename:    header.Filename,
		Identity:    form.Username,
		Token:       bearerToken(r),
		ContentType: header.Header.Get("Content-Type"),
		Duration:    form.Duration,
		FileSize:    &size,
		Resolution:  form.Resolution,
		FPS:         form.FPS,
		Bitrate:     form.Bitrate,
	})
	if err != nil {
		h.writeSubmitError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, UploadResponse{
		Link:       res.Link,
		ClipID:     res.ClipID,
		StorageURL: res.BlobURL,
	})
}

func (h *Handler) GetClip(w http.ResponseWriter, r *http.Request) {
	clip, err := h.svc.GetClip(r.Context(), chi.URLParam(r, "clipID"))
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound), errors.Is(err, models.ErrInvalidArgument):
			writeErrorJSON(w, http.StatusNotFound, "clip not found")
		default:
			h.logger.Error().Err(err).Msg("clip fetch failed")
			writeErrorJSON(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	writeJSON(w, http.StatusOK, toClipResponse(clip))
}

func (h *Handler) ListOwnerClips(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeErrorJSON(w, http.StatusBadRequest, "invalid limit")
			return
		}
		if n > 200 {
			n = 200
		}
		limit = n
	}

	clips, err := h.svc.ListByOwner(r.Context(), chi.URLParam(r, "owner"), limit)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidArgument):
			writeErrorJSON(w, http.StatusBadRequest, "invalid owner")
		default:
			h.logger.Error().Err(err).Msg("clip list failed")
			writeErrorJSON(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	out := make([]ClipResponse, 0, len(clips))
	for i := range clips {
		out = append(out, toClipResponse(&clips[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{"clips": out})
}

// parseHints reads the optional numeric form fields. A malformed value is a
// client error, not something to silently drop.
func (h *Handler) parseHints(w http.ResponseWriter, r *http.Request, form *uploadForm) bool {
	if v := r.PostFormValue("duration"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeErrorJSON(w, http.StatusBadRequest, "invalid duration")
			return false
		}
		form.Duration = &f
	}
	if v := r.PostFormValue("resolution"); v != "" {
		form.Resolution = &v
	}
	if v := r.PostFormValue("fps"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeErrorJSON(w, http.StatusBadRequest, "invalid fps")
			return false
		}
		form.FPS = &n
	}
	if v := r.PostFormValue("bitrate"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeErrorJSON(w, http.StatusBadRequest, "invalid bitrate")
			return false
		}
		form.Bitrate = &n
	}
	return true
}

func (h *Handler) writeSubmitError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidExtension):
		writeErrorJSON(w, http.StatusBadRequest, "file type not allowed")
	case errors.Is(err, models.ErrInvalidArgument):
		writeErrorJSON(w, http.StatusBadRequest, "invalid argument")
	case errors.Is(err, models.ErrInvalidToken):
		writeErrorJSON(w, http.StatusUnauthorized, "invalid or expired token")
	case errors.Is(err, models.ErrIdentityMismatch):
		writeErrorJSON(w, http.StatusForbidden, "token username mismatch")
	case errors.Is(err, models.ErrConflict):
		writeErrorJSON(w, http.StatusConflict, "conflict")
	default:
		h.logger.Error().Err(err).Msg("upload failed")
		writeErrorJSON(w, http.StatusInternalServerError, "upload failed")
	}
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if tok, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return tok
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorJSON(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
