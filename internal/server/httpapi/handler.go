// Package httpapi exposes the upload service over HTTP. Ciphertext travels
// as raw bodies; public metadata as JSON or in the X-Upload-Metadata header.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/uploadhaven/internal/api"
	"github.com/dmitrijs2005/uploadhaven/internal/common"
	"github.com/dmitrijs2005/uploadhaven/internal/logging"
	"github.com/dmitrijs2005/uploadhaven/internal/server/models"
	"github.com/dmitrijs2005/uploadhaven/internal/server/services"
	"github.com/dmitrijs2005/uploadhaven/internal/sharelink"
	"github.com/gorilla/mux"
)

// Uploads is the part of services.UploadService the API needs.
type Uploads interface {
	Store(ctx context.Context, meta *api.UploadMetadata, body []byte) (*models.Upload, error)
	Stat(ctx context.Context, shortID string) (*models.Upload, error)
	Fetch(ctx context.Context, shortID, token string) ([]byte, *models.Upload, error)
	Authorize(ctx context.Context, shortID, password string) (string, error)
}

const maxJSONBody = 4 << 10

type Handler struct {
	uploads Uploads
	log     logging.Logger
	maxBody int64
	now     func() time.Time
}

func NewHandler(uploads Uploads, log logging.Logger, maxBody int64) *Handler {
	return &Handler{uploads: uploads, log: log, maxBody: maxBody, now: time.Now}
}

// RegisterRoutes registers all API routes.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc(api.RouteHealth, h.handleHealth).Methods(http.MethodGet)
	r.HandleFunc(api.RouteFiles, h.handleUpload).Methods(http.MethodPost)
	r.HandleFunc(api.RouteMeta, h.handleMeta).Methods(http.MethodGet)
	r.HandleFunc(api.RouteFile, h.handleHead).Methods(http.MethodHead)
	r.HandleFunc(api.RouteBlob, h.handleBlob).Methods(http.MethodGet)
	r.HandleFunc(api.RouteAccess, h.handleAccess).Methods(http.MethodPost)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	meta, err := api.DecodeUploadMetadata(r.Header.Get(common.UploadMetadataHeaderName))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if r.ContentLength > h.maxBody {
		h.writeError(w, r, common.ErrFileTooLarge)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBody))
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			h.writeError(w, r, common.ErrFileTooLarge)
			return
		}
		h.log.Warn(r.Context(), "upload body read failed", "error", err)
		writeJSON(w, http.StatusBadRequest, api.ErrorResponse{Error: "unreadable body"})
		return
	}

	u, err := h.uploads.Store(r.Context(), meta, body)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, api.UploadResponse{ShortID: u.ShortID, ExpiresAt: u.ExpiresAt})
}

// shortID extracts and checks the {id} path variable.
func (h *Handler) shortID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := mux.Vars(r)["id"]
	if !sharelink.ValidShortID(id) {
		h.writeError(w, r, common.ErrorNotFound)
		return "", false
	}
	return id, true
}

func (h *Handler) handleMeta(w http.ResponseWriter, r *http.Request) {
	id, ok := h.shortID(w, r)
	if !ok {
		return
	}
	u, err := h.uploads.Stat(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.MetaResponse{
		Metadata:        u.Metadata(),
		Valid:           !u.Expired(h.now()),
		AccessProtected: u.AccessProtected(),
	})
}

func (h *Handler) handleHead(w http.ResponseWriter, r *http.Request) {
	id, ok := h.shortID(w, r)
	if !ok {
		return
	}
	u, err := h.uploads.Stat(r.Context(), id)
	if err != nil {
		w.WriteHeader(statusFor(err))
		return
	}
	if u.Expired(h.now()) {
		w.WriteHeader(http.StatusGone)
		return
	}
	w.Header().Set("Content-Length", strconv.FormatInt(u.Size, 10))
	w.Header().Set(common.ExpiresAtHeaderName, u.ExpiresAt.UTC().Format(time.RFC3339))
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) handleBlob(w http.ResponseWriter, r *http.Request) {
	id, ok := h.shortID(w, r)
	if !ok {
		return
	}
	blob, u, err := h.uploads.Fetch(r.Context(), id, bearerToken(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.Itoa(len(blob)))
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set(common.ExpiresAtHeaderName, u.ExpiresAt.UTC().Format(time.RFC3339))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(blob); err != nil {
		h.log.Debug(r.Context(), "blob write interrupted", "short_id", id, "error", err)
	}
}

func (h *Handler) handleAccess(w http.ResponseWriter, r *http.Request) {
	id, ok := h.shortID(w, r)
	if !ok {
		return
	}
	var req api.AccessRequest
	if err := api.DecodeJSON(io.LimitReader(r.Body, maxJSONBody), &req); err != nil {
		writeJSON(w, http.StatusBadRequest, api.ErrorResponse{Error: "malformed request"})
		return
	}
	token, err := h.uploads.Authorize(r.Context(), id, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.AccessResponse{Token: token})
}

func bearerToken(r *http.Request) string {
	const prefix = "Bearer "
	v := r.Header.Get("Authorization")
	if len(v) > len(prefix) && v[:len(prefix)] == prefix {
		return v[len(prefix):]
	}
	return ""
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrExpired):
		return http.StatusGone
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrSizeMismatch), errors.Is(err, common.ErrorIncorrectMetadata):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, common.ErrAccessDenied):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError answers with the mapped status. Client errors carry the
// error text; server errors are logged and answered generically.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	msg := err.Error()
	switch {
	case code == http.StatusNotFound:
		msg = common.ErrorNotFound.Error()
	case code == http.StatusUnauthorized:
		msg = common.ErrAccessDenied.Error()
	case code >= 500:
		h.log.Error(r.Context(), "request failed", "route", routeTemplate(r), "error", err)
		msg = http.StatusText(code)
	}
	writeJSON(w, code, api.ErrorResponse{Error: msg})
}
