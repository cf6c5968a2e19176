package bids

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/assignsphere/backend/internal/httpx"
	"github.com/assignsphere/backend/internal/middleware"
	"github.com/assignsphere/backend/internal/models"
)

type placeBidRequest struct {
	ProjectID      string `json:"project_id"`
	BasePriceCents int64  `json:"base_price_cents"`
}

type Handler struct {
	svc *Service
	log *slog.Logger
}

func NewHandler(svc *Service, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, log: log}
}

// Place handles POST /api/bids. The bidding writer comes from the verified
// token, never the body.
func (h *Handler) Place(w http.ResponseWriter, r *http.Request) {
	writerID, ok := middleware.WriterFromCtx(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req placeBidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid project_id")
		return
	}

	bid, err := h.svc.Place(r.Context(), projectID, writerID, req.BasePriceCents)
	if err != nil {
		h.writeBidError(w, "place bid", err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{
		"message": "bid placed",
		"bid":     bid,
	})
}

// ListForProject handles GET /api/bids/{projectId}.
func (h *Handler) ListForProject(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(chi.URLParam(r, "projectId"))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid project id")
		return
	}

	list, err := h.svc.ListForProject(r.Context(), projectID)
	if err != nil {
		h.writeBidError(w, "list bids", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, list)
}

// DeleteForProject handles DELETE /api/bids/{projectId}.
func (h *Handler) DeleteForProject(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(chi.URLParam(r, "projectId"))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid project id")
		return
	}

	count, err := h.svc.DeleteForProject(r.Context(), projectID)
	if err != nil {
		h.writeBidError(w, "delete bids", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"message":       "bids deleted",
		"deleted_count": count,
	})
}

func (h *Handler) writeBidError(w http.ResponseWriter, op string, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		httpx.Error(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, ErrProjectNotFound):
		httpx.Error(w, http.StatusNotFound, "project not found")
	case errors.Is(err, ErrWriterNotFound):
		httpx.Error(w, http.StatusNotFound, "writer not found")
	case errors.Is(err, ErrNoBids):
		httpx.Error(w, http.StatusNotFound, "no bids found for this project")
	default:
		h.log.Error(op, "error", err)
		httpx.Error(w, http.StatusInternalServerError, "internal error")
	}
}
