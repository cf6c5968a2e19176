package payments

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/assignsphere/backend/internal/httpx"
	"github.com/assignsphere/backend/internal/models"
)

type processRequest struct {
	ProjectID     string `json:"project_id"`
	WriterID      string `json:"writer_id"`
	UserID        string `json:"user_id"`
	PaymentMethod string `json:"payment_method"`
	AmountCents   int64  `json:"amount_cents"`
	Deadline      string `json:"deadline"`
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

// Process handles POST /api/payment/process.
func (h *Handler) Process(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	in := ProcessInput{
		StudentCode:   req.UserID,
		PaymentMethod: req.PaymentMethod,
		AmountCents:   req.AmountCents,
	}
	if req.ProjectID != "" {
		id, err := uuid.Parse(req.ProjectID)
		if err != nil {
			httpx.Error(w, http.StatusBadRequest, "invalid project_id")
			return
		}
		in.ProjectID = id
	}
	if req.WriterID != "" {
		id, err := uuid.Parse(req.WriterID)
		if err != nil {
			httpx.Error(w, http.StatusBadRequest, "invalid writer_id")
			return
		}
		in.WriterID = id
	}
	if req.Deadline != "" {
		deadline, err := time.Parse(time.RFC3339, req.Deadline)
		if err != nil {
			httpx.Error(w, http.StatusBadRequest, "deadline must be RFC 3339")
			return
		}
		in.Deadline = deadline
	}

	result, err := h.svc.Process(r.Context(), in)
	if err != nil {
		var verr *models.ValidationError
		switch {
		case errors.As(err, &verr):
			httpx.Error(w, http.StatusBadRequest, verr.Error())
		case errors.Is(err, ErrPaymentDeclined):
			httpx.Error(w, http.StatusPaymentRequired, "payment declined")
		default:
			h.log.Error("process payment", "error", err)
			httpx.Error(w, http.StatusInternalServerError, "failed to process payment")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "payment processed and task activated",
		"payment": result.Payment,
		"task":    result.Task,
	})
}
