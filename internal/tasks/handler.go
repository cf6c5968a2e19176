package tasks

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/assignsphere/backend/internal/httpx"
	"github.com/assignsphere/backend/internal/models"
)

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

// Active handles GET /api/tasks/active?userId=.
func (h *Handler) Active(w http.ResponseWriter, r *http.Request) {
	studentCode := r.URL.Query().Get("userId")

	views, err := h.svc.ActiveForStudent(r.Context(), studentCode)
	if err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			httpx.Error(w, http.StatusBadRequest, verr.Error())
			return
		}
		h.log.Error("list active tasks", "error", err)
		httpx.Error(w, http.StatusInternalServerError, "failed to fetch active tasks")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, views)
}
