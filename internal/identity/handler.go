package identity

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/assignsphere/backend/internal/httpx"
	"github.com/assignsphere/backend/internal/models"
	"github.com/assignsphere/backend/internal/storage"
)

const maxWriterAttachments = 2

type registerStudentRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Handler struct {
	svc   *Service
	files storage.ObjectStore
	log   *slog.Logger
}

func NewHandler(svc *Service, files storage.ObjectStore, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, files: files, log: log}
}

// RegisterStudent handles POST /api/students/register.
func (h *Handler) RegisterStudent(w http.ResponseWriter, r *http.Request) {
	var req registerStudentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	acc, err := h.svc.RegisterStudent(r.Context(), req.FullName, req.Email, req.Password)
	if err != nil {
		h.writeAccountError(w, "register student", err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, acc)
}

// LoginStudent handles POST /api/students/login.
func (h *Handler) LoginStudent(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Email == "" || req.Password == "" {
		httpx.Error(w, http.StatusBadRequest, "missing email or password")
		return
	}

	sess, err := h.svc.LoginStudent(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeAccountError(w, "student login", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, sess)
}

// RegisterWriter handles POST /api/writers/register (multipart: profile
// fields plus up to two application documents).
func (h *Handler) RegisterWriter(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(storage.MaxWriterAttachmentSize); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	app := WriterApplication{
		FullName:       r.FormValue("full_name"),
		Email:          r.FormValue("email"),
		Phone:          r.FormValue("phone"),
		CountryCode:    r.FormValue("country_code"),
		Password:       r.FormValue("password"),
		Expertise:      r.FormValue("expertise"),
		Qualifications: r.FormValue("qualifications"),
		Experience:     r.FormValue("experience"),
	}

	files := r.MultipartForm.File["attachments"]
	if len(files) > maxWriterAttachments {
		httpx.Error(w, http.StatusBadRequest, "too many attachments")
		return
	}
	for _, fh := range files {
		if fh.Size > storage.MaxWriterAttachmentSize {
			httpx.Error(w, http.StatusBadRequest, storage.ErrFileTooLarge.Error())
			return
		}
		contentType := fh.Header.Get("Content-Type")
		if !storage.AllowedContentType(contentType) {
			httpx.Error(w, http.StatusBadRequest, storage.ErrUnsupportedContent.Error())
			return
		}
		f, err := fh.Open()
		if err != nil {
			httpx.Error(w, http.StatusBadRequest, "unreadable attachment")
			return
		}
		ref, err := h.files.Put(r.Context(), fh.Filename, contentType, f, fh.Size)
		f.Close()
		if err != nil {
			h.log.Error("store writer attachment", "filename", fh.Filename, "error", err)
			httpx.Error(w, http.StatusInternalServerError, "failed to store attachment")
			return
		}
		app.Attachments = append(app.Attachments, ref)
	}

	writer, err := h.svc.RegisterWriter(r.Context(), app)
	if err != nil {
		h.writeAccountError(w, "register writer", err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{
		"message": "application submitted",
		"writer":  writer,
	})
}

// LoginWriter handles POST /api/writers/login.
func (h *Handler) LoginWriter(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Email == "" || req.Password == "" {
		httpx.Error(w, http.StatusBadRequest, "missing email or password")
		return
	}

	sess, err := h.svc.LoginWriter(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeAccountError(w, "writer login", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, sess)
}

// ListApprovedWriters handles GET /api/writers/approved.
func (h *Handler) ListApprovedWriters(w http.ResponseWriter, r *http.Request) {
	writers, err := h.svc.ListApprovedWriters(r.Context())
	if err != nil {
		h.log.Error("list approved writers", "error", err)
		httpx.Error(w, http.StatusInternalServerError, "failed to list writers")
		return
	}
	if writers == nil {
		writers = []*models.Writer{}
	}
	httpx.WriteJSON(w, http.StatusOK, writers)
}

// WriterMetrics handles GET /api/writers/metrics/{email}.
func (h *Handler) WriterMetrics(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	if email == "" {
		httpx.Error(w, http.StatusBadRequest, "email is required")
		return
	}

	m, err := h.svc.WriterMetrics(r.Context(), email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Error(w, http.StatusNotFound, "writer not found or not approved")
			return
		}
		h.log.Error("writer metrics", "error", err)
		httpx.Error(w, http.StatusInternalServerError, "failed to fetch metrics")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, m)
}

// ListPendingWriters handles GET /api/admin/writers/pending.
func (h *Handler) ListPendingWriters(w http.ResponseWriter, r *http.Request) {
	writers, err := h.svc.ListPendingWriters(r.Context())
	if err != nil {
		h.log.Error("list pending writers", "error", err)
		httpx.Error(w, http.StatusInternalServerError, "failed to list pending applications")
		return
	}
	if writers == nil {
		writers = []*models.Writer{}
	}
	httpx.WriteJSON(w, http.StatusOK, writers)
}

// ApproveWriter handles PUT /api/admin/writers/approve/{id}.
func (h *Handler) ApproveWriter(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid writer id")
		return
	}
	if err := h.svc.ApproveWriter(r.Context(), id); err != nil {
		h.writeAccountError(w, "approve writer", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "writer approved"})
}

// RejectWriter handles DELETE /api/admin/writers/reject/{id}.
func (h *Handler) RejectWriter(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid writer id")
		return
	}
	if err := h.svc.RejectWriter(r.Context(), id); err != nil {
		h.writeAccountError(w, "reject writer", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "writer rejected"})
}

func (h *Handler) writeAccountError(w http.ResponseWriter, op string, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		httpx.Error(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, ErrDuplicateEmail):
		httpx.Error(w, http.StatusConflict, "email already registered")
	case errors.Is(err, ErrNotFound):
		httpx.Error(w, http.StatusNotFound, "account not found")
	case errors.Is(err, ErrWriterNotApproved):
		httpx.Error(w, http.StatusForbidden, "application has not been approved yet")
	case errors.Is(err, ErrInvalidCredentials):
		httpx.Error(w, http.StatusUnauthorized, "invalid credentials")
	default:
		h.log.Error(op, "error", err)
		httpx.Error(w, http.StatusInternalServerError, "internal error")
	}
}
