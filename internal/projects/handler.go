package projects

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/assignsphere/backend/internal/httpx"
	"github.com/assignsphere/backend/internal/models"
	"github.com/assignsphere/backend/internal/storage"
)

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

// Create handles POST /api/projects (multipart: fields plus attachments).
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(storage.MaxProjectAttachmentSize); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	in := CreateInput{
		OwnerCode:   r.FormValue("user_id"),
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		ProjectType: r.FormValue("project_type"),
		SubjectArea: r.FormValue("subject_area"),
		AutoMatch:   r.FormValue("auto_match") == "true",
	}

	if raw := r.FormValue("deadline"); raw != "" {
		deadline, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			httpx.Error(w, http.StatusBadRequest, "deadline must be RFC 3339")
			return
		}
		in.Deadline = deadline
	}
	if raw := r.FormValue("pages"); raw != "" {
		pages, err := strconv.Atoi(raw)
		if err != nil {
			httpx.Error(w, http.StatusBadRequest, "pages must be a number")
			return
		}
		in.Pages = pages
	}

	for _, fh := range r.MultipartForm.File["attachments"] {
		if fh.Size > storage.MaxProjectAttachmentSize {
			httpx.Error(w, http.StatusBadRequest, storage.ErrFileTooLarge.Error())
			return
		}
		f, err := fh.Open()
		if err != nil {
			httpx.Error(w, http.StatusBadRequest, "unreadable attachment")
			return
		}
		ref, err := h.files.Put(r.Context(), fh.Filename, fh.Header.Get("Content-Type"), f, fh.Size)
		f.Close()
		if err != nil {
			h.log.Error("store project attachment", "filename", fh.Filename, "error", err)
			httpx.Error(w, http.StatusInternalServerError, "failed to store attachment")
			return
		}
		in.Attachments = append(in.Attachments, ref)
	}

	p, err := h.svc.Create(r.Context(), in)
	if err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			httpx.Error(w, http.StatusBadRequest, verr.Error())
			return
		}
		h.log.Error("create project", "error", err)
		httpx.Error(w, http.StatusInternalServerError, "failed to create project")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, map[string]any{
		"message":    "project created",
		"project_id": p.ID,
		"project":    p,
	})
}

// List handles GET /api/projects?userId=.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ownerCode := r.URL.Query().Get("userId")
	list, err := h.svc.ListForStudent(r.Context(), ownerCode)
	if err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			httpx.Error(w, http.StatusBadRequest, verr.Error())
			return
		}
		h.log.Error("list projects", "error", err)
		httpx.Error(w, http.StatusInternalServerError, "failed to list projects")
		return
	}
	if list == nil {
		list = []*models.Project{}
	}
	httpx.WriteJSON(w, http.StatusOK, list)
}
