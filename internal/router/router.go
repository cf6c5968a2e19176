package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/assignsphere/backend/internal/bids"
	"github.com/assignsphere/backend/internal/httpx"
	"github.com/assignsphere/backend/internal/identity"
	"github.com/assignsphere/backend/internal/middleware"
	"github.com/assignsphere/backend/internal/notify"
	"github.com/assignsphere/backend/internal/payments"
	"github.com/assignsphere/backend/internal/projects"
	"github.com/assignsphere/backend/internal/tasks"
)

// Deps collects everything the route table needs.
type Deps struct {
	Identity *identity.Handler
	Projects *projects.Handler
	Bids     *bids.Handler
	Tasks    *tasks.Handler
	Payments *payments.Handler
	Events   *notify.StreamHandler

	Tokens         middleware.TokenValidator
	AdminKeyHash   string
	RequestTimeout time.Duration
}

// New builds the HTTP route table. The uniform request timeout lives here,
// at the transport boundary; the event stream sits outside it because SSE
// connections are deliberately long-lived.
func New(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/api/events", d.Events.ServeHTTP)

	timeout := d.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(timeout))

		r.Route("/api", func(r chi.Router) {
			r.Post("/students/register", d.Identity.RegisterStudent)
			r.Post("/students/login", d.Identity.LoginStudent)

			r.Post("/writers/register", d.Identity.RegisterWriter)
			r.Post("/writers/login", d.Identity.LoginWriter)
			r.Get("/writers/approved", d.Identity.ListApprovedWriters)
			r.Get("/writers/metrics/{email}", d.Identity.WriterMetrics)

			r.Post("/projects", d.Projects.Create)
			r.Get("/projects", d.Projects.List)

			r.Get("/bids/{projectId}", d.Bids.ListForProject)
			r.Delete("/bids/{projectId}", d.Bids.DeleteForProject)
			r.With(middleware.WriterAuth(d.Tokens)).Post("/bids", d.Bids.Place)

			r.Post("/payment/process", d.Payments.Process)
			r.Get("/tasks/active", d.Tasks.Active)

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.AdminAuth(d.AdminKeyHash))
				r.Get("/writers/pending", d.Identity.ListPendingWriters)
				r.Put("/writers/approve/{id}", d.Identity.ApproveWriter)
				r.Delete("/writers/reject/{id}", d.Identity.RejectWriter)
			})
		})
	})

	return r
}
