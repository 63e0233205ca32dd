// Package dashboard serves the admin panel pages and the JSON API behind
// them.
package dashboard

import (
	"context"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/devAlphaSystem/Alpha-System-ContentHub-sub001/internal/audit"
	"github.com/devAlphaSystem/Alpha-System-ContentHub-sub001/internal/markdown"
	"github.com/devAlphaSystem/Alpha-System-ContentHub-sub001/internal/pocketbase"
	"github.com/devAlphaSystem/Alpha-System-ContentHub-sub001/internal/session"
)

// Backend is the part of the backend client the panel uses. Calls carry
// the signed-in user's token in their context.
type Backend interface {
	AuthWithPassword(ctx context.Context, collection, identity, password string) (*pocketbase.AuthResult, error)
	ListRecords(ctx context.Context, collection string, q pocketbase.ListQuery) (*pocketbase.RecordList, error)
	GetRecord(ctx context.Context, collection, id string) (pocketbase.Record, error)
	UpdateRecord(ctx context.Context, collection, id string, fields map[string]any) (pocketbase.Record, error)
	DeleteRecord(ctx context.Context, collection, id string) error
}

// Options configures a Dashboard.
type Options struct {
	Backend  Backend
	Sessions *session.Store
	Audit    *audit.Store
	Markdown *markdown.Renderer
	Logger   *zap.Logger

	// AuthCollection is the backend collection panel users sign in against.
	AuthCollection string
	PerPage        int
	MaxPerPage     int
	SecureCookies  bool
	// RequestTimeout bounds page and API handlers. Zero means 60s.
	RequestTimeout time.Duration
}

// Dashboard provides the admin panel.
type Dashboard struct {
	backend  Backend
	sessions *session.Store
	audit    *audit.Store
	markdown *markdown.Renderer
	logger   *zap.Logger
	pages    *pageSet

	authCollection string
	perPage        int
	maxPerPage     int
	secureCookies  bool
	timeout        time.Duration
}

// New creates a new Dashboard.
func New(opts Options) (*Dashboard, error) {
	pages, err := parsePages()
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	authCollection := opts.AuthCollection
	if authCollection == "" {
		authCollection = "users"
	}
	perPage := opts.PerPage
	if perPage <= 0 {
		perPage = 10
	}
	maxPerPage := opts.MaxPerPage
	if maxPerPage < perPage {
		maxPerPage = perPage
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &Dashboard{
		backend:        opts.Backend,
		sessions:       opts.Sessions,
		audit:          opts.Audit,
		markdown:       opts.Markdown,
		logger:         logger.Named("dashboard"),
		pages:          pages,
		authCollection: authCollection,
		perPage:        perPage,
		maxPerPage:     maxPerPage,
		secureCookies:  opts.SecureCookies,
		timeout:        timeout,
	}, nil
}

// RegisterRoutes mounts all dashboard routes onto the given router.
func (d *Dashboard) RegisterRoutes(r chi.Router) {
	static, _ := fs.Sub(assets, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	r.Get("/login", d.handleLoginPage)
	r.Post("/login", d.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(session.Require(d.sessions, d.logger))

		r.Post("/logout", d.handleLogout)
		r.Get("/ws/preview", d.handlePreviewSocket)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(d.timeout))

			r.Get("/", func(w http.ResponseWriter, r *http.Request) {
				http.Redirect(w, r, "/projects", http.StatusSeeOther)
			})
			r.Get("/projects/{id}", d.handleProjectPage)
			r.Post("/projects/{id}/sidebar-order", d.handleSidebarOrder)
			r.Get("/projects/{id}/entries/{entryID}/edit", d.handleEntryEditPage)
			r.Post("/projects/{id}/entries/{entryID}/edit", d.handleEntrySave)
			r.Get("/{resource}", d.handleListPage)

			r.Post("/api/set-theme", d.handleSetTheme)
			r.Post("/api/markdown/preview", d.handlePreview)
			r.Get("/api/{resource}", d.handleListAPI)
			r.Get("/api/{resource}/{id}", d.handleGetAPI)
			r.Patch("/api/{resource}/{id}", d.handlePatchAPI)
			r.Delete("/api/{resource}/{id}", d.handleDeleteAPI)

			if d.audit != nil {
				audit.RegisterRoutes(r, d.audit)
			}
		})
	})
}

// logAudit records an action by the signed-in user. Failures are logged,
// never surfaced: the backend change already happened.
func (d *Dashboard) logAudit(r *http.Request, e audit.Entry) {
	if d.audit == nil {
		return
	}
	if sess, ok := session.FromContext(r.Context()); ok {
		e.ActorID = sess.UserID
		e.ActorEmail = sess.Email
	}
	if err := d.audit.Log(r.Context(), e); err != nil {
		d.logger.Warn("writing audit entry", zap.String("action", string(e.Action)), zap.Error(err))
	}
}
