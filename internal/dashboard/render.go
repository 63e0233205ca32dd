package dashboard

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/devAlphaSystem/Alpha-System-ContentHub-sub001/internal/listing"
	"github.com/devAlphaSystem/Alpha-System-ContentHub-sub001/internal/pocketbase"
	"github.com/devAlphaSystem/Alpha-System-ContentHub-sub001/internal/resources"
	"github.com/devAlphaSystem/Alpha-System-ContentHub-sub001/internal/session"
)

//go:embed templates/*.html static/*
var assets embed.FS

// themeCookie mirrors the stored theme so the login page can honour it.
const themeCookie = "contenthub_theme"

var pageNames = []string{"login", "list", "project", "entry_edit", "error"}

type pageSet struct {
	pages map[string]*template.Template
}

func parsePages() (*pageSet, error) {
	ps := &pageSet{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		tmpl, err := template.New("layout.html").Funcs(funcs).ParseFS(assets,
			"templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parsing %s template: %w", name, err)
		}
		ps.pages[name] = tmpl
	}
	return ps, nil
}

// pageData is what every page template receives.
type pageData struct {
	Title  string
	Theme  session.Theme
	User   *session.Session
	Nav    []resources.Resource
	Active string
	Flash  string
	Error  string
	Data   any
}

// listPage is the payload of list.html.
type listPage struct {
	Resource resources.Resource
	State    listing.State
	Items    []pocketbase.Record
}

// render executes a page into a buffer first so a template error never
// leaves a half-written response.
func (d *Dashboard) render(w http.ResponseWriter, r *http.Request, status int, name string, data pageData) {
	tmpl, ok := d.pages.pages[name]
	if !ok {
		http.Error(w, "unknown page", http.StatusInternalServerError)
		return
	}

	data.Theme = d.themeFor(r)
	if sess, ok := session.FromContext(r.Context()); ok {
		data.User = sess
		data.Nav = resources.Navigation()
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		d.logger.Error("rendering page", zap.String("page", name), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func (d *Dashboard) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	d.render(w, r, status, "error", pageData{
		Title: http.StatusText(status),
		Error: message,
	})
}

func (d *Dashboard) themeFor(r *http.Request) session.Theme {
	if sess, ok := session.FromContext(r.Context()); ok {
		theme, err := d.sessions.Theme(r.Context(), sess.UserID)
		if err != nil {
			d.logger.Warn("loading theme", zap.Error(err))
			return session.ThemeLight
		}
		return theme
	}
	if c, err := r.Cookie(themeCookie); err == nil {
		if theme, err := session.ParseTheme(c.Value); err == nil {
			return theme
		}
	}
	return session.ThemeLight
}

var funcs = template.FuncMap{
	"field":    field,
	"str":      pocketbase.Record.String,
	"sortLink": sortLink,
	"pageLink": pageLink,
	"sortMark": sortMark,
	"date":     formatDate,
}

// field formats one cell of a record table.
func field(rec pocketbase.Record, col resources.Column) string {
	v := rec.String(col.Key)
	if col.Date {
		return formatDate(v)
	}
	return v
}

// Backend timestamps look like "2024-01-02 15:04:05.000Z".
var dateLayouts = []string{"2006-01-02 15:04:05.000Z", "2006-01-02 15:04:05Z", time.RFC3339Nano}

func formatDate(v string) string {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format("Jan 2, 2006 15:04")
		}
	}
	return v
}

// sortLink returns the query string a click on the column header leads to.
func sortLink(s listing.State, key string) string {
	s.Toggle(key)
	return "?" + s.Query().Encode()
}

func pageLink(s listing.State, page int) string {
	s.Page = page
	return "?" + s.Query().Encode()
}

func sortMark(s listing.State, key string) string {
	if s.SortKey != key {
		return ""
	}
	if s.SortDir == listing.Desc {
		return "▼"
	}
	return "▲"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// backendStatus maps a backend failure onto the status the panel answers
// with. An expired backend token signs the user out of the page script.
func backendStatus(err error) int {
	switch {
	case pocketbase.IsNotFound(err):
		return http.StatusNotFound
	case pocketbase.IsUnauthorized(err):
		return http.StatusUnauthorized
	case pocketbase.StatusCode(err) == http.StatusBadRequest:
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}
