package dashboard

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/devAlphaSystem/Alpha-System-ContentHub-sub001/internal/audit"
	"github.com/devAlphaSystem/Alpha-System-ContentHub-sub001/internal/listing"
	"github.com/devAlphaSystem/Alpha-System-ContentHub-sub001/internal/pocketbase"
	"github.com/devAlphaSystem/Alpha-System-ContentHub-sub001/internal/resources"
	"github.com/devAlphaSystem/Alpha-System-ContentHub-sub001/internal/session"
)

const (
	projectsCollection  = "projects"
	entriesCollection   = "entries"
	templatesCollection = "templates"

	// entriesPerFetch is the page size used to walk a project's entries.
	entriesPerFetch = 200
)

// Backend ids are short alphanumeric strings. Anything else never reaches
// a filter expression.
var idPattern = regexp.MustCompile(`^[A-Za-z0-9_]{1,64}$`)

func validID(id string) bool { return idPattern.MatchString(id) }

type loginForm struct {
	Email string
	Next  string
}

func (d *Dashboard) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	next := r.URL.Query().Get("next")
	if c, err := r.Cookie(session.CookieName); err == nil && c.Value != "" {
		if _, err := d.sessions.Get(r.Context(), c.Value); err == nil {
			http.Redirect(w, r, safeNext(next), http.StatusSeeOther)
			return
		}
	}
	d.render(w, r, http.StatusOK, "login", pageData{
		Title: "Sign in",
		Data:  loginForm{Next: next},
	})
}

func (d *Dashboard) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		d.renderError(w, r, http.StatusBadRequest, "Malformed form submission.")
		return
	}
	form := loginForm{
		Email: strings.TrimSpace(r.PostFormValue("email")),
		Next:  r.PostFormValue("next"),
	}
	password := r.PostFormValue("password")
	if form.Email == "" || password == "" {
		d.render(w, r, http.StatusBadRequest, "login", pageData{
			Title: "Sign in",
			Error: "Email and password are required.",
			Data:  form,
		})
		return
	}

	auth, err := d.backend.AuthWithPassword(r.Context(), d.authCollection, form.Email, password)
	if err != nil {
		status, msg := http.StatusUnauthorized, "Invalid email or password."
		if code := pocketbase.StatusCode(err); code != http.StatusBadRequest && !pocketbase.IsUnauthorized(err) {
			d.logger.Error("authenticating user", zap.String("email", form.Email), zap.Error(err))
			status, msg = http.StatusBadGateway, "The backend is unavailable. Try again later."
		}
		d.render(w, r, status, "login", pageData{Title: "Sign in", Error: msg, Data: form})
		return
	}

	name := auth.Record.String("name")
	if name == "" {
		name = auth.Record.String("username")
	}
	sess, err := d.sessions.Create(r.Context(), auth.Record.ID(), auth.Record.String("email"), name, auth.Token)
	if err != nil {
		d.logger.Error("creating session", zap.Error(err))
		d.renderError(w, r, http.StatusInternalServerError, "Could not start a session.")
		return
	}
	session.SetCookie(w, sess, d.secureCookies)

	r = r.WithContext(session.NewContext(r.Context(), sess))
	d.logAudit(r, audit.Entry{Action: audit.ActionLogin, Summary: "Signed in"})
	http.Redirect(w, r, safeNext(form.Next), http.StatusSeeOther)
}

func (d *Dashboard) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sess, ok := session.FromContext(r.Context()); ok {
		d.logAudit(r, audit.Entry{Action: audit.ActionLogout, Summary: "Signed out"})
		if err := d.sessions.Delete(r.Context(), sess.ID); err != nil {
			d.logger.Warn("deleting session", zap.Error(err))
		}
	}
	session.ClearCookie(w, d.secureCookies)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// safeNext keeps post-login redirects on this site.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/projects"
	}
	return next
}

// expire ends a session whose backend token was rejected.
func (d *Dashboard) expire(w http.ResponseWriter, r *http.Request) {
	if sess, ok := session.FromContext(r.Context()); ok {
		if err := d.sessions.Delete(r.Context(), sess.ID); err != nil {
			d.logger.Warn("deleting session", zap.Error(err))
		}
	}
	session.ClearCookie(w, d.secureCookies)
}

func (d *Dashboard) pageBackendError(w http.ResponseWriter, r *http.Request, err error, what string) {
	if pocketbase.IsUnauthorized(err) {
		d.expire(w, r)
		http.Redirect(w, r, "/login?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusSeeOther)
		return
	}
	status := backendStatus(err)
	if status == http.StatusNotFound {
		d.renderError(w, r, status, what+" not found.")
		return
	}
	d.logger.Error("loading "+what, zap.Error(err))
	d.renderError(w, r, status, "Could not load "+what+".")
}

// loadList fetches the page of res selected by the request query.
func (d *Dashboard) loadList(r *http.Request, res resources.Resource) (listing.State, []pocketbase.Record, error) {
	state := listing.FromQuery(r.URL.Query(), res.Defaults(d.perPage, d.maxPerPage))
	list, err := d.backend.ListRecords(r.Context(), res.Collection, pocketbase.ListQuery{
		Page:    state.Page,
		PerPage: state.PerPage,
		Sort:    state.SortParam(),
	})
	if err != nil {
		return state, nil, err
	}
	state.Update(list.Page, list.TotalPages, list.TotalItems)
	return state, list.Items, nil
}

func (d *Dashboard) handleListPage(w http.ResponseWriter, r *http.Request) {
	res, ok := resources.Lookup(chi.URLParam(r, "resource"))
	if !ok {
		d.renderError(w, r, http.StatusNotFound, "Page not found.")
		return
	}

	state, items, err := d.loadList(r, res)
	if err != nil {
		d.pageBackendError(w, r, err, strings.ToLower(res.Title))
		return
	}

	d.render(w, r, http.StatusOK, "list", pageData{
		Title:  res.Title,
		Active: res.Name,
		Data:   listPage{Resource: res, State: state, Items: items},
	})
}

// projectEntries returns every entry of a project in sidebar order.
func (d *Dashboard) projectEntries(ctx context.Context, projectID string) ([]pocketbase.Record, error) {
	pager := listing.NewPager(d.backend, entriesCollection, listing.State{
		PerPage: entriesPerFetch,
		SortKey: "sidebar_order",
		SortDir: listing.Asc,
	})
	pager.SetFilter(fmt.Sprintf("project = %q", projectID))

	entries := []pocketbase.Record{}
	err := pager.Each(ctx, func(items []pocketbase.Record) error {
		entries = append(entries, items...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

type projectPage struct {
	Project pocketbase.Record
	Entries []pocketbase.Record
}

func (d *Dashboard) handleProjectPage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !validID(id) {
		d.renderError(w, r, http.StatusNotFound, "Project not found.")
		return
	}

	project, err := d.backend.GetRecord(r.Context(), projectsCollection, id)
	if err != nil {
		d.pageBackendError(w, r, err, "project")
		return
	}
	entries, err := d.projectEntries(r.Context(), id)
	if err != nil {
		d.pageBackendError(w, r, err, "entries")
		return
	}

	d.render(w, r, http.StatusOK, "project", pageData{
		Title:  project.String("name"),
		Active: "projects",
		Data:   projectPage{Project: project, Entries: entries},
	})
}

type entryPage struct {
	Project   pocketbase.Record
	Entry     pocketbase.Record
	Templates []pocketbase.Record
	Preview   template.HTML
}

// loadEntry fetches a project and one of its entries. An entry of another
// project is reported as not found.
func (d *Dashboard) loadEntry(ctx context.Context, projectID, entryID string) (pocketbase.Record, pocketbase.Record, error) {
	notFound := &pocketbase.APIError{Status: http.StatusNotFound, Message: "not found"}
	if !validID(projectID) || !validID(entryID) {
		return nil, nil, notFound
	}
	project, err := d.backend.GetRecord(ctx, projectsCollection, projectID)
	if err != nil {
		return nil, nil, err
	}
	entry, err := d.backend.GetRecord(ctx, entriesCollection, entryID)
	if err != nil {
		return nil, nil, err
	}
	if entry.String("project") != project.ID() {
		return nil, nil, notFound
	}
	return project, entry, nil
}

func (d *Dashboard) handleEntryEditPage(w http.ResponseWriter, r *http.Request) {
	project, entry, err := d.loadEntry(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "entryID"))
	if err != nil {
		d.pageBackendError(w, r, err, "entry")
		return
	}

	page := entryPage{Project: project, Entry: entry}
	if page.Preview, err = d.markdown.Render(entry.String("content")); err != nil {
		d.logger.Warn("rendering preview", zap.Error(err))
	}
	templates, err := d.backend.ListRecords(r.Context(), templatesCollection, pocketbase.ListQuery{
		Page: 1, PerPage: d.maxPerPage, Sort: "name",
	})
	if err != nil {
		// The editor works without the template picker.
		d.logger.Warn("listing templates", zap.Error(err))
	} else {
		page.Templates = templates.Items
	}

	pd := pageData{
		Title:  entry.String("title"),
		Active: "projects",
		Data:   page,
	}
	if r.URL.Query().Get("saved") == "1" {
		pd.Flash = "Entry saved."
	}
	d.render(w, r, http.StatusOK, "entry_edit", pd)
}

func (d *Dashboard) handleEntrySave(w http.ResponseWriter, r *http.Request) {
	projectID, entryID := chi.URLParam(r, "id"), chi.URLParam(r, "entryID")
	if err := r.ParseForm(); err != nil {
		d.renderError(w, r, http.StatusBadRequest, "Malformed form submission.")
		return
	}

	project, entry, err := d.loadEntry(r.Context(), projectID, entryID)
	if err != nil {
		d.pageBackendError(w, r, err, "entry")
		return
	}

	title := strings.TrimSpace(r.PostFormValue("title"))
	content := r.PostFormValue("content")
	if title == "" {
		entry["content"] = content
		preview, _ := d.markdown.Render(content)
		d.render(w, r, http.StatusBadRequest, "entry_edit", pageData{
			Title:  entry.String("title"),
			Active: "projects",
			Error:  "Title is required.",
			Data:   entryPage{Project: project, Entry: entry, Preview: preview},
		})
		return
	}

	fields := map[string]any{"title": title, "content": content}
	if _, err := d.backend.UpdateRecord(r.Context(), entriesCollection, entryID, fields); err != nil {
		d.pageBackendError(w, r, err, "entry")
		return
	}
	d.logAudit(r, audit.Entry{
		Action:        audit.ActionRecordUpdated,
		Collection:    entriesCollection,
		RecordID:      entryID,
		Summary:       fmt.Sprintf("Updated entry %q", title),
		Detail:        "fields: content, title",
		PreviousValue: entry.String("title"),
		NewValue:      title,
	})

	http.Redirect(w, r, fmt.Sprintf("/projects/%s/entries/%s/edit?saved=1", projectID, entryID), http.StatusSeeOther)
}
