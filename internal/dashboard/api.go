package dashboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/devAlphaSystem/Alpha-System-ContentHub-sub001/internal/audit"
	"github.com/devAlphaSystem/Alpha-System-ContentHub-sub001/internal/pocketbase"
	"github.com/devAlphaSystem/Alpha-System-ContentHub-sub001/internal/resources"
	"github.com/devAlphaSystem/Alpha-System-ContentHub-sub001/internal/session"
)

const maxBodyBytes = 1 << 20

// listResponse is the body of GET /api/{resource}.
type listResponse struct {
	Page       int                 `json:"page"`
	PerPage    int                 `json:"perPage"`
	TotalPages int                 `json:"totalPages"`
	TotalItems int                 `json:"totalItems"`
	Sort       string              `json:"sort"`
	Items      []pocketbase.Record `json:"items"`
}

type themeRequest struct {
	Theme string `json:"theme"`
}

type sidebarOrderRequest struct {
	EntryOrder []string `json:"entryOrder"`
}

type previewRequest struct {
	Content string `json:"content"`
}

type previewResponse struct {
	HTML string `json:"html"`
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// apiBackendError answers an API call whose backend request failed.
func (d *Dashboard) apiBackendError(w http.ResponseWriter, r *http.Request, err error) {
	status := backendStatus(err)
	switch status {
	case http.StatusUnauthorized:
		d.expire(w, r)
		writeError(w, status, "session expired")
	case http.StatusNotFound:
		writeError(w, status, "record not found")
	case http.StatusBadRequest:
		var apiErr *pocketbase.APIError
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			writeError(w, status, apiErr.Message)
			return
		}
		writeError(w, status, "rejected by backend")
	default:
		d.logger.Error("backend request failed", zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, status, "backend request failed")
	}
}

func lookupResource(w http.ResponseWriter, r *http.Request) (resources.Resource, bool) {
	res, ok := resources.Lookup(chi.URLParam(r, "resource"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown resource")
	}
	return res, ok
}

func (d *Dashboard) handleListAPI(w http.ResponseWriter, r *http.Request) {
	res, ok := lookupResource(w, r)
	if !ok {
		return
	}
	state, items, err := d.loadList(r, res)
	if err != nil {
		d.apiBackendError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{
		Page:       state.Page,
		PerPage:    state.PerPage,
		TotalPages: state.TotalPages,
		TotalItems: state.TotalItems,
		Sort:       state.SortParam(),
		Items:      items,
	})
}

func (d *Dashboard) handleGetAPI(w http.ResponseWriter, r *http.Request) {
	res, ok := lookupResource(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	if !validID(id) {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}
	rec, err := d.backend.GetRecord(r.Context(), res.Collection, id)
	if err != nil {
		d.apiBackendError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (d *Dashboard) handlePatchAPI(w http.ResponseWriter, r *http.Request) {
	res, ok := lookupResource(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	if !validID(id) {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}

	var fields map[string]any
	if err := decodeJSON(w, r, &fields); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(fields) == 0 {
		writeError(w, http.StatusBadRequest, "no fields to update")
		return
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		if !res.CanEdit(name) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("field %q cannot be edited", name))
			return
		}
		names = append(names, name)
	}
	sort.Strings(names)

	prev, err := d.backend.GetRecord(r.Context(), res.Collection, id)
	if err != nil {
		d.apiBackendError(w, r, err)
		return
	}
	rec, err := d.backend.UpdateRecord(r.Context(), res.Collection, id, fields)
	if err != nil {
		d.apiBackendError(w, r, err)
		return
	}

	before := make(map[string]any, len(names))
	for _, name := range names {
		before[name] = prev[name]
	}
	d.logAudit(r, audit.Entry{
		Action:        audit.ActionRecordUpdated,
		Collection:    res.Collection,
		RecordID:      id,
		Summary:       fmt.Sprintf("Updated %s %s", res.Singular, recordLabel(rec)),
		Detail:        "fields: " + strings.Join(names, ", "),
		PreviousValue: mustJSON(before),
		NewValue:      mustJSON(fields),
	})
	writeJSON(w, http.StatusOK, rec)
}

func (d *Dashboard) handleDeleteAPI(w http.ResponseWriter, r *http.Request) {
	res, ok := lookupResource(w, r)
	if !ok {
		return
	}
	if !res.Deletable {
		writeError(w, http.StatusMethodNotAllowed, res.Title+" cannot be deleted")
		return
	}
	id := chi.URLParam(r, "id")
	if !validID(id) {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}

	rec, err := d.backend.GetRecord(r.Context(), res.Collection, id)
	if err != nil {
		d.apiBackendError(w, r, err)
		return
	}
	if err := d.backend.DeleteRecord(r.Context(), res.Collection, id); err != nil {
		d.apiBackendError(w, r, err)
		return
	}
	d.logAudit(r, audit.Entry{
		Action:        audit.ActionRecordDeleted,
		Collection:    res.Collection,
		RecordID:      id,
		Summary:       fmt.Sprintf("Deleted %s %s", res.Singular, recordLabel(rec)),
		PreviousValue: mustJSON(rec),
	})
	w.WriteHeader(http.StatusNoContent)
}

func (d *Dashboard) handleSetTheme(w http.ResponseWriter, r *http.Request) {
	var req themeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	theme, err := session.ParseTheme(req.Theme)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sess, _ := session.FromContext(r.Context())
	prev, err := d.sessions.Theme(r.Context(), sess.UserID)
	if err != nil {
		d.logger.Warn("loading theme", zap.Error(err))
	}
	if err := d.sessions.SetTheme(r.Context(), sess.UserID, theme); err != nil {
		d.logger.Error("saving theme", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not save theme")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     themeCookie,
		Value:    string(theme),
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		Secure:   d.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	if prev != theme {
		d.logAudit(r, audit.Entry{
			Action:        audit.ActionThemeChanged,
			Summary:       "Switched to " + string(theme) + " theme",
			PreviousValue: string(prev),
			NewValue:      string(theme),
		})
	}
	writeJSON(w, http.StatusOK, themeRequest{Theme: string(theme)})
}

// handleSidebarOrder stores the position of each listed entry. Updates are
// sent one at a time in list order; the first failure stops the run.
func (d *Dashboard) handleSidebarOrder(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")
	if !validID(projectID) {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}

	var req sidebarOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.EntryOrder) == 0 {
		writeError(w, http.StatusBadRequest, "entryOrder must list at least one entry")
		return
	}

	entries, err := d.projectEntries(r.Context(), projectID)
	if err != nil {
		d.apiBackendError(w, r, err)
		return
	}
	owned := make(map[string]bool, len(entries))
	for _, e := range entries {
		owned[e.ID()] = true
	}
	seen := make(map[string]bool, len(req.EntryOrder))
	for _, id := range req.EntryOrder {
		if seen[id] {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("entry %q listed twice", id))
			return
		}
		seen[id] = true
		if !owned[id] {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("entry %q does not belong to this project", id))
			return
		}
	}

	for i, id := range req.EntryOrder {
		_, err := d.backend.UpdateRecord(r.Context(), entriesCollection, id, map[string]any{"sidebar_order": i})
		if err != nil {
			d.logger.Error("updating sidebar order",
				zap.String("project", projectID),
				zap.Int("updated", i),
				zap.Int("total", len(req.EntryOrder)),
				zap.Error(err),
			)
			d.apiBackendError(w, r, err)
			return
		}
	}

	d.logAudit(r, audit.Entry{
		Action:     audit.ActionSidebarReordered,
		Collection: projectsCollection,
		RecordID:   projectID,
		Summary:    fmt.Sprintf("Reordered %d entries", len(req.EntryOrder)),
		NewValue:   strings.Join(req.EntryOrder, ","),
	})
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "updated": len(req.EntryOrder)})
}

func (d *Dashboard) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	html, err := d.markdown.Render(req.Content)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, previewResponse{HTML: string(html)})
}

// recordLabel names a record in audit summaries.
func recordLabel(rec pocketbase.Record) string {
	for _, key := range []string{"name", "title"} {
		if v := rec.String(key); v != "" {
			return fmt.Sprintf("%q", v)
		}
	}
	return rec.ID()
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
