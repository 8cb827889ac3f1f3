package handlers

import (
	"bytes"
	"html/template"
	"net/http"
	"strconv"
	"strings"
)

// render executes a page into a buffer first so a template failure never
// leaves a half-written response
func render(w http.ResponseWriter, tmpl *template.Template, name string, status int, data any) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error rendering "+name, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (m *Middleware) page(r *http.Request, title string) PageData {
	return PageData{
		Title:     title,
		User:      GetUserFromContext(r.Context()),
		CSRFToken: m.CSRFToken(r),
	}
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// safeNext returns the form's local "next" path, or fallback
func safeNext(r *http.Request, fallback string) string {
	next := r.FormValue("next")
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") && !strings.HasPrefix(next, "/\\") {
		return next
	}
	return fallback
}
