package http

import (
	"bytes"
	"html/template"
	"net/http"
	"strings"
	"time"

	"charity/internal/controller"
	"charity/internal/core"
	"charity/internal/log"
	"charity/internal/view"
)

// sortOption is one sort button on the donor page.
type sortOption struct {
	Key   core.SortKey
	Label string
}

var sortOptions = []sortOption{
	{Key: core.SortAmount, Label: "Highest amount"},
	{Key: core.SortRecent, Label: "Most recent"},
	{Key: core.SortName, Label: "Name A-Z"},
}

func templateFuncs(f view.Formatter) template.FuncMap {
	return template.FuncMap{
		"year":   func() int { return time.Now().Year() },
		"number": f.Number,
		"isSort": func(current core.SortKey, key core.SortKey) bool {
			return current == key
		},
		"sortOptions": func() []sortOption { return sortOptions },
	}
}

// render executes a template into a buffer first so a failing template never
// leaves a half-written page behind.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) bool {
	if s.templates == nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Templates not loaded",
			log.FieldPath, r.URL.Path)
		InternalServerError("templates not loaded").Write(w)
		return false
	}
	body, err := s.renderBytes(name, data)
	if err != nil {
		log.FromContext(r.Context()).WithComponent(log.ComponentTemplate).ErrorContext(r.Context(),
			"Template execution failed", log.FieldError, err, "template", name)
		InternalServerError("Rendering failed").Write(w)
		return false
	}
	NewHTMXResponse().Body(body).Header("Content-Type", "text/html; charset=utf-8").Write(w)
	return true
}

func (s *Server) renderBytes(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// statusView is what the partial templates need to pick between loading,
// error and content.
type statusView struct {
	Loading   bool
	Failed    bool
	ErrorText string
	// Poll is the partial URL re-requested while loading.
	Poll string
}

func newStatusView(st controller.State, poll string) statusView {
	return statusView{
		Loading:   st.Status == controller.StatusLoading,
		Failed:    st.Status == controller.StatusFailed,
		ErrorText: view.ErrorMessage,
		Poll:      poll,
	}
}

// sanitizeInput removes control characters except tab, newline and carriage
// return, and trims surrounding whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// singleLine flattens text for event stream payloads and log fields.
func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
