package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"infratrack.io/infratrack/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// pageNames lists every page template; each is parsed together with the
// base layout and the shared partials.
var pageNames = []string{
	"index", "hosts", "host_form",
	"tasks", "task_form",
	"changes", "change_form",
	"error",
}

// hostSelectData feeds the shared host dropdown partial.
type hostSelectData struct {
	Choices  []models.HostChoice
	Selected string
	Errors   map[string][]string
}

var templateFuncs = template.FuncMap{
	"timestamp": func(t time.Time) string {
		return t.UTC().Format("2006-01-02 15:04 UTC")
	},
	"statusText": http.StatusText,
	"hostSelect": func(choices []models.HostChoice, selected string, errs map[string][]string) hostSelectData {
		return hostSelectData{Choices: choices, Selected: selected, Errors: errs}
	},
}

func parseTemplates() (map[string]*template.Template, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New("base.html").Funcs(templateFuncs).ParseFS(templateFS,
			"templates/base.html",
			"templates/partials.html",
			"templates/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = t
	}
	return pages, nil
}

// Render writes component to the response with the given status code.
// The component is rendered into a buffer first so a template failure
// never leaves a half-written page behind.
func Render(c echo.Context, status int, component templ.Component) error {
	var buf bytes.Buffer
	if err := component.Render(c.Request().Context(), &buf); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return c.HTMLBlob(status, buf.Bytes())
}

// page returns the named page as a templ component bound to data.
func (h *Handler) page(name string, data *Page) templ.Component {
	return templ.FromGoHTML(h.pages[name], data)
}
