// Package web serves the InfraTrack browser UI: listings and add/edit/delete
// forms for hosts, tasks and changes.
package web

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"infratrack.io/infratrack/internal/session"
	"infratrack.io/infratrack/internal/storage"
	"infratrack.io/infratrack/internal/validation"
	"infratrack.io/infratrack/models"
)

// Store is the persistence surface the web UI needs.
type Store interface {
	ListHosts(ctx context.Context) ([]models.Host, error)
	HostChoices(ctx context.Context) ([]models.HostChoice, error)
	GetHost(ctx context.Context, id int64) (*models.Host, error)
	CreateHost(ctx context.Context, f models.HostFields) (*models.Host, error)
	UpdateHost(ctx context.Context, id int64, f models.HostFields) (*models.Host, error)
	DeleteHost(ctx context.Context, id int64) (storage.DeleteResult, error)

	ListTasks(ctx context.Context) ([]models.Task, error)
	GetTask(ctx context.Context, id int64) (*models.Task, error)
	CreateTask(ctx context.Context, f models.TaskFields) (*models.Task, error)
	UpdateTask(ctx context.Context, id int64, f models.TaskFields) (*models.Task, error)
	DeleteTask(ctx context.Context, id int64) error

	ListChanges(ctx context.Context) ([]models.Change, error)
	GetChange(ctx context.Context, id int64) (*models.Change, error)
	CreateChange(ctx context.Context, f models.ChangeFields) (*models.Change, error)
	UpdateChange(ctx context.Context, id int64, f models.ChangeFields) (*models.Change, error)
	DeleteChange(ctx context.Context, id int64) error

	GetStatistics(ctx context.Context) (*storage.Statistics, error)
}

// Page is the data handed to every page template.
type Page struct {
	Title   string
	Nav     string
	CSRF    string
	Flashes []string
	Notice  string
	Action  string
	Errors  map[string][]string

	// Form values
	Host    validation.HostInput
	Task    validation.TaskInput
	Change  validation.ChangeInput
	Choices []models.HostChoice

	// Listings
	Hosts   []models.Host
	Tasks   []models.Task
	Changes []models.Change
	Stats   *storage.Statistics

	// Error page
	Status  int
	Message string
}

// Handler handles web UI requests.
type Handler struct {
	store     Store
	validator *validation.Validator
	flash     *session.Flash
	logger    *slog.Logger
	pages     map[string]*template.Template
}

// NewHandler creates a new web handler.
func NewHandler(store Store, flash *session.Flash, logger *slog.Logger) (*Handler, error) {
	if logger == nil {
		logger = slog.Default()
	}

	pages, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	return &Handler{
		store:     store,
		validator: validation.New(),
		flash:     flash,
		logger:    logger,
		pages:     pages,
	}, nil
}

func newPage(c echo.Context, title, nav string) *Page {
	return &Page{
		Title:  title,
		Nav:    nav,
		CSRF:   csrfToken(c),
		Errors: map[string][]string{},
	}
}

// render pops pending flash messages into p and writes the named page.
func (h *Handler) render(c echo.Context, status int, name string, p *Page) error {
	p.Flashes = h.flash.Pop(c)
	return Render(c, status, h.page(name, p))
}

// redirect queues msg as a flash and sends the client to location.
func (h *Handler) redirect(c echo.Context, location, msg string) error {
	if err := h.flash.Add(c, msg); err != nil {
		h.logger.Warn("failed to set flash message", "error", err)
	}
	return c.Redirect(http.StatusSeeOther, location)
}

// ErrorPage renders the HTML error page.
func (h *Handler) ErrorPage(c echo.Context, status int, message string) error {
	p := newPage(c, http.StatusText(status), "")
	p.Status = status
	p.Message = message
	return h.render(c, status, "error", p)
}

// notFound maps storage.ErrNotFound to a 404 and passes other errors through.
func notFound(err error, what string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, what+" not found")
	}
	return err
}

// Index renders the landing page: record totals and the host listing.
func (h *Handler) Index(c echo.Context) error {
	ctx := c.Request().Context()

	stats, err := h.store.GetStatistics(ctx)
	if err != nil {
		return err
	}

	hosts, err := h.store.ListHosts(ctx)
	if err != nil {
		return err
	}

	p := newPage(c, "Inventory", "index")
	p.Stats = stats
	p.Hosts = hosts
	return h.render(c, http.StatusOK, "index", p)
}
