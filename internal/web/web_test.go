package web

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infratrack.io/infratrack/internal/session"
	"infratrack.io/infratrack/internal/storage"
	"infratrack.io/infratrack/models"
)

var errInjected = errors.New("injected failure")

// faultyStore wraps a real store and fails the mutations named in fail.
type faultyStore struct {
	*storage.Storage
	fail map[string]bool
}

func (f *faultyStore) CreateHost(ctx context.Context, in models.HostFields) (*models.Host, error) {
	if f.fail["CreateHost"] {
		return nil, errInjected
	}
	return f.Storage.CreateHost(ctx, in)
}

func (f *faultyStore) UpdateHost(ctx context.Context, id int64, in models.HostFields) (*models.Host, error) {
	if f.fail["UpdateHost"] {
		return nil, errInjected
	}
	return f.Storage.UpdateHost(ctx, id, in)
}

func (f *faultyStore) DeleteHost(ctx context.Context, id int64) (storage.DeleteResult, error) {
	if f.fail["DeleteHost"] {
		return storage.DeleteResult{}, errInjected
	}
	return f.Storage.DeleteHost(ctx, id)
}

func (f *faultyStore) CreateTask(ctx context.Context, in models.TaskFields) (*models.Task, error) {
	if f.fail["CreateTask"] {
		return nil, errInjected
	}
	return f.Storage.CreateTask(ctx, in)
}

func (f *faultyStore) CreateChange(ctx context.Context, in models.ChangeFields) (*models.Change, error) {
	if f.fail["CreateChange"] {
		return nil, errInjected
	}
	return f.Storage.CreateChange(ctx, in)
}

func newTestHandler(t *testing.T, fail ...string) (*Handler, *storage.Storage) {
	t.Helper()

	store, err := storage.Open("sqlite://"+filepath.Join(t.TempDir(), "web.db"), 0, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	flash, err := session.NewFlash("test-secret", time.Minute, false)
	require.NoError(t, err)

	fs := &faultyStore{Storage: store, fail: map[string]bool{}}
	for _, name := range fail {
		fs.fail[name] = true
	}

	h, err := NewHandler(fs, flash, nil)
	require.NoError(t, err)
	return h, store
}

// call invokes handler directly; CSRF is enforced by the server, not here.
func call(h echo.HandlerFunc, method, target string, form url.Values, params ...string) (*httptest.ResponseRecorder, error) {
	e := echo.New()
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(CSRFContextKey, "token-123")
	if len(params) == 2 {
		c.SetParamNames(params[0])
		c.SetParamValues(params[1])
	}
	return rec, h(c)
}

func TestTemplatesParse(t *testing.T) {
	pages, err := parseTemplates()
	require.NoError(t, err)
	for _, name := range pageNames {
		assert.NotNil(t, pages[name], name)
	}
}

func TestRender(t *testing.T) {
	h, _ := newTestHandler(t)

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	p := newPage(c, "Not Found", "")
	p.Status = http.StatusNotFound
	p.Message = "Host not found"

	require.NoError(t, Render(c, http.StatusNotFound, h.page("error", p)))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "404 Not Found")
	assert.Contains(t, rec.Body.String(), "Host not found")
}

func TestIndex(t *testing.T) {
	h, store := newTestHandler(t)
	_, err := store.CreateHost(context.Background(), models.HostFields{Hostname: "web-01", IPAddress: "10.0.0.1", Tags: "web, ,prod"})
	require.NoError(t, err)

	rec, err := call(h.Index, http.MethodGet, "/", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "1 hosts · 0 tasks · 0 changes")
	assert.Contains(t, body, "web-01")
	assert.Contains(t, body, `<span class="tag">web</span><span class="tag">prod</span>`)
	assert.Contains(t, body, `value="token-123"`)
}

func TestAddHost_PersistenceFailure(t *testing.T) {
	h, store := newTestHandler(t, "CreateHost")

	rec, err := call(h.AddHost, http.MethodPost, "/hosts/add", url.Values{"hostname": {"web-01"}, "ip_address": {"10.0.0.1"}})
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Error adding host. Please try again.")
	assert.Contains(t, rec.Body.String(), `value="web-01"`)

	hosts, err := store.ListHosts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, hosts)
}

func TestEditHost_PersistenceFailure(t *testing.T) {
	h, store := newTestHandler(t, "UpdateHost")
	host, err := store.CreateHost(context.Background(), models.HostFields{Hostname: "web-01", IPAddress: "10.0.0.1"})
	require.NoError(t, err)
	id := strconv.FormatInt(host.ID, 10)

	rec, err := call(h.EditHost, http.MethodPost, "/hosts/edit/"+id, url.Values{"hostname": {"web-02"}, "ip_address": {"10.0.0.2"}}, "id", id)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Error updating host. Please try again.")

	got, err := store.GetHost(context.Background(), host.ID)
	require.NoError(t, err)
	assert.Equal(t, "web-01", got.Hostname)
}

func TestDeleteHost_PersistenceFailure(t *testing.T) {
	h, store := newTestHandler(t, "DeleteHost")
	host, err := store.CreateHost(context.Background(), models.HostFields{Hostname: "web-01", IPAddress: "10.0.0.1"})
	require.NoError(t, err)
	id := strconv.FormatInt(host.ID, 10)

	rec, err := call(h.DeleteHost, http.MethodPost, "/hosts/delete/"+id, url.Values{}, "id", id)
	require.NoError(t, err)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/hosts", rec.Header().Get(echo.HeaderLocation))

	var flashSet bool
	for _, c := range rec.Result().Cookies() {
		flashSet = flashSet || (c.Name == session.CookieName && c.Value != "")
	}
	assert.True(t, flashSet, "expected a flash cookie")

	_, err = store.GetHost(context.Background(), host.ID)
	assert.NoError(t, err)
}

func TestAddTask_PersistenceFailure(t *testing.T) {
	h, store := newTestHandler(t, "CreateTask")
	host, err := store.CreateHost(context.Background(), models.HostFields{Hostname: "web-01", IPAddress: "10.0.0.1"})
	require.NoError(t, err)

	rec, err := call(h.AddTask, http.MethodPost, "/tasks/add", url.Values{
		"host_id":     {strconv.FormatInt(host.ID, 10)},
		"description": {"patch"},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Error adding task. Please try again.")
	// The chosen host stays selected on the re-rendered form.
	assert.Contains(t, rec.Body.String(), "selected>web-01</option>")
}

func TestAddChange_PersistenceFailure(t *testing.T) {
	h, store := newTestHandler(t, "CreateChange")
	host, err := store.CreateHost(context.Background(), models.HostFields{Hostname: "web-01", IPAddress: "10.0.0.1"})
	require.NoError(t, err)

	rec, err := call(h.AddChange, http.MethodPost, "/changes/add", url.Values{
		"host_id": {strconv.FormatInt(host.ID, 10)},
		"summary": {"resize"},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Error logging change. Please try again.")
}

func TestEditTask_NotFound(t *testing.T) {
	h, _ := newTestHandler(t)

	_, err := call(h.EditTask, http.MethodGet, "/tasks/edit/7", nil, "id", "7")
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusNotFound, he.Code)

	_, err = call(h.EditTask, http.MethodGet, "/tasks/edit/-1", nil, "id", "-1")
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusNotFound, he.Code)
}

func TestEditTask_PrefillsForm(t *testing.T) {
	h, store := newTestHandler(t)
	ctx := context.Background()

	a, err := store.CreateHost(ctx, models.HostFields{Hostname: "alpha", IPAddress: "10.0.0.1"})
	require.NoError(t, err)
	_, err = store.CreateHost(ctx, models.HostFields{Hostname: "beta", IPAddress: "10.0.0.2"})
	require.NoError(t, err)
	task, err := store.CreateTask(ctx, models.TaskFields{HostID: a.ID, Description: "rotate <logs>"})
	require.NoError(t, err)
	id := strconv.FormatInt(task.ID, 10)

	rec, err := call(h.EditTask, http.MethodGet, "/tasks/edit/"+id, nil, "id", id)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "selected>alpha</option>")
	assert.Contains(t, body, ">beta</option>")
	assert.Contains(t, body, "rotate &lt;logs&gt;")
	assert.Less(t, strings.Index(body, ">alpha<"), strings.Index(body, ">beta<"))
}
