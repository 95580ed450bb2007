package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext(cookies ...*http.Cookie) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func flashCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == CookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie set", CookieName)
	return nil
}

func TestNewFlash(t *testing.T) {
	_, err := NewFlash("", time.Minute, false)
	assert.Error(t, err)

	f, err := NewFlash("secret", 0, false)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, f.ttl)
	assert.Len(t, f.key, 32)
	assert.NotEqual(t, []byte("secret"), f.key)
}

func TestAddThenPop(t *testing.T) {
	f, err := NewFlash("secret", time.Minute, false)
	require.NoError(t, err)

	c, rec := newContext()
	require.NoError(t, f.Add(c, "Host added successfully."))
	cookie := flashCookie(t, rec)
	assert.True(t, cookie.HttpOnly)

	next, nextRec := newContext(cookie)
	assert.Equal(t, []string{"Host added successfully."}, f.Pop(next))

	cleared := flashCookie(t, nextRec)
	assert.Empty(t, cleared.Value)
	assert.Negative(t, cleared.MaxAge)
}

func TestAddAccumulates(t *testing.T) {
	f, err := NewFlash("secret", time.Minute, false)
	require.NoError(t, err)

	c, _ := newContext()
	require.NoError(t, f.Add(c, "first"))
	require.NoError(t, f.Add(c, "second"))

	assert.Equal(t, []string{"first", "second"}, f.Pop(c))
	assert.Empty(t, f.Pop(c))
}

func TestPop_NoCookie(t *testing.T) {
	f, err := NewFlash("secret", time.Minute, false)
	require.NoError(t, err)

	c, rec := newContext()
	assert.Empty(t, f.Pop(c))
	assert.Empty(t, rec.Result().Cookies())
}

func TestPop_RejectsForeignKey(t *testing.T) {
	signer, err := NewFlash("one-secret", time.Minute, false)
	require.NoError(t, err)
	reader, err := NewFlash("other-secret", time.Minute, false)
	require.NoError(t, err)

	c, rec := newContext()
	require.NoError(t, signer.Add(c, "forged"))

	next, _ := newContext(flashCookie(t, rec))
	assert.Empty(t, reader.Pop(next))
}

func TestVerify_Expired(t *testing.T) {
	f, err := NewFlash("secret", time.Minute, false)
	require.NoError(t, err)

	f.ttl = -time.Minute
	token, err := f.sign([]string{"stale"})
	require.NoError(t, err)

	_, err = f.verify(token)
	assert.ErrorIs(t, err, ErrExpiredFlash)

	_, err = f.verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidFlash)
}
