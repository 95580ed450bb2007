// Package session carries one-shot flash messages between a mutating
// request and the page it redirects to.
//
// Messages travel in a cookie holding an HS256-signed JWT. The signing key
// is derived from the application secret with HKDF, so the raw secret never
// signs anything directly. A flash is consumed by the first request that
// reads it.
package session

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/hkdf"
)

// CookieName is the name of the flash cookie.
const CookieName = "infratrack_flash"

const issuer = "infratrack"

var (
	// ErrInvalidFlash is returned when a flash cookie fails verification
	ErrInvalidFlash = errors.New("invalid flash cookie")
	// ErrExpiredFlash is returned when a flash cookie is past its TTL
	ErrExpiredFlash = errors.New("flash cookie has expired")
)

// Claims is the signed payload of a flash cookie.
type Claims struct {
	Messages []string `json:"msgs"`
	jwt.RegisteredClaims
}

// Flash signs and verifies flash cookies.
type Flash struct {
	key    []byte
	ttl    time.Duration
	secure bool
}

// NewFlash derives a signing key from secret and returns a Flash whose
// cookies live for ttl. secure marks cookies for HTTPS only.
func NewFlash(secret string, ttl time.Duration, secure bool) (*Flash, error) {
	if secret == "" {
		return nil, errors.New("secret key is required")
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte("infratrack flash v1")), key); err != nil {
		return nil, fmt.Errorf("derive flash key: %w", err)
	}

	return &Flash{key: key, ttl: ttl, secure: secure}, nil
}

// Add queues msg for the next page the client renders. Messages already
// pending on the request are kept.
func (f *Flash) Add(c echo.Context, msg string) error {
	msgs, _ := f.pending(c)
	msgs = append(msgs, msg)

	token, err := f.sign(msgs)
	if err != nil {
		return err
	}

	f.setCookie(c, token, int(f.ttl.Seconds()))
	// Later reads within this request see the queued messages too.
	c.Set(CookieName, msgs)
	return nil
}

// Pop returns and clears the pending messages. A missing, tampered or
// expired cookie yields no messages.
func (f *Flash) Pop(c echo.Context) []string {
	msgs, present := f.pending(c)
	if present {
		f.setCookie(c, "", -1)
		c.Set(CookieName, []string(nil))
	}
	return msgs
}

func (f *Flash) pending(c echo.Context) ([]string, bool) {
	if v, ok := c.Get(CookieName).([]string); ok {
		return v, len(v) > 0
	}

	cookie, err := c.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil, false
	}

	claims, err := f.verify(cookie.Value)
	if err != nil {
		return nil, true
	}
	return claims.Messages, true
}

func (f *Flash) sign(msgs []string) (string, error) {
	now := time.Now()
	claims := Claims{
		Messages: msgs,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(f.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(f.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign flash: %w", err)
	}
	return token, nil
}

func (f *Flash) verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return f.key, nil
	}, jwt.WithIssuer(issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredFlash
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidFlash, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidFlash
	}
	return claims, nil
}

func (f *Flash) setCookie(c echo.Context, value string, maxAge int) {
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   f.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
