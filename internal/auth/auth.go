// Package auth implements the single-identity admin authenticator: a bcrypt
// secret check that issues opaque, expiring session tokens held in process
// memory.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is the single error for any failed login. There is
// only one admin identity, so nothing more specific is ever reported.
var ErrInvalidCredentials = errors.New("invalid credentials")

// CookieName is the session cookie the HTTP layer uses.
const CookieName = "fb_admin_session"

// Session is an issued admin session.
type Session struct {
	ID        string
	ExpiresAt time.Time
}

// Authenticator validates the admin secret and manages sessions. All state
// is process-held; restarting the server logs every admin out.
type Authenticator struct {
	hash []byte
	ttl  time.Duration

	mu       sync.Mutex
	sessions map[string]time.Time

	now func() time.Time
}

// New creates an Authenticator from a bcrypt password hash and a session
// lifetime.
func New(passwordHash string, ttl time.Duration) *Authenticator {
	return &Authenticator{
		hash:     []byte(passwordHash),
		ttl:      ttl,
		sessions: make(map[string]time.Time),
		now:      time.Now,
	}
}

// HashPassword derives a bcrypt hash for a plaintext admin secret. Used at
// startup when only ADMIN_PASSWORD is configured.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(b), nil
}

// Login compares the password against the admin secret and, on match, issues
// a session with the configured TTL.
func (a *Authenticator) Login(password string) (Session, error) {
	if err := bcrypt.CompareHashAndPassword(a.hash, []byte(password)); err != nil {
		return Session{}, ErrInvalidCredentials
	}

	id, err := generateSessionID()
	if err != nil {
		return Session{}, fmt.Errorf("generating session ID: %w", err)
	}

	expiresAt := a.now().Add(a.ttl)

	a.mu.Lock()
	a.sessions[id] = expiresAt
	a.mu.Unlock()

	return Session{ID: id, ExpiresAt: expiresAt}, nil
}

// Valid reports whether the session exists and has not expired. Expired
// sessions are dropped on sight.
func (a *Authenticator) Valid(id string) bool {
	if id == "" {
		return false
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	expiresAt, ok := a.sessions[id]
	if !ok {
		return false
	}
	if a.now().After(expiresAt) {
		delete(a.sessions, id)
		return false
	}
	return true
}

// Logout invalidates the session immediately, irrespective of remaining TTL.
func (a *Authenticator) Logout(id string) {
	a.mu.Lock()
	delete(a.sessions, id)
	a.mu.Unlock()
}

// Cleanup removes expired sessions. Called periodically so abandoned logins
// do not accumulate.
func (a *Authenticator) Cleanup() {
	now := a.now()

	a.mu.Lock()
	defer a.mu.Unlock()

	for id, expiresAt := range a.sessions {
		if now.After(expiresAt) {
			delete(a.sessions, id)
		}
	}
}

func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
