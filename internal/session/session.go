// Package session holds the signed-in sessions of the gateway. A session
// carries the provider id token that the remote client forwards as bearer.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/TusharChow20/project-Chef-Lokal/internal/events"
	"github.com/TusharChow20/project-Chef-Lokal/internal/model"
	"github.com/TusharChow20/project-Chef-Lokal/internal/remote"
)

var (
	ErrInvalidToken = errors.New("invalid or expired session token")
	ErrSessionEnded = errors.New("session ended, please login again")
)

type Session struct {
	ID        string
	Email     string
	Name      string
	Role      model.Role
	IDToken   string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Credential is what the remote client needs to call the store for this session.
func (s Session) Credential() remote.Credential {
	return remote.Credential{SessionID: s.ID, Token: s.IDToken}
}

type Claims struct {
	SessionID string     `json:"sid"`
	Email     string     `json:"email"`
	Role      model.Role `json:"role"`
	jwt.RegisteredClaims
}

type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time

	mu          sync.RWMutex
	sessions    map[string]*Session
	unsubscribe func()
}

func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{
		secret:   []byte(secret),
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Init engancha el manager al bus: una revocación cierra la sesión completa.
func (m *Manager) Init(bus events.Bus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unsubscribe != nil {
		return
	}
	m.unsubscribe = bus.Subscribe(events.SessionRevoked, func(_ context.Context, e events.Event) {
		if m.End(e.SessionID) {
			log.Warn().Str("session_id", e.SessionID).Str("reason", e.Reason).Msg("session: revoked")
		}
	})
}

// Teardown unsubscribes from the bus and drops every session.
func (m *Manager) Teardown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
	n := len(m.sessions)
	m.sessions = make(map[string]*Session)
	log.Info().Int("sessions", n).Msg("session: teardown")
}

// Open creates a session for user and returns its signed token.
func (m *Manager) Open(user model.User, idToken string) (string, *Session, error) {
	return m.OpenFor(user, idToken, 0)
}

// OpenFor is Open for an id token that expires after tokenLifetime: the
// session never outlives the credential it forwards. Zero means unknown.
func (m *Manager) OpenFor(user model.User, idToken string, tokenLifetime time.Duration) (string, *Session, error) {
	ttl := m.ttl
	if tokenLifetime > 0 && tokenLifetime < ttl {
		ttl = tokenLifetime
	}
	now := m.now()
	s := &Session{
		ID:        uuid.NewString(),
		Email:     user.Email,
		Name:      user.DisplayName,
		Role:      user.Role,
		IDToken:   idToken,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	claims := Claims{
		SessionID: s.ID,
		Email:     s.Email,
		Role:      s.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        s.ID,
			Subject:   s.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("session: sign token: %w", err)
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	log.Info().Str("session_id", s.ID).Str("email", s.Email).Str("role", string(s.Role)).Msg("session: opened")
	out := *s
	return token, &out, nil
}

// Resolve validates token and returns a copy of the live session behind it.
func (m *Manager) Resolve(token string) (*Session, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now))
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[claims.SessionID]
	if !ok {
		return nil, ErrSessionEnded
	}
	if m.now().After(s.ExpiresAt) {
		delete(m.sessions, s.ID)
		return nil, ErrSessionEnded
	}
	out := *s
	return &out, nil
}

// End drops one session. It reports whether the session was live.
func (m *Manager) End(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return false
	}
	delete(m.sessions, id)
	return true
}

// UpdateRole sets the role of every live session of email, e.g. after an
// approved role request.
func (m *Manager) UpdateRole(email string, role model.Role) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.sessions {
		if s.Email == email {
			s.Role = role
			n++
		}
	}
	return n
}

// Sweep drops expired sessions.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	n := 0
	for id, s := range m.sessions {
		if now.After(s.ExpiresAt) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
