// Package session owns admin sessions: it creates them after sign-in, persists them in
// SQLite and hands the browser a signed token that refers to them.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"foodDeliveryAdmin/internal/auth"
	"foodDeliveryAdmin/models"
	"foodDeliveryAdmin/repository"
)

// CookieName is the cookie holding the signed session token.
const CookieName = "dashboard_session"

const issuer = "food-delivery-admin"

// ErrSessionNotFound is returned for unknown, expired or tampered sessions.
var ErrSessionNotFound = errors.New("session not found")

// Provider creates, resolves and ends sessions.
type Provider struct {
	repo   repository.SessionRepositoryI
	secret []byte
	maxAge time.Duration
	log    *slog.Logger
	now    func() time.Time

	mu    sync.Mutex
	onEnd []func(sessionID string)
}

// NewProvider creates a Provider. maxAge <= 0 means 30 days.
func NewProvider(repo repository.SessionRepositoryI, secret string, maxAge time.Duration, log *slog.Logger) *Provider {
	if maxAge <= 0 {
		maxAge = 30 * 24 * time.Hour
	}
	if log == nil {
		log = slog.Default()
	}
	return &Provider{repo: repo, secret: []byte(secret), maxAge: maxAge, log: log, now: time.Now}
}

// MaxAge is the session lifetime.
func (p *Provider) MaxAge() time.Duration { return p.maxAge }

// OnEnd registers fn to run after a session is ended explicitly.
func (p *Provider) OnEnd(fn func(sessionID string)) {
	p.mu.Lock()
	p.onEnd = append(p.onEnd, fn)
	p.mu.Unlock()
}

// Start persists a new session holding the backend access token.
func (p *Provider) Start(ctx context.Context, accessToken string, id auth.Identity) (*models.Session, error) {
	if accessToken == "" || id.UserID == "" {
		return nil, errors.New("access token and user id are required")
	}
	now := p.now().UTC().Truncate(time.Second)
	s := &models.Session{
		ID:           uuid.NewString(),
		UserID:       id.UserID,
		MobileNumber: id.MobileNumber,
		Email:        id.Email,
		AccessToken:  accessToken,
		CreatedAt:    now,
		ExpiresAt:    now.Add(p.maxAge),
	}
	if err := p.repo.Create(ctx, s); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	p.log.Info("session_started", slog.String("session_id", s.ID), slog.String("user_id", s.UserID))
	return s, nil
}

// Get returns a live session by ID. Expired sessions are deleted and reported as not found.
func (p *Provider) Get(ctx context.Context, id string) (*models.Session, error) {
	s, err := p.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if s == nil {
		return nil, ErrSessionNotFound
	}
	if s.Expired(p.now()) {
		if err := p.repo.Delete(ctx, id); err != nil {
			p.log.Warn("session_delete_failed", slog.String("session_id", id), slog.Any("err", err))
		}
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// End deletes the session and runs the OnEnd hooks.
func (p *Provider) End(ctx context.Context, id string) error {
	if err := p.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	p.mu.Lock()
	hooks := append([]func(string){}, p.onEnd...)
	p.mu.Unlock()
	for _, fn := range hooks {
		fn(id)
	}
	p.log.Info("session_ended", slog.String("session_id", id))
	return nil
}

type tokenClaims struct {
	jwt.RegisteredClaims
}

// Sign returns the token the browser holds for s: an HS256 JWT whose subject is the session ID.
func (p *Provider) Sign(s *models.Session) (string, error) {
	if len(p.secret) == 0 {
		return "", errors.New("session secret is empty")
	}
	claims := tokenClaims{RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   s.ID,
		IssuedAt:  jwt.NewNumericDate(s.CreatedAt),
		ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
	}}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
}

// ParseToken verifies a signed session token and returns the session ID it names.
func (p *Provider) ParseToken(tokenStr string) (string, error) {
	if len(p.secret) == 0 {
		return "", errors.New("session secret is empty")
	}
	tok, err := jwt.ParseWithClaims(tokenStr, &tokenClaims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return p.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(p.now))
	if err != nil || !tok.Valid {
		if err == nil {
			err = errors.New("invalid token")
		}
		return "", err
	}
	c, _ := tok.Claims.(*tokenClaims)
	if c == nil || c.Subject == "" {
		return "", errors.New("invalid claims")
	}
	return c.Subject, nil
}

// Lookup resolves a signed token to its live session.
func (p *Provider) Lookup(ctx context.Context, tokenStr string) (*models.Session, error) {
	id, err := p.ParseToken(tokenStr)
	if err != nil {
		return nil, ErrSessionNotFound
	}
	return p.Get(ctx, id)
}

// Resolve implements auth.PrincipalResolver: (nil, nil) for unknown or expired sessions.
func (p *Provider) Resolve(ctx context.Context, tokenStr string) (*auth.Principal, error) {
	s, err := p.Lookup(ctx, tokenStr)
	if errors.Is(err, ErrSessionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return PrincipalOf(s), nil
}

// PrincipalOf describes the admin behind s.
func PrincipalOf(s *models.Session) *auth.Principal {
	return &auth.Principal{
		SessionID: s.ID,
		Identity:  auth.Identity{UserID: s.UserID, MobileNumber: s.MobileNumber, Email: s.Email},
	}
}

// Purge deletes expired sessions.
func (p *Provider) Purge(ctx context.Context) (int64, error) {
	n, err := p.repo.DeleteExpired(ctx, p.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		p.log.Info("sessions_purged", slog.Int64("count", n))
	}
	return n, nil
}

// Run purges expired sessions every interval until ctx is done.
func (p *Provider) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if _, err := p.Purge(ctx); err != nil && ctx.Err() == nil {
				p.log.Error("sessions_purge_failed", slog.Any("err", err))
			}
		}
	}
}
