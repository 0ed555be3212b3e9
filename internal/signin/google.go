package signin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"foodDeliveryAdmin/internal/auth"
	"foodDeliveryAdmin/models"
)

// Refusal reasons carried to the sign-in error page.
const (
	ReasonAccessDenied = "AccessDenied"
	ReasonCallback     = "Callback"
)

const defaultUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

// DomainGate admits only addresses of one email domain.
type DomainGate struct {
	Domain string
}

// Allow reports whether email ends in "@<domain>", ignoring case.
func (g DomainGate) Allow(email string) bool {
	domain := normalizeDomain(g.Domain)
	email = strings.ToLower(strings.TrimSpace(email))
	if domain == "" {
		return false
	}
	at := strings.LastIndex(email, "@")
	return at > 0 && email[at+1:] == domain
}

// Refusal is a failed Google sign-in.
type Refusal struct {
	Reason string
	Err    error
}

func (r *Refusal) Error() string {
	if r.Err != nil {
		return fmt.Sprintf("google sign-in refused (%s): %v", r.Reason, r.Err)
	}
	return "google sign-in refused (" + r.Reason + ")"
}

func (r *Refusal) Unwrap() error { return r.Err }

// ErrorPageMessage is the text the sign-in error page shows for reason.
func ErrorPageMessage(reason, domain string) string {
	if reason == ReasonAccessDenied {
		return fmt.Sprintf("Only @%s email addresses are allowed to sign in.", strings.TrimPrefix(domain, "@"))
	}
	return "An error occurred during authentication."
}

// GoogleBackend registers a Google-authenticated admin with the backend.
type GoogleBackend interface {
	GoogleSignIn(ctx context.Context, email, name string) (string, error)
}

// GoogleConfig configures the Google sign-in. Endpoint and UserInfoURL default to Google's.
type GoogleConfig struct {
	ClientID      string
	ClientSecret  string
	RedirectURL   string
	AllowedDomain string
	JWTSecret     string
	Endpoint      oauth2.Endpoint
	UserInfoURL   string
}

// GoogleFlow is the Google OAuth sign-in gated by email domain.
type GoogleFlow struct {
	oauth       *oauth2.Config
	gate        DomainGate
	userInfoURL string
	secret      string
	backend     GoogleBackend
	sessions    SessionStarter
	log         *slog.Logger
}

// NewGoogleFlow creates a GoogleFlow.
func NewGoogleFlow(cfg GoogleConfig, b GoogleBackend, sessions SessionStarter, log *slog.Logger) *GoogleFlow {
	endpoint := cfg.Endpoint
	if endpoint.AuthURL == "" {
		endpoint = google.Endpoint
	}
	userInfo := cfg.UserInfoURL
	if userInfo == "" {
		userInfo = defaultUserInfoURL
	}
	if log == nil {
		log = slog.Default()
	}
	return &GoogleFlow{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
		gate:        DomainGate{Domain: normalizeDomain(cfg.AllowedDomain)},
		userInfoURL: userInfo,
		secret:      cfg.JWTSecret,
		backend:     b,
		sessions:    sessions,
		log:         log,
	}
}

// normalizeDomain lowercases d and drops a leading "@".
func normalizeDomain(d string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(d), "@"))
}

// Domain is the allowed email domain, without "@".
func (g *GoogleFlow) Domain() string { return g.gate.Domain }

// AuthCodeURL is where the browser is sent to sign in with Google.
func (g *GoogleFlow) AuthCodeURL(state string) string {
	return g.oauth.AuthCodeURL(state, oauth2.SetAuthURLParam("hd", g.gate.Domain))
}

type googleProfile struct {
	Email         string `json:"email"`
	EmailVerified *bool  `json:"email_verified"`
	Name          string `json:"name"`
}

// Callback completes the sign-in for an authorization code. Every failure is a *Refusal.
func (g *GoogleFlow) Callback(ctx context.Context, code string) (*models.Session, error) {
	if strings.TrimSpace(code) == "" {
		return nil, &Refusal{Reason: ReasonCallback, Err: fmt.Errorf("missing authorization code")}
	}
	tok, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		g.log.Warn("google_exchange_failed", slog.Any("err", err))
		return nil, &Refusal{Reason: ReasonCallback, Err: err}
	}
	profile, err := g.fetchProfile(ctx, tok)
	if err != nil {
		g.log.Warn("google_profile_failed", slog.Any("err", err))
		return nil, &Refusal{Reason: ReasonCallback, Err: err}
	}
	if !g.gate.Allow(profile.Email) || (profile.EmailVerified != nil && !*profile.EmailVerified) {
		g.log.Warn("google_domain_denied", slog.String("email", profile.Email))
		return nil, &Refusal{Reason: ReasonAccessDenied}
	}
	token, err := g.backend.GoogleSignIn(ctx, profile.Email, profile.Name)
	if err != nil {
		g.log.Error("google_backend_signin_failed", slog.String("email", profile.Email), slog.Any("err", err))
		return nil, &Refusal{Reason: ReasonCallback, Err: err}
	}
	id, err := auth.ParseGoogleToken(token, g.secret)
	if err != nil {
		g.log.Warn("google_token_rejected", slog.String("email", profile.Email), slog.Any("err", err))
		return nil, &Refusal{Reason: ReasonCallback, Err: err}
	}
	sess, err := g.sessions.Start(ctx, token, *id)
	if err != nil {
		g.log.Error("session_start_failed", slog.String("user_id", id.UserID), slog.Any("err", err))
		return nil, &Refusal{Reason: ReasonCallback, Err: err}
	}
	g.log.Info("admin_signed_in", slog.String("user_id", id.UserID), slog.String("method", "google"))
	return sess, nil
}

func (g *GoogleFlow) fetchProfile(ctx context.Context, tok *oauth2.Token) (*googleProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.oauth.Client(ctx, tok).Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo: HTTP %d", resp.StatusCode)
	}
	var p googleProfile
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&p); err != nil {
		return nil, fmt.Errorf("userinfo: %w", err)
	}
	if p.Email == "" {
		return nil, fmt.Errorf("userinfo: no email")
	}
	return &p, nil
}
