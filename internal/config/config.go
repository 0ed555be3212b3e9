package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Auth modes. A deployment runs exactly one sign-in strategy.
const (
	AuthModeOTP    = "otp"
	AuthModeGoogle = "google"
)

// Config holds all application configuration.
type Config struct {
	HTTP     HTTPConfig
	GRPC     GRPCConfig
	Database DatabaseConfig
	Backend  BackendConfig
	Auth     AuthConfig
	OTP      OTPConfig
	Google   GoogleConfig
	Events   EventsConfig
	LogLevel string
}

// HTTPConfig contains dashboard HTTP server settings.
type HTTPConfig struct {
	Address      string // listen address (e.g., ":8080")
	CookieSecure bool   // set Secure on cookies (HTTPS deployments)
}

// GRPCConfig contains gRPC server settings.
type GRPCConfig struct {
	Address string // gRPC server listen address (e.g., ":50051")
}

// DatabaseConfig contains database-related settings.
type DatabaseConfig struct {
	Path string // SQLite database file path
}

// BackendConfig describes the remote REST backend.
type BackendConfig struct {
	BaseURL string
	Timeout time.Duration // default bound for backend calls
}

// AuthConfig contains authentication settings.
type AuthConfig struct {
	Mode          string        // "otp" or "google"
	JWTSecret     string        // shared secret the backend signs tokens with
	SessionSecret string        // signs session cookies
	SessionMaxAge time.Duration // session lifetime
}

// OTPConfig contains mobile OTP sign-in settings.
type OTPConfig struct {
	CountryCode  string
	SendTimeout  time.Duration
	SendPath     string
	VerifyPath   string
	RateInterval time.Duration // one token per interval per mobile number
	RateBurst    int
}

// GoogleConfig contains Google OAuth sign-in settings.
type GoogleConfig struct {
	ClientID      string
	ClientSecret  string
	RedirectURL   string
	AllowedDomain string
	SignInPath    string
}

// EventsConfig contains event publishing settings. Empty NATSURL disables publishing.
type EventsConfig struct {
	NATSURL string
}

// Load loads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg, err := load("", "")
	if err != nil {
		return nil, err
	}

	// Validate critical settings
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is not set; required for production")
	}
	if cfg.Auth.SessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET environment variable is not set; required for production")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadWithDefaults is like Load but uses safe defaults for secrets in development.
// WARNING: Only use in development! Use Load() in production.
func LoadWithDefaults() (*Config, error) {
	cfg, err := load("dev-secret-change-me", "dev-session-secret-change-me")
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func load(jwtDefault, sessionDefault string) (*Config, error) {
	backendTimeout, err := getEnvDuration("BACKEND_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}
	maxAge, err := getEnvDuration("SESSION_MAX_AGE", 30*24*time.Hour)
	if err != nil {
		return nil, err
	}
	sendTimeout, err := getEnvDuration("OTP_SEND_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	rateInterval, err := getEnvDuration("OTP_RATE_INTERVAL", 30*time.Second)
	if err != nil {
		return nil, err
	}
	rateBurst, err := getEnvInt("OTP_RATE_BURST", 3)
	if err != nil {
		return nil, err
	}
	cookieSecure, err := getEnvBool("COOKIE_SECURE", false)
	if err != nil {
		return nil, err
	}

	return &Config{
		HTTP: HTTPConfig{
			Address:      getEnv("HTTP_ADDRESS", ":8080"),
			CookieSecure: cookieSecure,
		},
		GRPC: GRPCConfig{
			Address: getEnv("GRPC_ADDRESS", ":50051"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "dashboard.db"),
		},
		Backend: BackendConfig{
			BaseURL: strings.TrimRight(getEnv("BACKEND_API_URL", "http://localhost:3001"), "/"),
			Timeout: backendTimeout,
		},
		Auth: AuthConfig{
			Mode:          strings.ToLower(getEnv("AUTH_MODE", AuthModeOTP)),
			JWTSecret:     getEnv("JWT_SECRET", jwtDefault),
			SessionSecret: getEnv("SESSION_SECRET", sessionDefault),
			SessionMaxAge: maxAge,
		},
		OTP: OTPConfig{
			CountryCode:  getEnv("OTP_COUNTRY_CODE", "+91"),
			SendTimeout:  sendTimeout,
			SendPath:     getEnv("OTP_SEND_PATH", "/auth/signin"),
			VerifyPath:   getEnv("OTP_VERIFY_PATH", "/admin/verify-otp"),
			RateInterval: rateInterval,
			RateBurst:    rateBurst,
		},
		Google: GoogleConfig{
			ClientID:      getEnv("GOOGLE_CLIENT_ID", ""),
			ClientSecret:  getEnv("GOOGLE_CLIENT_SECRET", ""),
			RedirectURL:   getEnv("GOOGLE_REDIRECT_URL", "http://localhost:8080/signin/google/callback"),
			AllowedDomain: strings.TrimPrefix(getEnv("ALLOWED_EMAIL_DOMAIN", "amigo.gg"), "@"),
			SignInPath:    getEnv("GOOGLE_SIGNIN_PATH", "/admin/google"),
		},
		Events: EventsConfig{
			NATSURL: getEnv("NATS_URL", ""),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}, nil
}

// Validate checks cross-field settings.
func (c *Config) Validate() error {
	switch c.Auth.Mode {
	case AuthModeOTP:
	case AuthModeGoogle:
		if c.Google.ClientID == "" || c.Google.ClientSecret == "" {
			return fmt.Errorf("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET are required when AUTH_MODE=google")
		}
		if c.Google.AllowedDomain == "" {
			return fmt.Errorf("ALLOWED_EMAIL_DOMAIN is required when AUTH_MODE=google")
		}
	default:
		return fmt.Errorf("invalid AUTH_MODE %q: want %q or %q", c.Auth.Mode, AuthModeOTP, AuthModeGoogle)
	}
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("BACKEND_API_URL must not be empty")
	}
	if c.OTP.RateBurst <= 0 {
		return fmt.Errorf("OTP_RATE_BURST must be positive")
	}
	return nil
}

// getEnv retrieves an environment variable with a default fallback.
func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

// getEnvInt retrieves an environment variable as an integer with a default fallback.
func getEnvInt(key string, defaultVal int) (int, error) {
	if value, exists := os.LookupEnv(key); exists {
		intVal, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid integer for %s: %w", key, err)
		}
		return intVal, nil
	}
	return defaultVal, nil
}

// getEnvDuration retrieves an environment variable as a time.Duration ("10s", "720h").
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	if value, exists := os.LookupEnv(key); exists {
		d, err := time.ParseDuration(value)
		if err != nil {
			return 0, fmt.Errorf("invalid duration for %s: %w", key, err)
		}
		return d, nil
	}
	return defaultVal, nil
}

func getEnvBool(key string, defaultVal bool) (bool, error) {
	if value, exists := os.LookupEnv(key); exists {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return false, fmt.Errorf("invalid bool for %s: %w", key, err)
		}
		return b, nil
	}
	return defaultVal, nil
}

// String returns a string representation of the config (sensitive values are masked).
func (c *Config) String() string {
	return fmt.Sprintf("Config{HTTP: %s, gRPC: %s, DB: %s, Backend: %s, AuthMode: %s, Auth: *** (masked) ***}",
		c.HTTP.Address, c.GRPC.Address, c.Database.Path, c.Backend.BaseURL, c.Auth.Mode)
}
