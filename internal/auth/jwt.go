package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	jwt "github.com/golang-jwt/jwt/v5"
	"google.golang.org/grpc/metadata"
)

// Identity is what a verified backend token says about the admin.
type Identity struct {
	UserID       string
	MobileNumber string
	Email        string
}

// Principal represents the authenticated caller of a dashboard request.
type Principal struct {
	SessionID string
	Identity
}

type principalKey struct{}

// WithPrincipal stores the principal in context.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext retrieves the principal from context (if any).
func FromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" value.
func BearerToken(header string) (string, error) {
	if strings.TrimSpace(header) == "" {
		return "", errors.New("missing authorization")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization header")
	}
	tok := strings.TrimSpace(parts[1])
	if tok == "" {
		return "", errors.New("empty bearer token")
	}
	return tok, nil
}

// BearerFromMD extracts the Bearer token from gRPC metadata.
func BearerFromMD(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", errors.New("missing metadata")
	}
	vals := md.Get("authorization")
	if len(vals) == 0 {
		return "", errors.New("missing authorization")
	}
	return BearerToken(vals[0])
}

// ParseOTPToken verifies a token issued after OTP verification. It must carry id and mobileNumber.
func ParseOTPToken(tokenStr, secret string) (*Identity, error) {
	id, err := parseBackendToken(tokenStr, secret)
	if err != nil {
		return nil, err
	}
	if id.MobileNumber == "" {
		return nil, errors.New("invalid claims: missing mobileNumber")
	}
	return id, nil
}

// ParseGoogleToken verifies a token issued after Google sign-in. It must carry id and email.
func ParseGoogleToken(tokenStr, secret string) (*Identity, error) {
	id, err := parseBackendToken(tokenStr, secret)
	if err != nil {
		return nil, err
	}
	if id.Email == "" {
		return nil, errors.New("invalid claims: missing email")
	}
	return id, nil
}

// flexID accepts the id claim as a JSON string or number.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	if i, err := n.Int64(); err == nil {
		*f = flexID(strconv.FormatInt(i, 10))
		return nil
	}
	*f = flexID(n.String())
	return nil
}

// parseBackendToken validates an HS256 token and extracts its claims.
func parseBackendToken(tokenStr string, secret string) (*Identity, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is empty")
	}

	type claims struct {
		ID           flexID `json:"id"`
		MobileNumber string `json:"mobileNumber"`
		Email        string `json:"email"`
		jwt.RegisteredClaims
	}

	tok, err := jwt.ParseWithClaims(tokenStr, &claims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		if err == nil {
			err = errors.New("invalid token")
		}
		return nil, err
	}
	c, _ := tok.Claims.(*claims)
	if c == nil || c.ID == "" {
		return nil, errors.New("invalid claims: missing id")
	}
	return &Identity{
		UserID:       string(c.ID),
		MobileNumber: c.MobileNumber,
		Email:        strings.ToLower(c.Email),
	}, nil
}
