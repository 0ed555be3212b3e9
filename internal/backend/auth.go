package backend

import (
	"context"
	"net/http"
	"time"
)

type tokenResponse struct {
	Token string `json:"token"`
}

// SendOTP asks the backend to text an OTP to mobile (full number with country code).
// timeout bounds this call only; zero uses the client default.
func (c *Client) SendOTP(ctx context.Context, mobile string, timeout time.Duration) error {
	return c.do(ctx, request{
		op:      "send otp",
		method:  http.MethodPost,
		path:    c.sendOTP,
		body:    map[string]string{"mobile": mobile},
		schema:  ackLoader,
		timeout: timeout,
	})
}

// VerifyOTP exchanges a mobile number and OTP for a signed backend token.
func (c *Client) VerifyOTP(ctx context.Context, mobileNumber, otp string) (string, error) {
	var out tokenResponse
	err := c.do(ctx, request{
		op:     "verify otp",
		method: http.MethodPost,
		path:   c.verifyOTP,
		body:   map[string]string{"mobileNumber": mobileNumber, "otp": otp},
		schema: tokenLoader,
		out:    &out,
	})
	if err != nil {
		return "", err
	}
	return out.Token, nil
}

// GoogleSignIn registers a Google-authenticated admin with the backend and returns its token.
func (c *Client) GoogleSignIn(ctx context.Context, email, name string) (string, error) {
	var out tokenResponse
	err := c.do(ctx, request{
		op:     "google sign-in",
		method: http.MethodPost,
		path:   c.googlePath,
		body:   map[string]string{"email": email, "name": name},
		schema: tokenLoader,
		out:    &out,
	})
	if err != nil {
		return "", err
	}
	return out.Token, nil
}
