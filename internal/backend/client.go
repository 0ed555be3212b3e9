// Package backend is the typed client for the remote food-delivery REST API.
// Every response body is validated against an inline JSON schema before it is decoded.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"
)

const maxResponseBytes = 4 << 20

// Config configures a Client. Empty paths fall back to the backend's defaults.
type Config struct {
	BaseURL          string
	Timeout          time.Duration
	SendOTPPath      string
	VerifyOTPPath    string
	GoogleSignInPath string
	HTTPClient       *http.Client
}

// Client talks to the backend. It is safe for concurrent use.
type Client struct {
	baseURL    string
	timeout    time.Duration
	sendOTP    string
	verifyOTP  string
	googlePath string
	http       *http.Client
}

// New creates a backend client.
func New(cfg Config) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		timeout:    cfg.Timeout,
		sendOTP:    orDefault(cfg.SendOTPPath, "/auth/signin"),
		verifyOTP:  orDefault(cfg.VerifyOTPPath, "/admin/verify-otp"),
		googlePath: orDefault(cfg.GoogleSignInPath, "/admin/google"),
		http:       cfg.HTTPClient,
	}
	if c.timeout <= 0 {
		c.timeout = 15 * time.Second
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	return c
}

func orDefault(v, d string) string {
	if strings.TrimSpace(v) == "" {
		return d
	}
	return v
}

// request describes one backend call.
type request struct {
	op         string
	method     string
	path       string
	token      string
	body       any
	schema     gojsonschema.JSONLoader
	out        any
	timeout    time.Duration
	allowEmpty bool // accept a 2xx without a body even when out is set
}

// do sends the request, maps non-2xx answers to *APIError, validates the body
// against the schema and decodes it into out.
func (c *Client) do(ctx context.Context, r request) error {
	timeout := r.timeout
	if timeout <= 0 {
		timeout = c.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var payload io.Reader
	if r.body != nil {
		b, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("backend %s: encode request: %w", r.op, err)
		}
		payload = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, payload)
	if err != nil {
		return fmt.Errorf("backend %s: %w", r.op, err)
	}
	req.Header.Set("Accept", "application/json")
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("backend %s: %w", r.op, err)
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("backend %s: read response: %w", r.op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(respBody)}
	}

	if len(bytes.TrimSpace(respBody)) == 0 {
		if r.out != nil && !r.allowEmpty {
			return &DecodeError{Op: r.op, Err: errors.New("empty body")}
		}
		return nil
	}
	if r.schema != nil {
		if err := validateJSONSchema(r.schema, respBody); err != nil {
			return &DecodeError{Op: r.op, Err: err}
		}
	}
	if r.out != nil {
		if err := json.Unmarshal(respBody, r.out); err != nil {
			return &DecodeError{Op: r.op, Err: err}
		}
	}
	return nil
}

// errorMessage pulls "message" or "error" out of an error payload.
func errorMessage(body []byte) string {
	var p struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &p); err != nil {
		return ""
	}
	if p.Message != "" {
		return p.Message
	}
	return p.Error
}
