package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"foodDeliveryAdmin/internal/backend"
	"foodDeliveryAdmin/internal/dashboard"
	"foodDeliveryAdmin/internal/notify"
	"foodDeliveryAdmin/internal/session"
	"foodDeliveryAdmin/internal/signin"
)

// envelope is the body of every JSON response.
type envelope struct {
	Data          any            `json:"data,omitempty"`
	Error         string         `json:"error,omitempty"`
	Notifications []notify.Toast `json:"notifications"`
}

// withToasts gives each request its own toast collector.
func withToasts(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := &notify.Collector{}
		next.ServeHTTP(w, r.WithContext(notify.WithCollector(r.Context(), c)))
	})
}

func respond(w http.ResponseWriter, r *http.Request, status int, data any) {
	writeJSON(w, status, envelope{Data: data, Notifications: notify.From(r.Context()).Drain()})
}

func respondError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, status, envelope{Error: msg, Notifications: notify.From(r.Context()).Drain()})
}

// respondErr maps err to a status and a message safe to show.
func respondErr(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	respondError(w, r, status, messageFor(err, status))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, dashboard.ErrBusy), errors.Is(err, signin.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, dashboard.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrSessionNotFound):
		return http.StatusUnauthorized
	}
	var se *signin.Error
	if errors.As(err, &se) {
		switch se.Kind {
		case signin.KindInvalidInput:
			return http.StatusBadRequest
		case signin.KindNotFound:
			return http.StatusNotFound
		case signin.KindInvalidOTP:
			return http.StatusUnauthorized
		case signin.KindTimeout:
			return http.StatusGatewayTimeout
		default:
			return http.StatusBadGateway
		}
	}
	if apiErr, ok := backend.AsAPIError(err); ok {
		if apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
			return apiErr.StatusCode
		}
		return http.StatusBadGateway
	}
	var de *backend.DecodeError
	if errors.As(err, &de) {
		return http.StatusBadGateway
	}
	if backend.IsTimeout(err) {
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func messageFor(err error, status int) string {
	var se *signin.Error
	if errors.As(err, &se) {
		return se.Message
	}
	if apiErr, ok := backend.AsAPIError(err); ok {
		return apiErr.Error()
	}
	switch status {
	case http.StatusInternalServerError:
		return "Internal server error"
	case http.StatusBadGateway:
		return "Backend returned an unexpected response"
	case http.StatusGatewayTimeout:
		return "Request timed out. Please try again."
	}
	return err.Error()
}

// decodeJSON reads a bounded JSON body into v. An empty body leaves v untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "Could not read request body")
		return false
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return true
	}
	if err := json.Unmarshal(body, v); err != nil {
		respondError(w, r, http.StatusBadRequest, "Could not parse JSON")
		return false
	}
	return true
}
