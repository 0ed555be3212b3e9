package signin

import (
	"errors"

	"foodDeliveryAdmin/internal/backend"
)

// ErrBusy is returned while a send or verify is already in flight for the flow.
var ErrBusy = errors.New("sign-in request already in progress")

// ErrInvalidInput matches every *Error of kind KindInvalidInput via errors.Is.
var ErrInvalidInput = errors.New("invalid input")

// Kind classifies sign-in failures.
type Kind string

const (
	KindInvalidInput Kind = "invalid-input"
	KindNotFound     Kind = "not-found"
	KindInvalidOTP   Kind = "invalid-otp"
	KindTimeout      Kind = "timeout"
	KindNetwork      Kind = "network"
)

const (
	msgUserNotFound = "User not found. Please contact support."
	msgInvalidOTP   = "Invalid OTP. Please try again."
	msgTimeout      = "Request timed out. Please try again."
	msgThrottled    = "Too many OTP requests. Please wait and try again."
	msgSendFailed   = "Failed to send OTP. Please try again."
	msgSessionStart = "Could not start a session. Please try again."
)

// Error is a classified sign-in failure. Message is safe to show to the admin.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	return target == ErrInvalidInput && e.Kind == KindInvalidInput
}

func invalidInput(msg string) *Error {
	return &Error{Kind: KindInvalidInput, Message: msg}
}

// classifySend maps a send-OTP failure: 404 is not-found, a deadline is a timeout,
// anything else surfaces the backend's message or the HTTP status.
func classifySend(err error) *Error {
	if apiErr, ok := backend.AsAPIError(err); ok {
		if apiErr.NotFound() {
			return &Error{Kind: KindNotFound, Message: msgUserNotFound, Err: err}
		}
		return &Error{Kind: KindNetwork, Message: apiErr.Error(), Err: err}
	}
	if backend.IsTimeout(err) {
		return &Error{Kind: KindTimeout, Message: msgTimeout, Err: err}
	}
	return &Error{Kind: KindNetwork, Message: msgSendFailed, Err: err}
}

// classifyVerify maps a verify-OTP failure. Rejected credentials become invalid-otp.
func classifyVerify(err error) *Error {
	if apiErr, ok := backend.AsAPIError(err); ok {
		switch {
		case apiErr.BadCredentials():
			return &Error{Kind: KindInvalidOTP, Message: msgInvalidOTP, Err: err}
		case apiErr.NotFound():
			return &Error{Kind: KindNotFound, Message: msgUserNotFound, Err: err}
		}
		return &Error{Kind: KindNetwork, Message: apiErr.Error(), Err: err}
	}
	if backend.IsTimeout(err) {
		return &Error{Kind: KindTimeout, Message: msgTimeout, Err: err}
	}
	var de *backend.DecodeError
	if errors.As(err, &de) {
		return &Error{Kind: KindInvalidOTP, Message: msgInvalidOTP, Err: err}
	}
	return &Error{Kind: KindNetwork, Message: msgInvalidOTP, Err: err}
}
