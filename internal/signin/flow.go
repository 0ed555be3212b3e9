package signin

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"foodDeliveryAdmin/internal/auth"
	"foodDeliveryAdmin/internal/notify"
	"foodDeliveryAdmin/models"
)

// Step is the screen the OTP sign-in is on.
type Step string

const (
	StepMobileInput     Step = "mobile_input"
	StepOTPVerification Step = "otp_verification"
)

// LoadingState tells which network call, if any, the flow is waiting on.
type LoadingState string

const (
	LoadingIdle      LoadingState = "idle"
	LoadingSending   LoadingState = "sending_otp"
	LoadingVerifying LoadingState = "verifying_otp"
)

// OTPBackend is the part of the backend client the OTP flow needs.
type OTPBackend interface {
	SendOTP(ctx context.Context, mobile string, timeout time.Duration) error
	VerifyOTP(ctx context.Context, mobileNumber, otp string) (string, error)
}

// SessionStarter establishes an admin session from a verified backend token.
type SessionStarter interface {
	Start(ctx context.Context, accessToken string, id auth.Identity) (*models.Session, error)
}

// OTPConfig holds the OTP flow settings.
type OTPConfig struct {
	CountryCode string
	SendTimeout time.Duration
	JWTSecret   string
}

// OTPService holds what every OTP flow shares and creates flows.
type OTPService struct {
	backend  OTPBackend
	sessions SessionStarter
	throttle *Throttle
	cfg      OTPConfig
	log      *slog.Logger
	now      func() time.Time
}

// NewOTPService creates an OTPService. throttle may be nil to disable rate limiting.
func NewOTPService(b OTPBackend, sessions SessionStarter, throttle *Throttle, cfg OTPConfig, log *slog.Logger) *OTPService {
	if cfg.CountryCode == "" {
		cfg.CountryCode = "+91"
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 10 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &OTPService{backend: b, sessions: sessions, throttle: throttle, cfg: cfg, log: log, now: time.Now}
}

// CountryCode is the prefix added to every mobile number.
func (s *OTPService) CountryCode() string { return s.cfg.CountryCode }

// NewFlow starts a sign-in attempt on the mobile input step.
func (s *OTPService) NewFlow() *Flow {
	return &Flow{svc: s, step: StepMobileInput, loading: LoadingIdle, otp: NewOTPInput(OTPLength)}
}

// dispatch sends an OTP unless the number is throttled.
func (s *OTPService) dispatch(ctx context.Context, full string) error {
	if s.throttle != nil && !s.throttle.Allow(full) {
		s.log.Warn("otp_throttled", slog.String("mobile", maskMobile(full)))
		return invalidInput(msgThrottled)
	}
	if err := s.backend.SendOTP(ctx, full, s.cfg.SendTimeout); err != nil {
		e := classifySend(err)
		s.log.Error("otp_send_failed", slog.String("mobile", maskMobile(full)), slog.String("kind", string(e.Kind)), slog.Any("err", err))
		return e
	}
	s.log.Info("otp_sent", slog.String("mobile", maskMobile(full)))
	return nil
}

// verify checks the OTP with the backend, verifies the returned token and starts a session.
func (s *OTPService) verify(ctx context.Context, full, code string) (*models.Session, error) {
	token, err := s.backend.VerifyOTP(ctx, full, code)
	if err != nil {
		e := classifyVerify(err)
		s.log.Warn("otp_verify_failed", slog.String("mobile", maskMobile(full)), slog.String("kind", string(e.Kind)), slog.Any("err", err))
		return nil, e
	}
	id, err := auth.ParseOTPToken(token, s.cfg.JWTSecret)
	if err != nil {
		s.log.Warn("otp_token_rejected", slog.String("mobile", maskMobile(full)), slog.Any("err", err))
		return nil, &Error{Kind: KindInvalidOTP, Message: msgInvalidOTP, Err: err}
	}
	sess, err := s.sessions.Start(ctx, token, *id)
	if err != nil {
		s.log.Error("session_start_failed", slog.String("user_id", id.UserID), slog.Any("err", err))
		return nil, &Error{Kind: KindNetwork, Message: msgSessionStart, Err: err}
	}
	s.log.Info("admin_signed_in", slog.String("user_id", id.UserID), slog.String("method", "otp"))
	return sess, nil
}

// Flow is one OTP sign-in attempt. It is safe for concurrent use; network calls
// run outside the lock and LoadingState keeps a second call from starting meanwhile.
type Flow struct {
	svc *OTPService

	mu        sync.Mutex
	step      Step
	loading   LoadingState
	mobile    string
	otp       *OTPInput
	otpSentAt *time.Time
}

// Result is a completed sign-in.
type Result struct {
	Session  *models.Session
	Redirect string
}

// OTPView is the OTP input as rendered.
type OTPView struct {
	Digits []string `json:"digits"`
	Focus  int      `json:"focus"`
	Value  string   `json:"value"`
}

// FlowView is a snapshot of the flow for rendering.
type FlowView struct {
	Step             Step         `json:"step"`
	Loading          LoadingState `json:"loading"`
	CountryCode      string       `json:"countryCode"`
	MobileNumber     string       `json:"mobileNumber"`
	FormattedMobile  string       `json:"formattedMobile"`
	MobileValid      bool         `json:"mobileValid"`
	Hint             string       `json:"hint,omitempty"`
	OTP              OTPView      `json:"otp"`
	OTPSentAt        *time.Time   `json:"otpSentAt,omitempty"`
	CanSendOTP       bool         `json:"canSendOtp"`
	CanVerifyOTP     bool         `json:"canVerifyOtp"`
	FullMobileNumber string       `json:"-"`
}

// View returns a snapshot of the flow.
func (f *Flow) View() FlowView {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.viewLocked()
}

func (f *Flow) viewLocked() FlowView {
	cc := f.svc.cfg.CountryCode
	valid := ValidateMobileNumber(f.mobile)
	v := FlowView{
		Step:             f.step,
		Loading:          f.loading,
		CountryCode:      cc,
		MobileNumber:     f.mobile,
		FormattedMobile:  FormatMobileNumber(f.mobile),
		MobileValid:      valid,
		OTP:              OTPView{Digits: f.otp.Digits(), Focus: f.otp.Focus(), Value: f.otp.Value()},
		CanSendOTP:       valid && f.loading == LoadingIdle,
		CanVerifyOTP:     ValidateOTP(f.otp.Value()) && f.loading == LoadingIdle,
		FullMobileNumber: cc + f.mobile,
	}
	if f.otpSentAt != nil {
		t := *f.otpSentAt
		v.OTPSentAt = &t
	}
	if f.mobile != "" {
		if valid {
			v.Hint = fmt.Sprintf("We'll send an OTP to %s %s", cc, FormatMobileNumber(f.mobile))
		} else {
			v.Hint = "Please enter a valid 10-digit mobile number"
		}
	}
	return v
}

// SetMobileNumber sanitizes raw and stores it. It returns the stored number. The number
// can only change on the mobile input step with no call in flight; use EditNumber to go back.
func (f *Flow) SetMobileNumber(raw string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loading != LoadingIdle {
		return f.mobile, ErrBusy
	}
	if f.step != StepMobileInput {
		return f.mobile, invalidInput("An OTP was already sent. Edit the number to change it.")
	}
	f.mobile = SanitizeMobileInput(raw)
	return f.mobile, nil
}

// SendOTP sends the first OTP and moves to the verification step.
func (f *Flow) SendOTP(ctx context.Context) error {
	return f.send(ctx, StepMobileInput)
}

// ResendOTP sends another OTP from the verification step. The step does not change.
func (f *Flow) ResendOTP(ctx context.Context) error {
	return f.send(ctx, StepOTPVerification)
}

func (f *Flow) send(ctx context.Context, from Step) error {
	toasts := notify.From(ctx)

	f.mu.Lock()
	if f.loading != LoadingIdle {
		f.mu.Unlock()
		return ErrBusy
	}
	if f.step != from {
		f.mu.Unlock()
		if from == StepMobileInput {
			return invalidInput("An OTP was already sent. Use resend or edit the number.")
		}
		return invalidInput("No OTP has been sent yet.")
	}
	if !ValidateMobileNumber(f.mobile) {
		f.mu.Unlock()
		toasts.Failure("Invalid Mobile Number", "Please enter a valid 10-digit mobile number")
		return invalidInput("Please enter a valid 10-digit mobile number")
	}
	f.loading = LoadingSending
	full := f.svc.cfg.CountryCode + f.mobile
	f.mu.Unlock()

	err := f.svc.dispatch(ctx, full)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.loading = LoadingIdle
	if err != nil {
		toasts.Failure("Error", err.Error())
		return err
	}
	now := f.svc.now()
	f.step = StepOTPVerification
	f.otpSentAt = &now
	f.otp.Reset()
	toasts.Success("OTP Sent", "Please check your mobile for the 6-digit OTP")
	return nil
}

// VerifyOTP checks the entered OTP. On success a session exists and Result.Redirect is
// the callback URL restricted to a same-site path ("/" by default).
func (f *Flow) VerifyOTP(ctx context.Context, callbackURL string) (*Result, error) {
	toasts := notify.From(ctx)

	f.mu.Lock()
	if f.loading != LoadingIdle {
		f.mu.Unlock()
		return nil, ErrBusy
	}
	if f.step != StepOTPVerification {
		f.mu.Unlock()
		return nil, invalidInput("Request an OTP first.")
	}
	code := f.otp.Value()
	if !ValidateOTP(code) {
		f.mu.Unlock()
		toasts.Failure("Invalid OTP", "Please enter the complete 6-digit OTP")
		return nil, invalidInput("Please enter the complete 6-digit OTP")
	}
	f.loading = LoadingVerifying
	full := f.svc.cfg.CountryCode + f.mobile
	f.mu.Unlock()

	sess, err := f.svc.verify(ctx, full, code)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.loading = LoadingIdle
	if err != nil {
		toasts.Failure("Verification Failed", err.Error())
		return nil, err
	}
	return &Result{Session: sess, Redirect: SafeCallbackURL(callbackURL)}, nil
}

// EditNumber goes back to the mobile input step and forgets the OTP.
func (f *Flow) EditNumber() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loading != LoadingIdle {
		return ErrBusy
	}
	f.step = StepMobileInput
	f.otp.Reset()
	f.otpSentAt = nil
	return nil
}

// Back is the back-arrow on the verification step; it behaves like EditNumber.
func (f *Flow) Back() error { return f.EditNumber() }

// EnterDigit types ch into box i of the OTP input.
func (f *Flow) EnterDigit(i int, ch string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.otp.Enter(i, ch)
}

// Backspace presses backspace on box i of the OTP input.
func (f *Flow) Backspace(i int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.otp.Backspace(i)
}

// PasteOTP pastes text into the OTP input.
func (f *Flow) PasteOTP(text string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.otp.Paste(text)
}
