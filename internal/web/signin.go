package web

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"foodDeliveryAdmin/internal/signin"
	"foodDeliveryAdmin/models"
)

const (
	attemptMaxAge = 15 * time.Minute
	stateMaxAge   = 10 * time.Minute
)

// flow returns the browser's OTP attempt, starting a new one when there is none.
func (s *Server) flow(w http.ResponseWriter, r *http.Request) *signin.Flow {
	if id := cookieValue(r, attemptCookie); id != "" {
		if f, ok := s.flows.Get(id); ok {
			return f
		}
	}
	f := s.otp.NewFlow()
	s.setCookie(w, attemptCookie, s.flows.Put(f), attemptMaxAge)
	return f
}

func (s *Server) otpView(w http.ResponseWriter, r *http.Request) {
	respond(w, r, http.StatusOK, s.flow(w, r).View())
}

func (s *Server) otpMobile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MobileNumber string `json:"mobileNumber"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	f := s.flow(w, r)
	if _, err := f.SetMobileNumber(req.MobileNumber); err != nil {
		respondErr(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, f.View())
}

func (s *Server) otpSend(w http.ResponseWriter, r *http.Request) {
	f := s.flow(w, r)
	if err := f.SendOTP(r.Context()); err != nil {
		respondErr(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, f.View())
}

func (s *Server) otpResend(w http.ResponseWriter, r *http.Request) {
	f := s.flow(w, r)
	if err := f.ResendOTP(r.Context()); err != nil {
		respondErr(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, f.View())
}

func (s *Server) otpEdit(w http.ResponseWriter, r *http.Request) {
	f := s.flow(w, r)
	if err := f.EditNumber(); err != nil {
		respondErr(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, f.View())
}

type otpKeyRequest struct {
	Index int    `json:"index"`
	Value string `json:"value"`
	Text  string `json:"text"`
}

type otpKeyResponse struct {
	Accepted bool            `json:"accepted"`
	Flow     signin.FlowView `json:"flow"`
}

func (s *Server) otpDigit(w http.ResponseWriter, r *http.Request) {
	var req otpKeyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	f := s.flow(w, r)
	ok := f.EnterDigit(req.Index, req.Value)
	respond(w, r, http.StatusOK, otpKeyResponse{Accepted: ok, Flow: f.View()})
}

func (s *Server) otpBackspace(w http.ResponseWriter, r *http.Request) {
	var req otpKeyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	f := s.flow(w, r)
	f.Backspace(req.Index)
	respond(w, r, http.StatusOK, otpKeyResponse{Accepted: true, Flow: f.View()})
}

func (s *Server) otpPaste(w http.ResponseWriter, r *http.Request) {
	var req otpKeyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	f := s.flow(w, r)
	ok := f.PasteOTP(req.Text)
	respond(w, r, http.StatusOK, otpKeyResponse{Accepted: ok, Flow: f.View()})
}

// otpVerify checks the OTP; a non-empty "otp" field replaces whatever the boxes hold.
func (s *Server) otpVerify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OTP         string `json:"otp"`
		CallbackURL string `json:"callbackUrl"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	f := s.flow(w, r)
	if req.OTP != "" {
		f.PasteOTP(req.OTP)
	}
	res, err := f.VerifyOTP(r.Context(), req.CallbackURL)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	if !s.issueSession(w, r, res.Session) {
		return
	}
	s.flows.Delete(cookieValue(r, attemptCookie))
	s.clearCookie(w, attemptCookie)
	respond(w, r, http.StatusOK, map[string]string{"redirect": res.Redirect})
}

// issueSession hands the browser a signed token for sess.
func (s *Server) issueSession(w http.ResponseWriter, r *http.Request, sess *models.Session) bool {
	token, err := s.sessions.Sign(sess)
	if err != nil {
		s.log.Error("session_sign_failed", slog.String("session_id", sess.ID), slog.Any("err", err))
		respondError(w, r, http.StatusInternalServerError, "Could not start a session. Please try again.")
		return false
	}
	s.setCookie(w, sessionCookieName, token, time.Until(sess.ExpiresAt))
	return true
}

func (s *Server) googleStart(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()
	s.setCookie(w, stateCookie, state, stateMaxAge)
	if cb := r.URL.Query().Get("callbackUrl"); cb != "" {
		s.setCookie(w, callbackCookie, signin.SafeCallbackURL(cb), stateMaxAge)
	}
	http.Redirect(w, r, s.google.AuthCodeURL(state), http.StatusFound)
}

func (s *Server) googleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	want := cookieValue(r, stateCookie)
	s.clearCookie(w, stateCookie)

	var err error
	switch {
	case q.Get("error") != "":
		err = &signin.Refusal{Reason: signin.ReasonCallback, Err: errors.New(q.Get("error"))}
	case want == "" || q.Get("state") != want:
		err = &signin.Refusal{Reason: signin.ReasonCallback, Err: errors.New("state mismatch")}
	}
	if err == nil {
		var sess *models.Session
		sess, err = s.google.Callback(r.Context(), q.Get("code"))
		if err == nil {
			if !s.issueSession(w, r, sess) {
				return
			}
			redirect := signin.SafeCallbackURL(cookieValue(r, callbackCookie))
			s.clearCookie(w, callbackCookie)
			http.Redirect(w, r, redirect, http.StatusFound)
			return
		}
	}

	reason := signin.ReasonCallback
	var refusal *signin.Refusal
	if errors.As(err, &refusal) {
		reason = refusal.Reason
	}
	s.log.Warn("google_signin_refused", slog.String("reason", reason), slog.Any("err", err))
	http.Redirect(w, r, "/signin/error?error="+url.QueryEscape(reason), http.StatusFound)
}

func (s *Server) signinError(w http.ResponseWriter, r *http.Request) {
	reason := r.URL.Query().Get("error")
	domain := ""
	if s.google != nil {
		domain = s.google.Domain()
	}
	respond(w, r, http.StatusOK, map[string]string{
		"error":   reason,
		"message": signin.ErrorPageMessage(reason, domain),
	})
}

// signOut ends the caller's session, if any, and clears the session cookie.
func (s *Server) signOut(w http.ResponseWriter, r *http.Request) {
	if tok := sessionToken(r); tok != "" {
		if id, err := s.sessions.ParseToken(tok); err == nil {
			if err := s.sessions.End(r.Context(), id); err != nil {
				s.log.Error("signout_failed", slog.String("session_id", id), slog.Any("err", err))
				respondErr(w, r, err)
				return
			}
		}
	}
	s.clearCookie(w, sessionCookieName)
	respond(w, r, http.StatusOK, map[string]string{"redirect": "/signin"})
}
