// Package web is the dashboard's HTTP surface: sign-in routes and the session-protected
// JSON API the dashboard pages call.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"foodDeliveryAdmin/internal/dashboard"
	"foodDeliveryAdmin/internal/session"
	"foodDeliveryAdmin/internal/signin"
	"foodDeliveryAdmin/models"
)

// MaxBodyBytes bounds every request body.
const MaxBodyBytes = 1 << 20

// DispatchLog is the read side of the dispatch journal.
type DispatchLog interface {
	ListRecent(ctx context.Context, limit int, beforeID int64) ([]models.DispatchRecord, error)
	ListByOrder(ctx context.Context, orderID string) ([]models.DispatchRecord, error)
}

// Deps wires the server. Exactly one of OTP and Google is set, per AUTH_MODE.
type Deps struct {
	Sessions *session.Provider
	Registry *dashboard.Registry
	Journal  DispatchLog

	OTP    *signin.OTPService
	Flows  *signin.FlowStore
	Google *signin.GoogleFlow

	CookieSecure bool
	Log          *slog.Logger
}

// Server serves the dashboard HTTP API.
type Server struct {
	sessions *session.Provider
	registry *dashboard.Registry
	journal  DispatchLog
	otp      *signin.OTPService
	flows    *signin.FlowStore
	google   *signin.GoogleFlow
	secure   bool
	log      *slog.Logger
	router   chi.Router
}

// NewServer builds the router.
func NewServer(d Deps) *Server {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	if d.OTP != nil && d.Flows == nil {
		d.Flows = signin.NewFlowStore(0)
	}
	s := &Server{
		sessions: d.Sessions,
		registry: d.Registry,
		journal:  d.Journal,
		otp:      d.OTP,
		flows:    d.Flows,
		google:   d.Google,
		secure:   d.CookieSecure,
		log:      d.Log,
	}
	s.router = s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(s.logRequests)
	r.Use(chimw.Recoverer)
	r.Use(withToasts)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respond(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	if s.otp != nil {
		r.Route("/signin/otp", func(r chi.Router) {
			r.Get("/", s.otpView)
			r.Post("/mobile", s.otpMobile)
			r.Post("/send", s.otpSend)
			r.Post("/resend", s.otpResend)
			r.Post("/edit", s.otpEdit)
			r.Post("/digit", s.otpDigit)
			r.Post("/backspace", s.otpBackspace)
			r.Post("/paste", s.otpPaste)
			r.Post("/verify", s.otpVerify)
		})
	}
	if s.google != nil {
		r.Get("/signin/google", s.googleStart)
		r.Get("/signin/google/callback", s.googleCallback)
	}
	r.Get("/signin/error", s.signinError)
	r.Post("/signout", s.signOut)

	r.Route("/api", func(r chi.Router) {
		r.Use(chimw.NoCache)
		r.Use(s.requireSession)

		r.Get("/me", s.me)
		r.Get("/workspace", s.getWorkspace)
		r.Get("/stats", s.stats)
		r.Post("/refresh", s.refresh)
		r.Put("/search", s.setSearch)
		r.Post("/modal/{name}", s.openModal)
		r.Delete("/modal", s.closeModal)
		r.Get("/dispatch-log", s.dispatchLog)

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", s.listOrders)
			r.Post("/", s.createOrder)
			r.Get("/{id}", s.getOrder)
			r.Patch("/{id}", s.updateOrderStatus)
			r.Delete("/{id}", s.deleteOrder)
		})
		r.Route("/restaurants", func(r chi.Router) {
			r.Get("/", s.listRestaurants)
			r.Post("/", s.createRestaurant)
			r.Get("/{id}", s.getRestaurant)
			r.Patch("/{id}", s.updateRestaurant)
			r.Delete("/{id}", s.deleteRestaurant)
			r.Get("/{id}/menu", s.listMenu)
			r.Post("/{id}/menu", s.addMenuItem)
		})
		r.Route("/agents", func(r chi.Router) {
			r.Get("/", s.listAgents)
			r.Post("/", s.createAgent)
			r.Post("/assign", s.assignAgent)
			r.Post("/complete", s.completeDelivery)
			r.Get("/{id}", s.getAgent)
			r.Patch("/{id}", s.updateAgent)
			r.Delete("/{id}", s.deleteAgent)
		})
		r.Route("/users", func(r chi.Router) {
			r.Get("/", s.listUsers)
			r.Get("/{id}", s.getUser)
		})
	})
	return r
}

// logRequests logs one line per request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info("http_request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("duration", time.Since(start)),
			slog.String("request_id", chimw.GetReqID(r.Context())),
		)
	})
}
