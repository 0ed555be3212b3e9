package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"foodDeliveryAdmin/internal/auth"
	"foodDeliveryAdmin/internal/dashboard"
	"foodDeliveryAdmin/internal/filter"
	"foodDeliveryAdmin/internal/session"
	"foodDeliveryAdmin/models"
)

type workspaceKey struct{}

// requireSession resolves the session token, loads the session's workspace on first use
// and stores both in the request context.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := sessionToken(r)
		if tok == "" {
			respondError(w, r, http.StatusUnauthorized, "Sign in required")
			return
		}
		sess, err := s.sessions.Lookup(r.Context(), tok)
		if errors.Is(err, session.ErrSessionNotFound) {
			s.clearCookie(w, sessionCookieName)
			respondError(w, r, http.StatusUnauthorized, "Session expired. Please sign in again.")
			return
		}
		if err != nil {
			s.log.Error("session_lookup_failed", slog.Any("err", err))
			respondError(w, r, http.StatusInternalServerError, "Internal server error")
			return
		}
		ws := s.registry.For(sess)
		ws.EnsureLoaded(r.Context())
		ctx := auth.WithPrincipal(r.Context(), session.PrincipalOf(sess))
		ctx = context.WithValue(ctx, workspaceKey{}, ws)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func workspaceFrom(r *http.Request) *dashboard.Workspace {
	ws, _ := r.Context().Value(workspaceKey{}).(*dashboard.Workspace)
	return ws
}

// searchTerm is the q parameter when given, otherwise the workspace's shared search term.
func searchTerm(r *http.Request, ws *dashboard.Workspace) string {
	if q := r.URL.Query(); q.Has("q") {
		return q.Get("q")
	}
	return ws.SearchTerm()
}

type workspaceView struct {
	Orders      []models.Order         `json:"orders"`
	Restaurants []models.Restaurant    `json:"restaurants"`
	Agents      []models.DeliveryAgent `json:"agents"`
	Users       []models.User          `json:"users"`
	SearchTerm  string                 `json:"searchTerm"`
	Modal       dashboard.Modal        `json:"modal"`
}

func viewOf(ws *dashboard.Workspace) workspaceView {
	return workspaceView{
		Orders:      nonNil(ws.Orders()),
		Restaurants: nonNil(ws.Restaurants()),
		Agents:      nonNil(ws.Agents()),
		Users:       nonNil(ws.Users()),
		SearchTerm:  ws.SearchTerm(),
		Modal:       ws.Modal(),
	}
}

// nonNil renders empty lists as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	respond(w, r, http.StatusOK, map[string]string{
		"userId":       p.UserID,
		"mobileNumber": p.MobileNumber,
		"email":        p.Email,
	})
}

func (s *Server) getWorkspace(w http.ResponseWriter, r *http.Request) {
	respond(w, r, http.StatusOK, viewOf(workspaceFrom(r)))
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r)
	ws.Reload(r.Context())
	respond(w, r, http.StatusOK, viewOf(ws))
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r)
	respond(w, r, http.StatusOK, ws.Stats(searchTerm(r, ws), time.Now()))
}

func (s *Server) setSearch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Term string `json:"term"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	ws := workspaceFrom(r)
	ws.SetSearchTerm(req.Term)
	respond(w, r, http.StatusOK, map[string]string{"searchTerm": ws.SearchTerm()})
}

func (s *Server) openModal(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r)
	if err := ws.OpenModal(dashboard.Modal(chi.URLParam(r, "name"))); err != nil {
		respondError(w, r, http.StatusBadRequest, "Unknown dialog")
		return
	}
	respond(w, r, http.StatusOK, map[string]dashboard.Modal{"modal": ws.Modal()})
}

func (s *Server) closeModal(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r)
	ws.CloseModal()
	respond(w, r, http.StatusOK, map[string]dashboard.Modal{"modal": ws.Modal()})
}

func (s *Server) dispatchLog(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if orderID := q.Get("orderId"); orderID != "" {
		recs, err := s.journal.ListByOrder(r.Context(), orderID)
		if err != nil {
			s.log.Error("dispatch_log_failed", slog.String("order_id", orderID), slog.Any("err", err))
			respondErr(w, r, err)
			return
		}
		respond(w, r, http.StatusOK, nonNil(recs))
		return
	}
	limit, before := 0, int64(0)
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondError(w, r, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	if v := q.Get("before"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			respondError(w, r, http.StatusBadRequest, "before must be a non-negative integer")
			return
		}
		before = n
	}
	recs, err := s.journal.ListRecent(r.Context(), limit, before)
	if err != nil {
		s.log.Error("dispatch_log_failed", slog.Any("err", err))
		respondErr(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, nonNil(recs))
}

// Orders

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r)
	respond(w, r, http.StatusOK, nonNil(filter.Orders(ws.Orders(), searchTerm(r, ws), r.URL.Query().Get("status"))))
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	var draft models.OrderDraft
	if !decodeJSON(w, r, &draft) {
		return
	}
	order, err := workspaceFrom(r).Coordinator().CreateOrder(r.Context(), draft)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, order)
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := workspaceFrom(r).Order(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, o)
}

func (s *Server) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	status, ok := models.ParseOrderStatus(req.Status)
	if !ok {
		status = models.OrderStatus(req.Status)
	}
	ws := workspaceFrom(r)
	if err := ws.UpdateOrderStatus(r.Context(), chi.URLParam(r, "id"), status); err != nil {
		respondErr(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, nonNil(ws.Orders()))
}

func (s *Server) deleteOrder(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r)
	if err := ws.DeleteOrder(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondErr(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, nonNil(ws.Orders()))
}

// Restaurants

func (s *Server) listRestaurants(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r)
	respond(w, r, http.StatusOK, nonNil(filter.Restaurants(ws.Restaurants(), searchTerm(r, ws))))
}

func (s *Server) createRestaurant(w http.ResponseWriter, r *http.Request) {
	var in models.RestaurantInput
	if !decodeJSON(w, r, &in) {
		return
	}
	ws := workspaceFrom(r)
	if err := ws.CreateRestaurant(r.Context(), in); err != nil {
		respondErr(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, nonNil(ws.Restaurants()))
}

func (s *Server) getRestaurant(w http.ResponseWriter, r *http.Request) {
	rs, err := workspaceFrom(r).Restaurant(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, rs)
}

func (s *Server) updateRestaurant(w http.ResponseWriter, r *http.Request) {
	var in models.RestaurantInput
	if !decodeJSON(w, r, &in) {
		return
	}
	ws := workspaceFrom(r)
	if err := ws.UpdateRestaurant(r.Context(), chi.URLParam(r, "id"), in); err != nil {
		respondErr(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, nonNil(ws.Restaurants()))
}

func (s *Server) deleteRestaurant(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r)
	if err := ws.DeleteRestaurant(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondErr(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, nonNil(ws.Restaurants()))
}

func (s *Server) listMenu(w http.ResponseWriter, r *http.Request) {
	items, err := workspaceFrom(r).Menu(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, nonNil(items))
}

func (s *Server) addMenuItem(w http.ResponseWriter, r *http.Request) {
	var in models.MenuItemInput
	if !decodeJSON(w, r, &in) {
		return
	}
	items, err := workspaceFrom(r).AddMenuItem(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, nonNil(items))
}

// Agents

func (s *Server) listAgents(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r)
	respond(w, r, http.StatusOK, nonNil(filter.Agents(ws.Agents(), searchTerm(r, ws))))
}

func (s *Server) createAgent(w http.ResponseWriter, r *http.Request) {
	var in models.AgentInput
	if !decodeJSON(w, r, &in) {
		return
	}
	ws := workspaceFrom(r)
	if err := ws.CreateAgent(r.Context(), in); err != nil {
		respondErr(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, nonNil(ws.Agents()))
}

func (s *Server) getAgent(w http.ResponseWriter, r *http.Request) {
	a, err := workspaceFrom(r).Agent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, a)
}

func (s *Server) updateAgent(w http.ResponseWriter, r *http.Request) {
	var in models.AgentInput
	if !decodeJSON(w, r, &in) {
		return
	}
	ws := workspaceFrom(r)
	if err := ws.UpdateAgent(r.Context(), chi.URLParam(r, "id"), in); err != nil {
		respondErr(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, nonNil(ws.Agents()))
}

func (s *Server) deleteAgent(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r)
	if err := ws.DeleteAgent(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondErr(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, nonNil(ws.Agents()))
}

func (s *Server) assignAgent(w http.ResponseWriter, r *http.Request) {
	s.runAssignment(w, r, (*dashboard.Coordinator).AssignAgent)
}

func (s *Server) completeDelivery(w http.ResponseWriter, r *http.Request) {
	s.runAssignment(w, r, (*dashboard.Coordinator).CompleteDelivery)
}

func (s *Server) runAssignment(w http.ResponseWriter, r *http.Request, cmd func(*dashboard.Coordinator, context.Context, models.Assignment) error) {
	var a models.Assignment
	if !decodeJSON(w, r, &a) {
		return
	}
	ws := workspaceFrom(r)
	if err := cmd(ws.Coordinator(), r.Context(), a); err != nil {
		respondErr(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, viewOf(ws))
}

// Users

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r)
	respond(w, r, http.StatusOK, nonNil(filter.Users(ws.Users(), searchTerm(r, ws))))
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	u, err := workspaceFrom(r).User(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, u)
}
