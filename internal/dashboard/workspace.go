// Package dashboard holds the per-session dashboard state (Workspace) and the
// delivery assignment Coordinator that drives backend commands from it.
package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"foodDeliveryAdmin/internal/backend"
	"foodDeliveryAdmin/internal/events"
	"foodDeliveryAdmin/internal/notify"
	"foodDeliveryAdmin/models"
)

var (
	// ErrBusy is returned when a command of the same kind is already running.
	ErrBusy = errors.New("command already in progress")
	// ErrInvalidInput is wrapped by every validation failure; no backend call was made.
	ErrInvalidInput = errors.New("invalid input")
)

// Backend is the slice of the backend API a workspace drives. *backend.AdminAPI implements it.
type Backend interface {
	ListOrders(ctx context.Context) ([]models.Order, error)
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	CreateOrder(ctx context.Context, draft models.OrderDraft) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error)
	DeleteOrder(ctx context.Context, id string) error

	ListRestaurants(ctx context.Context) ([]models.Restaurant, error)
	GetRestaurant(ctx context.Context, id string) (*models.Restaurant, error)
	CreateRestaurant(ctx context.Context, in models.RestaurantInput) (*models.Restaurant, error)
	UpdateRestaurant(ctx context.Context, id string, in models.RestaurantInput) (*models.Restaurant, error)
	DeleteRestaurant(ctx context.Context, id string) error
	ListMenu(ctx context.Context, restaurantID string) ([]models.MenuItem, error)
	AddMenuItem(ctx context.Context, restaurantID string, in models.MenuItemInput) (*models.MenuItem, error)

	ListAgents(ctx context.Context) ([]models.DeliveryAgent, error)
	GetAgent(ctx context.Context, id string) (*models.DeliveryAgent, error)
	CreateAgent(ctx context.Context, in models.AgentInput) (*models.DeliveryAgent, error)
	UpdateAgent(ctx context.Context, id string, in models.AgentInput) (*models.DeliveryAgent, error)
	DeleteAgent(ctx context.Context, id string) error
	AssignAgent(ctx context.Context, a models.Assignment) (string, error)
	CompleteDelivery(ctx context.Context, a models.Assignment) (string, error)

	ListUsers(ctx context.Context) ([]models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
}

// Journal records coordinator commands.
type Journal interface {
	Append(ctx context.Context, rec *models.DispatchRecord) (*models.DispatchRecord, error)
}

// Modal names a dialog of the dashboard. At most one is open.
type Modal string

const (
	ModalNone          Modal = ""
	ModalAssign        Modal = "assign"
	ModalComplete      Modal = "complete"
	ModalCreateOrder   Modal = "create-order"
	ModalAddAgent      Modal = "add-agent"
	ModalAddRestaurant Modal = "add-restaurant"
)

// IsValid reports whether m names a dialog.
func (m Modal) IsValid() bool {
	switch m {
	case ModalAssign, ModalComplete, ModalCreateOrder, ModalAddAgent, ModalAddRestaurant:
		return true
	default:
		return false
	}
}

// Deps are shared by every workspace.
type Deps struct {
	Journal Journal
	Events  events.Publisher
	Log     *slog.Logger
}

// Workspace is one signed-in admin's view of the backend data.
type Workspace struct {
	sessionID string
	actor     string
	api       Backend
	journal   Journal
	events    events.Publisher
	log       *slog.Logger
	coord     *Coordinator

	loadMu sync.Mutex

	mu          sync.Mutex
	loaded      map[string]bool
	orders      []models.Order
	restaurants []models.Restaurant
	agents      []models.DeliveryAgent
	users       []models.User
	searchTerm  string
	modal       Modal
	lastUsed    time.Time
}

// NewWorkspace creates an empty workspace; data is fetched on first EnsureLoaded.
func NewWorkspace(sessionID, actor string, api Backend, deps Deps) *Workspace {
	if deps.Events == nil {
		deps.Events = events.Nop{}
	}
	if deps.Log == nil {
		deps.Log = slog.Default()
	}
	ws := &Workspace{
		sessionID: sessionID,
		actor:     actor,
		api:       api,
		journal:   deps.Journal,
		events:    deps.Events,
		log:       deps.Log.With(slog.String("session_id", sessionID)),
		loaded:    map[string]bool{},
		lastUsed:  time.Now(),
	}
	ws.coord = &Coordinator{ws: ws, inflight: map[models.DispatchAction]bool{}}
	return ws
}

// Coordinator returns the workspace's delivery assignment coordinator.
func (w *Workspace) Coordinator() *Coordinator { return w.coord }

// SessionID is the session the workspace belongs to.
func (w *Workspace) SessionID() string { return w.sessionID }

// List names, in load order.
const (
	listRestaurants = "restaurants"
	listOrders      = "orders"
	listAgents      = "agents"
	listUsers       = "users"
)

// EnsureLoaded fetches restaurants, orders, agents and users, in that order, skipping the
// lists already loaded. A list that fails to load is logged, left empty and retried on the
// next call. The fetches outlive a cancelled request; each is still bounded by the client timeout.
func (w *Workspace) EnsureLoaded(ctx context.Context) {
	w.loadMu.Lock()
	defer w.loadMu.Unlock()
	w.load(context.WithoutCancel(ctx), false)
}

// Reload fetches every list again.
func (w *Workspace) Reload(ctx context.Context) {
	w.loadMu.Lock()
	defer w.loadMu.Unlock()
	w.load(ctx, true)
}

// Loaded reports whether every list has been fetched successfully at least once.
func (w *Workspace) Loaded() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.loaded) == 4
}

func (w *Workspace) load(ctx context.Context, all bool) {
	toasts := notify.From(ctx)
	for _, l := range []struct {
		name string
		fn   func(context.Context) error
	}{
		{listRestaurants, w.RefreshRestaurants},
		{listOrders, w.RefreshOrders},
		{listAgents, w.RefreshAgents},
		{listUsers, w.RefreshUsers},
	} {
		if !all && w.isLoaded(l.name) {
			continue
		}
		if err := l.fn(ctx); err != nil {
			toasts.Failure("Error", "Failed to fetch "+l.name)
		}
	}
}

func (w *Workspace) isLoaded(name string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.loaded[name]
}

func (w *Workspace) touch() {
	w.mu.Lock()
	w.lastUsed = time.Now()
	w.mu.Unlock()
}

func (w *Workspace) idleSince() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastUsed
}

// RefreshOrders replaces the order list. On failure the stale list is kept.
func (w *Workspace) RefreshOrders(ctx context.Context) error {
	orders, err := w.api.ListOrders(ctx)
	if err != nil {
		w.log.Error("fetch_orders_failed", slog.Any("err", err))
		return err
	}
	w.mu.Lock()
	w.orders = orders
	w.loaded[listOrders] = true
	w.mu.Unlock()
	return nil
}

// RefreshRestaurants replaces the restaurant list. On failure the stale list is kept.
func (w *Workspace) RefreshRestaurants(ctx context.Context) error {
	rs, err := w.api.ListRestaurants(ctx)
	if err != nil {
		w.log.Error("fetch_restaurants_failed", slog.Any("err", err))
		return err
	}
	w.mu.Lock()
	w.restaurants = rs
	w.loaded[listRestaurants] = true
	w.mu.Unlock()
	return nil
}

// RefreshAgents replaces the agent list. On failure the stale list is kept.
func (w *Workspace) RefreshAgents(ctx context.Context) error {
	agents, err := w.api.ListAgents(ctx)
	if err != nil {
		w.log.Error("fetch_agents_failed", slog.Any("err", err))
		return err
	}
	w.mu.Lock()
	w.agents = agents
	w.loaded[listAgents] = true
	w.mu.Unlock()
	return nil
}

// RefreshUsers replaces the user list. On failure the stale list is kept.
func (w *Workspace) RefreshUsers(ctx context.Context) error {
	users, err := w.api.ListUsers(ctx)
	if err != nil {
		w.log.Error("fetch_users_failed", slog.Any("err", err))
		return err
	}
	w.mu.Lock()
	w.users = users
	w.loaded[listUsers] = true
	w.mu.Unlock()
	return nil
}

// refreshAfter re-fetches a list after a successful mutation. A failure keeps the
// stale list and is reported, but does not fail the mutation.
func (w *Workspace) refreshAfter(ctx context.Context, name string, fn func(context.Context) error) {
	if err := fn(ctx); err != nil {
		notify.From(ctx).Failure("Error", "Failed to fetch "+name)
	}
}

func (w *Workspace) Orders() []models.Order {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]models.Order(nil), w.orders...)
}

func (w *Workspace) Restaurants() []models.Restaurant {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]models.Restaurant(nil), w.restaurants...)
}

func (w *Workspace) Agents() []models.DeliveryAgent {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]models.DeliveryAgent(nil), w.agents...)
}

func (w *Workspace) Users() []models.User {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]models.User(nil), w.users...)
}

// SearchTerm is shared by every list view of the workspace.
func (w *Workspace) SearchTerm() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.searchTerm
}

func (w *Workspace) SetSearchTerm(term string) {
	w.mu.Lock()
	w.searchTerm = term
	w.mu.Unlock()
}

// Modal is the open dialog, ModalNone when closed.
func (w *Workspace) Modal() Modal {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.modal
}

// OpenModal opens m, replacing any open dialog.
func (w *Workspace) OpenModal(m Modal) error {
	if !m.IsValid() {
		return ErrInvalidInput
	}
	w.mu.Lock()
	w.modal = m
	w.mu.Unlock()
	return nil
}

// CloseModal closes whatever dialog is open.
func (w *Workspace) CloseModal() {
	w.mu.Lock()
	w.modal = ModalNone
	w.mu.Unlock()
}

// closeModal closes m if it is the open dialog.
func (w *Workspace) closeModal(m Modal) {
	w.mu.Lock()
	if w.modal == m {
		w.modal = ModalNone
	}
	w.mu.Unlock()
}

// failureText returns the text to show for a failed backend call.
func failureText(err error, fallback string) string {
	return backend.Message(err, fallback)
}
