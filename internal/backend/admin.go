package backend

import (
	"context"
	"net/http"
	"net/url"

	"foodDeliveryAdmin/models"
)

// AdminAPI is the client bound to one session's access token.
type AdminAPI struct {
	c     *Client
	token string
}

// WithToken binds the client to a bearer token.
func (c *Client) WithToken(token string) *AdminAPI {
	return &AdminAPI{c: c, token: token}
}

func (a *AdminAPI) call(ctx context.Context, r request) error {
	r.token = a.token
	return a.c.do(ctx, r)
}

func idPath(prefix, id string) string {
	return prefix + "/" + url.PathEscape(id)
}

// ---------- Orders ----------

func (a *AdminAPI) ListOrders(ctx context.Context) ([]models.Order, error) {
	var out []models.Order
	err := a.call(ctx, request{op: "list orders", method: http.MethodGet, path: "/orders", schema: orderListLoader, out: &out})
	return out, err
}

func (a *AdminAPI) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	var out models.Order
	if err := a.call(ctx, request{op: "get order", method: http.MethodGet, path: idPath("/orders", id), schema: orderLoader, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *AdminAPI) CreateOrder(ctx context.Context, draft models.OrderDraft) (*models.Order, error) {
	var out models.Order
	if err := a.call(ctx, request{op: "create order", method: http.MethodPost, path: "/orders", body: draft, schema: orderLoader, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *AdminAPI) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	var out models.Order
	body := map[string]string{"status": string(status)}
	if err := a.call(ctx, request{op: "update order", method: http.MethodPatch, path: idPath("/orders", id), body: body, schema: orderLoader, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *AdminAPI) DeleteOrder(ctx context.Context, id string) error {
	return a.call(ctx, request{op: "delete order", method: http.MethodDelete, path: idPath("/orders", id), schema: ackLoader})
}

// ---------- Restaurants ----------

func (a *AdminAPI) ListRestaurants(ctx context.Context) ([]models.Restaurant, error) {
	var out []models.Restaurant
	err := a.call(ctx, request{op: "list restaurants", method: http.MethodGet, path: "/restaurants", schema: restaurantListLoader, out: &out})
	return out, err
}

func (a *AdminAPI) GetRestaurant(ctx context.Context, id string) (*models.Restaurant, error) {
	var out models.Restaurant
	if err := a.call(ctx, request{op: "get restaurant", method: http.MethodGet, path: idPath("/restaurants", id), schema: restaurantLoader, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *AdminAPI) CreateRestaurant(ctx context.Context, in models.RestaurantInput) (*models.Restaurant, error) {
	var out models.Restaurant
	if err := a.call(ctx, request{op: "create restaurant", method: http.MethodPost, path: "/restaurants", body: in, schema: restaurantLoader, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *AdminAPI) UpdateRestaurant(ctx context.Context, id string, in models.RestaurantInput) (*models.Restaurant, error) {
	var out models.Restaurant
	if err := a.call(ctx, request{op: "update restaurant", method: http.MethodPatch, path: idPath("/restaurants", id), body: in, schema: restaurantLoader, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *AdminAPI) DeleteRestaurant(ctx context.Context, id string) error {
	return a.call(ctx, request{op: "delete restaurant", method: http.MethodDelete, path: idPath("/restaurants", id), schema: ackLoader})
}

func (a *AdminAPI) ListMenu(ctx context.Context, restaurantID string) ([]models.MenuItem, error) {
	var out []models.MenuItem
	err := a.call(ctx, request{op: "list menu", method: http.MethodGet, path: idPath("/restaurants", restaurantID) + "/menu", schema: menuListLoader, out: &out})
	return out, err
}

func (a *AdminAPI) AddMenuItem(ctx context.Context, restaurantID string, in models.MenuItemInput) (*models.MenuItem, error) {
	var out models.MenuItem
	if err := a.call(ctx, request{op: "add menu item", method: http.MethodPost, path: idPath("/restaurants", restaurantID) + "/menu", body: in, schema: menuItemLoader, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

// ---------- Delivery agents ----------

type agentList struct {
	Agents  []models.DeliveryAgent `json:"agents"`
	Message string                 `json:"message"`
}

type ack struct {
	Message string `json:"message"`
}

// ListAgents returns the agents; the backend wraps them as {agents:[...]}.
func (a *AdminAPI) ListAgents(ctx context.Context) ([]models.DeliveryAgent, error) {
	var out agentList
	if err := a.call(ctx, request{op: "list agents", method: http.MethodGet, path: "/agents", schema: agentListLoader, out: &out}); err != nil {
		return nil, err
	}
	return out.Agents, nil
}

func (a *AdminAPI) GetAgent(ctx context.Context, id string) (*models.DeliveryAgent, error) {
	var out models.DeliveryAgent
	if err := a.call(ctx, request{op: "get agent", method: http.MethodGet, path: idPath("/agents", id), schema: agentLoader, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *AdminAPI) CreateAgent(ctx context.Context, in models.AgentInput) (*models.DeliveryAgent, error) {
	var out models.DeliveryAgent
	if err := a.call(ctx, request{op: "create agent", method: http.MethodPost, path: "/agents", body: in, schema: agentLoader, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *AdminAPI) UpdateAgent(ctx context.Context, id string, in models.AgentInput) (*models.DeliveryAgent, error) {
	var out models.DeliveryAgent
	if err := a.call(ctx, request{op: "update agent", method: http.MethodPatch, path: idPath("/agents", id), body: in, schema: agentLoader, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *AdminAPI) DeleteAgent(ctx context.Context, id string) error {
	return a.call(ctx, request{op: "delete agent", method: http.MethodDelete, path: idPath("/agents", id), schema: ackLoader})
}

// AssignAgent asks the backend to hand an order to an agent. It returns the backend's message, if any.
func (a *AdminAPI) AssignAgent(ctx context.Context, as models.Assignment) (string, error) {
	var out ack
	err := a.call(ctx, request{op: "assign agent", method: http.MethodPost, path: "/agents/assign", body: as, schema: ackLoader, out: &out, allowEmpty: true})
	return out.Message, err
}

// CompleteDelivery marks the agent's delivery of the order as done.
func (a *AdminAPI) CompleteDelivery(ctx context.Context, as models.Assignment) (string, error) {
	var out ack
	err := a.call(ctx, request{op: "complete delivery", method: http.MethodPost, path: "/agents/complete", body: as, schema: ackLoader, out: &out, allowEmpty: true})
	return out.Message, err
}

// ---------- Users ----------

func (a *AdminAPI) ListUsers(ctx context.Context) ([]models.User, error) {
	var out []models.User
	err := a.call(ctx, request{op: "list users", method: http.MethodGet, path: "/users", schema: userListLoader, out: &out})
	return out, err
}

func (a *AdminAPI) GetUser(ctx context.Context, id string) (*models.User, error) {
	var out models.User
	if err := a.call(ctx, request{op: "get user", method: http.MethodGet, path: idPath("/users", id), schema: userLoader, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}
