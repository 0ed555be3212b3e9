package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"foodDeliveryAdmin/internal/backend"
	"foodDeliveryAdmin/internal/notify"
	"foodDeliveryAdmin/models"
)

// mutate runs one admin edit: toast and log on failure, toast and re-fetch the touched list
// on success.
func (w *Workspace) mutate(ctx context.Context, op, failTitle, fallback, success, list string, refresh func(context.Context) error, call func(context.Context) error) error {
	toasts := notify.From(ctx)
	if err := call(ctx); err != nil {
		toasts.Failure(failTitle, failureText(err, fallback))
		w.log.Error(op+"_failed", slog.Any("err", err))
		return fmt.Errorf("%s: %w", strings.ReplaceAll(op, "_", " "), err)
	}
	w.log.Info(op + "_succeeded")
	toasts.Success("Success", success)
	w.refreshAfter(ctx, list, refresh)
	return nil
}

func requireID(id, what string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: %s id is required", ErrInvalidInput, what)
	}
	return nil
}

// UpdateOrderStatus changes an order's status.
func (w *Workspace) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) error {
	if err := requireID(id, "order"); err != nil {
		return err
	}
	if !status.IsValid() {
		notify.From(ctx).Failure("Update Failed", "Unknown order status")
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}
	return w.mutate(ctx, "update_order_status", "Update Failed", "Failed to update order status", "Order status updated", "orders", w.RefreshOrders,
		func(ctx context.Context) error {
			_, err := w.api.UpdateOrderStatus(ctx, id, status)
			return err
		})
}

// DeleteOrder removes an order.
func (w *Workspace) DeleteOrder(ctx context.Context, id string) error {
	if err := requireID(id, "order"); err != nil {
		return err
	}
	return w.mutate(ctx, "delete_order", "Delete Failed", "Failed to delete order", "Order deleted", "orders", w.RefreshOrders,
		func(ctx context.Context) error { return w.api.DeleteOrder(ctx, id) })
}

// CreateRestaurant adds a restaurant and closes the add-restaurant dialog.
func (w *Workspace) CreateRestaurant(ctx context.Context, in models.RestaurantInput) error {
	if strings.TrimSpace(in.Name) == "" {
		notify.From(ctx).Failure("Invalid Restaurant", "Restaurant name is required")
		return fmt.Errorf("%w: restaurant name is required", ErrInvalidInput)
	}
	err := w.mutate(ctx, "create_restaurant", "Error", "Failed to add restaurant", "Restaurant added", "restaurants", w.RefreshRestaurants,
		func(ctx context.Context) error {
			_, err := w.api.CreateRestaurant(ctx, in)
			return err
		})
	if err == nil {
		w.closeModal(ModalAddRestaurant)
	}
	return err
}

// UpdateRestaurant changes the non-empty fields of in.
func (w *Workspace) UpdateRestaurant(ctx context.Context, id string, in models.RestaurantInput) error {
	if err := requireID(id, "restaurant"); err != nil {
		return err
	}
	return w.mutate(ctx, "update_restaurant", "Error", "Failed to update restaurant", "Restaurant updated", "restaurants", w.RefreshRestaurants,
		func(ctx context.Context) error {
			_, err := w.api.UpdateRestaurant(ctx, id, in)
			return err
		})
}

// DeleteRestaurant removes a restaurant.
func (w *Workspace) DeleteRestaurant(ctx context.Context, id string) error {
	if err := requireID(id, "restaurant"); err != nil {
		return err
	}
	return w.mutate(ctx, "delete_restaurant", "Error", "Failed to delete restaurant", "Restaurant deleted", "restaurants", w.RefreshRestaurants,
		func(ctx context.Context) error { return w.api.DeleteRestaurant(ctx, id) })
}

// Menu fetches a restaurant's menu. Menus are not cached in the workspace.
func (w *Workspace) Menu(ctx context.Context, restaurantID string) ([]models.MenuItem, error) {
	if err := requireID(restaurantID, "restaurant"); err != nil {
		return nil, err
	}
	items, err := w.api.ListMenu(ctx, restaurantID)
	if err != nil {
		notify.From(ctx).Failure("Error", failureText(err, "Failed to fetch menu"))
		w.log.Error("fetch_menu_failed", slog.String("restaurant_id", restaurantID), slog.Any("err", err))
		return nil, err
	}
	return items, nil
}

// AddMenuItem adds an item to a restaurant's menu and returns the refreshed menu.
func (w *Workspace) AddMenuItem(ctx context.Context, restaurantID string, in models.MenuItemInput) ([]models.MenuItem, error) {
	if err := requireID(restaurantID, "restaurant"); err != nil {
		return nil, err
	}
	if in.AvailabilityType == "" {
		in.AvailabilityType = models.AvailabilityAlways
	}
	if err := backend.ValidateMenuItemInput(in); err != nil {
		notify.From(ctx).Failure("Invalid Menu Item", err.Error())
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if _, err := w.api.AddMenuItem(ctx, restaurantID, in); err != nil {
		notify.From(ctx).Failure("Error", failureText(err, "Failed to add menu item"))
		w.log.Error("add_menu_item_failed", slog.String("restaurant_id", restaurantID), slog.Any("err", err))
		return nil, fmt.Errorf("add menu item: %w", err)
	}
	notify.From(ctx).Success("Success", "Menu item added")
	return w.Menu(ctx, restaurantID)
}

// CreateAgent adds a delivery agent and closes the add-agent dialog.
func (w *Workspace) CreateAgent(ctx context.Context, in models.AgentInput) error {
	if strings.TrimSpace(in.Name) == "" {
		notify.From(ctx).Failure("Invalid Agent", "Agent name is required")
		return fmt.Errorf("%w: agent name is required", ErrInvalidInput)
	}
	if in.Status != "" && !in.Status.IsValid() {
		return fmt.Errorf("%w: unknown agent status %q", ErrInvalidInput, in.Status)
	}
	err := w.mutate(ctx, "create_agent", "Error", "Failed to create agent", "Agent added", "delivery agents", w.RefreshAgents,
		func(ctx context.Context) error {
			_, err := w.api.CreateAgent(ctx, in)
			return err
		})
	if err == nil {
		w.closeModal(ModalAddAgent)
	}
	return err
}

// UpdateAgent changes the non-empty fields of in.
func (w *Workspace) UpdateAgent(ctx context.Context, id string, in models.AgentInput) error {
	if err := requireID(id, "agent"); err != nil {
		return err
	}
	if in.Status != "" && !in.Status.IsValid() {
		return fmt.Errorf("%w: unknown agent status %q", ErrInvalidInput, in.Status)
	}
	return w.mutate(ctx, "update_agent", "Error", "Failed to update agent", "Agent updated", "delivery agents", w.RefreshAgents,
		func(ctx context.Context) error {
			_, err := w.api.UpdateAgent(ctx, id, in)
			return err
		})
}

// DeleteAgent removes a delivery agent.
func (w *Workspace) DeleteAgent(ctx context.Context, id string) error {
	if err := requireID(id, "agent"); err != nil {
		return err
	}
	return w.mutate(ctx, "delete_agent", "Error", "Failed to delete agent", "Agent deleted", "delivery agents", w.RefreshAgents,
		func(ctx context.Context) error { return w.api.DeleteAgent(ctx, id) })
}

// fetchOne loads one entity for a detail page. Failures are toasted and logged.
func fetchOne[T any](ctx context.Context, w *Workspace, what, id string, get func(context.Context, string) (*T, error)) (*T, error) {
	if err := requireID(id, what); err != nil {
		return nil, err
	}
	v, err := get(ctx, id)
	if err != nil {
		notify.From(ctx).Failure("Error", failureText(err, "Failed to fetch "+what))
		w.log.Error("fetch_"+what+"_failed", slog.String(what+"_id", id), slog.Any("err", err))
		return nil, err
	}
	return v, nil
}

// User fetches one user's details, including order history.
func (w *Workspace) User(ctx context.Context, id string) (*models.User, error) {
	return fetchOne(ctx, w, "user", id, w.api.GetUser)
}

// Order fetches one order with its items.
func (w *Workspace) Order(ctx context.Context, id string) (*models.Order, error) {
	return fetchOne(ctx, w, "order", id, w.api.GetOrder)
}

// Restaurant fetches one restaurant.
func (w *Workspace) Restaurant(ctx context.Context, id string) (*models.Restaurant, error) {
	return fetchOne(ctx, w, "restaurant", id, w.api.GetRestaurant)
}

// Agent fetches one delivery agent, including the order it carries.
func (w *Workspace) Agent(ctx context.Context, id string) (*models.DeliveryAgent, error) {
	return fetchOne(ctx, w, "agent", id, w.api.GetAgent)
}
