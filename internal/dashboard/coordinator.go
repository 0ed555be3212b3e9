package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"foodDeliveryAdmin/internal/events"
	"foodDeliveryAdmin/internal/notify"
	"foodDeliveryAdmin/models"
)

// Coordinator runs the assign, complete and create-order commands of one workspace.
// Each command triggers one backend call and, on success, re-fetches the list it
// touched; nothing is updated optimistically. Commands of the same kind never overlap.
type Coordinator struct {
	ws *Workspace

	mu       sync.Mutex
	inflight map[models.DispatchAction]bool
}

func (c *Coordinator) begin(action models.DispatchAction) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight[action] {
		return ErrBusy
	}
	c.inflight[action] = true
	return nil
}

func (c *Coordinator) end(action models.DispatchAction) {
	c.mu.Lock()
	delete(c.inflight, action)
	c.mu.Unlock()
}

// Busy reports whether a command of the given kind is running.
func (c *Coordinator) Busy(action models.DispatchAction) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inflight[action]
}

// AssignAgent hands an order to a delivery agent. On success the agent list is re-fetched
// and the assign dialog closed; on failure the dialog stays open.
func (c *Coordinator) AssignAgent(ctx context.Context, a models.Assignment) error {
	return c.runAssignment(ctx, a, assignmentCommand{
		action:    models.DispatchAssign,
		modal:     ModalAssign,
		subject:   events.SubjectDeliveryAssigned,
		failTitle: "Assignment Failed",
		fallback:  "Failed to assign delivery agent",
		success:   "Agent assigned successfully",
		call:      c.ws.api.AssignAgent,
	})
}

// CompleteDelivery marks an agent's delivery as done. Failures are handled like AssignAgent's.
func (c *Coordinator) CompleteDelivery(ctx context.Context, a models.Assignment) error {
	return c.runAssignment(ctx, a, assignmentCommand{
		action:    models.DispatchComplete,
		modal:     ModalComplete,
		subject:   events.SubjectDeliveryCompleted,
		failTitle: "Completion Failed",
		fallback:  "Failed to complete delivery",
		success:   "Delivery completed successfully",
		call:      c.ws.api.CompleteDelivery,
	})
}

type assignmentCommand struct {
	action    models.DispatchAction
	modal     Modal
	subject   string
	failTitle string
	fallback  string
	success   string
	call      func(context.Context, models.Assignment) (string, error)
}

func (c *Coordinator) runAssignment(ctx context.Context, a models.Assignment, cmd assignmentCommand) error {
	toasts := notify.From(ctx)
	log := c.ws.log.With(slog.String("action", string(cmd.action)), slog.String("order_id", a.OrderID), slog.String("agent_id", a.AgentID))

	a.OrderID = strings.TrimSpace(a.OrderID)
	a.AgentID = strings.TrimSpace(a.AgentID)
	if a.OrderID == "" || a.AgentID == "" {
		toasts.Failure(cmd.failTitle, "Select both an order and a delivery agent")
		return fmt.Errorf("%w: order and agent are required", ErrInvalidInput)
	}
	if err := c.begin(cmd.action); err != nil {
		return err
	}
	defer c.end(cmd.action)

	if _, err := cmd.call(ctx, a); err != nil {
		desc := failureText(err, cmd.fallback)
		toasts.Failure(cmd.failTitle, desc)
		log.Error("dispatch_command_failed", slog.Any("err", err))
		c.record(ctx, &models.DispatchRecord{Action: cmd.action, OrderID: a.OrderID, AgentID: a.AgentID, Outcome: models.DispatchFailed, Detail: desc})
		return fmt.Errorf("%s: %w", cmd.action, err)
	}

	log.Info("dispatch_command_succeeded")
	toasts.Success("Success", cmd.success)
	c.record(ctx, &models.DispatchRecord{Action: cmd.action, OrderID: a.OrderID, AgentID: a.AgentID, Outcome: models.DispatchOK})
	c.publish(ctx, events.Event{Type: cmd.subject, OrderID: a.OrderID, AgentID: a.AgentID})
	c.ws.refreshAfter(ctx, "delivery agents", c.ws.RefreshAgents)
	c.ws.closeModal(cmd.modal)
	return nil
}

// ValidateDraft checks a create-order form the way the dialog disables its submit button.
func ValidateDraft(d models.OrderDraft) error {
	if strings.TrimSpace(d.CustomerName) == "" {
		return fmt.Errorf("%w: customer name is required", ErrInvalidInput)
	}
	if strings.TrimSpace(d.RestaurantID) == "" && strings.TrimSpace(d.RestaurantName) == "" {
		return fmt.Errorf("%w: restaurant is required", ErrInvalidInput)
	}
	if len(d.Items) == 0 {
		return fmt.Errorf("%w: at least one item is required", ErrInvalidInput)
	}
	for i, it := range d.Items {
		if it.Quantity <= 0 {
			return fmt.Errorf("%w: item %d: quantity must be positive", ErrInvalidInput, i+1)
		}
		if it.Price < 0 {
			return fmt.Errorf("%w: item %d: price must not be negative", ErrInvalidInput, i+1)
		}
	}
	if d.Status != "" && !d.Status.IsValid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, d.Status)
	}
	return nil
}

// CreateOrder submits a new order with Total = Σ price×quantity. On success the order list
// is re-fetched and the create dialog closed.
func (c *Coordinator) CreateOrder(ctx context.Context, d models.OrderDraft) (*models.Order, error) {
	toasts := notify.From(ctx)
	log := c.ws.log.With(slog.String("action", string(models.DispatchCreateOrder)))

	if err := ValidateDraft(d); err != nil {
		toasts.Failure("Invalid Order", strings.TrimPrefix(err.Error(), ErrInvalidInput.Error()+": "))
		return nil, err
	}
	d.Items = append([]models.OrderItem(nil), d.Items...)
	d.Total = models.OrderTotal(d.Items)
	if d.Status == "" {
		d.Status = models.OrderStatusPending
	}

	if err := c.begin(models.DispatchCreateOrder); err != nil {
		return nil, err
	}
	defer c.end(models.DispatchCreateOrder)

	order, err := c.ws.api.CreateOrder(ctx, d)
	if err != nil {
		desc := failureText(err, "Failed to create order")
		toasts.Failure("Order Creation Failed", desc)
		log.Error("dispatch_command_failed", slog.Any("err", err))
		c.record(ctx, &models.DispatchRecord{Action: models.DispatchCreateOrder, Outcome: models.DispatchFailed, Detail: desc})
		return nil, fmt.Errorf("%s: %w", models.DispatchCreateOrder, err)
	}

	log.Info("dispatch_command_succeeded", slog.String("order_id", order.ID), slog.Float64("total", d.Total))
	toasts.Success("Success", "Order created successfully")
	c.record(ctx, &models.DispatchRecord{Action: models.DispatchCreateOrder, OrderID: order.ID, Outcome: models.DispatchOK, Detail: fmt.Sprintf("total=%.2f", d.Total)})
	c.publish(ctx, events.Event{Type: events.SubjectOrderCreated, OrderID: order.ID})
	c.ws.refreshAfter(ctx, "orders", c.ws.RefreshOrders)
	c.ws.closeModal(ModalCreateOrder)
	return order, nil
}

// record journals a command. Journal failures are logged only.
func (c *Coordinator) record(ctx context.Context, rec *models.DispatchRecord) {
	if c.ws.journal == nil {
		return
	}
	rec.Actor = c.ws.actor
	if _, err := c.ws.journal.Append(context.WithoutCancel(ctx), rec); err != nil {
		c.ws.log.Warn("dispatch_journal_failed", slog.String("action", string(rec.Action)), slog.Any("err", err))
	}
}

// publish emits an event. Publish failures are logged only.
func (c *Coordinator) publish(ctx context.Context, e events.Event) {
	e.Actor = c.ws.actor
	e.OccurredAt = time.Now().UTC()
	if err := c.ws.events.Publish(ctx, e); err != nil {
		c.ws.log.Warn("event_publish_failed", slog.String("subject", e.Type), slog.Any("err", err))
	}
}
