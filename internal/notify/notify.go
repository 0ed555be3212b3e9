// Package notify carries the toast notifications raised while handling one request.
package notify

import (
	"context"
	"sync"
)

// Variant selects how a toast is rendered.
type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

// Toast is one user-visible notification.
type Toast struct {
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Variant     Variant `json:"variant"`
}

// Collector accumulates toasts. The zero value is ready to use.
type Collector struct {
	mu     sync.Mutex
	toasts []Toast
}

// Add appends a toast.
func (c *Collector) Add(t Toast) {
	if t.Variant == "" {
		t.Variant = VariantDefault
	}
	c.mu.Lock()
	c.toasts = append(c.toasts, t)
	c.mu.Unlock()
}

// Success adds a default toast.
func (c *Collector) Success(title, description string) {
	c.Add(Toast{Title: title, Description: description, Variant: VariantDefault})
}

// Failure adds a destructive toast.
func (c *Collector) Failure(title, description string) {
	c.Add(Toast{Title: title, Description: description, Variant: VariantDestructive})
}

// Drain returns the collected toasts and empties the collector. It never returns nil.
func (c *Collector) Drain() []Toast {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.toasts
	c.toasts = nil
	if out == nil {
		out = []Toast{}
	}
	return out
}

type collectorKey struct{}

// WithCollector stores c in ctx.
func WithCollector(ctx context.Context, c *Collector) context.Context {
	return context.WithValue(ctx, collectorKey{}, c)
}

// From returns the collector in ctx, or a fresh one nobody reads when there is none.
func From(ctx context.Context) *Collector {
	if c, ok := ctx.Value(collectorKey{}).(*Collector); ok && c != nil {
		return c
	}
	return &Collector{}
}
