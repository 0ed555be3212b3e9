package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollector_DrainOrderAndReset(t *testing.T) {
	var c Collector
	assert.Equal(t, []Toast{}, c.Drain())

	c.Success("OTP Sent", "Check your phone")
	c.Failure("Assignment Failed", "Failed to assign delivery agent")
	c.Add(Toast{Title: "Plain"})

	got := c.Drain()
	assert.Equal(t, []Toast{
		{Title: "OTP Sent", Description: "Check your phone", Variant: VariantDefault},
		{Title: "Assignment Failed", Description: "Failed to assign delivery agent", Variant: VariantDestructive},
		{Title: "Plain", Variant: VariantDefault},
	}, got)
	assert.Empty(t, c.Drain())
}

func TestFrom_Context(t *testing.T) {
	c := &Collector{}
	ctx := WithCollector(context.Background(), c)
	From(ctx).Success("Hello", "")
	assert.Len(t, c.Drain(), 1)

	// Without a collector the toast goes nowhere and nothing panics.
	From(context.Background()).Failure("Dropped", "")
}
