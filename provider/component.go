package provider

import (
	"context"

	"github.com/kbukum/voxscribe/component"
	apperrors "github.com/kbukum/voxscribe/errors"
	"github.com/kbukum/voxscribe/resilience"
)

// Component puts a backend under lifecycle management. Start blocks until
// the backend reports ready, so traffic is only served once every model
// is loaded.
type Component struct {
	name    string
	backend Provider
	retry   resilience.RetryConfig
	desc    component.Description
}

var _ component.Component = (*Component)(nil)
var _ component.Describable = (*Component)(nil)

// NewComponent creates a Component registered under name.
func NewComponent(name string, backend Provider, retry resilience.RetryConfig, desc component.Description) *Component {
	if desc.Name == "" {
		desc.Name = name
	}
	if desc.Type == "" {
		desc.Type = "model"
	}
	return &Component{name: name, backend: backend, retry: retry, desc: desc}
}

// Name returns the component name.
func (c *Component) Name() string { return c.name }

// Start waits for the backend. One that never becomes ready is a
// ModelLoad error.
func (c *Component) Start(ctx context.Context) error {
	if err := WaitReady(ctx, c.backend, c.retry); err != nil {
		return apperrors.ModelLoad(c.name, err)
	}
	return nil
}

// Stop releases the backend if it holds resources.
func (c *Component) Stop(ctx context.Context) error {
	if cl, ok := c.backend.(Closeable); ok {
		return cl.Close(ctx)
	}
	return nil
}

// Health probes the backend.
func (c *Component) Health(ctx context.Context) component.Health {
	h := component.Health{Name: c.name, Status: component.StatusHealthy}
	if !c.backend.IsAvailable(ctx) {
		h.Status = component.StatusUnhealthy
		h.Message = c.backend.Name() + " is not reachable"
	}
	return h
}

// Describe returns the startup summary entry.
func (c *Component) Describe() component.Description { return c.desc }
