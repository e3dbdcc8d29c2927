package core

import (
	"github.com/aretw0/introspection"
)

// CoordinatorState exposes internal state for observability.
type CoordinatorState struct {
	Watched       []string      `json:"watched_containers"`
	PendingTimers int           `json:"pending_timers"`
	Closed        bool          `json:"closed"`
	LastBatch     *BatchSummary `json:"last_batch,omitempty"`
}

// State implements introspection.Introspectable.
func (c *Coordinator) State() any {
	c.mu.Lock()
	defer c.mu.Unlock()

	return CoordinatorState{
		Watched:       append([]string(nil), c.cfg.WatchedContainers...),
		PendingTimers: len(c.pending),
		Closed:        c.closed,
		LastBatch:     c.lastBatch,
	}
}

// ComponentType implements introspection.Component.
func (c *Coordinator) ComponentType() string {
	return "coordinator"
}

var _ introspection.Introspectable = (*Coordinator)(nil)
var _ introspection.Component = (*Coordinator)(nil)
