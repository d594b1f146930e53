package events

import "slices"

// EventCollector buffers the events an aggregate raises until a use case
// publishes them.
type EventCollector struct {
	pending []DomainEvent
}

// Record buffers e.
func (c *EventCollector) Record(e DomainEvent) {
	c.pending = append(c.pending, e)
}

// Events returns a copy of the buffered events.
func (c *EventCollector) Events() []DomainEvent {
	return slices.Clone(c.pending)
}

// ClearEvents drains the buffer and returns what it held.
func (c *EventCollector) ClearEvents() []DomainEvent {
	drained := c.pending
	c.pending = nil
	return drained
}
