package store

import "context"

// Sinks fans one event out to several sinks in order.
type Sinks []Sink

func (ss Sinks) Publish(ctx context.Context, ev Event) {
	for _, s := range ss {
		s.Publish(ctx, ev)
	}
}
