// Package events fans thread change notifications out to stream subscribers.
package events

import (
	"context"

	"github.com/textchan-dev/textchan/shared/api"
)

// Broker delivers every published event to all current subscribers.
// Delivery is best effort: a subscriber that falls behind loses events.
type Broker interface {
	Publish(ctx context.Context, event api.ThreadEvent) error
	// Subscribe returns the event channel and a function that releases it.
	// The channel is closed once released or when the broker shuts down.
	Subscribe() (<-chan api.ThreadEvent, func())
	Close() error
}
