package messaging

import (
	"context"
)

// Broker publishes domain events to downstream collaborators.
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}
