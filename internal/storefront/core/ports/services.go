package ports

import (
	"context"
	"time"

	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
)

// Cache is the key/value port used for idempotency replay and read caching.
type Cache interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	// Get returns "" and a nil error on a miss.
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
	GenerateKey(operation, key string) string
}

// EventPublisher delivers order events after commit. Delivery is best
// effort and never part of a checkout transaction.
type EventPublisher interface {
	Publish(ctx context.Context, event entity.OrderEvent) error
}
