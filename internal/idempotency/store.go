// Package idempotency remembers Idempotency-Key headers so a retried submit is not run twice.
package idempotency

import (
	"context"
	"fmt"
)

// Store claims keys. Seen reports true when the key was already claimed within the TTL.
type Store interface {
	Seen(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// Key scopes a client supplied key to one session and operation.
func Key(operation, sessionID, clientKey string) string {
	return fmt.Sprintf("idem:%s:%s:%s", operation, sessionID, clientKey)
}
