package providers

import (
	"context"
	"time"
)

// shutdownTimeout is the maximum time to wait for graceful shutdown of a service.
const shutdownTimeout = 30 * time.Second

// shutdownContext bounds a single handle's shutdown by shutdownTimeout.
func shutdownContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), shutdownTimeout)
}
