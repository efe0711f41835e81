// internal/app/system/timeouts/timeouts.go

// Package timeouts centralizes the deadlines used for database and
// object-store calls.
package timeouts

import (
	"context"
	"time"
)

const (
	// Ping covers connection health checks.
	Ping = 2 * time.Second

	// Short covers single-document reads and writes.
	Short = 5 * time.Second

	// Medium covers multi-step writes and aggregations.
	Medium = 15 * time.Second

	// Long covers uploads and other streaming work.
	Long = 2 * time.Minute
)

// Context derives a deadline-bounded context from the request context.
func Context(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, d)
}
