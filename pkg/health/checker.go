// Package health probes the reconciliation service's dependencies so the
// platform can tell a booting or degraded instance from a healthy one.
package health

import (
	"context"
	"time"
)

// DefaultTimeout bounds a single readiness probe. IPN delivery retries on
// its own, so a slow answer is worse than a negative one.
const DefaultTimeout = 5 * time.Second

// Status reports whether a dependency can serve the reconciliation flow.
type Status string

const (
	StatusUp   Status = "up"
	StatusDown Status = "down"
)

// Result is the outcome of probing one dependency.
type Result struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
}

// Checker probes one dependency the service needs to process notifications.
type Checker interface {
	// Name identifies the dependency in the readiness response.
	Name() string
	// Check probes the dependency within the context deadline.
	Check(ctx context.Context) Result
}
