package stage

import (
	"context"

	"pixal/internal/artifacts"
)

// Stage is the capability bound to each ID.
type Stage interface {
	ID() ID
	Consumes() []artifacts.Kind
	Produces() []artifacts.Kind
	Run(ctx context.Context) error
}

// HealthChecker is implemented by stages that depend on external tools or
// credentials.
type HealthChecker interface {
	HealthCheck(ctx context.Context) Health
}
