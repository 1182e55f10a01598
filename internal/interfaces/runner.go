package interfaces

import (
	"context"

	"progress-pulse/internal/types"
)

// Runner performs one complete compute, compose and publish cycle.
type Runner interface {
	Run(ctx context.Context) (*types.RunResult, error)
}
