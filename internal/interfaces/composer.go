package interfaces

import (
	"context"

	"progress-pulse/internal/types"
)

type Composer interface {
	Compose(ctx context.Context, rec types.ProgressRecord) (types.ComposedContent, error)
}

type ChartRenderer interface {
	Render(rec types.ProgressRecord) ([]byte, error)
}
