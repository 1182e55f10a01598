package interfaces

import (
	"context"

	"progress-pulse/internal/types"
)

// SnippetSource supplies short remote text for post asides.
type SnippetSource interface {
	Quote(ctx context.Context) (types.Snippet, error)
	Joke(ctx context.Context) (types.Snippet, error)
}
