package snippet

import (
	"context"

	"progress-pulse/internal/interfaces"
	"progress-pulse/internal/types"
)

// Disabled is the source used when remote content is turned off. It never touches the network.
type Disabled struct{}

var _ interfaces.SnippetSource = Disabled{}

func NewDisabled() Disabled {
	return Disabled{}
}

func (Disabled) Quote(ctx context.Context) (types.Snippet, error) {
	return types.Snippet{}, ErrDisabled
}

func (Disabled) Joke(ctx context.Context) (types.Snippet, error) {
	return types.Snippet{}, ErrDisabled
}
