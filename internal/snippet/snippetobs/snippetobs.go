package snippetobs

import (
	"context"

	"progress-pulse/internal/interfaces"
	"progress-pulse/internal/logger"
	"progress-pulse/internal/trace"
	"progress-pulse/internal/types"
)

// observableSource wraps a SnippetSource with observability (logging & tracing)
type observableSource struct {
	source interfaces.SnippetSource
}

var _ interfaces.SnippetSource = (*observableSource)(nil)

// Wrap wraps a snippet source with observability middleware
func Wrap(source interfaces.SnippetSource) interfaces.SnippetSource {
	return &observableSource{source: source}
}

func (o *observableSource) Quote(ctx context.Context) (types.Snippet, error) {
	ctx, span := trace.StartSpan(ctx, "snippet.Quote")
	defer span.End()
	return o.observe(ctx, types.AsideQuote, o.source.Quote)
}

func (o *observableSource) Joke(ctx context.Context) (types.Snippet, error) {
	ctx, span := trace.StartSpan(ctx, "snippet.Joke")
	defer span.End()
	return o.observe(ctx, types.AsideJoke, o.source.Joke)
}

func (o *observableSource) observe(ctx context.Context, kind types.AsideKind, fetch func(context.Context) (types.Snippet, error)) (types.Snippet, error) {
	logger.DebugSkip(ctx, 2, "Fetching remote snippet", "kind", string(kind))

	snip, err := fetch(ctx)
	if err != nil {
		// Failures are expected and recovered by the caller, so they are not errors here
		logger.InfoSkip(ctx, 2, "Remote snippet unavailable", "kind", string(kind), "reason", err.Error())
		return snip, err
	}

	logger.DebugSkip(ctx, 2, "Remote snippet received",
		"kind", string(kind),
		"length", len([]rune(snip.Text)),
		"attribution", snip.Attribution,
	)
	return snip, nil
}
