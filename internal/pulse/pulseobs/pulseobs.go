package pulseobs

import (
	"context"
	"time"

	"progress-pulse/internal/interfaces"
	"progress-pulse/internal/logger"
	"progress-pulse/internal/trace"
	"progress-pulse/internal/types"
)

type observableRunner struct {
	runner interfaces.Runner
}

var _ interfaces.Runner = (*observableRunner)(nil)

func Wrap(runner interfaces.Runner) interfaces.Runner {
	return &observableRunner{
		runner: runner,
	}
}

func (o *observableRunner) Run(ctx context.Context) (*types.RunResult, error) {
	ctx, span := trace.StartSpan(ctx, "pulse.Run")
	defer span.End()

	start := time.Now()

	logger.InfoSkip(ctx, 1, "Starting progress pulse run")

	result, err := o.runner.Run(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Progress pulse run failed", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	logger.InfoSkip(ctx, 1, "Progress pulse run completed",
		"run_id", result.RunID,
		"date", result.Record.Today.Format("2006-01-02"),
		"percent_complete", result.Record.PercentComplete,
		"post_url", result.Post.URL,
		"text_only", result.Post.TextOnly,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return result, nil
}
