// Package pulse runs the daily pipeline: compute the year's progress, compose the post
// and publish it.
package pulse

import (
	"context"
	"fmt"
	"strings"
	"time"

	"progress-pulse/internal/compose"
	"progress-pulse/internal/interfaces"
	"progress-pulse/internal/logger"
	"progress-pulse/internal/metrics"
	"progress-pulse/internal/progress"
	"progress-pulse/internal/publish"
	"progress-pulse/internal/store"
	"progress-pulse/internal/types"

	"github.com/google/uuid"
)

type Runner struct {
	cfg       *store.Config
	composer  interfaces.Composer
	publisher interfaces.Publisher
	metrics   *metrics.Metrics
	now       func() time.Time
}

var _ interfaces.Runner = (*Runner)(nil)

type Option func(*Runner)

// WithClock replaces time.Now, which decides "today" when no date is configured.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		r.now = now
	}
}

// WithMetrics records every run into m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Runner) {
		r.metrics = m
	}
}

func New(cfg *store.Config, composer interfaces.Composer, publisher interfaces.Publisher, opts ...Option) *Runner {
	r := &Runner{
		cfg:       cfg,
		composer:  composer,
		publisher: publisher,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Platform names where posts of cfg go.
func Platform(cfg *store.Config) string {
	if cfg.Mode == store.ModeDryRun {
		return publish.PlatformOutbox
	}
	return strings.ToLower(cfg.Publisher)
}

// Run executes one cycle. A failed chart or upload degrades to a text-only post;
// configuration, verification and publishing failures are returned.
func (r *Runner) Run(ctx context.Context) (*types.RunResult, error) {
	start := r.now()
	res := &types.RunResult{RunID: uuid.NewString()}

	op := logger.StartOperation(ctx, "pulse.Run", "run_id", res.RunID, "platform", Platform(r.cfg))
	ctx = op.GetContext()

	err := r.run(ctx, res)
	res.Duration = r.now().Sub(start)
	r.record(ctx, res, err)

	if err != nil {
		op.EndWithError(err)
		return nil, err
	}
	op.End("post_id", res.Post.ID)
	return res, nil
}

func (r *Runner) run(ctx context.Context, res *types.RunResult) error {
	today, err := r.cfg.Today(r.now())
	if err != nil {
		return fmt.Errorf("failed to resolve today: %w", err)
	}

	res.Record = progress.Calculate(today, r.cfg.Progress.IncludeToday)
	logger.Progress(ctx, res.Record)

	content, err := r.composer.Compose(ctx, res.Record)
	if err != nil {
		logger.Warn(ctx, "Chart unavailable, posting text only", "error", err)
		content.ChartImage = nil
	}
	if !compose.Fits(content.PostText, r.cfg.Content.MaxPostLength) {
		logger.Warn(ctx, "Composed text over budget, truncating",
			"weight", compose.Weight(content.PostText),
			"limit", r.cfg.Content.MaxPostLength,
		)
		content.PostText = compose.Truncate(content.PostText, r.cfg.Content.MaxPostLength)
		content.Truncated = true
		content.TextWeight = compose.Weight(content.PostText)
	}
	res.Content = content

	logger.Info(ctx, "Post composed",
		"aside", string(content.Aside),
		"aside_remote", content.AsideRemote,
		"aside_dropped", content.AsideDropped,
		"truncated", content.Truncated,
		"weight", content.TextWeight,
		"chart_bytes", len(content.ChartImage),
	)
	logger.Debug(ctx, "Post text", "text", content.PostText)

	acct, err := r.publisher.Verify(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify publisher account: %w", err)
	}
	res.Account = acct

	mediaID := ""
	if len(content.ChartImage) > 0 {
		name := fmt.Sprintf("progress-%s.png", res.Record.Today.Format("2006-01-02"))
		mediaID, err = r.publisher.UploadMedia(ctx, name, content.ChartImage)
		if err != nil {
			logger.Warn(ctx, "Chart upload failed, posting text only", "error", err)
			mediaID = ""
		}
	}

	post, err := r.publisher.Post(ctx, content.PostText, mediaID)
	if err != nil && mediaID != "" {
		logger.Warn(ctx, "Post with media failed, retrying text only", "error", err)
		post, err = r.publisher.Post(ctx, content.PostText, "")
	}
	if err != nil {
		return fmt.Errorf("failed to publish post: %w", err)
	}
	res.Post = post
	return nil
}

func (r *Runner) record(ctx context.Context, res *types.RunResult, err error) {
	if r.metrics == nil {
		return
	}
	r.metrics.Record(res, Platform(r.cfg), err, r.now())
	if path := r.cfg.Metrics.Textfile; path != "" {
		if werr := r.metrics.WriteTextfile(path); werr != nil {
			logger.Warn(ctx, "Failed to write metrics textfile", "path", path, "error", werr)
		}
	}
}
