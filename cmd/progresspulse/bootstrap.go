package main

import (
	"context"
	"fmt"
	"time"

	"progress-pulse/internal/api"
	"progress-pulse/internal/chart"
	"progress-pulse/internal/compose"
	"progress-pulse/internal/interfaces"
	"progress-pulse/internal/logger"
	"progress-pulse/internal/metrics"
	"progress-pulse/internal/publish"
	"progress-pulse/internal/publish/outbox"
	"progress-pulse/internal/publish/publishobs"
	"progress-pulse/internal/publish/telegram"
	"progress-pulse/internal/publish/twitter"
	"progress-pulse/internal/pulse"
	"progress-pulse/internal/pulse/pulseobs"
	"progress-pulse/internal/snippet"
	"progress-pulse/internal/snippet/snippetobs"
	"progress-pulse/internal/store"
)

// bootstrap initializes logging and loads the configuration
func bootstrap(ctx context.Context, configPath string, overrides ...func(*store.Config)) (*store.Config, error) {
	if err := logger.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	cfg, err := store.LoadConfig(configPath, overrides...)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err, "path", configPath)
		return nil, err
	}

	if cfg.Mode == store.ModeDryRun {
		logger.Warn(ctx, "Running in DRY_RUN mode - posts go to the local outbox", "dir", cfg.Output.Dir)
	}
	return cfg, nil
}

// initializeSource picks the snippet source for asides
func initializeSource(ctx context.Context, cfg *store.Config) interfaces.SnippetSource {
	if !cfg.Content.UseRemote {
		logger.Info(ctx, "Remote content disabled - asides come from local pools")
		return snippet.NewDisabled()
	}

	src := snippet.NewRemote(snippet.RemoteConfig{
		QuoteURL:        cfg.Content.QuoteURL,
		QuoteTextPath:   cfg.Content.QuoteTextPath,
		QuoteAuthorPath: cfg.Content.QuoteAuthorPath,
		JokeURL:         cfg.Content.JokeURL,
		JokeTextPath:    cfg.Content.JokeTextPath,
	}, api.NewClient(
		api.WithTimeout(cfg.HTTPTimeout()),
		api.WithLogging(logger.IsDebugEnabled()),
	))
	return snippetobs.Wrap(src)
}

func initializeComposer(ctx context.Context, cfg *store.Config) interfaces.Composer {
	renderer := chart.NewRenderer(chart.Config{
		Width:     cfg.Chart.Width,
		Height:    cfg.Chart.Height,
		Watermark: cfg.Chart.Watermark,
	})

	return compose.New(compose.Config{
		MaxLength:      cfg.Content.MaxPostLength,
		QuoteMaxLength: cfg.Content.QuoteMaxLength,
		JokeMaxLength:  cfg.Content.JokeMaxLength,
		FetchTimeout:   cfg.HTTPTimeout(),
	}, initializeSource(ctx, cfg), renderer)
}

// initializePublisher builds the publisher for the configured mode with observability
func initializePublisher(ctx context.Context, cfg *store.Config) interfaces.Publisher {
	if cfg.Mode == store.ModeDryRun {
		box := newOutbox(ctx, cfg)
		if n, err := box.CompressOlder(cfg.Output.RetentionDays); err != nil {
			logger.Warn(ctx, "Failed to compress old outbox days", "error", err)
		} else if n > 0 {
			logger.Info(ctx, "Compressed old outbox files", "files", n, "retention_days", cfg.Output.RetentionDays)
		}
		return publishobs.Wrap(box, publish.PlatformOutbox)
	}

	switch cfg.Publisher {
	case store.PublisherTelegram:
		zl, err := telegram.NewLogger(logger.IsDebugEnabled())
		if err != nil {
			logger.Warn(ctx, "Failed to build telegram client logger", "error", err)
		}
		pub := telegram.New(telegram.Config{
			AppID:       cfg.Telegram.AppID,
			AppHash:     cfg.Telegram.AppHash,
			BotToken:    cfg.Telegram.BotToken,
			Channel:     cfg.Telegram.Channel,
			SessionFile: cfg.Telegram.SessionFile,
		}, zl)
		return publishobs.Wrap(pub, publish.PlatformTelegram)
	default:
		pub := twitter.New(twitter.Config{
			APIKey:            cfg.Twitter.APIKey,
			APISecret:         cfg.Twitter.APISecret,
			AccessToken:       cfg.Twitter.AccessToken,
			AccessTokenSecret: cfg.Twitter.AccessTokenSecret,
			APIBaseURL:        cfg.Twitter.APIBaseURL,
			UploadBaseURL:     cfg.Twitter.UploadBaseURL,
		})
		return publishobs.Wrap(pub, publish.PlatformTwitter)
	}
}

// newOutbox files the run under the date being reported on, so --date runs land in their own day
func newOutbox(ctx context.Context, cfg *store.Config) *outbox.Outbox {
	day, err := cfg.Today(time.Now())
	if err != nil {
		logger.Warn(ctx, "Failed to resolve outbox day - using the write date", "error", err)
		return outbox.New(cfg.Output.Dir)
	}
	return outbox.New(cfg.Output.Dir, outbox.WithDay(day))
}

// initializeRunner wires the pipeline and wraps it with observability
func initializeRunner(ctx context.Context, cfg *store.Config) interfaces.Runner {
	opts := []pulse.Option{}
	if cfg.Metrics.Textfile != "" {
		opts = append(opts, pulse.WithMetrics(metrics.New()))
	}

	runner := pulse.New(cfg, initializeComposer(ctx, cfg), initializePublisher(ctx, cfg), opts...)
	return pulseobs.Wrap(runner)
}
