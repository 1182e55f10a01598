package publishobs

import (
	"context"

	"progress-pulse/internal/interfaces"
	"progress-pulse/internal/logger"
	"progress-pulse/internal/trace"
	"progress-pulse/internal/types"

	"go.opentelemetry.io/otel/attribute"
)

// observablePublisher wraps a Publisher with observability (logging & tracing)
type observablePublisher struct {
	publisher interfaces.Publisher
	platform  string
}

// Compile-time interface check
var _ interfaces.Publisher = (*observablePublisher)(nil)

// Wrap wraps a publisher with observability middleware
func Wrap(publisher interfaces.Publisher, platform string) interfaces.Publisher {
	return &observablePublisher{
		publisher: publisher,
		platform:  platform,
	}
}

func (o *observablePublisher) Verify(ctx context.Context) (types.Account, error) {
	ctx, span := trace.StartSpan(ctx, "publish.Verify")
	defer span.End()
	span.SetAttributes(attribute.String("platform", o.platform))

	acct, err := o.publisher.Verify(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Publisher verification failed", err, "platform", o.platform)
		return acct, err
	}

	logger.InfoSkip(ctx, 1, "Publisher verified",
		"platform", o.platform,
		"account_id", acct.ID,
		"handle", acct.Handle,
	)
	return acct, nil
}

func (o *observablePublisher) UploadMedia(ctx context.Context, name string, data []byte) (string, error) {
	ctx, span := trace.StartSpan(ctx, "publish.UploadMedia")
	defer span.End()
	span.SetAttributes(
		attribute.String("platform", o.platform),
		attribute.Int("bytes", len(data)),
	)

	logger.DebugSkip(ctx, 1, "Uploading media", "platform", o.platform, "name", name, "bytes", len(data))

	id, err := o.publisher.UploadMedia(ctx, name, data)
	if err != nil {
		// Callers fall back to text-only posts, so this is a warning
		logger.WarnSkip(ctx, 1, "Media upload failed", "platform", o.platform, "error", err)
		return "", err
	}

	logger.DebugSkip(ctx, 1, "Media uploaded", "platform", o.platform, "media_id", id)
	return id, nil
}

func (o *observablePublisher) Post(ctx context.Context, text, mediaID string) (types.PostResult, error) {
	ctx, span := trace.StartSpan(ctx, "publish.Post")
	defer span.End()
	span.SetAttributes(
		attribute.String("platform", o.platform),
		attribute.Bool("with_media", mediaID != ""),
	)

	logger.DebugSkip(ctx, 1, "Publishing post",
		"platform", o.platform,
		"chars", len([]rune(text)),
		"with_media", mediaID != "",
	)

	res, err := o.publisher.Post(ctx, text, mediaID)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Publishing failed", err,
			"platform", o.platform,
			"with_media", mediaID != "",
		)
		return res, err
	}

	logger.Published(ctx, res)
	return res, nil
}
