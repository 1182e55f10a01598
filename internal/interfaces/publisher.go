package interfaces

import (
	"context"

	"progress-pulse/internal/types"
)

// Publisher is the social platform the composed content is posted to.
type Publisher interface {
	// Verify checks the credentials and returns the account posts will appear under.
	Verify(ctx context.Context) (types.Account, error)

	// UploadMedia uploads an image and returns an opaque handle for Post.
	UploadMedia(ctx context.Context, name string, data []byte) (string, error)

	// Post publishes text, attaching the media handle when it is not empty.
	Post(ctx context.Context, text, mediaID string) (types.PostResult, error)
}
