// Package publish holds what the platform publishers share.
package publish

import "errors"

const (
	PlatformTwitter  = "twitter"
	PlatformTelegram = "telegram"
	PlatformOutbox   = "outbox"
)

var (
	// ErrUnknownMedia is returned by Post for a media handle the publisher never issued
	ErrUnknownMedia = errors.New("unknown media handle")
	// ErrRejected is returned when a platform accepts a request but returns no usable result
	ErrRejected = errors.New("rejected by platform")
)
