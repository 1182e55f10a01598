// Package telegram publishes posts to a Telegram channel as a bot over MTProto.
//
// Uploaded files only live as long as the client session that uploaded them, so
// UploadMedia keeps the image in memory and Post uploads and sends it in one session.
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"progress-pulse/internal/interfaces"
	"progress-pulse/internal/publish"
	"progress-pulse/internal/types"

	"github.com/google/uuid"
	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/message"
	"github.com/gotd/td/telegram/message/styling"
	"github.com/gotd/td/telegram/uploader"
	"github.com/gotd/td/tg"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	AppID       int
	AppHash     string
	BotToken    string
	Channel     string // public username, without @
	SessionFile string // empty keeps the session in memory
}

type pendingMedia struct {
	name string
	data []byte
}

type Publisher struct {
	cfg Config
	log *zap.Logger

	mu    sync.Mutex
	media map[string]pendingMedia
}

var _ interfaces.Publisher = (*Publisher)(nil)

func New(cfg Config, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{
		cfg:   cfg,
		log:   log,
		media: make(map[string]pendingMedia),
	}
}

// NewLogger builds the zap logger handed to the MTProto client. The client is chatty,
// so below debug only warnings get through.
func NewLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}

func (p *Publisher) storage() telegram.SessionStorage {
	if p.cfg.SessionFile != "" {
		return &session.FileStorage{Path: p.cfg.SessionFile}
	}
	return new(session.StorageMemory)
}

// run opens one authorized client session and calls f inside it.
func (p *Publisher) run(ctx context.Context, f func(ctx context.Context, client *telegram.Client) error) error {
	client := telegram.NewClient(p.cfg.AppID, p.cfg.AppHash, telegram.Options{
		SessionStorage: p.storage(),
		Logger:         p.log,
	})

	return client.Run(ctx, func(ctx context.Context) error {
		status, err := client.Auth().Status(ctx)
		if err != nil {
			return fmt.Errorf("failed to get auth status: %w", err)
		}
		if !status.Authorized {
			if _, err := client.Auth().Bot(ctx, p.cfg.BotToken); err != nil {
				return fmt.Errorf("bot login failed: %w", err)
			}
		}
		return f(ctx, client)
	})
}

func (p *Publisher) Verify(ctx context.Context) (types.Account, error) {
	var acct types.Account
	err := p.run(ctx, func(ctx context.Context, client *telegram.Client) error {
		self, err := client.Self(ctx)
		if err != nil {
			return err
		}
		if !self.Bot {
			p.log.Warn("Session is not a bot account", zap.Int64("user_id", self.ID))
		}
		acct = types.Account{
			ID:     strconv.FormatInt(self.ID, 10),
			Name:   self.FirstName,
			Handle: self.Username,
		}
		return nil
	})
	if err != nil {
		return types.Account{}, fmt.Errorf("failed to verify telegram bot: %w", err)
	}
	return acct, nil
}

// UploadMedia stages data for the next Post and returns its handle.
func (p *Publisher) UploadMedia(ctx context.Context, name string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty media", publish.ErrRejected)
	}
	id := uuid.NewString()

	p.mu.Lock()
	p.media[id] = pendingMedia{name: name, data: data}
	p.mu.Unlock()
	return id, nil
}

func (p *Publisher) Post(ctx context.Context, text, mediaID string) (types.PostResult, error) {
	var media *pendingMedia
	if mediaID != "" {
		p.mu.Lock()
		m, ok := p.media[mediaID]
		p.mu.Unlock()
		if !ok {
			return types.PostResult{}, fmt.Errorf("%w: %s", publish.ErrUnknownMedia, mediaID)
		}
		media = &m
	}

	var msgID int
	err := p.run(ctx, func(ctx context.Context, client *telegram.Client) error {
		api := client.API()
		builder := message.NewSender(api).Resolve("@" + p.cfg.Channel)

		var (
			upd tg.UpdatesClass
			err error
		)
		if media != nil {
			file, uerr := uploader.NewUploader(api).FromBytes(ctx, media.name, media.data)
			if uerr != nil {
				return fmt.Errorf("failed to upload photo: %w", uerr)
			}
			upd, err = builder.Media(ctx, message.UploadedPhoto(file, styling.Plain(text)))
		} else {
			upd, err = builder.Text(ctx, text)
		}
		if err != nil {
			return err
		}

		id, ok := MessageID(upd)
		if !ok {
			return fmt.Errorf("%w: no message id in updates", publish.ErrRejected)
		}
		msgID = id
		return nil
	})
	if err != nil {
		return types.PostResult{}, fmt.Errorf("failed to send to @%s: %w", p.cfg.Channel, err)
	}

	if mediaID != "" {
		p.mu.Lock()
		delete(p.media, mediaID)
		p.mu.Unlock()
	}

	id := strconv.Itoa(msgID)
	return types.PostResult{
		Platform: publish.PlatformTelegram,
		ID:       id,
		URL:      Permalink(p.cfg.Channel, id),
		TextOnly: mediaID == "",
	}, nil
}

// MessageID finds the id of the sent message in the updates returned by a send call.
func MessageID(upd tg.UpdatesClass) (int, bool) {
	switch u := upd.(type) {
	case *tg.UpdateShortSentMessage:
		return u.ID, true
	case *tg.Updates:
		return messageIDFrom(u.Updates)
	case *tg.UpdatesCombined:
		return messageIDFrom(u.Updates)
	}
	return 0, false
}

func messageIDFrom(updates []tg.UpdateClass) (int, bool) {
	for _, u := range updates {
		switch v := u.(type) {
		case *tg.UpdateNewChannelMessage:
			if m, ok := v.Message.(*tg.Message); ok {
				return m.ID, true
			}
		case *tg.UpdateNewMessage:
			if m, ok := v.Message.(*tg.Message); ok {
				return m.ID, true
			}
		}
	}
	for _, u := range updates {
		if v, ok := u.(*tg.UpdateMessageID); ok {
			return v.ID, true
		}
	}
	return 0, false
}

func Permalink(channel, id string) string {
	return "https://t.me/" + channel + "/" + id
}
