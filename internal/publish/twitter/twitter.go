// Package twitter publishes posts to X through the v2 API with OAuth 1.0a user context.
package twitter

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"time"

	"progress-pulse/internal/api"
	"progress-pulse/internal/interfaces"
	"progress-pulse/internal/publish"
	"progress-pulse/internal/types"

	"github.com/dghubble/oauth1"
	"github.com/tidwall/gjson"
)

const (
	DefaultAPIBaseURL    = "https://api.twitter.com"
	DefaultUploadBaseURL = "https://upload.twitter.com"

	permalinkBase = "https://twitter.com"
)

type Config struct {
	APIKey            string
	APISecret         string
	AccessToken       string
	AccessTokenSecret string
	APIBaseURL        string
	UploadBaseURL     string
	Timeout           time.Duration
}

type Publisher struct {
	client    *api.Client
	uploadURL string

	mu     sync.Mutex
	handle string
}

var _ interfaces.Publisher = (*Publisher)(nil)

func New(cfg Config) *Publisher {
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = DefaultAPIBaseURL
	}
	if cfg.UploadBaseURL == "" {
		cfg.UploadBaseURL = DefaultUploadBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = api.DefaultTimeout
	}

	oc := oauth1.NewConfig(cfg.APIKey, cfg.APISecret)
	signed := oc.Client(context.Background(), oauth1.NewToken(cfg.AccessToken, cfg.AccessTokenSecret))

	return &Publisher{
		client: api.NewClient(
			api.WithHTTPClient(signed),
			api.WithBaseURL(strings.TrimRight(cfg.APIBaseURL, "/")),
			api.WithHeader("Accept", "application/json"),
			api.WithTimeout(cfg.Timeout),
			api.WithLogging(true),
		),
		uploadURL: strings.TrimRight(cfg.UploadBaseURL, "/") + "/1.1/media/upload.json",
	}
}

type usersMe struct {
	Data struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Username string `json:"username"`
	} `json:"data"`
}

// Verify checks the credentials and remembers the account handle for permalinks.
func (p *Publisher) Verify(ctx context.Context) (types.Account, error) {
	resp, err := p.client.GET(ctx, "/2/users/me")
	if err != nil {
		return types.Account{}, fmt.Errorf("failed to verify credentials: %w", err)
	}

	var me usersMe
	if err := resp.ParseJSON(&me); err != nil {
		return types.Account{}, fmt.Errorf("%w: %v", publish.ErrRejected, err)
	}
	acct := types.Account{
		ID:     me.Data.ID,
		Name:   me.Data.Name,
		Handle: me.Data.Username,
	}
	if acct.ID == "" {
		return types.Account{}, fmt.Errorf("%w: no user in response", publish.ErrRejected)
	}

	p.mu.Lock()
	p.handle = acct.Handle
	p.mu.Unlock()
	return acct, nil
}

func (p *Publisher) UploadMedia(ctx context.Context, name string, data []byte) (string, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("media", name)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	req := api.NewRequest(http.MethodPost, p.uploadURL).
		WithContext(ctx).
		WithRawBody(&body, w.FormDataContentType())
	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to upload media: %w", err)
	}

	id := gjson.GetBytes(resp.Body, "media_id_string").String()
	if id == "" {
		return "", fmt.Errorf("%w: no media_id_string in upload response", publish.ErrRejected)
	}
	return id, nil
}

type tweetMedia struct {
	MediaIDs []string `json:"media_ids"`
}

type tweetRequest struct {
	Text  string      `json:"text"`
	Media *tweetMedia `json:"media,omitempty"`
}

func (p *Publisher) Post(ctx context.Context, text, mediaID string) (types.PostResult, error) {
	body := tweetRequest{Text: text}
	if mediaID != "" {
		body.Media = &tweetMedia{MediaIDs: []string{mediaID}}
	}

	resp, err := p.client.POST(ctx, "/2/tweets", body)
	if err != nil {
		return types.PostResult{}, fmt.Errorf("failed to create post: %w", err)
	}

	id := gjson.GetBytes(resp.Body, "data.id").String()
	if id == "" {
		return types.PostResult{}, fmt.Errorf("%w: %s", publish.ErrRejected, resp.String())
	}

	p.mu.Lock()
	handle := p.handle
	p.mu.Unlock()

	return types.PostResult{
		Platform: publish.PlatformTwitter,
		ID:       id,
		URL:      Permalink(handle, id),
		TextOnly: mediaID == "",
	}, nil
}

// Permalink returns the public URL of a post. Without a handle the handle-less form is used.
func Permalink(handle, id string) string {
	if handle == "" {
		return permalinkBase + "/i/web/status/" + id
	}
	return permalinkBase + "/" + handle + "/status/" + id
}
