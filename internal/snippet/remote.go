// Package snippet provides the short quotes and jokes used as post asides.
package snippet

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"progress-pulse/internal/api"
	"progress-pulse/internal/interfaces"
	"progress-pulse/internal/types"

	"github.com/tidwall/gjson"
)

var (
	// ErrDisabled is returned by sources that were switched off in configuration
	ErrDisabled = errors.New("remote content disabled")
	// ErrNoResult is returned when a response does not have the expected shape
	ErrNoResult = errors.New("no usable snippet in response")
)

// RemoteConfig points a Remote at its endpoints. Paths use gjson syntax.
type RemoteConfig struct {
	QuoteURL        string
	QuoteTextPath   string
	QuoteAuthorPath string
	JokeURL         string
	JokeTextPath    string
}

func DefaultRemoteConfig() RemoteConfig {
	return RemoteConfig{
		QuoteURL:        "https://zenquotes.io/api/random",
		QuoteTextPath:   "0.q",
		QuoteAuthorPath: "0.a",
		JokeURL:         "https://v2.jokeapi.dev/joke/Programming,Misc,Pun?safe-mode&type=single",
		JokeTextPath:    "joke",
	}
}

// Remote fetches snippets over HTTP. Each call makes exactly one request.
type Remote struct {
	client *api.Client
	cfg    RemoteConfig
}

var _ interfaces.SnippetSource = (*Remote)(nil)

func NewRemote(cfg RemoteConfig, client *api.Client) *Remote {
	def := DefaultRemoteConfig()
	if cfg.QuoteTextPath == "" {
		cfg.QuoteTextPath = def.QuoteTextPath
	}
	if cfg.QuoteAuthorPath == "" {
		cfg.QuoteAuthorPath = def.QuoteAuthorPath
	}
	if cfg.JokeTextPath == "" {
		cfg.JokeTextPath = def.JokeTextPath
	}
	if client == nil {
		client = api.NewClient()
	}
	return &Remote{client: client, cfg: cfg}
}

var acceptJSON = map[string]string{"Accept": "application/json"}

// zenquotes answers rate-limited callers with a quote attributed to itself.
const rateLimitedAuthor = "zenquotes.io"

func (r *Remote) Quote(ctx context.Context) (types.Snippet, error) {
	doc, err := r.fetch(ctx, r.cfg.QuoteURL)
	if err != nil {
		return types.Snippet{}, err
	}

	text := doc.Get(r.cfg.QuoteTextPath)
	if text.Type != gjson.String || strings.TrimSpace(text.Str) == "" {
		return types.Snippet{}, fmt.Errorf("%w: missing %s", ErrNoResult, r.cfg.QuoteTextPath)
	}
	author := doc.Get(r.cfg.QuoteAuthorPath)
	if author.Type == gjson.String && strings.EqualFold(author.Str, rateLimitedAuthor) {
		return types.Snippet{}, fmt.Errorf("%w: rate limited", ErrNoResult)
	}

	return types.Snippet{
		Kind:        types.AsideQuote,
		Text:        strings.TrimSpace(text.Str),
		Attribution: strings.TrimSpace(author.String()),
		Remote:      true,
	}, nil
}

func (r *Remote) Joke(ctx context.Context) (types.Snippet, error) {
	doc, err := r.fetch(ctx, r.cfg.JokeURL)
	if err != nil {
		return types.Snippet{}, err
	}
	if doc.Get("error").Bool() {
		return types.Snippet{}, fmt.Errorf("%w: %s", ErrNoResult, doc.Get("message").String())
	}

	text := ""
	if j := doc.Get(r.cfg.JokeTextPath); j.Type == gjson.String {
		text = j.Str
	} else if setup, delivery := doc.Get("setup"), doc.Get("delivery"); setup.Type == gjson.String && delivery.Type == gjson.String {
		text = setup.Str + " " + delivery.Str
	}
	if strings.TrimSpace(text) == "" {
		return types.Snippet{}, fmt.Errorf("%w: missing %s", ErrNoResult, r.cfg.JokeTextPath)
	}

	return types.Snippet{
		Kind:   types.AsideJoke,
		Text:   strings.TrimSpace(text),
		Remote: true,
	}, nil
}

func (r *Remote) fetch(ctx context.Context, url string) (gjson.Result, error) {
	if url == "" {
		return gjson.Result{}, ErrDisabled
	}
	resp, err := r.client.GET(ctx, url, acceptJSON)
	if err != nil {
		return gjson.Result{}, err
	}
	if !gjson.ValidBytes(resp.Body) {
		return gjson.Result{}, fmt.Errorf("%w: invalid JSON", ErrNoResult)
	}
	return gjson.ParseBytes(resp.Body), nil
}
