// Package compose turns a progress record into post text and a chart image.
//
// Text is assembled from fixed candidate pools indexed by fields of the record, so the
// same date always yields the same post unless a remote aside was fetched. The remote
// fetch is bounded by a timeout and every failure falls back to a local pool.
package compose

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"progress-pulse/internal/interfaces"
	"progress-pulse/internal/logger"
	"progress-pulse/internal/types"

	"golang.org/x/text/unicode/norm"
)

const CampaignTag = "#YearProgress"

// Config tunes text composition.
type Config struct {
	MaxLength      int           // Post budget in weighted units
	QuoteMaxLength int           // Longest remote quote accepted, in characters
	JokeMaxLength  int           // Longest remote joke accepted, in characters
	FetchTimeout   time.Duration // Bound on a single remote snippet fetch
}

// DefaultConfig returns the defaults of the observed deployment.
func DefaultConfig() Config {
	return Config{
		MaxLength:      DefaultMaxLength,
		QuoteMaxLength: 120,
		JokeMaxLength:  120,
		FetchTimeout:   5 * time.Second,
	}
}

var errSnippetRejected = errors.New("snippet rejected")

// Composer builds ComposedContent. The snippet source and renderer may be nil, in which
// case asides always come from the local pools and no chart is attached.
type Composer struct {
	cfg      Config
	source   interfaces.SnippetSource
	renderer interfaces.ChartRenderer
}

var _ interfaces.Composer = (*Composer)(nil)

func New(cfg Config, source interfaces.SnippetSource, renderer interfaces.ChartRenderer) *Composer {
	def := DefaultConfig()
	if cfg.MaxLength <= 0 {
		cfg.MaxLength = def.MaxLength
	}
	if cfg.QuoteMaxLength <= 0 {
		cfg.QuoteMaxLength = def.QuoteMaxLength
	}
	if cfg.JokeMaxLength <= 0 {
		cfg.JokeMaxLength = def.JokeMaxLength
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = def.FetchTimeout
	}
	return &Composer{cfg: cfg, source: source, renderer: renderer}
}

// Compose renders the chart and the post text for rec.
func (c *Composer) Compose(ctx context.Context, rec types.ProgressRecord) (types.ComposedContent, error) {
	content := c.ComposeText(ctx, rec)
	if c.renderer == nil {
		return content, nil
	}

	img, err := c.renderer.Render(rec)
	if err != nil {
		return content, fmt.Errorf("failed to render chart: %w", err)
	}
	content.ChartImage = img
	return content, nil
}

// ComposeText builds the post text only. It never fails.
func (c *Composer) ComposeText(ctx context.Context, rec types.ProgressRecord) types.ComposedContent {
	kind := AsideFor(rec.DaysPassed)
	content := types.ComposedContent{Aside: kind}

	aside := ""
	if kind != types.AsideNone {
		snip := c.fetchAside(ctx, kind, rec.DaysPassed)
		aside = FormatAside(snip)
		content.AsideRemote = snip.Remote
	}

	text := render(rec, aside)
	if !Fits(text, c.cfg.MaxLength) && content.AsideRemote {
		logger.Debug(ctx, "Remote aside does not fit, using local aside", "kind", string(kind))
		text = render(rec, FormatAside(FallbackSnippet(kind, rec.DaysPassed)))
		content.AsideRemote = false
	}
	if !Fits(text, c.cfg.MaxLength) && aside != "" {
		text = render(rec, "")
		content.AsideDropped = true
	}
	if !Fits(text, c.cfg.MaxLength) {
		text = Truncate(text, c.cfg.MaxLength)
		content.Truncated = true
	}

	content.PostText = norm.NFC.String(text)
	content.TextWeight = Weight(content.PostText)
	return content
}

// AsideFor picks the aside for a day: a joke every seventh day, otherwise a quote every third.
func AsideFor(daysPassed int) types.AsideKind {
	switch {
	case daysPassed > 0 && daysPassed%7 == 0:
		return types.AsideJoke
	case daysPassed%3 == 0:
		return types.AsideQuote
	default:
		return types.AsideNone
	}
}

// FallbackSnippet returns the local pool entry for kind on a given day.
func FallbackSnippet(kind types.AsideKind, daysPassed int) types.Snippet {
	pool := fallbackQuotes
	if kind == types.AsideJoke {
		pool = fallbackJokes
	}
	return pool[index(daysPassed, len(pool))]
}

// FormatAside renders a snippet as a single post line.
func FormatAside(s types.Snippet) string {
	if s.Kind == types.AsideJoke {
		return "😄 " + s.Text
	}
	line := `💬 "` + s.Text + `"`
	if s.Attribution != "" {
		line += " ~ " + s.Attribution
	}
	return line
}

// SummaryLine is the numeric line of a post.
func SummaryLine(rec types.ProgressRecord) string {
	return fmt.Sprintf("📊 %s%% done · %d days left · %d weeks to go",
		strconv.FormatFloat(rec.PercentComplete, 'f', 1, 64), rec.DaysRemaining, rec.WeeksRemaining)
}

// Hashtags returns the hashtag line for rec.
func Hashtags(rec types.ProgressRecord) string {
	set := hashtagSets[index(rec.DaysPassed, len(hashtagSets))]
	return CampaignTag + " #" + strconv.Itoa(rec.Year) + " " + set
}

func render(rec types.ProgressRecord, aside string) string {
	lines := []string{
		hooks[int(rec.Today.Weekday())],
		SummaryLine(rec),
		insights[index(rec.DaysPassed, len(insights))],
	}
	if aside != "" {
		lines = append(lines, aside)
	}
	lines = append(lines,
		prompts[index(rec.DaysRemaining, len(prompts))],
		Hashtags(rec),
	)
	return strings.Join(lines, "\n\n")
}

type fetchResult struct {
	snip types.Snippet
	err  error
}

func (c *Composer) fetchAside(ctx context.Context, kind types.AsideKind, daysPassed int) types.Snippet {
	fallback := FallbackSnippet(kind, daysPassed)
	if c.source == nil {
		return fallback
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.FetchTimeout)
	defer cancel()

	maxLen := c.cfg.QuoteMaxLength
	if kind == types.AsideJoke {
		maxLen = c.cfg.JokeMaxLength
	}

	// Buffered so a source that ignores ctx can still finish and exit.
	done := make(chan fetchResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fetchResult{err: fmt.Errorf("snippet source panicked: %v", r)}
			}
		}()
		var res fetchResult
		if kind == types.AsideJoke {
			res.snip, res.err = c.source.Joke(ctx)
		} else {
			res.snip, res.err = c.source.Quote(ctx)
		}
		done <- res
	}()

	var res fetchResult
	select {
	case res = <-done:
	case <-ctx.Done():
		res.err = ctx.Err()
	}

	if res.err == nil {
		res.snip, res.err = accept(res.snip, maxLen)
	}
	if res.err != nil {
		logger.Debug(ctx, "Using local aside", "kind", string(kind), "reason", res.err.Error())
		return fallback
	}

	res.snip.Kind = kind
	res.snip.Remote = true
	return res.snip
}

func accept(s types.Snippet, maxLen int) (types.Snippet, error) {
	s.Text = strings.Join(strings.Fields(s.Text), " ")
	s.Attribution = strings.Join(strings.Fields(s.Attribution), " ")
	if s.Text == "" {
		return s, fmt.Errorf("%w: empty text", errSnippetRejected)
	}
	// The attribution shares the length bound with the text.
	if n := utf8.RuneCountInString(s.Text) + utf8.RuneCountInString(s.Attribution); n > maxLen {
		return s, fmt.Errorf("%w: %d characters exceeds %d", errSnippetRejected, n, maxLen)
	}
	return s, nil
}

func index(n, size int) int {
	i := n % size
	if i < 0 {
		i += size
	}
	return i
}
