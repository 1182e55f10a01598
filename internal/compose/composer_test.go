package compose

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"progress-pulse/internal/progress"
	"progress-pulse/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	quote types.Snippet
	joke  types.Snippet
	err   error
	block chan struct{}
	panic bool
	calls atomic.Int32
}

func (f *fakeSource) Quote(ctx context.Context) (types.Snippet, error) {
	return f.get(f.quote)
}

func (f *fakeSource) Joke(ctx context.Context) (types.Snippet, error) {
	return f.get(f.joke)
}

func (f *fakeSource) get(s types.Snippet) (types.Snippet, error) {
	f.calls.Add(1)
	if f.block != nil {
		<-f.block
	}
	if f.panic {
		panic("boom")
	}
	return s, f.err
}

type fakeRenderer struct {
	err error
}

func (r fakeRenderer) Render(rec types.ProgressRecord) ([]byte, error) {
	return []byte("png"), r.err
}

// recordOn returns the record whose DaysPassed equals days in 2025.
func recordOn(days int) types.ProgressRecord {
	return progress.Calculate(time.Date(2025, 1, 1+days, 9, 0, 0, 0, time.UTC), false)
}

func TestAsideFor(t *testing.T) {
	tests := []struct {
		days int
		want types.AsideKind
	}{
		{0, types.AsideQuote},
		{1, types.AsideNone},
		{3, types.AsideQuote},
		{6, types.AsideQuote},
		{7, types.AsideJoke},
		{14, types.AsideJoke},
		{21, types.AsideJoke},
		{42, types.AsideJoke},
		{9, types.AsideQuote},
		{10, types.AsideNone},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AsideFor(tt.days), "days %d", tt.days)
	}
}

func TestComposeTextFallbackAsides(t *testing.T) {
	c := New(DefaultConfig(), nil, nil)
	ctx := context.Background()

	t.Run("day seven is a joke", func(t *testing.T) {
		rec := recordOn(7)
		require.Equal(t, 7, rec.DaysPassed)
		got := c.ComposeText(ctx, rec)
		assert.Equal(t, types.AsideJoke, got.Aside)
		assert.False(t, got.AsideRemote)
		assert.False(t, got.AsideDropped)
		assert.Contains(t, got.PostText, FormatAside(FallbackSnippet(types.AsideJoke, 7)))
	})

	t.Run("day three is a quote", func(t *testing.T) {
		got := c.ComposeText(ctx, recordOn(3))
		assert.Equal(t, types.AsideQuote, got.Aside)
		assert.Contains(t, got.PostText, FormatAside(FallbackSnippet(types.AsideQuote, 3)))
		assert.Contains(t, got.PostText, " ~ ")
	})

	t.Run("day zero is a quote", func(t *testing.T) {
		got := c.ComposeText(ctx, recordOn(0))
		assert.Equal(t, types.AsideQuote, got.Aside)
		assert.Contains(t, got.PostText, FormatAside(FallbackSnippet(types.AsideQuote, 0)))
	})

	t.Run("day one has no aside", func(t *testing.T) {
		got := c.ComposeText(ctx, recordOn(1))
		assert.Equal(t, types.AsideNone, got.Aside)
		assert.NotContains(t, got.PostText, "💬")
		assert.NotContains(t, got.PostText, "😄")
	})
}

func TestComposeTextLayout(t *testing.T) {
	rec := recordOn(3)
	got := New(DefaultConfig(), nil, nil).ComposeText(context.Background(), rec)

	parts := strings.Split(got.PostText, "\n\n")
	require.Len(t, parts, 6)
	assert.Equal(t, hooks[rec.Today.Weekday()], parts[0])
	assert.Equal(t, SummaryLine(rec), parts[1])
	assert.Equal(t, insights[3], parts[2])
	assert.True(t, strings.HasPrefix(parts[3], "💬"))
	assert.Equal(t, prompts[rec.DaysRemaining%len(prompts)], parts[4])
	assert.Equal(t, Hashtags(rec), parts[5])
	assert.True(t, strings.HasPrefix(parts[5], "#YearProgress #2025 "))
	assert.Equal(t, Weight(got.PostText), got.TextWeight)
}

func TestComposeTextRemoteAside(t *testing.T) {
	src := &fakeSource{
		quote: types.Snippet{Text: "  Stay   hungry.\n", Attribution: "Someone"},
		joke:  types.Snippet{Text: "A remote joke."},
	}
	c := New(DefaultConfig(), src, nil)

	got := c.ComposeText(context.Background(), recordOn(3))
	assert.True(t, got.AsideRemote)
	assert.Contains(t, got.PostText, `💬 "Stay hungry." ~ Someone`)

	got = c.ComposeText(context.Background(), recordOn(7))
	assert.True(t, got.AsideRemote)
	assert.Contains(t, got.PostText, "😄 A remote joke.")

	got = c.ComposeText(context.Background(), recordOn(1))
	assert.Equal(t, types.AsideNone, got.Aside)
	assert.Equal(t, int32(2), src.calls.Load(), "no fetch on days without an aside")
}

func TestComposeTextRemoteFailuresFallBack(t *testing.T) {
	tests := []struct {
		name string
		src  *fakeSource
	}{
		{"error", &fakeSource{err: errors.New("connection refused")}},
		{"empty text", &fakeSource{quote: types.Snippet{Text: "   "}}},
		{"over length", &fakeSource{quote: types.Snippet{Text: strings.Repeat("x", 121)}}},
		{"panic", &fakeSource{panic: true}},
		{"long attribution", &fakeSource{quote: types.Snippet{Text: "Short.", Attribution: strings.Repeat("A", 300)}}},
		{"text plus attribution over length", &fakeSource{quote: types.Snippet{Text: strings.Repeat("x", 100), Attribution: strings.Repeat("A", 21)}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(DefaultConfig(), tt.src, nil).ComposeText(context.Background(), recordOn(3))
			assert.Equal(t, types.AsideQuote, got.Aside)
			assert.False(t, got.AsideRemote)
			assert.Contains(t, got.PostText, FormatAside(FallbackSnippet(types.AsideQuote, 3)))
		})
	}
}

func TestComposeTextRemoteAsideTooLongForPost(t *testing.T) {
	src := &fakeSource{
		quote: types.Snippet{Text: strings.Repeat("w", 120)},
		joke:  types.Snippet{Text: strings.Repeat("w", 120)},
	}
	c := New(DefaultConfig(), src, nil)

	day := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	asides := 0
	for ; day.Year() == 2025; day = day.AddDate(0, 0, 1) {
		rec := progress.Calculate(day, false)
		got := c.ComposeText(context.Background(), rec)
		if got.Aside == types.AsideNone {
			continue
		}
		asides++
		require.False(t, got.AsideDropped, day.Format("2006-01-02"))
		require.LessOrEqual(t, got.TextWeight, DefaultMaxLength)
		if got.AsideRemote {
			require.Contains(t, got.PostText, strings.Repeat("w", 120))
		} else {
			require.Contains(t, got.PostText, FormatAside(FallbackSnippet(got.Aside, rec.DaysPassed)))
		}
	}
	assert.Greater(t, asides, 100)
}

func TestComposeTextTimeout(t *testing.T) {
	src := &fakeSource{block: make(chan struct{})}
	defer close(src.block)

	cfg := DefaultConfig()
	cfg.FetchTimeout = 20 * time.Millisecond
	c := New(cfg, src, nil)

	start := time.Now()
	got := c.ComposeText(context.Background(), recordOn(7))
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, types.AsideJoke, got.Aside)
	assert.False(t, got.AsideRemote)
	assert.Contains(t, got.PostText, FormatAside(FallbackSnippet(types.AsideJoke, 7)))
}

func TestComposeTextAlwaysWithinBudget(t *testing.T) {
	sources := map[string]*fakeSource{
		"fallback": nil,
		"long ascii": {
			quote: types.Snippet{Text: strings.Repeat("w", 80), Attribution: strings.Repeat("A", 40)},
			joke:  types.Snippet{Text: strings.Repeat("w", 120)},
		},
		"long emoji": {
			quote: types.Snippet{Text: strings.Repeat("🎉", 120)},
			joke:  types.Snippet{Text: strings.Repeat("日", 120)},
		},
	}

	for name, src := range sources {
		t.Run(name, func(t *testing.T) {
			var c *Composer
			if src == nil {
				c = New(DefaultConfig(), nil, nil)
			} else {
				c = New(DefaultConfig(), src, nil)
			}
			for _, year := range []int{2024, 2025} {
				day := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
				for ; day.Year() == year; day = day.AddDate(0, 0, 1) {
					for _, include := range []bool{false, true} {
						got := c.ComposeText(context.Background(), progress.Calculate(day, include))
						require.LessOrEqual(t, Weight(got.PostText), DefaultMaxLength, "%s include=%v", day.Format("2006-01-02"), include)
						if src == nil {
							require.False(t, got.AsideDropped, "fallback asides always fit")
							require.False(t, got.Truncated)
						}
					}
				}
			}
		})
	}
}

func TestComposeTextDegradation(t *testing.T) {
	rec := recordOn(3)

	t.Run("drops the aside first", func(t *testing.T) {
		full := New(DefaultConfig(), nil, nil).ComposeText(context.Background(), rec)
		without := Weight(render(rec, ""))

		cfg := DefaultConfig()
		cfg.MaxLength = without
		got := New(cfg, nil, nil).ComposeText(context.Background(), rec)
		assert.True(t, got.AsideDropped)
		assert.False(t, got.Truncated)
		assert.NotContains(t, got.PostText, "💬")
		assert.Less(t, got.TextWeight, full.TextWeight)
	})

	t.Run("then truncates", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.MaxLength = 60
		got := New(cfg, nil, nil).ComposeText(context.Background(), rec)
		assert.True(t, got.AsideDropped)
		assert.True(t, got.Truncated)
		assert.True(t, strings.HasSuffix(got.PostText, "..."))
		assert.LessOrEqual(t, got.TextWeight, 60)
	})
}

func TestComposeTextDeterministic(t *testing.T) {
	c := New(DefaultConfig(), nil, nil)
	for _, days := range []int{0, 3, 7, 100, 363} {
		a := c.ComposeText(context.Background(), recordOn(days))
		b := c.ComposeText(context.Background(), recordOn(days))
		assert.Equal(t, a, b)
	}
}

func TestCompose(t *testing.T) {
	rec := recordOn(3)

	got, err := New(DefaultConfig(), nil, fakeRenderer{}).Compose(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), got.ChartImage)
	assert.NotEmpty(t, got.PostText)

	_, err = New(DefaultConfig(), nil, fakeRenderer{err: errors.New("no canvas")}).Compose(context.Background(), rec)
	assert.ErrorContains(t, err, "failed to render chart")
}
