package compose

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWeight(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{"ascii", "abc", 3},
		{"latin", "café", 4},
		{"decomposed accent normalizes", "cafe\u0301", 4},
		{"emoji", "🎉", 2},
		{"emoji with variation selector", "☀️", 2},
		{"general punctuation", "a\u2014b", 3},
		{"cjk", "日本", 4},
		{"empty", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Weight(tt.in))
		})
	}
}

func TestTruncate(t *testing.T) {
	t.Run("fitting text is unchanged", func(t *testing.T) {
		assert.Equal(t, "hello", Truncate("hello", 5))
	})

	t.Run("cuts and appends ellipsis", func(t *testing.T) {
		got := Truncate("abcdefghij", 8)
		assert.Equal(t, "abcde...", got)
		assert.Equal(t, 8, Weight(got))
	})

	t.Run("trailing whitespace is dropped before ellipsis", func(t *testing.T) {
		assert.Equal(t, "ab...", Truncate("ab   cdefgh", 8))
	})

	t.Run("never splits a wide rune over the limit", func(t *testing.T) {
		got := Truncate(strings.Repeat("🎉", 10), 8)
		assert.Equal(t, "🎉🎉...", got)
		assert.LessOrEqual(t, Weight(got), 8)
	})

	t.Run("limit below ellipsis", func(t *testing.T) {
		assert.Equal(t, "", Truncate("abcdef", 2))
	})

	t.Run("never exceeds limit", func(t *testing.T) {
		s := strings.Repeat("a🎉 é\n", 100)
		for limit := 3; limit < 200; limit++ {
			assert.LessOrEqual(t, Weight(Truncate(s, limit)), limit, "limit %d", limit)
		}
	})
}

func TestFits(t *testing.T) {
	assert.True(t, Fits(strings.Repeat("a", 280), DefaultMaxLength))
	assert.False(t, Fits(strings.Repeat("a", 281), DefaultMaxLength))
	assert.False(t, Fits(strings.Repeat("🎉", 141), DefaultMaxLength))
}
