package compose

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

const (
	// DefaultMaxLength is the post budget of the observed deployment.
	DefaultMaxLength = 280

	ellipsis       = "..."
	ellipsisWeight = 3
)

// lightRanges weigh one unit each; everything else weighs two, matching how X counts posts.
var lightRanges = [][2]rune{
	{0x0000, 0x10FF},
	{0x2000, 0x200D},
	{0x2010, 0x201F},
	{0x2032, 0x2037},
}

func runeWeight(r rune) int {
	if r >= 0xFE00 && r <= 0xFE0F {
		return 0
	}
	for _, rg := range lightRanges {
		if r >= rg[0] && r <= rg[1] {
			return 1
		}
	}
	return 2
}

// Weight returns the budget units s uses once NFC-normalized.
func Weight(s string) int {
	total := 0
	for _, r := range norm.NFC.String(s) {
		total += runeWeight(r)
	}
	return total
}

// Fits reports whether s fits in limit units.
func Fits(s string, limit int) bool {
	return Weight(s) <= limit
}

// Truncate cuts s so that it fits in limit units, reserving room for a trailing ellipsis.
// Strings that already fit are returned NFC-normalized but otherwise unchanged.
func Truncate(s string, limit int) string {
	s = norm.NFC.String(s)
	if Weight(s) <= limit {
		return s
	}
	if limit < ellipsisWeight {
		return ""
	}

	budget := limit - ellipsisWeight
	var b strings.Builder
	used := 0
	for _, r := range s {
		w := runeWeight(r)
		if used+w > budget {
			break
		}
		b.WriteRune(r)
		used += w
	}
	return strings.TrimRight(b.String(), " \n") + ellipsis
}
