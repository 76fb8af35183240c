package variant

import "strings"

// knownColors is the closed fallback vocabulary used to decide whether an
// extracted style is a color when the product has no gender axis. It is data,
// not logic: extending it never touches the matching algorithm.
var knownColors = map[string]struct{}{
	"black":      {},
	"white":      {},
	"gray":       {},
	"blue":       {},
	"red":        {},
	"green":      {},
	"yellow":     {},
	"pink":       {},
	"purple":     {},
	"orange":     {},
	"brown":      {},
	"beige":      {},
	"navy":       {},
	"khaki":      {},
	"ivory":      {},
	"maroon":     {},
	"teal":       {},
	"gold":       {},
	"silver":     {},
	"rose":       {},
	"burgundy":   {},
	"cream":      {},
	"wine":       {},
	"coffee":     {},
	"apricot":    {},
	"champagne":  {},
	"multicolor": {},
}

// IsKnownColor reports whether any word of the style names a known color.
// Multi-word styles like "Deep Rose Black" pass on the strength of a single
// recognized word; "grey" counts via normalization.
func IsKnownColor(style string) bool {
	for _, w := range strings.Fields(NormalizeStyle(style)) {
		if _, ok := knownColors[w]; ok {
			return true
		}
	}
	return false
}
