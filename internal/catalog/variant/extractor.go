package variant

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/evermall/storefront/internal/catalog/domain"
)

// Upstream variant keys are free-form text authored by suppliers, e.g.
// "Deep Rose Black Women-36", "Purple-S" or "Beige Maroon Women-36". The
// extractor splits one of those keys into a (style, size) pair without ever
// failing: absent or unparseable data yields empty strings and the variant is
// treated as unattributed.

var (
	genderTokenRe = regexp.MustCompile(`(?i)(^|[\s-])(men|women|man|woman)($|[\s-])`)

	// numeric apparel/shoe sizes: a standalone 30..50 token
	trailingNumSizeRe   = regexp.MustCompile(`(^|[\s-])(3[0-9]|4[0-9]|50)$`)
	standaloneNumSizeRe = regexp.MustCompile(`(^|[\s-])(3[0-9]|4[0-9]|50)($|[\s-])`)

	alnumTokenRe = regexp.MustCompile(`^[A-Za-z0-9]+$`)
)

var letterSizes = []string{"XS", "S", "M", "L", "XL", "XXL", "XXXL", "2XL", "3XL", "4XL", "5XL", "6XL"}

// rawKeyRecord is the occasional structured form of a raw key: a JSON object
// with a "key" field instead of the bare string.
type rawKeyRecord struct {
	Key string `json:"key"`
}

// sourceKey picks the authoritative attribute text for a variant: the "key"
// field of a JSON-encoded raw key, the raw key itself, or the display name.
func sourceKey(v domain.Variant) string {
	raw := strings.TrimSpace(v.RawKey)
	if raw == "" {
		return strings.TrimSpace(v.DisplayName)
	}
	if strings.HasPrefix(raw, "{") {
		var rec rawKeyRecord
		if err := json.Unmarshal([]byte(raw), &rec); err == nil && strings.TrimSpace(rec.Key) != "" {
			return strings.TrimSpace(rec.Key)
		}
	}
	return raw
}

// Extract parses one variant's key into a normalized (style, size) pair.
// Either value may be empty. The returned style never contains a standalone
// 30..50 token, whatever shape the input had.
func Extract(v domain.Variant, hasGender bool) (style, size string) {
	key := sourceKey(v)
	if key == "" {
		return "", ""
	}

	rest := key
	if loc := trailingNumSizeRe.FindStringIndex(key); loc != nil {
		tok := key[loc[0]:loc[1]]
		size = strings.TrimLeft(tok, "- ")
		rest = key[:loc[0]]
	} else if size = trailingLetterSize(key); size != "" {
		rest = strings.TrimSpace(strings.TrimSuffix(key[:len(key)-len(size)], "-"))
	} else if i := strings.LastIndex(key, "-"); i >= 0 {
		// generic trailing token after the last dash separator
		tail := key[i+1:]
		if alnumTokenRe.MatchString(tail) && !isGenderToken(tail) {
			size = tail
			rest = key[:i]
		}
	}

	style = cleanStyle(rest)
	if hasGender {
		style = anchorOnGender(style)
	} else if style != "" && !IsKnownColor(style) {
		// no gender axis: only recognized colors form a facet entry
		style = ""
	}
	return style, size
}

// trailingLetterSize reports a standard apparel letter size (XS..6XL) sitting
// after the last separator, or "".
func trailingLetterSize(key string) string {
	i := strings.LastIndexAny(key, "- ")
	tail := key
	if i >= 0 {
		tail = key[i+1:]
	}
	for _, ls := range letterSizes {
		if strings.EqualFold(tail, ls) {
			return tail
		}
	}
	return ""
}

// stripSizeToken removes every standalone 30..50 token from s. It is
// idempotent: applying it to its own output changes nothing, which lets each
// extraction exit point apply it without coordinating with the others.
// Upstream keys are occasionally double-encoded and carry a size in the
// middle of the style text, so the guard runs even after the trailing-token
// pass already consumed a size.
func stripSizeToken(s string) string {
	for {
		out := standaloneNumSizeRe.ReplaceAllString(s, " ")
		if out == s {
			return s
		}
		s = out
	}
}

func cleanStyle(s string) string {
	s = stripSizeToken(s)
	s = strings.Trim(s, "- ")
	return strings.Join(strings.Fields(s), " ")
}

// anchorOnGender truncates a style at the first gender token, keeping the
// token itself and discarding whatever trails it (SKU noise, stray sizes).
func anchorOnGender(style string) string {
	loc := genderTokenRe.FindStringSubmatchIndex(style)
	if loc == nil {
		return style
	}
	// end of the captured gender word
	return cleanStyle(style[:loc[5]])
}

func isGenderToken(tok string) bool {
	switch strings.ToLower(tok) {
	case "men", "women", "man", "woman":
		return true
	}
	return false
}

// NormalizeStyle lowercases, trims and folds the grey/gray spelling split so
// two styles differing only in case or that spelling compare equal.
func NormalizeStyle(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	fields := strings.Fields(s)
	for i, f := range fields {
		if f == "grey" {
			fields[i] = "gray"
		}
	}
	return strings.Join(fields, " ")
}
