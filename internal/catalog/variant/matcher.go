package variant

import (
	"strings"

	"github.com/evermall/storefront/internal/catalog/domain"
)

const (
	scoreExactStyle = 10
	scoreExactSize  = 10
	scoreBothBonus  = 5

	scorePartialRawKey   = 8
	scorePartialDisplay  = 5
	scorePartialCombined = 3
	scorePartialSize     = 5

	exactThreshold     = 15
	styleOnlyThreshold = 20
)

// Resolve maps a facet selection onto the single best-matching variant, or
// nil when nothing clears the match rules. A product with exactly one active
// variant resolves to it whatever the selection holds. Resolve is pure: the
// same selection and variant list always produce the same answer.
func Resolve(sel Selection, idx AttributeSet, variants []domain.Variant) *domain.Variant {
	active := make([]domain.Variant, 0, len(variants))
	for _, v := range variants {
		if v.Active {
			active = append(active, v)
		}
	}

	if len(active) == 1 {
		v := active[0]
		return &v
	}
	if len(active) == 0 || sel.Empty() {
		return nil
	}

	switch {
	case sel.Style != "" && sel.Size != "":
		if v := exactPass(sel, idx, active); v != nil {
			return v
		}
		return fallbackPass(sel, idx, active)
	case sel.Style != "":
		return styleOnlyPass(sel, idx, active)
	default:
		return sizeOnlyPass(sel, idx, active)
	}
}

// exactPass accepts the first variant whose extracted style and size both
// match the selection exactly.
func exactPass(sel Selection, idx AttributeSet, active []domain.Variant) *domain.Variant {
	wantStyle := NormalizeStyle(sel.Style)
	for _, v := range active {
		style, size := Extract(v, idx.HasGender)
		score := 0
		if style != "" && NormalizeStyle(style) == wantStyle {
			score += scoreExactStyle
		}
		if size != "" && strings.EqualFold(size, sel.Size) {
			score += scoreExactSize
		}
		if score == scoreExactStyle+scoreExactSize {
			score += scoreBothBonus
		}
		if score >= exactThreshold {
			v := v
			return &v
		}
	}
	return nil
}

// fallbackPass is the best-effort search run when no variant matched both
// facets exactly: partial credit for substring containment, ranked by score,
// style matches preferred over size-only matches on ties.
func fallbackPass(sel Selection, idx AttributeSet, active []domain.Variant) *domain.Variant {
	var (
		best        *domain.Variant
		bestScore   int
		bestHasStyl bool
	)
	for _, v := range active {
		score, styleHit := partialStyleScore(sel.Style, v)
		sizeHit := false
		if _, size := Extract(v, idx.HasGender); size != "" && strings.EqualFold(size, sel.Size) {
			score += scoreExactSize
			sizeHit = true
		} else if containsFold(sourceKey(v), sel.Size) {
			score += scorePartialSize
			sizeHit = true
		}
		if !styleHit && !sizeHit {
			continue
		}
		if score > bestScore || (score == bestScore && styleHit && !bestHasStyl) {
			vv := v
			best, bestScore, bestHasStyl = &vv, score, styleHit
		}
	}
	return best
}

// partialStyleScore gives the strongest single containment credit for the
// selected style inside the variant's raw key, display name, or combined
// search text.
func partialStyleScore(selStyle string, v domain.Variant) (int, bool) {
	if selStyle == "" {
		return 0, false
	}
	switch {
	case containsFold(v.RawKey, selStyle):
		return scorePartialRawKey, true
	case containsFold(v.DisplayName, selStyle):
		return scorePartialDisplay, true
	case containsFold(v.RawKey+" "+v.DisplayName, selStyle):
		return scorePartialCombined, true
	}
	return 0, false
}

// styleOnlyPass handles products without a size facet: an exact style match
// backed by containment credit counts as a full-identity match; failing that,
// the first variant with any style evidence wins.
func styleOnlyPass(sel Selection, idx AttributeSet, active []domain.Variant) *domain.Variant {
	var first *domain.Variant
	wantStyle := NormalizeStyle(sel.Style)
	for _, v := range active {
		score := 0
		if style, _ := Extract(v, idx.HasGender); style != "" && NormalizeStyle(style) == wantStyle {
			score += scoreExactStyle
		}
		if containsFold(v.RawKey, sel.Style) {
			score += scorePartialRawKey
		}
		if containsFold(v.DisplayName, sel.Style) {
			score += scorePartialDisplay
		}
		if containsFold(v.RawKey+" "+v.DisplayName, sel.Style) {
			score += scorePartialCombined
		}
		if score >= styleOnlyThreshold {
			v := v
			return &v
		}
		if score > 0 && first == nil {
			vv := v
			first = &vv
		}
	}
	return first
}

func sizeOnlyPass(sel Selection, idx AttributeSet, active []domain.Variant) *domain.Variant {
	for _, v := range active {
		if _, size := Extract(v, idx.HasGender); size != "" && strings.EqualFold(size, sel.Size) {
			v := v
			return &v
		}
	}
	return nil
}

func containsFold(haystack, needle string) bool {
	if haystack == "" || needle == "" {
		return false
	}
	return strings.Contains(NormalizeStyle(haystack), NormalizeStyle(needle))
}
