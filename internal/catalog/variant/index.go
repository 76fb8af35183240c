package variant

import (
	"sort"
	"strconv"
	"strings"

	"github.com/evermall/storefront/internal/catalog/domain"
)

// StyleOption is one entry of the style/color facet: a deduplicated style
// with the first-seen image and the number of variants carrying it.
type StyleOption struct {
	Key          string
	Label        string
	Image        string
	VariantCount int
}

// AttributeSet is the facet index built once per product from its variant
// list. It is recomputed wholesale whenever the variants change and never
// mutated incrementally.
type AttributeSet struct {
	HasGender    bool
	HasSizeFacet bool
	Styles       []StyleOption
	Sizes        []string
}

// Selection is the user's transient facet choice for one product view.
type Selection struct {
	Style string
	Size  string
}

func (s Selection) Empty() bool { return s.Style == "" && s.Size == "" }

// BuildIndex derives the facets for a product's variants. Inactive variants
// do not contribute. When no variant carries a real size (numeric 30..50 or
// an apparel letter size) the product is faceted by whole variants instead:
// each distinct key becomes its own style option and no size facet exists.
func BuildIndex(variants []domain.Variant) AttributeSet {
	idx := AttributeSet{}

	active := make([]domain.Variant, 0, len(variants))
	for _, v := range variants {
		if v.Active {
			active = append(active, v)
		}
	}

	for _, v := range active {
		if genderTokenRe.MatchString(sourceKey(v)) {
			idx.HasGender = true
			break
		}
	}

	for _, v := range active {
		if _, size := Extract(v, idx.HasGender); isRealSize(size) {
			idx.HasSizeFacet = true
			break
		}
	}

	if !idx.HasSizeFacet {
		idx.Styles = wholeVariantStyles(active)
		return idx
	}

	seenStyles := map[string]int{}
	seenSizes := map[string]struct{}{}
	for _, v := range active {
		style, size := Extract(v, idx.HasGender)
		if style != "" {
			key := NormalizeStyle(style)
			if at, ok := seenStyles[key]; ok {
				idx.Styles[at].VariantCount++
			} else {
				seenStyles[key] = len(idx.Styles)
				idx.Styles = append(idx.Styles, StyleOption{
					Key:          key,
					Label:        style,
					Image:        v.Image,
					VariantCount: 1,
				})
			}
		}
		if size != "" {
			if _, ok := seenSizes[strings.ToUpper(size)]; !ok {
				seenSizes[strings.ToUpper(size)] = struct{}{}
				idx.Sizes = append(idx.Sizes, size)
			}
		}
	}
	sortSizes(idx.Sizes)
	return idx
}

// wholeVariantStyles turns every distinct variant into its own style option;
// the fallback for product types without standardized sizing.
func wholeVariantStyles(active []domain.Variant) []StyleOption {
	var styles []StyleOption
	seen := map[string]int{}
	for _, v := range active {
		label := v.DisplayName
		if label == "" {
			label = cleanStyle(sourceKey(v))
		}
		if label == "" {
			continue
		}
		key := NormalizeStyle(label)
		if at, ok := seen[key]; ok {
			styles[at].VariantCount++
			continue
		}
		seen[key] = len(styles)
		styles = append(styles, StyleOption{Key: key, Label: label, Image: v.Image, VariantCount: 1})
	}
	return styles
}

func isRealSize(size string) bool {
	if size == "" {
		return false
	}
	if n, err := strconv.Atoi(size); err == nil {
		return n >= 30 && n <= 50
	}
	for _, ls := range letterSizes {
		if strings.EqualFold(size, ls) {
			return true
		}
	}
	return false
}

// sortSizes orders letter sizes by their canonical rank (XS..6XL), then
// numeric sizes ascending, then anything unranked in first-seen order.
func sortSizes(sizes []string) {
	sort.SliceStable(sizes, func(i, j int) bool {
		return sizeRank(sizes[i]) < sizeRank(sizes[j])
	})
}

func sizeRank(size string) int {
	for i, ls := range letterSizes {
		if strings.EqualFold(size, ls) {
			return i
		}
	}
	if n, err := strconv.Atoi(size); err == nil {
		return 100 + n
	}
	return 1 << 20
}
