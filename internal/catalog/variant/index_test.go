package variant

import (
	"testing"

	"github.com/evermall/storefront/internal/catalog/domain"
)

func v(id, rawKey, image string) domain.Variant {
	return domain.Variant{ID: id, RawKey: rawKey, Image: image, Active: true}
}

func TestBuildIndex(t *testing.T) {
	t.Run("empty variant list", func(t *testing.T) {
		idx := BuildIndex(nil)
		if len(idx.Styles) != 0 || len(idx.Sizes) != 0 || idx.HasGender || idx.HasSizeFacet {
			t.Fatalf("expected empty index, got %+v", idx)
		}
	})

	t.Run("styles deduplicated with count and first image", func(t *testing.T) {
		idx := BuildIndex([]domain.Variant{
			v("1", "Purple-S", "purple-s.jpg"),
			v("2", "Purple-M", "purple-m.jpg"),
			v("3", "Black-S", "black-s.jpg"),
		})
		if idx.HasGender {
			t.Fatal("no gender tokens present")
		}
		if !idx.HasSizeFacet {
			t.Fatal("letter sizes should enable the size facet")
		}
		if len(idx.Styles) != 2 {
			t.Fatalf("expected 2 styles, got %d", len(idx.Styles))
		}
		if idx.Styles[0].Label != "Purple" || idx.Styles[0].VariantCount != 2 || idx.Styles[0].Image != "purple-s.jpg" {
			t.Fatalf("purple option wrong: %+v", idx.Styles[0])
		}
	})

	t.Run("gender token switches axis detection", func(t *testing.T) {
		idx := BuildIndex([]domain.Variant{
			v("1", "Deep Rose Black Women-36", "a.jpg"),
			v("2", "Deep Rose Black Women-38", "b.jpg"),
		})
		if !idx.HasGender {
			t.Fatal("expected HasGender")
		}
		if len(idx.Styles) != 1 || idx.Styles[0].Label != "Deep Rose Black Women" {
			t.Fatalf("styles: %+v", idx.Styles)
		}
	})

	t.Run("canonical size order", func(t *testing.T) {
		idx := BuildIndex([]domain.Variant{
			v("1", "Black-38", ""),
			v("2", "Black-XL", ""),
			v("3", "Black-S", ""),
			v("4", "Black-36", ""),
			v("5", "Black-M", ""),
		})
		want := []string{"S", "M", "XL", "36", "38"}
		if len(idx.Sizes) != len(want) {
			t.Fatalf("sizes: %v", idx.Sizes)
		}
		for i := range want {
			if idx.Sizes[i] != want[i] {
				t.Fatalf("sizes: %v, want %v", idx.Sizes, want)
			}
		}
	})

	t.Run("no real size falls back to whole-variant styles", func(t *testing.T) {
		idx := BuildIndex([]domain.Variant{
			{ID: "1", DisplayName: "64GB Space Gray", Active: true},
			{ID: "2", DisplayName: "128GB Space Gray", Active: true},
		})
		if idx.HasSizeFacet || len(idx.Sizes) != 0 {
			t.Fatalf("no size facet expected: %+v", idx)
		}
		if len(idx.Styles) != 2 {
			t.Fatalf("each variant should be its own option: %+v", idx.Styles)
		}
	})

	t.Run("inactive variants ignored", func(t *testing.T) {
		idx := BuildIndex([]domain.Variant{
			v("1", "Purple-S", ""),
			{ID: "2", RawKey: "Black-S", Active: false},
		})
		if len(idx.Styles) != 1 {
			t.Fatalf("styles: %+v", idx.Styles)
		}
	})
}
