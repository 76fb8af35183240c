package variant

import (
	"testing"

	"github.com/evermall/storefront/internal/catalog/domain"
)

func apparelSet() []domain.Variant {
	return []domain.Variant{
		v("p-s", "Purple-S", "purple.jpg"),
		v("p-m", "Purple-M", "purple.jpg"),
		v("b-s", "Black-S", "black.jpg"),
		v("b-m", "Black-M", "black.jpg"),
	}
}

func TestResolve(t *testing.T) {
	t.Run("single active variant wins regardless of selection", func(t *testing.T) {
		variants := []domain.Variant{
			v("only", "Purple-S", ""),
			{ID: "off", RawKey: "Black-M", Active: false},
		}
		idx := BuildIndex(variants)
		for _, sel := range []Selection{{}, {Style: "Black", Size: "M"}, {Style: "nonsense"}} {
			got := Resolve(sel, idx, variants)
			if got == nil || got.ID != "only" {
				t.Fatalf("selection %+v: got %+v", sel, got)
			}
		}
	})

	t.Run("no selection with multiple variants is unresolved", func(t *testing.T) {
		variants := apparelSet()
		if got := Resolve(Selection{}, BuildIndex(variants), variants); got != nil {
			t.Fatalf("got %+v", got)
		}
	})

	t.Run("exact style and size resolves in the first pass", func(t *testing.T) {
		variants := apparelSet()
		got := Resolve(Selection{Style: "Purple", Size: "S"}, BuildIndex(variants), variants)
		if got == nil || got.ID != "p-s" {
			t.Fatalf("got %+v", got)
		}
	})

	t.Run("grey matches gray", func(t *testing.T) {
		variants := []domain.Variant{
			v("g-s", "Dark Gray-S", ""),
			v("g-m", "Dark Gray-M", ""),
		}
		got := Resolve(Selection{Style: "Dark Grey", Size: "M"}, BuildIndex(variants), variants)
		if got == nil || got.ID != "g-m" {
			t.Fatalf("got %+v", got)
		}
	})

	t.Run("missing combination falls back to best partial match", func(t *testing.T) {
		variants := apparelSet()
		// no Purple-XL exists; substring style match should still rank purple
		// variants above a size-only hit
		got := Resolve(Selection{Style: "Purple", Size: "XL"}, BuildIndex(variants), variants)
		if got == nil {
			t.Fatal("expected a best-effort candidate")
		}
		if got.ID != "p-s" && got.ID != "p-m" {
			t.Fatalf("expected a purple variant, got %+v", got)
		}
	})

	t.Run("nothing matches either facet", func(t *testing.T) {
		variants := apparelSet()
		got := Resolve(Selection{Style: "Chartreuse", Size: "9"}, BuildIndex(variants), variants)
		if got != nil {
			t.Fatalf("got %+v", got)
		}
	})

	t.Run("size only takes the first size hit", func(t *testing.T) {
		variants := apparelSet()
		got := Resolve(Selection{Size: "M"}, BuildIndex(variants), variants)
		if got == nil || got.ID != "p-m" {
			t.Fatalf("got %+v", got)
		}
	})

	t.Run("style only on single-facet product", func(t *testing.T) {
		variants := []domain.Variant{
			v("red", "Red", "red.jpg"),
			v("blue", "Blue", "blue.jpg"),
		}
		got := Resolve(Selection{Style: "Blue"}, BuildIndex(variants), variants)
		if got == nil || got.ID != "blue" {
			t.Fatalf("got %+v", got)
		}
	})

	t.Run("resolve is idempotent", func(t *testing.T) {
		variants := apparelSet()
		idx := BuildIndex(variants)
		sel := Selection{Style: "Black", Size: "M"}
		first := Resolve(sel, idx, variants)
		second := Resolve(sel, idx, variants)
		if first == nil || second == nil || first.ID != second.ID {
			t.Fatalf("got %+v then %+v", first, second)
		}
	})
}

func TestResolveGenderedScenario(t *testing.T) {
	variants := []domain.Variant{
		v("w36", "Deep Rose Black Women-36", ""),
		v("w38", "Deep Rose Black Women-38", ""),
		v("m42", "Coffee Men-42", ""),
	}
	idx := BuildIndex(variants)
	if !idx.HasGender {
		t.Fatal("expected gender axis")
	}
	got := Resolve(Selection{Style: "Deep Rose Black Women", Size: "38"}, idx, variants)
	if got == nil || got.ID != "w38" {
		t.Fatalf("got %+v", got)
	}
}
