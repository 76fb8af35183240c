package variant

import (
	"fmt"
	"strings"
	"testing"

	"github.com/evermall/storefront/internal/catalog/domain"
)

func TestExtract(t *testing.T) {
	t.Run("gendered key with numeric size", func(t *testing.T) {
		style, size := Extract(domain.Variant{RawKey: "Deep Rose Black Women-36"}, true)
		if style != "Deep Rose Black Women" || size != "36" {
			t.Fatalf("got (%q,%q)", style, size)
		}
	})

	t.Run("color key with letter size", func(t *testing.T) {
		style, size := Extract(domain.Variant{RawKey: "Purple-S"}, false)
		if style != "Purple" || size != "S" {
			t.Fatalf("got (%q,%q)", style, size)
		}
	})

	t.Run("json record key", func(t *testing.T) {
		style, size := Extract(domain.Variant{RawKey: `{"key":"Navy Men-42"}`}, true)
		if style != "Navy Men" || size != "42" {
			t.Fatalf("got (%q,%q)", style, size)
		}
	})

	t.Run("malformed json falls back to raw text", func(t *testing.T) {
		style, size := Extract(domain.Variant{RawKey: `{"key": broken`}, false)
		if style != "" || size != "" {
			t.Fatalf("got (%q,%q)", style, size)
		}
	})

	t.Run("display name fallback when raw key absent", func(t *testing.T) {
		style, size := Extract(domain.Variant{DisplayName: "Beige Maroon Women-36"}, true)
		if style != "Beige Maroon Women" || size != "36" {
			t.Fatalf("got (%q,%q)", style, size)
		}
	})

	t.Run("no data yields empty pair", func(t *testing.T) {
		style, size := Extract(domain.Variant{}, false)
		if style != "" || size != "" {
			t.Fatalf("got (%q,%q)", style, size)
		}
	})

	t.Run("size embedded mid-key is stripped from style", func(t *testing.T) {
		style, size := Extract(domain.Variant{RawKey: "Red 38 Women-38"}, true)
		if style != "Red Women" || size != "38" {
			t.Fatalf("got (%q,%q)", style, size)
		}
	})

	t.Run("gender anchor discards trailing sku noise", func(t *testing.T) {
		style, _ := Extract(domain.Variant{RawKey: "Khaki Man A12B-40"}, true)
		if style != "Khaki Man" {
			t.Fatalf("got %q", style)
		}
	})

	t.Run("non-color style excluded without gender axis", func(t *testing.T) {
		style, size := Extract(domain.Variant{RawKey: "Widget-36"}, false)
		if style != "" {
			t.Fatalf("expected unattributed style, got %q", style)
		}
		if size != "36" {
			t.Fatalf("got size %q", size)
		}
	})
}

// Every key of the form "<words> <Men|Women>-<30..50>" must yield the numeric
// suffix as size and a style free of standalone 30..50 tokens.
func TestExtractGenderedSizeGrid(t *testing.T) {
	prefixes := []string{"Deep Rose Black", "Beige Maroon", "Navy", "Light Gray 40"}
	genders := []string{"Men", "Women"}
	for _, prefix := range prefixes {
		for _, g := range genders {
			for n := 30; n <= 50; n += 5 {
				key := fmt.Sprintf("%s %s-%d", prefix, g, n)
				style, size := Extract(domain.Variant{RawKey: key}, true)
				if size != fmt.Sprintf("%d", n) {
					t.Fatalf("%s: size %q", key, size)
				}
				for _, w := range strings.Fields(style) {
					if isRealSize(w) {
						t.Fatalf("%s: style %q keeps size token %q", key, style, w)
					}
				}
			}
		}
	}
}

func TestStripSizeTokenIdempotent(t *testing.T) {
	inputs := []string{"Red 38 Women", "36", "Blue-40-42", "A36B untouched", "Black"}
	for _, in := range inputs {
		once := stripSizeToken(in)
		if twice := stripSizeToken(once); twice != once {
			t.Fatalf("%q: second application changed %q to %q", in, once, twice)
		}
	}
	if got := stripSizeToken("A36B untouched"); got != "A36B untouched" {
		t.Fatalf("embedded digits must survive, got %q", got)
	}
}

func TestNormalizeStyle(t *testing.T) {
	if NormalizeStyle("  Dark Grey ") != "dark gray" {
		t.Fatalf("got %q", NormalizeStyle("  Dark Grey "))
	}
	if NormalizeStyle("Gray") != NormalizeStyle("Grey") {
		t.Fatal("grey and gray must compare equal")
	}
}
