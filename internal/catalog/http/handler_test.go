package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/evermall/storefront/internal/catalog/app"
	"github.com/evermall/storefront/internal/catalog/domain"
)

type stubSource struct {
	products map[string]domain.Product
}

func (s *stubSource) Product(ctx context.Context, id string) (domain.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return domain.Product{}, app.ErrNotFound
	}
	return p, nil
}

func price(amount int64) *domain.Money {
	return &domain.Money{Currency: "EUR", Amount: amount}
}

func newTestHandler() *Handler {
	src := &stubSource{products: map[string]domain.Product{
		"p1": {
			ID:    "p1",
			Name:  "Trail Sneaker",
			Price: domain.Money{Currency: "EUR", Amount: 6000},
			Stock: 10,
			Variants: []domain.Variant{
				{ID: "v1", RawKey: "Deep Rose Black Women-36", Price: price(7500), Active: true},
				{ID: "v2", RawKey: "Deep Rose Black Women-37", Price: price(7500), Active: true},
				{ID: "v3", RawKey: "Olive Men-42", Price: price(7200), Active: true},
			},
		},
	}}
	return NewHandler(app.NewService(src), nil)
}

func do(t *testing.T, h *Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	h.Register(e)
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestGetProduct(t *testing.T) {
	rec := do(t, newTestHandler(), http.MethodGet, "/products/p1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var page productPageDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatal(err)
	}
	if !page.Facets.HasGender || !page.Facets.HasSizeFacet {
		t.Fatalf("facets = %+v, want gendered size grid", page.Facets)
	}
	if len(page.Facets.Styles) != 2 {
		t.Fatalf("styles = %d, want 2", len(page.Facets.Styles))
	}
	if page.Resolved != nil {
		t.Fatal("no selection should leave the page unresolved")
	}
	// unresolved pages show base product values
	if page.Price.Amount != 6000 {
		t.Fatalf("price = %d, want base 6000", page.Price.Amount)
	}
}

func TestGetProductNotFound(t *testing.T) {
	rec := do(t, newTestHandler(), http.MethodGet, "/products/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestResolveSelection(t *testing.T) {
	h := newTestHandler()

	t.Run("full selection resolves a variant", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/products/p1/resolve",
			`{"style":"Deep Rose Black Women","size":"36"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
		}
		var page productPageDTO
		if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
			t.Fatal(err)
		}
		if page.Resolved == nil || page.Resolved.ID != "v1" {
			t.Fatalf("resolved = %+v, want v1", page.Resolved)
		}
		if page.Price.Amount != 7500 {
			t.Fatalf("price = %d, want variant 7500", page.Price.Amount)
		}
	})

	t.Run("conflicting selection falls back to the size match", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/products/p1/resolve",
			`{"style":"Olive Men","size":"36"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		var page productPageDTO
		if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
			t.Fatal(err)
		}
		if page.Resolved == nil || page.Resolved.ID != "v1" {
			t.Fatalf("resolved = %+v, want size-matched v1", page.Resolved)
		}
	})

	t.Run("unavailable combination is 422 but still renders", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/products/p1/resolve",
			`{"style":"Crimson","size":"99"}`)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d, want 422", rec.Code)
		}
		var page productPageDTO
		if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
			t.Fatal(err)
		}
		if len(page.Facets.Styles) != 2 {
			t.Fatal("facets should survive a failed resolution")
		}
	})
}
