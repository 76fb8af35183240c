package app

import (
	"context"
	"errors"
	"testing"

	"github.com/evermall/storefront/internal/catalog/domain"
	"github.com/evermall/storefront/internal/catalog/variant"
)

type fakeSource struct {
	product domain.Product
	err     error
}

func (f fakeSource) Product(ctx context.Context, id string) (domain.Product, error) {
	return f.product, f.err
}

func money(amount int64) *domain.Money {
	return &domain.Money{Currency: "EUR", Amount: amount}
}

func testProduct() domain.Product {
	stock := int32(3)
	return domain.Product{
		ID:    "prod-1",
		Name:  "Trail Sneaker",
		Price: domain.Money{Currency: "EUR", Amount: 4990},
		Stock: 10,
		Image: "base.jpg",
		Variants: []domain.Variant{
			{ID: "v1", RawKey: "Purple-S", Price: money(5290), Stock: &stock, Image: "purple.jpg", Active: true},
			{ID: "v2", RawKey: "Purple-M", Active: true},
			{ID: "v3", RawKey: "Black-S", Active: true},
		},
	}
}

func TestGetProductPage(t *testing.T) {
	t.Run("empty id -> invalid", func(t *testing.T) {
		svc := NewService(fakeSource{})
		if _, err := svc.GetProductPage(context.Background(), "   "); err != ErrInvalidInput {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("multi-variant page starts unresolved with base display", func(t *testing.T) {
		svc := NewService(fakeSource{product: testProduct()})
		page, err := svc.GetProductPage(context.Background(), "prod-1")
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if page.Resolved != nil {
			t.Fatalf("expected unresolved, got %+v", page.Resolved)
		}
		if page.Price.Amount != 4990 || page.Image != "base.jpg" {
			t.Fatalf("base display expected, got %+v", page)
		}
		if len(page.Facets.Styles) != 2 || len(page.Facets.Sizes) != 2 {
			t.Fatalf("facets: %+v", page.Facets)
		}
	})
}

func TestResolveSelection(t *testing.T) {
	svc := NewService(fakeSource{product: testProduct()})

	t.Run("resolved variant overrides display values", func(t *testing.T) {
		page, err := svc.ResolveSelection(context.Background(), "prod-1", variant.Selection{Style: "Purple", Size: "S"})
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if page.Resolved == nil || page.Resolved.ID != "v1" {
			t.Fatalf("resolved: %+v", page.Resolved)
		}
		if page.Price.Amount != 5290 || page.Stock != 3 || page.Image != "purple.jpg" {
			t.Fatalf("display: %+v", page)
		}
	})

	t.Run("variant without overrides keeps base display", func(t *testing.T) {
		page, err := svc.ResolveSelection(context.Background(), "prod-1", variant.Selection{Style: "Purple", Size: "M"})
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if page.Resolved == nil || page.Resolved.ID != "v2" {
			t.Fatalf("resolved: %+v", page.Resolved)
		}
		if page.Price.Amount != 4990 || page.Stock != 10 || page.Image != "base.jpg" {
			t.Fatalf("display: %+v", page)
		}
	})

	t.Run("unavailable combination -> ErrNoMatch", func(t *testing.T) {
		_, err := svc.ResolveSelection(context.Background(), "prod-1", variant.Selection{Style: "Chartreuse", Size: "9"})
		if !errors.Is(err, ErrNoMatch) {
			t.Fatalf("expected ErrNoMatch, got %v", err)
		}
	})

	t.Run("source failure propagates", func(t *testing.T) {
		boom := errors.New("upstream down")
		svc := NewService(fakeSource{err: boom})
		if _, err := svc.GetProductPage(context.Background(), "prod-1"); !errors.Is(err, boom) {
			t.Fatalf("got %v", err)
		}
	})
}
