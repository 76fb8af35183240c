package adapter

import (
	"context"

	cartapp "github.com/evermall/storefront/internal/cart/app"
	checkoutapp "github.com/evermall/storefront/internal/checkout/app"
)

// CartServiceReader exposes the cart service to checkout through its own
// line view.
type CartServiceReader struct {
	svc *cartapp.Service
}

func NewCartServiceReader(svc *cartapp.Service) *CartServiceReader {
	return &CartServiceReader{svc: svc}
}

func (r *CartServiceReader) Lines(ctx context.Context, userID string) ([]checkoutapp.CartLine, error) {
	cart, err := r.svc.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	lines := make([]checkoutapp.CartLine, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		lines = append(lines, checkoutapp.CartLine{
			ProductID:         l.ProductID,
			VariantID:         l.VariantID,
			ExternalRef:       l.ExternalRef,
			Name:              l.Name,
			Quantity:          l.Quantity,
			UnitAmount:        l.UnitPrice.Amount,
			Currency:          l.UnitPrice.Currency,
			NeedsFreightQuote: l.NeedsFreightQuote(),
			OriginCountry:     l.OriginCountry,
		})
	}
	return lines, nil
}

func (r *CartServiceReader) Clear(ctx context.Context, userID string) error {
	return r.svc.Clear(ctx, userID)
}
