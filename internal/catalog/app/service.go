package app

import (
	"context"
	"errors"
	"strings"

	"github.com/evermall/storefront/internal/catalog/domain"
	"github.com/evermall/storefront/internal/catalog/variant"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")

	// ErrNoMatch means both facets were selected but no variant cleared the
	// match rules; callers render it as "combination unavailable".
	ErrNoMatch = errors.New("no variant matches selection")
)

type Service struct {
	source ProductSource
}

func NewService(source ProductSource) *Service {
	return &Service{source: source}
}

// ProductPage is everything the product view needs: the product, its facet
// index, the variant resolved for the current selection (nil when the user
// still has to choose), and the display values after variant fallbacks.
type ProductPage struct {
	Product  domain.Product
	Facets   variant.AttributeSet
	Resolved *domain.Variant

	Price domain.Money
	Stock int32
	Image string
}

// GetProductPage fetches a product and builds its facet index. Products with
// exactly one active variant resolve immediately, so such pages never show a
// selector.
func (s *Service) GetProductPage(ctx context.Context, id string) (ProductPage, error) {
	return s.page(ctx, id, variant.Selection{})
}

// ResolveSelection re-resolves a product page for the given facet selection.
// A fully specified selection that matches nothing returns ErrNoMatch along
// with the unresolved page.
func (s *Service) ResolveSelection(ctx context.Context, id string, sel variant.Selection) (ProductPage, error) {
	page, err := s.page(ctx, id, sel)
	if err != nil {
		return page, err
	}
	if page.Resolved == nil && sel.Style != "" && sel.Size != "" {
		return page, ErrNoMatch
	}
	return page, nil
}

func (s *Service) page(ctx context.Context, id string, sel variant.Selection) (ProductPage, error) {
	if strings.TrimSpace(id) == "" {
		return ProductPage{}, ErrInvalidInput
	}
	p, err := s.source.Product(ctx, id)
	if err != nil {
		return ProductPage{}, err
	}

	idx := variant.BuildIndex(p.Variants)
	resolved := variant.Resolve(sel, idx, p.Variants)

	price, stock, image := p.DisplayOf(resolved)
	return ProductPage{
		Product:  p,
		Facets:   idx,
		Resolved: resolved,
		Price:    price,
		Stock:    stock,
		Image:    image,
	}, nil
}
