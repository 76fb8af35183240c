package app

import (
	"context"

	"github.com/evermall/storefront/internal/catalog/domain"
)

// ProductSource supplies a product together with its full variant list. The
// list is replaced wholesale on every fetch; nothing here mutates variants
// incrementally.
type ProductSource interface {
	Product(ctx context.Context, id string) (domain.Product, error)
}
