package app

import (
	"context"

	"github.com/evermall/storefront/internal/cart/domain"
)

type CartRepo interface {
	Get(ctx context.Context, userID string) (domain.Cart, error)
	GetOrCreate(ctx context.Context, userID string) (domain.Cart, error)
	UpsertLine(ctx context.Context, cartID string, line domain.Line) error
	SetQuantity(ctx context.Context, cartID, lineID string, quantity int32) error
	RemoveLine(ctx context.Context, cartID, lineID string) error
	Clear(ctx context.Context, cartID string) error
}

// EmptiedObserver is told when a user's cart loses its last line, so an
// in-progress checkout session can be discarded.
type EmptiedObserver interface {
	CartEmptied(ctx context.Context, userID string)
}
