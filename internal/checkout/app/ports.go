package app

import (
	"context"

	"github.com/evermall/storefront/internal/checkout/domain"
)

// CartLine is the checkout view of one cart line.
type CartLine struct {
	ProductID         string
	VariantID         string
	ExternalRef       string
	Name              string
	Quantity          int32
	UnitAmount        int64
	Currency          string
	NeedsFreightQuote bool
	OriginCountry     string
}

type CartReader interface {
	Lines(ctx context.Context, userID string) ([]CartLine, error)
}

type CartClearer interface {
	Clear(ctx context.Context, userID string) error
}

type QuoteItem struct {
	ExternalRef string
	Quantity    int32
}

// ShippingQuoteClient fetches freight options for one origin country.
type ShippingQuoteClient interface {
	Quote(ctx context.Context, originCountry, destCountry, zip string, items []QuoteItem) ([]domain.ShippingOption, error)
}

type PaymentIntent struct {
	ClientSecret string
	Ref          string
}

type PaymentIntentClient interface {
	CreateIntent(ctx context.Context, amount domain.Money) (PaymentIntent, error)
}

type OrderItem struct {
	ProductID  string
	VariantID  string
	Name       string
	Quantity   int32
	UnitAmount int64
}

type OrderDraft struct {
	UserID           string
	Items            []OrderItem
	ShippingAddress  domain.Address
	ShippingMethod   string
	ShippingCost     domain.Money
	PaymentMethod    domain.PaymentMethod
	Total            domain.Money
	PaymentIntentRef string
}

type OrderClient interface {
	Create(ctx context.Context, draft OrderDraft) (string, error)
}

type AddressStore interface {
	List(ctx context.Context, userID string) ([]domain.Address, error)
	Create(ctx context.Context, userID string, addr domain.Address) (domain.Address, error)
}
