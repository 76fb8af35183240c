package domain

import "time"

type Money struct {
	Currency string
	Amount   int64
}

// Variant is one purchasable configuration of a product. RawKey is the
// upstream attribute descriptor and has no guaranteed format; DisplayName is
// the fallback source when RawKey is empty. Price and Stock are nil when the
// upstream feed omits them, in which case the base product values apply.
type Variant struct {
	ID          string
	ProductID   string
	ExternalRef string
	RawKey      string
	DisplayName string
	Price       *Money
	Stock       *int32
	Image       string
	Active      bool
}

type Product struct {
	ID                string
	Name              string
	Description       string
	Price             Money
	Stock             int32
	Image             string
	FulfillmentSource string
	OriginCountry     string
	Variants          []Variant
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// DisplayOf returns the price, stock and image to show for a resolved
// variant, falling back to the base product wherever the variant carries no
// value of its own.
func (p Product) DisplayOf(v *Variant) (Money, int32, string) {
	price, stock, image := p.Price, p.Stock, p.Image
	if v == nil {
		return price, stock, image
	}
	if v.Price != nil {
		price = *v.Price
	}
	if v.Stock != nil {
		stock = *v.Stock
	}
	if v.Image != "" {
		image = v.Image
	}
	return price, stock, image
}
