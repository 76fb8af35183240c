package domain

import "time"

type Money struct {
	Currency string
	Amount   int64
}

// Fulfillment sources. Supplier-direct lines need a live freight quote at
// checkout; warehouse lines ship flat/free.
const (
	SourceWarehouse      = "warehouse"
	SourceSupplierDirect = "supplier-direct"
)

// Line is a cart line item carrying a snapshot of the product and resolved
// variant at the moment it was added.
type Line struct {
	ID                string
	ProductID         string
	VariantID         string
	ExternalRef       string
	Name              string
	Image             string
	Quantity          int32
	UnitPrice         Money
	FulfillmentSource string
	OriginCountry     string
}

func (l Line) NeedsFreightQuote() bool {
	return l.FulfillmentSource == SourceSupplierDirect
}

func (l Line) Total() int64 {
	return l.UnitPrice.Amount * int64(l.Quantity)
}

type Cart struct {
	ID        string
	UserID    string
	Status    string
	Lines     []Line
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c Cart) Empty() bool { return len(c.Lines) == 0 }

// RequiresFreightQuote reports whether any line originates from a supplier
// that needs a live freight calculation. Checkout derives its step topology
// from this once per cart snapshot.
func (c Cart) RequiresFreightQuote() bool {
	for _, l := range c.Lines {
		if l.NeedsFreightQuote() {
			return true
		}
	}
	return false
}

func (c Cart) Subtotal() Money {
	var total Money
	for _, l := range c.Lines {
		total.Amount += l.Total()
		if total.Currency == "" {
			total.Currency = l.UnitPrice.Currency
		}
	}
	return total
}
