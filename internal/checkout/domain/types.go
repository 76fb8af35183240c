package domain

import "time"

type Money struct {
	Currency string
	Amount   int64
}

type StepID string

const (
	StepAddress  StepID = "address"
	StepShipping StepID = "shipping"
	StepPayment  StepID = "payment"
	StepReview   StepID = "review"
)

func (s StepID) String() string { return string(s) }

type PaymentMethod string

const (
	PaymentCard   PaymentMethod = "card"
	PaymentPaypal PaymentMethod = "paypal"
	PaymentBank   PaymentMethod = "bank"
)

func ValidPaymentMethod(m PaymentMethod) bool {
	return m == PaymentCard || m == PaymentPaypal || m == PaymentBank
}

type Address struct {
	ID       string
	FullName string
	Line1    string
	Line2    string
	City     string
	Zip      string
	Country  string
	Phone    string
}

type ShippingOption struct {
	LogisticName string
	ShippingTime string
	Freight      Money
}

// Steps returns the ordered step sequence for a cart composition. The
// shipping step exists only when the cart holds at least one line that needs
// a live freight quote.
func Steps(hasShippingStep bool) []StepID {
	if hasShippingStep {
		return []StepID{StepAddress, StepShipping, StepPayment, StepReview}
	}
	return []StepID{StepAddress, StepPayment, StepReview}
}

// NextStep advances one step in the sequence; Review is terminal.
func NextStep(cur StepID, hasShippingStep bool) StepID {
	steps := Steps(hasShippingStep)
	for i, s := range steps {
		if s == cur {
			if i+1 < len(steps) {
				return steps[i+1]
			}
			return cur
		}
	}
	return StepAddress
}

// PrevStep steps backwards; Address is the floor.
func PrevStep(cur StepID, hasShippingStep bool) StepID {
	steps := Steps(hasShippingStep)
	for i, s := range steps {
		if s == cur {
			if i > 0 {
				return steps[i-1]
			}
			return cur
		}
	}
	return StepAddress
}

func ValidStep(s StepID, hasShippingStep bool) bool {
	for _, step := range Steps(hasShippingStep) {
		if step == s {
			return true
		}
	}
	return false
}

// Session is the checkout state for one user. It exists from checkout entry
// until the order is placed or the cart empties; Step is always one of the
// steps valid for the cart composition captured at entry.
type Session struct {
	ID              string
	UserID          string
	Step            StepID
	HasShippingStep bool

	Address         *Address
	ShippingOptions []ShippingOption
	ShippingOption  *ShippingOption

	PaymentMethod PaymentMethod
	PaymentSecret string
	PaymentRef    string

	Discount int64

	CreatedAt time.Time
	UpdatedAt time.Time
}
