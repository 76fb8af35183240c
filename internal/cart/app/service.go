package app

import (
	"context"
	"errors"
	"strings"

	"github.com/evermall/storefront/internal/cart/domain"
)

var (
	ErrInvalidInput = errors.New("invalid input")

	// ErrStockExhausted blocks add-to-cart locally when the resolved variant
	// has no stock; the request never reaches the marketplace.
	ErrStockExhausted = errors.New("variant out of stock")
)

type Service struct {
	repo     CartRepo
	observer EmptiedObserver
}

func NewService(repo CartRepo, observer EmptiedObserver) *Service {
	return &Service{repo: repo, observer: observer}
}

// SetObserver late-binds the emptied observer. The observer depends on a
// reader over this service, so it cannot exist yet at construction time.
func (s *Service) SetObserver(o EmptiedObserver) { s.observer = o }

// AddLineInput snapshots the resolved product/variant state at add time.
// Stock is the resolved display stock; zero blocks the add.
type AddLineInput struct {
	ProductID         string
	VariantID         string
	ExternalRef       string
	Name              string
	Image             string
	Quantity          int32
	UnitPrice         domain.Money
	Stock             int32
	FulfillmentSource string
	OriginCountry     string
}

func (s *Service) Get(ctx context.Context, userID string) (domain.Cart, error) {
	if strings.TrimSpace(userID) == "" {
		return domain.Cart{}, ErrInvalidInput
	}
	return s.repo.GetOrCreate(ctx, userID)
}

func (s *Service) AddLine(ctx context.Context, userID string, in AddLineInput) (domain.Cart, error) {
	if strings.TrimSpace(userID) == "" || in.ProductID == "" || in.Quantity <= 0 {
		return domain.Cart{}, ErrInvalidInput
	}
	if in.Stock <= 0 {
		return domain.Cart{}, ErrStockExhausted
	}

	cart, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return domain.Cart{}, err
	}

	line := domain.Line{
		ProductID:         in.ProductID,
		VariantID:         in.VariantID,
		ExternalRef:       in.ExternalRef,
		Name:              in.Name,
		Image:             in.Image,
		Quantity:          in.Quantity,
		UnitPrice:         in.UnitPrice,
		FulfillmentSource: in.FulfillmentSource,
		OriginCountry:     in.OriginCountry,
	}
	if err := s.repo.UpsertLine(ctx, cart.ID, line); err != nil {
		return domain.Cart{}, err
	}
	return s.repo.Get(ctx, userID)
}

func (s *Service) SetQuantity(ctx context.Context, userID, lineID string, quantity int32) (domain.Cart, error) {
	if quantity < 1 {
		return domain.Cart{}, ErrInvalidInput
	}
	cart, err := s.repo.Get(ctx, userID)
	if err != nil {
		return domain.Cart{}, err
	}
	if err := s.repo.SetQuantity(ctx, cart.ID, lineID, quantity); err != nil {
		return domain.Cart{}, err
	}
	return s.repo.Get(ctx, userID)
}

func (s *Service) RemoveLine(ctx context.Context, userID, lineID string) (domain.Cart, error) {
	cart, err := s.repo.Get(ctx, userID)
	if err != nil {
		return domain.Cart{}, err
	}
	if err := s.repo.RemoveLine(ctx, cart.ID, lineID); err != nil {
		return domain.Cart{}, err
	}
	updated, err := s.repo.Get(ctx, userID)
	if err != nil {
		return domain.Cart{}, err
	}
	s.notifyIfEmpty(ctx, updated)
	return updated, nil
}

func (s *Service) Clear(ctx context.Context, userID string) error {
	cart, err := s.repo.Get(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.repo.Clear(ctx, cart.ID); err != nil {
		return err
	}
	s.notifyIfEmpty(ctx, domain.Cart{UserID: userID})
	return nil
}

func (s *Service) notifyIfEmpty(ctx context.Context, cart domain.Cart) {
	if s.observer != nil && cart.Empty() {
		s.observer.CartEmptied(ctx, cart.UserID)
	}
}
