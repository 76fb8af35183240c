package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/evermall/storefront/internal/checkout/domain"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("checkout session not found")
	ErrEmptyCart    = errors.New("cart is empty")

	// ErrStepBlocked means the operation does not belong to the session's
	// current step.
	ErrStepBlocked = errors.New("operation not valid for current step")

	// ErrQuoteUnavailable blocks Shipping -> Payment: the freight call failed
	// or produced zero options. Retriable by changing the address.
	ErrQuoteUnavailable = errors.New("no shipping options available")

	// ErrPaymentSetup blocks Payment -> Review: intent creation failed.
	// Retriable by re-selecting the payment method.
	ErrPaymentSetup = errors.New("payment setup failed")

	// ErrOrderNotRecorded is the severe case: payment may already be captured
	// but the order could not be recorded. Never retried automatically.
	ErrOrderNotRecorded = errors.New("payment succeeded but order recording failed, contact support")
)

// session wraps the domain session with the coordination state that must
// never leak to callers: the cart snapshot taken at entry, the quote version
// token, and the single-flight flags.
type session struct {
	s     domain.Session
	lines []CartLine

	quoteVersion  uint64
	quoteInFlight bool
	quoteErr      string

	intentRequested bool
	placing         bool
}

type Service struct {
	cart      CartReader
	clearer   CartClearer
	quotes    ShippingQuoteClient
	payments  PaymentIntentClient
	orders    OrderClient
	addresses AddressStore
	log       *slog.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

func NewService(cart CartReader, clearer CartClearer, quotes ShippingQuoteClient, payments PaymentIntentClient, orders OrderClient, addresses AddressStore, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		cart:      cart,
		clearer:   clearer,
		quotes:    quotes,
		payments:  payments,
		orders:    orders,
		addresses: addresses,
		log:       log,
		sessions:  make(map[string]*session),
	}
}

// View is the step-rendering snapshot: the session plus the reactively
// recomputed totals. Totals are never cached across step transitions.
type View struct {
	Session  domain.Session
	Steps    []domain.StepID
	Subtotal domain.Money
	Freight  domain.Money
	Discount int64
	Total    domain.Money

	QuoteError string
}

// Start enters checkout: snapshots the cart, decides the step topology from
// its composition, and opens a session at the address step. An existing
// session for the user is replaced.
func (s *Service) Start(ctx context.Context, userID string) (View, error) {
	if strings.TrimSpace(userID) == "" {
		return View{}, ErrInvalidInput
	}
	lines, err := s.cart.Lines(ctx, userID)
	if err != nil {
		return View{}, err
	}
	if len(lines) == 0 {
		return View{}, ErrEmptyCart
	}

	hasShipping := false
	for _, l := range lines {
		if l.NeedsFreightQuote {
			hasShipping = true
			break
		}
	}

	now := time.Now()
	sess := &session{
		s: domain.Session{
			ID:              uuid.NewString(),
			UserID:          userID,
			Step:            domain.StepAddress,
			HasShippingStep: hasShipping,
			PaymentMethod:   domain.PaymentCard,
			CreatedAt:       now,
			UpdatedAt:       now,
		},
		lines: lines,
	}

	s.mu.Lock()
	s.sessions[userID] = sess
	view := s.viewLocked(sess)
	s.mu.Unlock()
	return view, nil
}

func (s *Service) Session(userID string) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	if !ok {
		return View{}, ErrNotFound
	}
	return s.viewLocked(sess), nil
}

func (s *Service) SavedAddresses(ctx context.Context, userID string) ([]domain.Address, error) {
	return s.addresses.List(ctx, userID)
}

// AddressInput either references a saved address by ID or carries a new one
// to validate and persist.
type AddressInput struct {
	AddressID string
	Address   domain.Address
}

// SubmitAddress confirms the shipping address and advances past the address
// step. Changing the address invalidates any fetched shipping options and
// bumps the quote version so an in-flight quote for the stale address is
// discarded when it lands.
func (s *Service) SubmitAddress(ctx context.Context, userID string, in AddressInput) (View, error) {
	addr, err := s.resolveAddress(ctx, userID, in)
	if err != nil {
		return View{}, err
	}

	s.mu.Lock()
	sess, ok := s.sessions[userID]
	if !ok {
		s.mu.Unlock()
		return View{}, ErrNotFound
	}
	if sess.s.Step != domain.StepAddress {
		s.mu.Unlock()
		return View{}, ErrStepBlocked
	}
	sess.s.Address = &addr
	sess.quoteVersion++
	sess.s.ShippingOptions = nil
	sess.s.ShippingOption = nil
	sess.quoteErr = ""
	sess.s.Step = domain.NextStep(domain.StepAddress, sess.s.HasShippingStep)
	sess.s.UpdatedAt = time.Now()
	next := sess.s.Step
	s.mu.Unlock()

	switch next {
	case domain.StepShipping:
		if err := s.fetchQuotes(ctx, userID); err != nil {
			s.log.Warn("freight quote failed", slog.String("user", userID), slog.Any("err", err))
		}
	case domain.StepPayment:
		if err := s.requestIntent(ctx, userID); err != nil {
			s.log.Warn("payment intent failed", slog.String("user", userID), slog.Any("err", err))
		}
	}
	return s.Session(userID)
}

func (s *Service) resolveAddress(ctx context.Context, userID string, in AddressInput) (domain.Address, error) {
	if in.AddressID != "" {
		saved, err := s.addresses.List(ctx, userID)
		if err != nil {
			return domain.Address{}, err
		}
		for _, a := range saved {
			if a.ID == in.AddressID {
				return a, nil
			}
		}
		return domain.Address{}, fmt.Errorf("%w: unknown address %s", ErrInvalidInput, in.AddressID)
	}

	a := in.Address
	if strings.TrimSpace(a.FullName) == "" ||
		strings.TrimSpace(a.Line1) == "" ||
		strings.TrimSpace(a.City) == "" ||
		strings.TrimSpace(a.Zip) == "" ||
		strings.TrimSpace(a.Country) == "" {
		return domain.Address{}, fmt.Errorf("%w: incomplete address", ErrInvalidInput)
	}
	return s.addresses.Create(ctx, userID, a)
}

// EnsureQuotes fetches freight options for the confirmed address if none are
// present yet. Safe to call on every render of the shipping step: a request
// already in flight or options already fetched make it a no-op.
func (s *Service) EnsureQuotes(ctx context.Context, userID string) (View, error) {
	s.mu.Lock()
	sess, ok := s.sessions[userID]
	if !ok {
		s.mu.Unlock()
		return View{}, ErrNotFound
	}
	if sess.s.Step != domain.StepShipping {
		s.mu.Unlock()
		return View{}, ErrStepBlocked
	}
	have := len(sess.s.ShippingOptions) > 0
	s.mu.Unlock()

	if !have {
		if err := s.fetchQuotes(ctx, userID); err != nil {
			view, _ := s.Session(userID)
			return view, err
		}
	}
	return s.Session(userID)
}

// fetchQuotes issues one freight request per distinct origin country of the
// quote-requiring lines, aggregated line items per origin. Single-flight: a
// second call while one runs returns immediately. A response for a stale
// address (version token mismatch) is dropped on arrival.
func (s *Service) fetchQuotes(ctx context.Context, userID string) error {
	s.mu.Lock()
	sess, ok := s.sessions[userID]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	if sess.quoteInFlight || sess.s.Address == nil {
		s.mu.Unlock()
		return nil
	}
	sess.quoteInFlight = true
	version := sess.quoteVersion
	addr := *sess.s.Address

	byOrigin := make(map[string][]QuoteItem)
	for _, l := range sess.lines {
		if !l.NeedsFreightQuote {
			continue
		}
		byOrigin[l.OriginCountry] = append(byOrigin[l.OriginCountry], QuoteItem{
			ExternalRef: l.ExternalRef,
			Quantity:    l.Quantity,
		})
	}
	s.mu.Unlock()

	var (
		optMu   sync.Mutex
		options []domain.ShippingOption
	)
	g, gctx := errgroup.WithContext(ctx)
	origins := make([]string, 0, len(byOrigin))
	for origin := range byOrigin {
		origins = append(origins, origin)
	}
	sort.Strings(origins)
	for _, origin := range origins {
		origin := origin
		items := byOrigin[origin]
		g.Go(func() error {
			opts, err := s.quotes.Quote(gctx, origin, addr.Country, addr.Zip, items)
			if err != nil {
				return fmt.Errorf("origin %s: %w", origin, err)
			}
			optMu.Lock()
			options = append(options, opts...)
			optMu.Unlock()
			return nil
		})
	}
	quoteErr := g.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok = s.sessions[userID]
	if !ok {
		return nil
	}
	sess.quoteInFlight = false
	if version != sess.quoteVersion {
		// the address changed while the request was out: drop this response
		// and issue exactly one fresh request for the current address
		s.mu.Unlock()
		err := s.fetchQuotes(ctx, userID)
		s.mu.Lock()
		return err
	}
	if quoteErr != nil {
		sess.quoteErr = quoteErr.Error()
		return fmt.Errorf("%w: %v", ErrQuoteUnavailable, quoteErr)
	}
	if len(options) == 0 {
		sess.quoteErr = ErrQuoteUnavailable.Error()
		return ErrQuoteUnavailable
	}
	sess.quoteErr = ""
	sess.s.ShippingOptions = options
	sess.s.ShippingOption = &options[0]
	sess.s.UpdatedAt = time.Now()
	return nil
}

func (s *Service) SelectShipping(ctx context.Context, userID, logisticName string) (View, error) {
	s.mu.Lock()
	sess, ok := s.sessions[userID]
	if !ok {
		s.mu.Unlock()
		return View{}, ErrNotFound
	}
	if sess.s.Step != domain.StepShipping {
		s.mu.Unlock()
		return View{}, ErrStepBlocked
	}
	var found *domain.ShippingOption
	for i := range sess.s.ShippingOptions {
		if sess.s.ShippingOptions[i].LogisticName == logisticName {
			found = &sess.s.ShippingOptions[i]
			break
		}
	}
	if found == nil {
		s.mu.Unlock()
		return View{}, fmt.Errorf("%w: unknown shipping option %s", ErrInvalidInput, logisticName)
	}
	sess.s.ShippingOption = found
	sess.s.UpdatedAt = time.Now()
	s.mu.Unlock()
	return s.Session(userID)
}

// ConfirmShipping advances Shipping -> Payment; blocked until a freight
// option is selected.
func (s *Service) ConfirmShipping(ctx context.Context, userID string) (View, error) {
	s.mu.Lock()
	sess, ok := s.sessions[userID]
	if !ok {
		s.mu.Unlock()
		return View{}, ErrNotFound
	}
	if sess.s.Step != domain.StepShipping {
		s.mu.Unlock()
		return View{}, ErrStepBlocked
	}
	if sess.s.ShippingOption == nil {
		s.mu.Unlock()
		return View{}, ErrQuoteUnavailable
	}
	sess.s.Step = domain.StepPayment
	sess.s.UpdatedAt = time.Now()
	s.mu.Unlock()

	if err := s.requestIntent(ctx, userID); err != nil {
		s.log.Warn("payment intent failed", slog.String("user", userID), slog.Any("err", err))
	}
	return s.Session(userID)
}

// SelectPaymentMethod switches the method. Switching to card triggers the
// eager intent request; switching away and back resets the single-flight
// flag, which is the only soft path to a fresh request.
func (s *Service) SelectPaymentMethod(ctx context.Context, userID string, method domain.PaymentMethod) (View, error) {
	if !domain.ValidPaymentMethod(method) {
		return View{}, fmt.Errorf("%w: payment method %q", ErrInvalidInput, method)
	}
	s.mu.Lock()
	sess, ok := s.sessions[userID]
	if !ok {
		s.mu.Unlock()
		return View{}, ErrNotFound
	}
	if sess.s.Step != domain.StepPayment {
		s.mu.Unlock()
		return View{}, ErrStepBlocked
	}
	if method != sess.s.PaymentMethod {
		if method == domain.PaymentCard {
			sess.intentRequested = false
			sess.s.PaymentSecret = ""
			sess.s.PaymentRef = ""
		}
		sess.s.PaymentMethod = method
		sess.s.UpdatedAt = time.Now()
	}
	s.mu.Unlock()

	if method == domain.PaymentCard {
		if err := s.requestIntent(ctx, userID); err != nil {
			view, _ := s.Session(userID)
			return view, err
		}
	}
	return s.Session(userID)
}

// requestIntent creates the payment intent for a card selection episode.
// Single-flight: the flag is raised before the call and only lowered on hard
// failure, so repeated renders of the payment step never storm the gateway.
func (s *Service) requestIntent(ctx context.Context, userID string) error {
	s.mu.Lock()
	sess, ok := s.sessions[userID]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	total := s.totalLocked(sess)
	if sess.s.PaymentMethod != domain.PaymentCard ||
		total.Amount <= 0 ||
		sess.intentRequested ||
		sess.s.PaymentSecret != "" {
		s.mu.Unlock()
		return nil
	}
	sess.intentRequested = true
	s.mu.Unlock()

	intent, err := s.payments.CreateIntent(ctx, total)

	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok = s.sessions[userID]
	if !ok {
		return nil
	}
	if err != nil {
		// hard failure clears the flag so re-selecting the method retries
		sess.intentRequested = false
		return fmt.Errorf("%w: %v", ErrPaymentSetup, err)
	}
	sess.s.PaymentSecret = intent.ClientSecret
	sess.s.PaymentRef = intent.Ref
	sess.s.UpdatedAt = time.Now()
	return nil
}

// ConfirmPayment advances Payment -> Review. A card selection needs its
// intent secret before it may advance.
func (s *Service) ConfirmPayment(ctx context.Context, userID string) (View, error) {
	s.mu.Lock()
	sess, ok := s.sessions[userID]
	if !ok {
		s.mu.Unlock()
		return View{}, ErrNotFound
	}
	if sess.s.Step != domain.StepPayment {
		s.mu.Unlock()
		return View{}, ErrStepBlocked
	}
	if sess.s.PaymentMethod == domain.PaymentCard && sess.s.PaymentSecret == "" {
		s.mu.Unlock()
		return View{}, ErrPaymentSetup
	}
	sess.s.Step = domain.StepReview
	sess.s.UpdatedAt = time.Now()
	s.mu.Unlock()
	return s.Session(userID)
}

// Back steps backwards through the topology; Address is the floor.
func (s *Service) Back(ctx context.Context, userID string) (View, error) {
	s.mu.Lock()
	sess, ok := s.sessions[userID]
	if !ok {
		s.mu.Unlock()
		return View{}, ErrNotFound
	}
	sess.s.Step = domain.PrevStep(sess.s.Step, sess.s.HasShippingStep)
	sess.s.UpdatedAt = time.Now()
	s.mu.Unlock()
	return s.Session(userID)
}

func (s *Service) ApplyDiscount(ctx context.Context, userID string, amount int64) (View, error) {
	if amount < 0 {
		return View{}, ErrInvalidInput
	}
	s.mu.Lock()
	sess, ok := s.sessions[userID]
	if !ok {
		s.mu.Unlock()
		return View{}, ErrNotFound
	}
	sess.s.Discount = amount
	sess.s.UpdatedAt = time.Now()
	s.mu.Unlock()
	return s.Session(userID)
}

type PlaceResult struct {
	OrderID string
	Pending bool
}

// PlaceOrder performs the order-placement collaborator call from the review
// step, then clears the cart and discards the session. A second call while
// one is pending is a no-op. A placement failure after the card intent was
// created is reported as ErrOrderNotRecorded and never retried here: funds
// may already be captured and a retry risks double-capture.
func (s *Service) PlaceOrder(ctx context.Context, userID string) (PlaceResult, error) {
	s.mu.Lock()
	sess, ok := s.sessions[userID]
	if !ok {
		s.mu.Unlock()
		return PlaceResult{}, ErrNotFound
	}
	if sess.s.Step != domain.StepReview {
		s.mu.Unlock()
		return PlaceResult{}, ErrStepBlocked
	}
	if sess.placing {
		s.mu.Unlock()
		return PlaceResult{Pending: true}, nil
	}
	sess.placing = true
	draft := s.draftLocked(sess)
	capturedCard := sess.s.PaymentMethod == domain.PaymentCard && sess.s.PaymentRef != ""
	s.mu.Unlock()

	orderID, err := s.orders.Create(ctx, draft)

	s.mu.Lock()
	if sess, ok := s.sessions[userID]; ok {
		sess.placing = false
	}
	if err == nil {
		delete(s.sessions, userID)
	}
	s.mu.Unlock()

	if err != nil {
		if capturedCard {
			return PlaceResult{}, fmt.Errorf("%w: %v", ErrOrderNotRecorded, err)
		}
		return PlaceResult{}, fmt.Errorf("order placement: %w", err)
	}

	if clearErr := s.clearer.Clear(ctx, userID); clearErr != nil {
		s.log.Warn("cart clear after order failed", slog.String("user", userID), slog.Any("err", clearErr))
	}
	return PlaceResult{OrderID: orderID}, nil
}

// CartEmptied discards the user's session; wired as the cart service's
// emptied observer so an abandoned cart tears down checkout state.
func (s *Service) CartEmptied(ctx context.Context, userID string) {
	s.mu.Lock()
	delete(s.sessions, userID)
	s.mu.Unlock()
}

func (s *Service) draftLocked(sess *session) OrderDraft {
	items := make([]OrderItem, 0, len(sess.lines))
	for _, l := range sess.lines {
		items = append(items, OrderItem{
			ProductID:  l.ProductID,
			VariantID:  l.VariantID,
			Name:       l.Name,
			Quantity:   l.Quantity,
			UnitAmount: l.UnitAmount,
		})
	}
	draft := OrderDraft{
		UserID:           sess.s.UserID,
		Items:            items,
		PaymentMethod:    sess.s.PaymentMethod,
		Total:            s.totalLocked(sess),
		PaymentIntentRef: sess.s.PaymentRef,
	}
	if sess.s.Address != nil {
		draft.ShippingAddress = *sess.s.Address
	}
	if sess.s.ShippingOption != nil {
		draft.ShippingMethod = sess.s.ShippingOption.LogisticName
		draft.ShippingCost = sess.s.ShippingOption.Freight
	}
	return draft
}

func (s *Service) subtotalLocked(sess *session) domain.Money {
	var m domain.Money
	for _, l := range sess.lines {
		m.Amount += l.UnitAmount * int64(l.Quantity)
		if m.Currency == "" {
			m.Currency = l.Currency
		}
	}
	return m
}

// totalLocked recomputes subtotal + freight - discount from scratch on every
// call; nothing here is cached across step transitions.
func (s *Service) totalLocked(sess *session) domain.Money {
	total := s.subtotalLocked(sess)
	if sess.s.ShippingOption != nil {
		total.Amount += sess.s.ShippingOption.Freight.Amount
	}
	total.Amount -= sess.s.Discount
	return total
}

func (s *Service) viewLocked(sess *session) View {
	subtotal := s.subtotalLocked(sess)
	freight := domain.Money{Currency: subtotal.Currency}
	if sess.s.ShippingOption != nil {
		freight = sess.s.ShippingOption.Freight
	}
	return View{
		Session:    sess.s,
		Steps:      domain.Steps(sess.s.HasShippingStep),
		Subtotal:   subtotal,
		Freight:    freight,
		Discount:   sess.s.Discount,
		Total:      s.totalLocked(sess),
		QuoteError: sess.quoteErr,
	}
}
