package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/evermall/storefront/internal/checkout/app"
	"github.com/evermall/storefront/internal/checkout/domain"
	"github.com/evermall/storefront/internal/platform/httperr"
)

type Handler struct {
	svc *app.Service
	log *slog.Logger
}

func NewHandler(svc *app.Service, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, log: log}
}

func (h *Handler) Register(e *echo.Echo) {
	e.POST("/checkout", h.start)
	e.GET("/checkout", h.session)
	e.GET("/checkout/addresses", h.savedAddresses)
	e.POST("/checkout/address", h.submitAddress)
	e.POST("/checkout/shipping/quotes", h.ensureQuotes)
	e.POST("/checkout/shipping/select", h.selectShipping)
	e.POST("/checkout/shipping/confirm", h.confirmShipping)
	e.POST("/checkout/payment/method", h.selectPaymentMethod)
	e.POST("/checkout/payment/confirm", h.confirmPayment)
	e.POST("/checkout/discount", h.applyDiscount)
	e.POST("/checkout/back", h.back)
	e.POST("/checkout/place-order", h.placeOrder)
}

func userID(c echo.Context) string {
	return c.Request().Header.Get("X-User-ID")
}

type moneyDTO struct {
	Currency string `json:"currency"`
	Amount   int64  `json:"amount"`
}

type addressDTO struct {
	ID       string `json:"id,omitempty"`
	FullName string `json:"full_name"`
	Line1    string `json:"line1"`
	Line2    string `json:"line2,omitempty"`
	City     string `json:"city"`
	Zip      string `json:"zip"`
	Country  string `json:"country"`
	Phone    string `json:"phone,omitempty"`
}

type shippingOptionDTO struct {
	LogisticName string   `json:"logistic_name"`
	ShippingTime string   `json:"shipping_time"`
	Freight      moneyDTO `json:"freight"`
}

type viewDTO struct {
	SessionID       string              `json:"session_id"`
	Step            string              `json:"step"`
	Steps           []string            `json:"steps"`
	Address         *addressDTO         `json:"address,omitempty"`
	ShippingOptions []shippingOptionDTO `json:"shipping_options"`
	ShippingOption  *shippingOptionDTO  `json:"shipping_option,omitempty"`
	PaymentMethod   string              `json:"payment_method"`
	PaymentSecret   string              `json:"payment_secret,omitempty"`
	Subtotal        moneyDTO            `json:"subtotal"`
	Freight         moneyDTO            `json:"freight"`
	Discount        int64               `json:"discount"`
	Total           moneyDTO            `json:"total"`
	QuoteError      string              `json:"quote_error,omitempty"`
}

func (h *Handler) start(c echo.Context) error {
	view, err := h.svc.Start(c.Request().Context(), userID(c))
	if err != nil {
		return h.mapErr(c, err)
	}
	return c.JSON(http.StatusCreated, toViewDTO(view))
}

func (h *Handler) session(c echo.Context) error {
	view, err := h.svc.Session(userID(c))
	if err != nil {
		return h.mapErr(c, err)
	}
	return c.JSON(http.StatusOK, toViewDTO(view))
}

func (h *Handler) savedAddresses(c echo.Context) error {
	addrs, err := h.svc.SavedAddresses(c.Request().Context(), userID(c))
	if err != nil {
		return h.mapErr(c, err)
	}
	out := make([]addressDTO, 0, len(addrs))
	for _, a := range addrs {
		out = append(out, toAddressDTO(a))
	}
	return c.JSON(http.StatusOK, out)
}

type submitAddressRequest struct {
	AddressID string      `json:"address_id"`
	Address   *addressDTO `json:"address"`
}

func (h *Handler) submitAddress(c echo.Context) error {
	var req submitAddressRequest
	if err := c.Bind(&req); err != nil {
		return httperr.JSON(c, http.StatusBadRequest, "BAD_REQUEST", "malformed request body")
	}
	in := app.AddressInput{AddressID: req.AddressID}
	if req.Address != nil {
		in.Address = domain.Address{
			FullName: req.Address.FullName,
			Line1:    req.Address.Line1,
			Line2:    req.Address.Line2,
			City:     req.Address.City,
			Zip:      req.Address.Zip,
			Country:  req.Address.Country,
			Phone:    req.Address.Phone,
		}
	}
	view, err := h.svc.SubmitAddress(c.Request().Context(), userID(c), in)
	if err != nil {
		return h.mapErr(c, err)
	}
	return c.JSON(http.StatusOK, toViewDTO(view))
}

func (h *Handler) ensureQuotes(c echo.Context) error {
	view, err := h.svc.EnsureQuotes(c.Request().Context(), userID(c))
	if err != nil && !errors.Is(err, app.ErrQuoteUnavailable) {
		return h.mapErr(c, err)
	}
	// a quote failure still renders the step; the view carries the error
	return c.JSON(http.StatusOK, toViewDTO(view))
}

type selectShippingRequest struct {
	LogisticName string `json:"logistic_name"`
}

func (h *Handler) selectShipping(c echo.Context) error {
	var req selectShippingRequest
	if err := c.Bind(&req); err != nil {
		return httperr.JSON(c, http.StatusBadRequest, "BAD_REQUEST", "malformed request body")
	}
	view, err := h.svc.SelectShipping(c.Request().Context(), userID(c), req.LogisticName)
	if err != nil {
		return h.mapErr(c, err)
	}
	return c.JSON(http.StatusOK, toViewDTO(view))
}

func (h *Handler) confirmShipping(c echo.Context) error {
	view, err := h.svc.ConfirmShipping(c.Request().Context(), userID(c))
	if err != nil {
		return h.mapErr(c, err)
	}
	return c.JSON(http.StatusOK, toViewDTO(view))
}

type selectPaymentMethodRequest struct {
	Method string `json:"method"`
}

func (h *Handler) selectPaymentMethod(c echo.Context) error {
	var req selectPaymentMethodRequest
	if err := c.Bind(&req); err != nil {
		return httperr.JSON(c, http.StatusBadRequest, "BAD_REQUEST", "malformed request body")
	}
	view, err := h.svc.SelectPaymentMethod(c.Request().Context(), userID(c), domain.PaymentMethod(req.Method))
	if err != nil {
		return h.mapErr(c, err)
	}
	return c.JSON(http.StatusOK, toViewDTO(view))
}

func (h *Handler) confirmPayment(c echo.Context) error {
	view, err := h.svc.ConfirmPayment(c.Request().Context(), userID(c))
	if err != nil {
		return h.mapErr(c, err)
	}
	return c.JSON(http.StatusOK, toViewDTO(view))
}

type applyDiscountRequest struct {
	Amount int64 `json:"amount"`
}

func (h *Handler) applyDiscount(c echo.Context) error {
	var req applyDiscountRequest
	if err := c.Bind(&req); err != nil {
		return httperr.JSON(c, http.StatusBadRequest, "BAD_REQUEST", "malformed request body")
	}
	view, err := h.svc.ApplyDiscount(c.Request().Context(), userID(c), req.Amount)
	if err != nil {
		return h.mapErr(c, err)
	}
	return c.JSON(http.StatusOK, toViewDTO(view))
}

func (h *Handler) back(c echo.Context) error {
	view, err := h.svc.Back(c.Request().Context(), userID(c))
	if err != nil {
		return h.mapErr(c, err)
	}
	return c.JSON(http.StatusOK, toViewDTO(view))
}

type placeOrderResponse struct {
	OrderID string `json:"order_id,omitempty"`
	Pending bool   `json:"pending,omitempty"`
}

func (h *Handler) placeOrder(c echo.Context) error {
	res, err := h.svc.PlaceOrder(c.Request().Context(), userID(c))
	if err != nil {
		return h.mapErr(c, err)
	}
	if res.Pending {
		return c.JSON(http.StatusAccepted, placeOrderResponse{Pending: true})
	}
	return c.JSON(http.StatusCreated, placeOrderResponse{OrderID: res.OrderID})
}

func (h *Handler) mapErr(c echo.Context, err error) error {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		return httperr.JSON(c, http.StatusBadRequest, "INVALID_INPUT", err.Error())
	case errors.Is(err, app.ErrNotFound):
		return httperr.JSON(c, http.StatusNotFound, "NO_SESSION", "no active checkout session")
	case errors.Is(err, app.ErrEmptyCart):
		return httperr.JSON(c, http.StatusConflict, "EMPTY_CART", "cart is empty")
	case errors.Is(err, app.ErrStepBlocked):
		return httperr.JSON(c, http.StatusConflict, "STEP_BLOCKED", "operation not valid for the current step")
	case errors.Is(err, app.ErrQuoteUnavailable):
		return httperr.JSON(c, http.StatusConflict, "QUOTE_UNAVAILABLE", "no shipping options available for this address")
	case errors.Is(err, app.ErrOrderNotRecorded):
		// payment may be captured; the client must not blindly retry
		return httperr.JSON(c, http.StatusBadGateway, "ORDER_NOT_RECORDED", err.Error())
	case errors.Is(err, app.ErrPaymentSetup):
		return httperr.JSON(c, http.StatusBadGateway, "PAYMENT_SETUP_FAILED", "payment setup failed, re-select the payment method to retry")
	default:
		h.log.Error("checkout request failed", slog.Any("err", err))
		return httperr.JSON(c, http.StatusInternalServerError, "INTERNAL", "checkout operation failed")
	}
}

func toViewDTO(v app.View) viewDTO {
	dto := viewDTO{
		SessionID:       v.Session.ID,
		Step:            string(v.Session.Step),
		Steps:           make([]string, 0, len(v.Steps)),
		ShippingOptions: make([]shippingOptionDTO, 0, len(v.Session.ShippingOptions)),
		PaymentMethod:   string(v.Session.PaymentMethod),
		PaymentSecret:   v.Session.PaymentSecret,
		Subtotal:        moneyDTO{Currency: v.Subtotal.Currency, Amount: v.Subtotal.Amount},
		Freight:         moneyDTO{Currency: v.Freight.Currency, Amount: v.Freight.Amount},
		Discount:        v.Discount,
		Total:           moneyDTO{Currency: v.Total.Currency, Amount: v.Total.Amount},
		QuoteError:      v.QuoteError,
	}
	for _, s := range v.Steps {
		dto.Steps = append(dto.Steps, string(s))
	}
	if v.Session.Address != nil {
		a := toAddressDTO(*v.Session.Address)
		dto.Address = &a
	}
	for _, o := range v.Session.ShippingOptions {
		dto.ShippingOptions = append(dto.ShippingOptions, toOptionDTO(o))
	}
	if v.Session.ShippingOption != nil {
		o := toOptionDTO(*v.Session.ShippingOption)
		dto.ShippingOption = &o
	}
	return dto
}

func toAddressDTO(a domain.Address) addressDTO {
	return addressDTO{
		ID:       a.ID,
		FullName: a.FullName,
		Line1:    a.Line1,
		Line2:    a.Line2,
		City:     a.City,
		Zip:      a.Zip,
		Country:  a.Country,
		Phone:    a.Phone,
	}
}

func toOptionDTO(o domain.ShippingOption) shippingOptionDTO {
	return shippingOptionDTO{
		LogisticName: o.LogisticName,
		ShippingTime: o.ShippingTime,
		Freight:      moneyDTO{Currency: o.Freight.Currency, Amount: o.Freight.Amount},
	}
}
