package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/evermall/storefront/internal/cart/app"
	"github.com/evermall/storefront/internal/cart/domain"
	catalogapp "github.com/evermall/storefront/internal/catalog/app"
	"github.com/evermall/storefront/internal/catalog/variant"
	"github.com/evermall/storefront/internal/platform/httperr"
)

// Handler exposes the cart over HTTP. Adding an item goes through the catalog
// service first so the stored line snapshots the resolved variant, not the
// raw selection.
type Handler struct {
	cart    *app.Service
	catalog *catalogapp.Service
	log     *slog.Logger
}

func NewHandler(cart *app.Service, catalog *catalogapp.Service, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{cart: cart, catalog: catalog, log: log}
}

func (h *Handler) Register(e *echo.Echo) {
	e.GET("/cart", h.getCart)
	e.POST("/cart/items", h.addItem)
	e.PATCH("/cart/items/:lineID", h.setQuantity)
	e.DELETE("/cart/items/:lineID", h.removeItem)
	e.DELETE("/cart", h.clear)
}

func userID(c echo.Context) string {
	return c.Request().Header.Get("X-User-ID")
}

type lineDTO struct {
	ID                string   `json:"id"`
	ProductID         string   `json:"product_id"`
	VariantID         string   `json:"variant_id,omitempty"`
	Name              string   `json:"name"`
	Image             string   `json:"image,omitempty"`
	Quantity          int32    `json:"quantity"`
	UnitPrice         moneyDTO `json:"unit_price"`
	LineTotal         int64    `json:"line_total"`
	FulfillmentSource string   `json:"fulfillment_source"`
}

type moneyDTO struct {
	Currency string `json:"currency"`
	Amount   int64  `json:"amount"`
}

type cartDTO struct {
	ID                   string    `json:"id"`
	Lines                []lineDTO `json:"lines"`
	Subtotal             moneyDTO  `json:"subtotal"`
	RequiresFreightQuote bool      `json:"requires_freight_quote"`
}

func (h *Handler) getCart(c echo.Context) error {
	cart, err := h.cart.Get(c.Request().Context(), userID(c))
	if err != nil {
		return h.mapErr(c, err)
	}
	return c.JSON(http.StatusOK, toCartDTO(cart))
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
	Style     string `json:"style"`
	Size      string `json:"size"`
	Quantity  int32  `json:"quantity"`
}

func (h *Handler) addItem(c echo.Context) error {
	var req addItemRequest
	if err := c.Bind(&req); err != nil {
		return httperr.JSON(c, http.StatusBadRequest, "BAD_REQUEST", "malformed request body")
	}

	ctx := c.Request().Context()
	sel := variant.Selection{Style: req.Style, Size: req.Size}
	page, err := h.catalog.ResolveSelection(ctx, req.ProductID, sel)
	if err != nil {
		if errors.Is(err, catalogapp.ErrNoMatch) {
			return httperr.JSON(c, http.StatusUnprocessableEntity, "COMBINATION_UNAVAILABLE", "no variant matches the selected options")
		}
		return h.mapCatalogErr(c, err)
	}
	if page.Resolved == nil && len(page.Product.Variants) > 0 {
		return httperr.JSON(c, http.StatusUnprocessableEntity, "SELECTION_REQUIRED", "select product options before adding to cart")
	}

	in := app.AddLineInput{
		ProductID:         page.Product.ID,
		Name:              page.Product.Name,
		Image:             page.Image,
		Quantity:          req.Quantity,
		UnitPrice:         domain.Money(page.Price),
		Stock:             page.Stock,
		FulfillmentSource: page.Product.FulfillmentSource,
		OriginCountry:     page.Product.OriginCountry,
	}
	if page.Resolved != nil {
		in.VariantID = page.Resolved.ID
		in.ExternalRef = page.Resolved.ExternalRef
	}

	cart, err := h.cart.AddLine(ctx, userID(c), in)
	if err != nil {
		return h.mapErr(c, err)
	}
	return c.JSON(http.StatusCreated, toCartDTO(cart))
}

type setQuantityRequest struct {
	Quantity int32 `json:"quantity"`
}

func (h *Handler) setQuantity(c echo.Context) error {
	var req setQuantityRequest
	if err := c.Bind(&req); err != nil {
		return httperr.JSON(c, http.StatusBadRequest, "BAD_REQUEST", "malformed request body")
	}
	cart, err := h.cart.SetQuantity(c.Request().Context(), userID(c), c.Param("lineID"), req.Quantity)
	if err != nil {
		return h.mapErr(c, err)
	}
	return c.JSON(http.StatusOK, toCartDTO(cart))
}

func (h *Handler) removeItem(c echo.Context) error {
	cart, err := h.cart.RemoveLine(c.Request().Context(), userID(c), c.Param("lineID"))
	if err != nil {
		return h.mapErr(c, err)
	}
	return c.JSON(http.StatusOK, toCartDTO(cart))
}

func (h *Handler) clear(c echo.Context) error {
	if err := h.cart.Clear(c.Request().Context(), userID(c)); err != nil {
		return h.mapErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) mapErr(c echo.Context, err error) error {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		return httperr.JSON(c, http.StatusBadRequest, "INVALID_INPUT", err.Error())
	case errors.Is(err, app.ErrStockExhausted):
		return httperr.JSON(c, http.StatusConflict, "OUT_OF_STOCK", "the selected variant is out of stock")
	default:
		h.log.Error("cart request failed", slog.Any("err", err))
		return httperr.JSON(c, http.StatusInternalServerError, "INTERNAL", "cart operation failed")
	}
}

func (h *Handler) mapCatalogErr(c echo.Context, err error) error {
	switch {
	case errors.Is(err, catalogapp.ErrInvalidInput):
		return httperr.JSON(c, http.StatusBadRequest, "INVALID_INPUT", err.Error())
	case errors.Is(err, catalogapp.ErrNotFound):
		return httperr.JSON(c, http.StatusNotFound, "NOT_FOUND", "product not found")
	default:
		h.log.Error("catalog lookup failed", slog.Any("err", err))
		return httperr.JSON(c, http.StatusBadGateway, "UPSTREAM_FAILED", "product source unavailable")
	}
}

func toCartDTO(cart domain.Cart) cartDTO {
	sub := cart.Subtotal()
	dto := cartDTO{
		ID:                   cart.ID,
		Lines:                make([]lineDTO, 0, len(cart.Lines)),
		Subtotal:             moneyDTO{Currency: sub.Currency, Amount: sub.Amount},
		RequiresFreightQuote: cart.RequiresFreightQuote(),
	}
	for _, l := range cart.Lines {
		dto.Lines = append(dto.Lines, lineDTO{
			ID:                l.ID,
			ProductID:         l.ProductID,
			VariantID:         l.VariantID,
			Name:              l.Name,
			Image:             l.Image,
			Quantity:          l.Quantity,
			UnitPrice:         moneyDTO{Currency: l.UnitPrice.Currency, Amount: l.UnitPrice.Amount},
			LineTotal:         l.Total(),
			FulfillmentSource: l.FulfillmentSource,
		})
	}
	return dto
}
