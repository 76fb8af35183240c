package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/evermall/storefront/internal/catalog/app"
	"github.com/evermall/storefront/internal/catalog/domain"
	"github.com/evermall/storefront/internal/catalog/variant"
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
	e.GET("/products/:id", h.getProduct)
	e.POST("/products/:id/resolve", h.resolveSelection)
}

type styleOptionDTO struct {
	Key          string `json:"key"`
	Label        string `json:"label"`
	Image        string `json:"image,omitempty"`
	VariantCount int    `json:"variant_count"`
}

type facetsDTO struct {
	HasGender    bool             `json:"has_gender"`
	HasSizeFacet bool             `json:"has_size_facet"`
	Styles       []styleOptionDTO `json:"styles"`
	Sizes        []string         `json:"sizes"`
}

type resolvedVariantDTO struct {
	ID          string `json:"id"`
	ExternalRef string `json:"external_ref,omitempty"`
	RawKey      string `json:"raw_key,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}

type moneyDTO struct {
	Currency string `json:"currency"`
	Amount   int64  `json:"amount"`
}

type productPageDTO struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	Facets      facetsDTO           `json:"facets"`
	Resolved    *resolvedVariantDTO `json:"resolved,omitempty"`
	Price       moneyDTO            `json:"price"`
	Stock       int32               `json:"stock"`
	Image       string              `json:"image,omitempty"`
}

func (h *Handler) getProduct(c echo.Context) error {
	page, err := h.svc.GetProductPage(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.mapErr(c, err)
	}
	return c.JSON(http.StatusOK, toPageDTO(page))
}

type resolveRequest struct {
	Style string `json:"style"`
	Size  string `json:"size"`
}

func (h *Handler) resolveSelection(c echo.Context) error {
	var req resolveRequest
	if err := c.Bind(&req); err != nil {
		return httperr.JSON(c, http.StatusBadRequest, "BAD_REQUEST", "malformed request body")
	}
	sel := variant.Selection{Style: req.Style, Size: req.Size}
	page, err := h.svc.ResolveSelection(c.Request().Context(), c.Param("id"), sel)
	if err != nil {
		if errors.Is(err, app.ErrNoMatch) {
			// the page still renders; the client shows the combination as
			// unavailable
			return c.JSON(http.StatusUnprocessableEntity, toPageDTO(page))
		}
		return h.mapErr(c, err)
	}
	return c.JSON(http.StatusOK, toPageDTO(page))
}

func (h *Handler) mapErr(c echo.Context, err error) error {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		return httperr.JSON(c, http.StatusBadRequest, "INVALID_INPUT", err.Error())
	case errors.Is(err, app.ErrNotFound):
		return httperr.JSON(c, http.StatusNotFound, "NOT_FOUND", "product not found")
	default:
		h.log.Error("catalog request failed", slog.Any("err", err))
		return httperr.JSON(c, http.StatusBadGateway, "UPSTREAM_FAILED", "product source unavailable")
	}
}

func toPageDTO(page app.ProductPage) productPageDTO {
	dto := productPageDTO{
		ID:          page.Product.ID,
		Name:        page.Product.Name,
		Description: page.Product.Description,
		Facets:      toFacetsDTO(page.Facets),
		Price:       moneyDTO{Currency: page.Price.Currency, Amount: page.Price.Amount},
		Stock:       page.Stock,
		Image:       page.Image,
	}
	if page.Resolved != nil {
		dto.Resolved = toResolvedDTO(page.Resolved)
	}
	return dto
}

func toFacetsDTO(f variant.AttributeSet) facetsDTO {
	dto := facetsDTO{
		HasGender:    f.HasGender,
		HasSizeFacet: f.HasSizeFacet,
		Styles:       make([]styleOptionDTO, 0, len(f.Styles)),
		Sizes:        f.Sizes,
	}
	if dto.Sizes == nil {
		dto.Sizes = []string{}
	}
	for _, s := range f.Styles {
		dto.Styles = append(dto.Styles, styleOptionDTO{
			Key:          s.Key,
			Label:        s.Label,
			Image:        s.Image,
			VariantCount: s.VariantCount,
		})
	}
	return dto
}

func toResolvedDTO(v *domain.Variant) *resolvedVariantDTO {
	return &resolvedVariantDTO{
		ID:          v.ID,
		ExternalRef: v.ExternalRef,
		RawKey:      v.RawKey,
		DisplayName: v.DisplayName,
	}
}
