package marketplace

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/evermall/storefront/internal/catalog/app"
	"github.com/evermall/storefront/internal/catalog/domain"
)

// Client reads products and their variant lists from the upstream
// marketplace REST API. Upstream prices are fractional decimal strings; they
// are converted to minor units on the way in so the rest of the service only
// ever handles integer amounts.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: baseURL, http: httpClient}
}

type productDTO struct {
	ID                string       `json:"id"`
	Name              string       `json:"name"`
	Description       string       `json:"description"`
	Currency          string       `json:"currency"`
	Price             string       `json:"price"`
	Stock             int32        `json:"stock"`
	Image             string       `json:"image"`
	FulfillmentSource string       `json:"fulfillment_source"`
	OriginCountry     string       `json:"origin_country"`
	Variants          []variantDTO `json:"variants"`
}

type variantDTO struct {
	ID          string  `json:"id"`
	ExternalRef string  `json:"external_ref"`
	Key         string  `json:"key"`
	Name        string  `json:"name"`
	Price       *string `json:"price"`
	Stock       *int32  `json:"stock"`
	Image       string  `json:"image"`
	Active      bool    `json:"active"`
}

func (c *Client) Product(ctx context.Context, id string) (domain.Product, error) {
	endpoint := fmt.Sprintf("%s/products/%s", c.baseURL, url.PathEscape(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.Product{}, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.Product{}, fmt.Errorf("marketplace: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.Product{}, app.ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return domain.Product{}, fmt.Errorf("marketplace: unexpected status %d", resp.StatusCode)
	}

	var dto productDTO
	if err := json.NewDecoder(resp.Body).Decode(&dto); err != nil {
		return domain.Product{}, fmt.Errorf("marketplace: decode product: %w", err)
	}
	return toDomain(dto)
}

func toDomain(dto productDTO) (domain.Product, error) {
	price, err := toMinorUnits(dto.Price)
	if err != nil {
		return domain.Product{}, fmt.Errorf("marketplace: product %s price: %w", dto.ID, err)
	}

	p := domain.Product{
		ID:                dto.ID,
		Name:              dto.Name,
		Description:       dto.Description,
		Price:             domain.Money{Currency: dto.Currency, Amount: price},
		Stock:             dto.Stock,
		Image:             dto.Image,
		FulfillmentSource: dto.FulfillmentSource,
		OriginCountry:     dto.OriginCountry,
	}

	for _, vd := range dto.Variants {
		v := domain.Variant{
			ID:          vd.ID,
			ProductID:   dto.ID,
			ExternalRef: vd.ExternalRef,
			RawKey:      vd.Key,
			DisplayName: vd.Name,
			Stock:       vd.Stock,
			Image:       vd.Image,
			Active:      vd.Active,
		}
		if vd.Price != nil {
			amount, err := toMinorUnits(*vd.Price)
			if err != nil {
				return domain.Product{}, fmt.Errorf("marketplace: variant %s price: %w", vd.ID, err)
			}
			v.Price = &domain.Money{Currency: dto.Currency, Amount: amount}
		}
		p.Variants = append(p.Variants, v)
	}
	return p, nil
}

func toMinorUnits(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart(), nil
}
