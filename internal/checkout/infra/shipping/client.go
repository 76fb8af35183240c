package shipping

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/evermall/storefront/internal/checkout/app"
	"github.com/evermall/storefront/internal/checkout/domain"
)

// Client calls the freight-quote API of the logistics aggregator. One call
// covers one origin country; checkout fans out per origin.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{baseURL: baseURL, http: httpClient}
}

type quoteRequest struct {
	OriginCountry string      `json:"origin_country"`
	DestCountry   string      `json:"dest_country"`
	Zip           string      `json:"zip"`
	Items         []quoteItem `json:"items"`
}

type quoteItem struct {
	ExternalRef string `json:"external_ref"`
	Quantity    int32  `json:"quantity"`
}

type quoteResponse struct {
	Options []struct {
		LogisticName string `json:"logistic_name"`
		ShippingTime string `json:"shipping_time"`
		Freight      string `json:"freight"`
		Currency     string `json:"currency"`
	} `json:"options"`
}

func (c *Client) Quote(ctx context.Context, originCountry, destCountry, zip string, items []app.QuoteItem) ([]domain.ShippingOption, error) {
	payload := quoteRequest{
		OriginCountry: originCountry,
		DestCountry:   destCountry,
		Zip:           zip,
	}
	for _, it := range items {
		payload.Items = append(payload.Items, quoteItem{ExternalRef: it.ExternalRef, Quantity: it.Quantity})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/freight/quote", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("shipping: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("shipping: unexpected status %d", resp.StatusCode)
	}

	var dto quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&dto); err != nil {
		return nil, fmt.Errorf("shipping: decode quote: %w", err)
	}

	options := make([]domain.ShippingOption, 0, len(dto.Options))
	for _, o := range dto.Options {
		freight, err := decimal.NewFromString(o.Freight)
		if err != nil {
			return nil, fmt.Errorf("shipping: freight %q: %w", o.Freight, err)
		}
		options = append(options, domain.ShippingOption{
			LogisticName: o.LogisticName,
			ShippingTime: o.ShippingTime,
			Freight: domain.Money{
				Currency: o.Currency,
				Amount:   freight.Mul(decimal.NewFromInt(100)).Round(0).IntPart(),
			},
		})
	}
	return options, nil
}
