package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/evermall/storefront/internal/checkout/app"
)

// OrderClient records placed orders with the marketplace.
type OrderClient struct {
	baseURL string
	http    *http.Client
}

func NewOrderClient(baseURL string, httpClient *http.Client) *OrderClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &OrderClient{baseURL: baseURL, http: httpClient}
}

type orderItemDTO struct {
	ProductID  string `json:"product_id"`
	VariantID  string `json:"variant_id,omitempty"`
	Name       string `json:"name"`
	Quantity   int32  `json:"quantity"`
	UnitAmount int64  `json:"unit_amount"`
}

type createOrderDTO struct {
	UserID           string         `json:"user_id"`
	Items            []orderItemDTO `json:"items"`
	ShippingAddress  addressDTO     `json:"shipping_address"`
	ShippingMethod   string         `json:"shipping_method,omitempty"`
	ShippingAmount   int64          `json:"shipping_amount"`
	PaymentMethod    string         `json:"payment_method"`
	TotalAmount      int64          `json:"total_amount"`
	Currency         string         `json:"currency"`
	PaymentIntentRef string         `json:"payment_intent_ref,omitempty"`
}

type addressDTO struct {
	FullName string `json:"full_name"`
	Line1    string `json:"line1"`
	Line2    string `json:"line2,omitempty"`
	City     string `json:"city"`
	Zip      string `json:"zip"`
	Country  string `json:"country"`
	Phone    string `json:"phone,omitempty"`
}

func (c *OrderClient) Create(ctx context.Context, draft app.OrderDraft) (string, error) {
	dto := createOrderDTO{
		UserID:           draft.UserID,
		ShippingMethod:   draft.ShippingMethod,
		ShippingAmount:   draft.ShippingCost.Amount,
		PaymentMethod:    string(draft.PaymentMethod),
		TotalAmount:      draft.Total.Amount,
		Currency:         draft.Total.Currency,
		PaymentIntentRef: draft.PaymentIntentRef,
		ShippingAddress: addressDTO{
			FullName: draft.ShippingAddress.FullName,
			Line1:    draft.ShippingAddress.Line1,
			Line2:    draft.ShippingAddress.Line2,
			City:     draft.ShippingAddress.City,
			Zip:      draft.ShippingAddress.Zip,
			Country:  draft.ShippingAddress.Country,
			Phone:    draft.ShippingAddress.Phone,
		},
	}
	for _, it := range draft.Items {
		dto.Items = append(dto.Items, orderItemDTO{
			ProductID:  it.ProductID,
			VariantID:  it.VariantID,
			Name:       it.Name,
			Quantity:   it.Quantity,
			UnitAmount: it.UnitAmount,
		})
	}

	body, err := json.Marshal(dto)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("orders: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("orders: unexpected status %d", resp.StatusCode)
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("orders: decode response: %w", err)
	}
	return out.ID, nil
}
