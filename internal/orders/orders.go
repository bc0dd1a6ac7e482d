// Package orders is the order-history client. Orders are created and owned
// server-side; this package only reads them back.
package orders

import (
	"context"
	"errors"
	"time"

	"github.com/tauseefhaider1/clientfinalproject/internal/api"
)

var ErrOrderNotFound = errors.New("order not found")

type Item struct {
	Product  string  `json:"product"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Image    string  `json:"image"`
}

type ShippingAddress struct {
	FullName   string `json:"fullName"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Phone      string `json:"phone"`
}

type Order struct {
	ID              string          `json:"_id"`
	Items           []Item          `json:"items"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
	TotalAmount     float64         `json:"totalAmount"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"createdAt"`
}

type Client struct {
	api *api.Client
}

func NewClient(apiClient *api.Client) *Client {
	return &Client{api: apiClient}
}

// Mine lists the authenticated user's orders, newest first per the backend.
func (c *Client) Mine(ctx context.Context) ([]Order, error) {
	var resp struct {
		Success bool    `json:"success"`
		Orders  []Order `json:"orders"`
	}
	if err := c.api.Get(ctx, "/orders/my", &resp); err != nil {
		return nil, err
	}
	return resp.Orders, nil
}

func (c *Client) Get(ctx context.Context, id string) (*Order, error) {
	var resp struct {
		Success bool   `json:"success"`
		Order   *Order `json:"order"`
	}
	if err := c.api.Get(ctx, "/orders/"+id, &resp); err != nil {
		if api.StatusOf(err) == 404 {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if resp.Order == nil {
		return nil, ErrOrderNotFound
	}
	return resp.Order, nil
}
