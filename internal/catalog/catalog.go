// Package catalog is the read-only product browse client. It needs no
// session; the endpoints are public.
package catalog

import (
	"context"
	"errors"
	"net/url"
	"strconv"

	"github.com/tauseefhaider1/clientfinalproject/internal/api"
)

var ErrProductNotFound = errors.New("product not found")

type Product struct {
	ID          string  `json:"_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	Category    string  `json:"category"`
	Stock       int     `json:"stock"`
}

// Filter narrows a product listing. Zero values are not sent.
type Filter struct {
	Category string
	Search   string
	MinPrice float64
	MaxPrice float64
	InStock  bool
}

type Client struct {
	api *api.Client
}

func NewClient(apiClient *api.Client) *Client {
	return &Client{api: apiClient}
}

func (c *Client) List(ctx context.Context, f Filter) ([]Product, error) {
	q := url.Values{}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.MinPrice > 0 {
		q.Set("minPrice", strconv.FormatFloat(f.MinPrice, 'f', -1, 64))
	}
	if f.MaxPrice > 0 {
		q.Set("maxPrice", strconv.FormatFloat(f.MaxPrice, 'f', -1, 64))
	}
	if f.InStock {
		q.Set("inStock", "true")
	}

	path := "/product"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp struct {
		Success  bool      `json:"success"`
		Products []Product `json:"products"`
	}
	if err := c.api.Get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.Products, nil
}

func (c *Client) Get(ctx context.Context, id string) (*Product, error) {
	var resp struct {
		Success bool     `json:"success"`
		Product *Product `json:"product"`
	}
	if err := c.api.Get(ctx, "/product/"+id, &resp); err != nil {
		if api.StatusOf(err) == 404 {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if resp.Product == nil {
		return nil, ErrProductNotFound
	}
	return resp.Product, nil
}

func (c *Client) Categories(ctx context.Context) ([]string, error) {
	var resp struct {
		Success    bool     `json:"success"`
		Categories []string `json:"categories"`
	}
	if err := c.api.Get(ctx, "/categories", &resp); err != nil {
		return nil, err
	}
	return resp.Categories, nil
}
