// Package catalog is a read-only client for the primary shop catalog API.
// The catalog owns product CRUD; this service only lists and fetches
// products to keep the vector index in sync.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/onshop/prodvec/internal/domain"
)

// Client talks to the shop backend's /products endpoints.
type Client struct {
	baseURL    string
	pageSize   int
	httpClient *http.Client
}

// Config holds catalog client settings.
type Config struct {
	BaseURL  string
	Timeout  time.Duration
	PageSize int
}

// NewClient creates a catalog client.
func NewClient(cfg Config) *Client {
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 100
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:  cfg.BaseURL,
		pageSize: pageSize,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ListAll fetches the full catalog, paginating until a short page.
func (c *Client) ListAll(ctx context.Context) ([]domain.Product, error) {
	var all []domain.Product

	for page := 0; ; page++ {
		url := fmt.Sprintf("%s/products?page=%d&size=%d", c.baseURL, page, c.pageSize)

		var items []productDTO
		if err := c.getJSON(ctx, url, &items); err != nil {
			return nil, fmt.Errorf("list products page %d: %w", page, err)
		}

		for _, item := range items {
			all = append(all, item.toDomain())
		}

		if len(items) < c.pageSize {
			break
		}
	}

	return all, nil
}

// GetByID fetches a single product. Returns domain.ErrNotFound for 404.
func (c *Client) GetByID(ctx context.Context, id int64) (domain.Product, error) {
	url := fmt.Sprintf("%s/products/%d", c.baseURL, id)

	var item productDTO
	if err := c.getJSON(ctx, url, &item); err != nil {
		return domain.Product{}, fmt.Errorf("get product %d: %w", id, err)
	}

	return item.toDomain(), nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// productDTO mirrors the catalog API's product JSON.
type productDTO struct {
	ProductID   int64  `json:"productId"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CategoryID  int64  `json:"categoryId"`
	Category    string `json:"categoryName"`
	Price       int64  `json:"price"`
}

func (d productDTO) toDomain() domain.Product {
	category := d.Category
	if category == "" && d.CategoryID != 0 {
		category = fmt.Sprintf("%d", d.CategoryID)
	}
	return domain.Product{
		ID:          d.ProductID,
		Name:        d.Name,
		Description: d.Description,
		Category:    category,
		Price:       d.Price,
	}
}
