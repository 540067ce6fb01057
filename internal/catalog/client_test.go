package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/onshop/prodvec/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL, Timeout: 5 * time.Second, PageSize: 2})
}

func TestListAll_Paginates(t *testing.T) {
	pages := map[string][]productDTO{
		"0": {
			{ProductID: 1, Name: "protein bar", Category: "snacks", Price: 1500},
			{ProductID: 2, Name: "shaker", Category: "gear", Price: 9000},
		},
		"1": {
			{ProductID: 3, Name: "creatine", Category: "supplements", Price: 22000},
		},
	}

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		_ = json.NewEncoder(w).Encode(pages[page])
	})

	products, err := client.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(products) != 3 {
		t.Fatalf("expected 3 products, got %d", len(products))
	}
	if products[2].ID != 3 || products[2].Category != "supplements" {
		t.Errorf("unexpected last product: %+v", products[2])
	}
}

func TestGetByID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/products/7" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(productDTO{
			ProductID: 7, Name: "whey", Description: "vanilla", Category: "supplements", Price: 35000,
		})
	})

	p, err := client.GetByID(context.Background(), 7)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if p.ID != 7 || p.Name != "whey" || p.Price != 35000 {
		t.Errorf("unexpected product: %+v", p)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	_, err := client.GetByID(context.Background(), 404)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected domain.ErrNotFound, got %v", err)
	}
}

func TestListAll_ServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := client.ListAll(context.Background())
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
}
