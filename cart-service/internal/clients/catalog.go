package clients

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/fjod/fitlyf/pkg/contracts"
	"golang.org/x/sync/singleflight"
)

// CatalogClient reads products. Concurrent identical requests share one call.
type CatalogClient struct {
	c   *Client
	sfg singleflight.Group
}

func NewCatalogClient(c *Client) *CatalogClient { return &CatalogClient{c: c} }

func (cc *CatalogClient) ListProducts(ctx context.Context, category string) ([]contracts.Product, error) {
	q := url.Values{}
	if category != "" {
		q.Set("category", category)
	}
	v, err, _ := cc.sfg.Do("list:"+category, func() (interface{}, error) {
		var resp contracts.ProductsResponse
		if err := cc.c.doJSON(ctx, http.MethodGet, "/products", q.Encode(), nil, &resp); err != nil {
			return nil, err
		}
		if resp.Products == nil {
			resp.Products = []contracts.Product{}
		}
		return resp.Products, nil
	})
	if err != nil {
		return nil, err
	}
	products := v.([]contracts.Product)
	out := make([]contracts.Product, len(products))
	copy(out, products)
	return out, nil
}

func (cc *CatalogClient) GetProduct(ctx context.Context, id string) (*contracts.Product, error) {
	v, err, _ := cc.sfg.Do("product:"+id, func() (interface{}, error) {
		var p contracts.Product
		if err := cc.c.doJSON(ctx, http.MethodGet, "/products/"+url.PathEscape(id), "", nil, &p); err != nil {
			var apiErr *APIError
			if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
				return nil, ErrNotFound
			}
			return nil, err
		}
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	p := v.(contracts.Product)
	return &p, nil
}
