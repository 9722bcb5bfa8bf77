package clients

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/fjod/fitlyf/pkg/contracts"
)

type OrdersClient struct{ c *Client }

func NewOrdersClient(c *Client) *OrdersClient { return &OrdersClient{c: c} }

// PlaceOrder posts the order and returns the id the Order API assigned. A
// response without success or without an id is an *APIError.
func (oc *OrdersClient) PlaceOrder(ctx context.Context, req contracts.OrderRequest) (string, error) {
	var resp contracts.Response
	if err := oc.c.doJSON(ctx, http.MethodPost, "/orders", "", req, &resp); err != nil {
		return "", err
	}
	if !resp.Success || resp.OrderID == "" {
		return "", &APIError{
			Service:    oc.c.Name,
			StatusCode: http.StatusOK,
			Message:    resp.Message,
			Errors:     resp.Errors,
		}
	}
	return resp.OrderID, nil
}

// GetOrder fetches the current snapshot of an order. Unknown ids yield
// ErrNotFound.
func (oc *OrdersClient) GetOrder(ctx context.Context, orderID string) (*contracts.Order, error) {
	var order contracts.Order
	err := oc.c.doJSON(ctx, http.MethodGet, "/orders/"+url.PathEscape(orderID), "", nil, &order)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	order.Normalize()
	return &order, nil
}
