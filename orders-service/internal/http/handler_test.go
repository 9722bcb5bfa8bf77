package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fjod/fitlyf/orders-service/internal/service"
	"github.com/fjod/fitlyf/pkg/contracts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type OrderServiceMock struct {
	placeFn func(contracts.OrderRequest) (*contracts.Order, error)
	orders  map[string]*contracts.Order
	getErr  error
}

func (m *OrderServiceMock) PlaceOrder(_ context.Context, req contracts.OrderRequest) (*contracts.Order, error) {
	return m.placeFn(req)
}

func (m *OrderServiceMock) GetOrder(_ context.Context, id string) (*contracts.Order, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if o, ok := m.orders[id]; ok {
		return o, nil
	}
	return nil, service.ErrOrderNotFound
}

func newTestRouter(m *OrderServiceMock) http.Handler {
	return NewRouter(NewOrdersHandler(m, 5*time.Second, 1<<20), zap.NewNop())
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) contracts.Response {
	t.Helper()
	var resp contracts.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestCreateOrder_Success(t *testing.T) {
	var got contracts.OrderRequest
	router := newTestRouter(&OrderServiceMock{placeFn: func(req contracts.OrderRequest) (*contracts.Order, error) {
		got = req
		return &contracts.Order{ID: "o-1"}, nil
	}})

	body := `{"customer":{"firstName":"Asha"},"items":[{"productId":"p1","price":1000,"quantity":2}],
	          "shipping":{"method":"express"},"payment":{"method":"upi"},"totals":{"total":"2559.00"}}`
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)
	assert.Equal(t, "o-1", resp.OrderID)
	assert.Equal(t, "p1", got.Items[0].ProductID)
	assert.Equal(t, contracts.PaymentUPI, got.Payment.Method)
}

func TestCreateOrder_InvalidJSON(t *testing.T) {
	router := newTestRouter(&OrderServiceMock{})
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader("invalid json"))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, decodeResponse(t, rec).Success)
}

func TestCreateOrder_ValidationFailure(t *testing.T) {
	router := newTestRouter(&OrderServiceMock{placeFn: func(req contracts.OrderRequest) (*contracts.Order, error) {
		s := service.NewOrderService(nil, zap.NewNop())
		return s.PlaceOrder(context.Background(), req)
	}})
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"shipping":{"method":"standard"},"payment":{"method":"card"}}`))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, "Order validation failed", resp.Message)
	assert.Contains(t, resp.Errors, "First name is required")
	assert.Contains(t, resp.Errors, "Order must contain at least one item")
}

func TestCreateOrder_InternalError(t *testing.T) {
	router := newTestRouter(&OrderServiceMock{placeFn: func(contracts.OrderRequest) (*contracts.Order, error) {
		return nil, errors.New("db down")
	}})
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to place order", decodeResponse(t, rec).Message)
}

func TestGetOrder(t *testing.T) {
	router := newTestRouter(&OrderServiceMock{orders: map[string]*contracts.Order{
		"o-1": {ID: "o-1", Status: contracts.OrderStatusProcessing},
	}})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/o-1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var order contracts.Order
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&order))
	assert.Equal(t, "o-1", order.ID)
	assert.Equal(t, contracts.OrderStatusProcessing, order.Status)
}

func TestGetOrder_NotFound(t *testing.T) {
	router := newTestRouter(&OrderServiceMock{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "order not found", decodeResponse(t, rec).Message)
}

func TestGetOrder_InternalError(t *testing.T) {
	router := newTestRouter(&OrderServiceMock{getErr: errors.New("db down")})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/o-1", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
