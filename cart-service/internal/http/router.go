package http

import (
	"net/http"
	"time"

	"github.com/fjod/fitlyf/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

type RouterConfig struct {
	RequestTimeout time.Duration
	PollInterval   time.Duration
	MaxBodyBytes   int64
}

// NewRouter wires every cart-service endpoint.
func NewRouter(sessions SessionSource, catalog ProductCatalog, cfg RouterConfig, log *zap.Logger) http.Handler {
	cartHandler := NewCartHandler(catalog, cfg.RequestTimeout, cfg.MaxBodyBytes)
	checkoutHandler := NewCheckoutHandler(cfg.RequestTimeout, cfg.MaxBodyBytes)
	ordersHandler := NewOrdersHandler(cfg.RequestTimeout, cfg.PollInterval)
	productHandler := NewProductHandler(catalog, cfg.RequestTimeout)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.Middleware(log))
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", productHandler.List)

		r.Group(func(r chi.Router) {
			r.Use(SessionMiddleware(sessions))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartHandler.GetCart)
				r.Delete("/", cartHandler.ClearCart)
				r.Post("/items", cartHandler.AddItem)
				r.Put("/items/{product_id}", cartHandler.UpdateQuantity)
				r.Delete("/items/{product_id}", cartHandler.RemoveItem)
			})

			r.Route("/checkout", func(r chi.Router) {
				r.Get("/", checkoutHandler.Get)
				r.Put("/details", checkoutHandler.UpdateDetails)
				r.Put("/shipping", checkoutHandler.UpdateShipping)
				r.Put("/payment", checkoutHandler.UpdatePayment)
				r.Post("/next", checkoutHandler.Next)
				r.Post("/previous", checkoutHandler.Previous)
				r.Post("/place", checkoutHandler.Place)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/last", ordersHandler.LastOrder)
				r.Get("/{order_id}", ordersHandler.GetOrder)
				r.Get("/{order_id}/watch", ordersHandler.WatchOrder)
			})
		})
	})

	return otelhttp.NewHandler(r, "cart-service")
}
