package http

import (
	"net/http"

	"github.com/atinyakov/GophStore/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// Handlers bundles the endpoint groups mounted by NewRouter.
type Handlers struct {
	Stores    *StoreHandler
	Products  *ProductHandler
	Inventory *InventoryHandler
	Health    *HealthHandler
}

// NewRouter constructs the HTTP handler of the API.
//
// Routes:
//
//	GET    /api/health
//	GET    /api/stores
//	POST   /api/stores/auth
//	GET    /api/defective-products
//	GET    /api/defective-products/store/{storeId}
//	POST   /api/defective-products          (bearer, form)
//	PUT    /api/defective-products/{id}     (bearer, form)
//	DELETE /api/defective-products/{id}     (bearer)
//	legacy inventory under /api/produto, /api/produtos, /api/buscar
//
// JSON routes only accept application/json bodies and product writes only
// accept multipart or urlencoded forms.
func NewRouter(h Handlers, tokens middleware.TokenValidator, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(chiMiddleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(chiMiddleware.AllowContentType("application/json"))

			r.Get("/health", h.Health.Health)

			r.Get("/stores", h.Stores.List)
			r.Post("/stores/auth", h.Stores.Auth)

			r.Get("/defective-products", h.Products.List)
			r.Get("/defective-products/store/{storeId}", h.Products.ListByStore)

			r.Get("/produto/{id}", h.Inventory.Item)
			r.Get("/produto/rct/{rct}", h.Inventory.ItemByRCT)
			r.Post("/adicionar-produto", h.Inventory.Stock)
			r.Post("/substituir-produtos-prateleira", h.Inventory.ReplaceShelf)
			r.Get("/produtos/localizacao/{localizacao}", h.Inventory.PlacementsAt)
			r.Get("/produtos", h.Inventory.Placements)
			r.Get("/produtos-total", h.Inventory.Items)
			r.Delete("/produto/{id}", h.Inventory.DeletePlacement)
			r.Put("/produto/{id}/localizacao", h.Inventory.Relocate)
			r.Get("/buscar/{codigo}", h.Inventory.Search)
			r.Get("/buscar/rct/{rct}", h.Inventory.SearchByRCT)
		})

		// Protected group: requires a store session token
		r.Group(func(r chi.Router) {
			r.Use(middleware.StoreAuth(tokens))

			r.Delete("/defective-products/{id}", h.Products.Delete)

			r.Group(func(r chi.Router) {
				r.Use(chiMiddleware.AllowContentType("multipart/form-data", "application/x-www-form-urlencoded"))
				r.Post("/defective-products", h.Products.Create)
				r.Put("/defective-products/{id}", h.Products.Update)
			})
		})
	})

	return r
}
