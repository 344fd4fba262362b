package router

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "persol/docs" // registra a especificação Swagger gerada

	"persol/internal/api/admin"
	"persol/internal/api/auth"
	"persol/internal/api/brand"
	"persol/internal/api/order"
	"persol/internal/api/product"
	"persol/internal/api/stock"
	"persol/internal/domain"
	"persol/internal/pkg/cache"
	"persol/internal/pkg/logger"
	"persol/internal/pkg/metrics"
	"persol/internal/pkg/middleware"
	"persol/internal/pkg/respond"
	"persol/internal/pkg/telemetry"
)

// Handlers reúne os handlers já inicializados por injeção de dependências.
type Handlers struct {
	Auth    *auth.Handler
	Product *product.Handler
	Brand   *brand.Handler
	Order   *order.Handler
	Admin   *admin.Handler
	Stock   *stock.Handler
}

// RateLimit configura o limitador global.
type RateLimit struct {
	Cache       cache.Client
	MaxRequests int
	Period      time.Duration
}

// NewRouter configura e retorna o roteador HTTP principal.
func NewRouter(h Handlers, gate *middleware.Gate, limit RateLimit, log logger.Logger) http.Handler {
	mux := http.NewServeMux()

	handle := func(pattern string, fn http.HandlerFunc) {
		mux.HandleFunc(pattern, telemetry.WithHTTPRoute(fn))
	}
	staffOrAdmin := gate.RequireRoles(domain.RoleStaff, domain.RoleAdmin)

	// --- 1. Infra ---
	mux.HandleFunc("/ping", PingHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/swagger/", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// --- 2. Autenticação ---
	handle("/v1/auth/register", h.Auth.RegisterHandler)
	handle("/v1/auth/login", h.Auth.LoginHandler)
	handle("/v1/auth/me", gate.RequireAuthenticated(h.Auth.MeHandler))

	// --- 3. Catálogo (público) ---
	handle("/v1/products", h.Product.ListProductsHandler)
	handle("/v1/products/compare", h.Product.CompareProductsHandler)
	handle("/v1/products/{id}", h.Product.GetProductHandler)
	handle("/v1/brands", h.Brand.ListBrandsHandler)
	handle("/v1/categories", h.Product.ListCategoriesHandler)

	// --- 4. Pedidos do cliente ---
	handle("/v1/orders", gate.RequireAuthenticated(h.Order.OrdersHandler))
	handle("/v1/orders/{id}", gate.RequireAuthenticated(h.Order.GetMyOrderHandler))

	// --- 5. Administração ---
	handle("/v1/admin/orders", gate.RequireAdmin(h.Admin.ListOrdersHandler))
	handle("/v1/admin/orders/{id}/status", gate.RequireAdmin(h.Admin.UpdateOrderStatusHandler))
	handle("/v1/admin/orders/{id}/payment", gate.RequireAdmin(h.Admin.UpdatePaymentStatusHandler))
	handle("/v1/admin/users", gate.RequireAdmin(h.Admin.ListUsersHandler))
	handle("/v1/admin/users/{id}", gate.RequireAdmin(h.Admin.DeleteUserHandler))
	handle("/v1/admin/brands", gate.RequireAdmin(h.Brand.CreateBrandHandler))
	handle("/v1/admin/brands/{id}", gate.RequireAdmin(byMethod(map[string]http.HandlerFunc{
		http.MethodPut:    h.Brand.RenameBrandHandler,
		http.MethodDelete: h.Brand.DeleteBrandHandler,
	})))
	handle("/v1/admin/products", gate.RequireAdmin(byMethod(map[string]http.HandlerFunc{
		http.MethodGet:  h.Product.AdminListProductsHandler,
		http.MethodPost: h.Product.CreateProductHandler,
	})))
	handle("/v1/admin/products/{id}", gate.RequireAdmin(byMethod(map[string]http.HandlerFunc{
		http.MethodGet: h.Product.AdminGetProductHandler,
		http.MethodPut: h.Product.UpdateProductHandler,
	})))
	handle("/v1/admin/products/{id}/status", gate.RequireAdmin(h.Product.SetProductStatusHandler))
	handle("/v1/admin/products/{id}/stock", staffOrAdmin(byMethod(map[string]http.HandlerFunc{
		http.MethodGet:  h.Stock.GetStockHandler,
		http.MethodPost: h.Stock.AdjustStockHandler,
	})))

	// --- 6. Middlewares globais ---
	var handler http.Handler = mux
	handler = middleware.RateLimiter(limit.Cache, limit.MaxRequests, limit.Period, log)(handler)
	handler = metrics.Middleware(handler)

	return handler
}

// byMethod despacha pelo verbo HTTP e responde 405 em JSON para os demais.
func byMethod(handlers map[string]http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if fn, ok := handlers[r.Method]; ok {
			fn(w, r)
			return
		}
		respond.MethodNotAllowed(w)
	}
}

// PingHandler é uma função utilitária para o health check.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respond.MethodNotAllowed(w)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
