package router

import (
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "smartcart/docs" // registra a especificação Swagger gerada
	carthandler "smartcart/internal/api/cart"
	"smartcart/internal/api/category"
	"smartcart/internal/api/checkout"
	"smartcart/internal/api/product"
	"smartcart/internal/api/user"
	"smartcart/internal/domain"
	"smartcart/internal/pkg/cache"
	"smartcart/internal/pkg/logger"
	"smartcart/internal/pkg/middleware"
)

// Handlers reúne os Handlers já inicializados por injeção de dependências.
type Handlers struct {
	User     *user.Handler
	Product  *product.Handler
	Category *category.Handler
	Cart     *carthandler.Handler
	Checkout *checkout.Handler
}

// RateLimit configura a janela fixa aplicada por IP.
type RateLimit struct {
	MaxRequests int
	Period      time.Duration
}

// NewRouter configura e retorna o roteador HTTP principal.
func NewRouter(h Handlers, tokenSvc middleware.TokenService, cacheClient cache.Client, limit RateLimit, log logger.Logger) http.Handler {
	mux := http.NewServeMux()

	auth := middleware.NewAuthMiddleware(tokenSvc, log)
	admin := func(next http.HandlerFunc) http.HandlerFunc {
		return auth(middleware.PermissionMiddleware(log, domain.RoleAdmin)(next))
	}

	// --- 1. Health check e documentação ---
	mux.HandleFunc("GET /ping", PingHandler)
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	// --- 2. Autenticação e perfil ---
	mux.HandleFunc("POST /v1/register", h.User.RegisterUserHandler)
	mux.HandleFunc("POST /v1/login", h.User.LoginUserHandler)
	mux.HandleFunc("GET /v1/profile", auth(h.User.GetProfileHandler))
	mux.HandleFunc("PUT /v1/profile", auth(h.User.UpdateProfileHandler))

	// --- 3. Catálogo: leitura pública, escrita apenas Admin ---
	mux.HandleFunc("GET /v1/products", h.Product.GetProductsHandler)
	mux.HandleFunc("GET /v1/products/{id}", h.Product.GetProductByIDHandler)
	mux.HandleFunc("POST /v1/products", admin(h.Product.CreateProductHandler))
	mux.HandleFunc("PUT /v1/products/{id}", admin(h.Product.UpdateProductHandler))
	mux.HandleFunc("DELETE /v1/products/{id}", admin(h.Product.DeleteProductHandler))
	mux.HandleFunc("PATCH /v1/products/{id}/stock", admin(h.Product.AdjustStockHandler))
	mux.HandleFunc("POST /v1/products/{id}/image", admin(h.Product.PresignImageHandler))

	mux.HandleFunc("GET /v1/categories", h.Category.GetAllCategoriesHandler)
	mux.HandleFunc("GET /v1/categories/{id}", h.Category.GetCategoryByIDHandler)
	mux.HandleFunc("GET /v1/categories/{id}/products", h.Category.GetCategoryProductsHandler)
	mux.HandleFunc("POST /v1/categories", admin(h.Category.CreateCategoryHandler))
	mux.HandleFunc("PUT /v1/categories/{id}", admin(h.Category.UpdateCategoryHandler))
	mux.HandleFunc("DELETE /v1/categories/{id}", admin(h.Category.DeleteCategoryHandler))

	// --- 4. Carrinho (dono = usuário do token) ---
	mux.HandleFunc("GET /v1/cart", auth(h.Cart.GetCartHandler))
	mux.HandleFunc("DELETE /v1/cart", auth(h.Cart.ClearCartHandler))
	mux.HandleFunc("GET /v1/cart/summary", auth(h.Cart.GetSummaryHandler))
	mux.HandleFunc("POST /v1/cart/items", auth(h.Cart.AddItemHandler))
	mux.HandleFunc("PUT /v1/cart/items/{productId}", auth(h.Cart.SetQuantityHandler))
	mux.HandleFunc("DELETE /v1/cart/items/{productId}", auth(h.Cart.RemoveItemHandler))

	// --- 5. Checkout simulado ---
	mux.HandleFunc("GET /v1/checkout/summary", auth(h.Checkout.GetSummaryHandler))
	mux.HandleFunc("GET /v1/checkout/delivery-cost", h.Checkout.DeliveryCostHandler)
	mux.HandleFunc("POST /v1/checkout/confirm", auth(h.Checkout.ConfirmHandler))

	// --- 6. Middlewares globais ---
	var handler http.Handler = mux
	if limit.MaxRequests > 0 {
		handler = middleware.RateLimiter(cacheClient, limit.MaxRequests, limit.Period, log)(handler)
	}
	return middleware.RequestLogger(log)(handler)
}

// PingHandler é uma função utilitária para o health check.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
