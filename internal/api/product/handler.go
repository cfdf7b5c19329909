package product

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"

	"smartcart/internal/api/response"
	"smartcart/internal/domain"
	apperror "smartcart/internal/errors"
	"smartcart/internal/pkg/logger"
	"smartcart/internal/pkg/middleware"
)

// ProductService define o contrato que o Handler espera da camada de Serviço.
type ProductService interface {
	GetProducts(ctx context.Context, filter domain.ProductFilter) (domain.ProductPage, error)
	GetProductByID(ctx context.Context, id uint) (domain.Product, error)
	CreateProduct(ctx context.Context, input domain.ProductInput) (domain.Product, error)
	UpdateProduct(ctx context.Context, id uint, input domain.ProductInput) (domain.Product, error)
	DeleteProduct(ctx context.Context, id uint) error
	AdjustStock(ctx context.Context, id uint, req domain.StockAdjustmentRequest) (domain.Product, error)
	PresignImageUpload(ctx context.Context, id uint, req domain.ImageUploadRequest) (domain.ImageUpload, error)
}

// Handler agrupa todos os métodos de Handler do produto.
type Handler struct {
	Service ProductService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc ProductService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// ParseFilter converte a query string nos filtros da listagem.
func ParseFilter(q url.Values) (domain.ProductFilter, error) {
	filter := domain.ProductFilter{
		Keyword: q.Get("q"),
		SortBy:  q.Get("sortBy"),
	}

	var err error
	if filter.Page, err = intParam(q, "page"); err != nil {
		return filter, err
	}
	if filter.Limit, err = intParam(q, "limit"); err != nil {
		return filter, err
	}

	if raw := q.Get("category"); raw != "" {
		id, convErr := strconv.ParseUint(raw, 10, 64)
		if convErr != nil || id == 0 {
			return filter, invalidParam("category", "deve ser um ID numérico positivo")
		}
		categoryID := uint(id)
		filter.CategoryID = &categoryID
	}
	if filter.MinPrice, err = priceParam(q, "minPrice"); err != nil {
		return filter, err
	}
	if filter.MaxPrice, err = priceParam(q, "maxPrice"); err != nil {
		return filter, err
	}
	return filter, nil
}

func intParam(q url.Values, name string) (int, error) {
	raw := q.Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, invalidParam(name, "deve ser um número inteiro")
	}
	return n, nil
}

func priceParam(q url.Values, name string) (*decimal.Decimal, error) {
	raw := q.Get(name)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		return nil, invalidParam(name, "deve ser um valor não negativo")
	}
	return &d, nil
}

func invalidParam(name, detail string) error {
	return apperror.NewFieldValidationError(fmt.Sprintf("Parâmetro '%s' inválido: %s", name, detail), map[string]string{name: detail})
}

// GetProductsHandler lida com a requisição GET /v1/products.
// @Summary Lista os produtos disponíveis
// @Description Busca por palavra-chave, categoria e faixa de preço, com ordenação e paginação.
// @Tags products
// @Produce json
// @Param q query string false "Palavra-chave (nome, sem diferenciar maiúsculas)"
// @Param category query int false "ID da categoria"
// @Param minPrice query number false "Preço mínimo"
// @Param maxPrice query number false "Preço máximo"
// @Param sortBy query string false "price, name, category ou newest" Enums(price, name, category, newest)
// @Param page query int false "Página (padrão 1)"
// @Param limit query int false "Itens por página (padrão 10, máximo 100)"
// @Success 200 {object} domain.ProductPage
// @Failure 400 {object} domain.ErrorResponse "Parâmetros inválidos"
// @Router /products [get]
func (h *Handler) GetProductsHandler(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseFilter(r.URL.Query())
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	page, err := h.Service.GetProducts(r.Context(), filter)
	response.Handle(w, r, h.Logger, page, err, http.StatusOK)
}

// GetProductByIDHandler lida com a requisição GET /v1/products/{id}.
// @Summary Busca um produto pelo ID
// @Tags products
// @Produce json
// @Param id path int true "ID do produto"
// @Success 200 {object} domain.Product
// @Failure 400 {object} domain.ErrorResponse "ID inválido"
// @Failure 404 {object} domain.ErrorResponse "Produto não encontrado"
// @Router /products/{id} [get]
func (h *Handler) GetProductByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := response.PathID(r, "id")
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	product, err := h.Service.GetProductByID(r.Context(), id)
	response.Handle(w, r, h.Logger, product, err, http.StatusOK)
}

// CreateProductHandler lida com a requisição POST /v1/products.
// @Summary Cria um produto
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param product body domain.ProductInput true "Dados do produto"
// @Success 201 {object} domain.Product
// @Failure 400 {object} domain.ErrorResponse "Payload inválido ou categoria inexistente"
// @Failure 401 {object} domain.ErrorResponse "Token ausente ou inválido"
// @Failure 403 {object} domain.ErrorResponse "Apenas Admin"
// @Router /products [post]
func (h *Handler) CreateProductHandler(w http.ResponseWriter, r *http.Request) {
	if claims, ok := middleware.GetUserClaimsFromContext(r.Context()); ok {
		h.Logger.Info("Tentativa de criação de produto por", map[string]interface{}{
			"user_id": claims.UserID,
			"role":    claims.Role,
		})
	}

	var input domain.ProductInput
	if err := response.Decode(r, &input); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	product, err := h.Service.CreateProduct(r.Context(), input)
	response.Handle(w, r, h.Logger, product, err, http.StatusCreated)
}

// UpdateProductHandler lida com a requisição PUT /v1/products/{id}.
// @Summary Atualiza um produto
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID do produto"
// @Param product body domain.ProductInput true "Dados do produto"
// @Success 200 {object} domain.Product
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 404 {object} domain.ErrorResponse "Produto não encontrado"
// @Router /products/{id} [put]
func (h *Handler) UpdateProductHandler(w http.ResponseWriter, r *http.Request) {
	id, err := response.PathID(r, "id")
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	var input domain.ProductInput
	if err := response.Decode(r, &input); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	product, err := h.Service.UpdateProduct(r.Context(), id, input)
	response.Handle(w, r, h.Logger, product, err, http.StatusOK)
}

// DeleteProductHandler lida com a requisição DELETE /v1/products/{id}.
// @Summary Remove um produto
// @Tags products
// @Security BearerAuth
// @Param id path int true "ID do produto"
// @Success 204 "Removido"
// @Failure 404 {object} domain.ErrorResponse "Produto não encontrado"
// @Router /products/{id} [delete]
func (h *Handler) DeleteProductHandler(w http.ResponseWriter, r *http.Request) {
	id, err := response.PathID(r, "id")
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	err = h.Service.DeleteProduct(r.Context(), id)
	response.Handle(w, r, h.Logger, nil, err, http.StatusNoContent)
}

// AdjustStockHandler lida com a requisição PATCH /v1/products/{id}/stock.
// @Summary Ajusta o estoque de um produto
// @Description Soma delta ao estoque. Estoque negativo é rejeitado; versão desatualizada gera 409.
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID do produto"
// @Param adjustment body domain.StockAdjustmentRequest true "Delta do ajuste"
// @Success 200 {object} domain.Product
// @Failure 400 {object} domain.ErrorResponse "Delta inválido ou estoque negativo"
// @Failure 404 {object} domain.ErrorResponse "Produto não encontrado"
// @Failure 409 {object} domain.ErrorResponse "Conflito de concorrência"
// @Router /products/{id}/stock [patch]
func (h *Handler) AdjustStockHandler(w http.ResponseWriter, r *http.Request) {
	id, err := response.PathID(r, "id")
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	var req domain.StockAdjustmentRequest
	if err := response.Decode(r, &req); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	product, err := h.Service.AdjustStock(r.Context(), id, req)
	response.Handle(w, r, h.Logger, product, err, http.StatusOK)
}

// PresignImageHandler lida com a requisição POST /v1/products/{id}/image.
// @Summary Gera a URL de upload da imagem do produto
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID do produto"
// @Param upload body domain.ImageUploadRequest true "Tipo do arquivo"
// @Success 200 {object} domain.ImageUpload
// @Failure 400 {object} domain.ErrorResponse "Tipo inválido ou armazenamento não configurado"
// @Failure 404 {object} domain.ErrorResponse "Produto não encontrado"
// @Router /products/{id}/image [post]
func (h *Handler) PresignImageHandler(w http.ResponseWriter, r *http.Request) {
	id, err := response.PathID(r, "id")
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	var req domain.ImageUploadRequest
	if err := response.Decode(r, &req); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	upload, err := h.Service.PresignImageUpload(r.Context(), id, req)
	response.Handle(w, r, h.Logger, upload, err, http.StatusOK)
}
