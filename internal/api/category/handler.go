package category

import (
	"context"
	"net/http"

	"smartcart/internal/api/response"
	"smartcart/internal/domain"
	"smartcart/internal/pkg/logger"
)

// CategoryService define o contrato que o Handler espera do serviço de categorias.
type CategoryService interface {
	CreateCategory(ctx context.Context, input domain.CategoryInput) (domain.Category, error)
	GetCategoryByID(ctx context.Context, id uint) (domain.Category, error)
	GetAllCategories(ctx context.Context) ([]domain.CategorySummary, error)
	GetCategoryProducts(ctx context.Context, id uint) ([]domain.Product, error)
	UpdateCategory(ctx context.Context, id uint, input domain.CategoryInput) (domain.Category, error)
	DeleteCategory(ctx context.Context, id uint) error
}

// Handler agrupa os métodos de Handler de categorias.
type Handler struct {
	Service CategoryService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc CategoryService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

// CreateCategoryHandler lida com a requisição POST /v1/categories.
// @Summary Cria uma nova categoria
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param category body domain.CategoryInput true "Dados da categoria"
// @Success 201 {object} domain.Category "Categoria criada com sucesso"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 403 {object} domain.ErrorResponse "Apenas Admin"
// @Failure 409 {object} domain.ErrorResponse "Nome já existe"
// @Router /categories [post]
func (h *Handler) CreateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	var input domain.CategoryInput
	if err := response.Decode(r, &input); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	created, err := h.Service.CreateCategory(r.Context(), input)
	response.Handle(w, r, h.Logger, created, err, http.StatusCreated)
}

// GetCategoryByIDHandler lida com a requisição GET /v1/categories/{id}.
// @Summary Obtém uma categoria com seus produtos disponíveis
// @Tags categories
// @Produce json
// @Param id path int true "ID da categoria"
// @Success 200 {object} domain.Category "Categoria encontrada"
// @Failure 404 {object} domain.ErrorResponse "Categoria não encontrada"
// @Router /categories/{id} [get]
func (h *Handler) GetCategoryByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := response.PathID(r, "id")
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	category, err := h.Service.GetCategoryByID(r.Context(), id)
	response.Handle(w, r, h.Logger, category, err, http.StatusOK)
}

// GetAllCategoriesHandler lida com a requisição GET /v1/categories.
// @Summary Lista todas as categorias
// @Description Retorna as categorias com a contagem de produtos de cada uma.
// @Tags categories
// @Produce json
// @Success 200 {array} domain.CategorySummary "Lista de categorias"
// @Router /categories [get]
func (h *Handler) GetAllCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Service.GetAllCategories(r.Context())
	response.Handle(w, r, h.Logger, categories, err, http.StatusOK)
}

// GetCategoryProductsHandler lida com a requisição GET /v1/categories/{id}/products.
// @Summary Lista os produtos disponíveis de uma categoria
// @Tags categories
// @Produce json
// @Param id path int true "ID da categoria"
// @Success 200 {array} domain.Product
// @Failure 404 {object} domain.ErrorResponse "Categoria não encontrada"
// @Router /categories/{id}/products [get]
func (h *Handler) GetCategoryProductsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := response.PathID(r, "id")
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	products, err := h.Service.GetCategoryProducts(r.Context(), id)
	response.Handle(w, r, h.Logger, products, err, http.StatusOK)
}

// UpdateCategoryHandler lida com a requisição PUT /v1/categories/{id}.
// @Summary Atualiza uma categoria
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID da categoria"
// @Param category body domain.CategoryInput true "Dados da categoria"
// @Success 200 {object} domain.Category "Categoria atualizada com sucesso"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 404 {object} domain.ErrorResponse "Categoria não encontrada"
// @Failure 409 {object} domain.ErrorResponse "Nome já existe"
// @Router /categories/{id} [put]
func (h *Handler) UpdateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := response.PathID(r, "id")
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	var input domain.CategoryInput
	if err := response.Decode(r, &input); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	updated, err := h.Service.UpdateCategory(r.Context(), id, input)
	response.Handle(w, r, h.Logger, updated, err, http.StatusOK)
}

// DeleteCategoryHandler lida com a requisição DELETE /v1/categories/{id}.
// @Summary Remove uma categoria sem produtos
// @Tags categories
// @Security BearerAuth
// @Param id path int true "ID da categoria"
// @Success 204 "Categoria removida"
// @Failure 400 {object} domain.ErrorResponse "Categoria possui produtos"
// @Failure 404 {object} domain.ErrorResponse "Categoria não encontrada"
// @Router /categories/{id} [delete]
func (h *Handler) DeleteCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := response.PathID(r, "id")
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	err = h.Service.DeleteCategory(r.Context(), id)
	response.Handle(w, r, h.Logger, nil, err, http.StatusNoContent)
}
