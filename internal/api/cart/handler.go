package cart

import (
	"context"
	"net/http"

	"smartcart/internal/api/response"
	cartengine "smartcart/internal/cart"
	apperror "smartcart/internal/errors"
	"smartcart/internal/pkg/logger"
	"smartcart/internal/pkg/middleware"
	"smartcart/internal/service/cartservice"
)

// CartService define o contrato que o Handler espera do serviço de carrinho.
type CartService interface {
	Get(ctx context.Context, userID uint) (cartservice.View, error)
	Summary(ctx context.Context, userID uint) (cartengine.Summary, error)
	Add(ctx context.Context, userID uint, req cartservice.AddItemRequest) (cartservice.View, error)
	SetQuantity(ctx context.Context, userID uint, productID string, req cartservice.SetQuantityRequest) (cartservice.View, error)
	Remove(ctx context.Context, userID uint, productID string) (cartservice.View, error)
	Clear(ctx context.Context, userID uint) error
}

type Handler struct {
	Service CartService
	Logger  logger.Logger
}

func NewHandler(svc CartService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

// userID extrai o dono do carrinho do token. Escreve 401 quando ausente.
func (h *Handler) userID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	claims, ok := middleware.GetUserClaimsFromContext(r.Context())
	if !ok {
		response.Error(w, r, h.Logger, apperror.NewUnauthorizedError("Autorização necessária."))
		return 0, false
	}
	return claims.UserID, true
}

// GetCartHandler lida com a requisição GET /v1/cart.
// @Summary Carrinho precificado do usuário
// @Tags cart
// @Produce json
// @Security BearerAuth
// @Success 200 {object} cartservice.View
// @Failure 401 {object} domain.ErrorResponse "Token ausente ou inválido"
// @Router /cart [get]
func (h *Handler) GetCartHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	view, err := h.Service.Get(r.Context(), userID)
	response.Handle(w, r, h.Logger, view, err, http.StatusOK)
}

// GetSummaryHandler lida com a requisição GET /v1/cart/summary.
// @Summary Totais do carrinho (subtotal, imposto, frete e total)
// @Tags cart
// @Produce json
// @Security BearerAuth
// @Success 200 {object} cartengine.Summary
// @Router /cart/summary [get]
func (h *Handler) GetSummaryHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	summary, err := h.Service.Summary(r.Context(), userID)
	response.Handle(w, r, h.Logger, summary, err, http.StatusOK)
}

// AddItemHandler lida com a requisição POST /v1/cart/items.
// @Summary Adiciona um produto ao carrinho
// @Description A quantidade é limitada ao estoque disponível.
// @Tags cart
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param item body cartservice.AddItemRequest true "Produto e quantidade"
// @Success 200 {object} cartservice.View
// @Failure 400 {object} domain.ErrorResponse "ID inválido ou produto sem estoque"
// @Failure 404 {object} domain.ErrorResponse "Produto não encontrado"
// @Router /cart/items [post]
func (h *Handler) AddItemHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req cartservice.AddItemRequest
	if err := response.Decode(r, &req); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	view, err := h.Service.Add(r.Context(), userID, req)
	response.Handle(w, r, h.Logger, view, err, http.StatusOK)
}

// SetQuantityHandler lida com a requisição PUT /v1/cart/items/{productId}.
// @Summary Define a quantidade de um item
// @Description Quantidade menor ou igual a zero remove o item.
// @Tags cart
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param productId path string true "ID do produto"
// @Param item body cartservice.SetQuantityRequest true "Nova quantidade"
// @Success 200 {object} cartservice.View
// @Failure 404 {object} domain.ErrorResponse "Produto não encontrado"
// @Router /cart/items/{productId} [put]
func (h *Handler) SetQuantityHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req cartservice.SetQuantityRequest
	if err := response.Decode(r, &req); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	view, err := h.Service.SetQuantity(r.Context(), userID, r.PathValue("productId"), req)
	response.Handle(w, r, h.Logger, view, err, http.StatusOK)
}

// RemoveItemHandler lida com a requisição DELETE /v1/cart/items/{productId}.
// @Summary Remove um item do carrinho
// @Tags cart
// @Produce json
// @Security BearerAuth
// @Param productId path string true "ID do produto"
// @Success 200 {object} cartservice.View
// @Router /cart/items/{productId} [delete]
func (h *Handler) RemoveItemHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	view, err := h.Service.Remove(r.Context(), userID, r.PathValue("productId"))
	response.Handle(w, r, h.Logger, view, err, http.StatusOK)
}

// ClearCartHandler lida com a requisição DELETE /v1/cart.
// @Summary Esvazia o carrinho
// @Tags cart
// @Security BearerAuth
// @Success 204 "Carrinho vazio"
// @Router /cart [delete]
func (h *Handler) ClearCartHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	err := h.Service.Clear(r.Context(), userID)
	response.Handle(w, r, h.Logger, nil, err, http.StatusNoContent)
}
