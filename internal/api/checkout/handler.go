package checkout

import (
	"context"
	"net/http"

	"smartcart/internal/api/response"
	"smartcart/internal/domain"
	apperror "smartcart/internal/errors"
	"smartcart/internal/pkg/logger"
	"smartcart/internal/pkg/middleware"
	"smartcart/internal/service/checkoutservice"
)

// CheckoutService define o contrato que o Handler espera do checkout.
type CheckoutService interface {
	Summary(ctx context.Context, userID uint) (checkoutservice.OrderSummary, error)
	DeliveryCost(address string) (domain.DeliveryQuote, error)
	Confirm(ctx context.Context, userID uint, req domain.CheckoutRequest) (checkoutservice.Confirmation, error)
}

type Handler struct {
	Service CheckoutService
	Logger  logger.Logger
}

func NewHandler(svc CheckoutService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

// GetSummaryHandler lida com a requisição GET /v1/checkout/summary.
// @Summary Resumo do pedido antes da confirmação
// @Tags checkout
// @Produce json
// @Security BearerAuth
// @Success 200 {object} checkoutservice.OrderSummary
// @Failure 401 {object} domain.ErrorResponse "Token ausente ou inválido"
// @Router /checkout/summary [get]
func (h *Handler) GetSummaryHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserClaimsFromContext(r.Context())
	if !ok {
		response.Error(w, r, h.Logger, apperror.NewUnauthorizedError("Autorização necessária."))
		return
	}

	summary, err := h.Service.Summary(r.Context(), claims.UserID)
	response.Handle(w, r, h.Logger, summary, err, http.StatusOK)
}

// DeliveryCostHandler lida com a requisição GET /v1/checkout/delivery-cost.
// @Summary Estima o custo de entrega
// @Tags checkout
// @Produce json
// @Param address query string true "Endereço de entrega"
// @Success 200 {object} domain.DeliveryQuote
// @Failure 400 {object} domain.ErrorResponse "Endereço ausente"
// @Router /checkout/delivery-cost [get]
func (h *Handler) DeliveryCostHandler(w http.ResponseWriter, r *http.Request) {
	quote, err := h.Service.DeliveryCost(r.URL.Query().Get("address"))
	response.Handle(w, r, h.Logger, quote, err, http.StatusOK)
}

// ConfirmHandler lida com a requisição POST /v1/checkout/confirm.
// @Summary Confirma o pedido e esvazia o carrinho
// @Description Nenhum pagamento é processado e o estoque não é baixado.
// @Tags checkout
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param order body domain.CheckoutRequest true "Dados pessoais e de entrega"
// @Success 200 {object} checkoutservice.Confirmation
// @Failure 400 {object} domain.ErrorResponse "Dados inválidos ou carrinho vazio"
// @Failure 401 {object} domain.ErrorResponse "Token ausente ou inválido"
// @Router /checkout/confirm [post]
func (h *Handler) ConfirmHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserClaimsFromContext(r.Context())
	if !ok {
		response.Error(w, r, h.Logger, apperror.NewUnauthorizedError("Autorização necessária."))
		return
	}

	var req domain.CheckoutRequest
	if err := response.Decode(r, &req); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	confirmation, err := h.Service.Confirm(r.Context(), claims.UserID, req)
	response.Handle(w, r, h.Logger, confirmation, err, http.StatusOK)
}
