package checkoutservice

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"smartcart/internal/cart"
	"smartcart/internal/domain"
	apperror "smartcart/internal/errors"
	"smartcart/internal/pkg/logger"
	"smartcart/internal/pkg/validation"
	"smartcart/internal/service/cartservice"
)

var (
	StandardDeliveryCost = decimal.RequireFromString("5.00")
	RemoteDeliveryCost   = decimal.RequireFromString("15.00")
)

// CartReader é o subconjunto do serviço de carrinho usado no checkout.
type CartReader interface {
	Get(ctx context.Context, userID uint) (cartservice.View, error)
	Clear(ctx context.Context, userID uint) error
}

// OrderSummary é o carrinho precificado no momento do checkout.
type OrderSummary struct {
	Items   []cart.Line  `json:"items"`
	Summary cart.Summary `json:"summary"`
}

// Confirmation junta o identificador do pedido ao resumo que foi confirmado.
type Confirmation struct {
	domain.OrderConfirmation
	Order OrderSummary `json:"order"`
}

// Service é o fluxo de checkout simulado: não há pagamento nem baixa de estoque.
type Service struct {
	carts     CartReader
	validator *validation.Validator
	logger    logger.Logger
	newID     func() string
}

// NewService cria o serviço de checkout.
func NewService(carts CartReader, log logger.Logger) *Service {
	return &Service{carts: carts, validator: validation.New(), logger: log, newID: uuid.NewString}
}

// Summary devolve as linhas precificadas e os totais do carrinho do usuário.
func (s *Service) Summary(ctx context.Context, userID uint) (OrderSummary, error) {
	view, err := s.carts.Get(ctx, userID)
	if err != nil {
		return OrderSummary{}, err
	}
	return OrderSummary{Items: view.Items, Summary: view.Summary}, nil
}

// DeliveryCost estima a entrega: endereços "remote" custam 15.00, os demais 5.00.
func (s *Service) DeliveryCost(address string) (domain.DeliveryQuote, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return domain.DeliveryQuote{}, apperror.NewFieldValidationError(
			"O endereço de entrega é obrigatório.",
			map[string]string{"address": "campo obrigatório"},
		)
	}
	return domain.DeliveryQuote{Address: address, DeliveryCost: deliveryCostFor(address)}, nil
}

func deliveryCostFor(address string) decimal.Decimal {
	if strings.Contains(address, "remote") {
		return RemoteDeliveryCost
	}
	return StandardDeliveryCost
}

// Confirm valida os dados pessoais e de entrega, gera o ID do pedido e esvazia o carrinho.
func (s *Service) Confirm(ctx context.Context, userID uint, req domain.CheckoutRequest) (Confirmation, error) {
	req.Email = domain.NormalizeEmail(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return Confirmation{}, err
	}

	view, err := s.carts.Get(ctx, userID)
	if err != nil {
		return Confirmation{}, err
	}
	if len(view.Items) == 0 {
		return Confirmation{}, apperror.NewValidationError("O carrinho está vazio.")
	}
	if !hasAvailableLine(view.Items) {
		return Confirmation{}, apperror.NewValidationError("Nenhum item do carrinho está disponível.")
	}

	orderID := s.newID()
	if err := s.carts.Clear(ctx, userID); err != nil {
		s.logger.With(map[string]interface{}{"op": "Confirm", "user_id": userID, "order_id": orderID}).Error("Falha ao esvaziar o carrinho.", err)
		return Confirmation{}, err
	}

	s.logger.Info("Pedido confirmado.", map[string]interface{}{
		"order_id": orderID,
		"user_id":  userID,
		"total":    view.Summary.Total.StringFixed(2),
	})

	return Confirmation{
		OrderConfirmation: domain.OrderConfirmation{
			OrderID:      orderID,
			Message:      "Pedido confirmado com sucesso.",
			DeliveryCost: deliveryCostFor(strings.TrimSpace(req.Address)),
		},
		Order: OrderSummary{Items: view.Items, Summary: view.Summary},
	}, nil
}

func hasAvailableLine(lines []cart.Line) bool {
	for _, l := range lines {
		if l.Available {
			return true
		}
	}
	return false
}
