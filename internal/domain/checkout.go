package domain

import "github.com/shopspring/decimal"

// CheckoutRequest reúne dados pessoais e de entrega para a confirmação do pedido.
type CheckoutRequest struct {
	FullName    string `json:"fullName" validate:"required,notblank,max=100"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phoneNumber" validate:"max=30"`
	Address     string `json:"address" validate:"required,notblank,max=200"`
	City        string `json:"city" validate:"required,notblank,max=100"`
	PostalCode  string `json:"postalCode" validate:"required,notblank,max=20"`
}

// DeliveryQuote é a estimativa de custo de entrega para um endereço.
type DeliveryQuote struct {
	Address      string          `json:"address"`
	DeliveryCost decimal.Decimal `json:"deliveryCost"`
}

// OrderConfirmation é a resposta da confirmação do pedido. Nenhum pagamento é processado.
type OrderConfirmation struct {
	OrderID      string          `json:"orderId"`
	Message      string          `json:"message"`
	DeliveryCost decimal.Decimal `json:"deliveryCost"`
}
