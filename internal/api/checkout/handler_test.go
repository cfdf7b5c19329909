package checkout_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"smartcart/internal/api/checkout"
	"smartcart/internal/domain"
	apperror "smartcart/internal/errors"
	"smartcart/internal/pkg/logger"
	"smartcart/internal/pkg/middleware"
	"smartcart/internal/service/checkoutservice"
)

type MockCheckoutService struct {
	mock.Mock
}

func (m *MockCheckoutService) Summary(ctx context.Context, userID uint) (checkoutservice.OrderSummary, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(checkoutservice.OrderSummary), args.Error(1)
}

func (m *MockCheckoutService) DeliveryCost(address string) (domain.DeliveryQuote, error) {
	args := m.Called(address)
	return args.Get(0).(domain.DeliveryQuote), args.Error(1)
}

func (m *MockCheckoutService) Confirm(ctx context.Context, userID uint, req domain.CheckoutRequest) (checkoutservice.Confirmation, error) {
	args := m.Called(ctx, userID, req)
	return args.Get(0).(checkoutservice.Confirmation), args.Error(1)
}

func newHandler() (*checkout.Handler, *MockCheckoutService) {
	svc := new(MockCheckoutService)
	return checkout.NewHandler(svc, logger.NewLoggerWithWriter("error", io.Discard)), svc
}

func TestDeliveryCostHandler(t *testing.T) {
	h, svc := newHandler()
	svc.On("DeliveryCost", "Rua remote 1").Return(domain.DeliveryQuote{
		Address: "Rua remote 1", DeliveryCost: checkoutservice.RemoteDeliveryCost,
	}, nil)

	rec := httptest.NewRecorder()
	h.DeliveryCostHandler(rec, httptest.NewRequest(http.MethodGet, "/v1/checkout/delivery-cost?address=Rua+remote+1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"deliveryCost":15`)
}

func TestDeliveryCostHandler_MissingAddress(t *testing.T) {
	h, svc := newHandler()
	svc.On("DeliveryCost", "").Return(domain.DeliveryQuote{}, apperror.NewFieldValidationError(
		"O endereço de entrega é obrigatório.", map[string]string{"address": "campo obrigatório"}))

	rec := httptest.NewRecorder()
	h.DeliveryCostHandler(rec, httptest.NewRequest(http.MethodGet, "/v1/checkout/delivery-cost", nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body domain.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Fields, "address")
}

func TestConfirmHandler(t *testing.T) {
	h, svc := newHandler()
	svc.On("Confirm", mock.Anything, uint(2), mock.MatchedBy(func(req domain.CheckoutRequest) bool {
		return req.FullName == "Ana Silva" && req.City == "Recife"
	})).Return(checkoutservice.Confirmation{
		OrderConfirmation: domain.OrderConfirmation{OrderID: "abc", Message: "ok"},
	}, nil)

	body := `{"fullName":"Ana Silva","email":"ana@example.com","address":"Rua 1","city":"Recife","postalCode":"50000"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/checkout/confirm", strings.NewReader(body))
	req = req.WithContext(middleware.WithUserClaims(req.Context(), middleware.UserClaims{UserID: 2}))
	rec := httptest.NewRecorder()
	h.ConfirmHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"orderId":"abc"`)
}

func TestConfirmHandler_Unauthorized(t *testing.T) {
	h, svc := newHandler()

	rec := httptest.NewRecorder()
	h.ConfirmHandler(rec, httptest.NewRequest(http.MethodPost, "/v1/checkout/confirm", strings.NewReader(`{}`)))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	svc.AssertNotCalled(t, "Confirm", mock.Anything, mock.Anything, mock.Anything)
}
