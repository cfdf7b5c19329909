package category_test

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

	"smartcart/internal/api/category"
	"smartcart/internal/domain"
	apperror "smartcart/internal/errors"
	"smartcart/internal/pkg/logger"
)

type MockCategoryService struct {
	mock.Mock
}

func (m *MockCategoryService) CreateCategory(ctx context.Context, input domain.CategoryInput) (domain.Category, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(domain.Category), args.Error(1)
}

func (m *MockCategoryService) GetCategoryByID(ctx context.Context, id uint) (domain.Category, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Category), args.Error(1)
}

func (m *MockCategoryService) GetAllCategories(ctx context.Context) ([]domain.CategorySummary, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.CategorySummary), args.Error(1)
}

func (m *MockCategoryService) GetCategoryProducts(ctx context.Context, id uint) ([]domain.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *MockCategoryService) UpdateCategory(ctx context.Context, id uint, input domain.CategoryInput) (domain.Category, error) {
	args := m.Called(ctx, id, input)
	return args.Get(0).(domain.Category), args.Error(1)
}

func (m *MockCategoryService) DeleteCategory(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func newHandler() (*category.Handler, *MockCategoryService) {
	svc := new(MockCategoryService)
	return category.NewHandler(svc, logger.NewLoggerWithWriter("error", io.Discard)), svc
}

func TestCreateCategoryHandler_Duplicate(t *testing.T) {
	h, svc := newHandler()
	svc.On("CreateCategory", mock.Anything, domain.CategoryInput{Name: "Bebidas"}).
		Return(domain.Category{}, apperror.NewConflictError("Já existe uma categoria chamada 'Bebidas'."))

	rec := httptest.NewRecorder()
	h.CreateCategoryHandler(rec, httptest.NewRequest(http.MethodPost, "/v1/categories", strings.NewReader(`{"name":"Bebidas"}`)))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGetAllCategoriesHandler(t *testing.T) {
	h, svc := newHandler()
	svc.On("GetAllCategories", mock.Anything).Return([]domain.CategorySummary{{ID: 1, Name: "Bebidas", ProductCount: 2}}, nil)

	rec := httptest.NewRecorder()
	h.GetAllCategoriesHandler(rec, httptest.NewRequest(http.MethodGet, "/v1/categories", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got []domain.CategorySummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, int64(2), got[0].ProductCount)
}

func TestGetCategoryProductsHandler(t *testing.T) {
	h, svc := newHandler()
	svc.On("GetCategoryProducts", mock.Anything, uint(1)).Return([]domain.Product{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/categories/1/products", nil)
	req.SetPathValue("id", "1")
	rec := httptest.NewRecorder()
	h.GetCategoryProductsHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestDeleteCategoryHandler_HasProducts(t *testing.T) {
	h, svc := newHandler()
	svc.On("DeleteCategory", mock.Anything, uint(1)).Return(apperror.NewValidationError("A categoria possui 2 produto(s) e não pode ser removida."))

	req := httptest.NewRequest(http.MethodDelete, "/v1/categories/1", nil)
	req.SetPathValue("id", "1")
	rec := httptest.NewRecorder()
	h.DeleteCategoryHandler(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateCategoryHandler_InvalidID(t *testing.T) {
	h, svc := newHandler()

	req := httptest.NewRequest(http.MethodPut, "/v1/categories/x", strings.NewReader(`{"name":"A"}`))
	req.SetPathValue("id", "x")
	rec := httptest.NewRecorder()
	h.UpdateCategoryHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "UpdateCategory", mock.Anything, mock.Anything, mock.Anything)
}
