package user_test

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

	"smartcart/internal/api/user"
	"smartcart/internal/domain"
	apperror "smartcart/internal/errors"
	"smartcart/internal/pkg/logger"
	"smartcart/internal/pkg/middleware"
)

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, req domain.RegisterRequest) (domain.AuthResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(domain.AuthResponse), args.Error(1)
}

func (m *MockUserService) Login(ctx context.Context, req domain.LoginRequest) (domain.AuthResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(domain.AuthResponse), args.Error(1)
}

func (m *MockUserService) GetProfile(ctx context.Context, userID uint) (domain.UserView, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(domain.UserView), args.Error(1)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, userID uint, req domain.UpdateProfileRequest) (domain.UserView, error) {
	args := m.Called(ctx, userID, req)
	return args.Get(0).(domain.UserView), args.Error(1)
}

func newHandler() (*user.Handler, *MockUserService) {
	svc := new(MockUserService)
	return user.NewHandler(svc, logger.NewLoggerWithWriter("error", io.Discard)), svc
}

func TestRegisterUserHandler_Created(t *testing.T) {
	h, svc := newHandler()
	svc.On("Register", mock.Anything, mock.MatchedBy(func(r domain.RegisterRequest) bool {
		return r.Email == "ana@example.com" && r.FirstName == "Ana"
	})).Return(domain.AuthResponse{Token: "t", TokenType: "Bearer", User: domain.UserView{ID: 1, Email: "ana@example.com"}}, nil)

	body := `{"email":"ana@example.com","password":"secret1","firstName":"Ana","lastName":"Silva"}`
	rec := httptest.NewRecorder()
	h.RegisterUserHandler(rec, httptest.NewRequest(http.MethodPost, "/v1/register", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, rec.Code)
	var got domain.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Bearer", got.TokenType)
	assert.Nil(t, got.User.Profile)
	assert.Contains(t, rec.Body.String(), `"profile":null`)
}

func TestRegisterUserHandler_Conflict(t *testing.T) {
	h, svc := newHandler()
	svc.On("Register", mock.Anything, mock.Anything).Return(domain.AuthResponse{}, apperror.NewConflictError("O email já está em uso."))

	rec := httptest.NewRecorder()
	h.RegisterUserHandler(rec, httptest.NewRequest(http.MethodPost, "/v1/register", strings.NewReader(`{"email":"a@b.co"}`)))

	assert.Equal(t, http.StatusConflict, rec.Code)
	var body domain.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 409, body.Code)
	assert.Equal(t, "CONFLICT", body.Category)
	assert.Equal(t, body.Message, body.Error)
}

func TestLoginUserHandler_MalformedJSON(t *testing.T) {
	h, svc := newHandler()

	rec := httptest.NewRecorder()
	h.LoginUserHandler(rec, httptest.NewRequest(http.MethodPost, "/v1/login", strings.NewReader(`{"email":`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "Login", mock.Anything, mock.Anything)
}

func TestLoginUserHandler_Unauthorized(t *testing.T) {
	h, svc := newHandler()
	svc.On("Login", mock.Anything, domain.LoginRequest{Email: "a@b.co", Password: "x"}).
		Return(domain.AuthResponse{}, apperror.NewUnauthorizedError("Invalid email or password"))

	rec := httptest.NewRecorder()
	h.LoginUserHandler(rec, httptest.NewRequest(http.MethodPost, "/v1/login", strings.NewReader(`{"email":"a@b.co","password":"x"}`)))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid email or password")
}

func TestGetProfileHandler(t *testing.T) {
	h, svc := newHandler()
	svc.On("GetProfile", mock.Anything, uint(5)).Return(domain.UserView{ID: 5, Role: domain.RoleCustomer}, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/profile", nil)
	req = req.WithContext(middleware.WithUserClaims(req.Context(), middleware.UserClaims{UserID: 5, Role: domain.RoleCustomer}))
	rec := httptest.NewRecorder()
	h.GetProfileHandler(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.GetProfileHandler(rec, httptest.NewRequest(http.MethodGet, "/v1/profile", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUpdateProfileHandler_Internal(t *testing.T) {
	h, svc := newHandler()
	svc.On("UpdateProfile", mock.Anything, uint(5), mock.Anything).
		Return(domain.UserView{}, apperror.NewDBError("failed to upsert profile", assert.AnError))

	req := httptest.NewRequest(http.MethodPut, "/v1/profile", strings.NewReader(`{"firstName":"Ana","lastName":"Silva"}`))
	req = req.WithContext(middleware.WithUserClaims(req.Context(), middleware.UserClaims{UserID: 5}))
	rec := httptest.NewRecorder()
	h.UpdateProfileHandler(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), apperror.MsgInternal)
	assert.NotContains(t, rec.Body.String(), "upsert")
}
