package userservice_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"smartcart/internal/domain"
	apperror "smartcart/internal/errors"
	"smartcart/internal/pkg/logger"
	"smartcart/internal/pkg/password"
	"smartcart/internal/pkg/token"
	"smartcart/internal/service/userservice"
)

// MockUserRepository é uma implementação mock da interface UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) CreateWithProfile(ctx context.Context, user domain.User, profile domain.Profile) (domain.User, error) {
	args := m.Called(ctx, user, profile)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (domain.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserRepository) UpdateLastLogin(ctx context.Context, id uint, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *MockUserRepository) UpsertProfile(ctx context.Context, userID uint, profile domain.Profile) (domain.Profile, error) {
	args := m.Called(ctx, userID, profile)
	return args.Get(0).(domain.Profile), args.Error(1)
}

type failingTokens struct{}

func (failingTokens) GenerateToken(domain.User) (string, time.Time, error) {
	return "", time.Time{}, errors.New("sem chave")
}

func newTokenService(t *testing.T) *token.Service {
	t.Helper()
	svc, err := token.NewService(token.Config{SecretKey: "k", Issuer: "SmartCart-API", Audience: "SmartCart-Clients", TTL: time.Hour})
	require.NoError(t, err)
	return svc
}

func newService(t *testing.T, repo *MockUserRepository) (*userservice.UserService, *token.Service) {
	tokens := newTokenService(t)
	return userservice.NewService(repo, tokens, password.NewBcryptHasher(bcrypt.MinCost), logger.NewLoggerWithWriter("debug", io.Discard)), tokens
}

func validRegistration() domain.RegisterRequest {
	return domain.RegisterRequest{
		Email:     "  Ana@Example.COM ",
		Password:  "secret1",
		FirstName: " Ana ",
		LastName:  "Silva",
		City:      " Lisboa ",
	}
}

func TestRegister_Success(t *testing.T) {
	repo := new(MockUserRepository)
	svc, tokens := newService(t, repo)

	repo.On("ExistsByEmail", mock.Anything, "ana@example.com").Return(false, nil)
	repo.On("CreateWithProfile", mock.Anything,
		mock.MatchedBy(func(u domain.User) bool {
			return u.Email == "ana@example.com" && u.Role == domain.RoleCustomer &&
				u.PasswordHash != "secret1" && u.CreatedAt.Equal(u.LastLoginAt)
		}),
		mock.MatchedBy(func(p domain.Profile) bool {
			return p.FirstName == "Ana" && p.City == "Lisboa" && p.Country == ""
		}),
	).Return(domain.User{
		ID: 7, Email: "ana@example.com", Role: domain.RoleCustomer,
		Profile: &domain.Profile{FirstName: "Ana", LastName: "Silva"},
	}, nil)

	resp, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, uint(7), resp.User.ID)
	require.NotNil(t, resp.User.Profile)
	assert.Equal(t, "Ana Silva", resp.User.Profile.FullName)

	claims, err := tokens.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, domain.RoleCustomer, claims.Role)
	repo.AssertExpectations(t)
}

func TestRegister_DuplicateEmailAnyCasingIsConflict(t *testing.T) {
	repo := new(MockUserRepository)
	svc, _ := newService(t, repo)

	repo.On("ExistsByEmail", mock.Anything, "ana@example.com").Return(true, nil)

	_, err := svc.Register(context.Background(), validRegistration())
	assert.IsType(t, &apperror.ConflictError{}, err)
	repo.AssertNotCalled(t, "CreateWithProfile", mock.Anything, mock.Anything, mock.Anything)
}

func TestRegister_ValidationRunsFirst(t *testing.T) {
	repo := new(MockUserRepository)
	svc, _ := newService(t, repo)

	req := validRegistration()
	req.Password = "12345"
	req.LastName = "  "

	_, err := svc.Register(context.Background(), req)
	require.IsType(t, &apperror.ValidationError{}, err)
	fields := apperror.FieldErrors(err)
	assert.Contains(t, fields, "password")
	assert.Contains(t, fields, "lastName")
	repo.AssertNotCalled(t, "ExistsByEmail", mock.Anything, mock.Anything)
}

func TestRegister_MultibytePasswordOverLimitIsValidationError(t *testing.T) {
	repo := new(MockUserRepository)
	svc, _ := newService(t, repo)

	req := validRegistration()
	req.Password = strings.Repeat("é", 40)

	_, err := svc.Register(context.Background(), req)
	require.IsType(t, &apperror.ValidationError{}, err)
	assert.Contains(t, apperror.FieldErrors(err)["password"], "72 bytes")
	repo.AssertNotCalled(t, "CreateWithProfile", mock.Anything, mock.Anything, mock.Anything)
}

type longPasswordHasher struct{ password.Hasher }

func (longPasswordHasher) Hash(string) (string, error) {
	return "", fmt.Errorf("falha ao gerar hash da senha: %w", password.ErrTooLong)
}

func TestRegister_HasherLengthErrorIsValidationError(t *testing.T) {
	repo := new(MockUserRepository)
	svc := userservice.NewService(repo, newTokenService(t), longPasswordHasher{}, logger.NewLoggerWithWriter("debug", io.Discard))

	repo.On("ExistsByEmail", mock.Anything, "ana@example.com").Return(false, nil)

	_, err := svc.Register(context.Background(), validRegistration())
	require.IsType(t, &apperror.ValidationError{}, err)
	assert.Contains(t, apperror.FieldErrors(err), "password")
}

func TestRegister_TokenFailureIsInternal(t *testing.T) {
	repo := new(MockUserRepository)
	svc := userservice.NewService(repo, failingTokens{}, password.NewBcryptHasher(bcrypt.MinCost), logger.NewLoggerWithWriter("debug", io.Discard))

	repo.On("ExistsByEmail", mock.Anything, mock.Anything).Return(false, nil)
	repo.On("CreateWithProfile", mock.Anything, mock.Anything, mock.Anything).Return(domain.User{ID: 1, Role: domain.RoleCustomer}, nil)

	_, err := svc.Register(context.Background(), validRegistration())
	assert.IsType(t, &apperror.InternalError{}, err)
}

func storedUser(t *testing.T, pw string) domain.User {
	digest, err := password.NewBcryptHasher(bcrypt.MinCost).Hash(pw)
	require.NoError(t, err)
	return domain.User{ID: 3, Email: "bob@example.com", PasswordHash: digest, Role: domain.RoleAdmin}
}

func TestLogin_SuccessUpdatesLastLogin(t *testing.T) {
	repo := new(MockUserRepository)
	svc, tokens := newService(t, repo)

	repo.On("FindByEmail", mock.Anything, "bob@example.com").Return(storedUser(t, "secret1"), nil)
	repo.On("UpdateLastLogin", mock.Anything, uint(3), mock.AnythingOfType("time.Time")).Return(nil)

	resp, err := svc.Login(context.Background(), domain.LoginRequest{Email: "BOB@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.False(t, resp.User.LastLoginAt.IsZero())
	assert.Nil(t, resp.User.Profile)

	claims, err := tokens.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
	repo.AssertExpectations(t)
}

func TestLogin_WrongPasswordAndUnknownEmailShareMessage(t *testing.T) {
	repo := new(MockUserRepository)
	svc, _ := newService(t, repo)

	repo.On("FindByEmail", mock.Anything, "bob@example.com").Return(storedUser(t, "secret1"), nil)
	repo.On("FindByEmail", mock.Anything, "ghost@example.com").Return(domain.User{}, apperror.NewNotFoundError("x"))

	_, errWrong := svc.Login(context.Background(), domain.LoginRequest{Email: "bob@example.com", Password: "errada"})
	_, errUnknown := svc.Login(context.Background(), domain.LoginRequest{Email: "ghost@example.com", Password: "secret1"})

	require.IsType(t, &apperror.UnauthorizedError{}, errWrong)
	require.IsType(t, &apperror.UnauthorizedError{}, errUnknown)
	_, _, msgWrong := apperror.MapToHTTPStatus(errWrong)
	_, _, msgUnknown := apperror.MapToHTTPStatus(errUnknown)
	assert.Equal(t, "Invalid email or password", msgWrong)
	assert.Equal(t, msgWrong, msgUnknown)
	repo.AssertNotCalled(t, "UpdateLastLogin", mock.Anything, mock.Anything, mock.Anything)
}

func TestLogin_RepositoryFailurePropagates(t *testing.T) {
	repo := new(MockUserRepository)
	svc, _ := newService(t, repo)

	repo.On("FindByEmail", mock.Anything, mock.Anything).Return(domain.User{}, apperror.NewDBError("boom", errors.New("down")))

	_, err := svc.Login(context.Background(), domain.LoginRequest{Email: "bob@example.com", Password: "x"})
	assert.IsType(t, &apperror.InternalError{}, err)
}

func TestLogin_LastLoginFailureIsLoggedWithOperation(t *testing.T) {
	repo := new(MockUserRepository)
	var buf bytes.Buffer
	svc := userservice.NewService(repo, newTokenService(t), password.NewBcryptHasher(bcrypt.MinCost), logger.NewLoggerWithWriter("error", &buf))

	repo.On("FindByEmail", mock.Anything, "bob@example.com").Return(storedUser(t, "secret1"), nil)
	repo.On("UpdateLastLogin", mock.Anything, uint(3), mock.Anything).Return(apperror.NewDBError("boom", errors.New("down")))

	_, err := svc.Login(context.Background(), domain.LoginRequest{Email: "bob@example.com", Password: "secret1"})
	assert.IsType(t, &apperror.InternalError{}, err)
	assert.Contains(t, buf.String(), `"op":"Login"`)
	assert.Contains(t, buf.String(), `"user_id":3`)
}

func TestGetProfile(t *testing.T) {
	repo := new(MockUserRepository)
	svc, _ := newService(t, repo)

	repo.On("FindByID", mock.Anything, uint(3)).Return(domain.User{ID: 3, Email: "bob@example.com", Role: domain.RoleCustomer}, nil)
	repo.On("FindByID", mock.Anything, uint(4)).Return(domain.User{}, apperror.NewNotFoundError("x"))

	view, err := svc.GetProfile(context.Background(), 3)
	require.NoError(t, err)
	assert.Nil(t, view.Profile)

	_, err = svc.GetProfile(context.Background(), 4)
	assert.True(t, apperror.IsNotFound(err))
}

func TestUpdateProfile(t *testing.T) {
	repo := new(MockUserRepository)
	svc, _ := newService(t, repo)

	repo.On("FindByID", mock.Anything, uint(3)).Return(domain.User{ID: 3, Role: domain.RoleCustomer}, nil)
	repo.On("UpsertProfile", mock.Anything, uint(3), mock.MatchedBy(func(p domain.Profile) bool {
		return p.FirstName == "Bob" && p.Country == "Portugal"
	})).Return(domain.Profile{UserID: 3, FirstName: "Bob", LastName: "Souza", Country: "Portugal"}, nil)

	view, err := svc.UpdateProfile(context.Background(), 3, domain.UpdateProfileRequest{FirstName: " Bob", LastName: "Souza", Country: "Portugal "})
	require.NoError(t, err)
	require.NotNil(t, view.Profile)
	assert.Equal(t, "Portugal", view.Profile.Country)

	_, err = svc.UpdateProfile(context.Background(), 3, domain.UpdateProfileRequest{FirstName: "", LastName: "Souza"})
	assert.IsType(t, &apperror.ValidationError{}, err)
}
