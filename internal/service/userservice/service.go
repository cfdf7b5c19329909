package userservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"smartcart/internal/domain"
	apperror "smartcart/internal/errors"
	"smartcart/internal/pkg/logger"
	"smartcart/internal/pkg/password"
	"smartcart/internal/pkg/validation"
)

// MsgInvalidCredentials é a mensagem única para e-mail inexistente ou senha errada.
const MsgInvalidCredentials = "Invalid email or password"

// UserRepository define o contrato que o serviço espera da camada de persistência.
type UserRepository interface {
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	CreateWithProfile(ctx context.Context, user domain.User, profile domain.Profile) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	FindByID(ctx context.Context, id uint) (domain.User, error)
	UpdateLastLogin(ctx context.Context, id uint, at time.Time) error
	UpsertProfile(ctx context.Context, userID uint, profile domain.Profile) (domain.Profile, error)
}

// TokenService é o contrato da camada de token (internal/pkg/token).
type TokenService interface {
	GenerateToken(user domain.User) (string, time.Time, error)
}

// UserService orquestra registro, login e perfil. Não guarda estado entre requisições.
type UserService struct {
	UserRepo  UserRepository
	TokenSvc  TokenService
	Hasher    password.Hasher
	validator *validation.Validator
	logger    logger.Logger
	now       func() time.Time
}

// NewService cria uma nova instância do UserService.
func NewService(repo UserRepository, tokenSvc TokenService, hasher password.Hasher, log logger.Logger) *UserService {
	return &UserService{
		UserRepo:  repo,
		TokenSvc:  tokenSvc,
		Hasher:    hasher,
		validator: validation.New(),
		logger:    log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Register registra um novo usuário Customer com perfil e já devolve o token de sessão.
func (s *UserService) Register(ctx context.Context, req domain.RegisterRequest) (domain.AuthResponse, error) {
	// 1. Validação de campos antes de qualquer regra de negócio
	req.Email = domain.NormalizeEmail(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return domain.AuthResponse{}, err
	}

	// 2. Unicidade do e-mail normalizado
	email := req.Email
	taken, err := s.UserRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return domain.AuthResponse{}, err
	}
	if taken {
		s.logger.Info("Tentativa de registro com e-mail já existente.", map[string]interface{}{"email": email})
		return domain.AuthResponse{}, apperror.NewConflictError(fmt.Sprintf("O email '%s' já está em uso.", email))
	}

	// 3. Hash da senha
	digest, err := s.Hasher.Hash(req.Password)
	if err != nil {
		if errors.Is(err, password.ErrTooLong) {
			return domain.AuthResponse{}, apperror.NewFieldValidationError(
				"Campo 'password' inválido: deve ter no máximo 72 bytes",
				map[string]string{"password": "deve ter no máximo 72 bytes"},
			)
		}
		s.logger.With(map[string]interface{}{"op": "Register", "email": email}).Error("Falha ao gerar hash da senha.", err)
		return domain.AuthResponse{}, apperror.NewInternalError("Falha ao gerar hash da senha.", err)
	}

	// 4. Usuário + perfil na mesma transação
	now := s.now()
	newUser := domain.User{
		Email:        email,
		PasswordHash: digest,
		Role:         domain.RoleCustomer,
		CreatedAt:    now,
		LastLoginAt:  now,
	}
	profile := domain.ProfileFromFields(req.FirstName, req.LastName, req.PhoneNumber, req.Address, req.City, req.PostalCode, req.Country)

	user, err := s.UserRepo.CreateWithProfile(ctx, newUser, profile)
	if err != nil {
		s.logger.With(map[string]interface{}{"op": "Register", "email": email}).Error("Falha ao criar usuário.", err)
		return domain.AuthResponse{}, err
	}

	s.logger.Info("Usuário registrado.", map[string]interface{}{"user_id": user.ID})
	return s.issue(user)
}

// Login autentica o usuário, atualiza o último acesso e emite um JWT.
func (s *UserService) Login(ctx context.Context, req domain.LoginRequest) (domain.AuthResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return domain.AuthResponse{}, err
	}

	user, err := s.UserRepo.FindByEmail(ctx, domain.NormalizeEmail(req.Email))
	if err != nil {
		// Usuário inexistente e senha errada são indistinguíveis para o cliente
		if apperror.IsNotFound(err) {
			return domain.AuthResponse{}, apperror.NewUnauthorizedError(MsgInvalidCredentials)
		}
		return domain.AuthResponse{}, err
	}

	if !s.Hasher.Verify(req.Password, user.PasswordHash) {
		s.logger.Info("Falha de login: credenciais inválidas.", map[string]interface{}{"user_id": user.ID})
		return domain.AuthResponse{}, apperror.NewUnauthorizedError(MsgInvalidCredentials)
	}

	user.LastLoginAt = s.now()
	if err := s.UserRepo.UpdateLastLogin(ctx, user.ID, user.LastLoginAt); err != nil {
		s.logger.With(map[string]interface{}{"op": "Login", "user_id": user.ID}).Error("Falha ao registrar último acesso.", err)
		return domain.AuthResponse{}, err
	}

	return s.issue(user)
}

// GetProfile projeta o usuário autenticado; o perfil é nulo quando não existe.
func (s *UserService) GetProfile(ctx context.Context, userID uint) (domain.UserView, error) {
	user, err := s.UserRepo.FindByID(ctx, userID)
	if err != nil {
		return domain.UserView{}, err
	}
	return domain.NewUserView(user), nil
}

// UpdateProfile substitui os dados pessoais do usuário, criando o perfil se ainda não existir.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, req domain.UpdateProfileRequest) (domain.UserView, error) {
	if err := s.validator.Struct(req); err != nil {
		return domain.UserView{}, err
	}

	user, err := s.UserRepo.FindByID(ctx, userID)
	if err != nil {
		return domain.UserView{}, err
	}

	profile := domain.ProfileFromFields(req.FirstName, req.LastName, req.PhoneNumber, req.Address, req.City, req.PostalCode, req.Country)
	saved, err := s.UserRepo.UpsertProfile(ctx, userID, profile)
	if err != nil {
		s.logger.With(map[string]interface{}{"op": "UpdateProfile", "user_id": userID}).Error("Falha ao salvar perfil.", err)
		return domain.UserView{}, err
	}

	user.Profile = &saved
	s.logger.Info("Perfil atualizado.", map[string]interface{}{"user_id": userID})
	return domain.NewUserView(user), nil
}

func (s *UserService) issue(user domain.User) (domain.AuthResponse, error) {
	tokenString, expiresAt, err := s.TokenSvc.GenerateToken(user)
	if err != nil {
		s.logger.With(map[string]interface{}{"op": "GenerateToken", "user_id": user.ID}).Error("Falha ao gerar token.", err)
		return domain.AuthResponse{}, apperror.NewInternalError("Falha ao gerar token de autenticação.", err)
	}
	return domain.AuthResponse{
		Token:     tokenString,
		TokenType: "Bearer",
		ExpiresAt: expiresAt,
		User:      domain.NewUserView(user),
	}, nil
}
