package user

import (
	"context"
	"net/http"

	"smartcart/internal/api/response"
	"smartcart/internal/domain"
	apperror "smartcart/internal/errors"
	"smartcart/internal/pkg/logger"
	"smartcart/internal/pkg/middleware"
)

// UserService define o contrato para as operações de registro, login e perfil.
type UserService interface {
	Register(ctx context.Context, req domain.RegisterRequest) (domain.AuthResponse, error)
	Login(ctx context.Context, req domain.LoginRequest) (domain.AuthResponse, error)
	GetProfile(ctx context.Context, userID uint) (domain.UserView, error)
	UpdateProfile(ctx context.Context, userID uint, req domain.UpdateProfileRequest) (domain.UserView, error)
}

// Handler agrupa todos os métodos de Handler do usuário.
type Handler struct {
	Service UserService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc UserService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// RegisterUserHandler lida com a requisição POST /v1/register.
// @Summary Registra um novo usuário
// @Description Cria um usuário Customer com perfil e já devolve o JWT da sessão.
// @Tags users
// @Accept json
// @Produce json
// @Param registration body domain.RegisterRequest true "Dados de registro"
// @Success 201 {object} domain.AuthResponse "Usuário criado com sucesso"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 409 {object} domain.ErrorResponse "Email já cadastrado"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Router /register [post]
func (h *Handler) RegisterUserHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := response.Decode(r, &req); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	auth, err := h.Service.Register(r.Context(), req)
	response.Handle(w, r, h.Logger, auth, err, http.StatusCreated)
}

// LoginUserHandler lida com a requisição POST /v1/login.
// @Summary Autentica um usuário e retorna um JWT
// @Description Recebe email/senha, verifica a validade e emite um JSON Web Token.
// @Tags users
// @Accept json
// @Produce json
// @Param login body domain.LoginRequest true "Credenciais do usuário (email e senha)"
// @Success 200 {object} domain.AuthResponse "Token JWT emitido"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 401 {object} domain.ErrorResponse "Credenciais inválidas"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Router /login [post]
func (h *Handler) LoginUserHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := response.Decode(r, &req); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	auth, err := h.Service.Login(r.Context(), req)
	response.Handle(w, r, h.Logger, auth, err, http.StatusOK)
}

// GetProfileHandler lida com a requisição GET /v1/profile.
// @Summary Perfil do usuário autenticado
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} domain.UserView
// @Failure 401 {object} domain.ErrorResponse "Token ausente ou inválido"
// @Failure 404 {object} domain.ErrorResponse "Usuário não encontrado"
// @Router /profile [get]
func (h *Handler) GetProfileHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserClaimsFromContext(r.Context())
	if !ok {
		response.Error(w, r, h.Logger, apperror.NewUnauthorizedError("Autorização necessária."))
		return
	}

	view, err := h.Service.GetProfile(r.Context(), claims.UserID)
	response.Handle(w, r, h.Logger, view, err, http.StatusOK)
}

// UpdateProfileHandler lida com a requisição PUT /v1/profile.
// @Summary Atualiza os dados pessoais do usuário autenticado
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param profile body domain.UpdateProfileRequest true "Dados pessoais"
// @Success 200 {object} domain.UserView
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 401 {object} domain.ErrorResponse "Token ausente ou inválido"
// @Router /profile [put]
func (h *Handler) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserClaimsFromContext(r.Context())
	if !ok {
		response.Error(w, r, h.Logger, apperror.NewUnauthorizedError("Autorização necessária."))
		return
	}

	var req domain.UpdateProfileRequest
	if err := response.Decode(r, &req); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	view, err := h.Service.UpdateProfile(r.Context(), claims.UserID, req)
	response.Handle(w, r, h.Logger, view, err, http.StatusOK)
}
