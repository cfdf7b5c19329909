package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"smartcart/internal/domain"
)

// ErrInvalidToken é o único erro devolvido por ValidateToken. Expirado, adulterado,
// emissor ou audiência errados são indistinguíveis para quem chama.
var ErrInvalidToken = errors.New("token inválido ou expirado")

// TokenService define o contrato para manipulação de JWTs.
type TokenService interface {
	GenerateToken(user domain.User) (string, time.Time, error)
	ValidateToken(tokenString string) (*CustomClaims, error)
}

// Config é a configuração imutável do emissor, construída uma vez na inicialização.
type Config struct {
	SecretKey string
	Issuer    string
	Audience  string
	TTL       time.Duration
}

// CustomClaims define as informações específicas que armazenamos no JWT.
type CustomClaims struct {
	UserID uint            `json:"userId"`
	Email  string          `json:"email"`
	Role   domain.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// Service implementa a interface TokenService (HS256).
type Service struct {
	secretKey []byte
	issuer    string
	audience  string
	ttl       time.Duration
	now       func() time.Time
}

// NewService valida a configuração e cria o serviço. A ausência de qualquer campo
// é um erro de configuração de inicialização.
func NewService(cfg Config) (*Service, error) {
	switch {
	case cfg.SecretKey == "":
		return nil, errors.New("configuração JWT: chave secreta ausente")
	case cfg.Issuer == "":
		return nil, errors.New("configuração JWT: issuer ausente")
	case cfg.Audience == "":
		return nil, errors.New("configuração JWT: audience ausente")
	case cfg.TTL <= 0:
		return nil, errors.New("configuração JWT: TTL deve ser positivo")
	}

	return &Service{
		secretKey: []byte(cfg.SecretKey),
		issuer:    cfg.Issuer,
		audience:  cfg.Audience,
		ttl:       cfg.TTL,
		now:       time.Now,
	}, nil
}

// WithClock troca a fonte de tempo (usado nos testes de expiração).
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// GenerateToken cria um JWT assinado com ID, e-mail e papel do usuário.
// Retorna também o instante de expiração (emissão + TTL).
func (s *Service) GenerateToken(user domain.User) (string, time.Time, error) {
	issuedAt := s.now().UTC().Truncate(time.Second)
	expiresAt := issuedAt.Add(s.ttl)

	claims := CustomClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	// Assina o token com a chave secreta
	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("falha ao assinar o token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// ValidateToken valida assinatura, emissor, audiência e expiração.
func (s *Service) ValidateToken(tokenString string) (*CustomClaims, error) {
	claims := &CustomClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Verifica se o método de assinatura é o esperado (HMAC)
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de assinatura inesperado: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	if !claims.Role.Valid() || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
