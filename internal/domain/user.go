package domain

import (
	"strings"
	"time"
)

// UserRole é o papel do usuário no sistema. É um conjunto fechado: Customer ou Admin.
type UserRole string

const (
	RoleCustomer UserRole = "Customer"
	RoleAdmin    UserRole = "Admin"
)

// Valid informa se o papel pertence ao conjunto conhecido.
func (r UserRole) Valid() bool {
	return r == RoleCustomer || r == RoleAdmin
}

// CanManageCatalog é a checagem de capacidade usada para as rotas administrativas
// (mutação de produtos e categorias).
func (r UserRole) CanManageCatalog() bool {
	return r == RoleAdmin
}

// User representa a entidade do usuário no sistema.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // Oculta o hash da senha no JSON de resposta
	Role         UserRole  `json:"role" gorm:"size:20;not null"`
	CreatedAt    time.Time `json:"createdAt"`
	LastLoginAt  time.Time `json:"lastLoginAt"`
	Profile      *Profile  `json:"profile,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// Profile contém os dados pessoais do usuário (1:1, FK do lado do perfil).
type Profile struct {
	ID          uint   `json:"-" gorm:"primaryKey"`
	UserID      uint   `json:"-" gorm:"uniqueIndex;not null"`
	FirstName   string `json:"firstName" gorm:"size:50;not null"`
	LastName    string `json:"lastName" gorm:"size:50;not null"`
	PhoneNumber string `json:"phoneNumber" gorm:"size:30;not null"`
	Address     string `json:"address" gorm:"size:200;not null"`
	City        string `json:"city" gorm:"size:100;not null"`
	PostalCode  string `json:"postalCode" gorm:"size:20;not null"`
	Country     string `json:"country" gorm:"size:100;not null"`
}

// TableName mantém o nome de tabela usado nas migrações.
func (Profile) TableName() string { return "user_profiles" }

// NormalizeEmail produz a chave de unicidade do e-mail (trim + minúsculas).
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// --- DTOs de entrada ---

// RegisterRequest representa o payload de entrada para o registro.
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email,max=255"`
	Password    string `json:"password" validate:"required,min=6,maxbytes=72"`
	FirstName   string `json:"firstName" validate:"required,notblank,max=50"`
	LastName    string `json:"lastName" validate:"required,notblank,max=50"`
	PhoneNumber string `json:"phoneNumber,omitempty" validate:"max=30"`
	Address     string `json:"address,omitempty" validate:"max=200"`
	City        string `json:"city,omitempty" validate:"max=100"`
	PostalCode  string `json:"postalCode,omitempty" validate:"max=20"`
	Country     string `json:"country,omitempty" validate:"max=100"`
}

// LoginRequest representa o payload de entrada para o login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest é o payload de PUT /v1/profile.
type UpdateProfileRequest struct {
	FirstName   string `json:"firstName" validate:"required,notblank,max=50"`
	LastName    string `json:"lastName" validate:"required,notblank,max=50"`
	PhoneNumber string `json:"phoneNumber" validate:"max=30"`
	Address     string `json:"address" validate:"max=200"`
	City        string `json:"city" validate:"max=100"`
	PostalCode  string `json:"postalCode" validate:"max=20"`
	Country     string `json:"country" validate:"max=100"`
}

// ProfileFromFields monta um Profile com todos os campos aparados.
// Campos opcionais ausentes ficam como string vazia, nunca nulos.
func ProfileFromFields(first, last, phone, address, city, postal, country string) Profile {
	return Profile{
		FirstName:   strings.TrimSpace(first),
		LastName:    strings.TrimSpace(last),
		PhoneNumber: strings.TrimSpace(phone),
		Address:     strings.TrimSpace(address),
		City:        strings.TrimSpace(city),
		PostalCode:  strings.TrimSpace(postal),
		Country:     strings.TrimSpace(country),
	}
}

// --- DTOs de saída ---

// ProfileView é a projeção pública do perfil.
type ProfileView struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	FullName    string `json:"fullName"`
	PhoneNumber string `json:"phoneNumber"`
	Address     string `json:"address"`
	City        string `json:"city"`
	PostalCode  string `json:"postalCode"`
	Country     string `json:"country"`
}

// UserView é a projeção pública do usuário usada por Register, Login e Profile.
type UserView struct {
	ID          uint         `json:"id"`
	Email       string       `json:"email"`
	Role        UserRole     `json:"role"`
	CreatedAt   time.Time    `json:"createdAt"`
	LastLoginAt time.Time    `json:"lastLoginAt"`
	Profile     *ProfileView `json:"profile"`
}

// NewUserView projeta User+Profile; Profile fica nulo quando não existe.
func NewUserView(u User) UserView {
	view := UserView{
		ID:          u.ID,
		Email:       u.Email,
		Role:        u.Role,
		CreatedAt:   u.CreatedAt,
		LastLoginAt: u.LastLoginAt,
	}
	if u.Profile != nil {
		p := u.Profile
		view.Profile = &ProfileView{
			FirstName:   p.FirstName,
			LastName:    p.LastName,
			FullName:    strings.TrimSpace(p.FirstName + " " + p.LastName),
			PhoneNumber: p.PhoneNumber,
			Address:     p.Address,
			City:        p.City,
			PostalCode:  p.PostalCode,
			Country:     p.Country,
		}
	}
	return view
}

// AuthResponse é a resposta de Register e Login.
type AuthResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"tokenType"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      UserView  `json:"user"`
}
