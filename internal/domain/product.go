package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa o item principal do catálogo (a Entidade).
type Product struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	Name        string          `json:"name" gorm:"size:200;not null"`
	Description string          `json:"description" gorm:"size:2000;not null"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	StockLevel  int             `json:"stockLevel" gorm:"not null"`
	ImageURL    string          `json:"imageUrl" gorm:"size:500;not null"`
	CategoryID  *uint           `json:"categoryId" gorm:"index"`
	Category    *Category       `json:"category,omitempty" gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT"`
	IsAvailable bool            `json:"isAvailable" gorm:"not null"`
	Version     int             `json:"version" gorm:"not null"` // Controle de concorrência otimista
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// ProductInput é o payload de criação/atualização de produto (Admin).
type ProductInput struct {
	Name        string          `json:"name" validate:"required,notblank,max=200"`
	Description string          `json:"description" validate:"max=2000"`
	Price       decimal.Decimal `json:"price"`
	StockLevel  int             `json:"stockLevel" validate:"min=0"`
	ImageURL    string          `json:"imageUrl" validate:"omitempty,url,max=500"`
	CategoryID  *uint           `json:"categoryId"`
	IsAvailable *bool           `json:"isAvailable"`
}

// Sort keys aceitos pela listagem.
const (
	SortNewest   = "newest"
	SortPrice    = "price"
	SortName     = "name"
	SortCategory = "category"
)

// ProductFilter define os parâmetros de busca, ordenação e paginação.
type ProductFilter struct {
	Page          int
	Limit         int
	Keyword       string
	CategoryID    *uint
	MinPrice      *decimal.Decimal
	MaxPrice      *decimal.Decimal
	SortBy        string
	AvailableOnly bool
}

// ProductPage é o resultado paginado da listagem.
type ProductPage struct {
	Items []Product `json:"items"`
	Total int64     `json:"total"`
	Page  int       `json:"page"`
	Limit int       `json:"limit"`
}
