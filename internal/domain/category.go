package domain

// Category agrupa produtos do catálogo.
type Category struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"size:100;uniqueIndex;not null"`
	Description string    `json:"description" gorm:"size:500;not null"`
	Products    []Product `json:"products,omitempty" gorm:"foreignKey:CategoryID"`
}

// CategorySummary é a linha da listagem de categorias, com a contagem de produtos.
type CategorySummary struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	ProductCount int64  `json:"productCount"`
}

// CategoryInput é o payload de criação/atualização de categoria.
type CategoryInput struct {
	Name        string `json:"name" validate:"required,notblank,max=100"`
	Description string `json:"description" validate:"max=500"`
}
