// Package seedservice prepara o banco na inicialização: cria o administrador padrão
// quando nenhum existe e importa um catálogo de exemplo a partir de um arquivo JSON.
package seedservice

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"smartcart/internal/domain"
	apperror "smartcart/internal/errors"
	"smartcart/internal/pkg/logger"
	"smartcart/internal/pkg/password"
)

// UserStore é o que o seeder precisa do repositório de usuários.
type UserStore interface {
	HasRole(ctx context.Context, role domain.UserRole) (bool, error)
	CreateWithProfile(ctx context.Context, user domain.User, profile domain.Profile) (domain.User, error)
}

// CatalogStore é o que o seeder precisa dos repositórios do catálogo.
type CatalogStore interface {
	GetAllCategories(ctx context.Context) ([]domain.CategorySummary, error)
	CreateCategory(ctx context.Context, category domain.Category) (domain.Category, error)
}

// ProductStore grava os produtos de exemplo.
type ProductStore interface {
	Save(ctx context.Context, product domain.Product) (domain.Product, error)
}

// Admin são as credenciais do administrador padrão.
type Admin struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// CatalogFile é o formato do arquivo de catálogo de exemplo.
type CatalogFile struct {
	Categories []struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Products    []struct {
			Name        string          `json:"name"`
			Description string          `json:"description"`
			Price       decimal.Decimal `json:"price"`
			StockLevel  int             `json:"stockLevel"`
			ImageURL    string          `json:"imageUrl"`
		} `json:"products"`
	} `json:"categories"`
}

// Seeder executa a carga inicial.
type Seeder struct {
	users      UserStore
	categories CatalogStore
	products   ProductStore
	hasher     password.Hasher
	logger     logger.Logger
	now        func() time.Time
}

// NewSeeder cria o seeder.
func NewSeeder(users UserStore, categories CatalogStore, products ProductStore, hasher password.Hasher, log logger.Logger) *Seeder {
	return &Seeder{
		users:      users,
		categories: categories,
		products:   products,
		hasher:     hasher,
		logger:     log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Run cria o administrador padrão e, se catalogFile não for vazio, importa o catálogo.
func (s *Seeder) Run(ctx context.Context, admin Admin, catalogFile string) error {
	if _, err := s.SeedAdmin(ctx, admin); err != nil {
		return err
	}
	if catalogFile == "" {
		return nil
	}
	return s.SeedCatalogFromFile(ctx, catalogFile)
}

// SeedAdmin cria o administrador padrão apenas quando não há nenhum Admin.
// É o único caminho pelo qual um usuário recebe o papel Admin.
func (s *Seeder) SeedAdmin(ctx context.Context, admin Admin) (bool, error) {
	exists, err := s.users.HasRole(ctx, domain.RoleAdmin)
	if err != nil {
		return false, err
	}
	if exists {
		s.logger.Info("Administrador já existe. Seed do admin ignorado.", nil)
		return false, nil
	}

	email := domain.NormalizeEmail(admin.Email)
	if email == "" || admin.Password == "" {
		return false, apperror.NewValidationError("Credenciais do administrador padrão não configuradas.")
	}

	digest, err := s.hasher.Hash(admin.Password)
	if err != nil {
		return false, apperror.NewInternalError("Falha ao gerar hash da senha do administrador.", err)
	}

	now := s.now()
	user := domain.User{Email: email, PasswordHash: digest, Role: domain.RoleAdmin, CreatedAt: now, LastLoginAt: now}
	profile := domain.ProfileFromFields(admin.FirstName, admin.LastName, "", "", "", "", "")

	created, err := s.users.CreateWithProfile(ctx, user, profile)
	if err != nil {
		return false, err
	}

	s.logger.Info("Administrador padrão criado.", map[string]interface{}{"user_id": created.ID, "email": email})
	s.logger.Warn("Senha padrão do administrador em uso. Altere-a após o primeiro acesso.", map[string]interface{}{"email": email})
	return true, nil
}

// SeedCatalogFromFile lê o JSON do catálogo e o importa.
func (s *Seeder) SeedCatalogFromFile(ctx context.Context, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return apperror.NewInternalError(fmt.Sprintf("Falha ao ler o catálogo '%s'.", path), err)
	}

	var file CatalogFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return apperror.NewValidationError(fmt.Sprintf("Catálogo '%s' inválido: %v", path, err))
	}
	return s.SeedCatalog(ctx, file)
}

// SeedCatalog importa o catálogo apenas em um banco sem categorias.
func (s *Seeder) SeedCatalog(ctx context.Context, file CatalogFile) error {
	existing, err := s.categories.GetAllCategories(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		s.logger.Info("Catálogo já populado. Seed de exemplo ignorado.", map[string]interface{}{"categories": len(existing)})
		return nil
	}

	products := 0
	for _, c := range file.Categories {
		category, err := s.categories.CreateCategory(ctx, domain.Category{Name: c.Name, Description: c.Description})
		if err != nil {
			return err
		}

		for _, p := range c.Products {
			now := s.now()
			_, err := s.products.Save(ctx, domain.Product{
				Name:        p.Name,
				Description: p.Description,
				Price:       p.Price.Round(2),
				StockLevel:  p.StockLevel,
				ImageURL:    p.ImageURL,
				CategoryID:  &category.ID,
				IsAvailable: true,
				Version:     1,
				CreatedAt:   now,
				UpdatedAt:   now,
			})
			if err != nil {
				return err
			}
			products++
		}
	}

	s.logger.Info("Catálogo de exemplo importado.", map[string]interface{}{
		"categories": len(file.Categories),
		"products":   products,
	})
	return nil
}
