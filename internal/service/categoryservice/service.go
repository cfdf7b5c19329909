package categoryservice

import (
	"context"
	"fmt"
	"strings"

	"smartcart/internal/domain"
	apperror "smartcart/internal/errors"
	"smartcart/internal/pkg/logger"
	"smartcart/internal/pkg/validation"
)

// CategoryRepository define o contrato que o Serviço de Categorias espera da camada de Persistência.
type CategoryRepository interface {
	CreateCategory(ctx context.Context, category domain.Category) (domain.Category, error)
	GetCategoryByID(ctx context.Context, id uint, withProducts bool) (domain.Category, error)
	GetAllCategories(ctx context.Context) ([]domain.CategorySummary, error)
	ExistsByName(ctx context.Context, name string, excludeID uint) (bool, error)
	UpdateCategory(ctx context.Context, category domain.Category) (domain.Category, error)
	CountProducts(ctx context.Context, id uint) (int64, error)
	DeleteCategory(ctx context.Context, id uint) error
}

// Service implementa as regras de categorias do catálogo.
type Service struct {
	repo      CategoryRepository
	validator *validation.Validator
	logger    logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Categorias.
func NewService(repo CategoryRepository, logger logger.Logger) *Service {
	return &Service{repo: repo, validator: validation.New(), logger: logger}
}

// CreateCategory cria uma nova categoria após validações de negócio.
func (s *Service) CreateCategory(ctx context.Context, input domain.CategoryInput) (domain.Category, error) {
	s.logger.Debug("Iniciando criação de categoria no serviço.", map[string]interface{}{"name": input.Name})

	category, err := s.prepare(ctx, input, 0)
	if err != nil {
		return domain.Category{}, err
	}

	created, err := s.repo.CreateCategory(ctx, category)
	if err != nil {
		return domain.Category{}, err
	}

	s.logger.Info("Categoria criada com sucesso.", map[string]interface{}{"id": created.ID, "name": created.Name})
	return created, nil
}

// GetCategoryByID busca uma categoria com seus produtos disponíveis.
func (s *Service) GetCategoryByID(ctx context.Context, id uint) (domain.Category, error) {
	if id == 0 {
		return domain.Category{}, apperror.NewValidationError("O ID da categoria é obrigatório.")
	}
	return s.repo.GetCategoryByID(ctx, id, true)
}

// GetAllCategories lista as categorias com a contagem de produtos.
func (s *Service) GetAllCategories(ctx context.Context) ([]domain.CategorySummary, error) {
	categories, err := s.repo.GetAllCategories(ctx)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []domain.CategorySummary{}
	}
	return categories, nil
}

// GetCategoryProducts devolve apenas os produtos disponíveis da categoria.
func (s *Service) GetCategoryProducts(ctx context.Context, id uint) ([]domain.Product, error) {
	category, err := s.GetCategoryByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category.Products == nil {
		return []domain.Product{}, nil
	}
	return category.Products, nil
}

// UpdateCategory renomeia ou redescreve uma categoria existente.
func (s *Service) UpdateCategory(ctx context.Context, id uint, input domain.CategoryInput) (domain.Category, error) {
	if id == 0 {
		return domain.Category{}, apperror.NewValidationError("O ID da categoria é obrigatório.")
	}

	category, err := s.prepare(ctx, input, id)
	if err != nil {
		return domain.Category{}, err
	}
	category.ID = id

	updated, err := s.repo.UpdateCategory(ctx, category)
	if err != nil {
		return domain.Category{}, err
	}

	s.logger.Info("Categoria atualizada com sucesso.", map[string]interface{}{"id": id})
	return updated, nil
}

// DeleteCategory remove a categoria; categorias com produtos não podem ser removidas.
func (s *Service) DeleteCategory(ctx context.Context, id uint) error {
	if id == 0 {
		return apperror.NewValidationError("O ID da categoria é obrigatório.")
	}

	count, err := s.repo.CountProducts(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		s.logger.Warn("Tentativa de remover categoria com produtos.", map[string]interface{}{"id": id, "products": count})
		return apperror.NewValidationError(fmt.Sprintf("A categoria possui %d produto(s) e não pode ser removida.", count))
	}

	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Categoria removida com sucesso.", map[string]interface{}{"id": id})
	return nil
}

func (s *Service) prepare(ctx context.Context, input domain.CategoryInput, excludeID uint) (domain.Category, error) {
	if err := s.validator.Struct(input); err != nil {
		s.logger.Warn("Falha na validação da categoria.", map[string]interface{}{"name": input.Name, "error": err.Error()})
		return domain.Category{}, err
	}

	name := strings.TrimSpace(input.Name)
	taken, err := s.repo.ExistsByName(ctx, name, excludeID)
	if err != nil {
		return domain.Category{}, err
	}
	if taken {
		return domain.Category{}, apperror.NewConflictError(fmt.Sprintf("Já existe uma categoria chamada '%s'.", name))
	}

	return domain.Category{Name: name, Description: strings.TrimSpace(input.Description)}, nil
}
