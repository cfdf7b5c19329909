package categoryrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"smartcart/internal/domain"
	apperror "smartcart/internal/errors"
	"smartcart/internal/pkg/database"
	"smartcart/internal/pkg/logger"
)

// CategoryRepository implementa as operações CRUD de categorias.
type CategoryRepository struct {
	DB        *gorm.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewCategoryRepository cria e retorna uma nova instância do Repositório de Categorias.
func NewCategoryRepository(db *gorm.DB, dbTimeout time.Duration, logger logger.Logger) *CategoryRepository {
	return &CategoryRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// CreateCategory insere uma nova categoria no banco de dados.
func (r *CategoryRepository) CreateCategory(ctx context.Context, category domain.Category) (domain.Category, error) {
	r.logger.Debug("Iniciando CreateCategory no repositório.", map[string]interface{}{"name": category.Name})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	category.ID = 0
	category.Products = nil
	if err := r.DB.WithContext(ctxTimeout).Create(&category).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return domain.Category{}, apperror.NewConflictError(fmt.Sprintf("Já existe uma categoria com o nome '%s'.", category.Name))
		}
		r.logger.Error("Falha ao inserir categoria no DB.", err)
		return domain.Category{}, apperror.NewDBError("Falha ao criar categoria", err)
	}

	r.logger.Info("Categoria criada com sucesso.", map[string]interface{}{"id": category.ID, "name": category.Name})
	return category, nil
}

// GetCategoryByID busca uma categoria pelo ID. withProducts carrega os produtos disponíveis.
func (r *CategoryRepository) GetCategoryByID(ctx context.Context, id uint, withProducts bool) (domain.Category, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	q := r.DB.WithContext(ctxTimeout)
	if withProducts {
		q = q.Preload("Products", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_available = ?", true).Order("name")
		})
	}

	var category domain.Category
	err := q.First(&category, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		r.logger.Info("Categoria não encontrada.", map[string]interface{}{"id": id})
		return domain.Category{}, apperror.NewNotFoundError(fmt.Sprintf("Categoria com ID %d não encontrada.", id))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar categoria no DB.", err)
		return domain.Category{}, apperror.NewDBError("Falha ao buscar categoria", err)
	}
	return category, nil
}

// GetAllCategories lista as categorias em ordem de nome, com a contagem de produtos de cada uma.
func (r *CategoryRepository) GetAllCategories(ctx context.Context) ([]domain.CategorySummary, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	summaries := []domain.CategorySummary{}
	err := r.DB.WithContext(ctxTimeout).
		Model(&domain.Category{}).
		Select("categories.id, categories.name, categories.description, COUNT(products.id) AS product_count").
		Joins("LEFT JOIN products ON products.category_id = categories.id").
		Group("categories.id, categories.name, categories.description").
		Order("categories.name").
		Scan(&summaries).Error
	if err != nil {
		r.logger.Error("Falha ao executar GetAllCategories query.", err)
		return nil, apperror.NewDBError("Falha ao buscar todas as categorias", err)
	}

	r.logger.Debug("GetAllCategories concluído com sucesso.", map[string]interface{}{"total_categories": len(summaries)})
	return summaries, nil
}

// ExistsByName checa o nome sem diferenciar maiúsculas; excludeID ignora a própria categoria numa atualização.
func (r *CategoryRepository) ExistsByName(ctx context.Context, name string, excludeID uint) (bool, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var count int64
	err := r.DB.WithContext(ctxTimeout).
		Model(&domain.Category{}).
		Where("LOWER(name) = ? AND id <> ?", strings.ToLower(strings.TrimSpace(name)), excludeID).
		Count(&count).Error
	if err != nil {
		return false, apperror.NewDBError("Falha ao checar nome da categoria", err)
	}
	return count > 0, nil
}

// Exists informa se a categoria existe.
func (r *CategoryRepository) Exists(ctx context.Context, id uint) (bool, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var count int64
	if err := r.DB.WithContext(ctxTimeout).Model(&domain.Category{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, apperror.NewDBError("Falha ao checar categoria", err)
	}
	return count > 0, nil
}

// UpdateCategory atualiza nome e descrição. Quando nenhuma linha é afetada, a existência é
// rechecada uma única vez: sumiu vira NotFound, caso contrário o conflito vira InternalError.
func (r *CategoryRepository) UpdateCategory(ctx context.Context, category domain.Category) (domain.Category, error) {
	r.logger.Debug("Iniciando UpdateCategory no repositório.", map[string]interface{}{"id": category.ID, "name": category.Name})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	res := r.DB.WithContext(ctxTimeout).
		Model(&domain.Category{}).
		Where("id = ?", category.ID).
		Updates(map[string]interface{}{"name": category.Name, "description": category.Description})
	if res.Error != nil {
		if database.IsUniqueViolation(res.Error) {
			return domain.Category{}, apperror.NewConflictError(fmt.Sprintf("Já existe uma categoria com o nome '%s'.", category.Name))
		}
		r.logger.Error("Falha ao atualizar categoria no DB.", res.Error)
		return domain.Category{}, apperror.NewDBError("Falha ao atualizar categoria", res.Error)
	}

	if res.RowsAffected == 0 {
		exists, err := r.Exists(ctx, category.ID)
		if err != nil {
			return domain.Category{}, err
		}
		if !exists {
			r.logger.Info("Categoria não encontrada para atualização.", map[string]interface{}{"id": category.ID})
			return domain.Category{}, apperror.NewNotFoundError(fmt.Sprintf("Categoria com ID %d não encontrada para atualização.", category.ID))
		}
		return domain.Category{}, apperror.NewInternalError("Atualização concorrente da categoria.", fmt.Errorf("categoria %d: nenhuma linha afetada", category.ID))
	}

	r.logger.Info("Categoria atualizada com sucesso.", map[string]interface{}{"id": category.ID, "name": category.Name})
	return r.GetCategoryByID(ctx, category.ID, false)
}

// CountProducts conta os produtos vinculados à categoria.
func (r *CategoryRepository) CountProducts(ctx context.Context, id uint) (int64, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var count int64
	if err := r.DB.WithContext(ctxTimeout).Model(&domain.Product{}).Where("category_id = ?", id).Count(&count).Error; err != nil {
		return 0, apperror.NewDBError("Falha ao contar produtos da categoria", err)
	}
	return count, nil
}

// DeleteCategory remove uma categoria pelo ID.
func (r *CategoryRepository) DeleteCategory(ctx context.Context, id uint) error {
	r.logger.Debug("Iniciando DeleteCategory no repositório.", map[string]interface{}{"id": id})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	res := r.DB.WithContext(ctxTimeout).Delete(&domain.Category{}, id)
	if res.Error != nil {
		r.logger.Error("Falha ao deletar categoria do DB.", res.Error)
		return apperror.NewDBError("Falha ao deletar categoria", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("Categoria com ID %d não encontrada para exclusão.", id))
	}

	r.logger.Info("Categoria deletada com sucesso.", map[string]interface{}{"id": id})
	return nil
}
