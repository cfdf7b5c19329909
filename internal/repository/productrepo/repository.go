package productrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"smartcart/internal/domain"
	apperror "smartcart/internal/errors"
	"smartcart/internal/pkg/cache"
	"smartcart/internal/pkg/logger"
)

// Define a chave de cache para produtos.
const productCacheKey = "smartcart:product:%d"

// ProductRepository acessa produtos no banco (gorm) com cache-aside no Redis para leituras por ID.
type ProductRepository struct {
	DB        *gorm.DB
	Cache     cache.Client
	DBTimeout time.Duration
	CacheTTL  time.Duration
	logger    logger.Logger
}

// NewProductRepository cria e retorna uma nova instância do Repositório.
func NewProductRepository(db *gorm.DB, cacheClient cache.Client, dbTimeout, cacheTTL time.Duration, logger logger.Logger) *ProductRepository {
	return &ProductRepository{
		DB:        db,
		Cache:     cacheClient,
		DBTimeout: dbTimeout,
		CacheTTL:  cacheTTL,
		logger:    logger,
	}
}

func cacheKey(id uint) string { return fmt.Sprintf(productCacheKey, id) }

func (r *ProductRepository) invalidate(ctx context.Context, id uint) {
	if err := r.Cache.Delete(ctx, cacheKey(id)); err != nil {
		r.logger.Warn("Falha ao invalidar produto no cache.", map[string]interface{}{"product_id": id, "error": err.Error()})
	}
}

// Save persiste um novo produto.
func (r *ProductRepository) Save(ctx context.Context, product domain.Product) (domain.Product, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	product.ID = 0
	product.Category = nil
	if err := r.DB.WithContext(ctxTimeout).Create(&product).Error; err != nil {
		r.logger.Error("Falha ao inserir produto no DB.", err)
		return domain.Product{}, apperror.NewDBError("failed to insert product", err)
	}

	r.logger.Info("Produto criado.", map[string]interface{}{"product_id": product.ID, "name": product.Name})
	return product, nil
}

// FindByID busca um produto pelo ID, utilizando a estratégia Cache-Aside.
func (r *ProductRepository) FindByID(ctx context.Context, id uint) (domain.Product, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	key := cacheKey(id)
	var product domain.Product

	// Cache HIT
	cachedData, err := r.Cache.Get(ctxTimeout, key)
	if err == nil {
		if json.Unmarshal([]byte(cachedData), &product) == nil {
			return product, nil
		}
		r.logger.Warn("Entrada de cache corrompida, lendo do DB.", map[string]interface{}{"key": key})
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		// Cache indisponível não derruba a leitura
		r.logger.Warn("Falha ao ler do cache Redis.", map[string]interface{}{"key": key, "error": err.Error()})
	}

	err = r.DB.WithContext(ctxTimeout).Preload("Category").First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Product{}, apperror.NewNotFoundError(fmt.Sprintf("Produto com ID %d não existe na base de dados.", id))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar produto no DB.", err)
		return domain.Product{}, apperror.NewDBError("Falha ao buscar produto no DB", err)
	}

	if productJSON, marshalErr := json.Marshal(product); marshalErr == nil {
		if setErr := r.Cache.Set(ctxTimeout, key, productJSON, r.CacheTTL); setErr != nil {
			r.logger.Warn("Falha ao gravar produto no cache.", map[string]interface{}{"key": key, "error": setErr.Error()})
		}
	}

	return product, nil
}

// FindByIDs carrega vários produtos de uma vez (precificação do carrinho). IDs inexistentes são ignorados.
func (r *ProductRepository) FindByIDs(ctx context.Context, ids []uint) ([]domain.Product, error) {
	if len(ids) == 0 {
		return []domain.Product{}, nil
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var products []domain.Product
	if err := r.DB.WithContext(ctxTimeout).Where("id IN ?", ids).Find(&products).Error; err != nil {
		r.logger.Error("Falha ao buscar produtos por IDs.", err)
		return nil, apperror.NewDBError("failed to load products by ids", err)
	}
	return products, nil
}

// likeEscaper faz '%' e '_' da busca valerem como texto literal no LIKE.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// List aplica filtro, ordenação e paginação. O filtro já chega normalizado pelo serviço.
func (r *ProductRepository) List(ctx context.Context, filter domain.ProductFilter) (domain.ProductPage, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	q := r.DB.WithContext(ctxTimeout).Model(&domain.Product{})
	if filter.AvailableOnly {
		q = q.Where("products.is_available = ?", true)
	}
	if kw := strings.TrimSpace(filter.Keyword); kw != "" {
		q = q.Where(`LOWER(products.name) LIKE ? ESCAPE '\'`, "%"+likeEscaper.Replace(strings.ToLower(kw))+"%")
	}
	if filter.CategoryID != nil {
		q = q.Where("products.category_id = ?", *filter.CategoryID)
	}
	if filter.MinPrice != nil {
		q = q.Where("products.price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		q = q.Where("products.price <= ?", *filter.MaxPrice)
	}

	// Session torna a cadeia reaproveitável entre o Count e o Find
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		r.logger.Error("Falha ao contar produtos.", err)
		return domain.ProductPage{}, apperror.NewDBError("failed to count products", err)
	}

	switch filter.SortBy {
	case domain.SortPrice:
		q = q.Order("products.price ASC").Order("products.id ASC")
	case domain.SortName:
		q = q.Order("products.name ASC").Order("products.id ASC")
	case domain.SortCategory:
		q = q.Joins("LEFT JOIN categories ON categories.id = products.category_id").
			Order("categories.name ASC").Order("products.name ASC")
	default:
		q = q.Order("products.created_at DESC").Order("products.id DESC")
	}

	items := []domain.Product{}
	err := q.Preload("Category").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&items).Error
	if err != nil {
		r.logger.Error("Falha ao listar produtos.", err)
		return domain.ProductPage{}, apperror.NewDBError("failed to list products", err)
	}

	return domain.ProductPage{Items: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// Update grava os campos editáveis com controle de concorrência otimista pela coluna version.
// Nenhuma linha afetada leva a uma única rechecagem: produto sumiu vira NotFound,
// caso contrário a versão mudou no meio do caminho e o conflito sobe como InternalError.
func (r *ProductRepository) Update(ctx context.Context, product domain.Product) (domain.Product, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	res := r.DB.WithContext(ctxTimeout).
		Model(&domain.Product{}).
		Where("id = ? AND version = ?", product.ID, product.Version).
		Updates(map[string]interface{}{
			"name":         product.Name,
			"description":  product.Description,
			"price":        product.Price,
			"stock_level":  product.StockLevel,
			"image_url":    product.ImageURL,
			"category_id":  product.CategoryID,
			"is_available": product.IsAvailable,
			"version":      gorm.Expr("version + 1"),
			"updated_at":   time.Now().UTC(),
		})
	if res.Error != nil {
		r.logger.Error("Falha ao atualizar produto.", res.Error)
		return domain.Product{}, apperror.NewDBError("failed to update product", res.Error)
	}
	r.invalidate(ctx, product.ID)

	if res.RowsAffected == 0 {
		return domain.Product{}, r.resolveZeroRows(ctx, product.ID)
	}

	return r.findFresh(ctx, product.ID)
}

// AdjustStock soma delta ao estoque. Resultado negativo é ValidationError; versão alterada por
// outra escrita é ConflictError (o cliente repete o ajuste).
func (r *ProductRepository) AdjustStock(ctx context.Context, id uint, delta int) (domain.Product, error) {
	r.logger.Debug("Iniciando ajuste de estoque no repositório.", map[string]interface{}{"product_id": id, "delta": delta})

	current, err := r.findFresh(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}

	newLevel := current.StockLevel + delta
	if newLevel < 0 {
		r.logger.Warn("Tentativa de ajustar estoque para quantidade negativa.", map[string]interface{}{
			"product_id": id, "current": current.StockLevel, "delta": delta,
		})
		return domain.Product{}, apperror.NewValidationError("Ajuste resultaria em quantidade de estoque negativa.")
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	res := r.DB.WithContext(ctxTimeout).
		Model(&domain.Product{}).
		Where("id = ? AND version = ?", id, current.Version).
		Updates(map[string]interface{}{
			"stock_level": newLevel,
			"version":     gorm.Expr("version + 1"),
			"updated_at":  time.Now().UTC(),
		})
	if res.Error != nil {
		r.logger.Error("Falha ao atualizar nível de estoque.", res.Error)
		return domain.Product{}, apperror.NewDBError("Falha ao atualizar estoque", res.Error)
	}
	r.invalidate(ctx, id)

	if res.RowsAffected == 0 {
		r.logger.Warn("Falha no controle de concorrência otimista. Versão desatualizada.", map[string]interface{}{
			"product_id": id, "expected_version": current.Version,
		})
		return domain.Product{}, apperror.NewConflictError("O estoque foi modificado por outra operação. Tente novamente.")
	}

	current.StockLevel = newLevel
	current.Version++
	r.logger.Info("Nível de estoque atualizado.", map[string]interface{}{"product_id": id, "new_quantity": newLevel, "new_version": current.Version})
	return current, nil
}

// UpdateImageURL grava a URL pública da imagem do produto.
func (r *ProductRepository) UpdateImageURL(ctx context.Context, id uint, imageURL string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	res := r.DB.WithContext(ctxTimeout).
		Model(&domain.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"image_url": imageURL, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return apperror.NewDBError("failed to update image url", res.Error)
	}
	r.invalidate(ctx, id)
	if res.RowsAffected == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("Produto com ID %d não existe na base de dados.", id))
	}
	return nil
}

// Delete remove o produto e sua entrada de cache.
func (r *ProductRepository) Delete(ctx context.Context, id uint) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	res := r.DB.WithContext(ctxTimeout).Delete(&domain.Product{}, id)
	if res.Error != nil {
		r.logger.Error("Falha ao deletar produto.", res.Error)
		return apperror.NewDBError("failed to delete product", res.Error)
	}
	r.invalidate(ctx, id)
	if res.RowsAffected == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("Produto com ID %d não existe na base de dados.", id))
	}
	r.logger.Info("Produto removido.", map[string]interface{}{"product_id": id})
	return nil
}

// findFresh lê direto do banco, sem passar pelo cache.
func (r *ProductRepository) findFresh(ctx context.Context, id uint) (domain.Product, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var product domain.Product
	err := r.DB.WithContext(ctxTimeout).Preload("Category").First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Product{}, apperror.NewNotFoundError(fmt.Sprintf("Produto com ID %d não existe na base de dados.", id))
	}
	if err != nil {
		return domain.Product{}, apperror.NewDBError("Falha ao buscar produto no DB", err)
	}
	return product, nil
}

func (r *ProductRepository) resolveZeroRows(ctx context.Context, id uint) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var count int64
	if err := r.DB.WithContext(ctxTimeout).Model(&domain.Product{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return apperror.NewDBError("failed to re-check product", err)
	}
	if count == 0 {
		r.logger.Info("Produto removido durante a atualização.", map[string]interface{}{"product_id": id})
		return apperror.NewNotFoundError(fmt.Sprintf("Produto com ID %d não existe na base de dados.", id))
	}
	r.logger.Warn("Atualização concorrente de produto detectada.", map[string]interface{}{"product_id": id})
	return apperror.NewInternalError("Atualização concorrente do produto.", fmt.Errorf("produto %d: versão desatualizada", id))
}
