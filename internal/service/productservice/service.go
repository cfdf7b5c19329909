package productservice

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"smartcart/internal/domain"
	apperror "smartcart/internal/errors"
	"smartcart/internal/pkg/logger"
	"smartcart/internal/pkg/validation"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// MsgImageStorageDisabled é devolvida quando o bucket de imagens não está configurado.
const MsgImageStorageDisabled = "Armazenamento de imagens não configurado."

// ProductRepository define o contrato (interface) que este Serviço espera
// da camada de Persistência (DB, Cache).
type ProductRepository interface {
	Save(ctx context.Context, product domain.Product) (domain.Product, error)
	FindByID(ctx context.Context, id uint) (domain.Product, error)
	List(ctx context.Context, filter domain.ProductFilter) (domain.ProductPage, error)
	Update(ctx context.Context, product domain.Product) (domain.Product, error)
	AdjustStock(ctx context.Context, id uint, delta int) (domain.Product, error)
	UpdateImageURL(ctx context.Context, id uint, imageURL string) error
	Delete(ctx context.Context, id uint) error
}

// CategoryChecker confirma a existência da categoria referenciada pelo produto.
type CategoryChecker interface {
	Exists(ctx context.Context, id uint) (bool, error)
}

// ImageStorage gera URLs pré-assinadas para upload direto ao bucket.
type ImageStorage interface {
	PresignPut(ctx context.Context, key, contentType string) (string, time.Duration, error)
	PublicURL(key string) string
}

// Service é a estrutura que implementa as regras do catálogo de produtos.
type Service struct {
	repo       ProductRepository
	categories CategoryChecker
	images     ImageStorage
	validator  *validation.Validator
	logger     logger.Logger
	now        func() time.Time
}

// NewService cria e retorna uma nova instância do Serviço de Produto.
// images pode ser nil quando o S3 não está configurado.
func NewService(repo ProductRepository, categories CategoryChecker, images ImageStorage, log logger.Logger) *Service {
	return &Service{
		repo:       repo,
		categories: categories,
		images:     images,
		validator:  validation.New(),
		logger:     log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// NormalizeFilter aplica os padrões de paginação e descarta ordenações desconhecidas.
func NormalizeFilter(filter domain.ProductFilter) (domain.ProductFilter, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = DefaultPageLimit
	}
	if filter.Limit > MaxPageLimit {
		filter.Limit = MaxPageLimit
	}
	filter.Keyword = strings.TrimSpace(filter.Keyword)

	switch filter.SortBy {
	case "":
		filter.SortBy = domain.SortNewest
	case domain.SortNewest, domain.SortPrice, domain.SortName, domain.SortCategory:
	default:
		return filter, apperror.NewFieldValidationError(
			fmt.Sprintf("Ordenação '%s' não suportada.", filter.SortBy),
			map[string]string{"sortBy": "deve ser um de: price name category newest"},
		)
	}

	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		return filter, apperror.NewFieldValidationError(
			"O preço mínimo não pode ser maior que o máximo.",
			map[string]string{"minPrice": "deve ser menor ou igual a maxPrice"},
		)
	}
	return filter, nil
}

// GetProducts lista os produtos disponíveis da vitrine.
func (s *Service) GetProducts(ctx context.Context, filter domain.ProductFilter) (domain.ProductPage, error) {
	normalized, err := NormalizeFilter(filter)
	if err != nil {
		return domain.ProductPage{}, err
	}
	normalized.AvailableOnly = true

	s.logger.Debug("Listando produtos.", map[string]interface{}{
		"page": normalized.Page, "limit": normalized.Limit, "sort": normalized.SortBy,
	})
	return s.repo.List(ctx, normalized)
}

// GetProductByID busca um produto pelo ID.
func (s *Service) GetProductByID(ctx context.Context, id uint) (domain.Product, error) {
	if id == 0 {
		return domain.Product{}, apperror.NewValidationError("O ID do produto é obrigatório.")
	}
	return s.repo.FindByID(ctx, id)
}

// CreateProduct valida e persiste um novo produto.
func (s *Service) CreateProduct(ctx context.Context, input domain.ProductInput) (domain.Product, error) {
	if err := s.validateInput(ctx, input); err != nil {
		return domain.Product{}, err
	}

	now := s.now()
	product := domain.Product{
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		Price:       input.Price.Round(2),
		StockLevel:  input.StockLevel,
		ImageURL:    strings.TrimSpace(input.ImageURL),
		CategoryID:  input.CategoryID,
		IsAvailable: input.IsAvailable == nil || *input.IsAvailable,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := s.repo.Save(ctx, product)
	if err != nil {
		return domain.Product{}, err
	}
	s.logger.Info("Produto criado.", map[string]interface{}{"product_id": created.ID})
	return created, nil
}

// UpdateProduct substitui os dados editáveis de um produto existente.
func (s *Service) UpdateProduct(ctx context.Context, id uint, input domain.ProductInput) (domain.Product, error) {
	if id == 0 {
		return domain.Product{}, apperror.NewValidationError("O ID do produto é obrigatório.")
	}
	if err := s.validateInput(ctx, input); err != nil {
		return domain.Product{}, err
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}

	current.Name = strings.TrimSpace(input.Name)
	current.Description = strings.TrimSpace(input.Description)
	current.Price = input.Price.Round(2)
	current.StockLevel = input.StockLevel
	current.ImageURL = strings.TrimSpace(input.ImageURL)
	current.CategoryID = input.CategoryID
	if input.IsAvailable != nil {
		current.IsAvailable = *input.IsAvailable
	}
	current.Category = nil
	current.UpdatedAt = s.now()

	updated, err := s.repo.Update(ctx, current)
	if err != nil {
		return domain.Product{}, err
	}
	s.logger.Info("Produto atualizado.", map[string]interface{}{"product_id": id, "version": updated.Version})
	return updated, nil
}

// DeleteProduct remove o produto do catálogo.
func (s *Service) DeleteProduct(ctx context.Context, id uint) error {
	if id == 0 {
		return apperror.NewValidationError("O ID do produto é obrigatório.")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Produto removido.", map[string]interface{}{"product_id": id})
	return nil
}

// AdjustStock aplica um ajuste administrativo ao estoque do produto.
func (s *Service) AdjustStock(ctx context.Context, id uint, req domain.StockAdjustmentRequest) (domain.Product, error) {
	s.logger.Debug("Iniciando ajuste de estoque no serviço.", map[string]interface{}{
		"product_id": id,
		"delta":      req.Delta,
	})

	if id == 0 {
		return domain.Product{}, apperror.NewValidationError("O ID do produto é obrigatório.")
	}
	if req.Delta == 0 {
		return domain.Product{}, apperror.NewValidationError("O ajuste de estoque (delta) não pode ser zero.")
	}

	product, err := s.repo.AdjustStock(ctx, id, req.Delta)
	if err != nil {
		if apperror.IsConflict(err) {
			s.logger.Warn("Conflito de versão no ajuste de estoque.", map[string]interface{}{"product_id": id})
		} else if !apperror.IsNotFound(err) {
			s.logger.With(map[string]interface{}{"op": "AdjustStock", "product_id": id}).Error("Falha ao ajustar estoque.", err)
		}
		return domain.Product{}, err
	}

	s.logger.Info("Estoque ajustado.", map[string]interface{}{
		"product_id": id,
		"new_level":  product.StockLevel,
	})
	return product, nil
}

// PresignImageUpload gera a URL de upload da imagem e já grava a URL pública no produto.
func (s *Service) PresignImageUpload(ctx context.Context, id uint, req domain.ImageUploadRequest) (domain.ImageUpload, error) {
	if s.images == nil {
		return domain.ImageUpload{}, apperror.NewValidationError(MsgImageStorageDisabled)
	}
	if err := s.validator.Struct(req); err != nil {
		return domain.ImageUpload{}, err
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return domain.ImageUpload{}, err
	}

	key := path.Join("products", fmt.Sprint(id), uuid.NewString()+extensionFor(req.ContentType))
	uploadURL, expires, err := s.images.PresignPut(ctx, key, req.ContentType)
	if err != nil {
		s.logger.With(map[string]interface{}{"op": "PresignImageUpload", "product_id": id}).Error("Falha ao gerar URL de upload.", err)
		return domain.ImageUpload{}, apperror.NewInternalError("Falha ao gerar URL de upload.", err)
	}

	imageURL := s.images.PublicURL(key)
	if err := s.repo.UpdateImageURL(ctx, id, imageURL); err != nil {
		s.logger.With(map[string]interface{}{"op": "PresignImageUpload", "product_id": id}).Error("Falha ao gravar URL da imagem.", err)
		return domain.ImageUpload{}, err
	}

	return domain.ImageUpload{
		Key:       key,
		UploadURL: uploadURL,
		ImageURL:  imageURL,
		ExpiresIn: int(expires.Seconds()),
	}, nil
}

func (s *Service) validateInput(ctx context.Context, input domain.ProductInput) error {
	if err := s.validator.Struct(input); err != nil {
		return err
	}
	if !input.Price.GreaterThan(decimal.Zero) {
		return apperror.NewFieldValidationError("O preço do produto deve ser positivo.", map[string]string{"price": "deve ser maior que 0"})
	}
	if input.CategoryID == nil {
		return nil
	}

	exists, err := s.categories.Exists(ctx, *input.CategoryID)
	if err != nil {
		return err
	}
	if !exists {
		return apperror.NewFieldValidationError(
			fmt.Sprintf("Categoria %d não existe.", *input.CategoryID),
			map[string]string{"categoryId": "categoria inexistente"},
		)
	}
	return nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
