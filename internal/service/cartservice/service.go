// Package cartservice é a fronteira entre a API e o motor do carrinho: resolve produtos,
// limita quantidades ao estoque e persiste o resultado.
package cartservice

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"smartcart/internal/cart"
	"smartcart/internal/domain"
	apperror "smartcart/internal/errors"
	"smartcart/internal/pkg/logger"
)

// CartStore é a persistência do carrinho (internal/repository/cartrepo).
type CartStore interface {
	Load(ctx context.Context, owner string) (cart.Cart, error)
	Save(ctx context.Context, owner string, c cart.Cart) error
	Clear(ctx context.Context, owner string) error
}

// ProductFinder resolve os produtos referenciados pelo carrinho.
type ProductFinder interface {
	FindByIDs(ctx context.Context, ids []uint) ([]domain.Product, error)
}

// View é o carrinho precificado devolvido ao cliente.
type View struct {
	Items   []cart.Line  `json:"items"`
	Summary cart.Summary `json:"summary"`
}

// AddItemRequest é o corpo de POST /v1/cart/items.
type AddItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// SetQuantityRequest é o corpo de PUT /v1/cart/items/{productId}.
type SetQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// Service opera o carrinho do usuário autenticado.
type Service struct {
	store    CartStore
	products ProductFinder
	logger   logger.Logger
}

// NewService cria o serviço de carrinho.
func NewService(store CartStore, products ProductFinder, log logger.Logger) *Service {
	return &Service{store: store, products: products, logger: log}
}

// Owner converte o ID do usuário na chave de dono do carrinho.
func Owner(userID uint) string { return strconv.FormatUint(uint64(userID), 10) }

func productKey(id uint) string { return strconv.FormatUint(uint64(id), 10) }

// ParseProductID aceita apenas IDs numéricos positivos.
func ParseProductID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// Get devolve o carrinho precificado.
func (s *Service) Get(ctx context.Context, userID uint) (View, error) {
	c, err := s.store.Load(ctx, Owner(userID))
	if err != nil {
		return View{}, err
	}
	return s.price(ctx, c)
}

// Summary devolve apenas os totais do carrinho.
func (s *Service) Summary(ctx context.Context, userID uint) (cart.Summary, error) {
	view, err := s.Get(ctx, userID)
	if err != nil {
		return cart.Summary{}, err
	}
	return view.Summary, nil
}

// Add soma a quantidade ao item, limitada ao estoque disponível do produto.
func (s *Service) Add(ctx context.Context, userID uint, req AddItemRequest) (View, error) {
	product, key, err := s.resolve(ctx, req.ProductID)
	if err != nil {
		return View{}, err
	}
	if product.StockLevel <= 0 {
		return View{}, apperror.NewValidationError(fmt.Sprintf("Produto '%s' sem estoque.", product.Name))
	}

	owner := Owner(userID)
	c, err := s.store.Load(ctx, owner)
	if err != nil {
		return View{}, err
	}

	qty := req.Quantity
	if qty < 1 {
		qty = 1
	}
	current, _ := c.Find(key)
	// Compara sem somar: quantidade próxima de MaxInt não pode estourar.
	if qty > product.StockLevel-current.Quantity {
		qty = product.StockLevel - current.Quantity
	}
	if qty > 0 {
		c = cart.AddItem(c, key, qty)
		if err := s.store.Save(ctx, owner, c); err != nil {
			return View{}, err
		}
	}

	s.logger.Debug("Item adicionado ao carrinho.", map[string]interface{}{"user_id": userID, "product_id": key, "quantity": qty})
	return s.price(ctx, c)
}

// SetQuantity substitui a quantidade do item. Quantidade <= 0 remove o item.
func (s *Service) SetQuantity(ctx context.Context, userID uint, rawProductID string, req SetQuantityRequest) (View, error) {
	if req.Quantity <= 0 {
		return s.Remove(ctx, userID, rawProductID)
	}

	product, key, err := s.resolve(ctx, rawProductID)
	if err != nil {
		return View{}, err
	}

	qty := req.Quantity
	if qty > product.StockLevel {
		qty = product.StockLevel
	}

	owner := Owner(userID)
	c, err := s.store.Load(ctx, owner)
	if err != nil {
		return View{}, err
	}
	c = cart.SetQuantity(c, key, qty)
	if err := s.store.Save(ctx, owner, c); err != nil {
		return View{}, err
	}
	return s.price(ctx, c)
}

// Remove retira o item do carrinho. Remover um item ausente não é erro.
func (s *Service) Remove(ctx context.Context, userID uint, rawProductID string) (View, error) {
	key := strings.TrimSpace(rawProductID)
	if key == "" {
		return View{}, apperror.NewValidationError("O ID do produto é obrigatório.")
	}
	if id, ok := ParseProductID(key); ok {
		key = productKey(id)
	}

	owner := Owner(userID)
	c, err := s.store.Load(ctx, owner)
	if err != nil {
		return View{}, err
	}
	c = cart.RemoveItem(c, key)
	if err := s.store.Save(ctx, owner, c); err != nil {
		return View{}, err
	}
	return s.price(ctx, c)
}

// Clear esvazia o carrinho.
func (s *Service) Clear(ctx context.Context, userID uint) error {
	return s.store.Clear(ctx, Owner(userID))
}

func (s *Service) resolve(ctx context.Context, rawProductID string) (domain.Product, string, error) {
	id, ok := ParseProductID(rawProductID)
	if !ok {
		return domain.Product{}, "", apperror.NewFieldValidationError(
			fmt.Sprintf("ID de produto inválido: '%s'.", rawProductID),
			map[string]string{"productId": "deve ser um número positivo"},
		)
	}

	found, err := s.products.FindByIDs(ctx, []uint{id})
	if err != nil {
		return domain.Product{}, "", err
	}
	if len(found) == 0 || !found[0].IsAvailable {
		return domain.Product{}, "", apperror.NewNotFoundError(fmt.Sprintf("Produto %d não encontrado.", id))
	}
	return found[0], productKey(id), nil
}

// price carrega de uma vez os produtos do carrinho e aplica o motor de preços.
func (s *Service) price(ctx context.Context, c cart.Cart) (View, error) {
	lookup, err := s.lookupFor(ctx, c)
	if err != nil {
		return View{}, err
	}
	return View{Items: cart.Lines(c, lookup), Summary: cart.Summarize(c, lookup)}, nil
}

// lookupFor só resolve produtos existentes e disponíveis; o resto contribui com zero.
func (s *Service) lookupFor(ctx context.Context, c cart.Cart) (cart.Lookup, error) {
	ids := make([]uint, 0, len(c))
	for _, it := range c {
		if id, ok := ParseProductID(it.ProductID); ok {
			ids = append(ids, id)
		}
	}

	infos := make(map[string]cart.ProductInfo, len(ids))
	if len(ids) > 0 {
		products, err := s.products.FindByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, p := range products {
			if !p.IsAvailable {
				continue
			}
			infos[productKey(p.ID)] = cart.ProductInfo{Name: p.Name, Price: p.Price, Stock: p.StockLevel}
		}
	}

	return cart.LookupFunc(func(productID string) (cart.ProductInfo, bool) {
		id, ok := ParseProductID(productID)
		if !ok {
			return cart.ProductInfo{}, false
		}
		info, ok := infos[productKey(id)]
		return info, ok
	}), nil
}
