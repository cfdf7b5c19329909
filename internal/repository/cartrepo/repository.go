package cartrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"smartcart/internal/cart"
	apperror "smartcart/internal/errors"
	"smartcart/internal/pkg/cache"
	"smartcart/internal/pkg/logger"
)

// KeyPrefix é a chave conhecida sob a qual cada carrinho é gravado, seguida do dono.
const KeyPrefix = "smartcart:cart:"

// CartRepository guarda o carrinho como um array JSON de {productId, quantity} no Redis.
// Cada mutação regrava o array inteiro (último a escrever vence).
type CartRepository struct {
	Cache   cache.Client
	Timeout time.Duration
	TTL     time.Duration
	logger  logger.Logger
}

// NewCartRepository cria o repositório. ttl <= 0 grava sem expiração.
func NewCartRepository(client cache.Client, timeout, ttl time.Duration, logger logger.Logger) *CartRepository {
	return &CartRepository{Cache: client, Timeout: timeout, TTL: ttl, logger: logger}
}

// Key devolve a chave do carrinho de um dono.
func Key(owner string) string { return KeyPrefix + owner }

// Load lê o carrinho. Chave ausente é um carrinho vazio; JSON corrompido é descartado
// e tratado como vazio.
func (r *CartRepository) Load(ctx context.Context, owner string) (cart.Cart, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	raw, err := r.Cache.Get(ctxTimeout, Key(owner))
	if errors.Is(err, cache.ErrCacheMiss) {
		return cart.Cart{}, nil
	}
	if err != nil {
		r.logger.Error("Falha ao ler carrinho do Redis.", err)
		return nil, apperror.NewInternalError("failed to load cart", err)
	}

	var items cart.Cart
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		r.logger.Warn("Carrinho corrompido descartado.", map[string]interface{}{"owner": owner, "error": err.Error()})
		return cart.Cart{}, nil
	}

	// Entradas inválidas não sobrevivem à leitura
	valid := make(cart.Cart, 0, len(items))
	for _, it := range items {
		if it.ProductID != "" && it.Quantity > 0 {
			valid = append(valid, it)
		}
	}
	return valid, nil
}

// Save regrava o array inteiro. Um carrinho vazio apaga a chave.
func (r *CartRepository) Save(ctx context.Context, owner string, c cart.Cart) error {
	if len(c) == 0 {
		return r.Clear(ctx, owner)
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	payload, err := json.Marshal(c)
	if err != nil {
		return apperror.NewInternalError("failed to encode cart", err)
	}
	if err := r.Cache.Set(ctxTimeout, Key(owner), payload, r.TTL); err != nil {
		r.logger.Error("Falha ao gravar carrinho no Redis.", err)
		return apperror.NewInternalError(fmt.Sprintf("failed to save cart for %s", owner), err)
	}
	return nil
}

// Clear remove o carrinho do dono.
func (r *CartRepository) Clear(ctx context.Context, owner string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	if err := r.Cache.Delete(ctxTimeout, Key(owner)); err != nil {
		r.logger.Error("Falha ao apagar carrinho no Redis.", err)
		return apperror.NewInternalError("failed to clear cart", err)
	}
	return nil
}
