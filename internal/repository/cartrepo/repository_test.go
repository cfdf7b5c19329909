package cartrepo_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartcart/internal/cart"
	apperror "smartcart/internal/errors"
	"smartcart/internal/pkg/cache/cachetest"
	"smartcart/internal/pkg/logger"
	"smartcart/internal/repository/cartrepo"
)

func newRepo() (*cartrepo.CartRepository, *cachetest.Fake) {
	fake := cachetest.New()
	now := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)
	fake.Now = func() time.Time { return now }
	return cartrepo.NewCartRepository(fake, time.Second, 24*time.Hour, logger.NewLoggerWithWriter("error", io.Discard)), fake
}

func TestLoad_MissingKeyIsEmptyCart(t *testing.T) {
	repo, _ := newRepo()

	c, err := repo.Load(context.Background(), "7")
	require.NoError(t, err)
	assert.NotNil(t, c)
	assert.Empty(t, c)
}

func TestSave_WritesJSONArrayUnderWellKnownKey(t *testing.T) {
	repo, fake := newRepo()
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "7", cart.Cart{{ProductID: "1", Quantity: 2}}))

	raw, err := fake.Get(ctx, "smartcart:cart:7")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"productId":"1","quantity":2}]`, raw)
	assert.Equal(t, 24*time.Hour, fake.TTL("smartcart:cart:7"))

	loaded, err := repo.Load(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, cart.Cart{{ProductID: "1", Quantity: 2}}, loaded)
}

func TestSave_EmptyCartDeletesKey(t *testing.T) {
	repo, fake := newRepo()
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "7", cart.Cart{{ProductID: "1", Quantity: 1}}))
	require.NoError(t, repo.Save(ctx, "7", cart.Cart{}))

	assert.False(t, fake.Has(cartrepo.Key("7")))
}

func TestLoad_CorruptedOrInvalidEntries(t *testing.T) {
	repo, fake := newRepo()
	ctx := context.Background()

	require.NoError(t, fake.Set(ctx, cartrepo.Key("a"), "not json", 0))
	c, err := repo.Load(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, c)

	require.NoError(t, fake.Set(ctx, cartrepo.Key("b"), `[{"productId":"1","quantity":0},{"productId":"","quantity":3},{"productId":"2","quantity":1}]`, 0))
	c, err = repo.Load(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, cart.Cart{{ProductID: "2", Quantity: 1}}, c)
}

func TestLoad_BackendFailureIsInternal(t *testing.T) {
	repo, fake := newRepo()
	fake.Err = errors.New("connection refused")

	_, err := repo.Load(context.Background(), "7")
	assert.IsType(t, &apperror.InternalError{}, err)
}

func TestClear(t *testing.T) {
	repo, fake := newRepo()
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "9", cart.Cart{{ProductID: "1", Quantity: 1}}))
	require.NoError(t, repo.Clear(ctx, "9"))
	assert.False(t, fake.Has(cartrepo.Key("9")))
}
