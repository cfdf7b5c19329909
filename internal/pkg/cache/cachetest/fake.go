// Package cachetest fornece um cache.Client em memória para os testes.
package cachetest

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"smartcart/internal/pkg/cache"
)

type entry struct {
	value     string
	expiresAt time.Time
}

// Fake guarda as chaves em um map. Expiração é avaliada com Now.
type Fake struct {
	mu   sync.Mutex
	data map[string]entry

	Now func() time.Time
	// Err, quando definido, é devolvido por todas as operações.
	Err error
}

// New cria um Fake vazio.
func New() *Fake {
	return &Fake{data: map[string]entry{}, Now: time.Now}
}

var _ cache.Client = (*Fake)(nil)

func (f *Fake) lookup(key string) (entry, bool) {
	e, ok := f.data[key]
	if !ok {
		return entry{}, false
	}
	if !e.expiresAt.IsZero() && !f.Now().Before(e.expiresAt) {
		delete(f.data, key)
		return entry{}, false
	}
	return e, true
}

func (f *Fake) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return "", f.Err
	}
	e, ok := f.lookup(key)
	if !ok {
		return "", cache.ErrCacheMiss
	}
	return e.value, nil
}

func (f *Fake) GetInt(ctx context.Context, key string) (int, error) {
	s, err := f.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(s)
}

func (f *Fake) Incr(_ context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return 0, f.Err
	}
	e, _ := f.lookup(key)
	n, _ := strconv.ParseInt(e.value, 10, 64)
	n++
	e.value = strconv.FormatInt(n, 10)
	f.data[key] = e
	return n, nil
}

func (f *Fake) Set(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	e := entry{}
	switch v := value.(type) {
	case string:
		e.value = v
	case []byte:
		e.value = string(v)
	default:
		e.value = fmt.Sprint(v)
	}
	if expiration > 0 {
		e.expiresAt = f.Now().Add(expiration)
	}
	f.data[key] = e
	return nil
}

func (f *Fake) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	delete(f.data, key)
	return nil
}

// Has informa se a chave existe e não expirou.
func (f *Fake) Has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.lookup(key)
	return ok
}

// TTL devolve o tempo restante da chave (zero se não expira ou não existe).
func (f *Fake) TTL(key string) time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.lookup(key)
	if !ok || e.expiresAt.IsZero() {
		return 0
	}
	return e.expiresAt.Sub(f.Now())
}
