package middleware

import (
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"smartcart/internal/api/response"
	apperror "smartcart/internal/errors"
	"smartcart/internal/pkg/cache"
	"smartcart/internal/pkg/logger"
)

// RateLimitKeyPrefix precede o IP do cliente na chave do contador.
const RateLimitKeyPrefix = "smartcart:rate-limit:"

// RateLimiter aplica uma janela fixa de `limit` requisições por `duration` para cada IP.
// Com o Redis indisponível a requisição segue sem limite.
func RateLimiter(client cache.Client, limit int, duration time.Duration, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := RateLimitKeyPrefix + clientIP(r)
			ctx := r.Context()
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))

			count, err := client.GetInt(ctx, key)
			if errors.Is(err, cache.ErrCacheMiss) {
				if err := client.Set(ctx, key, 1, duration); err != nil {
					log.Warn("Falha ao iniciar contador de rate limit.", map[string]interface{}{"error": err.Error()})
				}
				w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(limit-1))
				next.ServeHTTP(w, r)
				return
			} else if err != nil {
				log.Warn("Rate limit indisponível; requisição liberada.", map[string]interface{}{"error": err.Error()})
				next.ServeHTTP(w, r)
				return
			}

			if count >= limit {
				w.Header().Set("X-RateLimit-Remaining", "0")
				w.Header().Set("Retry-After", strconv.Itoa(int(duration.Seconds())))
				response.Error(w, r, log, apperror.NewTooManyRequestsError("Limite de requisições excedido. Tente novamente mais tarde."))
				return
			}

			if _, err := client.Incr(ctx, key); err != nil {
				log.Warn("Falha ao incrementar contador de rate limit.", map[string]interface{}{"error": err.Error()})
			}
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(limit-count-1))
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
