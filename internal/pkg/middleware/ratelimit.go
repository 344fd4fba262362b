package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"persol/internal/domain"
	"persol/internal/pkg/cache"
	"persol/internal/pkg/logger"
	"persol/internal/pkg/respond"
)

// RateLimiter limita requisições por IP em janelas fixas usando um contador no cache.
// Se o cache falhar a requisição segue (fail open) e o erro é registrado.
func RateLimiter(client cache.Client, limit int, window time.Duration, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}
			key := "rate-limit:" + ip

			ctx, cancel := context.WithTimeout(r.Context(), 200*time.Millisecond)
			defer cancel()

			// Uma chave que ficou sem TTL recebe a janela de novo a cada requisição.
			count, err := client.IncrWindow(ctx, key, window)
			if err != nil {
				log.Warn("Rate limiter indisponível, liberando requisição.", map[string]interface{}{"ip": ip, "error": err.Error()})
				next.ServeHTTP(w, r)
				return
			}

			remaining := int64(limit) - count
			if remaining < 0 {
				remaining = 0
			}
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if count > int64(limit) {
				w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
				respond.JSON(w, http.StatusTooManyRequests, domain.APIResponse{
					Success:  false,
					Message:  "Limite de requisições excedido. Tente novamente mais tarde.",
					Category: "RATE_LIMITED",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
