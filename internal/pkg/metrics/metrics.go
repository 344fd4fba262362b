// Package metrics concentra os coletores Prometheus da API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "persol_orders_created_total",
		Help: "Total de pedidos criados",
	})

	OrdersFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "persol_orders_failed_total",
		Help: "Total de tentativas de pedido recusadas ou com falha",
	}, []string{"reason"})

	OrderPlacementDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "persol_order_placement_duration_seconds",
		Help:    "Duração da transação de criação de pedido",
		Buckets: prometheus.DefBuckets,
	})

	OrderStatusTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "persol_order_status_transitions_total",
		Help: "Transições de status aplicadas pelos administradores",
	}, []string{"field", "from", "to"})

	LoginAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "persol_login_attempts_total",
		Help: "Tentativas de login por resultado",
	}, []string{"result"})

	ProductCacheLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "persol_product_cache_lookups_total",
		Help: "Consultas ao cache de produtos por resultado (hit/miss/error)",
	}, []string{"result"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "persol_http_requests_total",
		Help: "Total de requisições HTTP",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "persol_http_request_duration_seconds",
		Help:    "Latência das requisições HTTP",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Middleware registra contagem e latência por rota. A rota é o padrão do ServeMux
// (r.Pattern), nunca o caminho bruto, para manter a cardinalidade baixa.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
