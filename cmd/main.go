package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	// Nossos pacotes de infraestrutura e utilitários
	"persol/config"
	"persol/internal/pkg/broker"
	"persol/internal/pkg/cache"
	"persol/internal/pkg/database"
	"persol/internal/pkg/logger"
	"persol/internal/pkg/middleware"
	"persol/internal/pkg/telemetry"
	"persol/internal/pkg/token"

	// Camadas para Injeção de Dependências
	"persol/internal/api/admin"
	"persol/internal/api/auth"
	"persol/internal/api/brand"
	"persol/internal/api/order"
	"persol/internal/api/product"
	"persol/internal/api/router"
	"persol/internal/api/stock"
	"persol/internal/repository/brandrepo"
	"persol/internal/repository/orderrepo"
	"persol/internal/repository/productrepo"
	"persol/internal/repository/stockrepo"
	"persol/internal/repository/userrepo"
	"persol/internal/service/authservice"
	"persol/internal/service/brandservice"
	"persol/internal/service/orderservice"
	"persol/internal/service/productservice"
	"persol/internal/service/stockservice"
)

// @title Persol API
// @version 1.0
// @description Loja de óculos Persol: catálogo, pedidos e administração.
// @host localhost:8080
// @BasePath /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Informe "Bearer <token>".
func main() {
	// 0. CARREGAR VARIÁVEIS DE AMBIENTE (.env)
	// Sem .env seguimos com as variáveis do sistema (ex: Docker).
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ Aviso: Arquivo .env não encontrado ou erro de leitura. Carregando configs apenas do ambiente do sistema.")
	}

	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Configuração inválida: %v", err)
	}

	log := logger.NewLogger(cfg.LogLevel)
	defer log.Sync()
	log.Info("⚡ Inicializando API Persol...", map[string]interface{}{"env": cfg.Environment})

	// 1. Tracing
	shutdownTracer, err := telemetry.InitTracerProvider(context.Background(), "persol-api", cfg.Environment, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatal("Falha ao inicializar o tracing.", err)
	}

	// 2. Conexão com Recursos de Infraestrutura

	// A. Banco de Dados (PostgreSQL)
	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Falha ao conectar ao banco de dados.", err)
	}
	defer db.Close()
	log.Info("Conexão PostgreSQL estabelecida.", nil)

	// B. Cache (Redis). Fora do ar, o cache de produtos e o rate limiter degradam sem derrubar a API.
	cacheClient, err := cache.NewRedisClient(cfg.RedisAddr)
	if err != nil {
		log.Warn("Redis indisponível na inicialização; seguindo sem cache.", map[string]interface{}{"error": err.Error()})
		cacheClient = cache.NewRedisClientFrom(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
	} else {
		log.Info("Conexão Redis estabelecida.", nil)
	}
	defer cacheClient.Close()

	// C. Eventos (Kafka). Sem brokers configurados os eventos são descartados.
	var events interface {
		orderservice.EventPublisher
		Close() error
	} = broker.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		events = broker.NewEventPublisher(broker.NewProducer(cfg.KafkaBrokers, cfg.KafkaOrderTopic))
		log.Info("Produtor Kafka configurado.", map[string]interface{}{"topic": cfg.KafkaOrderTopic})
	}
	defer events.Close()

	// D. Serviço de Tokens (JWT)
	tokenSvc, err := token.NewService(token.Config{
		Secret:   cfg.JWTSecretKey,
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		Expiry:   cfg.TokenExpiry,
	})
	if err != nil {
		log.Fatal("Falha ao inicializar o serviço de tokens.", err)
	}

	// 3. INJEÇÃO DE DEPENDÊNCIAS
	// Ordem: Repository -> Service -> Handler
	userRepo := userrepo.NewUserRepository(db, cfg.DBTimeout, log)
	brandRepo := brandrepo.NewBrandRepository(db, cfg.DBTimeout, log)
	productRepo := productrepo.NewProductRepository(db, cacheClient, cfg.DBTimeout, cfg.CacheTTL, log)
	stockRepo := stockrepo.NewStockRepository(db, cfg.DBTimeout, log)
	orderRepo := orderrepo.NewOrderRepository(db, cfg.DBTimeout, log)

	authSvc := authservice.NewService(userRepo, tokenSvc, log)
	brandSvc := brandservice.NewService(brandRepo, log)
	productSvc := productservice.NewService(productRepo, log)
	stockSvc := stockservice.NewService(stockRepo, productRepo, log)
	orderSvc := orderservice.NewService(orderRepo, userRepo, events, log,
		orderservice.WithStrictTransitions(cfg.OrderStrictTransitions))

	handlers := router.Handlers{
		Auth:    auth.NewHandler(authSvc, log),
		Product: product.NewHandler(productSvc, log),
		Brand:   brand.NewHandler(brandSvc, log),
		Order:   order.NewHandler(orderSvc, log),
		Admin:   admin.NewHandler(orderSvc, authSvc, log),
		Stock:   stock.NewHandler(stockSvc, log),
	}
	log.Debug("Handlers inicializados.", nil)

	// 4. Configuração e Início do Roteador/Servidor
	r := router.NewRouter(handlers, middleware.NewGate(tokenSvc, log), router.RateLimit{
		Cache:       cacheClient,
		MaxRequests: cfg.RateLimitMaxRequests,
		Period:      cfg.RateLimitPeriod,
	}, log)

	server := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: otelhttp.NewHandler(r, "persol-api",
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				if r.Pattern != "" {
					return r.Pattern
				}
				return r.Method + " " + r.URL.Path
			}),
		),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 5. Execução e Graceful Shutdown
	go func() {
		log.Info("Servidor Persol ouvindo na porta", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Servidor falhou.", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Desligamento do servidor forçado.", err)
	}
	if err := shutdownTracer(ctx); err != nil {
		log.Error("Falha ao encerrar o provedor de traces.", err)
	}

	log.Info("Servidor encerrado com sucesso.", nil)
}
