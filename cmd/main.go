package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	// Nossos pacotes de infraestrutura e utilitários
	"smartcart/config"
	"smartcart/internal/pkg/cache"
	"smartcart/internal/pkg/database"
	"smartcart/internal/pkg/logger"
	"smartcart/internal/pkg/password"
	"smartcart/internal/pkg/storage"
	"smartcart/internal/pkg/token"

	// Camadas para Injeção de Dependências
	carthandler "smartcart/internal/api/cart"
	"smartcart/internal/api/category"
	"smartcart/internal/api/checkout"
	"smartcart/internal/api/product"
	"smartcart/internal/api/router"
	"smartcart/internal/api/user"
	"smartcart/internal/repository/cartrepo"
	"smartcart/internal/repository/categoryrepo"
	"smartcart/internal/repository/productrepo"
	"smartcart/internal/repository/userrepo"
	"smartcart/internal/service/cartservice"
	"smartcart/internal/service/categoryservice"
	"smartcart/internal/service/checkoutservice"
	"smartcart/internal/service/productservice"
	"smartcart/internal/service/seedservice"
	"smartcart/internal/service/userservice"
)

// @title SmartCart API
// @version 1.0
// @description Autenticação, catálogo, carrinho e checkout simulado da SmartCart.
// @host localhost:8080
// @BasePath /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Configuração e Inicialização
	log.Println("⚡ Inicializando serviço SmartCart...")
	if err := godotenv.Load(); err != nil {
		// Sem .env seguimos com o ambiente do sistema (ex: Docker).
		log.Println("⚠️ Aviso: Arquivo .env não encontrado ou erro de leitura. Carregando configs apenas do ambiente do sistema.")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	appLog := logger.NewLogger(cfg.LogLevel)
	appLog.Info("Configurações carregadas.", map[string]interface{}{"env": cfg.Environment, "db_driver": cfg.DBDriver})

	// 2. Conexão com Recursos de Infraestrutura

	// A. Banco de Dados (gorm sobre Postgres ou SQLite)
	db, err := database.NewGormDB(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		appLog.Fatal("Falha ao conectar ao banco de dados.", err)
	}
	defer database.Close(db)
	if cfg.DBDriver == database.DriverSQLite {
		// Em Postgres o esquema vem de cmd/migrate.
		if err := database.AutoMigrate(db); err != nil {
			appLog.Fatal("Falha ao migrar o esquema SQLite.", err)
		}
	}
	appLog.Info("Conexão com o banco estabelecida.", map[string]interface{}{"driver": cfg.DBDriver})

	// B. Cache (Redis)
	cacheClient, err := cache.NewRedisClient(cfg.RedisAddr)
	if err != nil {
		// Cache e rate limit degradam; o carrinho falha até o Redis voltar.
		appLog.Error("Redis indisponível na inicialização.", err)
	} else {
		appLog.Info("Conexão Redis estabelecida.", nil)
	}
	defer cacheClient.Close()

	// C. Serviço de Tokens (JWT)
	tokenSvc, err := token.NewService(token.Config{
		SecretKey: cfg.JWTSecretKey,
		Issuer:    cfg.JWTIssuer,
		Audience:  cfg.JWTAudience,
		TTL:       cfg.TokenExpiry,
	})
	if err != nil {
		appLog.Fatal("Configuração JWT inválida.", err)
	}

	// D. Armazenamento de imagens (opcional)
	var images productservice.ImageStorage
	if cfg.S3.Enabled() {
		s3Images, err := storage.NewS3Images(context.Background(), storage.Config{
			Region:        cfg.S3.Region,
			AccessKey:     cfg.S3.AccessKey,
			SecretKey:     cfg.S3.SecretKey,
			Endpoint:      cfg.S3.Endpoint,
			Bucket:        cfg.S3.Bucket,
			PublicBaseURL: cfg.S3.PublicBaseURL,
		})
		if err != nil {
			appLog.Fatal("Falha ao configurar o S3.", err)
		}
		images = s3Images
		appLog.Info("Upload de imagens habilitado.", map[string]interface{}{"bucket": cfg.S3.Bucket})
	}

	// 3. INJEÇÃO DE DEPENDÊNCIAS
	// Ordem: Repository -> Service -> Handler
	hasher := password.NewBcryptHasher(0)

	userRepo := userrepo.NewUserRepository(db, cfg.DBTimeout, appLog)
	categoryRepo := categoryrepo.NewCategoryRepository(db, cfg.DBTimeout, appLog)
	productRepo := productrepo.NewProductRepository(db, cacheClient, cfg.DBTimeout, cfg.ProductCacheTTL, appLog)
	cartRepo := cartrepo.NewCartRepository(cacheClient, cfg.CacheTimeout, cfg.CartTTL, appLog)
	appLog.Debug("Repositórios inicializados.", nil)

	userSvc := userservice.NewService(userRepo, tokenSvc, hasher, appLog)
	categorySvc := categoryservice.NewService(categoryRepo, appLog)
	productSvc := productservice.NewService(productRepo, categoryRepo, images, appLog)
	cartSvc := cartservice.NewService(cartRepo, productRepo, appLog)
	checkoutSvc := checkoutservice.NewService(cartSvc, appLog)
	appLog.Debug("Serviços inicializados.", nil)

	// E. Seed: administrador padrão e catálogo inicial
	seeder := seedservice.NewSeeder(userRepo, categoryRepo, productRepo, hasher, appLog)
	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 30*time.Second)
	err = seeder.Run(seedCtx, seedservice.Admin{
		Email:     cfg.DefaultAdmin.Email,
		Password:  cfg.DefaultAdmin.Password,
		FirstName: cfg.DefaultAdmin.FirstName,
		LastName:  cfg.DefaultAdmin.LastName,
	}, cfg.SeedCatalogFile)
	cancelSeed()
	if err != nil {
		appLog.Error("Seed inicial falhou.", err)
	}

	// 4. Configuração e Início do Roteador/Servidor
	r := router.NewRouter(router.Handlers{
		User:     user.NewHandler(userSvc, appLog),
		Product:  product.NewHandler(productSvc, appLog),
		Category: category.NewHandler(categorySvc, appLog),
		Cart:     carthandler.NewHandler(cartSvc, appLog),
		Checkout: checkout.NewHandler(checkoutSvc, appLog),
	}, tokenSvc, cacheClient, router.RateLimit{
		MaxRequests: cfg.RateLimitMaxRequests,
		Period:      cfg.RateLimitPeriod,
	}, appLog)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 5. Execução e Graceful Shutdown
	go func() {
		appLog.Info("Servidor SmartCart ouvindo na porta", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal("Servidor falhou.", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	appLog.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLog.Error("Desligamento do servidor forçado.", err)
	}

	appLog.Info("Servidor encerrado com sucesso.", nil)
}
