package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config armazena todas as configurações do aplicativo SmartCart.
// É construída uma única vez no início do processo e depois tratada como imutável.
type Config struct {
	// Geral
	Port        string
	Environment string
	LogLevel    string

	// Banco de Dados
	DBDriver    string // "postgres" (padrão) ou "sqlite" (desenvolvimento)
	DatabaseURL string
	DBTimeout   time.Duration

	// Cache (Redis)
	RedisAddr       string
	CacheTimeout    time.Duration
	ProductCacheTTL time.Duration
	CartTTL         time.Duration

	// Segurança (JWT)
	JWTSecretKey string
	JWTIssuer    string
	JWTAudience  string
	TokenExpiry  time.Duration

	// Rate Limiting
	RateLimitMaxRequests int
	RateLimitPeriod      time.Duration

	// Seed (elevação de papel fora de banda)
	DefaultAdmin    AdminSeed
	SeedCatalogFile string

	// Armazenamento de imagens (S3 / MinIO)
	S3 S3Config
}

// AdminSeed descreve o administrador padrão criado quando nenhum existe.
type AdminSeed struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// S3Config agrupa as credenciais do bucket de imagens de produto.
type S3Config struct {
	Region        string
	AccessKey     string
	SecretKey     string
	Endpoint      string
	Bucket        string
	PublicBaseURL string
}

// Enabled informa se o upload de imagens está configurado.
func (c S3Config) Enabled() bool {
	return c.Bucket != "" && c.Region != ""
}

// LoadConfig carrega as configurações a partir das variáveis de ambiente.
// A ausência de qualquer valor obrigatório é um erro de configuração de inicialização.
func LoadConfig() (*Config, error) {
	var missing []string
	required := func(key string) string {
		v := strings.TrimSpace(getEnv(key, ""))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}

	cfg := &Config{
		// 1. Geral
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		// 2. Banco de Dados
		DBDriver:  strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DBTimeout: getDurationEnv("DB_TIMEOUT_SEC", 5) * time.Second,

		// 3. Cache (Redis)
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		CacheTimeout:    getDurationEnv("CACHE_TIMEOUT_SEC", 10) * time.Second,
		ProductCacheTTL: getDurationEnv("PRODUCT_CACHE_TTL_MIN", 5) * time.Minute,
		CartTTL:         getDurationEnv("CART_TTL_HOURS", 720) * time.Hour,

		// 4. Segurança (JWT)
		JWTSecretKey: required("JWT_SECRET_KEY"),
		JWTIssuer:    required("JWT_ISSUER"),
		JWTAudience:  required("JWT_AUDIENCE"),
		TokenExpiry:  getDurationEnv("JWT_EXPIRY_MIN", 60) * time.Minute,

		// 5. Rate Limiting
		RateLimitMaxRequests: getIntEnv("RATE_LIMIT_MAX_REQUESTS", 100),
		RateLimitPeriod:      getDurationEnv("RATE_LIMIT_PERIOD_MIN", 1) * time.Minute,

		// 6. Seed
		DefaultAdmin: AdminSeed{
			Email:     getEnv("DEFAULT_ADMIN_EMAIL", ""),
			Password:  getEnv("DEFAULT_ADMIN_PASSWORD", ""),
			FirstName: getEnv("DEFAULT_ADMIN_FIRST_NAME", "System"),
			LastName:  getEnv("DEFAULT_ADMIN_LAST_NAME", "Administrator"),
		},
		SeedCatalogFile: getEnv("SEED_CATALOG_FILE", ""),

		// 7. S3
		S3: S3Config{
			Region:        getEnv("S3_REGION", ""),
			AccessKey:     getEnv("S3_ACCESS_KEY", ""),
			SecretKey:     getEnv("S3_SECRET_KEY", ""),
			Endpoint:      getEnv("S3_ENDPOINT", ""),
			Bucket:        getEnv("S3_BUCKET", ""),
			PublicBaseURL: getEnv("S3_PUBLIC_BASE_URL", ""),
		},
	}

	switch cfg.DBDriver {
	case "postgres":
		cfg.DatabaseURL = required("DATABASE_URL")
	case "sqlite":
		cfg.DatabaseURL = getEnv("DATABASE_URL", "smartcart.db")
	default:
		return nil, fmt.Errorf("erro de configuração: DB_DRIVER '%s' não suportado (use postgres ou sqlite)", cfg.DBDriver)
	}

	if cfg.TokenExpiry <= 0 {
		return nil, fmt.Errorf("erro de configuração: JWT_EXPIRY_MIN deve ser positivo")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("erro de configuração: variáveis obrigatórias ausentes: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

// Funções Helpers (Auxiliares)

// getEnv lê a variável de ambiente ou retorna um valor padrão.
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getDurationEnv lê uma variável de ambiente numérica e retorna-a como time.Duration.
func getDurationEnv(key string, defaultValue int) time.Duration {
	return time.Duration(getIntEnv(key, defaultValue))
}

// getIntEnv lê uma variável de ambiente numérica e retorna-a como int.
func getIntEnv(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("⚠️ Aviso: Valor de %s ('%s') não é um número inteiro válido. Usando padrão (%d).", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}
