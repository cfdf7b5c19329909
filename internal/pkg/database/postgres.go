package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	// Driver pq para PostgreSQL (usado pelo gorm e pelo goose)
	"github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"smartcart/internal/domain"
)

// Drivers aceitos em DB_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// NewPostgresDB inicializa e configura o pool de conexões com o PostgreSQL.
// Retorna a conexão *sql.DB pronta para uso.
func NewPostgresDB(dataSourceName string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("falha ao abrir a conexão com o DB: %w", err)
	}

	// Garante que as credenciais e o servidor estão corretos
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("falha ao realizar o ping inicial no DB: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	return db, nil
}

// NewGormDB abre o gorm sobre o driver configurado. Para Postgres o gorm reaproveita
// o pool *sql.DB do lib/pq; para SQLite usa o driver puro Go (desenvolvimento e testes).
func NewGormDB(driver, dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true, // violações de unicidade viram gorm.ErrDuplicatedKey
	}

	switch driver {
	case DriverPostgres:
		sqlDB, err := NewPostgresDB(dsn)
		if err != nil {
			return nil, err
		}
		db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), cfg)
		if err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("falha ao inicializar o gorm (postgres): %w", err)
		}
		return db, nil

	case DriverSQLite:
		db, err := gorm.Open(sqlite.Open(dsn), cfg)
		if err != nil {
			return nil, fmt.Errorf("falha ao abrir o SQLite: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("falha ao obter o pool do SQLite: %w", err)
		}
		// SQLite serializa escritas; uma conexão evita "database is locked" e mantém :memory: consistente.
		sqlDB.SetMaxOpenConns(1)
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("falha ao habilitar foreign keys no SQLite: %w", err)
		}
		return db, nil

	default:
		return nil, fmt.Errorf("driver de banco de dados desconhecido: %q", driver)
	}
}

// AutoMigrate cria/atualiza o esquema pelo gorm. Usado no SQLite; em Postgres
// o esquema vem das migrações goose em sql/.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.Profile{},
		&domain.Category{},
		&domain.Product{},
	)
}

// Close fecha o pool subjacente do gorm.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// IsUniqueViolation reconhece violação de índice único nos dois drivers. O tradutor do gorm
// só conhece os erros do pgx, então o código 23505 do lib/pq é checado à parte.
func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
