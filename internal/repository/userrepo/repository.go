package userrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"smartcart/internal/domain"
	apperror "smartcart/internal/errors"
	"smartcart/internal/pkg/database"
	"smartcart/internal/pkg/logger"
)

// UserRepository persiste usuários e perfis via gorm.
type UserRepository struct {
	DB        *gorm.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewUserRepository cria uma nova instância do UserRepository, injetando o DB.
func NewUserRepository(db *gorm.DB, dbTimeout time.Duration, logger logger.Logger) *UserRepository {
	return &UserRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// ExistsByEmail faz a checagem de unicidade. O e-mail já chega normalizado;
// LOWER() cobre linhas antigas gravadas com outra caixa.
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var count int64
	err := r.DB.WithContext(ctxTimeout).
		Model(&domain.User{}).
		Where("LOWER(email) = ?", domain.NormalizeEmail(email)).
		Count(&count).Error
	if err != nil {
		r.logger.Error("Falha ao checar existência de e-mail no DB.", err)
		return false, apperror.NewDBError("failed to check email", err)
	}
	return count > 0, nil
}

// CreateWithProfile grava usuário e perfil em uma única transação.
// Violação do índice único de e-mail vira ConflictError.
func (r *UserRepository) CreateWithProfile(ctx context.Context, user domain.User, profile domain.Profile) (domain.User, error) {
	r.logger.Debug("Iniciando criação de usuário com perfil.", map[string]interface{}{"email": user.Email})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	user.Profile = nil
	err := r.DB.WithContext(ctxTimeout).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		profile.ID = 0
		profile.UserID = user.ID
		return tx.Create(&profile).Error
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			r.logger.Warn("E-mail duplicado detectado pelo índice único.", map[string]interface{}{"email": user.Email})
			return domain.User{}, apperror.NewConflictError(fmt.Sprintf("O email '%s' já está em uso.", user.Email))
		}
		r.logger.Error("Falha na transação de criação de usuário.", err)
		return domain.User{}, apperror.NewDBError("failed to insert user", err)
	}

	user.Profile = &profile
	r.logger.Info("Usuário salvo com sucesso no repositório.", map[string]interface{}{"user_id": user.ID, "email": user.Email})
	return user, nil
}

// FindByEmail busca um usuário (com perfil) pelo e-mail normalizado.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var user domain.User
	err := r.DB.WithContext(ctxTimeout).
		Preload("Profile").
		Where("LOWER(email) = ?", domain.NormalizeEmail(email)).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.User{}, apperror.NewNotFoundError(fmt.Sprintf("Usuário com email '%s' não encontrado", email))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar usuário por email no DB.", err)
		return domain.User{}, apperror.NewDBError("failed to find user by email", err)
	}
	return user, nil
}

// FindByID busca um usuário (com perfil) pelo ID.
func (r *UserRepository) FindByID(ctx context.Context, id uint) (domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var user domain.User
	err := r.DB.WithContext(ctxTimeout).Preload("Profile").First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.User{}, apperror.NewNotFoundError(fmt.Sprintf("Usuário com ID %d não encontrado", id))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar usuário por ID no DB.", err)
		return domain.User{}, apperror.NewDBError("failed to find user by id", err)
	}
	return user, nil
}

// UpdateLastLogin grava o instante do último login.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id uint, at time.Time) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	res := r.DB.WithContext(ctxTimeout).
		Model(&domain.User{}).
		Where("id = ?", id).
		Update("last_login_at", at)
	if res.Error != nil {
		r.logger.Error("Falha ao atualizar last_login_at.", res.Error)
		return apperror.NewDBError("failed to update last login", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("Usuário com ID %d não encontrado", id))
	}
	return nil
}

// UpsertProfile substitui os campos do perfil, criando-o se o usuário ainda não tiver um.
func (r *UserRepository) UpsertProfile(ctx context.Context, userID uint, profile domain.Profile) (domain.Profile, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	profile.ID = 0
	profile.UserID = userID
	err := r.DB.WithContext(ctxTimeout).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"first_name", "last_name", "phone_number", "address", "city", "postal_code", "country",
		}),
	}).Create(&profile).Error
	if err != nil {
		r.logger.Error("Falha ao gravar perfil.", err)
		return domain.Profile{}, apperror.NewDBError("failed to upsert profile", err)
	}
	return profile, nil
}

// HasRole informa se existe ao menos um usuário com o papel informado.
func (r *UserRepository) HasRole(ctx context.Context, role domain.UserRole) (bool, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var count int64
	if err := r.DB.WithContext(ctxTimeout).Model(&domain.User{}).Where("role = ?", role).Count(&count).Error; err != nil {
		return false, apperror.NewDBError("failed to count users by role", err)
	}
	return count > 0, nil
}
