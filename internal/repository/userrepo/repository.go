package userrepo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"persol/internal/domain"
	apperror "persol/internal/errors"
	"persol/internal/pkg/database"
	"persol/internal/pkg/logger"
)

const userColumns = `id, email, password_hash, full_name, phone, role, created_at, deleted_at`

// UserRepository persiste usuários e perfis de cliente.
type UserRepository struct {
	DB        *sqlx.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewUserRepository cria uma nova instância do UserRepository, injetando o DB.
func NewUserRepository(db *sqlx.DB, dbTimeout time.Duration, logger logger.Logger) *UserRepository {
	return &UserRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// CreateCustomerAccount insere o usuário e o seu perfil de cliente na mesma transação.
func (r *UserRepository) CreateCustomerAccount(ctx context.Context, user domain.User) (domain.User, error) {
	r.logger.Debug("Iniciando cadastro de cliente no repositório.", map[string]interface{}{"email": user.Email})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTxx(ctxTimeout, nil)
	if err != nil {
		r.logger.Error("Falha ao iniciar transação de cadastro.", err)
		return domain.User{}, apperror.NewDBError("Falha ao iniciar transação", err)
	}
	defer tx.Rollback() // no-op após o commit

	insertUser := `
        INSERT INTO users (email, password_hash, full_name, phone, role)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at`

	err = tx.QueryRowxContext(ctxTimeout, insertUser,
		user.Email, user.PasswordHash, user.FullName, user.Phone, user.Role,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			r.logger.Info("Email já cadastrado.", map[string]interface{}{"email": user.Email})
			return domain.User{}, apperror.WrapConflict(domain.ErrEmailTaken)
		}
		r.logger.Error("Falha ao inserir usuário no DB.", err)
		return domain.User{}, apperror.NewDBError("Falha ao inserir usuário", err)
	}

	_, err = tx.ExecContext(ctxTimeout,
		`INSERT INTO customers (user_id, customer_code) VALUES ($1, $2)`,
		user.ID, domain.CustomerCode(user.ID),
	)
	if err != nil {
		r.logger.Error("Falha ao inserir perfil de cliente no DB.", err)
		return domain.User{}, apperror.NewDBError("Falha ao criar perfil de cliente", err)
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("Falha ao commitar transação de cadastro.", err)
		return domain.User{}, apperror.NewDBError("Falha ao commitar transação", err)
	}

	r.logger.Info("Cliente cadastrado com sucesso.", map[string]interface{}{"user_id": user.ID})
	return user, nil
}

// FindByEmail busca um usuário ativo pelo endereço de e-mail.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	r.logger.Debug("Iniciando FindByEmail de usuário no repositório.", map[string]interface{}{"email": email})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 AND deleted_at IS NULL`

	var user domain.User
	err := r.DB.GetContext(ctxTimeout, &user, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, apperror.WrapNotFound(domain.ErrUserNotFound)
	}
	if err != nil {
		r.logger.Error("Falha ao buscar usuário por email no DB.", err)
		return domain.User{}, apperror.NewDBError("Falha ao buscar usuário por email", err)
	}

	return user, nil
}

// FindByID busca um usuário ativo pelo ID.
func (r *UserRepository) FindByID(ctx context.Context, id int64) (domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND deleted_at IS NULL`

	var user domain.User
	err := r.DB.GetContext(ctxTimeout, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		r.logger.Info("Usuário não encontrado.", map[string]interface{}{"user_id": id})
		return domain.User{}, apperror.WrapNotFound(domain.ErrUserNotFound)
	}
	if err != nil {
		r.logger.Error("Falha ao buscar usuário por ID no DB.", err)
		return domain.User{}, apperror.NewDBError("Falha ao buscar usuário", err)
	}

	return user, nil
}

// ListUsers devolve os usuários não removidos, mais recentes primeiro.
func (r *UserRepository) ListUsers(ctx context.Context) ([]domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users WHERE deleted_at IS NULL ORDER BY created_at DESC, id DESC`

	users := []domain.User{}
	if err := r.DB.SelectContext(ctxTimeout, &users, query); err != nil {
		r.logger.Error("Falha ao listar usuários no DB.", err)
		return nil, apperror.NewDBError("Falha ao listar usuários", err)
	}
	return users, nil
}

// SoftDelete marca o usuário como removido. Usuários já removidos contam como inexistentes.
func (r *UserRepository) SoftDelete(ctx context.Context, id int64) error {
	r.logger.Debug("Iniciando SoftDelete de usuário no repositório.", map[string]interface{}{"user_id": id})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout,
		`UPDATE users SET deleted_at = now(), updated_at = now() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		r.logger.Error("Falha ao remover usuário no DB.", err)
		return apperror.NewDBError("Falha ao remover usuário", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperror.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		return apperror.WrapNotFound(domain.ErrUserNotFound)
	}

	r.logger.Info("Usuário removido (soft delete).", map[string]interface{}{"user_id": id})
	return nil
}

// FindCustomerByUserID resolve o perfil de cliente de um usuário.
func (r *UserRepository) FindCustomerByUserID(ctx context.Context, userID int64) (domain.Customer, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        SELECT c.id, c.user_id, c.customer_code, c.created_at
        FROM customers c
        JOIN users u ON u.id = c.user_id
        WHERE c.user_id = $1 AND u.deleted_at IS NULL`

	var customer domain.Customer
	err := r.DB.GetContext(ctxTimeout, &customer, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		r.logger.Info("Perfil de cliente não encontrado.", map[string]interface{}{"user_id": userID})
		return domain.Customer{}, apperror.WrapNotFound(domain.ErrNoCustomerProfile)
	}
	if err != nil {
		r.logger.Error("Falha ao buscar perfil de cliente no DB.", err)
		return domain.Customer{}, apperror.NewDBError("Falha ao buscar perfil de cliente", err)
	}

	return customer, nil
}
