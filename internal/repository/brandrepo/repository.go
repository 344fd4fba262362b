package brandrepo

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

// BrandRepository implementa as operações CRUD de marcas.
type BrandRepository struct {
	DB        *sqlx.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewBrandRepository cria e retorna uma nova instância do Repositório de Marcas.
func NewBrandRepository(db *sqlx.DB, dbTimeout time.Duration, logger logger.Logger) *BrandRepository {
	return &BrandRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// CreateBrand insere uma nova marca. Nome duplicado vira ConflictError.
func (r *BrandRepository) CreateBrand(ctx context.Context, name string) (domain.Brand, error) {
	r.logger.Debug("Iniciando CreateBrand no repositório.", map[string]interface{}{"name": name})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        INSERT INTO brands (name)
        VALUES ($1)
        RETURNING id, name, created_at, updated_at`

	var brand domain.Brand
	err := r.DB.GetContext(ctxTimeout, &brand, query, name)
	if err != nil {
		if database.IsUniqueViolation(err) {
			r.logger.Info("Nome de marca já cadastrado.", map[string]interface{}{"name": name})
			return domain.Brand{}, apperror.WrapConflict(domain.ErrBrandNameTaken)
		}
		r.logger.Error("Falha ao inserir marca no DB.", err)
		return domain.Brand{}, apperror.NewDBError("Falha ao criar marca", err)
	}

	r.logger.Info("Marca criada com sucesso.", map[string]interface{}{"id": brand.ID, "name": brand.Name})
	return brand, nil
}

// GetBrandByID busca uma marca pelo ID.
func (r *BrandRepository) GetBrandByID(ctx context.Context, id int64) (domain.Brand, error) {
	r.logger.Debug("Iniciando GetBrandByID no repositório.", map[string]interface{}{"id": id})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        SELECT id, name, created_at, updated_at
        FROM brands
        WHERE id = $1`

	var brand domain.Brand
	err := r.DB.GetContext(ctxTimeout, &brand, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		r.logger.Info("Marca não encontrada.", map[string]interface{}{"id": id})
		return domain.Brand{}, apperror.WrapNotFound(domain.ErrBrandNotFound)
	}
	if err != nil {
		r.logger.Error("Falha ao buscar marca no DB.", err)
		return domain.Brand{}, apperror.NewDBError("Falha ao buscar marca", err)
	}

	return brand, nil
}

// GetAllBrands lista as marcas em ordem alfabética.
func (r *BrandRepository) GetAllBrands(ctx context.Context) ([]domain.Brand, error) {
	r.logger.Debug("Iniciando GetAllBrands no repositório.", nil)

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        SELECT id, name, created_at, updated_at
        FROM brands
        ORDER BY name`

	brands := []domain.Brand{}
	if err := r.DB.SelectContext(ctxTimeout, &brands, query); err != nil {
		r.logger.Error("Falha ao executar GetAllBrands query.", err)
		return nil, apperror.NewDBError("Falha ao buscar todas as marcas", err)
	}

	r.logger.Debug("GetAllBrands concluído com sucesso.", map[string]interface{}{"total_brands": len(brands)})
	return brands, nil
}

// RenameBrand altera o nome de uma marca existente.
func (r *BrandRepository) RenameBrand(ctx context.Context, id int64, name string) (domain.Brand, error) {
	r.logger.Debug("Iniciando RenameBrand no repositório.", map[string]interface{}{"id": id, "name": name})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        UPDATE brands
        SET name = $1, updated_at = now()
        WHERE id = $2
        RETURNING id, name, created_at, updated_at`

	var brand domain.Brand
	err := r.DB.GetContext(ctxTimeout, &brand, query, name, id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		r.logger.Info("Marca não encontrada para atualização.", map[string]interface{}{"id": id})
		return domain.Brand{}, apperror.WrapNotFound(domain.ErrBrandNotFound)
	case database.IsUniqueViolation(err):
		return domain.Brand{}, apperror.WrapConflict(domain.ErrBrandNameTaken)
	case err != nil:
		r.logger.Error("Falha ao atualizar marca no DB.", err)
		return domain.Brand{}, apperror.NewDBError("Falha ao atualizar marca", err)
	}

	r.logger.Info("Marca atualizada com sucesso.", map[string]interface{}{"id": brand.ID, "name": brand.Name})
	return brand, nil
}

// DeleteBrand remove uma marca. Marcas com produtos vinculados não podem ser removidas.
func (r *BrandRepository) DeleteBrand(ctx context.Context, id int64) error {
	r.logger.Debug("Iniciando DeleteBrand no repositório.", map[string]interface{}{"id": id})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout, `DELETE FROM brands WHERE id = $1`, id)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			r.logger.Info("Marca com produtos vinculados.", map[string]interface{}{"id": id})
			return apperror.WrapConflict(domain.ErrBrandInUse)
		}
		r.logger.Error("Falha ao deletar marca do DB.", err)
		return apperror.NewDBError("Falha ao deletar marca", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.logger.Error("Falha ao verificar linhas afetadas após DeleteBrand.", err)
		return apperror.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		return apperror.WrapNotFound(domain.ErrBrandNotFound)
	}

	r.logger.Info("Marca deletada com sucesso.", map[string]interface{}{"id": id})
	return nil
}
