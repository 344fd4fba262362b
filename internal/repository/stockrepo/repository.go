package stockrepo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"persol/internal/domain"
	apperror "persol/internal/errors"
	"persol/internal/pkg/logger"
)

const stockColumns = `id, stock_quantity, stock_status, version, updated_at`

// StockRepository lê e ajusta o estoque dos produtos.
type StockRepository struct {
	DB        *sqlx.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewStockRepository cria e retorna uma nova instância do Repositório de Estoque.
func NewStockRepository(db *sqlx.DB, dbTimeout time.Duration, logger logger.Logger) *StockRepository {
	return &StockRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// GetStockLevel busca o nível de estoque de um produto.
func (r *StockRepository) GetStockLevel(ctx context.Context, productID int64) (domain.StockLevel, error) {
	r.logger.Debug("Buscando nível de estoque no repositório.", map[string]interface{}{"product_id": productID})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var sl domain.StockLevel
	err := r.DB.GetContext(ctxTimeout, &sl, `SELECT `+stockColumns+` FROM products WHERE id = $1`, productID)
	if errors.Is(err, sql.ErrNoRows) {
		r.logger.Info("Produto não encontrado ao consultar estoque.", map[string]interface{}{"product_id": productID})
		return domain.StockLevel{}, apperror.WrapNotFound(domain.ErrProductMissing)
	}
	if err != nil {
		r.logger.Error("Falha ao buscar nível de estoque no DB.", err)
		return domain.StockLevel{}, apperror.NewDBError("Falha ao buscar nível de estoque", err)
	}

	return sl, nil
}

// UpdateStockLevel aplica um ajuste ao estoque, utilizando transação e controle de concorrência otimista (OCC).
func (r *StockRepository) UpdateStockLevel(ctx context.Context, adjustment domain.StockAdjustment) (domain.StockLevel, error) {
	r.logger.Debug("Iniciando atualização de estoque no repositório.", map[string]interface{}{
		"product_id": adjustment.ProductID,
		"delta":      adjustment.Delta,
	})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTxx(ctxTimeout, nil)
	if err != nil {
		r.logger.Error("Falha ao iniciar transação para atualização de estoque.", err)
		return domain.StockLevel{}, apperror.NewDBError("Falha ao iniciar transação", err)
	}
	defer tx.Rollback() // Rollback em caso de erro

	// 1. Obter o estoque atual com FOR UPDATE, incluindo a 'version'.
	var current domain.StockLevel
	err = tx.GetContext(ctxTimeout, &current, `SELECT `+stockColumns+` FROM products WHERE id = $1 FOR UPDATE`, adjustment.ProductID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.StockLevel{}, apperror.WrapNotFound(domain.ErrProductMissing)
	}
	if err != nil {
		r.logger.Error("Falha ao selecionar nível de estoque para atualização.", err)
		return domain.StockLevel{}, apperror.NewDBError("Falha ao buscar estoque para atualização", err)
	}

	// 2. A quantidade resultante não pode ser negativa
	newQuantity := current.Quantity + adjustment.Delta
	if newQuantity < 0 {
		r.logger.Warn("Tentativa de ajustar estoque para quantidade negativa.", map[string]interface{}{
			"product_id":       adjustment.ProductID,
			"current_quantity": current.Quantity,
			"delta":            adjustment.Delta,
		})
		return domain.StockLevel{}, apperror.WrapValidation(domain.ErrNegativeStock)
	}

	// 3. Atualizar com OCC
	queryUpdate := `
        UPDATE products
        SET stock_quantity = $1, stock_status = $2, version = version + 1, updated_at = now()
        WHERE id = $3 AND version = $4
        RETURNING ` + stockColumns

	var updated domain.StockLevel
	err = tx.GetContext(ctxTimeout, &updated, queryUpdate,
		newQuantity,
		domain.StatusForQuantity(newQuantity),
		adjustment.ProductID,
		current.Version, // Checa a versão antiga para OCC
	)
	if errors.Is(err, sql.ErrNoRows) {
		r.logger.Warn("Falha no controle de concorrência otimista (OCC). Versão do registro desatualizada.", map[string]interface{}{
			"product_id":       adjustment.ProductID,
			"expected_version": current.Version,
		})
		return domain.StockLevel{}, apperror.WrapConflict(domain.ErrStockConflict)
	}
	if err != nil {
		r.logger.Error("Falha ao atualizar nível de estoque.", err)
		return domain.StockLevel{}, apperror.NewDBError("Falha ao atualizar estoque", err)
	}

	// 4. Commitar a transação
	if err := tx.Commit(); err != nil {
		r.logger.Error("Falha ao commitar transação de atualização de estoque.", err)
		return domain.StockLevel{}, apperror.NewDBError("Falha ao commitar transação", err)
	}

	r.logger.Info("Nível de estoque atualizado com sucesso.", map[string]interface{}{
		"product_id":   adjustment.ProductID,
		"new_quantity": updated.Quantity,
		"new_version":  updated.Version,
		"reason":       adjustment.Reason,
	})
	return updated, nil
}
