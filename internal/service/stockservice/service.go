package stockservice

import (
	"context"

	"persol/internal/domain"
	apperror "persol/internal/errors"
	"persol/internal/pkg/logger"
)

// StockRepository define o contrato que o Serviço de Estoque espera da camada de Persistência.
type StockRepository interface {
	GetStockLevel(ctx context.Context, productID int64) (domain.StockLevel, error)
	UpdateStockLevel(ctx context.Context, adjustment domain.StockAdjustment) (domain.StockLevel, error)
}

// ProductCache remove a entrada de cache de um produto após mudanças de estoque.
type ProductCache interface {
	InvalidateCache(ctx context.Context, id int64) error
}

// Service implementa o ajuste de estoque feito pela equipe.
type Service struct {
	repo   StockRepository
	cache  ProductCache
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Estoque.
func NewService(repo StockRepository, cache ProductCache, logger logger.Logger) *Service {
	return &Service{repo: repo, cache: cache, logger: logger}
}

// GetStock retorna o estoque atual de um produto.
func (s *Service) GetStock(ctx context.Context, productID int64) (domain.StockLevel, error) {
	if productID <= 0 {
		return domain.StockLevel{}, apperror.NewValidationError("O ID do produto deve ser um inteiro positivo.")
	}
	return s.repo.GetStockLevel(ctx, productID)
}

// AdjustStock aplica um ajuste ao nível de estoque de um produto.
func (s *Service) AdjustStock(ctx context.Context, adjustment domain.StockAdjustment) (domain.StockLevel, error) {
	s.logger.Debug("Iniciando ajuste de estoque no serviço.", map[string]interface{}{
		"product_id": adjustment.ProductID,
		"delta":      adjustment.Delta,
		"reason":     adjustment.Reason,
	})

	if adjustment.ProductID <= 0 {
		return domain.StockLevel{}, apperror.NewValidationError("O ID do produto deve ser um inteiro positivo.")
	}
	if adjustment.Delta == 0 {
		return domain.StockLevel{}, apperror.WrapValidation(domain.ErrZeroDelta)
	}

	// Erros do repositório já são AppErrors (400 / 404 / 409 / 500).
	stockLevel, err := s.repo.UpdateStockLevel(ctx, adjustment)
	if err != nil {
		s.logger.Error("Falha ao ajustar estoque no repositório.", err)
		return domain.StockLevel{}, err
	}

	// O estoque já foi gravado; falha de cache só deixa a entrada expirar pelo TTL.
	if err := s.cache.InvalidateCache(ctx, adjustment.ProductID); err != nil {
		s.logger.Warn("Falha ao invalidar cache do produto.", map[string]interface{}{
			"product_id": adjustment.ProductID,
			"error":      err.Error(),
		})
	}

	s.logger.Info("Estoque ajustado com sucesso.", map[string]interface{}{
		"product_id":   stockLevel.ProductID,
		"new_quantity": stockLevel.Quantity,
		"new_status":   stockLevel.Status,
		"new_version":  stockLevel.Version,
	})
	return stockLevel, nil
}
