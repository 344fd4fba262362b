package productservice

import (
	"context"

	"persol/internal/domain"
	apperror "persol/internal/errors"
	"persol/internal/pkg/logger"
)

// ProductRepository define o contrato (interface) que este Serviço espera
// da camada de Persistência (DB, Cache).
type ProductRepository interface {
	FindByID(ctx context.Context, id int64) (domain.Product, error)
	FindByIDs(ctx context.Context, ids []int64) ([]domain.Product, error)
	FindAll(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)

	FindAnyByID(ctx context.Context, id int64) (domain.Product, error)
	ListForAdmin(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	Create(ctx context.Context, in domain.ProductInput) (domain.Product, error)
	Update(ctx context.Context, id int64, in domain.ProductInput) (domain.Product, error)
	SetActive(ctx context.Context, id int64, active bool) (domain.Product, error)
	InvalidateCache(ctx context.Context, id int64) error
}

// MaxCompareProducts limita a quantidade de produtos numa comparação.
const MaxCompareProducts = 4

// Service expõe o catálogo e a sua manutenção pela administração.
type Service struct {
	repo   ProductRepository
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Produto.
func NewService(repo ProductRepository, logger logger.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func validateID(id int64) error {
	if id <= 0 {
		return apperror.NewValidationError("O ID do produto deve ser um inteiro positivo.")
	}
	return nil
}

// GetProduct busca um produto ativo pelo ID.
func (s *Service) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	if err := validateID(id); err != nil {
		return domain.Product{}, err
	}
	return s.repo.FindByID(ctx, id)
}

// GetProductsByIDs busca os produtos de uma comparação.
// IDs desconhecidos simplesmente não aparecem no resultado.
func (s *Service) GetProductsByIDs(ctx context.Context, ids []int64) ([]domain.Product, error) {
	seen := make(map[int64]struct{}, len(ids))
	valid := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		valid = append(valid, id)
	}

	if len(valid) == 0 {
		return nil, apperror.NewValidationError("Informe ao menos um ID de produto válido.")
	}
	if len(valid) > MaxCompareProducts {
		s.logger.Debug("Comparação truncada.", map[string]interface{}{"requested": len(valid)})
		valid = valid[:MaxCompareProducts]
	}

	return s.repo.FindByIDs(ctx, valid)
}

// ListProducts lista produtos ativos com filtros e paginação.
func (s *Service) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	filter = filter.Normalize()

	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		return nil, apperror.NewValidationError("O preço mínimo não pode ser maior que o preço máximo.")
	}
	if filter.MinPrice != nil && filter.MinPrice.IsNegative() {
		return nil, apperror.NewValidationError("O preço mínimo não pode ser negativo.")
	}

	products, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Produtos listados.", map[string]interface{}{
		"page":  filter.Page,
		"limit": filter.Limit,
		"count": len(products),
	})
	return products, nil
}

// ListCategories lista as categorias do catálogo.
func (s *Service) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.repo.ListCategories(ctx)
}

// GetProductForAdmin busca um produto ativo ou inativo.
func (s *Service) GetProductForAdmin(ctx context.Context, id int64) (domain.Product, error) {
	if err := validateID(id); err != nil {
		return domain.Product{}, err
	}
	return s.repo.FindAnyByID(ctx, id)
}

// ListAllProducts lista todo o catálogo, inclusive inativos.
func (s *Service) ListAllProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	return s.repo.ListForAdmin(ctx, filter.Normalize())
}

// CreateProduct cadastra um novo produto ativo.
func (s *Service) CreateProduct(ctx context.Context, in domain.ProductInput) (domain.Product, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return domain.Product{}, apperror.WrapValidation(err)
	}

	product, err := s.repo.Create(ctx, in)
	if err != nil {
		return domain.Product{}, err
	}
	s.logger.Info("Produto cadastrado.", map[string]interface{}{"id": product.ID, "name": product.Name})
	return product, nil
}

// UpdateProduct altera os dados cadastrais. O estoque informado no payload é ignorado.
func (s *Service) UpdateProduct(ctx context.Context, id int64, in domain.ProductInput) (domain.Product, error) {
	if err := validateID(id); err != nil {
		return domain.Product{}, err
	}
	in = in.Normalize()
	in.StockQuantity = 0
	if err := in.Validate(); err != nil {
		return domain.Product{}, apperror.WrapValidation(err)
	}

	product, err := s.repo.Update(ctx, id, in)
	if err != nil {
		return domain.Product{}, err
	}
	s.invalidate(ctx, id)
	return product, nil
}

// SetProductActive ativa ou desativa um produto.
func (s *Service) SetProductActive(ctx context.Context, id int64, active bool) (domain.Product, error) {
	if err := validateID(id); err != nil {
		return domain.Product{}, err
	}

	product, err := s.repo.SetActive(ctx, id, active)
	if err != nil {
		return domain.Product{}, err
	}
	s.invalidate(ctx, id)
	s.logger.Info("Status do produto alterado.", map[string]interface{}{"id": id, "is_active": active})
	return product, nil
}

// A alteração já foi gravada; falha de cache só deixa a entrada expirar pelo TTL.
// Pedidos leem o preço e o is_active direto do banco.
func (s *Service) invalidate(ctx context.Context, id int64) {
	if err := s.repo.InvalidateCache(ctx, id); err != nil {
		s.logger.Warn("Falha ao invalidar cache do produto.", map[string]interface{}{
			"product_id": id,
			"error":      err.Error(),
		})
	}
}
