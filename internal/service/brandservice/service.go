package brandservice

import (
	"context"
	"strings"
	"unicode/utf8"

	"persol/internal/domain"
	apperror "persol/internal/errors"
	"persol/internal/pkg/logger"
)

// BrandRepository define o contrato que o Serviço de Marcas espera da camada de Persistência.
type BrandRepository interface {
	CreateBrand(ctx context.Context, name string) (domain.Brand, error)
	GetBrandByID(ctx context.Context, id int64) (domain.Brand, error)
	GetAllBrands(ctx context.Context) ([]domain.Brand, error)
	RenameBrand(ctx context.Context, id int64, name string) (domain.Brand, error)
	DeleteBrand(ctx context.Context, id int64) error
}

// Service implementa o cadastro de marcas.
type Service struct {
	repo   BrandRepository
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Marcas.
func NewService(repo BrandRepository, logger logger.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// CreateBrand cria uma nova marca após validações de negócio.
func (s *Service) CreateBrand(ctx context.Context, name string) (domain.Brand, error) {
	name, err := validateBrandName(name)
	if err != nil {
		s.logger.Warn("Falha na validação do nome da marca.", map[string]interface{}{"name": name, "error": err.Error()})
		return domain.Brand{}, err
	}
	return s.repo.CreateBrand(ctx, name)
}

// GetBrand busca uma marca pelo ID.
func (s *Service) GetBrand(ctx context.Context, id int64) (domain.Brand, error) {
	if err := validateID(id); err != nil {
		return domain.Brand{}, err
	}
	return s.repo.GetBrandByID(ctx, id)
}

// ListBrands lista todas as marcas por nome.
func (s *Service) ListBrands(ctx context.Context) ([]domain.Brand, error) {
	return s.repo.GetAllBrands(ctx)
}

// RenameBrand altera o nome de uma marca existente.
func (s *Service) RenameBrand(ctx context.Context, id int64, name string) (domain.Brand, error) {
	if err := validateID(id); err != nil {
		return domain.Brand{}, err
	}
	name, err := validateBrandName(name)
	if err != nil {
		return domain.Brand{}, err
	}
	return s.repo.RenameBrand(ctx, id, name)
}

// DeleteBrand remove uma marca sem produtos vinculados.
func (s *Service) DeleteBrand(ctx context.Context, id int64) error {
	if err := validateID(id); err != nil {
		return err
	}
	if err := s.repo.DeleteBrand(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Marca removida.", map[string]interface{}{"id": id})
	return nil
}

func validateID(id int64) error {
	if id <= 0 {
		return apperror.NewValidationError("O ID da marca deve ser um inteiro positivo.")
	}
	return nil
}

// validateBrandName devolve o nome sem espaços nas pontas.
func validateBrandName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return name, apperror.WrapValidation(domain.ErrBrandNameRequired)
	}
	if utf8.RuneCountInString(name) > domain.MaxBrandNameLength {
		return name, apperror.WrapValidation(domain.ErrBrandNameTooLong)
	}
	return name, nil
}
