package stockservice_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"persol/internal/domain"
	apperror "persol/internal/errors"
	"persol/internal/pkg/logger"
	"persol/internal/service/stockservice"
)

// MockStockRepository é uma implementação mock da interface StockRepository
type MockStockRepository struct {
	mock.Mock
}

func (m *MockStockRepository) GetStockLevel(ctx context.Context, productID int64) (domain.StockLevel, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(domain.StockLevel), args.Error(1)
}

func (m *MockStockRepository) UpdateStockLevel(ctx context.Context, adjustment domain.StockAdjustment) (domain.StockLevel, error) {
	args := m.Called(ctx, adjustment)
	return args.Get(0).(domain.StockLevel), args.Error(1)
}

type MockProductCache struct {
	mock.Mock
}

func (m *MockProductCache) InvalidateCache(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

// TestAdjustStock_Success testa um ajuste bem-sucedido e a invalidação do cache.
func TestAdjustStock_Success(t *testing.T) {
	mockRepo := new(MockStockRepository)
	mockCache := new(MockProductCache)
	svc := stockservice.NewService(mockRepo, mockCache, logger.NewNop())

	adjustment := domain.StockAdjustment{ProductID: 7, Delta: 5, Reason: "reposição"}
	expected := domain.StockLevel{ProductID: 7, Quantity: 15, Status: domain.StockIn, Version: 2, UpdatedAt: time.Now()}

	mockRepo.On("UpdateStockLevel", mock.Anything, adjustment).Return(expected, nil)
	mockCache.On("InvalidateCache", mock.Anything, int64(7)).Return(nil)

	result, err := svc.AdjustStock(context.Background(), adjustment)

	require.NoError(t, err)
	assert.Equal(t, 15, result.Quantity)
	assert.Equal(t, 2, result.Version)
	mockRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

// TestAdjustStock_Fail_ZeroDelta testa a validação de delta zero.
func TestAdjustStock_Fail_ZeroDelta(t *testing.T) {
	mockRepo := new(MockStockRepository)
	mockCache := new(MockProductCache)
	svc := stockservice.NewService(mockRepo, mockCache, logger.NewNop())

	_, err := svc.AdjustStock(context.Background(), domain.StockAdjustment{ProductID: 7, Delta: 0})

	assert.ErrorIs(t, err, domain.ErrZeroDelta)
	status, _, _ := apperror.MapToHTTPStatus(err)
	assert.Equal(t, 400, status)
	mockRepo.AssertNotCalled(t, "UpdateStockLevel", mock.Anything, mock.Anything)
	mockCache.AssertNotCalled(t, "InvalidateCache", mock.Anything, mock.Anything)
}

func TestAdjustStock_Fail_RepositoryErrorsKeepStatus(t *testing.T) {
	tests := []struct {
		name       string
		repoErr    error
		wantStatus int
	}{
		{name: "estoque negativo", repoErr: apperror.WrapValidation(domain.ErrNegativeStock), wantStatus: 400},
		{name: "produto inexistente", repoErr: apperror.WrapNotFound(domain.ErrProductMissing), wantStatus: 404},
		{name: "conflito de versão", repoErr: apperror.WrapConflict(domain.ErrStockConflict), wantStatus: 409},
		{name: "falha de banco", repoErr: apperror.NewDBError("Falha ao atualizar estoque", errors.New("conn reset")), wantStatus: 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockStockRepository)
			mockCache := new(MockProductCache)
			svc := stockservice.NewService(mockRepo, mockCache, logger.NewNop())

			mockRepo.On("UpdateStockLevel", mock.Anything, mock.AnythingOfType("domain.StockAdjustment")).
				Return(domain.StockLevel{}, tt.repoErr)

			_, err := svc.AdjustStock(context.Background(), domain.StockAdjustment{ProductID: 7, Delta: -50})

			status, _, _ := apperror.MapToHTTPStatus(err)
			assert.Equal(t, tt.wantStatus, status)
			mockCache.AssertNotCalled(t, "InvalidateCache", mock.Anything, mock.Anything)
		})
	}
}

// TestAdjustStock_CacheFailureIsNotFatal testa que o ajuste persiste mesmo com o Redis fora.
func TestAdjustStock_CacheFailureIsNotFatal(t *testing.T) {
	mockRepo := new(MockStockRepository)
	mockCache := new(MockProductCache)
	svc := stockservice.NewService(mockRepo, mockCache, logger.NewNop())

	adjustment := domain.StockAdjustment{ProductID: 3, Delta: -2}
	mockRepo.On("UpdateStockLevel", mock.Anything, adjustment).
		Return(domain.StockLevel{ProductID: 3, Quantity: 4, Status: domain.StockLow, Version: 5}, nil)
	mockCache.On("InvalidateCache", mock.Anything, int64(3)).Return(errors.New("redis: connection refused"))

	result, err := svc.AdjustStock(context.Background(), adjustment)

	require.NoError(t, err)
	assert.Equal(t, domain.StockLow, result.Status)
}

func TestGetStock_Fail_InvalidID(t *testing.T) {
	mockRepo := new(MockStockRepository)
	svc := stockservice.NewService(mockRepo, new(MockProductCache), logger.NewNop())

	_, err := svc.GetStock(context.Background(), 0)

	var validation *apperror.ValidationError
	assert.ErrorAs(t, err, &validation)
	mockRepo.AssertNotCalled(t, "GetStockLevel", mock.Anything, mock.Anything)
}

func TestGetStock_Success(t *testing.T) {
	mockRepo := new(MockStockRepository)
	svc := stockservice.NewService(mockRepo, new(MockProductCache), logger.NewNop())

	mockRepo.On("GetStockLevel", mock.Anything, int64(9)).
		Return(domain.StockLevel{ProductID: 9, Quantity: 0, Status: domain.StockOut, Version: 1}, nil)

	level, err := svc.GetStock(context.Background(), 9)

	require.NoError(t, err)
	assert.Equal(t, domain.StockOut, level.Status)
}
