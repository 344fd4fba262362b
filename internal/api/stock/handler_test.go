package stock_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"persol/internal/api/stock"
	"persol/internal/domain"
	apperror "persol/internal/errors"
	"persol/internal/pkg/logger"
)

type MockStockService struct {
	mock.Mock
}

func (m *MockStockService) GetStock(ctx context.Context, productID int64) (domain.StockLevel, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(domain.StockLevel), args.Error(1)
}

func (m *MockStockService) AdjustStock(ctx context.Context, adjustment domain.StockAdjustment) (domain.StockLevel, error) {
	args := m.Called(ctx, adjustment)
	return args.Get(0).(domain.StockLevel), args.Error(1)
}

func newMux(h *stock.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/admin/products/{id}/stock", h.GetStockHandler)
	mux.HandleFunc("POST /v1/admin/products/{id}/stock", h.AdjustStockHandler)
	return mux
}

func TestAdjustStockHandler_TakesProductIDFromPath(t *testing.T) {
	svc := new(MockStockService)
	svc.On("AdjustStock", mock.Anything, domain.StockAdjustment{ProductID: 8, Delta: -2, Reason: "avaria"}).
		Return(domain.StockLevel{ProductID: 8, Quantity: 3, Status: domain.StockLow, Version: 4}, nil)

	rec := httptest.NewRecorder()
	newMux(stock.NewHandler(svc, logger.NewNop())).ServeHTTP(rec, httptest.NewRequest(http.MethodPost,
		"/v1/admin/products/8/stock", strings.NewReader(`{"delta":-2,"reason":"avaria"}`)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "low_stock")
	svc.AssertExpectations(t)
}

func TestAdjustStockHandler_NegativeResult(t *testing.T) {
	svc := new(MockStockService)
	svc.On("AdjustStock", mock.Anything, mock.AnythingOfType("domain.StockAdjustment")).
		Return(domain.StockLevel{}, apperror.WrapValidation(domain.ErrNegativeStock))

	rec := httptest.NewRecorder()
	newMux(stock.NewHandler(svc, logger.NewNop())).ServeHTTP(rec, httptest.NewRequest(http.MethodPost,
		"/v1/admin/products/8/stock", strings.NewReader(`{"delta":-100}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetStockHandler_NotFound(t *testing.T) {
	svc := new(MockStockService)
	svc.On("GetStock", mock.Anything, int64(404)).
		Return(domain.StockLevel{}, apperror.WrapNotFound(domain.ErrProductMissing))

	rec := httptest.NewRecorder()
	newMux(stock.NewHandler(svc, logger.NewNop())).ServeHTTP(rec,
		httptest.NewRequest(http.MethodGet, "/v1/admin/products/404/stock", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
