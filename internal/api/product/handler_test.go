package product_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"persol/internal/api/product"
	"persol/internal/domain"
	apperror "persol/internal/errors"
	"persol/internal/pkg/logger"
)

type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockProductService) GetProductsByIDs(ctx context.Context, ids []int64) ([]domain.Product, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *MockProductService) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *MockProductService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Category), args.Error(1)
}

func (m *MockProductService) GetProductForAdmin(ctx context.Context, id int64) (domain.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockProductService) ListAllProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *MockProductService) CreateProduct(ctx context.Context, in domain.ProductInput) (domain.Product, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockProductService) UpdateProduct(ctx context.Context, id int64, in domain.ProductInput) (domain.Product, error) {
	args := m.Called(ctx, id, in)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockProductService) SetProductActive(ctx context.Context, id int64, active bool) (domain.Product, error) {
	args := m.Called(ctx, id, active)
	return args.Get(0).(domain.Product), args.Error(1)
}

func TestGetProductHandler_ReadsPathValue(t *testing.T) {
	svc := new(MockProductService)
	h := product.NewHandler(svc, logger.NewNop())

	svc.On("GetProduct", mock.Anything, int64(12)).Return(domain.Product{ID: 12, Name: "PO3019S"}, nil)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/products/{id}", h.GetProductHandler)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/products/12", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "PO3019S")
}

func TestGetProductHandler_NotFound(t *testing.T) {
	svc := new(MockProductService)
	h := product.NewHandler(svc, logger.NewNop())

	svc.On("GetProduct", mock.Anything, int64(99)).
		Return(domain.Product{}, apperror.WrapNotFound(domain.ErrProductMissing))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/products/{id}", h.GetProductHandler)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/products/99", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetProductHandler_InvalidID(t *testing.T) {
	svc := new(MockProductService)
	h := product.NewHandler(svc, logger.NewNop())

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/products/{id}", h.GetProductHandler)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/products/abc", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "GetProduct", mock.Anything, mock.Anything)
}

func TestListProductsHandler_ParsesFilter(t *testing.T) {
	svc := new(MockProductService)
	h := product.NewHandler(svc, logger.NewNop())

	svc.On("ListProducts", mock.Anything, mock.MatchedBy(func(f domain.ProductFilter) bool {
		return f.BrandID == 2 && f.Search == "aviator" && f.Page == 3 && f.Limit == 10 &&
			f.MinPrice != nil && f.MinPrice.Equal(decimal.RequireFromString("100.50")) && f.MaxPrice == nil
	})).Return([]domain.Product{}, nil)

	rec := httptest.NewRecorder()
	h.ListProductsHandler(rec, httptest.NewRequest(http.MethodGet,
		"/v1/products?brand_id=2&search=aviator&min_price=100.50&page=3&limit=10", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestListProductsHandler_InvalidPrice(t *testing.T) {
	svc := new(MockProductService)
	h := product.NewHandler(svc, logger.NewNop())

	rec := httptest.NewRecorder()
	h.ListProductsHandler(rec, httptest.NewRequest(http.MethodGet, "/v1/products?max_price=barato", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "ListProducts", mock.Anything, mock.Anything)
}

func TestCompareProductsHandler_SkipsGarbage(t *testing.T) {
	svc := new(MockProductService)
	h := product.NewHandler(svc, logger.NewNop())

	svc.On("GetProductsByIDs", mock.Anything, []int64{1, 3}).Return([]domain.Product{{ID: 1}, {ID: 3}}, nil)

	rec := httptest.NewRecorder()
	h.CompareProductsHandler(rec, httptest.NewRequest(http.MethodGet, "/v1/products/compare?ids=1,x,3", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestListCategoriesHandler(t *testing.T) {
	svc := new(MockProductService)
	h := product.NewHandler(svc, logger.NewNop())

	svc.On("ListCategories", mock.Anything).Return([]domain.Category{{ID: 1, Name: "Sol"}}, nil)

	rec := httptest.NewRecorder()
	h.ListCategoriesHandler(rec, httptest.NewRequest(http.MethodGet, "/v1/categories", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Sol"`)
}

func TestCreateProductHandler_Created(t *testing.T) {
	svc := new(MockProductService)
	h := product.NewHandler(svc, logger.NewNop())

	svc.On("CreateProduct", mock.Anything, mock.MatchedBy(func(in domain.ProductInput) bool {
		return in.Name == "PO3019S" && in.Price.Equal(decimal.RequireFromString("899.90")) &&
			in.BrandID != nil && *in.BrandID == 2 && in.StockQuantity == 4
	})).Return(domain.Product{ID: 15, Name: "PO3019S", IsActive: true}, nil)

	body := `{"name":"PO3019S","price":"899.90","brand_id":2,"stock_quantity":4}`
	rec := httptest.NewRecorder()
	h.CreateProductHandler(rec, httptest.NewRequest(http.MethodPost, "/v1/admin/products", strings.NewReader(body)))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "Produto criado com sucesso.")
	svc.AssertExpectations(t)
}

func TestUpdateProductHandler_ValidationError(t *testing.T) {
	svc := new(MockProductService)
	h := product.NewHandler(svc, logger.NewNop())

	svc.On("UpdateProduct", mock.Anything, int64(3), mock.Anything).
		Return(domain.Product{}, apperror.WrapValidation(domain.ErrProductNameRequired))

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/admin/products/{id}", h.UpdateProductHandler)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/v1/admin/products/3", strings.NewReader(`{"name":"","price":10}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), domain.ErrProductNameRequired.Error())
}

func TestSetProductStatusHandler(t *testing.T) {
	svc := new(MockProductService)
	h := product.NewHandler(svc, logger.NewNop())

	svc.On("SetProductActive", mock.Anything, int64(5), false).Return(domain.Product{ID: 5, IsActive: false}, nil)

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/admin/products/{id}/status", h.SetProductStatusHandler)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/v1/admin/products/5/status", strings.NewReader(`{"is_active":false}`)))
	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/v1/admin/products/5/status", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/v1/admin/products/5/status", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
