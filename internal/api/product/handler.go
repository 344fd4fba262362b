package product

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"persol/internal/domain"
	apperror "persol/internal/errors"
	"persol/internal/pkg/logger"
	"persol/internal/pkg/respond"
)

// ProductService define o contrato que o Handler espera da camada de Serviço.
type ProductService interface {
	GetProduct(ctx context.Context, id int64) (domain.Product, error)
	GetProductsByIDs(ctx context.Context, ids []int64) ([]domain.Product, error)
	ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)

	GetProductForAdmin(ctx context.Context, id int64) (domain.Product, error)
	ListAllProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	CreateProduct(ctx context.Context, in domain.ProductInput) (domain.Product, error)
	UpdateProduct(ctx context.Context, id int64, in domain.ProductInput) (domain.Product, error)
	SetProductActive(ctx context.Context, id int64, active bool) (domain.Product, error)
}

// ProductStatusRequest é o payload de ativação/desativação de produto.
type ProductStatusRequest struct {
	IsActive *bool `json:"is_active"`
}

// Handler agrupa todos os métodos de Handler do produto.
type Handler struct {
	Service ProductService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc ProductService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, message string, data interface{}, err error, successStatus int) {
	if err != nil {
		respond.Error(w, r, h.Logger, err)
		return
	}
	respond.Success(w, successStatus, message, data)
}

// ListProductsHandler lida com a requisição GET /v1/products.
// @Summary Lista produtos ativos do catálogo
// @Description Filtros opcionais por marca, texto e faixa de preço, com paginação.
// @Tags products
// @Produce json
// @Param brand_id query int false "ID da marca"
// @Param category_id query int false "ID da categoria"
// @Param search query string false "Trecho do nome"
// @Param min_price query string false "Preço mínimo"
// @Param max_price query string false "Preço máximo"
// @Param page query int false "Página (>= 1)"
// @Param limit query int false "Itens por página (padrão 20, máximo 100)"
// @Success 200 {object} domain.APIResponse{data=[]domain.Product}
// @Failure 400 {object} domain.APIResponse "Parâmetros inválidos"
// @Router /products [get]
func (h *Handler) ListProductsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respond.MethodNotAllowed(w)
		return
	}

	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		h.handleServiceResponse(w, r, "", nil, err, http.StatusOK)
		return
	}

	products, err := h.Service.ListProducts(r.Context(), filter)
	h.handleServiceResponse(w, r, "", products, err, http.StatusOK)
}

// CompareProductsHandler lida com a requisição GET /v1/products/compare?ids=1,2.
// @Summary Compara produtos
// @Description IDs inválidos são ignorados; IDs inexistentes não aparecem no resultado.
// @Tags products
// @Produce json
// @Param ids query string true "IDs separados por vírgula"
// @Success 200 {object} domain.APIResponse{data=[]domain.Product}
// @Failure 400 {object} domain.APIResponse "Nenhum ID válido"
// @Router /products/compare [get]
func (h *Handler) CompareProductsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respond.MethodNotAllowed(w)
		return
	}

	var ids []int64
	for _, raw := range strings.Split(r.URL.Query().Get("ids"), ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}

	products, err := h.Service.GetProductsByIDs(r.Context(), ids)
	h.handleServiceResponse(w, r, "", products, err, http.StatusOK)
}

// GetProductHandler lida com a requisição GET /v1/products/{id}.
// @Summary Obtém um produto por ID
// @Tags products
// @Produce json
// @Param id path int true "ID do produto"
// @Success 200 {object} domain.APIResponse{data=domain.Product}
// @Failure 400 {object} domain.APIResponse "ID inválido"
// @Failure 404 {object} domain.APIResponse "Produto não encontrado"
// @Router /products/{id} [get]
func (h *Handler) GetProductHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respond.MethodNotAllowed(w)
		return
	}

	id, err := respond.PathID(r, "id")
	if err != nil {
		h.handleServiceResponse(w, r, "", nil, err, http.StatusOK)
		return
	}

	product, err := h.Service.GetProduct(r.Context(), id)
	h.handleServiceResponse(w, r, "", product, err, http.StatusOK)
}

// ListCategoriesHandler lida com a requisição GET /v1/categories.
// @Summary Lista as categorias do catálogo
// @Tags products
// @Produce json
// @Success 200 {object} domain.APIResponse{data=[]domain.Category}
// @Router /categories [get]
func (h *Handler) ListCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respond.MethodNotAllowed(w)
		return
	}

	categories, err := h.Service.ListCategories(r.Context())
	h.handleServiceResponse(w, r, "", categories, err, http.StatusOK)
}

// AdminListProductsHandler lida com a requisição GET /v1/admin/products.
// @Summary Lista todo o catálogo, inclusive produtos inativos
// @Tags admin
// @Produce json
// @Param search query string false "Trecho do nome do produto ou da marca"
// @Param page query int false "Página (>= 1)"
// @Param limit query int false "Itens por página"
// @Success 200 {object} domain.APIResponse{data=[]domain.Product}
// @Security BearerAuth
// @Router /admin/products [get]
func (h *Handler) AdminListProductsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respond.MethodNotAllowed(w)
		return
	}

	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		h.handleServiceResponse(w, r, "", nil, err, http.StatusOK)
		return
	}

	products, err := h.Service.ListAllProducts(r.Context(), filter)
	h.handleServiceResponse(w, r, "", products, err, http.StatusOK)
}

// CreateProductHandler lida com a requisição POST /v1/admin/products.
// @Summary Cadastra um produto
// @Tags admin
// @Accept json
// @Produce json
// @Param product body domain.ProductInput true "Dados do produto"
// @Success 201 {object} domain.APIResponse{data=domain.Product}
// @Failure 400 {object} domain.APIResponse "Dados inválidos, marca ou categoria inexistente"
// @Security BearerAuth
// @Router /admin/products [post]
func (h *Handler) CreateProductHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respond.MethodNotAllowed(w)
		return
	}

	var in domain.ProductInput
	if err := respond.DecodeJSON(w, r, &in); err != nil {
		h.handleServiceResponse(w, r, "", nil, err, http.StatusCreated)
		return
	}

	product, err := h.Service.CreateProduct(r.Context(), in)
	h.handleServiceResponse(w, r, "Produto criado com sucesso.", product, err, http.StatusCreated)
}

// AdminGetProductHandler lida com a requisição GET /v1/admin/products/{id}.
// @Summary Obtém um produto, ativo ou não
// @Tags admin
// @Produce json
// @Param id path int true "ID do produto"
// @Success 200 {object} domain.APIResponse{data=domain.Product}
// @Failure 404 {object} domain.APIResponse "Produto não encontrado"
// @Security BearerAuth
// @Router /admin/products/{id} [get]
func (h *Handler) AdminGetProductHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respond.MethodNotAllowed(w)
		return
	}

	id, err := respond.PathID(r, "id")
	if err != nil {
		h.handleServiceResponse(w, r, "", nil, err, http.StatusOK)
		return
	}

	product, err := h.Service.GetProductForAdmin(r.Context(), id)
	h.handleServiceResponse(w, r, "", product, err, http.StatusOK)
}

// UpdateProductHandler lida com a requisição PUT /v1/admin/products/{id}.
// @Summary Atualiza os dados cadastrais de um produto
// @Description O estoque não é alterado aqui; use o ajuste de estoque.
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "ID do produto"
// @Param product body domain.ProductInput true "Dados do produto"
// @Success 200 {object} domain.APIResponse{data=domain.Product}
// @Failure 400 {object} domain.APIResponse "Dados inválidos"
// @Failure 404 {object} domain.APIResponse "Produto não encontrado"
// @Security BearerAuth
// @Router /admin/products/{id} [put]
func (h *Handler) UpdateProductHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		respond.MethodNotAllowed(w)
		return
	}

	id, err := respond.PathID(r, "id")
	if err != nil {
		h.handleServiceResponse(w, r, "", nil, err, http.StatusOK)
		return
	}

	var in domain.ProductInput
	if err := respond.DecodeJSON(w, r, &in); err != nil {
		h.handleServiceResponse(w, r, "", nil, err, http.StatusOK)
		return
	}

	product, err := h.Service.UpdateProduct(r.Context(), id, in)
	h.handleServiceResponse(w, r, "Produto atualizado com sucesso.", product, err, http.StatusOK)
}

// SetProductStatusHandler lida com a requisição PATCH /v1/admin/products/{id}/status.
// @Summary Ativa ou desativa um produto
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "ID do produto"
// @Param status body ProductStatusRequest true "Novo estado"
// @Success 200 {object} domain.APIResponse{data=domain.Product}
// @Failure 400 {object} domain.APIResponse "is_active ausente"
// @Failure 404 {object} domain.APIResponse "Produto não encontrado"
// @Security BearerAuth
// @Router /admin/products/{id}/status [patch]
func (h *Handler) SetProductStatusHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		respond.MethodNotAllowed(w)
		return
	}

	id, err := respond.PathID(r, "id")
	if err != nil {
		h.handleServiceResponse(w, r, "", nil, err, http.StatusOK)
		return
	}

	var req ProductStatusRequest
	if err := respond.DecodeJSON(w, r, &req); err != nil {
		h.handleServiceResponse(w, r, "", nil, err, http.StatusOK)
		return
	}
	if req.IsActive == nil {
		h.handleServiceResponse(w, r, "", nil, apperror.NewValidationError("O campo 'is_active' é obrigatório."), http.StatusOK)
		return
	}

	product, err := h.Service.SetProductActive(r.Context(), id, *req.IsActive)
	h.handleServiceResponse(w, r, "Status do produto alterado.", product, err, http.StatusOK)
}

func parseFilter(q url.Values) (domain.ProductFilter, error) {
	filter := domain.ProductFilter{Search: strings.TrimSpace(q.Get("search"))}

	var err error
	if filter.BrandID, err = int64Param(q, "brand_id"); err != nil {
		return filter, err
	}
	if filter.CategoryID, err = int64Param(q, "category_id"); err != nil {
		return filter, err
	}
	page, err := int64Param(q, "page")
	if err != nil {
		return filter, err
	}
	limit, err := int64Param(q, "limit")
	if err != nil {
		return filter, err
	}
	filter.Page, filter.Limit = int(page), int(limit)

	if filter.MinPrice, err = decimalParam(q, "min_price"); err != nil {
		return filter, err
	}
	if filter.MaxPrice, err = decimalParam(q, "max_price"); err != nil {
		return filter, err
	}
	return filter, nil
}

func int64Param(q url.Values, name string) (int64, error) {
	raw := q.Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperror.NewValidationError(fmt.Sprintf("O parâmetro '%s' deve ser numérico.", name))
	}
	return v, nil
}

func decimalParam(q url.Values, name string) (*decimal.Decimal, error) {
	raw := q.Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, apperror.NewValidationError(fmt.Sprintf("O parâmetro '%s' deve ser um valor monetário.", name))
	}
	return &v, nil
}
