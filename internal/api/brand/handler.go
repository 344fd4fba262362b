package brand

import (
	"context"
	"net/http"

	"persol/internal/domain"
	"persol/internal/pkg/logger"
	"persol/internal/pkg/respond"
)

// BrandService define o contrato que o Handler espera da camada de Serviço.
type BrandService interface {
	ListBrands(ctx context.Context) ([]domain.Brand, error)
	CreateBrand(ctx context.Context, name string) (domain.Brand, error)
	RenameBrand(ctx context.Context, id int64, name string) (domain.Brand, error)
	DeleteBrand(ctx context.Context, id int64) error
}

// BrandRequest é o payload de criação e renomeação.
type BrandRequest struct {
	Name string `json:"name" example:"Persol"`
}

// Handler agrupa todos os métodos de Handler de marcas.
type Handler struct {
	Service BrandService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc BrandService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, message string, data interface{}, err error, successStatus int) {
	if err != nil {
		respond.Error(w, r, h.Logger, err)
		return
	}
	respond.Success(w, successStatus, message, data)
}

// ListBrandsHandler lida com a requisição GET /v1/brands.
// @Summary Lista as marcas
// @Description Retorna todas as marcas ordenadas por nome.
// @Tags brands
// @Produce json
// @Success 200 {object} domain.APIResponse{data=[]domain.Brand}
// @Failure 500 {object} domain.APIResponse "Erro interno do servidor"
// @Router /brands [get]
func (h *Handler) ListBrandsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respond.MethodNotAllowed(w)
		return
	}

	brands, err := h.Service.ListBrands(r.Context())
	h.handleServiceResponse(w, r, "", brands, err, http.StatusOK)
}

// CreateBrandHandler lida com a requisição POST /v1/admin/brands.
// @Summary Cria uma marca
// @Tags admin
// @Accept json
// @Produce json
// @Param brand body BrandRequest true "Nome da marca"
// @Success 201 {object} domain.APIResponse{data=domain.Brand}
// @Failure 400 {object} domain.APIResponse "Nome ausente ou longo demais"
// @Failure 409 {object} domain.APIResponse "Nome já cadastrado"
// @Security BearerAuth
// @Router /admin/brands [post]
func (h *Handler) CreateBrandHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respond.MethodNotAllowed(w)
		return
	}

	var req BrandRequest
	if err := respond.DecodeJSON(w, r, &req); err != nil {
		h.handleServiceResponse(w, r, "", nil, err, http.StatusCreated)
		return
	}

	brand, err := h.Service.CreateBrand(r.Context(), req.Name)
	h.handleServiceResponse(w, r, "Marca criada com sucesso.", brand, err, http.StatusCreated)
}

// RenameBrandHandler lida com a requisição PUT /v1/admin/brands/{id}.
// @Summary Renomeia uma marca
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "ID da marca"
// @Param brand body BrandRequest true "Novo nome"
// @Success 200 {object} domain.APIResponse{data=domain.Brand}
// @Failure 400 {object} domain.APIResponse "Payload inválido"
// @Failure 404 {object} domain.APIResponse "Marca não encontrada"
// @Failure 409 {object} domain.APIResponse "Nome já cadastrado"
// @Security BearerAuth
// @Router /admin/brands/{id} [put]
func (h *Handler) RenameBrandHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		respond.MethodNotAllowed(w)
		return
	}

	id, err := respond.PathID(r, "id")
	if err != nil {
		h.handleServiceResponse(w, r, "", nil, err, http.StatusOK)
		return
	}

	var req BrandRequest
	if err := respond.DecodeJSON(w, r, &req); err != nil {
		h.handleServiceResponse(w, r, "", nil, err, http.StatusOK)
		return
	}

	brand, err := h.Service.RenameBrand(r.Context(), id, req.Name)
	h.handleServiceResponse(w, r, "Marca atualizada com sucesso.", brand, err, http.StatusOK)
}

// DeleteBrandHandler lida com a requisição DELETE /v1/admin/brands/{id}.
// @Summary Remove uma marca
// @Tags admin
// @Produce json
// @Param id path int true "ID da marca"
// @Success 200 {object} domain.APIResponse
// @Failure 404 {object} domain.APIResponse "Marca não encontrada"
// @Failure 409 {object} domain.APIResponse "Marca com produtos vinculados"
// @Security BearerAuth
// @Router /admin/brands/{id} [delete]
func (h *Handler) DeleteBrandHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		respond.MethodNotAllowed(w)
		return
	}

	id, err := respond.PathID(r, "id")
	if err != nil {
		h.handleServiceResponse(w, r, "", nil, err, http.StatusOK)
		return
	}

	err = h.Service.DeleteBrand(r.Context(), id)
	h.handleServiceResponse(w, r, "Marca removida com sucesso.", nil, err, http.StatusOK)
}
