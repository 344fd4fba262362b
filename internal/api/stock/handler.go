package stock

import (
	"context"
	"net/http"

	"persol/internal/domain"
	"persol/internal/pkg/logger"
	"persol/internal/pkg/middleware"
	"persol/internal/pkg/respond"
)

// StockService define o contrato que o Handler espera da camada de Serviço.
type StockService interface {
	GetStock(ctx context.Context, productID int64) (domain.StockLevel, error)
	AdjustStock(ctx context.Context, adjustment domain.StockAdjustment) (domain.StockLevel, error)
}

// Handler agrupa todos os métodos de Handler de estoque.
type Handler struct {
	Service StockService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc StockService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, message string, data interface{}, err error, successStatus int) {
	if err != nil {
		respond.Error(w, r, h.Logger, err)
		return
	}
	respond.Success(w, successStatus, message, data)
}

// GetStockHandler lida com a requisição GET /v1/admin/products/{id}/stock.
// @Summary Consulta o estoque de um produto
// @Tags stock
// @Produce json
// @Param id path int true "ID do produto"
// @Success 200 {object} domain.APIResponse{data=domain.StockLevel}
// @Failure 404 {object} domain.APIResponse "Produto não encontrado"
// @Security BearerAuth
// @Router /admin/products/{id}/stock [get]
func (h *Handler) GetStockHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respond.MethodNotAllowed(w)
		return
	}

	id, err := respond.PathID(r, "id")
	if err != nil {
		h.handleServiceResponse(w, r, "", nil, err, http.StatusOK)
		return
	}

	level, err := h.Service.GetStock(r.Context(), id)
	h.handleServiceResponse(w, r, "", level, err, http.StatusOK)
}

// AdjustStockHandler lida com a requisição POST /v1/admin/products/{id}/stock.
// @Summary Ajusta o estoque de um produto
// @Description Aplica um delta (positivo ou negativo). O resultado não pode ficar negativo.
// @Tags stock
// @Accept json
// @Produce json
// @Param id path int true "ID do produto"
// @Param adjustment body domain.StockAdjustment true "Delta e motivo"
// @Success 200 {object} domain.APIResponse{data=domain.StockLevel}
// @Failure 400 {object} domain.APIResponse "Delta zero ou estoque negativo"
// @Failure 404 {object} domain.APIResponse "Produto não encontrado"
// @Failure 409 {object} domain.APIResponse "Conflito de versão"
// @Security BearerAuth
// @Router /admin/products/{id}/stock [post]
func (h *Handler) AdjustStockHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respond.MethodNotAllowed(w)
		return
	}

	id, err := respond.PathID(r, "id")
	if err != nil {
		h.handleServiceResponse(w, r, "", nil, err, http.StatusOK)
		return
	}

	var adjustment domain.StockAdjustment
	if err := respond.DecodeJSON(w, r, &adjustment); err != nil {
		h.handleServiceResponse(w, r, "", nil, err, http.StatusOK)
		return
	}
	adjustment.ProductID = id

	if claims, ok := middleware.ClaimsFromContext(r.Context()); ok {
		h.Logger.Info("Ajuste de estoque solicitado.", map[string]interface{}{
			"product_id": id,
			"user_id":    claims.ID,
			"delta":      adjustment.Delta,
		})
	}

	level, err := h.Service.AdjustStock(r.Context(), adjustment)
	h.handleServiceResponse(w, r, "Estoque ajustado com sucesso.", level, err, http.StatusOK)
}
