package order

import (
	"context"
	"net/http"

	"persol/internal/domain"
	apperror "persol/internal/errors"
	"persol/internal/pkg/logger"
	"persol/internal/pkg/middleware"
	"persol/internal/pkg/respond"
)

// OrderService define as operações de pedido disponíveis ao cliente autenticado.
type OrderService interface {
	PlaceOrder(ctx context.Context, claims domain.Claims, req domain.PlaceOrderRequest) (domain.PlacedOrder, error)
	ListMyOrders(ctx context.Context, claims domain.Claims) ([]domain.OrderSummary, error)
	GetMyOrder(ctx context.Context, claims domain.Claims, orderID int64) (domain.Order, error)
}

// Handler agrupa os handlers de pedidos do cliente.
type Handler struct {
	Service OrderService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc OrderService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, message string, data interface{}, err error, successStatus int) {
	if err != nil {
		respond.Error(w, r, h.Logger, err)
		return
	}
	respond.Success(w, successStatus, message, data)
}

func claimsOrUnauthorized(r *http.Request) (domain.Claims, error) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		return domain.Claims{}, apperror.NewUnauthorizedError("Acesso negado. Nenhum token fornecido.")
	}
	return claims, nil
}

// OrdersHandler atende /v1/orders: GET lista, POST cria.
func (h *Handler) OrdersHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.ListMyOrdersHandler(w, r)
	case http.MethodPost:
		h.PlaceOrderHandler(w, r)
	default:
		respond.MethodNotAllowed(w)
	}
}

// PlaceOrderHandler lida com a requisição POST /v1/orders.
// @Summary Cria um pedido
// @Description O total é calculado com os preços do catálogo; o carrinho não carrega preço.
// @Tags orders
// @Accept json
// @Produce json
// @Param order body domain.PlaceOrderRequest true "Carrinho e dados de entrega"
// @Success 201 {object} domain.APIResponse{data=domain.PlacedOrder}
// @Failure 400 {object} domain.APIResponse "Carrinho vazio, quantidade inválida ou produto desconhecido"
// @Failure 401 {object} domain.APIResponse "Token ausente ou inválido"
// @Failure 404 {object} domain.APIResponse "Perfil de cliente não encontrado"
// @Failure 500 {object} domain.APIResponse "Erro interno do servidor"
// @Security BearerAuth
// @Router /orders [post]
func (h *Handler) PlaceOrderHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respond.MethodNotAllowed(w)
		return
	}

	claims, err := claimsOrUnauthorized(r)
	if err != nil {
		h.handleServiceResponse(w, r, "", nil, err, http.StatusCreated)
		return
	}

	var req domain.PlaceOrderRequest
	if err := respond.DecodeJSON(w, r, &req); err != nil {
		h.handleServiceResponse(w, r, "", nil, err, http.StatusCreated)
		return
	}

	placed, err := h.Service.PlaceOrder(r.Context(), claims, req)
	h.handleServiceResponse(w, r, "Pedido criado com sucesso.", placed, err, http.StatusCreated)
}

// ListMyOrdersHandler lida com a requisição GET /v1/orders.
// @Summary Lista os pedidos do cliente autenticado
// @Tags orders
// @Produce json
// @Success 200 {object} domain.APIResponse{data=[]domain.OrderSummary}
// @Failure 401 {object} domain.APIResponse "Token ausente ou inválido"
// @Security BearerAuth
// @Router /orders [get]
func (h *Handler) ListMyOrdersHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respond.MethodNotAllowed(w)
		return
	}

	claims, err := claimsOrUnauthorized(r)
	if err != nil {
		h.handleServiceResponse(w, r, "", nil, err, http.StatusOK)
		return
	}

	orders, err := h.Service.ListMyOrders(r.Context(), claims)
	h.handleServiceResponse(w, r, "", orders, err, http.StatusOK)
}

// GetMyOrderHandler lida com a requisição GET /v1/orders/{id}.
// @Summary Detalha um pedido do cliente autenticado
// @Tags orders
// @Produce json
// @Param id path int true "ID do pedido"
// @Success 200 {object} domain.APIResponse{data=domain.Order}
// @Failure 404 {object} domain.APIResponse "Pedido não encontrado"
// @Security BearerAuth
// @Router /orders/{id} [get]
func (h *Handler) GetMyOrderHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respond.MethodNotAllowed(w)
		return
	}

	claims, err := claimsOrUnauthorized(r)
	if err != nil {
		h.handleServiceResponse(w, r, "", nil, err, http.StatusOK)
		return
	}

	id, err := respond.PathID(r, "id")
	if err != nil {
		h.handleServiceResponse(w, r, "", nil, err, http.StatusOK)
		return
	}

	order, err := h.Service.GetMyOrder(r.Context(), claims, id)
	h.handleServiceResponse(w, r, "", order, err, http.StatusOK)
}
