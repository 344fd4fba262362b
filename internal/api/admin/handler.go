// Package admin expõe as rotas administrativas de pedidos e usuários.
package admin

import (
	"context"
	"net/http"

	"persol/internal/domain"
	apperror "persol/internal/errors"
	"persol/internal/pkg/logger"
	"persol/internal/pkg/middleware"
	"persol/internal/pkg/respond"
)

// OrderAdminService define as operações administrativas sobre pedidos.
type OrderAdminService interface {
	ListAllOrders(ctx context.Context) ([]domain.AdminOrderView, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, status string) (domain.Order, error)
	UpdatePaymentStatus(ctx context.Context, orderID int64, status string) (domain.Order, error)
}

// UserAdminService define as operações administrativas sobre usuários.
type UserAdminService interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
	SoftDeleteUser(ctx context.Context, actor domain.Claims, userID int64) error
}

// Handler agrupa os handlers administrativos.
type Handler struct {
	Orders OrderAdminService
	Users  UserAdminService
	Logger logger.Logger
}

// NewHandler cria uma nova instância do Handler administrativo.
func NewHandler(orders OrderAdminService, users UserAdminService, log logger.Logger) *Handler {
	return &Handler{Orders: orders, Users: users, Logger: log}
}

func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, message string, data interface{}, err error, successStatus int) {
	if err != nil {
		respond.Error(w, r, h.Logger, err)
		return
	}
	respond.Success(w, successStatus, message, data)
}

// ListOrdersHandler lida com a requisição GET /v1/admin/orders.
// @Summary Lista todos os pedidos
// @Tags admin
// @Produce json
// @Success 200 {object} domain.APIResponse{data=[]domain.AdminOrderView}
// @Failure 401 {object} domain.APIResponse "Token ausente ou inválido"
// @Failure 403 {object} domain.APIResponse "Papel sem permissão"
// @Security BearerAuth
// @Router /admin/orders [get]
func (h *Handler) ListOrdersHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respond.MethodNotAllowed(w)
		return
	}

	orders, err := h.Orders.ListAllOrders(r.Context())
	h.handleServiceResponse(w, r, "", orders, err, http.StatusOK)
}

// UpdateOrderStatusHandler lida com a requisição PATCH /v1/admin/orders/{id}/status.
// @Summary Altera o status do pedido
// @Description Aceita qualquer status conhecido; com ORDER_STRICT_TRANSITIONS segue pending -> processing -> shipped -> delivered.
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "ID do pedido"
// @Param status body domain.StatusUpdate true "Novo status"
// @Success 200 {object} domain.APIResponse{data=domain.Order}
// @Failure 400 {object} domain.APIResponse "Status desconhecido"
// @Failure 404 {object} domain.APIResponse "Pedido não encontrado"
// @Failure 409 {object} domain.APIResponse "Pedido alterado por outra operação ou transição inválida (modo estrito)"
// @Security BearerAuth
// @Router /admin/orders/{id}/status [patch]
func (h *Handler) UpdateOrderStatusHandler(w http.ResponseWriter, r *http.Request) {
	h.updateStatus(w, r, h.Orders.UpdateOrderStatus, "Status do pedido atualizado.")
}

// UpdatePaymentStatusHandler lida com a requisição PATCH /v1/admin/orders/{id}/payment.
// @Summary Altera o status de pagamento
// @Description Aceita qualquer status conhecido; com ORDER_STRICT_TRANSITIONS segue unpaid -> paid -> refunded.
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "ID do pedido"
// @Param status body domain.StatusUpdate true "Novo status de pagamento"
// @Success 200 {object} domain.APIResponse{data=domain.Order}
// @Failure 400 {object} domain.APIResponse "Status desconhecido"
// @Failure 404 {object} domain.APIResponse "Pedido não encontrado"
// @Failure 409 {object} domain.APIResponse "Pedido alterado por outra operação ou transição inválida (modo estrito)"
// @Security BearerAuth
// @Router /admin/orders/{id}/payment [patch]
func (h *Handler) UpdatePaymentStatusHandler(w http.ResponseWriter, r *http.Request) {
	h.updateStatus(w, r, h.Orders.UpdatePaymentStatus, "Status de pagamento atualizado.")
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request,
	update func(ctx context.Context, orderID int64, status string) (domain.Order, error), message string) {
	if r.Method != http.MethodPatch {
		respond.MethodNotAllowed(w)
		return
	}

	id, err := respond.PathID(r, "id")
	if err != nil {
		h.handleServiceResponse(w, r, "", nil, err, http.StatusOK)
		return
	}

	var req domain.StatusUpdate
	if err := respond.DecodeJSON(w, r, &req); err != nil {
		h.handleServiceResponse(w, r, "", nil, err, http.StatusOK)
		return
	}

	order, err := update(r.Context(), id, req.Status)
	h.handleServiceResponse(w, r, message, order, err, http.StatusOK)
}

// ListUsersHandler lida com a requisição GET /v1/admin/users.
// @Summary Lista usuários ativos
// @Tags admin
// @Produce json
// @Success 200 {object} domain.APIResponse{data=[]domain.User}
// @Security BearerAuth
// @Router /admin/users [get]
func (h *Handler) ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respond.MethodNotAllowed(w)
		return
	}

	users, err := h.Users.ListUsers(r.Context())
	h.handleServiceResponse(w, r, "", users, err, http.StatusOK)
}

// DeleteUserHandler lida com a requisição DELETE /v1/admin/users/{id}.
// @Summary Desativa um usuário (soft delete)
// @Tags admin
// @Produce json
// @Param id path int true "ID do usuário"
// @Success 200 {object} domain.APIResponse
// @Failure 400 {object} domain.APIResponse "Tentativa de remover a própria conta"
// @Failure 404 {object} domain.APIResponse "Usuário não encontrado"
// @Security BearerAuth
// @Router /admin/users/{id} [delete]
func (h *Handler) DeleteUserHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		respond.MethodNotAllowed(w)
		return
	}

	actor, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		h.handleServiceResponse(w, r, "", nil, apperror.NewUnauthorizedError("Acesso negado. Nenhum token fornecido."), http.StatusOK)
		return
	}

	id, err := respond.PathID(r, "id")
	if err != nil {
		h.handleServiceResponse(w, r, "", nil, err, http.StatusOK)
		return
	}

	err = h.Users.SoftDeleteUser(r.Context(), actor, id)
	h.handleServiceResponse(w, r, "Usuário removido com sucesso.", nil, err, http.StatusOK)
}
