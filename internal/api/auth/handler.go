package auth

import (
	"context"
	"net/http"

	"persol/internal/domain"
	apperror "persol/internal/errors"
	"persol/internal/pkg/logger"
	"persol/internal/pkg/middleware"
	"persol/internal/pkg/respond"
)

// AuthService define o contrato para cadastro, login e perfil.
type AuthService interface {
	Register(ctx context.Context, reg domain.Registration) (domain.User, error)
	Login(ctx context.Context, email, password string) (domain.LoginResult, error)
	Me(ctx context.Context, claims domain.Claims) (domain.User, error)
}

// LoginRequest representa o payload de entrada para o login.
type LoginRequest struct {
	Email    string `json:"email" example:"cliente@persol.com"`
	Password string `json:"password" example:"segredo123"`
}

// Handler agrupa os handlers de autenticação.
type Handler struct {
	Service AuthService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc AuthService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

// handleServiceResponse padroniza o envelope de sucesso e a tradução de erros.
func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, message string, data interface{}, err error, successStatus int) {
	if err != nil {
		respond.Error(w, r, h.Logger, err)
		return
	}
	respond.Success(w, successStatus, message, data)
}

// RegisterHandler lida com a requisição POST /v1/auth/register.
// @Summary Cadastra um novo cliente
// @Description Cria o usuário (papel customer) e o perfil de cliente em uma única transação.
// @Tags auth
// @Accept json
// @Produce json
// @Param registration body domain.Registration true "Dados de cadastro"
// @Success 201 {object} domain.APIResponse "Usuário criado"
// @Failure 400 {object} domain.APIResponse "Campos obrigatórios ausentes"
// @Failure 409 {object} domain.APIResponse "Email já cadastrado"
// @Failure 500 {object} domain.APIResponse "Erro interno do servidor"
// @Router /auth/register [post]
func (h *Handler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respond.MethodNotAllowed(w)
		return
	}

	var reg domain.Registration
	if err := respond.DecodeJSON(w, r, &reg); err != nil {
		h.handleServiceResponse(w, r, "", nil, err, http.StatusCreated)
		return
	}

	user, err := h.Service.Register(r.Context(), reg)
	h.handleServiceResponse(w, r, "Cadastro realizado com sucesso.", user, err, http.StatusCreated)
}

// LoginHandler lida com a requisição POST /v1/auth/login.
// @Summary Autentica um usuário e retorna um JWT
// @Description Recebe email/senha e emite um token HS256. Email desconhecido e senha errada têm a mesma resposta.
// @Tags auth
// @Accept json
// @Produce json
// @Param login body LoginRequest true "Credenciais do usuário"
// @Success 200 {object} domain.APIResponse{data=domain.LoginResult} "Token emitido"
// @Failure 400 {object} domain.APIResponse "Payload inválido"
// @Failure 401 {object} domain.APIResponse "Credenciais inválidas"
// @Failure 500 {object} domain.APIResponse "Erro interno do servidor"
// @Router /auth/login [post]
func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respond.MethodNotAllowed(w)
		return
	}

	var req LoginRequest
	if err := respond.DecodeJSON(w, r, &req); err != nil {
		h.handleServiceResponse(w, r, "", nil, err, http.StatusOK)
		return
	}

	result, err := h.Service.Login(r.Context(), req.Email, req.Password)
	h.handleServiceResponse(w, r, "Login realizado com sucesso.", result, err, http.StatusOK)
}

// MeHandler lida com a requisição GET /v1/auth/me.
// @Summary Retorna o usuário autenticado
// @Tags auth
// @Produce json
// @Success 200 {object} domain.APIResponse{data=domain.User}
// @Failure 401 {object} domain.APIResponse "Token ausente ou inválido"
// @Security BearerAuth
// @Router /auth/me [get]
func (h *Handler) MeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respond.MethodNotAllowed(w)
		return
	}

	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		h.handleServiceResponse(w, r, "", nil, apperror.NewUnauthorizedError("Acesso negado. Nenhum token fornecido."), http.StatusOK)
		return
	}

	user, err := h.Service.Me(r.Context(), claims)
	h.handleServiceResponse(w, r, "", user, err, http.StatusOK)
}
