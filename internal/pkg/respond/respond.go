// Package respond padroniza o envelope JSON {success, message, category, data} das respostas.
package respond

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"persol/internal/domain"
	apperror "persol/internal/errors"
	"persol/internal/pkg/logger"
)

// JSON escreve o corpo com o status informado.
func JSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// Success escreve {success:true, message, data}.
func Success(w http.ResponseWriter, status int, message string, data interface{}) {
	JSON(w, status, domain.APIResponse{Success: true, Message: message, Data: data})
}

// Error traduz o erro para status + envelope. Erros 5xx são registrados com a causa original;
// erros 4xx apenas em debug.
func Error(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	status, category, message := apperror.MapToHTTPStatus(err)

	if log != nil {
		if status >= http.StatusInternalServerError {
			log.Error(fmt.Sprintf("Erro de Servidor: %s %s", r.Method, r.URL.Path), err)
		} else {
			log.Debug(fmt.Sprintf("Requisição rejeitada com status %d. Categoria: %s", status, category), map[string]interface{}{"path": r.URL.Path})
		}
	}

	JSON(w, status, domain.APIResponse{Success: false, Message: message, Category: category})
}

// MethodNotAllowed responde 405 no mesmo envelope.
func MethodNotAllowed(w http.ResponseWriter) {
	JSON(w, http.StatusMethodNotAllowed, domain.APIResponse{Success: false, Message: "Método não permitido.", Category: "METHOD_NOT_ALLOWED"})
}

// DecodeJSON lê o corpo da requisição; payload inválido vira ValidationError.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(dst); err != nil {
		return apperror.NewValidationError("Payload JSON inválido.")
	}
	return nil
}

// PathID lê um ID inteiro positivo do padrão da rota (ex: /v1/orders/{id}).
func PathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.NewValidationError(fmt.Sprintf("O parâmetro '%s' deve ser um inteiro positivo.", name))
	}
	return id, nil
}
