package domain

// APIResponse é o envelope padronizado das respostas da API.
// @Description Envelope padrão: success, message opcional, category em erros e data em sucessos.
type APIResponse struct {
	Success  bool        `json:"success" example:"false"`
	Message  string      `json:"message,omitempty" example:"Acesso negado. Nenhum token fornecido."`
	Category string      `json:"category,omitempty" example:"UNAUTHORIZED"`
	Data     interface{} `json:"data,omitempty"`
}
