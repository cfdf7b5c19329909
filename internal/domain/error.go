package domain

// ErrorResponse é a estrutura padronizada para respostas de erro na API.
// @Description Estrutura padronizada para respostas de erro na API.
type ErrorResponse struct {
	Code     int               `json:"code" example:"400"`
	Category string            `json:"category" example:"VALIDATION_ERROR"`
	Message  string            `json:"message" example:"O nome da categoria não pode ser vazio."`
	Error    string            `json:"error" example:"O nome da categoria não pode ser vazio."`
	Fields   map[string]string `json:"fields,omitempty"`
}
