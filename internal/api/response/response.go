// Package response padroniza o corpo JSON das respostas de sucesso e de erro da API.
package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"smartcart/internal/domain"
	apperror "smartcart/internal/errors"
	"smartcart/internal/pkg/logger"
)

func init() {
	// Valores monetários saem como número JSON (37.97), não como string.
	decimal.MarshalJSONWithoutQuotes = true
}

// maxBodyBytes limita o corpo das requisições JSON.
const maxBodyBytes = 1 << 20

// JSON escreve data com o status informado. data nil gera corpo vazio.
func JSON(w http.ResponseWriter, status int, data interface{}) error {
	if data == nil {
		w.WriteHeader(status)
		return nil
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// Error mapeia err para o status HTTP e escreve o domain.ErrorResponse.
// Erros 5xx são logados com a causa; o cliente recebe apenas a mensagem genérica.
func Error(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	status, category, message := apperror.MapToHTTPStatus(err)

	if status >= http.StatusInternalServerError {
		log.Error(fmt.Sprintf("Erro de Servidor: %s %s %s", category, r.Method, r.URL.Path), err)
	} else {
		log.Debug(fmt.Sprintf("Requisição rejeitada com status %d. Categoria: %s", status, category), map[string]interface{}{"path": r.URL.Path})
	}

	_ = JSON(w, status, domain.ErrorResponse{
		Code:     status,
		Category: category,
		Message:  message,
		Error:    message,
		Fields:   apperror.FieldErrors(err),
	})
}

// Handle é o ponto único de saída dos handlers: erro vira domain.ErrorResponse, sucesso vira JSON.
func Handle(w http.ResponseWriter, r *http.Request, log logger.Logger, data interface{}, err error, successStatus int) {
	if err != nil {
		Error(w, r, log, err)
		return
	}

	log.Debug("Requisição concluída com sucesso", map[string]interface{}{
		"method": r.Method,
		"path":   r.URL.Path,
		"status": successStatus,
	})

	if jsonErr := JSON(w, successStatus, data); jsonErr != nil {
		log.Error("Falha ao codificar JSON de resposta", jsonErr)
	}
}

// Decode lê o corpo JSON em dst. Corpo vazio ou malformado é erro de validação.
func Decode(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return apperror.NewValidationError("Corpo da requisição ausente.")
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperror.NewValidationError("Corpo da requisição ausente.")
		}
		return apperror.NewValidationError("Payload inválido. Verifique o formato JSON.")
	}
	return nil
}

// PathID lê um identificador numérico positivo do path (padrões do ServeMux).
func PathID(r *http.Request, name string) (uint, error) {
	raw := r.PathValue(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperror.NewValidationError(fmt.Sprintf("O parâmetro '%s' deve ser um ID numérico positivo.", name))
	}
	return uint(id), nil
}
