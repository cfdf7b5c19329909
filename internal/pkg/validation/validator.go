// Package validation centraliza a validação de payloads de entrada com go-playground/validator.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	apperror "smartcart/internal/errors"
)

// Validator embrulha o validator.Validate configurado com as regras do SmartCart.
type Validator struct {
	v *validator.Validate
}

// New cria o validador, registra as regras "notblank" e "maxbytes" e usa o nome JSON dos campos nas mensagens.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// notblank rejeita strings compostas apenas de espaços.
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		if fl.Field().Kind() != reflect.String {
			return true
		}
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	// maxbytes limita o tamanho em bytes (bcrypt só aceita até 72 bytes).
	_ = v.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		limit, err := strconv.Atoi(fl.Param())
		if err != nil || fl.Field().Kind() != reflect.String {
			return false
		}
		return len(fl.Field().String()) <= limit
	})

	return &Validator{v: v}
}

// Struct valida o payload e traduz as falhas para um ValidationError com o detalhe por campo.
func (val *Validator) Struct(payload interface{}) error {
	err := val.v.Struct(payload)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperror.NewInternalError("Falha ao validar payload.", err)
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = describe(fe)
	}

	first := verrs[0]
	return apperror.NewFieldValidationError(fmt.Sprintf("Campo '%s' inválido: %s", first.Field(), describe(first)), fields)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "campo obrigatório"
	case "email":
		return "e-mail em formato inválido"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("deve ter pelo menos %s caracteres", fe.Param())
		}
		return fmt.Sprintf("deve ser maior ou igual a %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("deve ter no máximo %s caracteres", fe.Param())
		}
		return fmt.Sprintf("deve ser menor ou igual a %s", fe.Param())
	case "maxbytes":
		return fmt.Sprintf("deve ter no máximo %s bytes", fe.Param())
	case "url":
		return "URL inválida"
	case "gt":
		return fmt.Sprintf("deve ser maior que %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("deve ser um de: %s", fe.Param())
	default:
		return fmt.Sprintf("falhou na regra '%s'", fe.Tag())
	}
}
