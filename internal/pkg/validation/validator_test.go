package validation_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartcart/internal/domain"
	apperror "smartcart/internal/errors"
	"smartcart/internal/pkg/validation"
)

func validRegister() domain.RegisterRequest {
	return domain.RegisterRequest{
		Email:     "ana@example.com",
		Password:  "secret1",
		FirstName: "Ana",
		LastName:  "Silva",
	}
}

func TestStruct_ValidPayload(t *testing.T) {
	v := validation.New()
	assert.NoError(t, v.Struct(validRegister()))
}

func TestStruct_ShortPasswordReportsJSONField(t *testing.T) {
	v := validation.New()
	req := validRegister()
	req.Password = "12345"

	err := v.Struct(req)
	require.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)

	fields := apperror.FieldErrors(err)
	assert.Contains(t, fields, "password")
	assert.Contains(t, fields["password"], "6")
}

func TestStruct_BlankNamesRejected(t *testing.T) {
	v := validation.New()
	req := validRegister()
	req.FirstName = "   "
	req.LastName = ""

	fields := apperror.FieldErrors(v.Struct(req))
	assert.Equal(t, "campo obrigatório", fields["firstName"])
	assert.Equal(t, "campo obrigatório", fields["lastName"])
}

func TestStruct_InvalidEmailAndLongAddress(t *testing.T) {
	v := validation.New()
	req := validRegister()
	req.Email = "nao-e-email"
	req.Address = strings.Repeat("a", 201)

	fields := apperror.FieldErrors(v.Struct(req))
	assert.Equal(t, "e-mail em formato inválido", fields["email"])
	assert.Contains(t, fields["address"], "200")
}

func TestStruct_MinOnIntegers(t *testing.T) {
	v := validation.New()
	in := domain.ProductInput{Name: "Caneca", StockLevel: -1}

	fields := apperror.FieldErrors(v.Struct(in))
	assert.Equal(t, "deve ser maior ou igual a 0", fields["stockLevel"])
}

func TestStruct_PasswordLimitCountsBytes(t *testing.T) {
	v := validation.New()
	req := validRegister()

	req.Password = strings.Repeat("a", 72)
	assert.NoError(t, v.Struct(req))

	req.Password = strings.Repeat("é", 40)
	fields := apperror.FieldErrors(v.Struct(req))
	assert.Equal(t, "deve ter no máximo 72 bytes", fields["password"])
}
