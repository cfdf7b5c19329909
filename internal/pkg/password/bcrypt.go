// Package password implementa o hash de senhas com bcrypt.
package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrTooLong indica senha acima do limite de 72 bytes do bcrypt.
var ErrTooLong = bcrypt.ErrPasswordTooLong

// Hasher define o contrato de hash/verificação de credenciais.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// BcryptHasher produz digests auto-salgados no formato $2a$<cost>$...
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher cria o hasher. cost <= 0 usa bcrypt.DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash gera o digest da senha; salt e custo ficam embutidos no próprio digest.
func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("falha ao gerar hash da senha: %w", err)
	}
	return string(digest), nil
}

// Verify recalcula com o salt/custo do digest. Digest malformado retorna false.
func (h *BcryptHasher) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
