package passwordresettoken

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"notesauth/internal/core/domain/user"
)

const (
	minToken = 100000
	maxToken = 999999
)

var tokenRange = big.NewInt(maxToken - minToken + 1)

// Generator draws six digit codes uniformly from [100000, 999999].
type Generator struct {
	random io.Reader
}

func NewGenerator() *Generator {
	return &Generator{random: rand.Reader}
}

func (g *Generator) GenerateToken() (user.PasswordResetToken, error) {
	n, err := rand.Int(g.random, tokenRange)
	if err != nil {
		return user.PasswordResetToken(""), fmt.Errorf("could not read random number: %w", err)
	}
	return user.PasswordResetToken(fmt.Sprintf("%d", n.Int64()+minToken)), nil
}
