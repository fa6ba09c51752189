package passwordhasher

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"notesauth/internal/core/domain/user"

	"golang.org/x/crypto/bcrypt"
)

// Bcrypt hashes HMAC-SHA256(secret, password) rather than the password itself. Bcrypt reads
// only the first 72 bytes of its input, the hex digest always fits.
type Bcrypt struct {
	secret string
	cost   int
}

func NewBcrypt(secret string, cost int) *Bcrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		panic(fmt.Sprintf("bcrypt cost must be within [%d, %d], got %d", bcrypt.MinCost, bcrypt.MaxCost, cost))
	}
	return &Bcrypt{secret: secret, cost: cost}
}

func (h *Bcrypt) HashPassword(password user.RawPassword) (hash user.PasswordHash, err error) {
	bcryptHash, err := bcrypt.GenerateFromPassword(h.peppered(password), h.cost)
	if err != nil {
		return hash, err
	}
	return user.PasswordHash(bcryptHash), nil
}

func (h *Bcrypt) ValidatePassword(password user.RawPassword, hash user.PasswordHash) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), h.peppered(password))
	return err == nil
}

func (h *Bcrypt) peppered(password user.RawPassword) []byte {
	mac := hmac.New(sha256.New, []byte(h.secret))
	mac.Write([]byte(password))
	return []byte(hex.EncodeToString(mac.Sum(nil)))
}
