package schema

import (
	"encoding/json"
	"fmt"
	"time"
)

// PasswordResetTokenReady is queued by the API and delivered by the mailer.
type PasswordResetTokenReady struct {
	Email     string    `json:"email"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (m *PasswordResetTokenReady) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

func (m *PasswordResetTokenReady) Unmarshal(data []byte) error {
	if err := json.Unmarshal(data, m); err != nil {
		return err
	}
	if m.Email == "" || m.Code == "" || m.ExpiresAt.IsZero() {
		return fmt.Errorf("incomplete password reset token message")
	}
	return nil
}
