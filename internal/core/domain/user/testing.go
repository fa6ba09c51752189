package user

import (
	"context"
	"crypto/md5"
	"fmt"
	"io"
	c "notesauth/internal/core/domain/common"
	"sync"
	"time"
)

type FakePasswordHasher struct {
	ReturnError bool
}

func NewFakePasswordHasher() *FakePasswordHasher {
	return &FakePasswordHasher{}
}

func (h *FakePasswordHasher) HashPassword(password RawPassword) (PasswordHash, error) {
	if h.ReturnError {
		return PasswordHash(""), fmt.Errorf("could not hash password")
	}
	hash := md5.New()
	io.WriteString(hash, string(password))
	return PasswordHash(fmt.Sprintf("%x", hash.Sum(nil))), nil
}

func (h *FakePasswordHasher) ValidatePassword(password RawPassword, hash PasswordHash) bool {
	hasher := md5.New()
	io.WriteString(hasher, string(password))
	return PasswordHash(fmt.Sprintf("%x", hasher.Sum(nil))) == hash
}

// FakePasswordResetTokenGenerator hands out Tokens in order and repeats the last one.
type FakePasswordResetTokenGenerator struct {
	Tokens      []PasswordResetToken
	ReturnError bool
	generated   int
	lock        sync.Mutex
}

func NewFakePasswordResetTokenGenerator(tokens ...string) *FakePasswordResetTokenGenerator {
	g := &FakePasswordResetTokenGenerator{}
	for _, token := range tokens {
		g.Tokens = append(g.Tokens, PasswordResetToken(token))
	}
	return g
}

func (g *FakePasswordResetTokenGenerator) GenerateToken() (PasswordResetToken, error) {
	if g.ReturnError {
		return PasswordResetToken(""), fmt.Errorf("could not generate password reset token")
	}
	g.lock.Lock()
	defer g.lock.Unlock()
	if len(g.Tokens) == 0 {
		panic("no password reset tokens configured")
	}
	ix := g.generated
	if ix >= len(g.Tokens) {
		ix = len(g.Tokens) - 1
	}
	g.generated++
	return g.Tokens[ix], nil
}

type SentPasswordResetToken struct {
	To    c.Email
	Reset PasswordReset
}

type FakePasswordResetTokenSender struct {
	Sent        []SentPasswordResetToken
	ReturnError bool
	lock        sync.Mutex
}

func NewFakePasswordResetTokenSender() *FakePasswordResetTokenSender {
	return &FakePasswordResetTokenSender{}
}

func (s *FakePasswordResetTokenSender) SendPasswordResetToken(
	ctx context.Context,
	to c.Email,
	reset PasswordReset,
) error {
	if s.ReturnError {
		return fmt.Errorf("could not send password reset token")
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	s.Sent = append(s.Sent, SentPasswordResetToken{To: to, Reset: reset})
	return nil
}

func (s *FakePasswordResetTokenSender) SentCount() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.Sent)
}

func (s *FakePasswordResetTokenSender) LastSent() SentPasswordResetToken {
	s.lock.Lock()
	defer s.lock.Unlock()
	l := len(s.Sent)
	if l == 0 {
		panic("Sent count is 0.")
	}
	return s.Sent[l-1]
}

type FakeAccessTokenIssuer struct {
	ReturnError bool
}

func NewFakeAccessTokenIssuer() *FakeAccessTokenIssuer {
	return &FakeAccessTokenIssuer{}
}

func (i *FakeAccessTokenIssuer) IssueAccessToken(u User) (AccessToken, error) {
	if i.ReturnError {
		return AccessToken(""), fmt.Errorf("could not issue access token")
	}
	return AccessToken(fmt.Sprintf("access-token-%d", u.ID)), nil
}

func (i *FakeAccessTokenIssuer) ParseAccessToken(token AccessToken) (ID, error) {
	var id ID
	if _, err := fmt.Sscanf(string(token), "access-token-%d", &id); err != nil {
		return ID(0), ErrInvalidAccessToken
	}
	return id, nil
}

type FakeUserRepository struct {
	Users       []User
	ReturnError bool
	lock        sync.Mutex
}

func NewFakeUserRepository() *FakeUserRepository {
	return &FakeUserRepository{Users: make([]User, 0, 10)}
}

func (r *FakeUserRepository) Create(ctx context.Context, input CreateUserInput) (u User, err error) {
	if r.ReturnError {
		return u, fmt.Errorf("could not create user %v", input)
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	maxID := ID(0)
	for _, existing := range r.Users {
		if existing.Username == input.Username {
			return u, ErrUsernameAlreadyExists
		}
		if existing.Email == input.Email {
			return u, ErrEmailAlreadyExists
		}
		if existing.ID > maxID {
			maxID = existing.ID
		}
	}
	u = User{
		ID:           maxID + 1,
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: input.PasswordHash,
		CreatedAt:    input.CreatedAt,
	}
	r.Users = append(r.Users, u)
	return u, nil
}

func (r *FakeUserRepository) GetByID(ctx context.Context, id ID) (u User, err error) {
	if r.ReturnError {
		return u, fmt.Errorf("could not get user %d", id)
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	for _, u := range r.Users {
		if u.ID == id {
			return u, nil
		}
	}
	return u, ErrUserDoesNotExist
}

func (r *FakeUserRepository) GetByEmail(ctx context.Context, email c.Email) (u User, err error) {
	if r.ReturnError {
		return u, fmt.Errorf("could not get user by email")
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	for _, u := range r.Users {
		if u.Email == email {
			return u, nil
		}
	}
	return u, ErrUserDoesNotExist
}

func (r *FakeUserRepository) GetByEmailForUpdate(ctx context.Context, email c.Email) (User, error) {
	return r.GetByEmail(ctx, email)
}

func (r *FakeUserRepository) GetByIdentifier(ctx context.Context, identifier Identifier) (u User, err error) {
	if r.ReturnError {
		return u, fmt.Errorf("could not get user by identifier")
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	for _, u := range r.Users {
		if u.Username == identifier.AsUsername() {
			return u, nil
		}
	}
	for _, u := range r.Users {
		if u.Email == identifier.AsEmail() {
			return u, nil
		}
	}
	return u, ErrUserDoesNotExist
}

func (r *FakeUserRepository) SetPasswordReset(ctx context.Context, id ID, reset PasswordReset) error {
	if r.ReturnError {
		return fmt.Errorf("could not set password reset")
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	for ix, u := range r.Users {
		if u.ID == id {
			r.Users[ix].PasswordReset = c.NewOptional(reset, true)
			return nil
		}
	}
	return ErrUserDoesNotExist
}

func (r *FakeUserRepository) ConsumePasswordReset(ctx context.Context, input ConsumePasswordResetInput) error {
	if r.ReturnError {
		return fmt.Errorf("could not consume password reset")
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	for ix, u := range r.Users {
		if u.ID != input.ID {
			continue
		}
		if !u.PasswordReset.IsPresent || u.PasswordReset.Value.Token != input.Token {
			return ErrInvalidPasswordResetToken
		}
		r.Users[ix].PasswordHash = input.PasswordHash
		r.Users[ix].PasswordReset = c.None[PasswordReset]()
		return nil
	}
	return ErrUserDoesNotExist
}

func (r *FakeUserRepository) SetPassword(ctx context.Context, id ID, password PasswordHash) error {
	if r.ReturnError {
		return fmt.Errorf("could not set password")
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	for ix, u := range r.Users {
		if u.ID == id {
			r.Users[ix].PasswordHash = password
			r.Users[ix].PasswordReset = c.None[PasswordReset]()
			return nil
		}
	}
	return ErrUserDoesNotExist
}

func (r *FakeUserRepository) ClearExpiredPasswordResets(ctx context.Context, now time.Time) (int64, error) {
	if r.ReturnError {
		return 0, fmt.Errorf("could not clear expired password resets")
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	cleared := int64(0)
	for ix, u := range r.Users {
		if u.PasswordReset.IsPresent && u.PasswordReset.Value.IsExpired(now) {
			r.Users[ix].PasswordReset = c.None[PasswordReset]()
			cleared++
		}
	}
	return cleared, nil
}
