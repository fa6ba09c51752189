package uow

import (
	"context"
	"fmt"
	"notesauth/internal/core/domain/user"
	"sync"
)

type FakeUnitOfWorkContext struct {
	UserRepository    *user.FakeUserRepository
	WasRollbackCalled bool
	WasCommitCalled   bool
	CommitReturnError bool
	lock              sync.Mutex
}

func NewFakeUnitOfWorkContext(userRepository *user.FakeUserRepository) *FakeUnitOfWorkContext {
	return &FakeUnitOfWorkContext{UserRepository: userRepository}
}

func (c *FakeUnitOfWorkContext) Rollback(ctx context.Context) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.WasRollbackCalled = true
	return nil
}

func (c *FakeUnitOfWorkContext) Commit(ctx context.Context) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.CommitReturnError {
		return fmt.Errorf("could not commit")
	}
	c.WasCommitCalled = true
	return nil
}

func (c *FakeUnitOfWorkContext) Users() user.UserRepository {
	return c.UserRepository
}

// FakeUnitOfWork applies changes immediately, Rollback only records that it was called.
type FakeUnitOfWork struct {
	Context     *FakeUnitOfWorkContext
	ReturnError bool
	beginCount  int
	lock        sync.Mutex
}

func NewFakeUnitOfWork(userRepository *user.FakeUserRepository) *FakeUnitOfWork {
	return &FakeUnitOfWork{Context: NewFakeUnitOfWorkContext(userRepository)}
}

func (u *FakeUnitOfWork) Begin(ctx context.Context) (Context, error) {
	u.lock.Lock()
	u.beginCount++
	u.lock.Unlock()
	if u.ReturnError {
		return nil, fmt.Errorf("could not begin unit of work")
	}
	return u.Context, nil
}

func (u *FakeUnitOfWork) BeginCount() int {
	u.lock.Lock()
	defer u.lock.Unlock()
	return u.beginCount
}
