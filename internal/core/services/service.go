package services

import "context"

// Service is a single use case. Decorators (authentication, rate limiting, token sending)
// wrap a Service and expose the same interface.
type Service[T any, S any] interface {
	Run(ctx context.Context, input T) (S, error)
}
