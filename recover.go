package dispatch

import (
	"context"
	"fmt"
	"runtime/debug"
)

// RecoveryError wraps a panic value with the stack trace.
type RecoveryError struct {
	PanicValue any
	StackTrace string
}

func (e *RecoveryError) Error() string {
	return fmt.Sprintf("panic recovered: %v", e.PanicValue)
}

// Recover returns middleware converting a panic further down the chain into a
// *RecoveryError.
func Recover() Middleware {
	return MiddlewareFunc(func(ctx context.Context, r Request, next Handler) (resp Response, err error) {
		defer func() {
			if v := recover(); v != nil {
				resp, err = Response{}, &RecoveryError{
					PanicValue: v,
					StackTrace: string(debug.Stack()),
				}
			}
		}()

		return next.Handle(ctx, r)
	})
}
