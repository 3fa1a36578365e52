package interceptors

import (
	"context"
	"time"

	"google.golang.org/grpc"

	"github.com/pribylovaa/go-forum-store/internal/pkg/deadline"
)

// WithTimeout - бюджет timeouts.service на вызов, по тем же правилам, что и
// middleware.Timeout у HTTP (см. deadline.Ensure).
func WithTimeout(budget time.Duration) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		ctx, cancel := deadline.Ensure(ctx, budget)
		defer cancel()

		return handler(ctx, req)
	}
}
