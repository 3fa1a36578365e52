// Package interceptors - серверные gRPC-интерсепторы forum-store.
package interceptors

import (
	"context"
	"log/slog"
	"runtime/debug"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/pribylovaa/go-forum-store/internal/pkg/log"
	"github.com/pribylovaa/go-forum-store/internal/pkg/requestid"
)

// Recover превращает панику обработчика в codes.Internal без деталей для клиента.
// Ставится после UnaryLoggingInterceptor: тогда запись о панике идёт через логгер
// запроса с его request_id, а итоговая запись "grpc" видит код Internal.
// Без логгера в контексте используется base.
func Recover(base *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			l := log.From(ctx)
			if requestid.From(ctx) == "" && base != nil {
				l = base.With(slog.String("method", info.FullMethod))
			}

			l.Error("panic_recovered",
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)

			resp, err = nil, status.Error(codes.Internal, "internal server error")
		}()

		return handler(ctx, req)
	}
}
