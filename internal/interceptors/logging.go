package interceptors

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"github.com/pribylovaa/go-forum-store/internal/pkg/log"
	"github.com/pribylovaa/go-forum-store/internal/pkg/requestid"
)

// UnaryLoggingInterceptor - gRPC-двойник middleware.RequestID + middleware.Logging.
//
// id запроса берётся из metadata x-request-id (или выдаётся новый), кладётся в контекст
// вместе с логгером и возвращается клиенту в заголовках ответа. На каждый вызов пишется
// одна запись msg="grpc" с request_id, method, peer, code, dur.
func UnaryLoggingInterceptor(base *slog.Logger) grpc.UnaryServerInterceptor {
	if base == nil {
		base = slog.Default()
	}

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()

		rid := requestid.Resolve(incomingRequestID(ctx))
		// Вне настоящего gRPC-стрима (юнит-тесты) SetHeader вернёт ошибку - это не важно.
		_ = grpc.SetHeader(ctx, metadata.Pairs(requestid.MetadataKey, rid))

		l := base.With(
			slog.String("request_id", rid),
			slog.String("method", info.FullMethod),
			slog.String("peer", peerAddr(ctx)),
		)
		ctx = log.Into(requestid.Into(ctx, rid), l)

		resp, err := handler(ctx, req)

		level := slog.LevelInfo
		if code := status.Code(err); code == codes.Internal || code == codes.Unknown {
			level = slog.LevelError
		}

		l.LogAttrs(ctx, level, "grpc",
			slog.String("code", status.Code(err).String()),
			slog.Duration("dur", time.Since(start)),
		)

		return resp, err
	}
}

func incomingRequestID(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}

	if v := md.Get(requestid.MetadataKey); len(v) > 0 {
		return v[0]
	}

	return ""
}

// peerAddr - IP:port клиента или "-".
func peerAddr(ctx context.Context) string {
	if p, ok := peer.FromContext(ctx); ok && p != nil && p.Addr != nil {
		return p.Addr.String()
	}

	return "-"
}
