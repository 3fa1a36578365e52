// Package grpc - gRPC-поверхность forum-store: health-check (grpc.health.v1),
// reflection и серверные метрики. Прикладные операции доступны по HTTP.
//
// Статусы health:
//
//	""            -> общий статус процесса
//	ServiceName   -> готовность хранилища (документ загружен)
//
// До SetServing(true) оба статуса NOT_SERVING.
package grpc

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/pribylovaa/go-forum-store/internal/interceptors"
)

// ServiceName - имя сервиса в health-check.
const ServiceName = "forum.v1.ForumStore"

// Options - параметры сборки gRPC-сервера.
type Options struct {
	Logger *slog.Logger
	// Timeout - дедлайн unary-вызова, если клиент его не задал.
	Timeout time.Duration
	// Reflection - регистрировать reflection (local/dev).
	Reflection bool
}

// Server - gRPC-сервер с health-статусами.
type Server struct {
	srv    *grpc.Server
	health *health.Server
	log    *slog.Logger
}

// NewServer собирает сервер с цепочкой Logging -> Recover -> Timeout -> prometheus.
func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			interceptors.UnaryLoggingInterceptor(opts.Logger),
			interceptors.Recover(opts.Logger),
			interceptors.WithTimeout(opts.Timeout),
			grpc_prometheus.UnaryServerInterceptor,
		),
		grpc.ChainStreamInterceptor(
			grpc_prometheus.StreamServerInterceptor,
		),
	)

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	healthpb.RegisterHealthServer(srv, hs)

	if opts.Reflection {
		reflection.Register(srv)
	}

	grpc_prometheus.Register(srv)

	return &Server{srv: srv, health: hs, log: opts.Logger}
}

// SetServing переключает оба health-статуса.
func (s *Server) SetServing(serving bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		st = healthpb.HealthCheckResponse_SERVING
	}

	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ServiceName, st)
}

// Serve блокируется до остановки сервера. Штатная остановка ошибкой не считается.
func (s *Server) Serve(lis net.Listener) error {
	s.log.Info("grpc_listen_start", slog.String("addr", lis.Addr().String()))

	if err := s.srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}

	return nil
}

// Shutdown переводит health в NOT_SERVING и ждёт завершения вызовов.
// Если ctx истёк раньше, соединения рвутся принудительно.
func (s *Server) Shutdown(ctx context.Context) {
	s.SetServing(false)

	done := make(chan struct{})
	go func() {
		s.srv.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		s.log.Info("grpc_stopped")
	case <-ctx.Done():
		s.log.Warn("grpc_force_stop")
		s.srv.Stop()
	}
}
