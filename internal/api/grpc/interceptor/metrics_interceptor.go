package interceptor

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"rental-booking-engine/internal/logger"
	"rental-booking-engine/internal/metrics"
)

// Metrics records the latency and status code of every unary RPC and logs
// failures. It runs outside the auth interceptor so rejected calls count too.
func Metrics(m *metrics.Metrics) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		elapsed := time.Since(start)

		code := status.Code(err)
		m.ObserveRPC(info.FullMethod, code.String(), elapsed)
		if err != nil {
			logger.Warn("rpc failed", "method", info.FullMethod, "code", code.String(), "duration", elapsed, "error", err)
		} else {
			logger.Debug("rpc completed", "method", info.FullMethod, "duration", elapsed)
		}
		return resp, err
	}
}
