package interceptors

import (
	"context"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/jcmexdev/storefront/internal/pkg/interceptors/constants"
)

// UnaryServerInterceptor copies x-request-id and x-idempotency-key from the
// incoming metadata into the context. A missing request id is generated.
func UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		requestID := firstValue(ctx, constants.HeaderXRequestId)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		key := firstValue(ctx, constants.HeaderXIdempotencyKey)
		if len(key) > constants.MaxIdempotencyKeyLength {
			return nil, status.Errorf(codes.InvalidArgument, "%s longer than %d bytes", constants.HeaderXIdempotencyKey, constants.MaxIdempotencyKeyLength)
		}
		ctx = WithRequestID(ctx, requestID)
		ctx = WithIdempotencyKey(ctx, key)

		return handler(ctx, req)
	}
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, constants.ContextKeyRequestID, id)
}

func WithIdempotencyKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, constants.ContextKeyIdempotencyKey, key)
}

// RequestIDFromContext returns the request id stored by the HTTP middleware
// or the gRPC interceptor, or "" when there is none.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(constants.ContextKeyRequestID).(string)
	return id
}

func IdempotencyKeyFromContext(ctx context.Context) string {
	key, _ := ctx.Value(constants.ContextKeyIdempotencyKey).(string)
	return key
}

func firstValue(ctx context.Context, key string) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if vals := md.Get(key); len(vals) > 0 {
		return vals[0]
	}
	return ""
}
