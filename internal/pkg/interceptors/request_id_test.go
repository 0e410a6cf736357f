package interceptors

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func TestUnaryServerInterceptorPropagatesIDs(t *testing.T) {
	md := metadata.Pairs("x-request-id", "req-1", "x-idempotency-key", "idem-1")
	ctx := metadata.NewIncomingContext(context.Background(), md)

	var gotReq, gotKey string
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		gotReq = RequestIDFromContext(ctx)
		gotKey = IdempotencyKeyFromContext(ctx)
		return "ok", nil
	}

	resp, err := UnaryServerInterceptor()(ctx, nil, &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}, handler)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp)
	assert.Equal(t, "req-1", gotReq)
	assert.Equal(t, "idem-1", gotKey)
}

func TestUnaryServerInterceptorGeneratesRequestID(t *testing.T) {
	var gotReq string
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		gotReq = RequestIDFromContext(ctx)
		return nil, nil
	}

	_, err := UnaryServerInterceptor()(context.Background(), nil, &grpc.UnaryServerInfo{}, handler)
	require.NoError(t, err)
	assert.Len(t, gotReq, 36)
}

func TestUnaryServerInterceptorRejectsLongIdempotencyKey(t *testing.T) {
	md := metadata.Pairs("x-idempotency-key", strings.Repeat("k", 129))
	ctx := metadata.NewIncomingContext(context.Background(), md)
	called := false
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		called = true
		return nil, nil
	}

	_, err := UnaryServerInterceptor()(ctx, nil, &grpc.UnaryServerInfo{}, handler)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.False(t, called)
}
