// Package constants names the request metadata shared by the HTTP and gRPC edges.
package constants

type contextKey string

const (
	HeaderXRequestId      = "x-request-id"
	HeaderXIdempotencyKey = "x-idempotency-key"
	HeaderAuthorization   = "authorization"

	// MaxIdempotencyKeyLength bounds client keys before they become cache keys.
	MaxIdempotencyKeyLength = 128

	ContextKeyRequestID      contextKey = "storefront.request_id"
	ContextKeyIdempotencyKey contextKey = "storefront.idempotency_key"
	ContextKeyActor          contextKey = "storefront.actor"
)
