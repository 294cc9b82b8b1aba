package ctxutil

import (
	"context"

	"github.com/google/uuid"

	"github.com/skillforge/skillforge-backend/internal/types"
)

type requestDataKey struct{}
type traceDataKey struct{}

// RequestData is the authenticated principal injected into every operation.
// Authorization decisions read the role from here, never from the transport.
type RequestData struct {
	UserID       uuid.UUID
	Role         types.Role
	TokenString  string
	RefreshToken string
}

type TraceData struct {
	TraceID   string
	RequestID string
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if rd, ok := ctx.Value(requestDataKey{}).(*RequestData); ok {
		return rd
	}
	return nil
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(ctx, traceDataKey{}, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	if td, ok := ctx.Value(traceDataKey{}).(*TraceData); ok {
		return td
	}
	return nil
}

// Default returns context.Background() when ctx is nil.
func Default(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
