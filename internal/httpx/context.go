package httpx

import (
	"context"
	"net/http"

	"booklib/internal/policy"
)

type contextKey string

const (
	actorKey     contextKey = "actor"
	requestIDKey contextKey = "requestID"
)

// ActorFrom retrieves the authenticated actor from the request context.
// A zero actor means the request was anonymous.
func ActorFrom(r *http.Request) policy.Actor {
	if a, ok := r.Context().Value(actorKey).(policy.Actor); ok {
		return a
	}
	return policy.Actor{}
}

// ContextWithActor returns a new context carrying the actor.
func ContextWithActor(ctx context.Context, a policy.Actor) context.Context {
	return context.WithValue(ctx, actorKey, a)
}

// RequestIDFrom retrieves the request id from the request context.
func RequestIDFrom(r *http.Request) string {
	if v, ok := r.Context().Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// ContextWithRequestID returns a new context carrying the request id.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}
