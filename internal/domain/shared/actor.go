package shared

import "context"

// Actor identifies who performed an operation. It is optional everywhere:
// operations never require one.
type Actor struct {
	UserID   string
	Username string
}

type actorKey struct{}

// WithActor stores the actor in the context
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the actor, or the zero Actor when anonymous
func ActorFromContext(ctx context.Context) Actor {
	if ctx == nil {
		return Actor{}
	}
	if a, ok := ctx.Value(actorKey{}).(Actor); ok {
		return a
	}
	return Actor{}
}
