package audit

import "context"

// Sources of value changes.
const (
	SourceAPI  = "api"
	SourceMQTT = "mqtt"
)

// Actor identifies who initiated a change.
type Actor struct {
	Source string
	// Subject is the token subject for API calls or the topic for MQTT.
	Subject string
}

type actorKey struct{}

// WithActor returns a copy of ctx carrying a.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFrom returns the Actor stored in ctx, if any.
func ActorFrom(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	return a, ok
}
