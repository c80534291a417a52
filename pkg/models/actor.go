package models

import (
	"context"

	"github.com/google/uuid"
)

// Actor carries the identity performing an operation. It is resolved once at
// the request boundary and travels on the context so services can record who
// did what without re-querying the session.
type Actor struct {
	ID       uuid.UUID
	Email    string
	FullName string
	Role     string
}

// HasCapability reports whether the actor's role grants the capability.
func (a Actor) HasCapability(cap Capability) bool {
	return RoleHasCapability(a.Role, cap)
}

// actorKey is the context key for storing the acting identity.
type actorKey struct{}

// WithActor returns a new context with the acting identity attached.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// GetActor retrieves the acting identity from the context.
// Returns the actor and true if present, otherwise a zero value and false.
func GetActor(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	return a, ok
}

// MustGetActor retrieves the acting identity from the context.
// Panics if no actor is present. Use only after middleware validation.
func MustGetActor(ctx context.Context) Actor {
	a, ok := GetActor(ctx)
	if !ok {
		panic("actor required but not present in context")
	}
	return a
}
