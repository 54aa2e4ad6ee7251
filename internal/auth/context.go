package auth

import "context"

type ctxKey string

const userKey ctxKey = "userClaims"

// Claims is the authenticated-session identity carried on the request
// context. Handlers must receive it through the context populated by the
// session middleware, never through any ambient lookup.
type Claims struct {
	Subject string // user id
	Email   string
	JWTID   string
}

func WithClaims(ctx context.Context, c Claims) context.Context {
	return context.WithValue(ctx, userKey, c)
}

func FromContext(ctx context.Context) Claims {
	if v, ok := ctx.Value(userKey).(Claims); ok {
		return v
	}
	return Claims{}
}

func Subject(ctx context.Context) string {
	return FromContext(ctx).Subject
}

func Email(ctx context.Context) string {
	return FromContext(ctx).Email
}
