package client

import "context"

type ctxKey struct{}

// WithApp attaches the app to a command context.
func WithApp(ctx context.Context, a *App) context.Context {
	return context.WithValue(ctx, ctxKey{}, a)
}

// FromContext pulls the app back out; nil if the root command never
// finished setup.
func FromContext(ctx context.Context) *App {
	a, _ := ctx.Value(ctxKey{}).(*App)
	return a
}
