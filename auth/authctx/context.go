// Package authctx carries the authenticated Principal through a request
// context.
package authctx

import (
	"context"

	"github.com/kbukum/voxscribe/auth"
)

type contextKey struct{}

// Set stores p in ctx.
func Set(ctx context.Context, p *auth.Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// Get returns the Principal stored in ctx, if any.
func Get(ctx context.Context) (*auth.Principal, bool) {
	p, ok := ctx.Value(contextKey{}).(*auth.Principal)
	return p, ok && p != nil
}

// Subject returns the principal's subject, or "anonymous" when the request
// was not authenticated.
func Subject(ctx context.Context) string {
	if p, ok := Get(ctx); ok {
		return p.Subject
	}
	return "anonymous"
}
