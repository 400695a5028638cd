package signage

import "context"

type adminKey struct{}

// WithAdmin returns a context carrying the authenticated admin id. Admin
// scoped queries read it from here rather than from any global.
func WithAdmin(ctx context.Context, adminID int) context.Context {
	return context.WithValue(ctx, adminKey{}, adminID)
}

// AdminFromContext returns the admin id set by WithAdmin.
func AdminFromContext(ctx context.Context) (int, bool) {
	id, ok := ctx.Value(adminKey{}).(int)
	return id, ok && id > 0
}
