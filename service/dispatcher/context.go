package dispatcher

import "context"

type dispatchIDKeyT struct{}

var dispatchIDKey dispatchIDKeyT

// WithDispatchID embeds dispatch ID in ctx
func WithDispatchID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, dispatchIDKey, id)
}

// DispatchID returns the ID of the dispatch a task runs for
func DispatchID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(dispatchIDKey).(string)
	return id
}
