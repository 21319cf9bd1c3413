package interfaces

import (
	"context"
	"net/http"
)

// ApplicationContext carries one request from the router into a controller.
// Ctx is the framework context the responder writes to.
type ApplicationContext[T any] struct {
	Ctx        any
	Context    context.Context
	Body       *T
	Keys       map[string]any
	Header     map[string][]string
	RequestID  string
	UserAgent  string
	DeviceName string
}

func (ctx *ApplicationContext[T]) GetHeader(key string) *string {
	values := http.Header(ctx.Header).Values(key)
	if len(values) == 0 {
		return nil
	}
	return &values[0]
}

// RequestContext falls back to the background context for callers that
// never set one, such as queue handlers.
func (ctx *ApplicationContext[T]) RequestContext() context.Context {
	if ctx.Context == nil {
		return context.Background()
	}
	return ctx.Context
}
