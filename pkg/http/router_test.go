package xhttp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/valyala/fasthttp"
)

func TestRouterFallthroughBodiesAreJSON(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		ctx := &fasthttp.RequestCtx{}
		NotFoundHandler(ctx)

		assert.Equal(t, StatusNotFound, ctx.Response.StatusCode())
		assert.Equal(t, "application/json; charset=utf-8", string(ctx.Response.Header.ContentType()))
		assert.JSONEq(t, `{"error":"Not Found"}`, string(ctx.Response.Body()))
	})

	t.Run("method not allowed", func(t *testing.T) {
		ctx := &fasthttp.RequestCtx{}
		MethodNotAllowedHandler(ctx)

		assert.Equal(t, StatusMethodNotAllowed, ctx.Response.StatusCode())
		assert.JSONEq(t, `{"error":"Method Not Allowed"}`, string(ctx.Response.Body()))
	})
}
