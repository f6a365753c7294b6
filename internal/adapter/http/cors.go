package httpadapter

import (
	"context"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

const corsAllowMethods = "GET,POST,OPTIONS"
const corsAllowHeaders = "Content-Type,X-Request-ID"
const corsExposeHeaders = "X-Identity,X-Request-ID"

// allowedOrigin picks the Access-Control-Allow-Origin value for origin. An
// empty list or a "*" entry allows every origin.
func allowedOrigin(origins []string, origin string) (string, bool) {
	if len(origins) == 0 {
		return "*", true
	}
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o == "*" {
			return "*", true
		}
		if origin != "" && strings.EqualFold(o, origin) {
			return origin, true
		}
	}
	return "", false
}

func applyCORSHeaders(ctx *app.RequestContext, origins []string, identity string) {
	allow, ok := allowedOrigin(origins, string(ctx.GetHeader("Origin")))
	if !ok {
		return
	}
	ctx.Response.Header.Set("Access-Control-Allow-Origin", allow)
	if allow != "*" {
		ctx.Response.Header.Set("Vary", "Origin")
	}
	ctx.Response.Header.Set("Access-Control-Allow-Methods", corsAllowMethods)
	ctx.Response.Header.Set("Access-Control-Allow-Headers", corsAllowHeaders)
	ctx.Response.Header.Set("Access-Control-Expose-Headers", corsExposeHeaders)
	ctx.Response.Header.Set("Access-Control-Max-Age", "600")
	if identity != "" {
		ctx.Response.Header.Set("X-Identity", identity)
	}
}

func corsMiddleware(origins []string, identity string) app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		applyCORSHeaders(ctx, origins, identity)
		if string(ctx.Method()) == consts.MethodOptions {
			ctx.AbortWithStatus(consts.StatusNoContent)
			return
		}
		ctx.Next(c)
	}
}
