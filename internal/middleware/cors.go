package middleware

import "github.com/valyala/fasthttp"

const (
	allowOrigin  = "*"
	allowHeaders = "authorization, x-client-info, apikey, content-type"
)

// CORS stamps the cross-origin headers on every response and answers
// preflight requests with "ok" before any routing or validation. The headers
// are stamped again once next returns, since ctx.Error resets the response.
func CORS(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		stampCORS(ctx)

		if ctx.IsOptions() {
			ctx.SetStatusCode(fasthttp.StatusOK)
			ctx.SetContentType("text/plain; charset=utf-8")
			ctx.SetBodyString("ok")
			return
		}
		next(ctx)
		stampCORS(ctx)
	}
}

func stampCORS(ctx *fasthttp.RequestCtx) {
	ctx.Response.Header.Set("Access-Control-Allow-Origin", allowOrigin)
	ctx.Response.Header.Set("Access-Control-Allow-Headers", allowHeaders)
}
