package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	corsAllowMethods  = "GET,POST,PUT,DELETE,OPTIONS"
	corsAllowHeaders  = "Content-Type,If-None-Match,X-Request-Id"
	corsExposeHeaders = "ETag,X-Request-Id,Content-Disposition"
	corsMaxAge        = "600"
)

// CORSMiddleware allows credentialed requests from the listed origins only.
// Preflights from other origins are refused outright.
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if o := strings.TrimRight(strings.TrimSpace(origin), "/"); o != "" {
			allowed[o] = struct{}{}
		}
	}

	return func(ctx *gin.Context) {
		origin := ctx.GetHeader("Origin")
		_, ok := allowed[origin]

		if origin != "" {
			ctx.Writer.Header().Add("Vary", "Origin")
		}
		if ok {
			h := ctx.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Expose-Headers", corsExposeHeaders)
		}

		if ctx.Request.Method != http.MethodOptions {
			ctx.Next()
			return
		}

		preflight := origin != "" && ctx.GetHeader("Access-Control-Request-Method") != ""
		if preflight && !ok {
			ctx.AbortWithStatus(http.StatusForbidden)
			return
		}
		if ok {
			h := ctx.Writer.Header()
			h.Set("Access-Control-Allow-Methods", corsAllowMethods)
			h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
			h.Set("Access-Control-Max-Age", corsMaxAge)
		}

		ctx.AbortWithStatus(http.StatusNoContent)
	}
}
