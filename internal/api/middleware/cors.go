package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// corsPolicy 白名单 CORS 策略；前端需要读取导出文件名与请求 ID
type corsPolicy struct {
	origins map[string]struct{}
	methods string
	headers string
	expose  string
}

func newCORSPolicy(allowOrigins []string) corsPolicy {
	p := corsPolicy{
		origins: make(map[string]struct{}, len(allowOrigins)),
		methods: strings.Join([]string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		}, ", "),
		headers: "Authorization, Content-Type, X-Request-ID",
		expose:  "Content-Disposition, Retry-After, X-Request-ID",
	}
	for _, o := range allowOrigins {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			p.origins[o] = struct{}{}
		}
	}
	return p
}

func (p corsPolicy) allowed(origin string) bool {
	_, ok := p.origins[origin]
	return ok
}

// CORS 跨域中间件
// 仅回显白名单内的 Origin 并允许携带 Cookie（refresh_token）；预检请求直接返回 204
func CORS(allowOrigins []string) gin.HandlerFunc {
	policy := newCORSPolicy(allowOrigins)

	return func(c *gin.Context) {
		c.Writer.Header().Add("Vary", "Origin")

		if origin := c.GetHeader("Origin"); origin != "" && policy.allowed(origin) {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Expose-Headers", policy.expose)
			if c.Request.Method == http.MethodOptions {
				h.Set("Access-Control-Allow-Methods", policy.methods)
				h.Set("Access-Control-Allow-Headers", policy.headers)
				h.Set("Access-Control-Max-Age", "600")
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
