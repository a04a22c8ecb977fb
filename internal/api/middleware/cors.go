package middleware

import (
	"slices"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS lets browser front ends on origins use the file API. "*" admits
// every origin. Request IDs are readable cross-origin so a front end can
// quote them in bug reports.
func CORS(origins []string) gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	cfg.AddAllowHeaders("Accept", RequestIDHeader)
	cfg.AddExposeHeaders(RequestIDHeader)
	return cors.New(cfg)
}
