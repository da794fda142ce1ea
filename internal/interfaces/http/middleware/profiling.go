package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/emedico/backend/internal/infrastructure/telemetry"
)

// unprofiledPaths are served without labels. An entry also covers every path below it.
var unprofiledPaths = []string{"/health", "/ready", "/metrics", "/debug"}

// ProfileLabels runs each request under pprof labels so Pyroscope can slice
// samples by method, route pattern and resource. "/api/v1/sessions/:id/cart"
// is labelled resource=sessions. Session and client IDs never become labels.
func ProfileLabels(enabled bool) gin.HandlerFunc {
	if !enabled {
		return passThrough
	}
	return func(c *gin.Context) {
		if unprofiled(c.Request.URL.Path) {
			c.Next()
			return
		}
		telemetry.Label(c.Request.Context(), func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		}, profileLabels(c)...)
	}
}

func unprofiled(path string) bool {
	for _, p := range unprofiledPaths {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

func profileLabels(c *gin.Context) []string {
	route := routePattern(c)
	labels := []string{"method", c.Request.Method, "route", route}
	if res := resourceOf(route); res != "" {
		labels = append(labels, "resource", res)
	}
	return labels
}

// resourceOf returns the first literal segment after the api prefix and
// version: "/api/v1/orders/:id" gives "orders".
func resourceOf(route string) string {
	for seg := range strings.SplitSeq(route, "/") {
		switch {
		case seg == "", seg == "api", apiVersion(seg):
		case seg[0] == ':', seg[0] == '*':
		default:
			return seg
		}
	}
	return ""
}

func apiVersion(seg string) bool {
	if len(seg) < 2 || (seg[0] != 'v' && seg[0] != 'V') {
		return false
	}
	return strings.Trim(seg[1:], "0123456789") == ""
}
