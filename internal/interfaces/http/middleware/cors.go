package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

type CORSConfig struct {
	// Origins may hold "*". Empty allows no cross-origin caller.
	Origins     []string
	Methods     []string
	Headers     []string
	Expose      []string
	Credentials bool
	MaxAge      time.Duration
}

func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		Methods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		Headers: []string{
			"Accept", "Authorization", "Cache-Control", "Content-Type", "Origin",
			HeaderRequestID, HeaderClientID, HeaderIdempotencyKey,
		},
		Expose:      []string{HeaderRequestID, HeaderClientID, "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		Credentials: true,
		MaxAge:      12 * time.Hour,
	}
}

// CORS answers allowed origins with the Access-Control headers. Preflights
// stop here with 204 whether or not the origin is allowed.
func CORS(cfg CORSConfig) gin.HandlerFunc {
	wildcard := slices.Contains(cfg.Origins, "*")
	fixed := map[string]string{
		"Access-Control-Allow-Methods": strings.Join(cfg.Methods, ", "),
		"Access-Control-Allow-Headers": strings.Join(cfg.Headers, ", "),
	}
	if len(cfg.Expose) > 0 {
		fixed["Access-Control-Expose-Headers"] = strings.Join(cfg.Expose, ", ")
	}
	if cfg.MaxAge > 0 {
		fixed["Access-Control-Max-Age"] = strconv.Itoa(int(cfg.MaxAge / time.Second))
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		switch {
		case origin == "":
		case wildcard:
			c.Header("Access-Control-Allow-Origin", "*")
		case slices.Contains(cfg.Origins, origin):
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
			if cfg.Credentials {
				c.Header("Access-Control-Allow-Credentials", "true")
			}
		default:
			origin = ""
		}
		if origin != "" {
			for k, v := range fixed {
				c.Header(k, v)
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
