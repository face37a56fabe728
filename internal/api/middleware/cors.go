package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSConfig defines CORS configuration options.
type CORSConfig struct {
	AllowOrigins []string
	AllowMethods []string
	AllowHeaders []string
	MaxAge       time.Duration
}

// DefaultCORSConfig allows the local origins a desktop host embeds the
// reader from. Views are served same-origin and need no CORS at all.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowOrigins: []string{"http://localhost", "http://127.0.0.1", "app://obsidian.md"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Content-Type",
			"Content-Length",
			"Accept",
			"Origin",
			"Cache-Control",
		},
		MaxAge: 12 * time.Hour,
	}
}

// CORS creates a CORS middleware with the provided configuration. Origins
// match with any port.
func CORS(cfg CORSConfig) gin.HandlerFunc {
	allowed := make(map[string]bool, len(cfg.AllowOrigins))
	all := false
	for _, o := range cfg.AllowOrigins {
		if o == "*" {
			all = true
		}
		allowed[o] = true
	}
	conf := cors.Config{
		AllowMethods: cfg.AllowMethods,
		AllowHeaders: cfg.AllowHeaders,
		MaxAge:       cfg.MaxAge,
	}
	if all {
		conf.AllowAllOrigins = true
	} else {
		conf.AllowOriginFunc = func(origin string) bool {
			return allowed[origin] || allowed[stripPort(origin)]
		}
	}
	return cors.New(conf)
}

// stripPort drops a trailing :port from an origin.
func stripPort(origin string) string {
	for i := len(origin) - 1; i >= 0; i-- {
		switch c := origin[i]; {
		case c == ':':
			if i+1 < len(origin) {
				return origin[:i]
			}
			return origin
		case c < '0' || c > '9':
			return origin
		}
	}
	return origin
}
