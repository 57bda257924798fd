package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// CORSConfig holds the configuration for the CORS middleware.
type CORSConfig struct {
	// AllowOrigins lists origins allowed to make cross-origin requests.
	// "*" allows any origin and "https://*.example.com" any subdomain of
	// example.com over https. An empty list denies all.
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	ExposeHeaders    []string
	AllowCredentials bool
	// MaxAge is how long browsers may cache a preflight result.
	MaxAge time.Duration
}

// DefaultCORSConfig returns a permissive configuration for development.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", csrfHeaderName, requestIDHeader},
		ExposeHeaders: []string{requestIDHeader},
		MaxAge:        24 * time.Hour,
	}
}

type corsPolicy struct {
	anyOrigin   bool
	exact       map[string]struct{}
	suffixes    []originSuffix
	credentials bool

	methods string
	headers string
	expose  string
	maxAge  string
}

// originSuffix matches "scheme://<anything>.domain".
type originSuffix struct {
	scheme string
	domain string
}

func newCORSPolicy(cfg CORSConfig) corsPolicy {
	p := corsPolicy{
		exact:       make(map[string]struct{}),
		credentials: cfg.AllowCredentials,
		methods:     strings.Join(cfg.AllowMethods, ", "),
		headers:     strings.Join(cfg.AllowHeaders, ", "),
		expose:      strings.Join(cfg.ExposeHeaders, ", "),
	}
	if cfg.MaxAge > 0 {
		p.maxAge = strconv.Itoa(int(cfg.MaxAge / time.Second))
	}
	for _, o := range cfg.AllowOrigins {
		o = strings.ToLower(strings.TrimSpace(o))
		switch {
		case o == "*":
			p.anyOrigin = true
		case strings.Contains(o, "://*."):
			scheme, domain, _ := strings.Cut(o, "://*")
			p.suffixes = append(p.suffixes, originSuffix{scheme: scheme, domain: domain})
		case o != "":
			p.exact[o] = struct{}{}
		}
	}
	return p
}

func (p corsPolicy) allows(origin string) bool {
	if p.anyOrigin {
		return true
	}
	origin = strings.ToLower(origin)
	if _, ok := p.exact[origin]; ok {
		return true
	}
	scheme, host, ok := strings.Cut(origin, "://")
	if !ok {
		return false
	}
	for _, s := range p.suffixes {
		// s.domain starts with "." so the bare domain itself never matches.
		if scheme == s.scheme && len(host) > len(s.domain) && strings.HasSuffix(host, s.domain) {
			return true
		}
	}
	return false
}

// CORS answers cross-origin requests according to cfg. Preflight requests
// from an allowed origin end with 204; requests from other origins pass
// through without CORS headers so the browser blocks them.
func CORS(cfg CORSConfig) gin.HandlerFunc {
	p := newCORSPolicy(cfg)

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" {
			c.Next()
			return
		}

		c.Writer.Header().Add("Vary", "Origin")
		if !p.allows(origin) {
			c.Next()
			return
		}

		h := c.Writer.Header()
		if p.anyOrigin && !p.credentials {
			h.Set("Access-Control-Allow-Origin", "*")
		} else {
			h.Set("Access-Control-Allow-Origin", origin)
		}
		if p.credentials {
			h.Set("Access-Control-Allow-Credentials", "true")
		}

		preflight := c.Request.Method == http.MethodOptions && c.GetHeader("Access-Control-Request-Method") != ""
		if !preflight {
			if p.expose != "" {
				h.Set("Access-Control-Expose-Headers", p.expose)
			}
			c.Next()
			return
		}

		h.Set("Access-Control-Allow-Methods", p.methods)
		h.Set("Access-Control-Allow-Headers", p.headers)
		if p.maxAge != "" {
			h.Set("Access-Control-Max-Age", p.maxAge)
		}
		c.AbortWithStatus(http.StatusNoContent)
	}
}
