package api

import (
	"net"
	"net/http"
	"regexp"
	"strings"
)

// appOriginPattern matches the hosted frontend origins: one org subdomain
// under app.afmlabs.co (or .local for development), optionally with a port.
var appOriginPattern = regexp.MustCompile(`^https?://[a-z0-9]([a-z0-9-]*[a-z0-9])?\.app\.afmlabs\.(co|local)(:\d+)?$`)

var localOriginPattern = regexp.MustCompile(`^http://(localhost|127\.0\.0\.1)(:\d+)?$`)

func isAllowedOrigin(origin string) bool {
	return localOriginPattern.MatchString(origin) || appOriginPattern.MatchString(origin)
}

// CORSAllowlist admits the web frontend's origins. Disallowed origins still
// get their simple requests served without CORS headers; disallowed
// preflights are rejected outright.
func CORSAllowlist() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			allowed := origin != "" && isAllowedOrigin(origin)

			if allowed {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
				w.Header().Set("Access-Control-Allow-Methods", "GET, HEAD, POST, PUT, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Range, X-Request-ID")
				w.Header().Set("Access-Control-Expose-Headers", "Content-Type, Content-Length, Content-Range, Accept-Ranges, Content-Disposition, X-Request-ID")
			}

			if r.Method == http.MethodOptions {
				if !allowed {
					w.WriteHeader(http.StatusForbidden)
					return
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// LoopbackGuard rejects requests that did not originate on this machine. The
// agent binds to 127.0.0.1, so anything else means a proxy is in front of it.
func LoopbackGuard() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isLoopbackRemoteAddr(r.RemoteAddr) {
				WriteError(w, http.StatusForbidden, "local requests only", "FORBIDDEN")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func isLoopbackRemoteAddr(addr string) bool {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = strings.Trim(addr, "[]")
	} else {
		host = strings.Trim(host, "[]")
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
