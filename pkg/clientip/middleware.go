package clientip

import "net/http"

// Middleware stores the client IP of every request in its context.
func Middleware(next http.Handler) http.Handler {
	return MiddlewareWithHeaders(DefaultHeaders...)(next)
}

// MiddlewareWithHeaders is Middleware with a custom trusted header list.
// Pass no headers to rely on RemoteAddr only.
func MiddlewareWithHeaders(headers ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := GetIPFrom(r, headers...)
			next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), ip)))
		})
	}
}
