// Package clientip resolves the address of the client behind an HTTP request.
//
// Proxy headers are consulted in order (CF-Connecting-IP, DO-Connecting-IP,
// X-Forwarded-For, X-Real-IP) before RemoteAddr. Only deploy with the
// default header list behind a proxy that overwrites these headers; use
// MiddlewareWithHeaders to narrow it otherwise.
//
// The resolved address is stored in the request context by Middleware, can
// be attached to log records with LoggerExtractor, and is written to upload
// records by the records package.
//
//	r := chi.NewRouter()
//	r.Use(clientip.Middleware)
//
//	log := logger.New(logger.WithContextExtractors(clientip.LoggerExtractor()))
package clientip
