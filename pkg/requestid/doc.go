// Package requestid attaches a correlation ID to every HTTP request.
//
// Middleware reuses a client supplied X-Request-ID header when it is at most
// 128 characters of letters, digits, '-' and '_'. Anything else is replaced
// by a fresh UUID. The ID is stored in the request context and echoed in the
// response header.
//
//	r.Use(requestid.Middleware)
//
//	log := logger.New(logger.WithContextExtractors(requestid.LoggerExtractor()))
//
// Upload records carry the same ID, so a stored file can be traced back to
// the request that produced it.
package requestid
