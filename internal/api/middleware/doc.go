// Package middleware provides the HTTP middleware for the VFS daemon.
//
// Middleware stack includes:
//   - RequestID: Tags every request with a req_* ULID
//   - CORS: Cross-origin resource sharing with configurable origins
//   - RateLimit: Per-IP token bucket rate limiting with idle eviction
//
// Example Usage:
//
//	router.Use(middleware.RequestID(logger))
//	router.Use(middleware.CORS([]string{"*"}))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
package middleware
