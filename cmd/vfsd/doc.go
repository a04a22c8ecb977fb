// Command vfsd serves the virtual file system over HTTP.
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Usage:
//
//	# Production mode
//	./vfsd --port 8000 --image disk.bin
//
//	# Development mode (colored logs, debug level)
//	./vfsd --dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown, saving the image
package main
