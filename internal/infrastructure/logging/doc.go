// Package logging provides structured logging using uber/zap.
//
// Two output modes:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// The engine takes a plain *zap.Logger; pass logger.Logger from here.
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	logger.Info("Volume mounted", zap.String("image", "data.img"))
//	logger.Error("Save failed", zap.Error(err))
package logging
