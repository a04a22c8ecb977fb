/*
Package monitoring provides Prometheus metrics for the VFS.

# Overview

Metrics are registered on a caller-supplied registry so that several
collectors can coexist in one process (tests create one per case).

# Features

- Engine operation counts and latency by operation and outcome
- Per-volume used and total bytes
- Compression ratios by codec
- Active mounts, loaded plugins and shell commands
- HTTP request metrics (latency, throughput, size)

# Usage

	reg := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(reg)

	ns := vfs.New(10<<20, vfs.WithMetrics(metrics))
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
*/
package monitoring
