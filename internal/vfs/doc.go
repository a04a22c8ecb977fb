// Package vfs implements an in-process hierarchical virtual file system.
//
// This package is organized into specialized modules:
//   - node: files and directories held in an arena, addressed by NodeID
//   - content: the per-file pipeline (compression cache, encryption, versions)
//   - namespace: path resolution, the cursor and basic file operations
//   - mount: nested volumes grafted at mount points
//   - transform: compression, encryption and version pass-throughs
//   - tags: free-form labels keyed by node identity
//   - search: filtered recursive search across volumes
//   - image: the binary disk image format
//
// A Namespace is not safe for concurrent use. Callers that share one across
// goroutines must serialize access.
//
// Paths are slash-separated. Absolute paths start at the root; relative
// paths start at the current directory. Any path that falls inside a mounted
// volume is forwarded to that volume with the path rewritten relative to its
// mount point.
//
// Example Usage:
//
//	ns := vfs.New(10<<20, vfs.WithLogger(logger))
//	_ = ns.Mkdir("/docs")
//	_ = ns.Write("/docs/a.txt", []byte("hello world"))
//	_ = ns.CompressFile("/docs/a.txt", true, "RLE")
//	data, _ := ns.Cat("/docs/a.txt")
package vfs
