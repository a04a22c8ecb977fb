// Command vfsh is the interactive shell for the virtual file system.
//
// The disk image is loaded at startup when present and saved on exit.
// Environment variables configure the defaults; flags override them.
//
// Usage:
//
//	vfsh --image disk.bin --size 20971520
//	vfsh --plugins plugins.yaml --log-level debug
//	echo "ls -l /" | vfsh --autoload=false --autosave=false
//
// Signals:
//   - SIGINT, SIGTERM: save the image and exit
package main
