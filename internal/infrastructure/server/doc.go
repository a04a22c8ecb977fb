// Package server wires configuration, logging, metrics and the namespace
// into the HTTP daemon.
package server
