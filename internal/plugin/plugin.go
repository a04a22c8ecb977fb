package plugin

import (
	"errors"

	"github.com/GriffinCanCode/vfs/internal/shell"
	"github.com/GriffinCanCode/vfs/internal/vfs"
)

var (
	ErrUnknownPlugin = errors.New("unknown plugin")
	ErrAlreadyLoaded = errors.New("plugin already loaded")
	ErrNotLoaded     = errors.New("plugin not loaded")
	ErrDuplicate     = errors.New("plugin already in catalog")
)

// Host is what a plugin sees of the running shell.
type Host interface {
	FS() *vfs.Namespace
	RegisterCommand(name string, cmd shell.Command) error
	UnregisterCommand(name string) error
}

// Command is a named shell command contributed by a plugin.
type Command struct {
	Name string
	Run  shell.Command
}

// Plugin is a compiled-in extension. Init runs once on load, before its
// commands are registered; Shutdown runs once on unload.
type Plugin interface {
	Name() string
	Version() string
	Description() string
	Author() string

	Init(host Host) error
	Shutdown() error
	Commands() []Command
}

// Factory creates a fresh plugin instance.
type Factory func() Plugin
