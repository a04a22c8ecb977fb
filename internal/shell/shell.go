package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/vfs/internal/assistant"
	"github.com/GriffinCanCode/vfs/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/vfs/internal/shared/id"
	"github.com/GriffinCanCode/vfs/internal/vfs"
)

// DefaultImage is used by save and load when no file is named.
const DefaultImage = "virtual_disk.bin"

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrBuiltin        = errors.New("builtin command")
	ErrDuplicate      = errors.New("command already registered")
	ErrNotRegistered  = errors.New("command not registered")
	ErrUsage          = errors.New("usage")
	ErrNoPlugins      = errors.New("plugin support is not enabled")
	ErrSameFile       = errors.New("source and destination are the same file")
	ErrHalted         = errors.New("shell halted")

	errExit = errors.New("exit")
)

// UnknownCommandError reports a command name with no handler. It matches
// ErrUnknownCommand.
type UnknownCommandError struct {
	Name string
}

func (e *UnknownCommandError) Error() string { return "unknown command: " + e.Name }

func (e *UnknownCommandError) Is(target error) bool { return target == ErrUnknownCommand }

// Command runs one shell command. args excludes the command name.
type Command func(sh *Shell, args []string) error

// PluginInfo describes a loaded plugin for help and plugins output.
type PluginInfo struct {
	Name        string
	Version     string
	Author      string
	Description string
	Commands    []string
}

// PluginManager is the plugin lifecycle the shell drives from loadplugin,
// unloadplugin and plugins.
type PluginManager interface {
	Load(name string) error
	LoadManifest(path string) ([]string, error)
	Unload(name string) error
	List() []PluginInfo
}

// Shell is an interactive command interpreter over a Namespace.
type Shell struct {
	fs        *vfs.Namespace
	out       io.Writer
	logger    *zap.Logger
	metrics   *monitoring.Metrics
	assistant *assistant.Assistant
	plugins   PluginManager
	session   id.SessionID
	prompt    string
	image     string

	builtins map[string]Command
	commands map[string]Command

	// mu is held while a command runs.
	mu     sync.Mutex
	halted bool
}

// Option configures a Shell.
type Option func(*Shell)

// WithOutput sends command output to w instead of stdout.
func WithOutput(w io.Writer) Option {
	return func(sh *Shell) { sh.out = w }
}

func WithLogger(logger *zap.Logger) Option {
	return func(sh *Shell) { sh.logger = logger }
}

func WithMetrics(m *monitoring.Metrics) Option {
	return func(sh *Shell) { sh.metrics = m }
}

// WithPrompt prefixes the prompt with name, e.g. "vfs:/docs> ".
func WithPrompt(name string) Option {
	return func(sh *Shell) { sh.prompt = name }
}

// WithImage sets the image used by save and load without arguments.
func WithImage(image string) Option {
	return func(sh *Shell) { sh.image = image }
}

// New creates a shell over fs.
func New(fs *vfs.Namespace, opts ...Option) *Shell {
	sh := &Shell{
		fs:        fs,
		out:       os.Stdout,
		logger:    zap.NewNop(),
		assistant: assistant.New(fs),
		session:   id.NewSessionID(),
		image:     DefaultImage,
		builtins:  builtinTable(),
		commands:  make(map[string]Command),
	}
	for _, opt := range opts {
		opt(sh)
	}
	sh.logger = sh.logger.With(zap.String("session", sh.session.String()))
	return sh
}

// FS returns the namespace the shell operates on.
func (sh *Shell) FS() *vfs.Namespace { return sh.fs }

// Out returns the writer commands print to.
func (sh *Shell) Out() io.Writer { return sh.out }

// Session returns the shell's session ID.
func (sh *Shell) Session() id.SessionID { return sh.session }

// SetPlugins attaches the plugin manager behind loadplugin and friends.
func (sh *Shell) SetPlugins(pm PluginManager) { sh.plugins = pm }

// Printf writes formatted output.
func (sh *Shell) Printf(format string, a ...any) {
	fmt.Fprintf(sh.out, format, a...)
}

// Println writes a line of output.
func (sh *Shell) Println(a ...any) {
	fmt.Fprintln(sh.out, a...)
}

// IsBuiltin reports whether name is a builtin command.
func (sh *Shell) IsBuiltin(name string) bool {
	_, ok := sh.builtins[name]
	return ok
}

// RegisterCommand adds an extension command. Builtins cannot be
// overridden and names cannot be registered twice.
func (sh *Shell) RegisterCommand(name string, cmd Command) error {
	if sh.IsBuiltin(name) {
		return fmt.Errorf("register %s: %w", name, ErrBuiltin)
	}
	if _, ok := sh.commands[name]; ok {
		return fmt.Errorf("register %s: %w", name, ErrDuplicate)
	}
	sh.commands[name] = cmd
	sh.logger.Debug("Command registered", zap.String("command", name))
	return nil
}

// UnregisterCommand removes an extension command.
func (sh *Shell) UnregisterCommand(name string) error {
	if sh.IsBuiltin(name) {
		return fmt.Errorf("unregister %s: %w", name, ErrBuiltin)
	}
	if _, ok := sh.commands[name]; !ok {
		return fmt.Errorf("unregister %s: %w", name, ErrNotRegistered)
	}
	delete(sh.commands, name)
	sh.logger.Debug("Command unregistered", zap.String("command", name))
	return nil
}

// Commands lists extension command names in order.
func (sh *Shell) Commands() []string {
	names := make([]string, 0, len(sh.commands))
	for name := range sh.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Exec parses and runs one command line. Blank lines are a no-op.
func (sh *Shell) Exec(line string) error {
	args := ParseCommand(line)
	if len(args) == 0 {
		return nil
	}
	name := args[0]

	sh.mu.Lock()
	defer sh.mu.Unlock()
	if sh.halted {
		return ErrHalted
	}

	cmd, ok := sh.builtins[name]
	if !ok {
		cmd, ok = sh.commands[name]
	}
	if !ok {
		sh.record("unknown", "error")
		return &UnknownCommandError{Name: name}
	}

	start := time.Now()
	err := cmd(sh, args[1:])
	status := "ok"
	if err != nil && !errors.Is(err, errExit) {
		status = "error"
	}
	sh.record(name, status)
	sh.logger.Debug("Command executed",
		zap.String("command", name),
		zap.String("status", status),
		zap.Duration("duration", time.Since(start)),
	)
	return err
}

// Halt waits for a running command to finish and makes every later Exec
// fail with ErrHalted. Callers may then use the namespace from another
// goroutine.
func (sh *Shell) Halt() {
	sh.mu.Lock()
	sh.halted = true
	sh.mu.Unlock()
}

func (sh *Shell) record(command, status string) {
	if sh.metrics != nil {
		sh.metrics.RecordShellCommand(command, status)
	}
}

// Run reads commands from in until exit, end of input, or ctx is done.
func (sh *Shell) Run(ctx context.Context, in io.Reader) error {
	sh.logger.Info("Shell session started")
	defer sh.logger.Info("Shell session ended")

	sh.Println("Virtual File System Shell")
	sh.Println("Type 'help' for a list of commands")

	scanner := bufio.NewScanner(in)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		sh.Printf("%s", sh.promptText())
		if !scanner.Scan() {
			return scanner.Err()
		}

		err := sh.Exec(scanner.Text())
		var unknown *UnknownCommandError
		switch {
		case err == nil:
		case errors.Is(err, errExit):
			return nil
		case errors.Is(err, ErrHalted):
			return err
		case errors.As(err, &unknown):
			sh.Printf("Unknown command: %s\n", unknown.Name)
			sh.Println("Type 'help' for a list of commands")
		default:
			sh.Println(err)
		}
	}
}

func (sh *Shell) promptText() string {
	if sh.prompt == "" {
		return sh.fs.CurrentPath() + "> "
	}
	return sh.prompt + ":" + sh.fs.CurrentPath() + "> "
}

func usage(text string) error {
	return fmt.Errorf("%w: %s", ErrUsage, text)
}
