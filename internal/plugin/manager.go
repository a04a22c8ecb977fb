package plugin

import (
	"fmt"
	"sort"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/vfs/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/vfs/internal/shell"
)

// Manager loads catalog plugins into a host and tracks their commands.
// It is not safe for concurrent use; the shell drives it from one
// goroutine.
type Manager struct {
	host    Host
	logger  *zap.Logger
	metrics *monitoring.Metrics

	catalog map[string]Factory
	loaded  map[string]Plugin
}

// Option configures a Manager.
type Option func(*Manager)

func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

func WithMetrics(metrics *monitoring.Metrics) Option {
	return func(m *Manager) { m.metrics = metrics }
}

// NewManager creates a manager with an empty catalog.
func NewManager(host Host, opts ...Option) *Manager {
	m := &Manager{
		host:    host,
		logger:  zap.NewNop(),
		catalog: make(map[string]Factory),
		loaded:  make(map[string]Plugin),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Register adds a factory to the catalog under name.
func (m *Manager) Register(name string, factory Factory) error {
	if _, ok := m.catalog[name]; ok {
		return fmt.Errorf("register %s: %w", name, ErrDuplicate)
	}
	m.catalog[name] = factory
	return nil
}

// Available lists catalog names.
func (m *Manager) Available() []string {
	names := make([]string, 0, len(m.catalog))
	for name := range m.catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load instantiates a catalog plugin, initializes it and registers its
// commands. If any command cannot be registered the load is rolled back.
func (m *Manager) Load(name string) (err error) {
	if m.metrics != nil {
		timer := monitoring.NewTimer(m.metrics, "plugin_load")
		defer func() { timer.Stop(err) }()
	}

	factory, ok := m.catalog[name]
	if !ok {
		return fmt.Errorf("load %s: %w", name, ErrUnknownPlugin)
	}
	if _, ok := m.loaded[name]; ok {
		return fmt.Errorf("load %s: %w", name, ErrAlreadyLoaded)
	}

	p := factory()
	if err := p.Init(m.host); err != nil {
		return fmt.Errorf("initialize plugin %s: %w", name, err)
	}

	var registered []string
	for _, cmd := range p.Commands() {
		if err := m.host.RegisterCommand(cmd.Name, cmd.Run); err != nil {
			for _, done := range registered {
				_ = m.host.UnregisterCommand(done)
			}
			if serr := p.Shutdown(); serr != nil {
				m.logger.Warn("Plugin shutdown failed during rollback", zap.String("plugin", name), zap.Error(serr))
			}
			return fmt.Errorf("load %s: %w", name, err)
		}
		registered = append(registered, cmd.Name)
	}

	m.loaded[name] = p
	m.publish()
	m.logger.Info("Loaded plugin",
		zap.String("plugin", name),
		zap.String("version", p.Version()),
		zap.String("author", p.Author()),
		zap.Strings("commands", registered),
	)
	return nil
}

// LoadManifest loads every enabled plugin named in the manifest at path.
// It returns the names that loaded; failures are combined.
func (m *Manager) LoadManifest(path string) ([]string, error) {
	manifest, err := ReadManifest(path)
	if err != nil {
		return nil, err
	}

	var (
		loaded []string
		result *multierror.Error
	)
	for _, name := range manifest.Enabled() {
		if err := m.Load(name); err != nil {
			result = multierror.Append(result, err)
			continue
		}
		loaded = append(loaded, name)
	}
	return loaded, result.ErrorOrNil()
}

// Unload shuts a plugin down and removes its commands. Cleanup always
// completes; a shutdown failure is still reported.
func (m *Manager) Unload(name string) error {
	p, ok := m.loaded[name]
	if !ok {
		return fmt.Errorf("unload %s: %w", name, ErrNotLoaded)
	}

	var result *multierror.Error
	if err := p.Shutdown(); err != nil {
		result = multierror.Append(result, fmt.Errorf("shutdown plugin %s: %w", name, err))
	}
	for _, cmd := range p.Commands() {
		if err := m.host.UnregisterCommand(cmd.Name); err != nil {
			result = multierror.Append(result, err)
		}
	}
	delete(m.loaded, name)
	m.publish()

	m.logger.Info("Unloaded plugin", zap.String("plugin", name))
	return result.ErrorOrNil()
}

// List describes loaded plugins sorted by name.
func (m *Manager) List() []shell.PluginInfo {
	out := make([]shell.PluginInfo, 0, len(m.loaded))
	for _, name := range m.names() {
		p := m.loaded[name]
		info := shell.PluginInfo{
			Name:        name,
			Version:     p.Version(),
			Author:      p.Author(),
			Description: p.Description(),
		}
		for _, cmd := range p.Commands() {
			info.Commands = append(info.Commands, cmd.Name)
		}
		out = append(out, info)
	}
	return out
}

// Close unloads every plugin. All plugins are attempted; failures are
// combined.
func (m *Manager) Close() error {
	var result *multierror.Error
	for _, name := range m.names() {
		if err := m.Unload(name); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

func (m *Manager) names() []string {
	names := make([]string, 0, len(m.loaded))
	for name := range m.loaded {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (m *Manager) publish() {
	if m.metrics != nil {
		m.metrics.SetPluginsLoaded(len(m.loaded))
	}
}
