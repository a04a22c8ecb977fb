// Package plugin manages compiled-in shell extensions.
//
// Plugins are registered in a catalog by name and loaded on demand, either
// one at a time (loadplugin filestats) or from a YAML or TOML manifest
// (loadplugin plugins.yaml). Loading a plugin initializes it against the
// Host and registers its commands; unloading reverses both. A plugin whose
// commands clash with existing ones is rolled back.
//
// Example Usage:
//
//	mgr := plugin.NewManager(sh, plugin.WithLogger(logger))
//	_ = mgr.Register("filestats", filestats.New)
//	sh.SetPlugins(mgr)
//	_ = mgr.Load("filestats")
//	defer mgr.Close()
package plugin
