// Package shell provides the interactive command interpreter for the
// virtual file system.
//
// Lines are split into words by ParseCommand (double quotes group words,
// backslash escapes inside quotes) and dispatched by the first word. Builtin
// commands cover file operations, volumes, codecs, versions, search, tags,
// plugins and the assistant. Plugins add commands with RegisterCommand;
// builtins can never be replaced.
//
// Every command returns an error instead of printing a failure message. Run
// prints errors and keeps reading; Exec hands them to the caller.
//
// Example Usage:
//
//	sh := shell.New(ns, shell.WithLogger(logger))
//	_ = sh.Exec(`write /notes.txt "hello world"`)
//	_ = sh.Run(ctx, os.Stdin)
package shell
