package shell

import (
	"path/filepath"
	"strings"
)

const helpText = `Available commands:
------------------------------------------------------
File Operations:
  pwd                 - Print current working directory
  mkdir <dir>         - Create a new directory
  touch <file>        - Create a new empty file
  cd <path>           - Change current directory
  ls [-l] [path]      - List contents of a directory
  cat <file>          - Display the contents of a file
  write <file> <text> - Write text to a file
  cp <src> <dest>     - Copy a file
  mv <src> <dest>     - Move or rename a file
  rm <path>           - Remove a file or directory

VFS Management:
  save [filename]     - Save the file system to disk
  load [filename]     - Load the file system from disk
  diskinfo            - Display disk usage information

Search Commands:
  find [options]      - Advanced search with multiple filters
  findname <pattern>  - Search by filename pattern
  grep <pattern>      - Search by file content
  findsize <min> <max> - Search by file size
  finddate <after> <before> - Search by modification date
  findtag <tag>       - Search by tag
  glob <pattern>      - Search by glob pattern

Volume Management:
  createvolume <name> <size_mb> - Create a new volume
  mount <diskimg> <mountpoint> - Mount a volume
  unmount <mountpoint> - Unmount a volume
  mounts              - List mounted volumes

Compression Commands:
  compress <file> [alg] - Compress a file
  uncompress <file>   - Uncompress a file
  iscompressed <file> - Check if a file is compressed

Encryption Commands:
  encrypt <file> <key> [alg] - Encrypt a file
  decrypt <file>      - Decrypt a file
  isencrypted <file>  - Check if a file is encrypted
  changekey <file> <newkey> - Change encryption key

Versioning Commands:
  saveversion <file>  - Save current file version
  restoreversion <file> <idx> - Restore file to version index
  listversions <file> - List available versions

Tag Management:
  addtag <file> <tag> - Add a tag to a file
  rmtag <file> <tag>  - Remove a tag from a file
  tags [file]         - List tags for file or all tags

Plugin Management:
  loadplugin <name|manifest> - Load a plugin or a plugin manifest
  unloadplugin <name> - Unload a plugin by name
  plugins             - List all loaded plugins

Assistant:
  ask <query>         - Ask the assistant a question
  assistant <query>   - Same as 'ask'

System Commands:
  help                - Display this help message
  exit                - Exit the shell
------------------------------------------------------`

func cmdHelp(sh *Shell, _ []string) error {
	sh.Println(helpText)
	if sh.plugins == nil {
		return nil
	}
	loaded := sh.plugins.List()
	if len(loaded) == 0 {
		return nil
	}
	sh.Println("Plugin Commands:")
	for _, p := range loaded {
		sh.Printf("  %s Plugin:\n", p.Name)
		for _, c := range p.Commands {
			sh.Printf("    %s\n", c)
		}
	}
	sh.Println(strings.Repeat("-", 54))
	return nil
}

func cmdExit(sh *Shell, _ []string) error {
	sh.Println("Exiting VFS Shell...")
	return errExit
}

func cmdAsk(sh *Shell, args []string) error {
	if len(args) == 0 {
		sh.Println(sh.assistant.Help())
		return nil
	}
	sh.Printf("\n%s\n\n", sh.assistant.Answer(strings.Join(args, " ")))
	return nil
}

func isManifest(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".toml":
		return true
	}
	return false
}

func cmdLoadPlugin(sh *Shell, args []string) error {
	if len(args) < 1 {
		return usage("loadplugin <name|manifest>")
	}
	if sh.plugins == nil {
		return ErrNoPlugins
	}
	if isManifest(args[0]) {
		loaded, err := sh.plugins.LoadManifest(args[0])
		for _, name := range loaded {
			sh.Printf("Loaded plugin: %s\n", name)
		}
		return err
	}
	if err := sh.plugins.Load(args[0]); err != nil {
		return err
	}
	sh.Printf("Loaded plugin: %s\n", args[0])
	return nil
}

func cmdUnloadPlugin(sh *Shell, args []string) error {
	if len(args) < 1 {
		return usage("unloadplugin <name>")
	}
	if sh.plugins == nil {
		return ErrNoPlugins
	}
	if err := sh.plugins.Unload(args[0]); err != nil {
		return err
	}
	sh.Printf("Unloaded plugin: %s\n", args[0])
	return nil
}

func cmdPlugins(sh *Shell, _ []string) error {
	if sh.plugins == nil {
		return ErrNoPlugins
	}
	loaded := sh.plugins.List()
	if len(loaded) == 0 {
		sh.Println("No plugins loaded")
		return nil
	}
	sh.Println("Loaded plugins:")
	for _, p := range loaded {
		sh.Printf("  %s v%s by %s\n", p.Name, p.Version, p.Author)
		sh.Printf("    %s\n", p.Description)
		sh.Printf("    Commands: %s\n", strings.Join(p.Commands, ", "))
	}
	return nil
}
