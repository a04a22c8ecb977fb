package shell

import (
	"fmt"
	"path"
	"strings"

	"github.com/dustin/go-humanize"
)

const timeLayout = "2006-01-02 15:04:05"

func builtinTable() map[string]Command {
	return map[string]Command{
		"pwd":   cmdPwd,
		"mkdir": cmdMkdir,
		"touch": cmdTouch,
		"cd":    cmdCd,
		"ls":    cmdLs,
		"cat":   cmdCat,
		"write": cmdWrite,
		"cp":    cmdCp,
		"mv":    cmdMv,
		"rm":    cmdRm,

		"save":     cmdSave,
		"load":     cmdLoad,
		"diskinfo": cmdDiskInfo,

		"createvolume": cmdCreateVolume,
		"mount":        cmdMount,
		"unmount":      cmdUnmount,
		"mounts":       cmdMounts,

		"compress":     cmdCompress,
		"uncompress":   cmdUncompress,
		"iscompressed": cmdIsCompressed,
		"encrypt":      cmdEncrypt,
		"decrypt":      cmdDecrypt,
		"isencrypted":  cmdIsEncrypted,
		"changekey":    cmdChangeKey,

		"saveversion":    cmdSaveVersion,
		"restoreversion": cmdRestoreVersion,
		"listversions":   cmdListVersions,

		"find":     cmdFind,
		"findname": cmdFindName,
		"grep":     cmdGrep,
		"findsize": cmdFindSize,
		"finddate": cmdFindDate,
		"findtag":  cmdFindTag,
		"glob":     cmdGlob,

		"addtag": cmdAddTag,
		"rmtag":  cmdRemoveTag,
		"tags":   cmdTags,

		"loadplugin":   cmdLoadPlugin,
		"unloadplugin": cmdUnloadPlugin,
		"plugins":      cmdPlugins,

		"ask":       cmdAsk,
		"assistant": cmdAsk,
		"help":      cmdHelp,
		"exit":      cmdExit,
		"quit":      cmdExit,
	}
}

func cmdPwd(sh *Shell, _ []string) error {
	sh.Println(sh.fs.CurrentPath())
	return nil
}

func cmdMkdir(sh *Shell, args []string) error {
	if len(args) < 1 {
		return usage("mkdir <directory_name>")
	}
	if err := sh.fs.Mkdir(args[0]); err != nil {
		return err
	}
	sh.Printf("Directory created: %s\n", args[0])
	return nil
}

func cmdTouch(sh *Shell, args []string) error {
	if len(args) < 1 {
		return usage("touch <file_name>")
	}
	if err := sh.fs.Touch(args[0]); err != nil {
		return err
	}
	sh.Printf("File created: %s\n", args[0])
	return nil
}

func cmdCd(sh *Shell, args []string) error {
	if len(args) < 1 {
		return usage("cd <directory_path>")
	}
	return sh.fs.Cd(args[0])
}

func cmdLs(sh *Shell, args []string) error {
	dir, long := ".", false
	for _, arg := range args {
		if arg == "-l" {
			long = true
		} else {
			dir = arg
		}
	}

	entries, err := sh.fs.Ls(dir)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		sh.Println("Directory is empty")
		return nil
	}

	if !long {
		sh.Println("Contents of directory:")
		for _, entry := range entries {
			sh.Printf("  %s\n", entry)
		}
		return nil
	}

	sh.Println("Detailed contents of directory:")
	sh.Printf("%-10s%-20s%-15s%s\n", "Size", "Modified", "Attributes", "Name")
	sh.Println(strings.Repeat("-", 60))
	for _, entry := range entries {
		if strings.HasSuffix(entry, "@") {
			sh.Printf("%-10s%-20s%-15s%s\n", "<mount>", "-", "mount-point", entry)
			continue
		}
		n, ok := sh.fs.ResolvePath(join(dir, strings.TrimSuffix(entry, "/")))
		if !ok {
			continue
		}

		size := "<DIR>"
		attrs := "drw----"
		if !n.IsDir() {
			size = humanize.IBytes(uint64(n.Size()))
			attrs = "-rw-" + flag(n.IsCompressed(), 'c') + flag(n.IsEncrypted(), 'e') + flag(n.VersionCount() > 0, 'v')
		}
		sh.Printf("%-10s%-20s%-15s%s\n", size, n.ModTime().Format(timeLayout), attrs, entry)
	}
	return nil
}

func flag(set bool, c byte) string {
	if set {
		return string(c)
	}
	return "-"
}

func cmdCat(sh *Shell, args []string) error {
	if len(args) < 1 {
		return usage("cat <file_path>")
	}
	data, err := sh.fs.Cat(args[0])
	if err != nil {
		return err
	}
	if len(data) == 0 {
		sh.Println("File is empty")
		return nil
	}
	sh.Println(string(data))
	return nil
}

func cmdWrite(sh *Shell, args []string) error {
	if len(args) < 2 {
		return usage("write <file_path> <content>")
	}
	if err := sh.fs.Write(args[0], []byte(strings.Join(args[1:], " "))); err != nil {
		return err
	}
	sh.Printf("Successfully wrote to %s\n", args[0])
	return nil
}

func cmdRm(sh *Shell, args []string) error {
	if len(args) < 1 {
		return usage("rm <path>")
	}
	if err := sh.fs.Remove(args[0]); err != nil {
		return err
	}
	sh.Printf("Successfully removed %s\n", args[0])
	return nil
}

// copyTarget reads src and picks the destination path. A destination that
// is an existing directory receives the source's base name.
func copyTarget(sh *Shell, op, src, dst string) ([]byte, string, error) {
	n, ok := sh.fs.ResolvePath(src)
	if !ok {
		return nil, "", fmt.Errorf("%s %s: source not found", op, src)
	}
	if n.IsDir() {
		return nil, "", fmt.Errorf("%s %s: directories are not supported", op, src)
	}
	if d, ok := sh.fs.ResolvePath(dst); ok && d.IsDir() {
		dst = strings.TrimSuffix(dst, "/") + "/" + path.Base(src)
	}
	if d, ok := sh.fs.ResolvePath(dst); ok && d == n {
		return nil, "", fmt.Errorf("%s %s: %w", op, src, ErrSameFile)
	}
	data, err := sh.fs.Cat(src)
	if err != nil {
		return nil, "", err
	}
	return data, dst, nil
}

func cmdCp(sh *Shell, args []string) error {
	if len(args) < 2 {
		return usage("cp <source> <destination>")
	}
	data, dst, err := copyTarget(sh, "cp", args[0], args[1])
	if err != nil {
		return err
	}
	if err := sh.fs.Write(dst, data); err != nil {
		return err
	}
	sh.Printf("File copied from %s to %s\n", args[0], dst)
	return nil
}

func cmdMv(sh *Shell, args []string) error {
	if len(args) < 2 {
		return usage("mv <source> <destination>")
	}
	data, dst, err := copyTarget(sh, "mv", args[0], args[1])
	if err != nil {
		return err
	}
	if err := sh.fs.Write(dst, data); err != nil {
		return err
	}
	if err := sh.fs.Remove(args[0]); err != nil {
		return fmt.Errorf("copied to %s but could not remove source: %w", dst, err)
	}
	sh.Printf("File moved from %s to %s\n", args[0], dst)
	return nil
}

// join builds a child path of dir the way the user typed dir.
func join(dir, name string) string {
	if dir == "." || dir == "./" || dir == "" {
		return name
	}
	return path.Join(dir, name)
}
