package shell

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/GriffinCanCode/vfs/internal/vfs"
)

func cmdCompress(sh *Shell, args []string) error {
	if len(args) < 1 {
		return usage(fmt.Sprintf("compress <file_path> [%s]", strings.Join(sh.fs.ListCompressionAlgorithms(), "|")))
	}
	algorithm := ""
	if len(args) > 1 {
		algorithm = args[1]
	}
	if err := sh.fs.CompressFile(args[0], true, algorithm); err != nil {
		return err
	}
	sh.Printf("File compressed: %s (%s)\n", args[0], sh.fs.FileCompressionAlgorithm(args[0]))
	return nil
}

func cmdUncompress(sh *Shell, args []string) error {
	if len(args) < 1 {
		return usage("uncompress <file_path>")
	}
	if err := sh.fs.CompressFile(args[0], false, ""); err != nil {
		return err
	}
	sh.Printf("File uncompressed: %s\n", args[0])
	return nil
}

func cmdIsCompressed(sh *Shell, args []string) error {
	if len(args) < 1 {
		return usage("iscompressed <file_path>")
	}
	if err := exists("iscompressed", sh, args[0]); err != nil {
		return err
	}
	if sh.fs.IsFileCompressed(args[0]) {
		sh.Printf("File is compressed: %s (%s)\n", args[0], sh.fs.FileCompressionAlgorithm(args[0]))
	} else {
		sh.Printf("File is not compressed: %s\n", args[0])
	}
	return nil
}

func cmdEncrypt(sh *Shell, args []string) error {
	if len(args) < 2 {
		return usage(fmt.Sprintf("encrypt <file_path> <encryption_key> [%s]", strings.Join(sh.fs.ListEncryptionAlgorithms(), "|")))
	}
	algorithm := ""
	if len(args) > 2 {
		algorithm = args[2]
	}
	if err := sh.fs.EncryptFile(args[0], args[1], algorithm); err != nil {
		return err
	}
	sh.Printf("File encrypted: %s (%s)\n", args[0], sh.fs.FileEncryptionAlgorithm(args[0]))
	return nil
}

func cmdDecrypt(sh *Shell, args []string) error {
	if len(args) < 1 {
		return usage("decrypt <file_path>")
	}
	if err := sh.fs.DecryptFile(args[0]); err != nil {
		return err
	}
	sh.Printf("File decrypted: %s\n", args[0])
	return nil
}

func cmdIsEncrypted(sh *Shell, args []string) error {
	if len(args) < 1 {
		return usage("isencrypted <file_path>")
	}
	if err := exists("isencrypted", sh, args[0]); err != nil {
		return err
	}
	if sh.fs.IsFileEncrypted(args[0]) {
		sh.Printf("File is encrypted: %s (%s)\n", args[0], sh.fs.FileEncryptionAlgorithm(args[0]))
	} else {
		sh.Printf("File is not encrypted: %s\n", args[0])
	}
	return nil
}

func cmdChangeKey(sh *Shell, args []string) error {
	if len(args) < 2 {
		return usage("changekey <file_path> <new_key>")
	}
	if err := sh.fs.ChangeEncryptionKey(args[0], args[1]); err != nil {
		return err
	}
	sh.Printf("Encryption key changed for file: %s\n", args[0])
	return nil
}

func cmdSaveVersion(sh *Shell, args []string) error {
	if len(args) < 1 {
		return usage("saveversion <file_path>")
	}
	if err := sh.fs.SaveFileVersion(args[0]); err != nil {
		return err
	}
	sh.Printf("Version saved for file: %s\n", args[0])
	return nil
}

func cmdRestoreVersion(sh *Shell, args []string) error {
	if len(args) < 2 {
		return usage("restoreversion <file_path> <version_index>")
	}
	index, err := strconv.Atoi(args[1])
	if err != nil || index < 0 {
		return fmt.Errorf("restoreversion: invalid version index %q: must be a non-negative integer", args[1])
	}
	if err := sh.fs.RestoreFileVersion(args[0], index); err != nil {
		return err
	}
	sh.Printf("File restored to version %d: %s\n", index, args[0])
	return nil
}

func cmdListVersions(sh *Shell, args []string) error {
	if len(args) < 1 {
		return usage("listversions <file_path>")
	}
	if err := exists("listversions", sh, args[0]); err != nil {
		return err
	}
	stamps := sh.fs.FileVersionTimestamps(args[0])
	if len(stamps) == 0 {
		sh.Printf("No versions available for file: %s\n", args[0])
		return nil
	}
	sh.Printf("Versions for file %s:\n", args[0])
	for i, ts := range stamps {
		sh.Printf("  [%d] %s\n", i, ts.Format(timeLayout))
	}
	return nil
}

func exists(op string, sh *Shell, p string) error {
	if _, ok := sh.fs.ResolvePath(p); !ok {
		return fmt.Errorf("%s %s: %w", op, p, vfs.ErrNotFound)
	}
	return nil
}
