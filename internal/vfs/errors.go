package vfs

import (
	"errors"
	"fmt"
)

// Sentinel errors. Operations wrap these with the failing path; match them
// with errors.Is.
var (
	ErrNotFound         = errors.New("no such file or directory")
	ErrExists           = errors.New("file exists")
	ErrNotDir           = errors.New("not a directory")
	ErrIsDir            = errors.New("is a directory")
	ErrInvalidPath      = errors.New("invalid path")
	ErrMountBoundary    = errors.New("path crosses a mount point")
	ErrBusy             = errors.New("mount point busy")
	ErrNotMounted       = errors.New("not a mount point")
	ErrNoSpace          = errors.New("no space left on volume")
	ErrVersionRange     = errors.New("version index out of range")
	ErrUnknownAlgorithm = errors.New("unknown algorithm")
	ErrInvalidKey       = errors.New("invalid encryption key")
	ErrNotEncrypted     = errors.New("file is not encrypted")
	ErrInvalidTag       = errors.New("invalid tag")
	ErrInvalidPattern   = errors.New("invalid search pattern")
	ErrCorruptImage     = errors.New("corrupt disk image")
)

func pathError(op, path string, err error) error {
	return fmt.Errorf("%s %s: %w", op, path, err)
}
