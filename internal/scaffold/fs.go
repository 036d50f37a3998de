package scaffold

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/google/uuid"
)

const tempPrefix = ".assembly-"

const (
	dirPerm  fs.FileMode = 0o755
	filePerm fs.FileMode = 0o644
)

// OpenDir returns a filesystem rooted at dir, creating dir unless dryRun.
// A missing dir in dry-run mode yields a filesystem where nothing exists.
func OpenDir(dir string, dryRun bool) (billy.Filesystem, error) {
	info, err := os.Stat(dir)
	switch {
	case err == nil && !info.IsDir():
		return nil, fmt.Errorf("%s is not a directory", dir)
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("stat %s: %w", dir, err)
	case err != nil && !dryRun:
		if err := os.MkdirAll(dir, dirPerm); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return osfs.New(dir), nil
}

func readFile(fsys billy.Filesystem, name string) ([]byte, error) {
	return util.ReadFile(fsys, name)
}

// writeAtomic writes data to a temp file next to name and renames it into
// place. Without force an existing target is left alone and fs.ErrExist is
// returned.
func writeAtomic(fsys billy.Filesystem, name string, mode fs.FileMode, data []byte, force bool) (err error) {
	tmp := fsys.Join(parentDir(name), tempPrefix+uuid.NewString())
	f, err := fsys.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, mode)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
		if err != nil {
			_ = fsys.Remove(tmp)
		}
	}()
	if _, err = f.Write(data); err != nil {
		return err
	}
	if s, ok := f.(interface{ Sync() error }); ok {
		if err = s.Sync(); err != nil {
			return err
		}
	}
	if err = f.Close(); err != nil {
		return err
	}
	if ch, ok := fsys.(billy.Change); ok {
		if err = ch.Chmod(tmp, mode); err != nil {
			return err
		}
	}
	if !force {
		if _, err = fsys.Stat(name); err == nil {
			return fs.ErrExist
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	if err = fsys.Rename(tmp, name); err == nil {
		return nil
	}
	if !force || !errors.Is(err, fs.ErrExist) {
		return err
	}
	if err = fsys.Remove(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return fsys.Rename(tmp, name)
}

func parentDir(name string) string {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '/' {
			return name[:i]
		}
	}
	return ""
}
