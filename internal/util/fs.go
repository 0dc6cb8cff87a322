package util

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// MakeTempWorkdir creates a unique directory under base (or $TMPDIR/vidshrink
// when base is empty). The caller owns it and must remove it.
func MakeTempWorkdir(base, prefix string) (string, error) {
	if base == "" {
		base = filepath.Join(os.TempDir(), "vidshrink")
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return "", err
	}
	return os.MkdirTemp(base, prefix+"-")
}

// EnsureDir creates the directory path if it does not exist.
func EnsureDir(path string) error {
	if path == "" {
		return errors.New("empty path")
	}
	return os.MkdirAll(path, 0o755)
}

// RemoveIfExists deletes the file if present.
func RemoveIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// WriteTempFile copies r into a new uniquely named file in dir (pattern as in
// os.CreateTemp). It returns the path and the number of bytes written.
func WriteTempFile(dir, pattern string, r io.Reader) (string, int64, error) {
	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return "", 0, err
	}
	n, copyErr := io.Copy(f, r)
	closeErr := f.Close()
	if copyErr != nil {
		_ = os.Remove(f.Name())
		return "", 0, copyErr
	}
	if closeErr != nil {
		_ = os.Remove(f.Name())
		return "", 0, closeErr
	}
	return f.Name(), n, nil
}

// ReserveTempPath returns a unique path in dir that does not exist on return.
// The name is claimed with CreateTemp and then released so a subprocess can
// create it fresh.
func ReserveTempPath(dir, pattern string) (string, error) {
	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return "", err
	}
	name := f.Name()
	_ = f.Close()
	if err := os.Remove(name); err != nil {
		return "", err
	}
	return name, nil
}

// FileSize returns the size of path, or an error if it is missing or a directory.
func FileSize(path string) (int64, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	if fi.IsDir() {
		return 0, errors.New(path + " is a directory")
	}
	return fi.Size(), nil
}

// CopyFile copies src to dst, replacing dst.
func CopyFile(dst, src string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(out, in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	return n, err
}
