package pipeline

import (
	"io"
	"os"
	"path/filepath"

	"vidshrink/internal/model"
	"vidshrink/internal/util"
)

// OpenUpload wraps a local file as an Upload. The caller closes the returned
// closer once Compress has returned.
func OpenUpload(path string) (model.Upload, io.Closer, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Upload{}, nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return model.Upload{}, nil, err
	}
	if fi.IsDir() {
		_ = f.Close()
		return model.Upload{}, nil, &IOError{Op: "open upload", Path: path, Err: os.ErrInvalid}
	}
	return model.Upload{Name: filepath.Base(path), Size: fi.Size(), Body: f}, f, nil
}

// SavedPath is where SaveTo(dir) writes the report's download.
func SavedPath(dir string, rep model.Report) string {
	return filepath.Join(dir, rep.DownloadName)
}

// SaveTo returns a Deliver that copies the output into dir under the
// report's download name, replacing any existing file. A partial copy is
// removed.
func SaveTo(dir string) Deliver {
	return func(rep model.Report, out *os.File) error {
		if err := util.EnsureDir(dir); err != nil {
			return err
		}
		dst := SavedPath(dir, rep)
		if _, err := util.CopyFile(dst, out.Name()); err != nil {
			_ = util.RemoveIfExists(dst)
			return err
		}
		return nil
	}
}
