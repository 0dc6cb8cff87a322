package media

import (
	"fmt"
	"path/filepath"
	"strings"
)

// DefaultInputExt is used when the uploaded name carries no extension.
const DefaultInputExt = ".mp4"

// OutputExt is the container every compressed file is written as.
const OutputExt = ".mp4"

// AcceptedExts lists the upload extensions the encoder is fed.
var AcceptedExts = []string{".mp4", ".mov", ".avi", ".mkv", ".webm", ".flv", ".wmv", ".m4v"}

// InputExt infers the temp-file suffix from the original name. Names without
// an extension fall back to DefaultInputExt; unknown extensions are rejected.
func InputExt(name string) (string, error) {
	ext := strings.ToLower(filepath.Ext(baseName(name)))
	if ext == "" {
		return DefaultInputExt, nil
	}
	for _, a := range AcceptedExts {
		if ext == a {
			return ext, nil
		}
	}
	return "", fmt.Errorf("unsupported file type %q (supported: %s)", ext, strings.Join(AcceptedExts, ", "))
}

// DownloadName is the name offered for the compressed result.
func DownloadName(originalName string) string {
	base := baseName(originalName)
	if base == "" {
		base = "video" + DefaultInputExt
	}
	return "compressed_" + base
}

// baseName strips any client-supplied directory part, including Windows
// separators that filepath.Base leaves alone on unix.
func baseName(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	if name == "." || name == ".." {
		return ""
	}
	return name
}
