package deps

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"vidshrink/internal/util"
)

// DefaultEncoder is the binary looked up on PATH when none is configured.
const DefaultEncoder = "ffmpeg"

// UnavailableError reports that the encoder could not be located or started.
// Searched lists every location that was checked, in order.
type UnavailableError struct {
	Name     string
	Searched []string
	Err      error
}

func (e *UnavailableError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "encoder %q unavailable", e.Name)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	if len(e.Searched) > 0 {
		b.WriteString(" (checked: ")
		b.WriteString(strings.Join(e.Searched, ", "))
		b.WriteString(")")
	}
	return b.String()
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// LocateEncoder resolves the encoder binary. It looks up name on PATH first,
// then tries the configured override path. An empty name means DefaultEncoder.
func LocateEncoder(name, override string) (string, error) {
	if strings.TrimSpace(name) == "" {
		name = DefaultEncoder
	}
	ue := &UnavailableError{Name: name}

	ue.Searched = append(ue.Searched, "PATH:"+name)
	if p, err := exec.LookPath(name); err == nil {
		return p, nil
	}

	if override = strings.TrimSpace(override); override != "" {
		ue.Searched = append(ue.Searched, override)
		info, err := os.Stat(override)
		switch {
		case err != nil:
			ue.Err = fmt.Errorf("override %s: %w", override, err)
		case !isExecutable(info):
			ue.Err = fmt.Errorf("override %s is not an executable file", override)
		default:
			return override, nil
		}
		return "", ue
	}

	ue.Err = errors.New("not found in PATH; install ffmpeg or set encoder_path")
	return "", ue
}

// EncoderVersion runs "<path> -version" and returns the first output line.
func EncoderVersion(ctx context.Context, path string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	res, err := util.Run(ctx, util.CmdSpec{Path: path, Args: []string{"-version"}})
	if err != nil {
		return "", fmt.Errorf("%s -version: %w", path, err)
	}
	line := strings.TrimSpace(string(res.Stdout))
	if idx := strings.IndexByte(line, '\n'); idx > 0 {
		line = strings.TrimSpace(line[:idx])
	}
	return line, nil
}

func isExecutable(info os.FileInfo) bool {
	if info == nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
