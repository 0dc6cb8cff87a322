// Package dirs resolves per-user locations for vidshrink's config file and
// scratch space.
package dirs

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "vidshrink"

// location describes where one kind of directory lives on each platform.
type location struct {
	xdgVar   string   // linux override, e.g. XDG_CONFIG_HOME
	linux    []string // relative to $HOME when xdgVar is unset
	darwin   []string // relative to $HOME
	fallback func() (string, error)
}

var (
	configLoc = location{
		xdgVar:   "XDG_CONFIG_HOME",
		linux:    []string{".config"},
		darwin:   []string{"Library", "Application Support"},
		fallback: os.UserConfigDir,
	}
	cacheLoc = location{
		xdgVar:   "XDG_CACHE_HOME",
		linux:    []string{".cache"},
		darwin:   []string{"Library", "Caches"},
		fallback: os.UserCacheDir,
	}
)

func (l location) resolve() (string, error) {
	var rel []string
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv(l.xdgVar); xdg != "" {
			return filepath.Join(xdg, appName), nil
		}
		rel = l.linux
	case "darwin":
		rel = l.darwin
	default:
		base, err := l.fallback()
		if err != nil {
			return "", err
		}
		return filepath.Join(base, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(append(append([]string{home}, rel...), appName)...), nil
}

// ConfigDir is $XDG_CONFIG_HOME/vidshrink (or ~/.config/vidshrink) on Linux,
// ~/Library/Application Support/vidshrink on macOS.
func ConfigDir() (string, error) { return configLoc.resolve() }

// CacheDir is $XDG_CACHE_HOME/vidshrink (or ~/.cache/vidshrink) on Linux,
// ~/Library/Caches/vidshrink on macOS.
func CacheDir() (string, error) { return cacheLoc.resolve() }

// TempBaseDir holds per-request workdirs when no temp dir is configured.
func TempBaseDir() (string, error) {
	c, err := CacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(c, "temp"), nil
}

// ConfigFile returns the default config file path.
func ConfigFile() (string, error) {
	d, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "config.toml"), nil
}
