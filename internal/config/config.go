package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"vidshrink/internal/dirs"
	"vidshrink/internal/util"
)

// Config is the effective configuration after flags, env and file are merged.
type Config struct {
	OutDir      string `toml:"out_dir" mapstructure:"out_dir"`
	Verbose     bool   `toml:"verbose" mapstructure:"verbose"`
	Encoder     string `toml:"encoder" mapstructure:"encoder"`
	EncoderPath string `toml:"encoder_path" mapstructure:"encoder_path"`
	TempDir     string `toml:"temp_dir" mapstructure:"temp_dir"`
	LogLevel    string `toml:"log_level" mapstructure:"log_level"`
	LogFormat   string `toml:"log_format" mapstructure:"log_format"`
	Listen      string `toml:"listen" mapstructure:"listen"`
	MaxUploadMB int    `toml:"max_upload_mb" mapstructure:"max_upload_mb"`
	Simulate    bool   `toml:"simulate" mapstructure:"simulate"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		OutDir:      ".",
		Encoder:     "ffmpeg",
		LogLevel:    "info",
		LogFormat:   "text",
		Listen:      ":8080",
		MaxUploadMB: 1024,
	}
}

// SetDefaults registers Default() on v.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("out_dir", d.OutDir)
	v.SetDefault("verbose", d.Verbose)
	v.SetDefault("encoder", d.Encoder)
	v.SetDefault("encoder_path", d.EncoderPath)
	v.SetDefault("temp_dir", d.TempDir)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
	v.SetDefault("listen", d.Listen)
	v.SetDefault("max_upload_mb", d.MaxUploadMB)
	v.SetDefault("simulate", d.Simulate)
}

// Init wires Viper with config paths, env, defaults, and flag bindings.
// A missing config file is fine; a malformed one is returned.
func Init(root *cobra.Command) error {
	v := viper.GetViper()
	SetDefaults(v)

	if f := root.PersistentFlags().Lookup("config"); f != nil && f.Value.String() != "" {
		v.SetConfigFile(f.Value.String())
	} else {
		if cfgDir, err := dirs.ConfigDir(); err == nil {
			v.AddConfigPath(cfgDir)
		}
		v.SetConfigName("config") // supports config.{toml|yaml|yml|json}
	}

	// Environment variables: VIDSHRINK_*
	v.SetEnvPrefix("VIDSHRINK")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for key, flag := range map[string]string{
		"out_dir":      "out-dir",
		"verbose":      "verbose",
		"encoder":      "encoder",
		"encoder_path": "encoder-path",
		"temp_dir":     "temp-dir",
		"log_level":    "log-level",
		"log_format":   "log-format",
		"simulate":     "simulate",
	} {
		if f := root.PersistentFlags().Lookup(flag); f != nil {
			_ = v.BindPFlag(key, f)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// BindServeFlags binds the serve command's local flags.
func BindServeFlags(cmd *cobra.Command) {
	v := viper.GetViper()
	if f := cmd.Flags().Lookup("listen"); f != nil {
		_ = v.BindPFlag("listen", f)
	}
	if f := cmd.Flags().Lookup("max-upload-mb"); f != nil {
		_ = v.BindPFlag("max_upload_mb", f)
	}
}

// Load returns the typed configuration from the global Viper instance.
func Load() (Config, error) {
	return FromViper(viper.GetViper())
}

// FromViper reads and validates a Config from v.
func FromViper(v *viper.Viper) (Config, error) {
	c := Config{
		OutDir:      v.GetString("out_dir"),
		Verbose:     v.GetBool("verbose"),
		Encoder:     v.GetString("encoder"),
		EncoderPath: v.GetString("encoder_path"),
		TempDir:     v.GetString("temp_dir"),
		LogLevel:    v.GetString("log_level"),
		LogFormat:   v.GetString("log_format"),
		Listen:      v.GetString("listen"),
		MaxUploadMB: v.GetInt("max_upload_mb"),
		Simulate:    v.GetBool("simulate"),
	}
	if c.OutDir == "" {
		c.OutDir = "."
	}
	c.OutDir = filepath.Clean(c.OutDir)
	return c, c.Validate()
}

// Validate checks values that would otherwise fail late.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Encoder) == "" {
		return errors.New("encoder must not be empty")
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("max_upload_mb must be positive, got %d", c.MaxUploadMB)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "console", "json":
	default:
		return fmt.Errorf("log_format must be text or json, got %q", c.LogFormat)
	}
	return nil
}

// MaxUploadBytes converts MaxUploadMB to bytes.
func (c Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// TOML renders c as a TOML document.
func (c Config) TOML() ([]byte, error) {
	return toml.Marshal(c)
}

// WriteSample writes the defaults to path. An existing file is only replaced
// when force is set.
func WriteSample(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}
	if err := util.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	body, err := Default().TOML()
	if err != nil {
		return err
	}
	header := "# vidshrink configuration. Environment variables VIDSHRINK_<KEY> and flags take precedence.\n\n"
	return os.WriteFile(path, append([]byte(header), body...), 0o644)
}
