// Package config loads tool-level settings. Values resolve from three
// layers in increasing precedence: built-in defaults, an optional TOML
// file under the user config directory, and KI_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"
)

// Config holds the tool settings.
type Config struct {
	// Branch is the initial branch name for cloned repositories.
	Branch string `toml:"branch"`

	// AuthorName and AuthorEmail set the committer identity written into
	// a cloned repository. Empty means the ambient git configuration is
	// used as is.
	AuthorName  string `toml:"author_name"`
	AuthorEmail string `toml:"author_email"`

	// LogFile, when set, routes diagnostics to a rotating log file
	// instead of stderr.
	LogFile string `toml:"log_file"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{Branch: "main"}
}

// Path returns the location of the config file.
func Path() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config directory: %w", err)
	}
	return filepath.Join(base, "ki", "config.toml"), nil
}

// Load resolves the effective settings. A missing config file is fine;
// a malformed one is an error.
func Load() (Config, error) {
	v := viper.New()

	def := Default()
	v.SetDefault("branch", def.Branch)
	v.SetDefault("author_name", def.AuthorName)
	v.SetDefault("author_email", def.AuthorEmail)
	v.SetDefault("log_file", def.LogFile)

	v.SetEnvPrefix("KI")
	v.AutomaticEnv()

	path, err := Path()
	if err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	return Config{
		Branch:      v.GetString("branch"),
		AuthorName:  v.GetString("author_name"),
		AuthorEmail: v.GetString("author_email"),
		LogFile:     v.GetString("log_file"),
	}, nil
}

// Init writes a config file holding the default settings at path,
// creating parent directories as needed. It refuses to overwrite an
// existing file.
func Init(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(Default()); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}
