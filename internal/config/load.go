package config

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvPrefix      = "APP_"
	EnvConfigPath  = EnvPrefix + "CONFIG_PATH"
	EnvProfile     = EnvPrefix + "PROFILE"
	DefaultProfile = "default"

	baseFile  = "shorty.yaml"
	localFile = "shorty.local.yaml"
	dotEnv    = ".env"
)

// Loader reads configuration files from Dir. A nil Environ means the
// process environment.
type Loader struct {
	Environ map[string]string
	Dir     string
}

// Load reads the configuration from the working directory and the process environment.
func Load() (*Config, error) {
	return Loader{Dir: "."}.Load()
}

// Load applies every source on top of Default and validates the result.
func (l Loader) Load() (*Config, error) {
	environ, err := l.environ()
	if err != nil {
		return nil, err
	}

	profile := environ[EnvProfile]
	if profile == "" {
		profile = DefaultProfile
	}

	override := environ[EnvConfigPath]
	if override == "" {
		override = filepath.Join(l.Dir, localFile)
	}

	cfg := Default()
	for _, path := range []string{filepath.Join(l.Dir, baseFile), override} {
		if err := mergeFile(&cfg, path, profile); err != nil {
			return nil, err
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix, Environment: environ}); err != nil {
		return nil, errors.Join(ErrParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// environ returns the environment with .env values filling unset variables.
func (l Loader) environ() (map[string]string, error) {
	environ := l.Environ
	if environ == nil {
		environ = make(map[string]string)
		for _, kv := range os.Environ() {
			if k, v, ok := strings.Cut(kv, "="); ok {
				environ[k] = v
			}
		}
	}

	file, err := godotenv.Read(filepath.Join(l.Dir, dotEnv))
	if errors.Is(err, fs.ErrNotExist) {
		return environ, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrParse, dotEnv, err)
	}

	maps.Copy(file, environ)
	return file, nil
}

// mergeFile decodes the default section and then the profile section of
// path into cfg. Missing files are skipped.
func mergeFile(cfg *Config, path, profile string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrParse, path, err)
	}

	var sections map[string]yaml.Node
	if err := yaml.Unmarshal(data, &sections); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrParse, path, err)
	}

	names := []string{DefaultProfile}
	if profile != DefaultProfile {
		names = append(names, profile)
	}
	for _, name := range names {
		node, ok := sections[name]
		if !ok {
			continue
		}
		if err := node.Decode(cfg); err != nil {
			return fmt.Errorf("%w: %s [%s]: %w", ErrParse, path, name, err)
		}
	}
	return nil
}
