package config

import (
	"fmt"
	"os"

	"github.com/rileyhilliard/signkey/internal/errors"
	"gopkg.in/yaml.v3"
)

// fileConfig mirrors Config with the timeout as a duration string,
// since yaml.v3 would otherwise write it as nanoseconds.
type fileConfig struct {
	Version  int               `yaml:"version"`
	Command  string            `yaml:"command"`
	KeyPath  string            `yaml:"key_path"`
	Force    bool              `yaml:"force"`
	Prompt   string            `yaml:"prompt"`
	Prompts  int               `yaml:"prompts"`
	Response string            `yaml:"response"`
	Mode     string            `yaml:"mode"`
	Timeout  string            `yaml:"timeout"`
	Dir      string            `yaml:"dir,omitempty"`
	Env      map[string]string `yaml:"env,omitempty"`
	Output   OutputConfig      `yaml:"output"`
}

// Marshal renders cfg as YAML in the same shape Load reads.
func Marshal(cfg *Config) ([]byte, error) {
	fc := fileConfig{
		Version:  cfg.Version,
		Command:  cfg.Command,
		KeyPath:  cfg.KeyPath,
		Force:    cfg.Force,
		Prompt:   cfg.Prompt,
		Prompts:  cfg.Prompts,
		Response: cfg.Response,
		Mode:     cfg.Mode,
		Timeout:  cfg.Timeout.String(),
		Dir:      cfg.Dir,
		Env:      cfg.Env,
		Output:   cfg.Output,
	}
	out, err := yaml.Marshal(&fc)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig, "Couldn't render config as YAML", "")
	}
	return out, nil
}

// Save writes cfg to path. It refuses to replace an existing file unless overwrite is set.
func Save(cfg *Config, path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("%s already exists", path),
				"Use --force to overwrite it.")
		}
	}

	data, err := Marshal(cfg)
	if err != nil {
		return err
	}

	header := []byte("# signkey configuration\n")
	if err := os.WriteFile(path, append(header, data...), 0o644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't write "+path,
			"Check you can write to this directory.")
	}
	return nil
}
