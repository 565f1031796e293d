package config

import (
	"time"

	"github.com/rileyhilliard/signkey/internal/expect"
)

// CurrentConfigVersion is the schema version for the config file.
const CurrentConfigVersion = 1

const (
	// DefaultCommand runs the Tauri signer through npm; the -w flag is appended.
	DefaultCommand = "npm run tauri signer generate --"
	// DefaultKeyPath is where the new private key is written.
	DefaultKeyPath = "new.key"
	// DefaultPrompts is "new password" plus "confirm password".
	DefaultPrompts = 2
)

// Config represents a .signkey.yaml file.
type Config struct {
	Version int `yaml:"version" mapstructure:"version"`

	// Command is the key generator invocation, without the output flag.
	Command string `yaml:"command" mapstructure:"command"`

	// KeyPath is the private key file the generator writes (passed as -w).
	KeyPath string `yaml:"key_path" mapstructure:"key_path"`

	// Force overwrites an existing key file.
	Force bool `yaml:"force" mapstructure:"force"`

	// Prompt is the literal text that precedes each password read.
	Prompt string `yaml:"prompt" mapstructure:"prompt"`

	// Prompts is how many times Prompt is answered.
	Prompts int `yaml:"prompts" mapstructure:"prompts"`

	// Response is the line sent for every prompt. Empty means no password.
	Response string `yaml:"response" mapstructure:"response"`

	// Mode is "pty" or "pipe".
	Mode string `yaml:"mode" mapstructure:"mode"`

	// Timeout bounds each wait on the generator. Zero waits forever.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// Dir is the working directory for the generator (usually the Tauri project root).
	Dir string `yaml:"dir" mapstructure:"dir"`

	// Env holds extra environment variables for the generator.
	Env map[string]string `yaml:"env" mapstructure:"env"`

	Output OutputConfig `yaml:"output" mapstructure:"output"`
}

// OutputConfig controls how the transcript and key summary are shown.
type OutputConfig struct {
	Encoding          string `yaml:"encoding" mapstructure:"encoding"`
	NormalizeNewlines bool   `yaml:"normalize_newlines" mapstructure:"normalize_newlines"`
	Inspect           bool   `yaml:"inspect" mapstructure:"inspect"`
}

// DefaultConfig returns a Config that reproduces `npm run tauri signer generate -- -w new.key`
// with two empty passwords.
func DefaultConfig() *Config {
	return &Config{
		Version:  CurrentConfigVersion,
		Command:  DefaultCommand,
		KeyPath:  DefaultKeyPath,
		Prompt:   expect.DefaultPrompt,
		Prompts:  DefaultPrompts,
		Response: "",
		Mode:     string(expect.ModePTY),
		Env:      map[string]string{},
		Output: OutputConfig{
			Encoding: "utf-8",
			Inspect:  true,
		},
	}
}

// Script builds the prompt/response script for the generator.
func (c *Config) Script() expect.Script {
	return expect.PromptScript(c.Prompt, c.Prompts, c.Response)
}
