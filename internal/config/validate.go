package config

import (
	"fmt"
	"strings"

	"github.com/rileyhilliard/signkey/internal/errors"
	"github.com/rileyhilliard/signkey/internal/expect"
)

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but signkey only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Upgrade signkey, or lower the version field.")
	}

	if strings.TrimSpace(cfg.Command) == "" {
		return errors.New(errors.ErrConfig,
			"No key generator command configured",
			fmt.Sprintf("Set command in %s, e.g. command: %q", ConfigFileName, DefaultCommand))
	}

	if strings.TrimSpace(cfg.KeyPath) == "" {
		return errors.New(errors.ErrConfig,
			"key_path can't be empty",
			"Pass --key or set key_path to where the private key should go.")
	}

	if err := validateScript(cfg); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the prompt settings in your "+ConfigFileName+".")
	}

	if _, err := expect.ParseMode(cfg.Mode); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, "Invalid mode", "Use 'pty' (default) or 'pipe'.")
	}

	if cfg.Timeout < 0 {
		return errors.New(errors.ErrConfig,
			"timeout can't be negative",
			"Use 0 to wait forever, or something like 30s.")
	}

	return nil
}

func validateScript(cfg *Config) error {
	if cfg.Prompt == "" {
		return fmt.Errorf("prompt can't be empty - it's the text signkey waits for before answering")
	}
	if cfg.Prompts < 1 {
		return fmt.Errorf("prompts is %d - the generator needs at least one answer", cfg.Prompts)
	}
	if strings.ContainsAny(cfg.Response, "\r\n") {
		return fmt.Errorf("response can't contain line breaks - each prompt gets exactly one line")
	}
	return nil
}
