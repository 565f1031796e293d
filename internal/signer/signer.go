// Package signer knows the few things signkey needs about the Tauri updater
// signer: how to ask it for a key file, when not to, and how to read the
// public key it leaves behind.
package signer

import (
	"fmt"
	"os"
	"strings"

	"github.com/rileyhilliard/signkey/internal/errors"
	"github.com/rileyhilliard/signkey/internal/util"
)

// PublicKeySuffix is appended to the private key path for the public key file.
const PublicKeySuffix = ".pub"

// Command appends the output flags to the generator invocation:
// Command("npm run tauri signer generate --", "new.key", false) is
// "npm run tauri signer generate -- -w new.key".
func Command(base, keyPath string, force bool) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(base))
	b.WriteString(" -w ")
	b.WriteString(util.QuoteIfNeeded(keyPath))
	if force {
		b.WriteString(" --force")
	}
	return b.String()
}

// PublicKeyPath returns where the signer writes the public half of keyPath.
func PublicKeyPath(keyPath string) string {
	return keyPath + PublicKeySuffix
}

// KeyExists reports whether something already sits at keyPath.
func KeyExists(keyPath string) bool {
	_, err := os.Lstat(keyPath)
	return err == nil
}

// CheckOutput refuses to run when a key is already at keyPath, unless force is set.
// The signer would fail on its own after asking for both passwords.
func CheckOutput(keyPath string, force bool) error {
	info, err := os.Stat(keyPath)
	if err != nil {
		return nil
	}
	if info.IsDir() {
		return errors.New(errors.ErrKey,
			fmt.Sprintf("%s is a directory", keyPath),
			"Point --key at a file path, e.g. --key "+strings.TrimSuffix(keyPath, "/")+"/updater.key")
	}
	if force {
		return nil
	}
	return errors.New(errors.ErrKey,
		fmt.Sprintf("Key already exists at %s", keyPath),
		"Pass --force to overwrite it, or choose another path with --key.")
}
