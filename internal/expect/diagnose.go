package expect

import (
	"fmt"
	"regexp"
)

// commandNotFoundPatterns match "command not found" messages from common shells.
// These only count with exit code 127.
var commandNotFoundPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)bash: (\S+): command not found`),
	regexp.MustCompile(`(?i)zsh: command not found: (\S+)`),
	regexp.MustCompile(`(?i)sh: \d+: (\S+): not found`),
	regexp.MustCompile(`(?im)^(?:\S*/)?(?:ash|sh): (\S+): not found`),
	regexp.MustCompile(`(?i)(\S+): command not found`),
}

// missingScriptPatterns catch npm failing to find the tauri script or package.
var missingScriptPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)npm (?:ERR!|error) Missing script: "?([^"\s]+)"?`),
	regexp.MustCompile(`(?i)npm (?:ERR!|error) could not determine executable to run`),
	regexp.MustCompile(`(?i)Cannot find module '([^']+)'`),
}

// IsCommandNotFound checks the output for a missing-command message.
// Returns the command name when it can be extracted.
func IsCommandNotFound(output string, exitCode int) (string, bool) {
	if exitCode != 127 {
		return "", false
	}
	for _, pattern := range commandNotFoundPatterns {
		if m := pattern.FindStringSubmatch(output); len(m) > 1 {
			return m[1], true
		}
	}
	return "", true
}

// IsMissingScript checks for npm reporting that the tauri script or CLI isn't installed.
func IsMissingScript(output string) (string, bool) {
	for _, pattern := range missingScriptPatterns {
		if m := pattern.FindStringSubmatch(output); m != nil {
			if len(m) > 1 {
				return m[1], true
			}
			return "", true
		}
	}
	return "", false
}

// diagnoseExit turns a transcript from a child that quit early into a fix-it hint.
// Returns "" when nothing recognizable was printed.
func diagnoseExit(output []byte, exitCode int) string {
	text := string(output)

	if name, ok := IsCommandNotFound(text, exitCode); ok {
		if name == "" {
			name = "the command"
		}
		return fmt.Sprintf(`'%s' wasn't found in PATH.

Install it, or point signkey at the right command:
  signkey --command "npx tauri signer generate --"`, name)
	}

	if name, ok := IsMissingScript(text); ok {
		if name == "" {
			name = "tauri"
		}
		return fmt.Sprintf(`npm couldn't run '%s'.

Run signkey from the Tauri project root, or install the CLI:
  npm install --save-dev @tauri-apps/cli`, name)
	}

	return ""
}
