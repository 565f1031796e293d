package expect

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestIsCommandNotFound(t *testing.T) {
	tests := []struct {
		name     string
		output   string
		exitCode int
		wantName string
		wantOK   bool
	}{
		{name: "bash", output: "bash: npm: command not found", exitCode: 127, wantName: "npm", wantOK: true},
		{name: "zsh", output: "zsh: command not found: npm", exitCode: 127, wantName: "npm", wantOK: true},
		{name: "dash", output: "sh: 1: npm: not found", exitCode: 127, wantName: "npm", wantOK: true},
		{name: "busybox ash", output: "Password: \n/bin/sh: npm: not found\n", exitCode: 127, wantName: "npm", wantOK: true},
		{name: "unrelated not found line", output: "Error: key file: not found\n", exitCode: 127, wantName: "", wantOK: true},
		{name: "127 without message", output: "", exitCode: 127, wantName: "", wantOK: true},
		{name: "wrong exit code", output: "bash: npm: command not found", exitCode: 1, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, ok := IsCommandNotFound(tt.output, tt.exitCode)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantName, name)
		})
	}
}

func TestIsMissingScript(t *testing.T) {
	tests := []struct {
		name     string
		output   string
		wantName string
		wantOK   bool
	}{
		{name: "npm 8 missing script", output: `npm ERR! Missing script: "tauri"`, wantName: "tauri", wantOK: true},
		{name: "npm 10 missing script", output: `npm error Missing script: "tauri"`, wantName: "tauri", wantOK: true},
		{name: "npx without package", output: "npm ERR! could not determine executable to run", wantOK: true},
		{name: "node module missing", output: "Error: Cannot find module '@tauri-apps/cli'", wantName: "@tauri-apps/cli", wantOK: true},
		{name: "unrelated", output: "Key written to new.key", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, ok := IsMissingScript(tt.output)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantName, name)
		})
	}
}

func TestDiagnoseExit(t *testing.T) {
	assert.Contains(t, diagnoseExit([]byte("sh: 1: npm: not found\n"), 127), "'npm' wasn't found in PATH")
	assert.Contains(t, diagnoseExit([]byte(`npm ERR! Missing script: "tauri"`), 1), "npm couldn't run 'tauri'")
	assert.Empty(t, diagnoseExit([]byte("Password: \n"), 0))
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, `"npm run tauri"`, describe("npm run tauri"))

	long := strings.Repeat("é", 45)
	got := describe(long)
	assert.Equal(t, fmt.Sprintf("%q...", strings.Repeat("é", 40)), got)
	assert.True(t, utf8.ValidString(got), "truncation keeps whole characters")
}
