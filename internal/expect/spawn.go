package expect

import (
	"context"
	"os"
	"os/exec"
	"sort"

	"github.com/creack/pty"

	"github.com/rileyhilliard/signkey/internal/errors"
)

// ptySize is the window the child sees; wide enough that tools don't wrap prompts.
var ptySize = &pty.Winsize{Rows: 24, Cols: 120}

// Spawn starts command under a shell and returns a session attached to it.
// The caller owns the session and must Close it.
func Spawn(ctx context.Context, command string, opts Options) (*Session, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Mode == "" {
		opts.Mode = ModePTY
	}

	cmd := exec.Command(shellFor(opts), "-c", command)
	cmd.Dir = opts.Dir
	cmd.Env = buildEnv(opts.Env)

	log := opts.logger()
	log.Debug("spawning %q in %s mode", command, opts.Mode)

	var s *Session
	switch opts.Mode {
	case ModePTY:
		ptmx, err := pty.StartWithSize(cmd, ptySize)
		if err != nil {
			return nil, spawnError(err)
		}
		s = newSession(ctx, opts, cmd, ptmx, ptmx)

	case ModePipe:
		inR, inW, err := os.Pipe()
		if err != nil {
			return nil, spawnError(err)
		}
		outR, outW, err := os.Pipe()
		if err != nil {
			inR.Close()
			inW.Close()
			return nil, spawnError(err)
		}

		cmd.Stdin = inR
		cmd.Stdout = outW
		cmd.Stderr = outW
		setProcessGroup(cmd)

		startErr := cmd.Start()
		// The child holds its own copies; ours would keep the streams open forever.
		inR.Close()
		outW.Close()
		if startErr != nil {
			inW.Close()
			outR.Close()
			return nil, spawnError(startErr)
		}
		s = newSession(ctx, opts, cmd, inW, outR)

	default:
		_, err := ParseMode(string(opts.Mode))
		return nil, errors.WrapWithCode(err, errors.ErrConfig, "Invalid terminal mode", "Use mode: pty or mode: pipe.")
	}

	log.Info("started pid %d", cmd.Process.Pid)
	return s, nil
}

func spawnError(err error) error {
	return errors.WrapWithCode(err, errors.ErrSpawn,
		"Couldn't start the key generator",
		"Make sure the shell and command exist and are executable.")
}

func shellFor(opts Options) string {
	if opts.Shell != "" {
		return opts.Shell
	}
	if shell := os.Getenv("SHELL"); shell != "" {
		return shell
	}
	return "/bin/sh"
}

// buildEnv returns the current environment with extra applied in a stable order.
func buildEnv(extra map[string]string) []string {
	env := os.Environ()
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, k+"="+extra[k])
	}
	return env
}
