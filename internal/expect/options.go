package expect

import (
	"fmt"
	"time"

	"github.com/rileyhilliard/signkey/internal/logger"
)

// Mode selects how the child's standard streams are wired.
type Mode string

const (
	// ModePTY gives the child a pseudo-terminal, which is what password
	// prompts usually insist on.
	ModePTY Mode = "pty"
	// ModePipe connects stdin to a pipe and merges stdout and stderr into another.
	ModePipe Mode = "pipe"
)

// ParseMode validates a mode name. An empty name means ModePTY.
func ParseMode(name string) (Mode, error) {
	switch Mode(name) {
	case "", ModePTY:
		return ModePTY, nil
	case ModePipe:
		return ModePipe, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want pty or pipe)", name)
	}
}

// Options configures a Session.
type Options struct {
	Mode  Mode
	Shell string            // defaults to $SHELL, then /bin/sh
	Dir   string            // working directory for the child
	Env   map[string]string // added on top of the current environment

	// Timeout bounds every single wait. Zero waits forever.
	Timeout time.Duration

	Encoding          string // transcript encoding, see transcript.Decode
	NormalizeNewlines bool   // turn CRLF into LF in the returned transcript

	Logger logger.Logger
}

func (o Options) logger() logger.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return logger.Default()
}

// State is a step in a session's lifecycle:
// Spawned -> AwaitingPrompt -> AwaitingExit -> Done.
type State int

const (
	StateSpawned State = iota
	StateAwaitingPrompt
	StateAwaitingExit
	StateDone
)

func (s State) String() string {
	switch s {
	case StateSpawned:
		return "spawned"
	case StateAwaitingPrompt:
		return "awaiting-prompt"
	case StateAwaitingExit:
		return "awaiting-exit"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}
