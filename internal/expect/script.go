package expect

import (
	"context"
	"fmt"

	"github.com/rileyhilliard/signkey/internal/transcript"
)

// DefaultPrompt is the text the signer prints before reading a password.
const DefaultPrompt = "Password:"

// Step waits for Pattern and answers it with Response.
type Step struct {
	Pattern  string
	Response string
}

// Script is an ordered list of prompt/response steps.
type Script []Step

// PromptScript answers the same prompt n times with response.
func PromptScript(prompt string, n int, response string) Script {
	script := make(Script, n)
	for i := range script {
		script[i] = Step{Pattern: prompt, Response: response}
	}
	return script
}

// DefaultScript answers "new password" and "confirm password" with empty lines.
func DefaultScript() Script {
	return PromptScript(DefaultPrompt, 2, "")
}

// Play runs every step in order. A response is only sent after its prompt is seen.
func (s *Session) Play(script Script) error {
	for i, step := range script {
		if err := s.Expect(step.Pattern); err != nil {
			return err
		}
		if err := s.SendLine(step.Response); err != nil {
			return err
		}
		s.log.Debug("answered step %d/%d", i+1, len(script))
	}
	return nil
}

// Result is what a finished run produced.
type Result struct {
	Transcript string
	ExitCode   int
}

// Run spawns command, answers two "Password:" prompts with empty lines,
// waits for the command to finish and returns everything it printed.
func Run(ctx context.Context, command string, opts Options) (string, error) {
	res, err := RunScript(ctx, command, DefaultScript(), opts)
	if err != nil {
		return "", err
	}
	return res.Transcript, nil
}

// RunScript is Run with an arbitrary script. The child is always reaped before
// it returns, including on error.
func RunScript(ctx context.Context, command string, script Script, opts Options) (*Result, error) {
	sess, err := Spawn(ctx, command, opts)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	if err := sess.Play(script); err != nil {
		return nil, err
	}
	if err := sess.ExpectEOF(); err != nil {
		return nil, err
	}

	text, err := transcript.Decode(sess.Transcript(), opts.Encoding)
	if err != nil {
		return nil, err
	}
	if opts.NormalizeNewlines {
		text = transcript.NormalizeNewlines(text)
	}

	if code := sess.ExitCode(); code != 0 {
		sess.log.Warn("%s exited with status %d", describe(command), code)
	}

	return &Result{Transcript: text, ExitCode: sess.ExitCode()}, nil
}

func describe(command string) string {
	const max = 40
	if r := []rune(command); len(r) > max {
		return fmt.Sprintf("%q...", string(r[:max]))
	}
	return fmt.Sprintf("%q", command)
}
