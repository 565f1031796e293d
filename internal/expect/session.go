package expect

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/rileyhilliard/signkey/internal/errors"
	"github.com/rileyhilliard/signkey/internal/logger"
)

// readChunkSize is how much output the reader pulls from the child per read.
const readChunkSize = 4096

// eofPattern is the pattern name used in errors raised while waiting for end-of-stream.
const eofPattern = "EOF"

// Session owns one child process and everything it has printed.
// Callers must Close a session once Spawn succeeds.
type Session struct {
	ctx  context.Context
	opts Options
	log  logger.Logger

	cmd *exec.Cmd      // nil when attached to plain streams in tests
	in  io.WriteCloser // child's input: pty master or stdin pipe
	out io.ReadCloser  // child's output: pty master or stdout/stderr pipe

	mu      sync.Mutex
	buf     []byte
	eof     bool
	readErr error
	notify  chan struct{}
	done    chan struct{}

	// Everything below is only touched by the goroutine driving the session.
	cursor   int
	before   []byte
	state    State
	matched  int
	reaped   bool
	exitCode int
	closed   bool
	waitDone chan struct{} // closed once cmd.Wait returns
	waitErr  error
}

func newSession(ctx context.Context, opts Options, cmd *exec.Cmd, in io.WriteCloser, out io.ReadCloser) *Session {
	s := &Session{
		ctx:      ctx,
		opts:     opts,
		log:      opts.logger(),
		cmd:      cmd,
		in:       in,
		out:      out,
		notify:   make(chan struct{}, 1),
		done:     make(chan struct{}),
		state:    StateSpawned,
		exitCode: -1,
	}
	go s.readLoop()
	return s
}

// readLoop drains the child's output into buf until end-of-stream.
func (s *Session) readLoop() {
	defer close(s.done)

	chunk := make([]byte, readChunkSize)
	for {
		n, err := s.out.Read(chunk)
		if n > 0 {
			s.mu.Lock()
			s.buf = append(s.buf, chunk[:n]...)
			s.mu.Unlock()
			s.wake()
		}
		if err != nil {
			s.mu.Lock()
			s.eof = true
			if !isEndOfStream(err) {
				s.readErr = err
			}
			s.mu.Unlock()
			return
		}
	}
}

func (s *Session) wake() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// isEndOfStream reports whether a read error just means the child is gone.
// A pty master returns EIO once every slave descriptor is closed.
func isEndOfStream(err error) bool {
	return err == io.EOF ||
		stderrors.Is(err, syscall.EIO) ||
		stderrors.Is(err, os.ErrClosed) ||
		stderrors.Is(err, io.ErrClosedPipe)
}

// State reports where the session is in its lifecycle.
func (s *Session) State() State {
	return s.state
}

// Pid returns the child's process ID, or 0 when there is no real process.
func (s *Session) Pid() int {
	if s.cmd == nil || s.cmd.Process == nil {
		return 0
	}
	return s.cmd.Process.Pid
}

// Expect blocks until the output not yet consumed contains pattern, then
// consumes everything up to and including the match.
func (s *Session) Expect(pattern string) error {
	if pattern == "" {
		return errors.New(errors.ErrConfig, "Empty prompt pattern", "Set prompt to the text the tool prints before reading input.")
	}
	if s.closed {
		return errors.New(errors.ErrExit, "Session already closed", "")
	}

	s.state = StateAwaitingPrompt
	needle := []byte(pattern)

	timeout, stop := s.timer()
	defer stop()

	for {
		s.mu.Lock()
		if i := bytes.Index(s.buf[s.cursor:], needle); i >= 0 {
			start := s.cursor
			s.before = append([]byte(nil), s.buf[start:start+i]...)
			s.cursor = start + i + len(needle)
			s.mu.Unlock()

			s.matched++
			s.log.Debug("matched %q (prompt %d)", pattern, s.matched)
			return nil
		}
		eof, readErr := s.eof, s.readErr
		s.mu.Unlock()

		if eof {
			return s.prematureExit(pattern, readErr, timeout)
		}

		select {
		case <-s.notify:
		case <-s.done:
		case <-timeout:
			s.log.Warn("no %q after %s", pattern, s.opts.Timeout)
			return errors.NewPatternNotFound(pattern, fmt.Errorf("timed out after %s", s.opts.Timeout))
		case <-s.ctx.Done():
			return errors.NewPatternNotFound(pattern, s.ctx.Err())
		}
	}
}

// SendLine writes line followed by a newline to the child's input.
func (s *Session) SendLine(line string) error {
	if s.closed {
		return errors.New(errors.ErrExit, "Session already closed", "")
	}
	if _, err := io.WriteString(s.in, line+"\n"); err != nil {
		return errors.WrapWithCode(err, errors.ErrExit,
			"Couldn't write to the key generator",
			"The process probably exited; check the transcript for its last output.")
	}
	s.log.Debug("sent line (%d bytes)", len(line))
	return nil
}

// ExpectEOF blocks until the child closes its output, then reaps it.
func (s *Session) ExpectEOF() error {
	if s.closed {
		return errors.New(errors.ErrExit, "Session already closed", "")
	}

	s.state = StateAwaitingExit

	timeout, stop := s.timer()
	defer stop()

	select {
	case <-s.done:
	case <-timeout:
		s.log.Warn("process still running after %s", s.opts.Timeout)
		return errors.NewPatternNotFound(eofPattern, fmt.Errorf("timed out after %s", s.opts.Timeout))
	case <-s.ctx.Done():
		return errors.NewPatternNotFound(eofPattern, s.ctx.Err())
	}

	s.mu.Lock()
	s.before = append([]byte(nil), s.buf[s.cursor:]...)
	s.cursor = len(s.buf)
	readErr := s.readErr
	s.mu.Unlock()

	if readErr != nil {
		s.log.Debug("read ended with %v", readErr)
	}

	// A child can close its output and keep running; the same deadline covers its exit.
	if err := s.awaitExit(eofPattern, timeout); err != nil {
		return err
	}
	s.state = StateDone
	return nil
}

// Transcript returns a copy of everything the child has printed so far.
func (s *Session) Transcript() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.buf...)
}

// Before returns the output between the previous match and the latest one.
// After ExpectEOF it holds everything after the last prompt.
func (s *Session) Before() []byte {
	return append([]byte(nil), s.before...)
}

// ExitCode returns the child's exit status once it has been reaped, -1 before.
func (s *Session) ExitCode() int {
	return s.exitCode
}

// Close kills the child if it is still running, releases its terminal and reaps it.
// It is safe to call more than once.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.state = StateDone

	if !s.reaped {
		s.kill()
	}

	var firstErr error
	if err := s.in.Close(); err != nil && !isEndOfStream(err) {
		firstErr = err
	}
	// The pty master is both in and out; closing it twice just returns ErrClosed.
	if err := s.out.Close(); err != nil && !isEndOfStream(err) && firstErr == nil {
		firstErr = err
	}

	s.reap()
	<-s.done
	return firstErr
}

func (s *Session) kill() {
	if s.cmd == nil || s.cmd.Process == nil {
		return
	}
	if err := killProcessGroup(s.cmd.Process); err != nil {
		s.log.Debug("kill pid %d: %v", s.cmd.Process.Pid, err)
	}
}

// startWait calls cmd.Wait in the background, once.
func (s *Session) startWait() {
	if s.waitDone != nil {
		return
	}
	s.waitDone = make(chan struct{})
	if s.cmd == nil {
		close(s.waitDone)
		return
	}
	go func() {
		s.waitErr = s.cmd.Wait()
		close(s.waitDone)
	}()
}

// awaitExit waits for the child to exit, bounded by timeout and the session
// context. On either it kills the process group, reaps, and reports pattern
// as never seen.
func (s *Session) awaitExit(pattern string, timeout <-chan time.Time) error {
	s.startWait()

	select {
	case <-s.waitDone:
		s.reap()
		return nil
	case <-timeout:
		s.log.Warn("pid %d still running after %s", s.Pid(), s.opts.Timeout)
		s.kill()
		s.reap()
		return errors.NewPatternNotFound(pattern, fmt.Errorf("timed out after %s", s.opts.Timeout))
	case <-s.ctx.Done():
		s.kill()
		s.reap()
		return errors.NewPatternNotFound(pattern, s.ctx.Err())
	}
}

// reap waits for the child once and records its exit status.
// Callers bound the wait themselves, by killing first or through awaitExit.
func (s *Session) reap() {
	if s.reaped {
		return
	}
	s.startWait()
	<-s.waitDone
	s.reaped = true

	if s.cmd == nil {
		s.exitCode = 0
		return
	}

	err := s.waitErr
	s.exitCode = s.cmd.ProcessState.ExitCode()

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		s.log.Debug("pid %d exited cleanly", s.cmd.Process.Pid)
	case stderrors.As(err, &exitErr):
		s.log.Debug("pid %d exited with status %d", s.cmd.Process.Pid, s.exitCode)
	default:
		s.log.Warn("wait for pid %d: %v", s.cmd.Process.Pid, err)
	}
}

// prematureExit builds the error for a child that closed its output mid-script.
func (s *Session) prematureExit(pattern string, readErr error, timeout <-chan time.Time) error {
	if err := s.awaitExit(pattern, timeout); err != nil {
		s.log.Debug("killed pid %d after its output closed", s.Pid())
	}
	s.state = StateDone

	err := errors.NewPrematureExit(pattern, s.matched)
	if readErr != nil {
		err.Cause = readErr
	}
	if hint := diagnoseExit(s.Transcript(), s.exitCode); hint != "" {
		err.Suggestion = hint
	}
	s.log.Debug("output closed while waiting for %q (exit %d)", pattern, s.exitCode)
	return err
}

// timer returns a channel that fires after the configured timeout, or a nil
// channel (never fires) when waits are unbounded.
func (s *Session) timer() (<-chan time.Time, func()) {
	if s.opts.Timeout <= 0 {
		return nil, func() {}
	}
	t := time.NewTimer(s.opts.Timeout)
	return t.C, func() { t.Stop() }
}
