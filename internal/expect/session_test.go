package expect

import (
	"bufio"
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/signkey/internal/errors"
	"github.com/rileyhilliard/signkey/internal/logger"
)

const keygenTranscript = "Password: \nPassword: \nKey written to new.key\n"

// fakeChild plays the other end of a session without a real process.
type fakeChild struct {
	out   *io.PipeWriter // what the child prints
	in    *bufio.Reader  // what the child reads
	inRaw *io.PipeReader
}

func (c *fakeChild) print(t *testing.T, s string) {
	t.Helper()
	_, err := io.WriteString(c.out, s)
	require.NoError(t, err)
}

func (c *fakeChild) exit() {
	c.out.Close()
	c.inRaw.Close()
}

func newFakeSession(t *testing.T, ctx context.Context, opts Options) (*Session, *fakeChild) {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = logger.Noop()
	}

	outR, outW := io.Pipe()
	inR, inW := io.Pipe()

	sess := newSession(ctx, opts, nil, inW, outR)
	t.Cleanup(func() { sess.Close() })

	return sess, &fakeChild{out: outW, in: bufio.NewReader(inR), inRaw: inR}
}

func TestSession_TwoPromptsThenExit(t *testing.T) {
	sess, child := newFakeSession(t, context.Background(), Options{})

	received := make(chan []string, 1)
	go func() {
		var lines []string
		for i := 0; i < 2; i++ {
			io.WriteString(child.out, "Password: \n")
			line, err := child.in.ReadString('\n')
			if err != nil {
				break
			}
			lines = append(lines, line)
		}
		io.WriteString(child.out, "Key written to new.key\n")
		child.exit()
		received <- lines
	}()

	require.NoError(t, sess.Play(DefaultScript()))
	require.NoError(t, sess.ExpectEOF())

	assert.Equal(t, []string{"\n", "\n"}, <-received)
	assert.Equal(t, keygenTranscript, string(sess.Transcript()))
	assert.Equal(t, StateDone, sess.State())
	assert.Equal(t, 0, sess.ExitCode())
}

func TestSession_DoesNotAnswerBeforePrompt(t *testing.T) {
	sess, child := newFakeSession(t, context.Background(), Options{})

	lines := make(chan string, 4)
	go func() {
		for {
			line, err := child.in.ReadString('\n')
			if err != nil {
				return
			}
			lines <- line
		}
	}()

	done := make(chan error, 1)
	go func() { done <- sess.Play(PromptScript("Password:", 1, "")) }()

	child.print(t, "Please enter a password to protect the secret key.\n")
	assert.Never(t, func() bool { return len(lines) > 0 }, 100*time.Millisecond, 10*time.Millisecond)

	child.print(t, "Password: ")
	require.NoError(t, <-done)

	select {
	case line := <-lines:
		assert.Equal(t, "\n", line)
	case <-time.After(2 * time.Second):
		t.Fatal("no response after prompt")
	}
}

func TestSession_PromptSplitAcrossWrites(t *testing.T) {
	sess, child := newFakeSession(t, context.Background(), Options{})

	go func() {
		io.WriteString(child.out, "Pass")
		time.Sleep(20 * time.Millisecond)
		io.WriteString(child.out, "word: ")
	}()

	require.NoError(t, sess.Expect("Password:"))
}

func TestSession_NeverPromptsBlocksUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sess, child := newFakeSession(t, ctx, Options{})

	done := make(chan error, 1)
	go func() { done <- sess.Expect("Password:") }()

	child.print(t, "generating...\n")
	assert.Never(t, func() bool { return len(done) > 0 }, 150*time.Millisecond, 10*time.Millisecond)

	cancel()
	err := <-done
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrPattern))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSession_Timeout(t *testing.T) {
	sess, child := newFakeSession(t, context.Background(), Options{Timeout: 50 * time.Millisecond})

	go io.WriteString(child.out, "no prompt here\n")

	start := time.Now()
	err := sess.Expect("Password:")

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrPattern))
	assert.Contains(t, err.Error(), "timed out after 50ms")
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestSession_ExpectEOFTimeout(t *testing.T) {
	sess, _ := newFakeSession(t, context.Background(), Options{Timeout: 50 * time.Millisecond})

	err := sess.ExpectEOF()

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrPattern))
	assert.Contains(t, err.Error(), `"EOF"`)
}

func TestSession_PrematureExitAfterOnePrompt(t *testing.T) {
	sess, child := newFakeSession(t, context.Background(), Options{})

	go func() {
		io.WriteString(child.out, "Password: \n")
		child.in.ReadString('\n')
		io.WriteString(child.out, "error: aborted\n")
		child.exit()
	}()

	err := sess.Play(DefaultScript())

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrExit))
	assert.Contains(t, err.Error(), "1 answered prompt.")
	assert.Equal(t, "Password: \nerror: aborted\n", string(sess.Transcript()))
}

func TestSession_Before(t *testing.T) {
	sess, child := newFakeSession(t, context.Background(), Options{})

	go func() {
		io.WriteString(child.out, "banner\nPassword:")
		child.in.ReadString('\n')
		io.WriteString(child.out, " more\nPassword:")
		child.in.ReadString('\n')
		io.WriteString(child.out, " tail\n")
		child.exit()
	}()

	require.NoError(t, sess.Expect("Password:"))
	assert.Equal(t, "banner\n", string(sess.Before()))
	require.NoError(t, sess.SendLine(""))

	require.NoError(t, sess.Expect("Password:"))
	assert.Equal(t, " more\n", string(sess.Before()))
	require.NoError(t, sess.SendLine(""))

	require.NoError(t, sess.ExpectEOF())
	assert.Equal(t, " tail\n", string(sess.Before()))
}

func TestSession_States(t *testing.T) {
	sess, child := newFakeSession(t, context.Background(), Options{})
	assert.Equal(t, StateSpawned, sess.State())

	go func() {
		io.WriteString(child.out, "Password:")
		child.in.ReadString('\n')
		child.exit()
	}()

	require.NoError(t, sess.Expect("Password:"))
	assert.Equal(t, StateAwaitingPrompt, sess.State())
	require.NoError(t, sess.SendLine(""))

	require.NoError(t, sess.ExpectEOF())
	assert.Equal(t, StateDone, sess.State())
}

func TestSession_EmptyPattern(t *testing.T) {
	sess, _ := newFakeSession(t, context.Background(), Options{})

	err := sess.Expect("")
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestSession_CloseIsIdempotent(t *testing.T) {
	sess, _ := newFakeSession(t, context.Background(), Options{})

	require.NoError(t, sess.Close())
	require.NoError(t, sess.Close())
	assert.Equal(t, StateDone, sess.State())

	assert.Error(t, sess.Expect("Password:"))
	assert.Error(t, sess.SendLine(""))
	assert.Error(t, sess.ExpectEOF())
}

func TestSession_LogsResponsesWithoutContent(t *testing.T) {
	buf := logger.NewBufferLogger()
	sess, child := newFakeSession(t, context.Background(), Options{Logger: buf})

	go func() {
		io.WriteString(child.out, "Password:")
		child.in.ReadString('\n')
		child.exit()
	}()

	require.NoError(t, sess.Play(PromptScript("Password:", 1, "hunter2")))
	require.NoError(t, sess.ExpectEOF())

	for _, m := range buf.Messages() {
		assert.NotContains(t, m.Message, "hunter2")
	}
	assert.True(t, buf.HasLevel("debug"))
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "spawned", StateSpawned.String())
	assert.Equal(t, "awaiting-prompt", StateAwaitingPrompt.String())
	assert.Equal(t, "awaiting-exit", StateAwaitingExit.String())
	assert.Equal(t, "done", StateDone.String())
	assert.Equal(t, "state(9)", State(9).String())
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{in: "", want: ModePTY},
		{in: "pty", want: ModePTY},
		{in: "pipe", want: ModePipe},
		{in: "tty", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
