// Package expect drives interactive command-line programs.
//
// A Session owns one child process started under a shell, either on a
// pseudo-terminal or on plain pipes. Expect waits for a literal string in the
// child's output, SendLine answers it, and ExpectEOF waits for the child to
// finish. Every byte the child prints is kept as the transcript.
//
//	sess, err := expect.Spawn(ctx, "npm run tauri signer generate -- -w new.key", expect.Options{})
//	if err != nil {
//		return err
//	}
//	defer sess.Close()
//
//	if err := sess.Play(expect.DefaultScript()); err != nil {
//		return err
//	}
//	if err := sess.ExpectEOF(); err != nil {
//		return err
//	}
//	fmt.Print(string(sess.Transcript()))
//
// Waits are unbounded unless Options.Timeout is set or the context is
// cancelled; either ends the wait with a PATTERN error. A child that closes
// its output while a prompt is still expected yields an EXIT error.
package expect
