// Package ui provides the terminal output pieces for signkey: a spinner for
// the running generator, the key summary block, error rendering, and the
// overwrite prompt.
//
// Colors are ANSI codes so they follow the terminal theme:
//
//	ColorSuccess   (green)  - generated key, checkmarks
//	ColorError     (red)    - failures
//	ColorWarning   (yellow) - non-zero exits after a finished script
//	ColorMuted     (gray)   - labels, timing info
//	ColorSecondary (blue)   - spinner frames
//
// Use DisableColors() to switch to monochrome output (for --no-color).
//
// Spinner usage:
//
//	s := ui.NewSpinner(os.Stderr, "Generating key")
//	s.Start()
//	// ... run the generator ...
//	s.Success() // or s.Fail()
package ui
