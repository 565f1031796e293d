// Package transcript turns the raw bytes captured from a child process into text.
package transcript

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/htmlindex"

	"github.com/rileyhilliard/signkey/internal/errors"
)

// DefaultEncoding is used when no encoding is configured.
const DefaultEncoding = "utf-8"

// Decode converts b to a string using the named encoding.
// UTF-8 is strict: invalid sequences fail instead of turning into U+FFFD.
// Other names are looked up in the WHATWG encoding index (e.g. "latin1", "shift_jis").
func Decode(b []byte, encoding string) (string, error) {
	name := strings.ToLower(strings.TrimSpace(encoding))
	if name == "" || name == "utf-8" || name == "utf8" {
		if off := invalidOffset(b); off >= 0 {
			return "", errors.New(errors.ErrDecode,
				fmt.Sprintf("Transcript is not valid UTF-8 (bad byte at offset %d)", off),
				"Set output.encoding in .signkey.yaml to the encoding the tool prints in.")
		}
		return string(b), nil
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Unknown transcript encoding %q", encoding),
			"Use a WHATWG encoding label such as utf-8, latin1 or shift_jis.")
	}

	out, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrDecode,
			fmt.Sprintf("Couldn't decode transcript as %s", name),
			"Check output.encoding matches what the tool prints.")
	}
	return string(out), nil
}

// invalidOffset returns the index of the first byte that starts an invalid
// UTF-8 sequence, or -1 if b is valid.
func invalidOffset(b []byte) int {
	if utf8.Valid(b) {
		return -1
	}
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return -1
}

// NormalizeNewlines rewrites CRLF line endings (what a pty produces) to LF.
func NormalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}
