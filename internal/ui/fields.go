package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Field is one labelled line in a summary block.
type Field struct {
	Label string
	Value string
}

// RenderFields writes a title followed by aligned label/value lines:
//
//	✓ Public key new.key.pub
//	  Key ID     0807060504030201
//	  Algorithm  Ed25519
func RenderFields(w io.Writer, title string, fields []Field) {
	width := 0
	for _, f := range fields {
		if n := lipgloss.Width(f.Label); n > width {
			width = n
		}
	}

	fmt.Fprintf(w, "%s %s\n", SuccessStyle().Render(SymbolSuccess), title)

	label := MutedStyle()
	for _, f := range fields {
		pad := strings.Repeat(" ", width-lipgloss.Width(f.Label))
		fmt.Fprintf(w, "  %s%s  %s\n", label.Render(f.Label), pad, f.Value)
	}
}

// RenderError writes err in the standard failure layout, coloring the first line.
func RenderError(w io.Writer, err error) {
	msg := strings.TrimRight(err.Error(), "\n")
	if !strings.HasPrefix(msg, SymbolFail) {
		msg = SymbolFail + " " + msg
	}

	first, rest, _ := strings.Cut(msg, "\n")
	fmt.Fprintln(w, ErrorStyle().Render(first))
	if rest != "" {
		fmt.Fprintln(w, rest)
	}
}
