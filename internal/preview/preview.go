// Package preview formats generated files for the terminal.
package preview

import (
	"bytes"
	"io"
	"strings"

	"github.com/alecthomas/chroma/lexers"
	"github.com/alecthomas/chroma/quick"
	"github.com/aymanbagabas/go-udiff"
	"github.com/muesli/termenv"
)

const style = "monokai"

// Profile returns the color profile w supports, honoring NO_COLOR and
// CLICOLOR_FORCE.
func Profile(w io.Writer) termenv.Profile {
	return termenv.NewOutput(w).EnvColorProfile()
}

// Formatter maps a color profile to a chroma formatter name. Ascii yields
// "" meaning no highlighting.
func Formatter(p termenv.Profile) string {
	switch p {
	case termenv.TrueColor:
		return "terminal16m"
	case termenv.ANSI256:
		return "terminal256"
	case termenv.ANSI:
		return "terminal"
	default:
		return ""
	}
}

// Lexer picks a chroma lexer name for name, falling back to content
// analysis. Empty when nothing matches.
func Lexer(name, content string) string {
	if l := lexers.Match(name); l != nil {
		return l.Config().Name
	}
	if l := lexers.Analyse(content); l != nil {
		return l.Config().Name
	}
	return ""
}

// Highlight colors content for the given profile. It returns content
// unchanged when the profile has no colors, the file type is unknown, or
// highlighting fails.
func Highlight(name, content string, p termenv.Profile) string {
	formatter := Formatter(p)
	lexer := Lexer(name, content)
	if formatter == "" || lexer == "" {
		return content
	}
	var buf bytes.Buffer
	if err := quick.Highlight(&buf, content, lexer, formatter, style); err != nil {
		return content
	}
	return buf.String()
}

// Diff returns a unified diff from old to new for path, or "" when the
// contents are equal.
func Diff(path string, old, new []byte) string {
	a := ensureTrailingNewline(string(old))
	b := ensureTrailingNewline(string(new))
	if a == b {
		return ""
	}
	return udiff.Unified("a/"+path, "b/"+path, a, b)
}

// Binary reports whether data looks like a binary file.
func Binary(data []byte) bool {
	n := len(data)
	if n > 8000 {
		n = 8000
	}
	return bytes.IndexByte(data[:n], 0) >= 0
}

func ensureTrailingNewline(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
