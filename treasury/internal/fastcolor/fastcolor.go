// Package fastcolor writes fixed-width, optionally colored columns to
// a buffered writer without going through fmt.
package fastcolor

import (
	"bufio"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is the ANSI escape prefix applied to a column.
type Color string

const (
	Reset    Color = ""
	Bold     Color = "\x1b[1m"
	FgRed    Color = "\x1b[31m"
	FgGreen  Color = "\x1b[32m"
	FgYellow Color = "\x1b[33m"
	FgBlue   Color = "\x1b[34m"
)

const escReset = "\x1b[0m"

// Enabled gates all escape output. Leave false when stdout is not a
// terminal.
var Enabled bool

// RGB returns a 24-bit foreground color.
func RGB(c colorful.Color) Color {
	r, g, b := c.RGB255()
	return Color("\x1b[38;2;" +
		strconv.Itoa(int(r)) + ";" +
		strconv.Itoa(int(g)) + ";" +
		strconv.Itoa(int(b)) + "m")
}

// WriteStringFixed writes s padded or truncated to exactly width
// runes, right-aligned when requested.
func (c Color) WriteStringFixed(buf *bufio.Writer, s string, width int, rightAlign bool) {
	if width < 1 {
		width = 1
	}
	if utf8.RuneCountInString(s) > width {
		s = string([]rune(s)[:width])
	}
	pad := strings.Repeat(" ", width-utf8.RuneCountInString(s))

	if rightAlign {
		buf.WriteString(pad)
	}
	if Enabled && c != Reset {
		buf.WriteString(string(c))
		buf.WriteString(s)
		buf.WriteString(escReset)
	} else {
		buf.WriteString(s)
	}
	if !rightAlign {
		buf.WriteString(pad)
	}
}
