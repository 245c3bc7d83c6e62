// Package term provides the per-session render surface and the outbound
// byte forwarding path that connects it to the transport channel.
package term

import "strings"

// Frame is the drawing context handed to an application's Draw call.
// It is a fixed-size grid of lines sized to the client terminal; lines
// the application does not set render empty.
type Frame struct {
	width  int
	height int
	lines  []string
}

// NewFrame creates an empty frame with the given dimensions.
func NewFrame(width, height int) *Frame {
	return &Frame{
		width:  width,
		height: height,
		lines:  make([]string, height),
	}
}

// Size returns the frame dimensions in columns and rows.
func (f *Frame) Size() (width, height int) {
	return f.width, f.height
}

// SetLine sets the content of one row. Rows outside the frame are ignored.
func (f *Frame) SetLine(y int, s string) {
	if y < 0 || y >= f.height {
		return
	}
	f.lines[y] = s
}

// SetContent fills the frame from a multi-line string, starting at the
// top row. Lines beyond the frame height are clipped.
func (f *Frame) SetContent(s string) {
	for y, line := range strings.Split(s, "\n") {
		f.SetLine(y, line)
	}
}

// Line returns the content of one row, or "" if out of range.
func (f *Frame) Line(y int) string {
	if y < 0 || y >= f.height {
		return ""
	}
	return f.lines[y]
}
