package term

import (
	"bytes"
	"io"
)

// Surface is the drawable buffer bound to one session's outbound sink.
// It starts with zero dimensions and draws nothing until the client
// reports a terminal size. Surfaces are not internally synchronized:
// resize and render calls are serialized by the session registry guard.
type Surface struct {
	width  int
	height int
	sink   io.Writer
	buf    bytes.Buffer
}

// NewSurface creates a surface writing composed frames to sink.
func NewSurface(sink io.Writer) *Surface {
	return &Surface{sink: sink}
}

// Resize updates the surface dimensions. It takes effect on the next
// render.
func (s *Surface) Resize(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	s.width = width
	s.height = height
}

// Size returns the current dimensions in columns and rows.
func (s *Surface) Size() (width, height int) {
	return s.width, s.height
}

// Render invokes draw with a fresh frame and writes the composed frame
// to the sink as a single redraw: cursor home, every line rewritten with
// erase-to-end, remainder of the screen cleared. A surface with no
// reported size renders nothing.
func (s *Surface) Render(draw func(*Frame)) error {
	if s.width == 0 || s.height == 0 {
		return nil
	}

	f := NewFrame(s.width, s.height)
	draw(f)

	s.buf.Reset()
	s.buf.WriteString("\x1b[?25l\x1b[H")
	for y := 0; y < s.height; y++ {
		s.buf.WriteString(f.lines[y])
		s.buf.WriteString("\x1b[K")
		if y < s.height-1 {
			s.buf.WriteString("\r\n")
		}
	}
	s.buf.WriteString("\x1b[J")

	_, err := s.sink.Write(s.buf.Bytes())
	return err
}
