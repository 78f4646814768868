package smf

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"slices"
)

// Source is the byte cursor the codec consumes. Implementations never
// move backwards; Peek is the only way to look ahead.
type Source interface {
	// Remaining reports how many bytes can be read without blocking.
	// Zero means the source is exhausted.
	Remaining() int
	// ReadExact consumes exactly n bytes or fails with ErrUnexpectedEOF.
	ReadExact(n int) ([]byte, error)
	// Peek returns the next n bytes without consuming them.
	Peek(n int) ([]byte, error)
}

// Cursor is an in-memory Source over a byte slice. Slices returned by
// ReadExact and Peek alias the underlying buffer.
type Cursor struct {
	data []byte
	pos  int
}

// NewCursor creates a Cursor positioned at the start of data.
func NewCursor(data []byte) *Cursor {
	return &Cursor{data: data}
}

// Pos returns the number of bytes consumed so far.
func (c *Cursor) Pos() int {
	return c.pos
}

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int {
	return len(c.data) - c.pos
}

// ReadExact consumes n bytes.
func (c *Cursor) ReadExact(n int) ([]byte, error) {
	b, err := c.Peek(n)
	if err != nil {
		return nil, err
	}
	c.pos += n
	return b, nil
}

// Peek returns the next n bytes without advancing.
func (c *Cursor) Peek(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("smf: negative read of %d bytes", n)
	}
	if c.Remaining() < n {
		return nil, fmt.Errorf("need %d bytes, have %d: %w", n, c.Remaining(), ErrUnexpectedEOF)
	}
	return c.data[c.pos : c.pos+n : c.pos+n], nil
}

// readByte is a shortcut used by the VLQ and event codecs.
func readByte(src Source) (byte, error) {
	b, err := src.ReadExact(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// StreamSource adapts an io.Reader to Source. Bytes returned by ReadExact
// are freshly allocated; Peek results are only valid until the next read.
type StreamSource struct {
	br  *bufio.Reader
	err error
}

// NewStreamSource wraps r in a buffered Source.
func NewStreamSource(r io.Reader) *StreamSource {
	return &StreamSource{br: bufio.NewReader(r)}
}

// Remaining returns the number of buffered bytes, filling the buffer
// first. It returns 0 only once the underlying reader is exhausted.
func (s *StreamSource) Remaining() int {
	if s.err != nil {
		return 0
	}
	if _, err := s.br.Peek(1); err != nil {
		if !errors.Is(err, io.EOF) {
			s.err = err
		}
		return 0
	}
	return s.br.Buffered()
}

// Err returns the first non-EOF read error seen by the source.
func (s *StreamSource) Err() error {
	return s.err
}

// ReadExact consumes exactly n bytes from the stream.
func (s *StreamSource) ReadExact(n int) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	if n < 0 {
		return nil, fmt.Errorf("smf: negative read of %d bytes", n)
	}
	// Grow with the data actually read so a bogus declared length cannot
	// force a huge allocation up front.
	buf := make([]byte, 0, min(n, streamReadStep))
	for len(buf) < n {
		start := len(buf)
		step := min(n-start, streamReadStep)
		buf = slices.Grow(buf, step)[:start+step]
		got, err := io.ReadFull(s.br, buf[start:])
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, fmt.Errorf("need %d bytes, have %d: %w", n, start+got, ErrUnexpectedEOF)
			}
			s.err = err
			return nil, err
		}
	}
	return buf, nil
}

// streamReadStep bounds each allocation made by StreamSource.ReadExact.
const streamReadStep = 64 << 10

// Peek returns the next n bytes without consuming them. n is limited by
// the buffer size.
func (s *StreamSource) Peek(n int) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	b, err := s.br.Peek(n)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("need %d bytes, have %d: %w", n, len(b), ErrUnexpectedEOF)
		}
		return nil, err
	}
	return b, nil
}
