package smf

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Tag is the 4-byte chunk type. It is treated as ASCII for display only.
type Tag [4]byte

// Known chunk tags.
var (
	HeaderTag = Tag{'M', 'T', 'h', 'd'}
	TrackTag  = Tag{'M', 'T', 'r', 'k'}
)

// NewTag builds a Tag from a 4-character string.
func NewTag(s string) (Tag, error) {
	var t Tag
	if len(s) != len(t) {
		return t, fmt.Errorf("smf: chunk tag %q must be 4 bytes", s)
	}
	copy(t[:], s)
	return t, nil
}

func (t Tag) String() string {
	return string(t[:])
}

// chunkHeaderSize is the tag plus the 32-bit length.
const chunkHeaderSize = 8

// Chunk is a framed chunk header. Length is the exact payload size.
type Chunk struct {
	Tag    Tag
	Length uint32
}

// errSource is implemented by sources that remember a failed read, so an
// empty source can be told apart from a broken one.
type errSource interface {
	Err() error
}

// ReadChunkHeader reads the 8-byte chunk header. It returns io.EOF when
// the source is already exhausted, or the source's read error if it stopped
// on one.
func ReadChunkHeader(src Source) (Chunk, error) {
	if src.Remaining() == 0 {
		if s, ok := src.(errSource); ok && s.Err() != nil {
			return Chunk{}, fmt.Errorf("chunk header: %w", s.Err())
		}
		return Chunk{}, io.EOF
	}
	b, err := src.ReadExact(chunkHeaderSize)
	if err != nil {
		return Chunk{}, fmt.Errorf("chunk header: %w", err)
	}
	var c Chunk
	copy(c.Tag[:], b[:4])
	c.Length = binary.BigEndian.Uint32(b[4:])
	return c, nil
}

// ReadChunk frames the next chunk and returns its header and exactly
// Length payload bytes. End of stream is reported as io.EOF.
func ReadChunk(src Source) (Chunk, []byte, error) {
	c, err := ReadChunkHeader(src)
	if err != nil {
		return c, nil, err
	}
	payload, err := readPayload(src, c)
	if err != nil {
		return c, nil, err
	}
	return c, payload, nil
}

func readPayload(src Source, c Chunk) ([]byte, error) {
	if uint64(c.Length) > uint64(math.MaxInt) {
		return nil, fmt.Errorf("%w: %d bytes", ErrChunkTooLarge, c.Length)
	}
	payload, err := src.ReadExact(int(c.Length))
	if err != nil {
		return nil, fmt.Errorf("chunk %q payload: %w", c.Tag.String(), err)
	}
	return payload, nil
}

// AppendChunk appends tag, the length of payload and payload to dst.
func AppendChunk(dst []byte, tag Tag, payload []byte) ([]byte, error) {
	if uint64(len(payload)) > math.MaxUint32 {
		return dst, fmt.Errorf("%w: %d bytes", ErrChunkTooLarge, len(payload))
	}
	dst = append(dst, tag[:]...)
	dst = binary.BigEndian.AppendUint32(dst, uint32(len(payload)))
	return append(dst, payload...), nil
}

// WriteChunk writes a framed chunk to w.
func WriteChunk(w io.Writer, tag Tag, payload []byte) (int64, error) {
	if uint64(len(payload)) > math.MaxUint32 {
		return 0, fmt.Errorf("%w: %d bytes", ErrChunkTooLarge, len(payload))
	}
	var hdr [chunkHeaderSize]byte
	copy(hdr[:4], tag[:])
	binary.BigEndian.PutUint32(hdr[4:], uint32(len(payload)))
	n, err := w.Write(hdr[:])
	if err != nil {
		return int64(n), err
	}
	m, err := w.Write(payload)
	return int64(n + m), err
}
