package smf

import (
	"errors"
	"fmt"
	"io"
)

// ParsedChunk is a decoded chunk: HeaderChunk, TrackChunk or UnknownChunk.
type ParsedChunk interface {
	ChunkTag() Tag
}

// UnknownChunk carries a chunk the codec does not interpret. Its payload
// is kept verbatim and re-encodes byte for byte.
type UnknownChunk struct {
	Tag     Tag
	Payload []byte
}

// ChunkTag returns the chunk's own tag.
func (u UnknownChunk) ChunkTag() Tag { return u.Tag }

type positioner interface {
	Pos() int
}

// DecodeChunk frames the next chunk from src and decodes its payload by
// tag. It returns io.EOF, unwrapped, when src has no more chunks. Failures
// after the chunk header was read are returned as *ChunkError.
func DecodeChunk(src Source, opts DecodeOptions) (ParsedChunk, error) {
	offset := int64(-1)
	if p, ok := src.(positioner); ok {
		offset = int64(p.Pos())
	}
	c, err := ReadChunkHeader(src)
	if err != nil {
		return nil, err
	}
	payload, err := readPayload(src, c)
	if err != nil {
		return nil, &ChunkError{Chunk: c, Offset: offset, Err: err}
	}
	parsed, err := DecodePayload(c, payload, opts)
	if err != nil {
		return nil, &ChunkError{Chunk: c, Offset: offset, Err: err}
	}
	return parsed, nil
}

// DecodePayload dispatches an already framed chunk on its tag.
func DecodePayload(c Chunk, payload []byte, opts DecodeOptions) (ParsedChunk, error) {
	switch c.Tag {
	case HeaderTag:
		return DecodeHeader(c, payload)
	case TrackTag:
		return DecodeTrack(payload, opts)
	default:
		return UnknownChunk{Tag: c.Tag, Payload: cloneData(payload)}, nil
	}
}

// EncodeChunk serialises p including its chunk header.
func EncodeChunk(p ParsedChunk, opts EncodeOptions) ([]byte, error) {
	return AppendChunkTo(nil, p, opts)
}

// AppendChunkTo appends the framed encoding of p to dst. The length field
// is always computed from the encoded payload.
func AppendChunkTo(dst []byte, p ParsedChunk, opts EncodeOptions) ([]byte, error) {
	var payload []byte
	switch c := p.(type) {
	case HeaderChunk:
		if _, err := ParseFormat(uint16(c.Format)); err != nil {
			return dst, err
		}
		if err := validateDivision(c.Division); err != nil {
			return dst, err
		}
		payload = c.AppendPayload(make([]byte, 0, headerLength))
	case TrackChunk:
		var err error
		if payload, err = c.AppendPayload(nil, opts); err != nil {
			return dst, fmt.Errorf("track: %w", err)
		}
	case UnknownChunk:
		payload = c.Payload
	case nil:
		return dst, errors.New("smf: nil chunk")
	default:
		return dst, fmt.Errorf("smf: unsupported chunk type %T", p)
	}
	return AppendChunk(dst, p.ChunkTag(), payload)
}

// DecodeAll decodes every chunk in data.
func DecodeAll(data []byte, opts DecodeOptions) ([]ParsedChunk, error) {
	return ReadAll(NewCursor(data), ReaderOptions{Decode: opts})
}

// EncodeAll encodes chunks back to back.
func EncodeAll(chunks []ParsedChunk, opts EncodeOptions) ([]byte, error) {
	var out []byte
	for i, c := range chunks {
		var err error
		if out, err = AppendChunkTo(out, c, opts); err != nil {
			return nil, fmt.Errorf("chunk %d: %w", i, err)
		}
	}
	return out, nil
}

// isEndOfStream reports the normal terminal condition of DecodeChunk.
func isEndOfStream(err error) bool {
	return err == io.EOF
}
