package smf

import (
	"errors"
	"fmt"
	"io"
)

// Decode and encode errors. All of them are returned wrapped, match with errors.Is.
var (
	ErrUnexpectedEOF       = io.ErrUnexpectedEOF
	ErrInvalidHeaderChunk  = errors.New("smf: invalid header chunk")
	ErrInvalidFormat       = errors.New("smf: invalid format")
	ErrMalformedQuantity   = errors.New("smf: malformed variable-length quantity")
	ErrNoRunningStatus     = errors.New("smf: data byte without running status")
	ErrTrackLengthMismatch = errors.New("smf: track event overruns chunk length")
	ErrTruncatedTrack      = errors.New("smf: truncated track")
	ErrInvalidStatusByte   = errors.New("smf: invalid status byte")
	ErrInvalidMessage      = errors.New("smf: invalid message")
	ErrChunkTooLarge       = errors.New("smf: chunk too large")
)

// ChunkError reports a failure inside a chunk whose header was framed
// successfully. Chunk.Length can be used to skip to the next chunk.
type ChunkError struct {
	Chunk  Chunk
	Offset int64 // offset of the chunk header in the stream
	Err    error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("chunk %q at offset %d (length %d): %v", e.Chunk.Tag.String(), e.Offset, e.Chunk.Length, e.Err)
}

func (e *ChunkError) Unwrap() error {
	return e.Err
}
