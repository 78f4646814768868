package smf

import (
	"fmt"
	"io"
	"os"
)

// Logger receives warnings about skipped chunks. *log.Logger from
// charmbracelet/log satisfies it.
type Logger interface {
	Warn(msg interface{}, keyvals ...interface{})
}

// ReaderOptions configure a Reader.
type ReaderOptions struct {
	Decode DecodeOptions
	// SkipInvalid skips chunks whose payload fails to decode, using the
	// declared length to resynchronise on the next chunk.
	SkipInvalid bool
	// MaxChunkSize rejects larger chunks before allocating. Zero means no limit.
	MaxChunkSize uint32
	Logger       Logger
}

// Reader decodes consecutive chunks from a Source.
type Reader struct {
	src     Source
	opts    ReaderOptions
	offset  int64
	skipped int
}

// NewReader creates a Reader over src.
func NewReader(src Source, opts ReaderOptions) *Reader {
	return &Reader{src: src, opts: opts}
}

// Next returns the next chunk, or io.EOF once the source is exhausted.
func (r *Reader) Next() (ParsedChunk, error) {
	for {
		offset := r.offset
		c, err := ReadChunkHeader(r.src)
		if err == io.EOF {
			return nil, io.EOF
		}
		if err != nil {
			return nil, fmt.Errorf("offset %d: %w", offset, err)
		}
		if r.opts.MaxChunkSize > 0 && c.Length > r.opts.MaxChunkSize {
			return nil, &ChunkError{Chunk: c, Offset: offset, Err: fmt.Errorf("%w: %d bytes, limit %d", ErrChunkTooLarge, c.Length, r.opts.MaxChunkSize)}
		}
		payload, err := readPayload(r.src, c)
		if err != nil {
			return nil, &ChunkError{Chunk: c, Offset: offset, Err: err}
		}
		r.offset += chunkHeaderSize + int64(c.Length)

		parsed, err := DecodePayload(c, payload, r.opts.Decode)
		if err == nil {
			return parsed, nil
		}
		cerr := &ChunkError{Chunk: c, Offset: offset, Err: err}
		if !r.opts.SkipInvalid {
			return nil, cerr
		}
		r.skipped++
		if r.opts.Logger != nil {
			r.opts.Logger.Warn("skipping chunk", "tag", c.Tag.String(), "offset", offset, "length", c.Length, "err", err)
		}
	}
}

// Skipped returns the number of chunks dropped under SkipInvalid.
func (r *Reader) Skipped() int {
	return r.skipped
}

// ReadAll decodes chunks until the source is exhausted.
func ReadAll(src Source, opts ReaderOptions) ([]ParsedChunk, error) {
	return NewReader(src, opts).ReadAll()
}

// ReadAll returns the remaining chunks. Skipped reports how many were
// dropped along the way.
func (r *Reader) ReadAll() ([]ParsedChunk, error) {
	var chunks []ParsedChunk
	for {
		c, err := r.Next()
		if isEndOfStream(err) {
			return chunks, nil
		}
		if err != nil {
			return chunks, err
		}
		chunks = append(chunks, c)
	}
}

// ReadFile reads and decodes the file at path.
func ReadFile(path string, opts ReaderOptions) ([]ParsedChunk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read MIDI file: %w", err)
	}
	return ReadAll(NewCursor(data), opts)
}

// WriteTo encodes chunks to w.
func WriteTo(w io.Writer, chunks []ParsedChunk, opts EncodeOptions) (int64, error) {
	data, err := EncodeAll(chunks, opts)
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// WriteFile encodes chunks to the file at path.
func WriteFile(path string, chunks []ParsedChunk, opts EncodeOptions) error {
	data, err := EncodeAll(chunks, opts)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// File is a convenience view over the chunks of one MIDI file.
type File struct {
	Chunks []ParsedChunk
}

// Header returns the first header chunk.
func (f File) Header() (HeaderChunk, bool) {
	for _, c := range f.Chunks {
		if h, ok := c.(HeaderChunk); ok {
			return h, true
		}
	}
	return HeaderChunk{}, false
}

// Tracks returns the track chunks in file order.
func (f File) Tracks() []TrackChunk {
	var tracks []TrackChunk
	for _, c := range f.Chunks {
		if t, ok := c.(TrackChunk); ok {
			tracks = append(tracks, t)
		}
	}
	return tracks
}

// Unknown returns the chunks passed through uninterpreted.
func (f File) Unknown() []UnknownChunk {
	var unknown []UnknownChunk
	for _, c := range f.Chunks {
		if u, ok := c.(UnknownChunk); ok {
			unknown = append(unknown, u)
		}
	}
	return unknown
}
