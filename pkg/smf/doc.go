// Package smf reads and writes Standard MIDI Files at the chunk level.
//
// A file is a sequence of chunks: one MThd header followed by MTrk tracks,
// plus any vendor chunks, which are kept verbatim as UnknownChunk. Decoding
// is a pure transformation over bytes supplied by a Source; encoding is its
// exact inverse and reproduces the input for any decoded value.
//
//	r := smf.NewReader(smf.NewCursor(data), smf.ReaderOptions{})
//	for {
//		chunk, err := r.Next()
//		if err == io.EOF {
//			break
//		}
//		...
//	}
//
// Nothing in the package is shared between calls, so independent chunks
// can be decoded concurrently.
package smf
