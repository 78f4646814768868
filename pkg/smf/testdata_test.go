package smf

// specExampleFile is the four-track format 1 example from the Standard
// MIDI Files 1.0 document, using running status in the music tracks.
func specExampleFile() []byte {
	return []byte{
		// MThd, length 6, format 1, 4 tracks, 96 ticks per quarter note
		0x4d, 0x54, 0x68, 0x64, 0, 0, 0, 6, 0, 1, 0, 4, 0, 0x60,

		// Tempo track
		0x4d, 0x54, 0x72, 0x6b, 0, 0, 0, 0x14,
		0, 0xff, 0x58, 4, 4, 2, 0x18, 8,
		0, 0xff, 0x51, 3, 7, 0xa1, 0x20,
		0x83, 0, 0xff, 0x2f, 0,

		// Channel 0
		0x4d, 0x54, 0x72, 0x6b, 0, 0, 0, 0x10,
		0, 0xc0, 5,
		0x81, 0x40, 0x90, 0x4c, 0x20,
		0x81, 0x40, 0x4c, 0,
		0, 0xff, 0x2f, 0,

		// Channel 1
		0x4d, 0x54, 0x72, 0x6b, 0, 0, 0, 0xf,
		0, 0xc1, 0x2e,
		0x60, 0x91, 0x43, 0x40,
		0x82, 0x20, 0x43, 0,
		0, 0xff, 0x2f, 0,

		// Channel 2
		0x4d, 0x54, 0x72, 0x6b, 0, 0, 0, 0x15,
		0, 0xc2, 0x46,
		0, 0x92, 0x30, 0x60,
		0, 0x3c, 0x60,
		0x83, 0, 0x30, 0,
		0, 0x3c, 0,
		0, 0xff, 0x2f, 0,
	}
}

// chunkBytes frames payload under tag.
func chunkBytes(tag string, payload ...byte) []byte {
	t, err := NewTag(tag)
	if err != nil {
		panic(err)
	}
	out, err := AppendChunk(nil, t, payload)
	if err != nil {
		panic(err)
	}
	return out
}
