package smf

import (
	"encoding/binary"
	"fmt"
	"math/bits"
)

// Typed views of common meta events. The accessors report false when the
// type or the payload length does not match; Data stays authoritative.

// IsText reports whether m is one of the text-like meta events (0x01-0x0F).
func (m Meta) IsText() bool {
	return m.Type >= MetaText && m.Type <= 0x0F
}

// IsEndOfTrack reports whether m is an end-of-track event.
func (m Meta) IsEndOfTrack() bool {
	return m.Type == MetaEndOfTrack
}

// SequenceNumber decodes a sequence number event.
func (m Meta) SequenceNumber() (uint16, bool) {
	if m.Type != MetaSequenceNumber || len(m.Data) != 2 {
		return 0, false
	}
	return binary.BigEndian.Uint16(m.Data), true
}

// ChannelPrefix decodes a MIDI channel prefix event.
func (m Meta) ChannelPrefix() (uint8, bool) {
	if m.Type != MetaChannelPrefix || len(m.Data) != 1 {
		return 0, false
	}
	return m.Data[0], true
}

// Tempo returns microseconds per quarter note.
func (m Meta) Tempo() (uint32, bool) {
	if m.Type != MetaTempo || len(m.Data) != 3 {
		return 0, false
	}
	return uint32(m.Data[0])<<16 | uint32(m.Data[1])<<8 | uint32(m.Data[2]), true
}

// BPM converts a tempo event to beats per minute.
func (m Meta) BPM() (float64, bool) {
	us, ok := m.Tempo()
	if !ok || us == 0 {
		return 0, false
	}
	return 60_000_000 / float64(us), true
}

// TimeSignature is the decoded 0x58 meta event. Denominator is the note
// value (4 for quarter notes), stored as a power of two on the wire.
type TimeSignature struct {
	Numerator               uint8
	Denominator             uint32
	ClocksPerClick          uint8
	ThirtySecondsPerQuarter uint8
}

// TimeSignature decodes a time signature event.
func (m Meta) TimeSignature() (TimeSignature, bool) {
	if m.Type != MetaTimeSignature || len(m.Data) != 4 || m.Data[1] > 31 {
		return TimeSignature{}, false
	}
	return TimeSignature{
		Numerator:               m.Data[0],
		Denominator:             1 << m.Data[1],
		ClocksPerClick:          m.Data[2],
		ThirtySecondsPerQuarter: m.Data[3],
	}, true
}

// KeySignature is the decoded 0x59 meta event. SharpsFlats is negative
// for flats.
type KeySignature struct {
	SharpsFlats int8
	Minor       bool
}

// KeySignature decodes a key signature event.
func (m Meta) KeySignature() (KeySignature, bool) {
	if m.Type != MetaKeySignature || len(m.Data) != 2 {
		return KeySignature{}, false
	}
	return KeySignature{SharpsFlats: int8(m.Data[0]), Minor: m.Data[1] != 0}, true
}

// SMPTEOffset is the decoded 0x54 meta event.
type SMPTEOffset struct {
	Hours, Minutes, Seconds, Frames, Subframes uint8
}

// SMPTEOffset decodes an SMPTE offset event.
func (m Meta) SMPTEOffset() (SMPTEOffset, bool) {
	if m.Type != MetaSMPTEOffset || len(m.Data) != 5 {
		return SMPTEOffset{}, false
	}
	d := m.Data
	return SMPTEOffset{Hours: d[0], Minutes: d[1], Seconds: d[2], Frames: d[3], Subframes: d[4]}, true
}

// EndOfTrackMeta builds the end-of-track event.
func EndOfTrackMeta() Meta {
	return Meta{Type: MetaEndOfTrack}
}

// TempoMeta builds a tempo event from microseconds per quarter note.
func TempoMeta(usPerQuarter uint32) (Meta, error) {
	if usPerQuarter > 0xFFFFFF {
		return Meta{}, fmt.Errorf("%w: tempo %d does not fit 24 bits", ErrInvalidMessage, usPerQuarter)
	}
	return Meta{Type: MetaTempo, Data: []byte{byte(usPerQuarter >> 16), byte(usPerQuarter >> 8), byte(usPerQuarter)}}, nil
}

// TimeSignatureMeta builds a time signature event.
func TimeSignatureMeta(ts TimeSignature) (Meta, error) {
	if ts.Denominator == 0 || ts.Denominator&(ts.Denominator-1) != 0 {
		return Meta{}, fmt.Errorf("%w: denominator %d is not a power of two", ErrInvalidMessage, ts.Denominator)
	}
	pow := uint8(bits.TrailingZeros32(ts.Denominator))
	return Meta{Type: MetaTimeSignature, Data: []byte{ts.Numerator, pow, ts.ClocksPerClick, ts.ThirtySecondsPerQuarter}}, nil
}

// KeySignatureMeta builds a key signature event.
func KeySignatureMeta(ks KeySignature) Meta {
	var minor byte
	if ks.Minor {
		minor = 1
	}
	return Meta{Type: MetaKeySignature, Data: []byte{byte(ks.SharpsFlats), minor}}
}

// TextMeta builds a text-like meta event of type t.
func TextMeta(t MetaType, text string) Meta {
	return Meta{Type: t, Data: cloneData([]byte(text))}
}
