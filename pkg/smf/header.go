package smf

import (
	"encoding/binary"
	"fmt"
)

// headerLength is the only valid MThd payload size.
const headerLength = 6

// Format is the file organisation declared in the header chunk.
type Format uint16

const (
	// SingleTrack files hold exactly one multi-channel track.
	SingleTrack Format = 0
	// MultiTrackSynchronous files hold simultaneous tracks of one sequence.
	MultiTrackSynchronous Format = 1
	// MultiTrackAsynchronous files hold independent single-track patterns.
	MultiTrackAsynchronous Format = 2
)

// ParseFormat validates the 16-bit format field.
func ParseFormat(v uint16) (Format, error) {
	switch f := Format(v); f {
	case SingleTrack, MultiTrackSynchronous, MultiTrackAsynchronous:
		return f, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrInvalidFormat, v)
	}
}

func (f Format) String() string {
	switch f {
	case SingleTrack:
		return "single-track"
	case MultiTrackSynchronous:
		return "multi-track-synchronous"
	case MultiTrackAsynchronous:
		return "multi-track-asynchronous"
	default:
		return fmt.Sprintf("format(%d)", uint16(f))
	}
}

// Division is the time resolution of delta-times: either
// TicksPerQuarterNote or SMPTE.
type Division interface {
	// Encode returns the 16-bit division field.
	Encode() uint16
	String() string
	isDivision()
}

// TicksPerQuarterNote is a metrical division. Only the low 15 bits are used.
type TicksPerQuarterNote uint16

func (t TicksPerQuarterNote) Encode() uint16 { return uint16(t) & 0x7FFF }

func (t TicksPerQuarterNote) String() string {
	return fmt.Sprintf("%d ticks per quarter note", uint16(t)&0x7FFF)
}

func (TicksPerQuarterNote) isDivision() {}

// SMPTE is a time-code based division. FramesPerSecond holds the negative
// frame rate code as stored in the file (-24, -25, -29 or -30).
type SMPTE struct {
	FramesPerSecond    int8
	SubframeResolution uint8
}

// NewSMPTE builds an SMPTE division from a positive frame rate.
func NewSMPTE(fps, subframes uint8) SMPTE {
	return SMPTE{FramesPerSecond: -int8(fps & 0x7F), SubframeResolution: subframes}
}

// Rate returns the positive frame rate.
func (s SMPTE) Rate() int {
	return -int(s.FramesPerSecond)
}

func (s SMPTE) Encode() uint16 {
	return uint16(uint8(s.FramesPerSecond))<<8 | uint16(s.SubframeResolution)
}

func (s SMPTE) String() string {
	return fmt.Sprintf("%d frames per second, %d ticks per frame", s.Rate(), s.SubframeResolution)
}

func (SMPTE) isDivision() {}

// validateDivision rejects divisions whose encoding would not decode back
// to the same value.
func validateDivision(d Division) error {
	switch d := d.(type) {
	case nil:
		return fmt.Errorf("%w: missing division", ErrInvalidHeaderChunk)
	case TicksPerQuarterNote:
		if d > 0x7FFF {
			return fmt.Errorf("%w: %d ticks per quarter note exceeds 15 bits", ErrInvalidHeaderChunk, uint16(d))
		}
	case SMPTE:
		if d.FramesPerSecond >= 0 {
			return fmt.Errorf("%w: smpte frame rate code %d must be negative", ErrInvalidHeaderChunk, d.FramesPerSecond)
		}
	}
	return nil
}

// DecodeDivision branches on the top bit of the division field.
func DecodeDivision(v uint16) Division {
	if v&0x8000 == 0 {
		return TicksPerQuarterNote(v)
	}
	return SMPTE{
		FramesPerSecond:    int8(v >> 8),
		SubframeResolution: uint8(v),
	}
}

// HeaderChunk is the decoded MThd payload.
type HeaderChunk struct {
	Format     Format
	TrackCount uint16
	Division   Division
}

// ChunkTag returns HeaderTag.
func (HeaderChunk) ChunkTag() Tag { return HeaderTag }

// DecodeHeader decodes an MThd chunk. The tag must be MThd and the length
// exactly 6, regardless of what follows.
func DecodeHeader(c Chunk, payload []byte) (HeaderChunk, error) {
	if c.Tag != HeaderTag {
		return HeaderChunk{}, fmt.Errorf("%w: tag %q", ErrInvalidHeaderChunk, c.Tag.String())
	}
	if c.Length != headerLength || len(payload) != headerLength {
		return HeaderChunk{}, fmt.Errorf("%w: length %d, want %d", ErrInvalidHeaderChunk, c.Length, headerLength)
	}
	format, err := ParseFormat(binary.BigEndian.Uint16(payload[0:2]))
	if err != nil {
		return HeaderChunk{}, err
	}
	return HeaderChunk{
		Format:     format,
		TrackCount: binary.BigEndian.Uint16(payload[2:4]),
		Division:   DecodeDivision(binary.BigEndian.Uint16(payload[4:6])),
	}, nil
}

// AppendPayload appends the 6-byte MThd payload to dst.
func (h HeaderChunk) AppendPayload(dst []byte) []byte {
	var division uint16
	if h.Division != nil {
		division = h.Division.Encode()
	}
	dst = binary.BigEndian.AppendUint16(dst, uint16(h.Format))
	dst = binary.BigEndian.AppendUint16(dst, h.TrackCount)
	return binary.BigEndian.AppendUint16(dst, division)
}
