package smf

import "fmt"

// Message is the payload of a track event: ChannelVoice, Meta or SysEx.
type Message interface {
	String() string
	isMessage()
}

// VoiceKind is the high nibble of a channel voice status byte.
type VoiceKind uint8

const (
	NoteOff         VoiceKind = 0x8
	NoteOn          VoiceKind = 0x9
	PolyPressure    VoiceKind = 0xA
	ControlChange   VoiceKind = 0xB
	ProgramChange   VoiceKind = 0xC
	ChannelPressure VoiceKind = 0xD
	PitchBend       VoiceKind = 0xE
)

// Valid reports whether k is a channel voice nibble.
func (k VoiceKind) Valid() bool {
	return k >= NoteOff && k <= PitchBend
}

// DataLen returns the number of data bytes that follow the status.
func (k VoiceKind) DataLen() int {
	if k == ProgramChange || k == ChannelPressure {
		return 1
	}
	return 2
}

func (k VoiceKind) String() string {
	switch k {
	case NoteOff:
		return "note-off"
	case NoteOn:
		return "note-on"
	case PolyPressure:
		return "poly-pressure"
	case ControlChange:
		return "control-change"
	case ProgramChange:
		return "program-change"
	case ChannelPressure:
		return "channel-pressure"
	case PitchBend:
		return "pitch-bend"
	default:
		return fmt.Sprintf("voice(%#x)", uint8(k))
	}
}

// ChannelVoice is a channel message. Data2 is zero for one-byte kinds.
// Running is set when the status byte was omitted on the wire, and asks
// the encoder to omit it again when that is legal.
type ChannelVoice struct {
	Kind    VoiceKind
	Channel uint8
	Data1   uint8
	Data2   uint8
	Running bool
}

// Status returns the full status byte.
func (m ChannelVoice) Status() byte {
	return byte(m.Kind)<<4 | m.Channel&0x0F
}

func (m ChannelVoice) validate() error {
	switch {
	case !m.Kind.Valid():
		return fmt.Errorf("%w: voice kind %#x", ErrInvalidMessage, uint8(m.Kind))
	case m.Channel > 15:
		return fmt.Errorf("%w: channel %d", ErrInvalidMessage, m.Channel)
	case m.Data1 > 0x7F, m.Kind.DataLen() == 2 && m.Data2 > 0x7F:
		return fmt.Errorf("%w: data byte above 0x7F", ErrInvalidMessage)
	case m.Kind.DataLen() == 1 && m.Data2 != 0:
		return fmt.Errorf("%w: %s carries one data byte, Data2 is %d", ErrInvalidMessage, m.Kind, m.Data2)
	}
	return nil
}

func (m ChannelVoice) String() string {
	if m.Kind.DataLen() == 1 {
		return fmt.Sprintf("%s ch=%d %d", m.Kind, m.Channel, m.Data1)
	}
	return fmt.Sprintf("%s ch=%d %d %d", m.Kind, m.Channel, m.Data1, m.Data2)
}

func (ChannelVoice) isMessage() {}

// NoteOnMsg builds a note-on message.
func NoteOnMsg(channel, key, velocity uint8) ChannelVoice {
	return ChannelVoice{Kind: NoteOn, Channel: channel, Data1: key, Data2: velocity}
}

// NoteOffMsg builds a note-off message.
func NoteOffMsg(channel, key, velocity uint8) ChannelVoice {
	return ChannelVoice{Kind: NoteOff, Channel: channel, Data1: key, Data2: velocity}
}

// ControlChangeMsg builds a control change message.
func ControlChangeMsg(channel, controller, value uint8) ChannelVoice {
	return ChannelVoice{Kind: ControlChange, Channel: channel, Data1: controller, Data2: value}
}

// ProgramChangeMsg builds a program change message.
func ProgramChangeMsg(channel, program uint8) ChannelVoice {
	return ChannelVoice{Kind: ProgramChange, Channel: channel, Data1: program}
}

// PitchBendMsg builds a pitch bend message from a 14-bit value
// (0x2000 is centre).
func PitchBendMsg(channel uint8, value uint16) ChannelVoice {
	return ChannelVoice{Kind: PitchBend, Channel: channel, Data1: uint8(value & 0x7F), Data2: uint8(value>>7) & 0x7F}
}

// PitchBendValue returns the 14-bit pitch bend value, LSB first on the wire.
func (m ChannelVoice) PitchBendValue() (uint16, bool) {
	if m.Kind != PitchBend {
		return 0, false
	}
	return uint16(m.Data2)<<7 | uint16(m.Data1), true
}

// MetaType identifies a meta event.
type MetaType uint8

const (
	MetaSequenceNumber    MetaType = 0x00
	MetaText              MetaType = 0x01
	MetaCopyright         MetaType = 0x02
	MetaTrackName         MetaType = 0x03
	MetaInstrumentName    MetaType = 0x04
	MetaLyric             MetaType = 0x05
	MetaMarker            MetaType = 0x06
	MetaCuePoint          MetaType = 0x07
	MetaChannelPrefix     MetaType = 0x20
	MetaEndOfTrack        MetaType = 0x2F
	MetaTempo             MetaType = 0x51
	MetaSMPTEOffset       MetaType = 0x54
	MetaTimeSignature     MetaType = 0x58
	MetaKeySignature      MetaType = 0x59
	MetaSequencerSpecific MetaType = 0x7F
)

var metaNames = map[MetaType]string{
	MetaSequenceNumber:    "sequence-number",
	MetaText:              "text",
	MetaCopyright:         "copyright",
	MetaTrackName:         "track-name",
	MetaInstrumentName:    "instrument-name",
	MetaLyric:             "lyric",
	MetaMarker:            "marker",
	MetaCuePoint:          "cue-point",
	MetaChannelPrefix:     "channel-prefix",
	MetaEndOfTrack:        "end-of-track",
	MetaTempo:             "tempo",
	MetaSMPTEOffset:       "smpte-offset",
	MetaTimeSignature:     "time-signature",
	MetaKeySignature:      "key-signature",
	MetaSequencerSpecific: "sequencer-specific",
}

func (t MetaType) String() string {
	if name, ok := metaNames[t]; ok {
		return name
	}
	return fmt.Sprintf("meta(%#02x)", uint8(t))
}

// Meta is a meta event: FF <type> <vlq length> <data>.
type Meta struct {
	Type MetaType
	Data []byte
}

func (m Meta) String() string {
	if m.IsText() {
		return fmt.Sprintf("%s %q", m.Type, m.Data)
	}
	return fmt.Sprintf("%s % X", m.Type, m.Data)
}

func (Meta) isMessage() {}

// Status bytes of system exclusive events.
const (
	SysExStart  byte = 0xF0
	SysExEscape byte = 0xF7
	metaStatus  byte = 0xFF
)

// SysEx is a system exclusive event: <status> <vlq length> <data>. Data
// includes the terminating 0xF7 when present. Status is 0xF0 or 0xF7;
// lenient decoding also keeps other 0xF1-0xFE system statuses here.
type SysEx struct {
	Status byte
	Data   []byte
}

func (m SysEx) String() string {
	return fmt.Sprintf("sysex(%#02x) % X", m.Status, m.Data)
}

func (SysEx) isMessage() {}
