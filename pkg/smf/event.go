package smf

import (
	"bytes"
	"fmt"
)

// TrackEvent is a delta-time followed by a message. Delta is in ticks of
// the header's division.
type TrackEvent struct {
	Delta   uint32
	Message Message
}

// RunningStatus is the per-track status register. The zero value is empty.
// A track decode or encode pass owns one and discards it at the end.
type RunningStatus struct {
	status byte
}

// Status returns the last channel voice status byte, if any.
func (r *RunningStatus) Status() (byte, bool) {
	return r.status, r.status != 0
}

// Reset empties the register.
func (r *RunningStatus) Reset() {
	r.status = 0
}

func (r *RunningStatus) set(status byte) {
	r.status = status
}

// EventDecoder decodes track events. Strict rejects system common and
// real-time status bytes, which are not legal inside a track chunk.
type EventDecoder struct {
	Strict bool
}

// DecodeEvent decodes a delta-time and the message that follows it.
func (d EventDecoder) DecodeEvent(src Source, rs *RunningStatus) (TrackEvent, error) {
	delta, err := ReadVLQ(src)
	if err != nil {
		return TrackEvent{}, fmt.Errorf("delta-time: %w", err)
	}
	msg, err := d.DecodeMessage(src, rs)
	if err != nil {
		return TrackEvent{}, err
	}
	return TrackEvent{Delta: delta, Message: msg}, nil
}

// DecodeMessage decodes one message, updating rs.
func (d EventDecoder) DecodeMessage(src Source, rs *RunningStatus) (Message, error) {
	peek, err := src.Peek(1)
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	status := peek[0]

	// No status byte: the peeked byte is the first data byte.
	if status&0x80 == 0 {
		prev, ok := rs.Status()
		if !ok {
			return nil, fmt.Errorf("%w: data byte %#02x", ErrNoRunningStatus, status)
		}
		return d.readVoice(src, prev, true)
	}

	if _, err := src.ReadExact(1); err != nil {
		return nil, err
	}
	switch {
	case status < 0xF0:
		rs.set(status)
		return d.readVoice(src, status, false)
	case status == metaStatus:
		return d.readMeta(src)
	case status == SysExStart, status == SysExEscape:
		rs.Reset()
		return d.readSysEx(src, status)
	default:
		if d.Strict {
			return nil, fmt.Errorf("%w: %#02x", ErrInvalidStatusByte, status)
		}
		rs.Reset()
		return d.readSysEx(src, status)
	}
}

func (d EventDecoder) readVoice(src Source, status byte, running bool) (Message, error) {
	kind := VoiceKind(status >> 4)
	data, err := src.ReadExact(kind.DataLen())
	if err != nil {
		return nil, fmt.Errorf("%s data: %w", kind, err)
	}
	for _, b := range data {
		if b&0x80 != 0 {
			return nil, fmt.Errorf("%w: %#02x where %s data expected", ErrInvalidStatusByte, b, kind)
		}
	}
	m := ChannelVoice{
		Kind:    kind,
		Channel: status & 0x0F,
		Data1:   data[0],
		Running: running,
	}
	if len(data) == 2 {
		m.Data2 = data[1]
	}
	return m, nil
}

func (d EventDecoder) readMeta(src Source) (Message, error) {
	typ, err := readByte(src)
	if err != nil {
		return nil, fmt.Errorf("meta type: %w", err)
	}
	data, err := readLengthPrefixed(src)
	if err != nil {
		return nil, fmt.Errorf("meta %s: %w", MetaType(typ), err)
	}
	return Meta{Type: MetaType(typ), Data: data}, nil
}

func (d EventDecoder) readSysEx(src Source, status byte) (Message, error) {
	data, err := readLengthPrefixed(src)
	if err != nil {
		return nil, fmt.Errorf("sysex %#02x: %w", status, err)
	}
	return SysEx{Status: status, Data: data}, nil
}

func readLengthPrefixed(src Source) ([]byte, error) {
	n, err := ReadVLQ(src)
	if err != nil {
		return nil, fmt.Errorf("length: %w", err)
	}
	b, err := src.ReadExact(int(n))
	if err != nil {
		return nil, err
	}
	return cloneData(b), nil
}

// cloneData detaches decoded payloads from the source buffer. Empty
// payloads decode as nil.
func cloneData(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	return bytes.Clone(b)
}

// RunningStatusPolicy controls when the encoder omits channel status bytes.
type RunningStatusPolicy int

const (
	// PreserveRunningStatus omits the status byte where the message was
	// decoded without one and the omission is still legal.
	PreserveRunningStatus RunningStatusPolicy = iota
	// ExplicitStatus always writes the status byte.
	ExplicitStatus
	// CompactStatus omits the status byte whenever it repeats.
	CompactStatus
)

func (p RunningStatusPolicy) String() string {
	switch p {
	case PreserveRunningStatus:
		return "preserve"
	case ExplicitStatus:
		return "explicit"
	case CompactStatus:
		return "compact"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParseRunningStatusPolicy parses "preserve", "explicit" or "compact".
func ParseRunningStatusPolicy(s string) (RunningStatusPolicy, error) {
	switch s {
	case "", "preserve":
		return PreserveRunningStatus, nil
	case "explicit":
		return ExplicitStatus, nil
	case "compact":
		return CompactStatus, nil
	default:
		return 0, fmt.Errorf("unknown running status policy %q", s)
	}
}

// EventEncoder serialises track events.
type EventEncoder struct {
	Policy RunningStatusPolicy
}

// AppendEvent appends the encoded delta-time and message to dst.
func (e EventEncoder) AppendEvent(dst []byte, ev TrackEvent, rs *RunningStatus) ([]byte, error) {
	dst, err := AppendVLQ(dst, ev.Delta)
	if err != nil {
		return dst, fmt.Errorf("delta-time: %w", err)
	}
	return e.AppendMessage(dst, ev.Message, rs)
}

// AppendMessage appends one encoded message to dst, updating rs.
func (e EventEncoder) AppendMessage(dst []byte, msg Message, rs *RunningStatus) ([]byte, error) {
	switch m := msg.(type) {
	case ChannelVoice:
		if err := m.validate(); err != nil {
			return dst, err
		}
		status := m.Status()
		prev, ok := rs.Status()
		omit := ok && prev == status &&
			(e.Policy == CompactStatus || e.Policy == PreserveRunningStatus && m.Running)
		if !omit {
			dst = append(dst, status)
		}
		rs.set(status)
		dst = append(dst, m.Data1)
		if m.Kind.DataLen() == 2 {
			dst = append(dst, m.Data2)
		}
		return dst, nil
	case Meta:
		dst = append(dst, metaStatus, byte(m.Type))
		return appendLengthPrefixed(dst, m.Data)
	case SysEx:
		if m.Status < 0xF0 || m.Status == metaStatus {
			return dst, fmt.Errorf("%w: sysex status %#02x", ErrInvalidMessage, m.Status)
		}
		rs.Reset()
		dst = append(dst, m.Status)
		return appendLengthPrefixed(dst, m.Data)
	default:
		return dst, fmt.Errorf("%w: unsupported message %T", ErrInvalidMessage, msg)
	}
}

func appendLengthPrefixed(dst, data []byte) ([]byte, error) {
	if uint64(len(data)) > MaxVLQ {
		return dst, fmt.Errorf("%w: %d data bytes", ErrMalformedQuantity, len(data))
	}
	dst, _ = AppendVLQ(dst, uint32(len(data)))
	return append(dst, data...), nil
}
