package smf

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

// JSON interchange form of parsed chunks. Byte payloads are hex strings so
// dumps stay readable and diffable.

type hexBytes []byte

func (h hexBytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(h))
}

func (h *hexBytes) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("invalid hex payload: %w", err)
	}
	*h = cloneData(b)
	return nil
}

type jsonSMPTE struct {
	FramesPerSecond    int8  `json:"frames_per_second"`
	SubframeResolution uint8 `json:"subframe_resolution"`
}

type jsonDivision struct {
	TicksPerQuarterNote *uint16    `json:"ticks_per_quarter_note,omitempty"`
	SMPTE               *jsonSMPTE `json:"smpte,omitempty"`
}

type jsonEvent struct {
	Delta    uint32   `json:"delta"`
	Kind     string   `json:"kind"`
	Voice    string   `json:"voice,omitempty"`
	Channel  *uint8   `json:"channel,omitempty"`
	Values   []int    `json:"values,omitempty"`
	Running  bool     `json:"running,omitempty"`
	MetaType *uint8   `json:"meta_type,omitempty"`
	Status   *uint8   `json:"status,omitempty"`
	Bytes    hexBytes `json:"bytes,omitempty"`
	Text     string   `json:"text,omitempty"`
}

type jsonChunk struct {
	Type       string        `json:"type"`
	Tag        string        `json:"tag,omitempty"`
	Format     *uint16       `json:"format,omitempty"`
	TrackCount *uint16       `json:"track_count,omitempty"`
	Division   *jsonDivision `json:"division,omitempty"`
	Events     []jsonEvent   `json:"events,omitempty"`
	Payload    hexBytes      `json:"payload,omitempty"`
}

const (
	jsonHeader  = "header"
	jsonTrack   = "track"
	jsonUnknown = "unknown"

	jsonChannel = "channel"
	jsonMeta    = "meta"
	jsonSysEx   = "sysex"
)

// MarshalChunksJSON renders chunks in the JSON interchange form.
func MarshalChunksJSON(chunks []ParsedChunk) ([]byte, error) {
	out := make([]jsonChunk, 0, len(chunks))
	for i, c := range chunks {
		jc, err := toJSONChunk(c)
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", i, err)
		}
		out = append(out, jc)
	}
	return json.MarshalIndent(out, "", "  ")
}

// UnmarshalChunksJSON parses the JSON interchange form.
func UnmarshalChunksJSON(data []byte) ([]ParsedChunk, error) {
	var in []jsonChunk
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("failed to parse chunk JSON: %w", err)
	}
	chunks := make([]ParsedChunk, 0, len(in))
	for i, jc := range in {
		c, err := fromJSONChunk(jc)
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", i, err)
		}
		chunks = append(chunks, c)
	}
	return chunks, nil
}

func toJSONChunk(c ParsedChunk) (jsonChunk, error) {
	switch c := c.(type) {
	case HeaderChunk:
		format, count := uint16(c.Format), c.TrackCount
		jc := jsonChunk{Type: jsonHeader, Format: &format, TrackCount: &count, Division: &jsonDivision{}}
		switch d := c.Division.(type) {
		case TicksPerQuarterNote:
			tpq := uint16(d)
			jc.Division.TicksPerQuarterNote = &tpq
		case SMPTE:
			jc.Division.SMPTE = &jsonSMPTE{FramesPerSecond: d.FramesPerSecond, SubframeResolution: d.SubframeResolution}
		default:
			return jc, fmt.Errorf("%w: missing division", ErrInvalidHeaderChunk)
		}
		return jc, nil
	case TrackChunk:
		jc := jsonChunk{Type: jsonTrack, Events: make([]jsonEvent, 0, len(c.Events))}
		for i, ev := range c.Events {
			je, err := toJSONEvent(ev)
			if err != nil {
				return jc, fmt.Errorf("event %d: %w", i, err)
			}
			jc.Events = append(jc.Events, je)
		}
		return jc, nil
	case UnknownChunk:
		return jsonChunk{Type: jsonUnknown, Tag: c.Tag.String(), Payload: c.Payload}, nil
	default:
		return jsonChunk{}, fmt.Errorf("smf: unsupported chunk type %T", c)
	}
}

func toJSONEvent(ev TrackEvent) (jsonEvent, error) {
	je := jsonEvent{Delta: ev.Delta}
	switch m := ev.Message.(type) {
	case ChannelVoice:
		ch := m.Channel
		je.Kind, je.Voice, je.Channel, je.Running = jsonChannel, m.Kind.String(), &ch, m.Running
		je.Values = []int{int(m.Data1)}
		if m.Kind.DataLen() == 2 {
			je.Values = append(je.Values, int(m.Data2))
		}
	case Meta:
		t := uint8(m.Type)
		je.Kind, je.MetaType, je.Bytes = jsonMeta, &t, m.Data
		if m.IsText() {
			je.Text = string(m.Data)
		}
	case SysEx:
		s := m.Status
		je.Kind, je.Status, je.Bytes = jsonSysEx, &s, m.Data
	default:
		return je, fmt.Errorf("%w: unsupported message %T", ErrInvalidMessage, ev.Message)
	}
	return je, nil
}

func fromJSONChunk(jc jsonChunk) (ParsedChunk, error) {
	switch jc.Type {
	case jsonHeader:
		if jc.Format == nil || jc.TrackCount == nil || jc.Division == nil {
			return nil, fmt.Errorf("%w: header needs format, track_count and division", ErrInvalidHeaderChunk)
		}
		format, err := ParseFormat(*jc.Format)
		if err != nil {
			return nil, err
		}
		h := HeaderChunk{Format: format, TrackCount: *jc.TrackCount}
		switch d := jc.Division; {
		case d.TicksPerQuarterNote != nil && d.SMPTE == nil:
			h.Division = TicksPerQuarterNote(*d.TicksPerQuarterNote)
		case d.SMPTE != nil && d.TicksPerQuarterNote == nil:
			h.Division = SMPTE{FramesPerSecond: d.SMPTE.FramesPerSecond, SubframeResolution: d.SMPTE.SubframeResolution}
		default:
			return nil, fmt.Errorf("%w: division needs exactly one of ticks_per_quarter_note or smpte", ErrInvalidHeaderChunk)
		}
		if err := validateDivision(h.Division); err != nil {
			return nil, err
		}
		return h, nil
	case jsonTrack:
		var t TrackChunk
		for i, je := range jc.Events {
			msg, err := fromJSONEvent(je)
			if err != nil {
				return nil, fmt.Errorf("event %d: %w", i, err)
			}
			t.Events = append(t.Events, TrackEvent{Delta: je.Delta, Message: msg})
		}
		return t, nil
	case jsonUnknown:
		tag, err := NewTag(jc.Tag)
		if err != nil {
			return nil, err
		}
		return UnknownChunk{Tag: tag, Payload: cloneData(jc.Payload)}, nil
	default:
		return nil, fmt.Errorf("smf: unknown chunk type %q", jc.Type)
	}
}

func fromJSONEvent(je jsonEvent) (Message, error) {
	switch je.Kind {
	case jsonChannel:
		kind, ok := parseVoiceKind(je.Voice)
		if !ok {
			return nil, fmt.Errorf("%w: unknown voice %q", ErrInvalidMessage, je.Voice)
		}
		if je.Channel == nil || len(je.Values) != kind.DataLen() {
			return nil, fmt.Errorf("%w: %s needs a channel and %d values", ErrInvalidMessage, kind, kind.DataLen())
		}
		for _, v := range je.Values {
			if v < 0 || v > 0x7F {
				return nil, fmt.Errorf("%w: data value %d", ErrInvalidMessage, v)
			}
		}
		m := ChannelVoice{Kind: kind, Channel: *je.Channel, Data1: uint8(je.Values[0]), Running: je.Running}
		if len(je.Values) == 2 {
			m.Data2 = uint8(je.Values[1])
		}
		return m, m.validate()
	case jsonMeta:
		if je.MetaType == nil {
			return nil, fmt.Errorf("%w: meta event without meta_type", ErrInvalidMessage)
		}
		return Meta{Type: MetaType(*je.MetaType), Data: cloneData(je.Bytes)}, nil
	case jsonSysEx:
		if je.Status == nil {
			return nil, fmt.Errorf("%w: sysex event without status", ErrInvalidMessage)
		}
		return SysEx{Status: *je.Status, Data: cloneData(je.Bytes)}, nil
	default:
		return nil, errors.New("smf: unknown event kind " + je.Kind)
	}
}

func parseVoiceKind(s string) (VoiceKind, bool) {
	for k := NoteOff; k <= PitchBend; k++ {
		if k.String() == s {
			return k, true
		}
	}
	return 0, false
}
