package converter

import (
	"bytes"
	"errors"
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"
	gosmf "gitlab.com/gomidi/midi/v2/smf"

	"github.com/james-see/smfcodec/pkg/smf"
)

// ToSMF builds a gomidi SMF from decoded chunks. Unknown chunks have no
// counterpart there and are dropped.
func ToSMF(chunks []smf.ParsedChunk) (*gosmf.SMF, error) {
	file := smf.File{Chunks: chunks}
	h, ok := file.Header()
	if !ok {
		return nil, errors.New("missing header chunk")
	}

	s := gosmf.New()
	switch d := h.Division.(type) {
	case smf.TicksPerQuarterNote:
		s.TimeFormat = gosmf.MetricTicks(uint16(d))
	case smf.SMPTE:
		s.TimeFormat = gosmf.TimeCode{FramesPerSecond: uint8(d.Rate()), SubFrames: d.SubframeResolution}
	default:
		return nil, fmt.Errorf("%w: missing division", smf.ErrInvalidHeaderChunk)
	}

	for i, t := range file.Tracks() {
		var track gosmf.Track
		closed := false
		for _, ev := range t.Events {
			if m, ok := ev.Message.(smf.Meta); ok && m.IsEndOfTrack() {
				track.Close(ev.Delta)
				closed = true
				break
			}
			msg, err := toGomidiMessage(ev.Message)
			if err != nil {
				return nil, fmt.Errorf("track %d: %w", i, err)
			}
			track.Add(ev.Delta, msg)
		}
		if !closed {
			track.Close(0)
		}
		if err := s.Add(track); err != nil {
			return nil, fmt.Errorf("failed to add track: %w", err)
		}
	}
	return s, nil
}

func toGomidiMessage(msg smf.Message) ([]byte, error) {
	switch m := msg.(type) {
	case smf.ChannelVoice:
		switch m.Kind {
		case smf.NoteOn:
			return gomidi.NoteOn(m.Channel, m.Data1, m.Data2), nil
		case smf.PitchBend:
			v, _ := m.PitchBendValue()
			return gomidi.Pitchbend(m.Channel, int16(v)-0x2000), nil
		}
		if m.Kind.DataLen() == 1 {
			return []byte{m.Status(), m.Data1}, nil
		}
		return []byte{m.Status(), m.Data1, m.Data2}, nil
	case smf.Meta:
		out := []byte{0xFF, byte(m.Type)}
		out, err := smf.AppendVLQ(out, uint32(len(m.Data)))
		if err != nil {
			return nil, err
		}
		return append(out, m.Data...), nil
	case smf.SysEx:
		if m.Status == smf.SysExStart && m.Terminated() {
			return gomidi.SysEx(m.Data[:len(m.Data)-1]), nil
		}
		return nil, fmt.Errorf("%w: only complete F0 system exclusive messages can be exported", smf.ErrInvalidMessage)
	default:
		return nil, fmt.Errorf("%w: unsupported message %T", smf.ErrInvalidMessage, msg)
	}
}

// FromSMF converts a gomidi SMF into chunks
func FromSMF(s *gosmf.SMF) ([]smf.ParsedChunk, error) {
	if s == nil {
		return nil, errors.New("nil SMF")
	}

	h := smf.HeaderChunk{Format: smf.MultiTrackSynchronous, TrackCount: uint16(len(s.Tracks))}
	if len(s.Tracks) == 1 {
		h.Format = smf.SingleTrack
	}
	switch tf := s.TimeFormat.(type) {
	case gosmf.MetricTicks:
		h.Division = smf.TicksPerQuarterNote(tf.Resolution())
	case gosmf.TimeCode:
		h.Division = smf.NewSMPTE(tf.FramesPerSecond, tf.SubFrames)
	default:
		return nil, fmt.Errorf("%w: unsupported time format %v", smf.ErrInvalidHeaderChunk, s.TimeFormat)
	}

	chunks := []smf.ParsedChunk{h}
	for i, track := range s.Tracks {
		var t smf.TrackChunk
		for j, ev := range track {
			msg, err := fromGomidiMessage(ev.Message)
			if err != nil {
				return nil, fmt.Errorf("track %d event %d: %w", i, j, err)
			}
			t.Events = append(t.Events, smf.TrackEvent{Delta: ev.Delta, Message: msg})
		}
		chunks = append(chunks, t)
	}
	return chunks, nil
}

func fromGomidiMessage(raw []byte) (smf.Message, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty message", smf.ErrInvalidMessage)
	}
	switch status := raw[0]; {
	case status == 0xFF:
		if len(raw) < 2 {
			return nil, fmt.Errorf("%w: short meta message", smf.ErrInvalidMessage)
		}
		src := smf.NewCursor(raw[2:])
		n, err := smf.ReadVLQ(src)
		if err != nil {
			return nil, err
		}
		data, err := src.ReadExact(int(n))
		if err != nil {
			return nil, err
		}
		m := smf.Meta{Type: smf.MetaType(raw[1])}
		if len(data) > 0 {
			m.Data = bytes.Clone(data)
		}
		return m, nil
	case status == smf.SysExStart || status == smf.SysExEscape:
		m := smf.SysEx{Status: status}
		if len(raw) > 1 {
			m.Data = bytes.Clone(raw[1:])
		}
		return m, nil
	case status >= 0x80 && status < 0xF0:
		kind := smf.VoiceKind(status >> 4)
		if len(raw) != 1+kind.DataLen() {
			return nil, fmt.Errorf("%w: %s with %d data bytes", smf.ErrInvalidMessage, kind, len(raw)-1)
		}
		m := smf.ChannelVoice{Kind: kind, Channel: status & 0x0F, Data1: raw[1]}
		if kind.DataLen() == 2 {
			m.Data2 = raw[2]
		}
		return m, nil
	default:
		return nil, fmt.Errorf("%w: status %#02x", smf.ErrInvalidStatusByte, status)
	}
}

// TrackCheck compares one track as seen by both decoders
type TrackCheck struct {
	Index   int  `json:"index"`
	Ours    int  `json:"channel_events"`
	Gomidi  int  `json:"gomidi_channel_events"`
	Matches bool `json:"matches"`
}

// VerifyReport is the result of Verify
type VerifyReport struct {
	Tracks       []TrackCheck `json:"tracks"`
	GomidiTracks int          `json:"gomidi_tracks"`
	OK           bool         `json:"ok"`
}

// Verify decodes MIDI data with this codec and with gomidi and compares
// the channel messages found in each track
func (c *Converter) Verify(midiData []byte) (*VerifyReport, error) {
	chunks, _, err := c.decode(midiData)
	if err != nil {
		return nil, err
	}
	theirs, err := gosmf.ReadFrom(bytes.NewReader(midiData))
	if err != nil {
		return nil, fmt.Errorf("gomidi failed to parse MIDI: %w", err)
	}

	ours := (smf.File{Chunks: chunks}).Tracks()
	report := &VerifyReport{GomidiTracks: len(theirs.Tracks), OK: len(ours) == len(theirs.Tracks)}
	for i, t := range ours {
		check := TrackCheck{Index: i}
		for _, ev := range t.Events {
			if _, ok := ev.Message.(smf.ChannelVoice); ok {
				check.Ours++
			}
		}
		if i < len(theirs.Tracks) {
			for _, ev := range theirs.Tracks[i] {
				if msg := ev.Message; len(msg) > 0 && msg[0] >= 0x80 && msg[0] < 0xF0 {
					check.Gomidi++
				}
			}
		}
		check.Matches = check.Ours == check.Gomidi
		report.OK = report.OK && check.Matches
		report.Tracks = append(report.Tracks, check)
	}
	return report, nil
}
