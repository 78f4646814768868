package smf

import (
	"errors"
	"fmt"
)

// DecodeOptions configure chunk decoding.
type DecodeOptions struct {
	// Strict rejects status bytes that are not legal in a track chunk.
	Strict bool
}

// EncodeOptions configure chunk encoding.
type EncodeOptions struct {
	Policy RunningStatusPolicy
}

// TrackChunk is the decoded MTrk payload. Event order is playback order.
type TrackChunk struct {
	Events []TrackEvent
}

// ChunkTag returns TrackTag.
func (TrackChunk) ChunkTag() Tag { return TrackTag }

// DecodeTrack decodes every event of an MTrk payload. The running status
// register lives for this call only.
func DecodeTrack(payload []byte, opts DecodeOptions) (TrackChunk, error) {
	src := NewCursor(payload)
	dec := EventDecoder{Strict: opts.Strict}
	var rs RunningStatus
	var events []TrackEvent

	for src.Remaining() > 0 {
		start := src.Pos()
		delta, err := ReadVLQ(src)
		if err != nil {
			if errors.Is(err, ErrUnexpectedEOF) {
				return TrackChunk{}, fmt.Errorf("%w: %d trailing bytes at offset %d", ErrTruncatedTrack, len(payload)-start, start)
			}
			return TrackChunk{}, fmt.Errorf("event %d at offset %d: delta-time: %w", len(events), start, err)
		}
		msg, err := dec.DecodeMessage(src, &rs)
		if err != nil {
			if errors.Is(err, ErrUnexpectedEOF) {
				return TrackChunk{}, fmt.Errorf("%w: event %d at offset %d: %w", ErrTrackLengthMismatch, len(events), start, err)
			}
			return TrackChunk{}, fmt.Errorf("event %d at offset %d: %w", len(events), start, err)
		}
		events = append(events, TrackEvent{Delta: delta, Message: msg})
	}
	return TrackChunk{Events: events}, nil
}

// AppendPayload appends the encoded events to dst. The caller frames the
// result; its length becomes the chunk length.
func (t TrackChunk) AppendPayload(dst []byte, opts EncodeOptions) ([]byte, error) {
	enc := EventEncoder{Policy: opts.Policy}
	var rs RunningStatus
	for i, ev := range t.Events {
		var err error
		dst, err = enc.AppendEvent(dst, ev, &rs)
		if err != nil {
			return dst, fmt.Errorf("event %d: %w", i, err)
		}
	}
	return dst, nil
}

// HasEndOfTrack reports whether the last event is an end-of-track meta.
func (t TrackChunk) HasEndOfTrack() bool {
	if len(t.Events) == 0 {
		return false
	}
	m, ok := t.Events[len(t.Events)-1].Message.(Meta)
	return ok && m.IsEndOfTrack()
}

// Close returns a copy of t terminated by an end-of-track event at delta.
// Tracks that are already closed are returned unchanged.
func (t TrackChunk) Close(delta uint32) TrackChunk {
	if t.HasEndOfTrack() {
		return t
	}
	events := make([]TrackEvent, len(t.Events), len(t.Events)+1)
	copy(events, t.Events)
	return TrackChunk{Events: append(events, TrackEvent{Delta: delta, Message: EndOfTrackMeta()})}
}

// Duration returns the sum of all delta-times in ticks.
func (t TrackChunk) Duration() uint64 {
	var total uint64
	for _, ev := range t.Events {
		total += uint64(ev.Delta)
	}
	return total
}

// Name returns the data of the first track-name meta event.
func (t TrackChunk) Name() ([]byte, bool) {
	for _, ev := range t.Events {
		if m, ok := ev.Message.(Meta); ok && m.Type == MetaTrackName {
			return m.Data, true
		}
	}
	return nil, false
}
