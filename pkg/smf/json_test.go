package smf

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestChunksJSONRoundTrip(t *testing.T) {
	data := append(specExampleFile(), chunkBytes("XTRA", 0xCA, 0xFE)...)
	chunks, err := DecodeAll(data, DecodeOptions{})
	if err != nil {
		t.Fatalf("DecodeAll() error = %v", err)
	}
	chunks = append(chunks,
		HeaderChunk{Format: SingleTrack, TrackCount: 1, Division: NewSMPTE(25, 40)},
		TrackChunk{Events: []TrackEvent{
			{Delta: 0, Message: TextMeta(MetaTrackName, "piano")},
			{Delta: 0, Message: SysExMsg([]byte{0x7E, 0x7F, 0x09, 0x01})},
			{Delta: 10, Message: PitchBendMsg(15, 0x2000)},
			{Delta: 0, Message: EndOfTrackMeta()},
		}},
	)

	out, err := MarshalChunksJSON(chunks)
	if err != nil {
		t.Fatalf("MarshalChunksJSON() error = %v", err)
	}
	if !strings.Contains(string(out), `"text": "piano"`) {
		t.Errorf("MarshalChunksJSON() did not render meta text:\n%s", out)
	}

	got, err := UnmarshalChunksJSON(out)
	if err != nil {
		t.Fatalf("UnmarshalChunksJSON() error = %v", err)
	}
	if !reflect.DeepEqual(got, chunks) {
		t.Errorf("UnmarshalChunksJSON(MarshalChunksJSON(c)) = %+v\nwant %+v", got, chunks)
	}

	encoded, err := EncodeAll(got, EncodeOptions{})
	if err != nil {
		t.Fatalf("EncodeAll() error = %v", err)
	}
	if string(encoded[:len(data)]) != string(data) {
		t.Error("JSON round trip changed the encoded bytes")
	}
}

func TestUnmarshalChunksJSONErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"bad format", `[{"type":"header","format":9,"track_count":1,"division":{"ticks_per_quarter_note":96}}]`, ErrInvalidFormat},
		{"two divisions", `[{"type":"header","format":0,"track_count":1,"division":{"ticks_per_quarter_note":96,"smpte":{"frames_per_second":-25,"subframe_resolution":40}}}]`, ErrInvalidHeaderChunk},
		{"positive smpte rate", `[{"type":"header","format":0,"track_count":1,"division":{"smpte":{"frames_per_second":24,"subframe_resolution":4}}}]`, ErrInvalidHeaderChunk},
		{"ticks top bit", `[{"type":"header","format":0,"track_count":1,"division":{"ticks_per_quarter_note":32864}}]`, ErrInvalidHeaderChunk},
		{"missing division", `[{"type":"header","format":0,"track_count":1}]`, ErrInvalidHeaderChunk},
		{"unknown voice", `[{"type":"track","events":[{"delta":0,"kind":"channel","voice":"strum","channel":0,"values":[1,2]}]}]`, ErrInvalidMessage},
		{"value range", `[{"type":"track","events":[{"delta":0,"kind":"channel","voice":"note-on","channel":0,"values":[200,2]}]}]`, ErrInvalidMessage},
		{"value count", `[{"type":"track","events":[{"delta":0,"kind":"channel","voice":"program-change","channel":0,"values":[1,2]}]}]`, ErrInvalidMessage},
		{"bad channel", `[{"type":"track","events":[{"delta":0,"kind":"channel","voice":"note-on","channel":16,"values":[1,2]}]}]`, ErrInvalidMessage},
		{"meta without type", `[{"type":"track","events":[{"delta":0,"kind":"meta"}]}]`, ErrInvalidMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := UnmarshalChunksJSON([]byte(tt.input)); !errors.Is(err, tt.want) {
				t.Errorf("UnmarshalChunksJSON() error = %v, want %v", err, tt.want)
			}
		})
	}

	for _, input := range []string{`{`, `[{"type":"mystery"}]`, `[{"type":"unknown","tag":"TOOLONG"}]`, `[{"type":"unknown","tag":"XTRA","payload":"zz"}]`} {
		if _, err := UnmarshalChunksJSON([]byte(input)); err == nil {
			t.Errorf("UnmarshalChunksJSON(%s) error = nil", input)
		}
	}
}
