package converter

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/james-see/smfcodec/pkg/smf"
)

func testChunks(t *testing.T) []smf.ParsedChunk {
	t.Helper()
	tempo, err := smf.TempoMeta(500000)
	if err != nil {
		t.Fatalf("TempoMeta() error = %v", err)
	}
	return []smf.ParsedChunk{
		smf.HeaderChunk{Format: smf.MultiTrackSynchronous, TrackCount: 2, Division: smf.TicksPerQuarterNote(96)},
		smf.TrackChunk{Events: []smf.TrackEvent{
			{Message: smf.TextMeta(smf.MetaTrackName, "tempo")},
			{Message: tempo},
			{Delta: 192, Message: smf.EndOfTrackMeta()},
		}},
		smf.TrackChunk{Events: []smf.TrackEvent{
			{Message: smf.TextMeta(smf.MetaTrackName, "lead")},
			{Message: smf.ProgramChangeMsg(0, 5)},
			{Message: smf.NoteOnMsg(0, 60, 100)},
			{Delta: 96, Message: smf.ChannelVoice{Kind: smf.NoteOn, Data1: 60, Running: true}},
			{Message: smf.SysExMsg([]byte{0x43, 0x10, 0x4C, 0x00})},
			{Message: smf.NoteOnMsg(0, 62, 100)},
			{Delta: 96, Message: smf.NoteOffMsg(0, 62, 64)},
			{Message: smf.EndOfTrackMeta()},
		}},
	}
}

func testMIDI(t *testing.T) []byte {
	t.Helper()
	data, err := smf.EncodeAll(testChunks(t), smf.EncodeOptions{})
	if err != nil {
		t.Fatalf("EncodeAll() error = %v", err)
	}
	return data
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		filename string
		expected Format
	}{
		{"test.mid", FormatMIDI},
		{"test.midi", FormatMIDI},
		{"TEST.MID", FormatMIDI},
		{"test.json", FormatJSON},
		{"test.syx", FormatSyx},
		{"test.seq", FormatUnknown},
		{"test", FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			result := DetectFormat(tt.filename)
			if result != tt.expected {
				t.Errorf("DetectFormat(%q) = %v, want %v", tt.filename, result, tt.expected)
			}
		})
	}
}

func TestDetectFormatFromContent(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected Format
	}{
		{"MIDI file", []byte("MThd\x00\x00\x00\x06"), FormatMIDI},
		{"SysEx message", []byte{0xF0, 0x00, 0x20, 0x32, 0x00, 0xF7}, FormatSyx},
		{"JSON dump", []byte("\n  [{\"type\":\"header\"}]"), FormatJSON},
		{"Short data", []byte{0x00, 0x01}, FormatUnknown},
		{"Other binary", []byte{0x3C, 0x01, 0x3E, 0x02, 0x40, 0x03}, FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := DetectFormatFromContent(tt.data)
			if result != tt.expected {
				t.Errorf("DetectFormatFromContent() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestConverterSetOptions(t *testing.T) {
	conv := New(Options{Strict: true})
	if !conv.GetOptions().Strict {
		t.Error("GetOptions() should return the options passed to New")
	}

	conv.SetOptions(Options{Policy: smf.CompactStatus})
	if got := conv.GetOptions(); got.Strict || got.Policy != smf.CompactStatus {
		t.Errorf("GetOptions() after SetOptions = %+v", got)
	}
}

func TestGetSupportedConversions(t *testing.T) {
	for _, conv := range GetSupportedConversions() {
		parts := strings.Split(conv, " -> ")
		if len(parts) != 2 || ParseFormat(parts[0]) == FormatUnknown || ParseFormat(parts[1]) == FormatUnknown {
			t.Errorf("conversion %q does not name two known formats", conv)
		}
	}
}

func TestMIDIJSONRoundTrip(t *testing.T) {
	conv := New(Options{})
	data := testMIDI(t)

	jsonData, err := conv.MIDIToJSON(data)
	if err != nil {
		t.Fatalf("MIDIToJSON() error = %v", err)
	}
	if DetectFormatFromContent(jsonData) != FormatJSON {
		t.Errorf("MIDIToJSON() output is not detected as JSON")
	}

	back, err := conv.JSONToMIDI(jsonData)
	if err != nil {
		t.Fatalf("JSONToMIDI() error = %v", err)
	}
	if !bytes.Equal(back, data) {
		t.Errorf("JSONToMIDI(MIDIToJSON(d)) = % X\nwant % X", back, data)
	}

	if _, err := conv.MIDIToJSON([]byte("not midi")); err == nil {
		t.Error("MIDIToJSON() accepted data without a header")
	}
}

func TestNormalize(t *testing.T) {
	data := testMIDI(t)

	tests := []struct {
		policy smf.RunningStatusPolicy
		delta  int
	}{
		{smf.PreserveRunningStatus, 0},
		{smf.ExplicitStatus, 1},
		// System exclusive clears the register before the second note-on.
		{smf.CompactStatus, 0},
	}

	for _, tt := range tests {
		t.Run(tt.policy.String(), func(t *testing.T) {
			out, err := New(Options{Policy: tt.policy}).Normalize(data)
			if err != nil {
				t.Fatalf("Normalize() error = %v", err)
			}
			if len(out) != len(data)+tt.delta {
				t.Errorf("Normalize() = %d bytes, want %d", len(out), len(data)+tt.delta)
			}
		})
	}
}

func TestSyxRoundTrip(t *testing.T) {
	syx := []byte{
		0xF0, 0x43, 0x10, 0x4C, 0x00, 0x00, 0x7E, 0x00, 0xF7,
		0xF0, 0x00, 0x20, 0x32, 0x00, 0x01, 0xF7,
	}
	conv := New(Options{})

	midi, err := conv.SyxToMIDI(syx)
	if err != nil {
		t.Fatalf("SyxToMIDI() error = %v", err)
	}
	summary, err := conv.Inspect(midi)
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}
	if summary.Format != smf.SingleTrack.String() || len(summary.Tracks) != 1 || summary.Tracks[0].SysEx != 2 {
		t.Errorf("Inspect(SyxToMIDI()) = %+v", summary)
	}

	back, err := conv.MIDIToSyx(midi)
	if err != nil {
		t.Fatalf("MIDIToSyx() error = %v", err)
	}
	if !bytes.Equal(back, syx) {
		t.Errorf("MIDIToSyx(SyxToMIDI(s)) = % X, want % X", back, syx)
	}
}

func TestMIDIToSyxJoinsPackets(t *testing.T) {
	chunks := []smf.ParsedChunk{
		smf.HeaderChunk{Format: smf.SingleTrack, TrackCount: 1, Division: smf.TicksPerQuarterNote(96)},
		smf.TrackChunk{Events: []smf.TrackEvent{
			{Message: smf.SysEx{Status: smf.SysExStart, Data: []byte{0x43, 0x12}}},
			{Delta: 10, Message: smf.SysEx{Status: smf.SysExEscape, Data: []byte{0x00, 0xF7}}},
			{Message: smf.SysEx{Status: smf.SysExEscape, Data: []byte{0xF8}}},
			{Message: smf.EndOfTrackMeta()},
		}},
	}
	data, err := smf.EncodeAll(chunks, smf.EncodeOptions{})
	if err != nil {
		t.Fatalf("EncodeAll() error = %v", err)
	}
	got, err := New(Options{}).MIDIToSyx(data)
	if err != nil {
		t.Fatalf("MIDIToSyx() error = %v", err)
	}
	want := []byte{0xF0, 0x43, 0x12, 0x00, 0xF7}
	if !bytes.Equal(got, want) {
		t.Errorf("MIDIToSyx() = % X, want % X", got, want)
	}
}

func TestMIDIToSyxWithoutSysEx(t *testing.T) {
	chunks := testChunks(t)[:2]
	data, err := smf.EncodeAll(chunks, smf.EncodeOptions{})
	if err != nil {
		t.Fatalf("EncodeAll() error = %v", err)
	}
	if _, err := New(Options{}).MIDIToSyx(data); !errors.Is(err, ErrNoSysEx) {
		t.Errorf("MIDIToSyx() error = %v, want ErrNoSysEx", err)
	}
}

func TestInspect(t *testing.T) {
	data := append(testMIDI(t), 'X', 'T', 'R', 'A', 0, 0, 0, 1, 0x42)
	summary, err := New(Options{}).Inspect(data)
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}

	if summary.Format != "multi-track-synchronous" || summary.TrackCount != 2 {
		t.Errorf("Inspect() header = %q, %d", summary.Format, summary.TrackCount)
	}
	if summary.BPM != 120 {
		t.Errorf("Inspect() BPM = %v, want 120", summary.BPM)
	}
	if len(summary.Unknown) != 1 || summary.Unknown[0] != "XTRA" {
		t.Errorf("Inspect() unknown = %v", summary.Unknown)
	}
	if len(summary.Manufacturers) != 1 || summary.Manufacturers[0] != "Yamaha" {
		t.Errorf("Inspect() manufacturers = %v", summary.Manufacturers)
	}

	want := []TrackSummary{
		{Index: 0, Name: "tempo", Events: 3, Meta: 3, Duration: 192, Closed: true},
		{Index: 1, Name: "lead", Events: 8, Channel: 5, Meta: 2, SysEx: 1, Duration: 192, Closed: true},
	}
	if len(summary.Tracks) != len(want) {
		t.Fatalf("Inspect() tracks = %d, want %d", len(summary.Tracks), len(want))
	}
	for i := range want {
		if summary.Tracks[i] != want[i] {
			t.Errorf("track %d = %+v, want %+v", i, summary.Tracks[i], want[i])
		}
	}
}

func TestInspectSkipInvalid(t *testing.T) {
	data := testMIDI(t)
	bad := append([]byte{}, data...)
	bad = append(bad, 'M', 'T', 'r', 'k', 0, 0, 0, 3, 0x00, 0x3C, 0x40)

	if _, err := New(Options{}).Inspect(bad); !errors.Is(err, smf.ErrNoRunningStatus) {
		t.Fatalf("Inspect() error = %v, want ErrNoRunningStatus", err)
	}
	summary, err := New(Options{SkipInvalid: true}).Inspect(bad)
	if err != nil {
		t.Fatalf("Inspect() with SkipInvalid error = %v", err)
	}
	if summary.Skipped != 1 || len(summary.Tracks) != 2 {
		t.Errorf("Inspect() skipped = %d tracks = %d, want 1 and 2", summary.Skipped, len(summary.Tracks))
	}
}

func TestConvertFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "song.mid")
	if err := os.WriteFile(input, testMIDI(t), 0644); err != nil {
		t.Fatal(err)
	}
	conv := New(Options{})

	jsonPath := filepath.Join(dir, "song.json")
	if err := conv.ConvertFile(input, jsonPath); err != nil {
		t.Fatalf("ConvertFile(mid -> json) error = %v", err)
	}
	midiPath := filepath.Join(dir, "copy.midi")
	if err := conv.ConvertFile(jsonPath, midiPath); err != nil {
		t.Fatalf("ConvertFile(json -> midi) error = %v", err)
	}
	got, err := os.ReadFile(midiPath)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, testMIDI(t)) {
		t.Error("ConvertFile() round trip changed the file")
	}

	// No extension: the input format comes from the content.
	bare := filepath.Join(dir, "song")
	if err := os.WriteFile(bare, testMIDI(t), 0644); err != nil {
		t.Fatal(err)
	}
	if err := conv.ConvertFile(bare, filepath.Join(dir, "bank.syx")); err != nil {
		t.Fatalf("ConvertFile(bare -> syx) error = %v", err)
	}

	if err := conv.ConvertFile(input, filepath.Join(dir, "out.txt")); err == nil {
		t.Error("ConvertFile() accepted an unknown output format")
	}
	if err := conv.ConvertFile(filepath.Join(dir, "missing.mid"), jsonPath); err == nil {
		t.Error("ConvertFile() accepted a missing input")
	}
}

func TestConvertUnsupported(t *testing.T) {
	if _, err := New(Options{}).Convert(nil, FormatJSON, FormatJSON); err == nil {
		t.Error("Convert(json, json) error = nil")
	}
}
