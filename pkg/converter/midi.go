package converter

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/james-see/smfcodec/pkg/smf"
)

// syxTicksPerQuarter is the division of files built from .syx data
const syxTicksPerQuarter = 96

// decode parses MIDI data with the converter's options and returns the
// number of chunks skipped under SkipInvalid
func (c *Converter) decode(data []byte) ([]smf.ParsedChunk, int, error) {
	if DetectFormatFromContent(data) != FormatMIDI {
		return nil, 0, errors.New("not a MIDI file: missing MThd header")
	}
	r := smf.NewReader(smf.NewCursor(data), c.readerOptions())
	chunks, err := r.ReadAll()
	if err != nil {
		return nil, r.Skipped(), fmt.Errorf("failed to parse MIDI: %w", err)
	}
	return chunks, r.Skipped(), nil
}

// ParseMIDIFile reads and decodes a MIDI file
func (c *Converter) ParseMIDIFile(filename string) ([]smf.ParsedChunk, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read MIDI file: %w", err)
	}
	chunks, _, err := c.decode(data)
	return chunks, err
}

// MIDIToJSON converts MIDI data to the JSON chunk dump
func (c *Converter) MIDIToJSON(midiData []byte) ([]byte, error) {
	chunks, _, err := c.decode(midiData)
	if err != nil {
		return nil, err
	}
	return smf.MarshalChunksJSON(chunks)
}

// JSONToMIDI converts a JSON chunk dump back to MIDI data
func (c *Converter) JSONToMIDI(jsonData []byte) ([]byte, error) {
	chunks, err := smf.UnmarshalChunksJSON(jsonData)
	if err != nil {
		return nil, err
	}
	out, err := smf.EncodeAll(chunks, c.encodeOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to write MIDI: %w", err)
	}
	return out, nil
}

// Normalize decodes MIDI data and encodes it again with the configured
// running status policy
func (c *Converter) Normalize(midiData []byte) ([]byte, error) {
	chunks, _, err := c.decode(midiData)
	if err != nil {
		return nil, err
	}
	out, err := smf.EncodeAll(chunks, c.encodeOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to write MIDI: %w", err)
	}
	return out, nil
}

// MIDIToSyx extracts the system exclusive messages of every track as a
// .syx stream. Escape packets continuing an unterminated F0 message are
// joined to it; other escape packets are left out.
func (c *Converter) MIDIToSyx(midiData []byte) ([]byte, error) {
	chunks, _, err := c.decode(midiData)
	if err != nil {
		return nil, err
	}

	var out []byte
	for _, track := range (smf.File{Chunks: chunks}).Tracks() {
		open := false
		for _, ev := range track.Events {
			m, ok := ev.Message.(smf.SysEx)
			if !ok {
				continue
			}
			switch {
			case m.Status == smf.SysExStart:
				out = append(out, m.Bytes()...)
				open = !m.Terminated()
			case m.Status == smf.SysExEscape && open:
				out = append(out, m.Data...)
				open = !m.Terminated()
			}
		}
		if open {
			out = append(out, SysExEnd)
		}
	}
	if len(out) == 0 {
		return nil, ErrNoSysEx
	}
	return out, nil
}

// SyxToMIDI wraps each message of a .syx stream in a single-track file
func (c *Converter) SyxToMIDI(syxData []byte) ([]byte, error) {
	messages, err := SplitSyx(syxData)
	if err != nil {
		return nil, err
	}

	var track smf.TrackChunk
	for _, msg := range messages {
		track.Events = append(track.Events, smf.TrackEvent{
			Message: smf.SysEx{Status: smf.SysExStart, Data: append([]byte(nil), msg[1:]...)},
		})
	}

	chunks := []smf.ParsedChunk{
		smf.HeaderChunk{Format: smf.SingleTrack, TrackCount: 1, Division: smf.TicksPerQuarterNote(syxTicksPerQuarter)},
		track.Close(0),
	}
	out, err := smf.EncodeAll(chunks, c.encodeOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to write MIDI: %w", err)
	}
	return out, nil
}

// Inspect summarises the chunks of MIDI data
func (c *Converter) Inspect(midiData []byte) (*Summary, error) {
	chunks, skipped, err := c.decode(midiData)
	if err != nil {
		return nil, err
	}
	file := smf.File{Chunks: chunks}

	summary := &Summary{Skipped: skipped, Tracks: []TrackSummary{}}
	if h, ok := file.Header(); ok {
		summary.Format = h.Format.String()
		summary.TrackCount = h.TrackCount
		summary.Division = h.Division.String()
	}
	for _, u := range file.Unknown() {
		summary.Unknown = append(summary.Unknown, u.Tag.String())
	}

	seen := make(map[string]bool)
	for i, track := range file.Tracks() {
		ts := TrackSummary{
			Index:    i,
			Events:   len(track.Events),
			Duration: track.Duration(),
			Closed:   track.HasEndOfTrack(),
		}
		if name, ok := track.Name(); ok {
			if ts.Name, err = DecodeText(name, c.opts.TextEncoding); err != nil {
				return nil, fmt.Errorf("track %d name: %w", i, err)
			}
		}
		for _, ev := range track.Events {
			switch m := ev.Message.(type) {
			case smf.ChannelVoice:
				ts.Channel++
			case smf.Meta:
				ts.Meta++
				if bpm, ok := m.BPM(); ok && summary.BPM == 0 {
					summary.BPM = bpm
				}
			case smf.SysEx:
				ts.SysEx++
				if id, ok := m.ManufacturerID(); ok {
					seen[ManufacturerName(id)] = true
				}
			}
		}
		summary.Tracks = append(summary.Tracks, ts)
	}

	for name := range seen {
		summary.Manufacturers = append(summary.Manufacturers, name)
	}
	sort.Strings(summary.Manufacturers)
	return summary, nil
}
