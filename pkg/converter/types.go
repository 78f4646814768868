// Package converter provides conversion between Standard MIDI Files, their JSON
// chunk dump and raw SysEx (.syx) streams.
package converter

import "github.com/james-see/smfcodec/pkg/smf"

// Options control how MIDI data is decoded and re-encoded
type Options struct {
	Strict       bool
	SkipInvalid  bool
	Policy       smf.RunningStatusPolicy
	MaxChunkSize uint32
	TextEncoding TextEncoding
	Logger       smf.Logger
}

// TrackSummary describes one track chunk
type TrackSummary struct {
	Index    int    `json:"index"`
	Name     string `json:"name,omitempty"`
	Events   int    `json:"events"`
	Channel  int    `json:"channel_events"`
	Meta     int    `json:"meta_events"`
	SysEx    int    `json:"sysex_events"`
	Duration uint64 `json:"duration_ticks"`
	Closed   bool   `json:"closed"`
}

// Summary is the result of Inspect
type Summary struct {
	Format        string         `json:"format"`
	TrackCount    uint16         `json:"track_count"`
	Division      string         `json:"division"`
	BPM           float64        `json:"bpm,omitempty"`
	Tracks        []TrackSummary `json:"tracks"`
	Unknown       []string       `json:"unknown_chunks,omitempty"`
	Manufacturers []string       `json:"sysex_manufacturers,omitempty"`
	Skipped       int            `json:"skipped_chunks,omitempty"`
}

// Converter handles format conversions
type Converter struct {
	opts Options
}

// New creates a new Converter with the specified options
func New(opts Options) *Converter {
	return &Converter{opts: opts}
}

// GetOptions returns the current options
func (c *Converter) GetOptions() Options {
	return c.opts
}

// SetOptions replaces the options used for later conversions
func (c *Converter) SetOptions(opts Options) {
	c.opts = opts
}

func (c *Converter) readerOptions() smf.ReaderOptions {
	return smf.ReaderOptions{
		Decode:       smf.DecodeOptions{Strict: c.opts.Strict},
		SkipInvalid:  c.opts.SkipInvalid,
		MaxChunkSize: c.opts.MaxChunkSize,
		Logger:       c.opts.Logger,
	}
}

func (c *Converter) encodeOptions() smf.EncodeOptions {
	return smf.EncodeOptions{Policy: c.opts.Policy}
}
