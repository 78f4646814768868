package converter

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Format represents a file format
type Format string

const (
	FormatMIDI    Format = "midi"
	FormatJSON    Format = "json"
	FormatSyx     Format = "syx"
	FormatUnknown Format = "unknown"
)

// ParseFormat maps a format name or file extension to a Format
func ParseFormat(name string) Format {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "mid", "midi", "smf":
		return FormatMIDI
	case "json":
		return FormatJSON
	case "syx":
		return FormatSyx
	default:
		return FormatUnknown
	}
}

// DetectFormat detects the format of a file based on extension
func DetectFormat(filename string) Format {
	return ParseFormat(filepath.Ext(filename))
}

// DetectFormatFromContent detects format from file content
func DetectFormatFromContent(data []byte) Format {
	if len(data) >= 4 && string(data[:4]) == "MThd" {
		return FormatMIDI
	}
	if len(data) > 0 && data[0] == SysExStart {
		return FormatSyx
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && (trimmed[0] == '[' || trimmed[0] == '{') {
		return FormatJSON
	}
	return FormatUnknown
}

// conversion is one supported direction. Paths through JSON or SYX that
// have no direct codec go via MIDI.
type conversion struct {
	from, to Format
	run      func(c *Converter, data []byte) ([]byte, error)
}

var conversions = []conversion{
	{FormatMIDI, FormatJSON, (*Converter).MIDIToJSON},
	{FormatMIDI, FormatMIDI, (*Converter).Normalize},
	{FormatMIDI, FormatSyx, (*Converter).MIDIToSyx},
	{FormatJSON, FormatMIDI, (*Converter).JSONToMIDI},
	{FormatJSON, FormatSyx, via((*Converter).JSONToMIDI, (*Converter).MIDIToSyx)},
	{FormatSyx, FormatMIDI, (*Converter).SyxToMIDI},
	{FormatSyx, FormatJSON, via((*Converter).SyxToMIDI, (*Converter).MIDIToJSON)},
}

func via(first, second func(*Converter, []byte) ([]byte, error)) func(*Converter, []byte) ([]byte, error) {
	return func(c *Converter, data []byte) ([]byte, error) {
		midi, err := first(c, data)
		if err != nil {
			return nil, err
		}
		return second(c, midi)
	}
}

// Convert converts data between two formats
func (c *Converter) Convert(data []byte, from, to Format) ([]byte, error) {
	for _, conv := range conversions {
		if conv.from == from && conv.to == to {
			return conv.run(c, data)
		}
	}
	return nil, fmt.Errorf("unsupported conversion: %s to %s", from, to)
}

// ConvertFile converts a file from one format to another
func (c *Converter) ConvertFile(inputPath, outputPath string) error {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}

	inputFormat := DetectFormat(inputPath)
	if inputFormat == FormatUnknown {
		inputFormat = DetectFormatFromContent(data)
	}
	if inputFormat == FormatUnknown {
		return errors.New("cannot determine input format")
	}

	outputFormat := DetectFormat(outputPath)
	if outputFormat == FormatUnknown {
		return errors.New("cannot determine output format from filename")
	}

	outputData, err := c.Convert(data, inputFormat, outputFormat)
	if err != nil {
		return fmt.Errorf("conversion failed: %w", err)
	}

	if err := os.WriteFile(outputPath, outputData, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	return nil
}

// GetSupportedConversions returns a list of supported conversion paths
func GetSupportedConversions() []string {
	out := make([]string, len(conversions))
	for i, conv := range conversions {
		out[i] = fmt.Sprintf("%s -> %s", conv.from, conv.to)
	}
	return out
}
