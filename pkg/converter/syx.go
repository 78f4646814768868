package converter

import (
	"errors"
	"fmt"
	"os"
)

// SysEx constants
const (
	SysExStart = 0xF0
	SysExEnd   = 0xF7
)

// ErrNoSysEx is returned when a MIDI file carries no system exclusive data
var ErrNoSysEx = errors.New("no system exclusive messages found")

// ReadSyxFile reads a .syx file and splits it into messages
func ReadSyxFile(filename string) ([][]byte, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read syx file: %w", err)
	}
	return SplitSyx(data)
}

// SplitSyx splits a .syx stream into complete F0 ... F7 messages.
// The returned slices alias data.
func SplitSyx(data []byte) ([][]byte, error) {
	if len(data) < 2 {
		return nil, errors.New("syx data too short")
	}

	var messages [][]byte
	start := -1
	for i, b := range data {
		switch {
		case b == SysExStart:
			if start >= 0 {
				return nil, fmt.Errorf("invalid SysEx: unterminated message at position %d", start)
			}
			start = i
		case b == SysExEnd:
			if start < 0 {
				return nil, fmt.Errorf("invalid SysEx: end byte without start at position %d", i)
			}
			messages = append(messages, data[start:i+1])
			start = -1
		case start < 0:
			return nil, fmt.Errorf("invalid SysEx: expected start byte 0x%02X at position %d, got 0x%02X", SysExStart, i, b)
		case b > 127:
			return nil, fmt.Errorf("invalid SysEx: byte at position %d is > 127 (0x%02X)", i, b)
		}
	}
	if start >= 0 {
		return nil, fmt.Errorf("invalid SysEx: expected end byte 0x%02X for message at position %d", SysExEnd, start)
	}
	return messages, nil
}

// ValidateSyx validates .syx data structure
func ValidateSyx(data []byte) error {
	_, err := SplitSyx(data)
	return err
}

// ExtractManufacturerID extracts the manufacturer ID from a SysEx message
func ExtractManufacturerID(data []byte) ([]byte, error) {
	if len(data) < 3 {
		return nil, errors.New("syx data too short for manufacturer ID")
	}

	if data[0] != SysExStart {
		return nil, errors.New("invalid SysEx start")
	}

	// Check if extended manufacturer ID (starts with 0x00)
	if data[1] == 0x00 {
		if len(data) < 5 {
			return nil, errors.New("syx data too short for extended manufacturer ID")
		}
		return data[1:4], nil
	}

	// Single byte manufacturer ID
	return data[1:2], nil
}

var manufacturers = map[string]string{
	"\x7e":         "Universal Non-Real Time",
	"\x7f":         "Universal Real Time",
	"\x7d":         "Non-Commercial",
	"\x41":         "Roland",
	"\x42":         "Korg",
	"\x43":         "Yamaha",
	"\x40":         "Kawai",
	"\x47":         "Akai",
	"\x01":         "Sequential",
	"\x00\x20\x32": "Behringer",
	"\x00\x20\x29": "Novation",
	"\x00\x20\x6b": "Arturia",
	"\x00\x21\x1d": "Elektron",
}

// ManufacturerName returns a readable name for a manufacturer ID, or the
// ID in hex when it is not known
func ManufacturerName(id []byte) string {
	if name, ok := manufacturers[string(id)]; ok {
		return name
	}
	return fmt.Sprintf("% X", id)
}
