package converter

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
)

// TextEncoding names the character set of meta event text. The file
// format does not record one, so it is a user setting.
type TextEncoding string

const (
	TextUTF8     TextEncoding = "utf8"
	TextLatin1   TextEncoding = "latin1"
	TextShiftJIS TextEncoding = "shiftjis"
)

// ParseTextEncoding accepts the names used in config files and flags
func ParseTextEncoding(name string) (TextEncoding, error) {
	switch strings.ToLower(strings.ReplaceAll(name, "-", "")) {
	case "", "utf8":
		return TextUTF8, nil
	case "latin1", "iso88591":
		return TextLatin1, nil
	case "shiftjis", "sjis":
		return TextShiftJIS, nil
	default:
		return "", fmt.Errorf("unknown text encoding %q", name)
	}
}

func (e TextEncoding) decoder() encoding.Encoding {
	switch e {
	case TextLatin1:
		return charmap.ISO8859_1
	case TextShiftJIS:
		return japanese.ShiftJIS
	default:
		return nil
	}
}

// DecodeText converts meta event text to UTF-8. UTF-8 input that is not
// valid is read as Latin-1 so track names always print.
func DecodeText(data []byte, enc TextEncoding) (string, error) {
	dec := enc.decoder()
	if dec == nil {
		if utf8.Valid(data) {
			return string(data), nil
		}
		dec = charmap.ISO8859_1
	}
	out, err := dec.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("failed to decode %s text: %w", enc, err)
	}
	return string(out), nil
}

// EncodeText converts UTF-8 text to the bytes stored in a meta event
func EncodeText(text string, enc TextEncoding) ([]byte, error) {
	dec := enc.decoder()
	if dec == nil {
		return []byte(text), nil
	}
	out, err := dec.NewEncoder().Bytes([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s text: %w", enc, err)
	}
	return out, nil
}
