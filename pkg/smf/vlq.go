package smf

import "fmt"

// MaxVLQ is the largest value a 4-byte variable-length quantity can hold.
const MaxVLQ = 0x0FFFFFFF

const maxVLQBytes = 4

// ReadVLQ decodes a variable-length quantity, most significant group first.
func ReadVLQ(src Source) (uint32, error) {
	var v uint32
	for i := 0; i < maxVLQBytes; i++ {
		b, err := readByte(src)
		if err != nil {
			if i == 0 {
				return 0, err
			}
			return 0, fmt.Errorf("%w: source exhausted after %d bytes: %w", ErrMalformedQuantity, i, err)
		}
		v = v<<7 | uint32(b&0x7F)
		if b&0x80 == 0 {
			return v, nil
		}
	}
	return 0, fmt.Errorf("%w: more than %d bytes", ErrMalformedQuantity, maxVLQBytes)
}

// VLQLen returns the encoded size of v. Values above MaxVLQ report 5.
func VLQLen(v uint32) int {
	n := 1
	for v >>= 7; v != 0; v >>= 7 {
		n++
	}
	return n
}

// AppendVLQ appends the variable-length encoding of v to dst.
func AppendVLQ(dst []byte, v uint32) ([]byte, error) {
	if v > MaxVLQ {
		return dst, fmt.Errorf("%w: %d exceeds %d", ErrMalformedQuantity, v, MaxVLQ)
	}
	var buf [maxVLQBytes]byte
	i := len(buf) - 1
	buf[i] = byte(v & 0x7F)
	for v >>= 7; v != 0; v >>= 7 {
		i--
		buf[i] = byte(v&0x7F) | 0x80
	}
	return append(dst, buf[i:]...), nil
}

// EncodeVLQ returns the variable-length encoding of v.
func EncodeVLQ(v uint32) ([]byte, error) {
	return AppendVLQ(nil, v)
}
