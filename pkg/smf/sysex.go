package smf

// SysExMsg builds an 0xF0 system exclusive event whose data is payload
// followed by the 0xF7 terminator.
func SysExMsg(payload []byte) SysEx {
	data := make([]byte, 0, len(payload)+1)
	data = append(data, payload...)
	return SysEx{Status: SysExStart, Data: append(data, SysExEscape)}
}

// Terminated reports whether the data ends with 0xF7.
func (m SysEx) Terminated() bool {
	return len(m.Data) > 0 && m.Data[len(m.Data)-1] == SysExEscape
}

// ManufacturerID returns the 1-byte or 3-byte (0x00-prefixed) manufacturer
// id of an 0xF0 message.
func (m SysEx) ManufacturerID() ([]byte, bool) {
	if m.Status != SysExStart || len(m.Data) == 0 {
		return nil, false
	}
	if m.Data[0] != 0x00 {
		return m.Data[:1], true
	}
	if len(m.Data) < 3 {
		return nil, false
	}
	return m.Data[:3], true
}

// Bytes returns the message as it appears on a MIDI cable or in a .syx
// file: the status byte followed by the data, without the length prefix.
func (m SysEx) Bytes() []byte {
	out := make([]byte, 0, len(m.Data)+1)
	out = append(out, m.Status)
	return append(out, m.Data...)
}
