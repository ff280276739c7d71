package crtp

const (
	// ConfigMarker is the first byte of a config frame.
	ConfigMarker byte = 0xAA
	// MaxConfigPayload keeps marker, type, payload and trailer within
	// MaxFrame.
	MaxConfigPayload = MaxFrame - 3
)

// IsConfigFrame tells whether buf belongs to the config dialect.
func IsConfigFrame(buf []byte) bool {
	return len(buf) > 0 && buf[0] == ConfigMarker
}

// EncodeConfig builds a config frame the way the ground app sends it:
// marker, command type, payload truncated to MaxConfigPayload, and a
// trailing checksum byte which the receiver does not verify.
func EncodeConfig(cmdType byte, payload []byte) []byte {
	if len(payload) > MaxConfigPayload {
		payload = payload[:MaxConfigPayload]
	}
	b := make([]byte, 0, len(payload)+3)
	b = append(b, ConfigMarker, cmdType)
	b = append(b, payload...)
	return append(b, Checksum(b))
}
