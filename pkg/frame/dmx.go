package frame

import "github.com/dmxctl/rdm512/pkg/rdmerr"

// EncodeDMXFrame serialises a 513-byte universe (start code + 512
// levels) into the bytes sent on the wire. DMX512 has no checksum or
// length field of its own — the frame boundary is the break/mark-after-
// break the driver generates — so this is effectively a pass-through
// that exists for symmetry with the RDM codec and so callers never
// touch the array layout directly.
func EncodeDMXFrame(levels *[DMXUniverseSize]byte) []byte {
	out := make([]byte, DMXUniverseSize)
	copy(out, levels[:])
	return out
}

// DecodeDMXFrame splits a received DMX frame into its start code and
// level bytes.
func DecodeDMXFrame(b []byte) (startCode byte, levels []byte, err error) {
	if len(b) < 1 {
		return 0, nil, rdmerr.ErrShortFrame
	}
	return b[0], b[1:], nil
}
