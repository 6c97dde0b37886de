package frame

import (
	"github.com/dmxctl/rdm512/pkg/rdmerr"
	"github.com/dmxctl/rdm512/pkg/uid"
)

const (
	discoveryPreambleByte = 0xFE
	discoveryDelimiter    = 0xAA
	// MaxDiscoveryPreamble is the largest number of 0xFE preamble bytes
	// E1.20 §7.6.3 allows before the 0xAA delimiter.
	MaxDiscoveryPreamble = 7

	// discoveryBodySize is the 12 UID bytes + 4 checksum bytes that
	// follow the delimiter.
	discoveryBodySize = 16
)

// EncodeDiscoveryResponse builds the checksumless, obfuscated
// DISC_UNIQUE_BRANCH response layout E1.20 §7.6.3 specifies: an
// optional preamble of 0xFE bytes, the 0xAA delimiter, then every UID
// byte and the 16-bit sum of the UID bytes each split into two
// obfuscated bytes ( b|0xAA, b|0x55 ). preambleLen must be 0–7.
func EncodeDiscoveryResponse(u uid.UID, preambleLen int) ([]byte, error) {
	if preambleLen < 0 || preambleLen > MaxDiscoveryPreamble {
		return nil, rdmerr.ErrPDLOutOfRange
	}

	out := make([]byte, preambleLen+1+discoveryBodySize)
	for i := 0; i < preambleLen; i++ {
		out[i] = discoveryPreambleByte
	}
	out[preambleLen] = discoveryDelimiter

	body := out[preambleLen+1:]
	idBytes := u.Bytes()

	var sum uint16
	for i, b := range idBytes {
		body[i*2] = b | 0xAA
		body[i*2+1] = b | 0x55
		sum += uint16(b)
	}

	hi := byte(sum >> 8)
	lo := byte(sum)
	body[12] = hi | 0xAA
	body[13] = hi | 0x55
	body[14] = lo | 0xAA
	body[15] = lo | 0x55

	return out, nil
}

// DecodeDiscoveryResponse scans past up to MaxDiscoveryPreamble 0xFE
// bytes, locates the 0xAA delimiter, deobfuscates the 12 UID bytes and
// 4 checksum bytes, and verifies the checksum. A malformed or collided
// response (where more than one responder answered and the obfuscated
// bit pattern cannot reconstruct a single consistent UID) fails with
// ErrDiscoveryCollision.
func DecodeDiscoveryResponse(b []byte) (uid.UID, error) {
	i := 0
	for i < len(b) && i < MaxDiscoveryPreamble && b[i] == discoveryPreambleByte {
		i++
	}
	if i >= len(b) || b[i] != discoveryDelimiter {
		return 0, rdmerr.ErrNoPreamble
	}
	i++

	if len(b)-i < discoveryBodySize {
		return 0, rdmerr.ErrShortFrame
	}
	body := b[i : i+discoveryBodySize]

	var idBytes [6]byte
	for j := 0; j < 6; j++ {
		hi := body[j*2]
		lo := body[j*2+1]
		decoded, ok := deobfuscatePair(hi, lo)
		if !ok {
			return 0, rdmerr.ErrDiscoveryCollision
		}
		idBytes[j] = decoded
	}

	sumHi, ok1 := deobfuscatePair(body[12], body[13])
	sumLo, ok2 := deobfuscatePair(body[14], body[15])
	if !ok1 || !ok2 {
		return 0, rdmerr.ErrDiscoveryCollision
	}

	u := uid.FromBytes(idBytes)
	var wantSum uint16
	for _, bb := range idBytes {
		wantSum += uint16(bb)
	}
	gotSum := uint16(sumHi)<<8 | uint16(sumLo)
	if gotSum != wantSum {
		return 0, rdmerr.ErrDiscoveryCollision
	}

	return u, nil
}

// deobfuscatePair reconstructs the original byte from its two
// obfuscated forms (b|0xAA, b|0x55) and reports whether the pair is
// internally consistent. Two colliding responders driving the bus
// simultaneously wire-OR their bits together, which typically produces
// a (hi,lo) pair that no single byte could have generated — that
// inconsistency is how a collision is detected without a checksum on
// the obfuscated layout itself.
func deobfuscatePair(hi, lo byte) (byte, bool) {
	b := (lo & 0xAA) | (hi & 0x55)
	if b|0xAA != hi || b|0x55 != lo {
		return 0, false
	}
	return b, true
}
