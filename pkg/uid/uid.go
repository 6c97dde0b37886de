// Package uid implements the 48-bit RDM Unique Identifier (ANSI E1.20
// §6.2.2) and the destination-address variants built on top of it
// (unicast device, full broadcast, manufacturer broadcast).
package uid

import (
	"fmt"
	"strconv"
	"strings"
)

// UID is a 48-bit RDM Unique Identifier: a 16-bit manufacturer ID in the
// upper bits and a 32-bit device ID in the lower bits.
type UID uint64

const (
	mask48 = 0x0000_FFFF_FFFF_FFFF

	// BroadcastAll is the sentinel that addresses every responder on the
	// bus regardless of manufacturer (E1.20 §6.2.4).
	BroadcastAll UID = 0xFFFF_FFFF_FFFF

	// deviceBroadcastMask is the all-ones device-ID portion that, combined
	// with any manufacturer ID, forms a manufacturer-broadcast UID.
	deviceBroadcastMask = 0xFFFF_FFFF
)

// New constructs a device UID from a manufacturer ID and device ID. It
// rejects the two values that E1.20 reserves for broadcast addressing:
// the full broadcast sentinel and any manufacturer's all-devices
// broadcast, since neither may ever identify a single physical responder.
func New(manufacturerID uint16, deviceID uint32) (UID, error) {
	u := fromParts(manufacturerID, deviceID)
	if u == BroadcastAll {
		return 0, fmt.Errorf("uid: %w", ErrBroadcastSentinel)
	}
	if deviceID == deviceBroadcastMask {
		return 0, fmt.Errorf("uid: %w", ErrManufacturerBroadcastSentinel)
	}
	return u, nil
}

func fromParts(manufacturerID uint16, deviceID uint32) UID {
	return UID(uint64(manufacturerID)<<32 | uint64(deviceID))
}

// FromUint48 wraps a raw 48-bit value as a UID without the device-UID
// validity checks New performs. Used to represent the full address
// space (including broadcast sentinels) during discovery bisection,
// where arithmetic over the whole 48-bit range — including values that
// would be rejected as device UIDs — is required.
func FromUint48(raw uint64) UID {
	return UID(raw & mask48)
}

// ManufacturerID returns the upper 16 bits.
func (u UID) ManufacturerID() uint16 {
	return uint16(uint64(u) >> 32)
}

// DeviceID returns the lower 32 bits.
func (u UID) DeviceID() uint32 {
	return uint32(uint64(u))
}

// IsBroadcast reports whether u is the full-broadcast sentinel.
func (u UID) IsBroadcast() bool {
	return u == BroadcastAll
}

// IsManufacturerBroadcast reports whether u addresses every device of a
// single manufacturer (device-ID portion all-ones, manufacturer not
// all-ones).
func (u UID) IsManufacturerBroadcast() bool {
	return u.DeviceID() == deviceBroadcastMask && u.ManufacturerID() != 0xFFFF
}

// IsAnyBroadcast reports whether u is either broadcast form.
func (u UID) IsAnyBroadcast() bool {
	return u.IsBroadcast() || u.IsManufacturerBroadcast()
}

// Less orders UIDs numerically, the ordering the discovery bisection
// relies on to split a range in half.
func (u UID) Less(other UID) bool {
	return u < other
}

// Bytes encodes u as the 6 big-endian bytes E1.20 places on the wire.
func (u UID) Bytes() [6]byte {
	var b [6]byte
	v := uint64(u)
	b[0] = byte(v >> 40)
	b[1] = byte(v >> 32)
	b[2] = byte(v >> 24)
	b[3] = byte(v >> 16)
	b[4] = byte(v >> 8)
	b[5] = byte(v)
	return b
}

// FromBytes decodes the 6 big-endian bytes E1.20 uses to represent a UID
// on the wire.
func FromBytes(b [6]byte) UID {
	v := uint64(b[0])<<40 | uint64(b[1])<<32 | uint64(b[2])<<24 |
		uint64(b[3])<<16 | uint64(b[4])<<8 | uint64(b[5])
	return UID(v)
}

// String renders u as "MMMM:DDDDDDDD", the conventional RDM UID text form.
func (u UID) String() string {
	return fmt.Sprintf("%04X:%08X", u.ManufacturerID(), u.DeviceID())
}

// Parse reads the "MMMM:DDDDDDDD" text form String produces, the shape a
// host configuration file names a responder's or controller's own UID
// in (spec.md's configuration surface has no wire presence of its own;
// this is purely a host-facing convenience).
func Parse(s string) (UID, error) {
	mfgHex, devHex, ok := strings.Cut(s, ":")
	if !ok || len(mfgHex) != 4 || len(devHex) != 8 {
		return 0, ErrMalformedUIDString
	}
	mfg, err := strconv.ParseUint(mfgHex, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("uid: %w: %v", ErrMalformedUIDString, err)
	}
	dev, err := strconv.ParseUint(devHex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("uid: %w: %v", ErrMalformedUIDString, err)
	}
	return fromParts(uint16(mfg), uint32(dev)), nil
}
