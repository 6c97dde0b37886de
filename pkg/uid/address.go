package uid

// AddressKind tags the variant held by a PackageAddress.
type AddressKind int

const (
	// KindDevice addresses exactly one responder.
	KindDevice AddressKind = iota
	// KindBroadcast addresses every responder on the bus.
	KindBroadcast
	// KindManufacturerBroadcast addresses every responder of one
	// manufacturer.
	KindManufacturerBroadcast
)

// PackageAddress is the tagged destination-address variant of E1.20
// §6.2.4: a single device, the bus-wide broadcast, or a
// single-manufacturer broadcast.
type PackageAddress struct {
	kind           AddressKind
	device         UID
	manufacturerID uint16
}

// Device addresses a single responder.
func Device(u UID) PackageAddress {
	return PackageAddress{kind: KindDevice, device: u}
}

// Broadcast addresses every responder on the bus.
func Broadcast() PackageAddress {
	return PackageAddress{kind: KindBroadcast}
}

// ManufacturerBroadcast addresses every responder belonging to
// manufacturerID.
func ManufacturerBroadcast(manufacturerID uint16) PackageAddress {
	return PackageAddress{kind: KindManufacturerBroadcast, manufacturerID: manufacturerID}
}

// Kind reports which variant a is.
func (a PackageAddress) Kind() AddressKind {
	return a.kind
}

// UID renders a as the 48-bit UID placed on the wire as the destination
// field, per E1.20 §6.2.4.
func (a PackageAddress) UID() UID {
	switch a.kind {
	case KindBroadcast:
		return BroadcastAll
	case KindManufacturerBroadcast:
		return fromParts(a.manufacturerID, deviceBroadcastMask)
	default:
		return a.device
	}
}

// AddressFromUID classifies a raw destination UID back into a
// PackageAddress variant, the inverse of UID() used when decoding an
// inbound frame.
func AddressFromUID(u UID) PackageAddress {
	switch {
	case u.IsBroadcast():
		return Broadcast()
	case u.IsManufacturerBroadcast():
		return ManufacturerBroadcast(u.ManufacturerID())
	default:
		return Device(u)
	}
}
