package uid

import "errors"

// ErrBroadcastSentinel is returned by New when asked to construct the
// all-manufacturers, all-devices broadcast UID as a device identity.
var ErrBroadcastSentinel = errors.New("uid: broadcast sentinel is not a valid device UID")

// ErrManufacturerBroadcastSentinel is returned by New when asked to
// construct a manufacturer's all-devices broadcast UID as a device
// identity.
var ErrManufacturerBroadcastSentinel = errors.New("uid: manufacturer-broadcast sentinel is not a valid device UID")

// ErrMalformedUIDString is returned by Parse when given text that isn't
// "MMMM:DDDDDDDD" hex.
var ErrMalformedUIDString = errors.New("uid: malformed UID string, expected MMMM:DDDDDDDD")
