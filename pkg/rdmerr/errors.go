// Package rdmerr centralises the error taxonomy this module surfaces
// across the codec, driver, controller, discovery, and responder layers
// (§7), so every layer reports failures through the same small set
// of sentinel errors instead of ad hoc fmt.Errorf strings. Call sites
// return a sentinel directly or wrap it with context via fmt.Errorf's
// %w verb; callers use errors.Is against the sentinels below.
//
// Import graph: rdmerr has no internal dependencies. It is imported by
// the frame, rdmtypes, controller and responder packages and by
// internal/rdmtest.
package rdmerr

import "errors"

// Codec errors (pkg/frame).
var (
	ErrBadStartCode       = errors.New("rdm: unrecognised start code")
	ErrShortFrame         = errors.New("rdm: frame shorter than minimum size")
	ErrLengthMismatch     = errors.New("rdm: length field does not match frame size")
	ErrChecksumMismatch   = errors.New("rdm: checksum mismatch")
	ErrPDLOutOfRange      = errors.New("rdm: parameter data length out of range")
	ErrPDLTooLarge        = errors.New("rdm: parameter data exceeds 231 bytes")
	ErrDiscoveryCollision = errors.New("rdm: discovery response collision")
	ErrNoPreamble         = errors.New("rdm: discovery response preamble not found")
)

// Driver errors (pkg/driver).
var (
	ErrTimeout  = errors.New("rdm: driver operation timed out")
	ErrFraming  = errors.New("rdm: driver reported a framing error")
	ErrBusBusy  = errors.New("rdm: bus busy")
	ErrDriverIO = errors.New("rdm: opaque driver error")
)

// Controller errors (pkg/controller, pkg/controller discovery).
var (
	ErrResponseMismatch = errors.New("rdm: response does not match the outstanding request")
	ErrRetriesExhausted = errors.New("rdm: retries exhausted")
	ErrDiscoveryStuck   = errors.New("rdm: discovery bisection could not separate a collision")
)

// Responder errors (pkg/responder).
var ErrHandler = errors.New("rdm: user handler returned an error")

// Nack wraps an RDM NACK_REASON response. It is a value, not a failure of
// the transport: §7 requires it be reported to the caller as a
// successful-but-negative RdmResult rather than retried.
type Nack struct {
	Reason uint16
}

func (e *Nack) Error() string {
	return "rdm: request not acknowledged"
}
