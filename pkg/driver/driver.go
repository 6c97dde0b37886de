// Package driver defines the abstract contract a concrete transport
// (FTDI, RP2040 UART, Enttec DMX Pro, ...) must satisfy to back a
// Controller or Responder. This package owns no hardware and performs
// no I/O itself; it exists purely as an interface boundary, per spec
// §4.2/§9's "capability set" re-architecture note. Concrete drivers are
// out of scope for this module (§1) and live in application code.
package driver

import "time"

// Driver is the capability set a transport exposes. A single interface
// rather than modbus's Packager/Transporter/Connector split is
// sufficient here because, unlike Modbus's pluggable RTU/ASCII/TCP wire
// formats, RDM framing is fixed — the only thing that varies between
// drivers is how bytes reach the wire, not how they are shaped.
type Driver interface {
	// SendRDM writes a complete RDM frame to the bus.
	SendRDM(frame []byte) error

	// ReceiveRDM reads one RDM frame into buf, blocking until a frame
	// arrives, timeout elapses, or an error occurs. It returns the
	// number of bytes written into buf. Spec §4.2's bus turnaround
	// bounds (≤2.8ms controller→responder, ≤2.0ms responder→controller)
	// are enforced by the driver, not by this interface.
	ReceiveRDM(buf []byte, timeout time.Duration) (int, error)

	// SendDMX transmits one complete 513-byte universe (start code +
	// 512 levels). Drivers that repaint the bus continuously (rather
	// than latching a single frame in hardware) report that via
	// NeedsRepaint so the host knows whether to call SendDMX on a
	// cadence or once.
	SendDMX(levels *[513]byte) error

	// NeedsRepaint reports whether the host must call SendDMX
	// repeatedly to keep the bus alive (software-driven transports) or
	// whether one call is latched by hardware until replaced
	// (self-repainting transports, §9).
	NeedsRepaint() bool
}
