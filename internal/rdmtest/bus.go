// Package rdmtest provides an in-memory RS-485 bus double for exercising
// Controller and Responder together without a real transport. It is
// grounded on the small, interface-faithful fake transports the pack's
// own driver-shaped examples use for testing (grid-x/modbus's
// RTUClientHandler wrapping a swappable transporter) adapted to this
// module's single Driver capability interface: a Bus hands out one *Port
// (a driver.Driver) per attached Controller or Responder, and delivers
// every sent frame to every other attached port synchronously, so a test
// never needs real timers or goroutines to observe a response.
package rdmtest

import (
	"sync"
	"time"

	"github.com/dmxctl/rdm512/pkg/frame"
	"github.com/dmxctl/rdm512/pkg/rdmerr"
)

// Bus is a shared medium multiple Ports attach to, modeling the
// single-writer-at-a-time RS-485 bus §5 describes.
type Bus struct {
	mu    sync.Mutex
	ports []*Port
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Port is one attachment point on a Bus and implements driver.Driver, so
// it can back either a Controller or a Responder directly.
type Port struct {
	bus          *Bus
	inbox        [][]byte
	poller       func()
	needsRepaint bool
}

// NewPort attaches a new Port to b.
func (b *Bus) NewPort() *Port {
	b.mu.Lock()
	defer b.mu.Unlock()
	p := &Port{bus: b}
	b.ports = append(b.ports, p)
	return p
}

// SetPoller registers fn to run immediately after any other port sends a
// frame, before the sender's ReceiveRDM call returns — this is how a
// mock Responder gets a chance to process a request and answer it
// within a single, synchronous test step. Typical use:
//
//	port := bus.NewPort()
//	resp, _ := responder.New(port, cfg)
//	port.SetPoller(func() { resp.Poll(handler) })
func (p *Port) SetPoller(fn func()) {
	p.poller = fn
}

// SendRDM broadcasts frame to every other port on the bus and, for each
// one that has a poller registered, invokes it before returning — so a
// Controller's blocking SendRDMRequest sees any Responder's reply
// already queued by the time it calls ReceiveRDM.
func (p *Port) SendRDM(b []byte) error {
	p.bus.mu.Lock()
	others := make([]*Port, 0, len(p.bus.ports))
	for _, q := range p.bus.ports {
		if q == p {
			continue
		}
		cp := append([]byte(nil), b...)
		q.inbox = append(q.inbox, cp)
		others = append(others, q)
	}
	p.bus.mu.Unlock()

	for _, q := range others {
		if q.poller != nil {
			q.poller()
		}
	}
	return nil
}

// ReceiveRDM returns the next pending frame for p. Only frames of the
// same length as the oldest pending one are folded into it (bitwise
// ORed together, exactly as simultaneous transmitters would collide on
// a real differential bus — the same technique frame_test.go uses to
// construct a collided discovery response by hand); a same-length run
// is what two responders answering the same DISC_UNIQUE_BRANCH probe at
// once actually produces. A later, differently-shaped frame — e.g. a
// sibling responder's own reply landing in this port's inbox as a side
// effect of the shared-bus broadcast — is left queued rather than
// merged into an unrelated frame, so it doesn't corrupt delivery of
// whatever was already waiting.
func (p *Port) ReceiveRDM(buf []byte, timeout time.Duration) (int, error) {
	p.bus.mu.Lock()
	defer p.bus.mu.Unlock()

	if len(p.inbox) == 0 {
		return 0, rdmerr.ErrTimeout
	}
	merged := p.inbox[0]
	consumed := 1
	for _, extra := range p.inbox[1:] {
		if len(extra) != len(merged) {
			break
		}
		merged = orFrames(merged, extra)
		consumed++
	}
	p.inbox = p.inbox[consumed:]

	n := copy(buf, merged)
	return n, nil
}

// SendDMX broadcasts a DMX512 level frame the same way SendRDM broadcasts
// an RDM frame.
func (p *Port) SendDMX(levels *[513]byte) error {
	return p.SendRDM(frame.EncodeDMXFrame(levels))
}

// NeedsRepaint reports whether this port was configured to simulate a
// software-driven transport that must be repainted on a cadence.
func (p *Port) NeedsRepaint() bool {
	return p.needsRepaint
}

// SetNeedsRepaint configures the value NeedsRepaint reports.
func (p *Port) SetNeedsRepaint(v bool) {
	p.needsRepaint = v
}

func orFrames(a, b []byte) []byte {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		var av, bv byte
		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}
		out[i] = av | bv
	}
	return out
}
