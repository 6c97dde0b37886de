package controller

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/dmxctl/rdm512/internal/telemetry/logger"
	"github.com/dmxctl/rdm512/pkg/frame"
	"github.com/dmxctl/rdm512/pkg/rdmerr"
	"github.com/dmxctl/rdm512/pkg/rdmtypes"
	"github.com/dmxctl/rdm512/pkg/uid"
)

// discoveryOutcomeKind tags the three things a DISC_UNIQUE_BRANCH probe
// can observe (§4.4's match arms).
type discoveryOutcomeKind int

const (
	outcomeNoResponse discoveryOutcomeKind = iota
	outcomeValidUID
	outcomeCollision
)

type discoveryOutcome struct {
	kind discoveryOutcomeKind
	uid  uid.UID
}

// discBranch sends one DISC_UNIQUE_BRANCH probe over [low, high] and
// classifies the result. Unlike SendRDMRequest, it speaks the obfuscated
// discovery-response layout (frame.DecodeDiscoveryResponse) rather than
// the normal ACK/NACK frame shape, and it does not retry: a driver
// timeout on a discovery probe means "no unmuted responder in range",
// the protocol's own way of reporting an empty range, not a transport
// failure. Any malformed or collided response is also reported as a
// value (outcomeCollision), not a Go error.
func (c *Controller) discBranch(low, high uid.UID) (discoveryOutcome, error) {
	pd, err := rdmtypes.NewDataPack(append(append([]byte{}, branchBytes(low)[:]...), branchBytes(high)[:]...))
	if err != nil {
		return discoveryOutcome{}, fmt.Errorf("controller: discovery range: %w", err)
	}

	req := frame.RdmRequestData{
		Destination:       uid.Broadcast(),
		Source:            c.cfg.UID,
		TransactionNumber: c.nextTransactionNumber(),
		PortID:            1,
		CommandClass:      rdmtypes.DiscoveryCommand,
		ParameterID:       rdmtypes.PIDDiscUniqueBranch,
		ParameterData:     pd,
	}
	encoded, err := frame.EncodeRequest(req)
	if err != nil {
		return discoveryOutcome{}, fmt.Errorf("controller: encode discovery branch: %w", err)
	}

	c.logf("discovery branch",
		slog.String(logger.KeySessionID, c.sessionID),
		slog.String(logger.KeyLow, low.String()),
		slog.String(logger.KeyHigh, high.String()))

	if err := c.driver.SendRDM(encoded); err != nil {
		return discoveryOutcome{}, classifyDriverErr(err)
	}

	n, err := c.driver.ReceiveRDM(c.rxBuf[:], c.cfg.ResponseTimeout)
	if err != nil {
		if errors.Is(err, rdmerr.ErrTimeout) {
			return discoveryOutcome{kind: outcomeNoResponse}, nil
		}
		return discoveryOutcome{}, classifyDriverErr(err)
	}

	u, err := frame.DecodeDiscoveryResponse(c.rxBuf[:n])
	if err != nil {
		return discoveryOutcome{kind: outcomeCollision}, nil
	}
	return discoveryOutcome{kind: outcomeValidUID, uid: u}, nil
}

func branchBytes(u uid.UID) [6]byte {
	return u.Bytes()
}

// discover implements §4.4's recursive bisection. out is the
// caller's fixed-capacity result buffer; n tracks how many slots are
// already filled.
func (c *Controller) discover(low, high uid.UID, out []uid.UID, n *int) error {
	if *n >= len(out) {
		return nil
	}

	outcome, err := c.discBranch(low, high)
	if err != nil {
		return err
	}

	switch outcome.kind {
	case outcomeNoResponse:
		return nil

	case outcomeValidUID:
		if err := c.muteForDiscovery(outcome.uid); err == nil {
			out[*n] = outcome.uid
			*n++
			c.cfg.Metrics.DeviceFound()
			return nil
		}
		// Mute failed: fall through and bisect as if this were a
		// collision, per §4.4.
		fallthrough

	case outcomeCollision:
		if low == high {
			return fmt.Errorf("controller: %w at %s", rdmerr.ErrDiscoveryStuck, low)
		}
		mid := uid.FromUint48((uint64(low) + uint64(high)) / 2)
		if err := c.discover(low, mid, out, n); err != nil {
			return err
		}
		return c.discover(uid.FromUint48(uint64(mid)+1), high, out, n)
	}
	return nil
}

func (c *Controller) muteForDiscovery(u uid.UID) error {
	req := frame.RdmRequestData{
		Destination:  uid.Device(u),
		CommandClass: rdmtypes.DiscoveryCommand,
		ParameterID:  rdmtypes.PIDDiscMute,
	}
	_, err := c.SendRDMRequest(req)
	return err
}

// DiscUniqueBranch is the public, single-probe form of discBranch,
// exposed as one of §4.3's typed helpers.
func (c *Controller) DiscUniqueBranch(low, high uid.UID) (frame.RdmResponseData, error) {
	outcome, err := c.discBranch(low, high)
	if err != nil {
		return frame.RdmResponseData{}, err
	}
	switch outcome.kind {
	case outcomeCollision:
		return frame.RdmResponseData{}, rdmerr.ErrDiscoveryCollision
	case outcomeValidUID:
		dp, _ := rdmtypes.NewDataPack(branchBytes(outcome.uid)[:])
		return frame.RdmResponseData{
			Source:       outcome.uid,
			CommandClass: rdmtypes.DiscoveryCommandResponse,
			ParameterID:  rdmtypes.PIDDiscUniqueBranch,
			ResponseType: rdmtypes.ResponseTypeAck,
			ParameterData: dp,
		}, nil
	default:
		return frame.RdmResponseData{}, nil
	}
}

// DiscMute sends DISC_MUTE to a single device.
func (c *Controller) DiscMute(u uid.UID) (frame.RdmResponseData, error) {
	return c.SendRDMRequest(frame.RdmRequestData{
		Destination:  uid.Device(u),
		CommandClass: rdmtypes.DiscoveryCommand,
		ParameterID:  rdmtypes.PIDDiscMute,
	})
}

// DiscUnMute sends DISC_UN_MUTE to a single device.
func (c *Controller) DiscUnMute(u uid.UID) (frame.RdmResponseData, error) {
	return c.SendRDMRequest(frame.RdmRequestData{
		Destination:  uid.Device(u),
		CommandClass: rdmtypes.DiscoveryCommand,
		ParameterID:  rdmtypes.PIDDiscUnMute,
	})
}

// DiscUnMuteAll broadcasts DISC_UN_MUTE to every responder on the bus.
// It is one-shot: broadcasts other than DISC_UNIQUE_BRANCH never draw a
// response (§4.5's broadcast-silence rule).
func (c *Controller) DiscUnMuteAll() error {
	_, err := c.SendRDMRequest(frame.RdmRequestData{
		Destination:  uid.Broadcast(),
		CommandClass: rdmtypes.DiscoveryCommand,
		ParameterID:  rdmtypes.PIDDiscUnMute,
	})
	return err
}

// RunFullDiscovery unmutes every responder on the bus, then runs one
// full recursive bisection over the 48-bit UID space (excluding the
// broadcast sentinel, per §4.4's seed call), muting every device it
// finds along the way. It returns the number of devices found in this
// pass. A single pass is already exhaustive for every currently-unmuted
// device; callers that want to notice hot-plugged devices call
// RunFullDiscovery again later — each call first unmutes every
// responder, so a later call finds every device currently on the bus,
// including the ones earlier calls already found.
func (c *Controller) RunFullDiscovery(out []uid.UID) (int, error) {
	if err := c.DiscUnMuteAll(); err != nil {
		return 0, err
	}

	n := 0
	low := uid.FromUint48(0)
	high := uid.FromUint48(0xFFFE_FFFF_FFFF)
	if err := c.discover(low, high, out, &n); err != nil {
		return n, err
	}
	c.cfg.Metrics.DiscoveryPass()
	return n, nil
}
