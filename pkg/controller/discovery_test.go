package controller_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmxctl/rdm512/internal/rdmtest"
	"github.com/dmxctl/rdm512/pkg/controller"
	"github.com/dmxctl/rdm512/pkg/frame"
	"github.com/dmxctl/rdm512/pkg/rdmerr"
	"github.com/dmxctl/rdm512/pkg/rdmtypes"
	"github.com/dmxctl/rdm512/pkg/responder"
	"github.com/dmxctl/rdm512/pkg/uid"
)

func mustUID(t *testing.T, mfg uint16, dev uint32) uid.UID {
	t.Helper()
	u, err := uid.New(mfg, dev)
	require.NoError(t, err)
	return u
}

func newTestController(t *testing.T, bus *rdmtest.Bus, self uid.UID) *controller.Controller {
	t.Helper()
	port := bus.NewPort()
	cfg := controller.DefaultConfig(self)
	cfg.ResponseTimeout = 5 * time.Millisecond
	c, err := controller.New(port, cfg)
	require.NoError(t, err)
	return c
}

func newTestResponder(t *testing.T, bus *rdmtest.Bus, self uid.UID, handler responder.HandlerFunc) *responder.Responder {
	t.Helper()
	port := bus.NewPort()
	cfg := responder.DefaultConfig(self)
	r, err := responder.New(port, cfg)
	require.NoError(t, err)
	port.SetPoller(func() { _ = r.Poll(handler) })
	return r
}

var fullRange = [2]uid.UID{uid.FromUint48(0), uid.FromUint48(0xFFFE_FFFF_FFFF)}

// S1: single unmuted responder answers DISC_UNIQUE_BRANCH with its UID.
func TestDiscoveryScenarioSingleResponder(t *testing.T) {
	bus := rdmtest.NewBus()
	target := mustUID(t, 0x7FF0, 0x00000001)
	newTestResponder(t, bus, target, nil)
	c := newTestController(t, bus, mustUID(t, 0x7FF0, 0x0000_00FE))

	resp, err := c.DiscUniqueBranch(fullRange[0], fullRange[1])
	require.NoError(t, err)
	assert.Equal(t, target, resp.Source)
}

// S2: two unmuted responders collide.
func TestDiscoveryScenarioCollision(t *testing.T) {
	bus := rdmtest.NewBus()
	newTestResponder(t, bus, mustUID(t, 0x7FF0, 0x00000001), nil)
	newTestResponder(t, bus, mustUID(t, 0x7FF0, 0x00000002), nil)
	c := newTestController(t, bus, mustUID(t, 0x7FF0, 0x0000_00FE))

	_, err := c.DiscUniqueBranch(fullRange[0], fullRange[1])
	require.ErrorIs(t, err, rdmerr.ErrDiscoveryCollision)
}

// S3: run_full_discovery finds and mutes both responders.
func TestDiscoveryScenarioFullDiscovery(t *testing.T) {
	bus := rdmtest.NewBus()
	uidA := mustUID(t, 0x7FF0, 0x00000001)
	uidB := mustUID(t, 0x7FF0, 0x00000002)
	respA := newTestResponder(t, bus, uidA, nil)
	respB := newTestResponder(t, bus, uidB, nil)
	c := newTestController(t, bus, mustUID(t, 0x7FF0, 0x0000_00FE))

	out := make([]uid.UID, 8)
	n, err := c.RunFullDiscovery(out)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.ElementsMatch(t, []uid.UID{uidA, uidB}, out[:n])
	assert.True(t, respA.Muted())
	assert.True(t, respB.Muted())
}

// S4: a muted responder never answers DISC_UNIQUE_BRANCH.
func TestDiscoveryScenarioMutedResponderSilent(t *testing.T) {
	bus := rdmtest.NewBus()
	target := mustUID(t, 0x7FF0, 0x00000001)
	resp := newTestResponder(t, bus, target, nil)
	c := newTestController(t, bus, mustUID(t, 0x7FF0, 0x0000_00FE))

	_, err := c.DiscMute(target)
	require.NoError(t, err)
	require.True(t, resp.Muted())

	got, err := c.DiscUniqueBranch(fullRange[0], fullRange[1])
	require.NoError(t, err)
	assert.Equal(t, uid.UID(0), got.Source)
}

// Law 5 (§8): mute monotonicity — DISC_UN_MUTE restores discovery
// visibility.
func TestMuteMonotonicity(t *testing.T) {
	bus := rdmtest.NewBus()
	target := mustUID(t, 0x7FF0, 0x00000001)
	resp := newTestResponder(t, bus, target, nil)
	c := newTestController(t, bus, mustUID(t, 0x7FF0, 0x0000_00FE))

	_, err := c.DiscMute(target)
	require.NoError(t, err)

	_, err = c.DiscUniqueBranch(fullRange[0], fullRange[1])
	require.NoError(t, err)
	assert.True(t, resp.Muted())

	_, err = c.DiscUnMute(target)
	require.NoError(t, err)
	assert.False(t, resp.Muted())

	got, err := c.DiscUniqueBranch(fullRange[0], fullRange[1])
	require.NoError(t, err)
	assert.Equal(t, target, got.Source)
}

// Law 4 (§8): discovery coverage over a larger simulated population.
func TestDiscoveryCoverage(t *testing.T) {
	bus := rdmtest.NewBus()
	var want []uid.UID
	for i := uint32(1); i <= 6; i++ {
		u := mustUID(t, 0x4D4D, i*101)
		want = append(want, u)
		newTestResponder(t, bus, u, nil)
	}
	c := newTestController(t, bus, mustUID(t, 0x4D4D, 0xFFFF_FFFE))

	out := make([]uid.UID, len(want))
	n, err := c.RunFullDiscovery(out)
	require.NoError(t, err)
	assert.Equal(t, len(want), n)
	assert.ElementsMatch(t, want, out[:n])
}

// Law 7 (§8): broadcast silence — nothing answers a broadcast
// DISC_UN_MUTE.
func TestBroadcastSilence(t *testing.T) {
	bus := rdmtest.NewBus()
	newTestResponder(t, bus, mustUID(t, 0x7FF0, 0x00000001), nil)
	c := newTestController(t, bus, mustUID(t, 0x7FF0, 0x0000_00FE))

	err := c.DiscUnMuteAll()
	require.NoError(t, err)
}

// S5: a responder NACKs a malformed SET IDENTIFY_DEVICE request with
// DataOutOfRange (0x0009).
func TestNackDataOutOfRange(t *testing.T) {
	bus := rdmtest.NewBus()
	target := mustUID(t, 0x7FF0, 0x00000001)
	handler := func(req frame.RdmRequestData, ctx *responder.Context) (rdmtypes.RdmResult, error) {
		if req.ParameterID == rdmtypes.PIDIdentifyDevice && req.ParameterData.Len() != 1 {
			return rdmtypes.NotAcknowledged(rdmtypes.NackDataOutOfRange), nil
		}
		return rdmtypes.NotAcknowledged(rdmtypes.NackUnknownPID), nil
	}
	newTestResponder(t, bus, target, handler)
	c := newTestController(t, bus, mustUID(t, 0x7FF0, 0x0000_00FE))

	dp, err := rdmtypes.NewDataPack([]byte{0x00, 0x01})
	require.NoError(t, err)
	req := frame.RdmRequestData{
		Destination:   uid.Device(target),
		CommandClass:  rdmtypes.SetCommand,
		ParameterID:   rdmtypes.PIDIdentifyDevice,
		ParameterData: dp,
	}
	resp, err := c.SendRDMRequest(req)
	require.NoError(t, err)
	assert.Equal(t, rdmtypes.ResponseTypeNackReason, resp.ResponseType)
	reason := rdmtypes.NackReason(uint16(resp.ParameterData.Bytes()[0])<<8 | uint16(resp.ParameterData.Bytes()[1]))
	assert.Equal(t, rdmtypes.NackDataOutOfRange, reason)
	assert.Equal(t, uint16(0x0009), uint16(reason))
}
