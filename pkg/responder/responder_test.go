package responder_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmxctl/rdm512/internal/rdmtest"
	"github.com/dmxctl/rdm512/pkg/controller"
	"github.com/dmxctl/rdm512/pkg/frame"
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

func attachController(t *testing.T, bus *rdmtest.Bus, self uid.UID) *controller.Controller {
	t.Helper()
	port := bus.NewPort()
	cfg := controller.DefaultConfig(self)
	cfg.ResponseTimeout = 5 * time.Millisecond
	c, err := controller.New(port, cfg)
	require.NoError(t, err)
	return c
}

func attachResponder(t *testing.T, bus *rdmtest.Bus, self uid.UID, cfg responder.Config, handler responder.HandlerFunc) *responder.Responder {
	t.Helper()
	port := bus.NewPort()
	cfg.UID = self
	r, err := responder.New(port, cfg)
	require.NoError(t, err)
	port.SetPoller(func() { _ = r.Poll(handler) })
	return r
}

// SUPPORTED_PARAMETERS pagination (§4.5): a catalogue larger than
// one page's worth of PIDs must overflow across multiple ACK_OVERFLOW
// responses before a final plain ACK.
func TestSupportedParametersPagination(t *testing.T) {
	bus := rdmtest.NewBus()
	target := mustUID(t, 0x7FF0, 0x00000001)

	var pids rdmtypes.PIDList
	for i := 0; i < rdmtypes.MaxPIDsPerPage+10; i++ {
		pids = append(pids, rdmtypes.PID(0x8000+i))
	}
	cfg := responder.DefaultConfig(target)
	cfg.SupportedPIDs = pids
	attachResponder(t, bus, target, cfg, nil)

	c := attachController(t, bus, mustUID(t, 0x7FF0, 0x0000_00FE))

	req := frame.RdmRequestData{
		Destination:  uid.Device(target),
		CommandClass: rdmtypes.GetCommand,
		ParameterID:  rdmtypes.PIDSupportedParameters,
	}

	first, err := c.SendRDMRequest(req)
	require.NoError(t, err)
	assert.Equal(t, rdmtypes.ResponseTypeAckOverflow, first.ResponseType)
	assert.Equal(t, rdmtypes.MaxPIDsPerPage*2, first.ParameterData.Len())

	second, err := c.SendRDMRequest(req)
	require.NoError(t, err)
	assert.Equal(t, rdmtypes.ResponseTypeAck, second.ResponseType)
	assert.Equal(t, 10*2, second.ParameterData.Len())
}

// QUEUED_MESSAGE falls back to the last STATUS_MESSAGE (or STATUS_NONE)
// once the queue is drained (§4.5).
func TestQueuedMessageFallsBackToStatus(t *testing.T) {
	bus := rdmtest.NewBus()
	target := mustUID(t, 0x7FF0, 0x00000001)

	handler := func(req frame.RdmRequestData, ctx *responder.Context) (rdmtypes.RdmResult, error) {
		dp, _ := rdmtypes.NewDataPack([]byte{0xAB})
		ctx.Enqueue(rdmtypes.Acknowledged(dp))
		return rdmtypes.AcknowledgedTimer(10), nil
	}
	cfg := responder.DefaultConfig(target)
	enqueued := attachResponder(t, bus, target, cfg, handler)

	c := attachController(t, bus, mustUID(t, 0x7FF0, 0x0000_00FE))

	triggerReq := frame.RdmRequestData{
		Destination:  uid.Device(target),
		CommandClass: rdmtypes.GetCommand,
		ParameterID:  rdmtypes.PID(0x9999),
	}
	timerResp, err := c.SendRDMRequest(triggerReq)
	require.NoError(t, err)
	assert.Equal(t, rdmtypes.ResponseTypeAckTimer, timerResp.ResponseType)
	assert.Equal(t, uint8(1), enqueued.MessageCount())

	queuedReq := frame.RdmRequestData{
		Destination:  uid.Device(target),
		CommandClass: rdmtypes.GetCommand,
		ParameterID:  rdmtypes.PIDQueuedMessage,
	}
	popped, err := c.SendRDMRequest(queuedReq)
	require.NoError(t, err)
	assert.Equal(t, rdmtypes.ResponseTypeAck, popped.ResponseType)
	require.Equal(t, 1, popped.ParameterData.Len())
	assert.Equal(t, byte(0xAB), popped.ParameterData.Bytes()[0])
	assert.Equal(t, uint8(0), enqueued.MessageCount())

	status := rdmtypes.StatusMessage{Type: rdmtypes.StatusWarning, StatusMessageID: 42}
	enqueued.EnqueueStatus(status)

	fallback, err := c.SendRDMRequest(queuedReq)
	require.NoError(t, err)
	assert.Equal(t, rdmtypes.ResponseTypeAck, fallback.ResponseType)
	decoded, err := rdmtypes.DecodeStatusMessage(fallback.ParameterData.Bytes())
	require.NoError(t, err)
	assert.Equal(t, status, decoded)
}

// Queue saturation (§8 Law 6): pushing past capacity drops the
// oldest entry and MessageCount never exceeds the configured capacity.
func TestQueueSaturation(t *testing.T) {
	bus := rdmtest.NewBus()
	target := mustUID(t, 0x7FF0, 0x00000001)

	cfg := responder.DefaultConfig(target)
	cfg.QueueCapacity = 2
	handler := func(req frame.RdmRequestData, ctx *responder.Context) (rdmtypes.RdmResult, error) {
		dp, _ := rdmtypes.NewDataPack([]byte{byte(req.ParameterID)})
		ctx.Enqueue(rdmtypes.Acknowledged(dp))
		return rdmtypes.AcknowledgedTimer(1), nil
	}
	r := attachResponder(t, bus, target, cfg, handler)
	c := attachController(t, bus, mustUID(t, 0x7FF0, 0x0000_00FE))

	for i := 0; i < 5; i++ {
		req := frame.RdmRequestData{
			Destination:  uid.Device(target),
			CommandClass: rdmtypes.GetCommand,
			ParameterID:  rdmtypes.PID(i),
		}
		_, err := c.SendRDMRequest(req)
		require.NoError(t, err)
	}
	assert.Equal(t, uint8(2), r.MessageCount())
}

// Broadcast silence (§4.5/§8 Law 7): a broadcast request is
// dispatched but never answered on the wire.
func TestBroadcastNeverAnswered(t *testing.T) {
	bus := rdmtest.NewBus()
	target := mustUID(t, 0x7FF0, 0x00000001)

	dispatched := false
	handler := func(req frame.RdmRequestData, ctx *responder.Context) (rdmtypes.RdmResult, error) {
		dispatched = true
		return rdmtypes.Acknowledged(rdmtypes.DataPack{}), nil
	}
	attachResponder(t, bus, target, responder.DefaultConfig(target), handler)

	senderPort := bus.NewPort()
	req := frame.RdmRequestData{
		Destination:  uid.Broadcast(),
		CommandClass: rdmtypes.GetCommand,
		ParameterID:  rdmtypes.PID(0x9999),
	}
	encoded, err := frame.EncodeRequest(req)
	require.NoError(t, err)
	require.NoError(t, senderPort.SendRDM(encoded))

	assert.True(t, dispatched)

	buf := make([]byte, frame.MaxFrameSize)
	_, err = senderPort.ReceiveRDM(buf, time.Millisecond)
	assert.Error(t, err)
}

// Mute monotonicity (§8 Law 5): DISC_MUTE/DISC_UN_MUTE ACK the
// two-byte control-field payload and flip muted state exactly once.
func TestDiscMuteUnmuteControlField(t *testing.T) {
	bus := rdmtest.NewBus()
	target := mustUID(t, 0x7FF0, 0x00000001)
	r := attachResponder(t, bus, target, responder.DefaultConfig(target), nil)
	c := attachController(t, bus, mustUID(t, 0x7FF0, 0x0000_00FE))

	resp, err := c.DiscMute(target)
	require.NoError(t, err)
	assert.Equal(t, rdmtypes.ResponseTypeAck, resp.ResponseType)
	assert.Equal(t, []byte{0x00, 0x00}, resp.ParameterData.Bytes())
	assert.True(t, r.Muted())

	resp, err = c.DiscUnMute(target)
	require.NoError(t, err)
	assert.Equal(t, rdmtypes.ResponseTypeAck, resp.ResponseType)
	assert.False(t, r.Muted())
}
