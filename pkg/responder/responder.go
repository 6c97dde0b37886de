// Package responder implements the RDM responder state machine (spec
// §4.5): frame classification, the addressing filter, the required-PID
// set the library handles internally, and dispatch of everything else
// to a user-supplied handler.
package responder

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/dmxctl/rdm512/internal/telemetry/logger"
	"github.com/dmxctl/rdm512/pkg/driver"
	"github.com/dmxctl/rdm512/pkg/frame"
	"github.com/dmxctl/rdm512/pkg/rdmerr"
	"github.com/dmxctl/rdm512/pkg/rdmtypes"
	"github.com/dmxctl/rdm512/pkg/uid"
)

// HandlerFunc is the user-supplied callback the responder dispatches any
// non-required PID to (§4.5's handle_rdm(request, ctx)). A returned
// error surfaces from Poll and produces no wire response.
type HandlerFunc func(req frame.RdmRequestData, ctx *Context) (rdmtypes.RdmResult, error)

// Responder is the responder-side half of a bus session: it owns mute
// state, the queued-message ring, and the supported-parameters
// catalogue (§3's Responder lifecycle).
type Responder struct {
	driver driver.Driver
	cfg    Config

	muted      bool
	identify   bool
	queue      rdmtypes.QueuedMessageRing
	lastStatus rdmtypes.StatusMessage
	spOffset   int

	lastLevels   [512]byte
	haveLastDMX  bool

	sessionID string
	rxBuf     [frame.MaxFrameSize]byte
}

// New constructs a Responder over d, unmuted (§3's power-up default).
func New(d driver.Driver, cfg Config) (*Responder, error) {
	if err := cfg.validateConfig(); err != nil {
		return nil, fmt.Errorf("responder: invalid config: %w", err)
	}
	r := &Responder{
		driver:     d,
		cfg:        cfg,
		queue:      rdmtypes.NewQueuedMessageRing(cfg.QueueCapacity),
		lastStatus: rdmtypes.NoneStatus(),
		sessionID:  cfg.sessionID(),
	}
	r.logf("responder session started", slog.String(logger.KeySessionID, r.sessionID), slog.String(logger.KeyUID, cfg.UID.String()))
	return r, nil
}

func (r *Responder) logf(msg string, args ...any) {
	if r.cfg.Logger == nil {
		return
	}
	r.cfg.Logger.Info(msg, args...)
}

// Muted reports the current DISC_MUTE state.
func (r *Responder) Muted() bool {
	return r.muted
}

// MessageCount reports the current queue depth, saturated at 255.
func (r *Responder) MessageCount() uint8 {
	return r.queue.MessageCount()
}

// EnqueueStatus records msg as the fallback STATUS_MESSAGE QUEUED_MESSAGE
// reports when the queue is empty (one of §6's Responder ops).
func (r *Responder) EnqueueStatus(msg rdmtypes.StatusMessage) {
	r.lastStatus = msg
}

// SetIdentify records the responder's own IDENTIFY_DEVICE state. The
// library never dispatches IDENTIFY_DEVICE internally (it is not one of
// the required PIDs, §4.5); this accessor exists so a handler can
// consult or drive it without maintaining separate storage.
func (r *Responder) SetIdentify(on bool) {
	r.identify = on
}

// Identify reports the responder's IDENTIFY_DEVICE state.
func (r *Responder) Identify() bool {
	return r.identify
}

// CurrentLevels returns the most recently received DMX512 level frame,
// and whether one has ever arrived. Spec §4.5 treats this as optional
// bookkeeping ("may be ignored if not supported"); callers that don't
// care about level data may ignore the return value entirely.
func (r *Responder) CurrentLevels() ([512]byte, bool) {
	return r.lastLevels, r.haveLastDMX
}

// Context is the per-poll handle a HandlerFunc uses to push a deferred
// result onto the queue and read the current queue depth (§4.5's
// "context exposes queue-push operations and the current message count").
type Context struct {
	r *Responder
}

// Enqueue pushes result onto the responder's queued-message ring, for
// later retrieval via QUEUED_MESSAGE (typically following an
// AcknowledgedTimer result).
func (ctx *Context) Enqueue(result rdmtypes.RdmResult) {
	ctx.r.queue.Push(result)
	ctx.r.cfg.Metrics.QueuePush()
}

// MessageCount reports the current queue depth, saturated at 255.
func (ctx *Context) MessageCount() uint8 {
	return ctx.r.queue.MessageCount()
}

// Poll reads at most one frame via the driver and, if it is a valid,
// addressed RDM request, dispatches and responds to it (§4.5).
// handler may be nil if this responder only needs to answer required
// PIDs.
func (r *Responder) Poll(handler HandlerFunc) error {
	n, err := r.driver.ReceiveRDM(r.rxBuf[:], r.cfg.PollTimeout)
	if err != nil {
		// No frame this cycle, or bus noise the driver already
		// discarded; only handler errors propagate from Poll (§7).
		return nil
	}
	if n == 0 {
		return nil
	}

	b := r.rxBuf[:n]
	switch b[0] {
	case frame.StartCodeDMX:
		r.handleDMX(b)
		return nil
	case frame.StartCodeRDM:
		return r.handleRDM(b, handler)
	default:
		return nil
	}
}

func (r *Responder) handleDMX(b []byte) {
	_, levels, err := frame.DecodeDMXFrame(b)
	if err != nil {
		return
	}
	n := copy(r.lastLevels[:], levels)
	if n < len(r.lastLevels) {
		for i := n; i < len(r.lastLevels); i++ {
			r.lastLevels[i] = 0
		}
	}
	r.haveLastDMX = true
}

func (r *Responder) handleRDM(b []byte, handler HandlerFunc) error {
	req, err := frame.DecodeRequest(b)
	if err != nil {
		// Invalid checksum/length: silently drop, per §4.5/§6.3.2.
		return nil
	}

	if req.CommandClass == rdmtypes.DiscoveryCommand && req.ParameterID == rdmtypes.PIDDiscUniqueBranch {
		return r.handleDiscUniqueBranch(req)
	}

	if !r.addressed(req.Destination) {
		return nil
	}
	broadcast := req.Destination.Kind() != uid.KindDevice

	result, err := r.dispatch(req, handler)
	if err != nil {
		return fmt.Errorf("responder: %w: %v", rdmerr.ErrHandler, err)
	}

	if broadcast {
		// No response is ever emitted for a broadcast request other
		// than DISC_UNIQUE_BRANCH, handled above (§4.5).
		return nil
	}
	return r.respond(req, result)
}

func (r *Responder) addressed(dest uid.PackageAddress) bool {
	switch dest.Kind() {
	case uid.KindDevice:
		return dest.UID() == r.cfg.UID
	case uid.KindBroadcast:
		return true
	case uid.KindManufacturerBroadcast:
		return dest.UID().ManufacturerID() == r.cfg.UID.ManufacturerID()
	default:
		return false
	}
}

// dispatch handles the required PIDs internally and routes everything
// else to handler.
func (r *Responder) dispatch(req frame.RdmRequestData, handler HandlerFunc) (rdmtypes.RdmResult, error) {
	switch req.ParameterID {
	case rdmtypes.PIDDiscMute:
		r.muted = true
		return rdmtypes.Acknowledged(controlFieldPack()), nil

	case rdmtypes.PIDDiscUnMute:
		r.muted = false
		return rdmtypes.Acknowledged(controlFieldPack()), nil

	case rdmtypes.PIDSupportedParameters:
		if req.CommandClass != rdmtypes.GetCommand {
			return rdmtypes.NotAcknowledged(rdmtypes.NackUnsupportedCommandClass), nil
		}
		return r.getSupportedParametersPage(), nil

	case rdmtypes.PIDQueuedMessage:
		if req.CommandClass != rdmtypes.GetCommand {
			return rdmtypes.NotAcknowledged(rdmtypes.NackUnsupportedCommandClass), nil
		}
		return r.popQueued(), nil

	default:
		if handler == nil {
			return rdmtypes.NotAcknowledged(rdmtypes.NackUnknownPID), nil
		}
		return handler(req, &Context{r: r})
	}
}

// controlFieldPack returns the two-byte 0x0000 control field DISC_MUTE
// and DISC_UN_MUTE ACK responses carry (E1.20 §7.6.4 — sub-device
// control flags this module does not implement, always reported clear).
func controlFieldPack() rdmtypes.DataPack {
	dp, _ := rdmtypes.NewDataPack([]byte{0x00, 0x00})
	return dp
}

func (r *Responder) getSupportedParametersPage() rdmtypes.RdmResult {
	page, more := r.cfg.SupportedPIDs.Page(r.spOffset)
	buf := make([]byte, len(page)*2)
	for i, pid := range page {
		buf[i*2] = byte(pid >> 8)
		buf[i*2+1] = byte(pid)
	}
	dp, _ := rdmtypes.NewDataPack(buf)

	if more {
		r.spOffset += len(page)
		return rdmtypes.AcknowledgedOverflow(dp)
	}
	r.spOffset = 0
	return rdmtypes.Acknowledged(dp)
}

func (r *Responder) popQueued() rdmtypes.RdmResult {
	if msg, ok := r.queue.Pop(); ok {
		r.cfg.Metrics.QueuePop()
		return msg
	}
	return rdmtypes.Acknowledged(rdmtypes.EncodeStatusMessage(r.lastStatus))
}

// handleDiscUniqueBranch answers a DISC_UNIQUE_BRANCH probe directly
// with the obfuscated discovery-response layout (frame.go's normal
// EncodeResponse does not apply to this PID), per §4.5: respond
// only if own_uid falls in [low, high] and the responder is unmuted.
func (r *Responder) handleDiscUniqueBranch(req frame.RdmRequestData) error {
	pd := req.ParameterData.Bytes()
	if len(pd) < 12 {
		return nil
	}
	var lowBytes, highBytes [6]byte
	copy(lowBytes[:], pd[0:6])
	copy(highBytes[:], pd[6:12])
	low := uid.FromBytes(lowBytes)
	high := uid.FromBytes(highBytes)

	if r.muted {
		return nil
	}
	if r.cfg.UID.Less(low) || high.Less(r.cfg.UID) {
		return nil
	}

	encoded, err := frame.EncodeDiscoveryResponse(r.cfg.UID, 0)
	if err != nil {
		return err
	}
	if err := r.driver.SendRDM(encoded); err != nil {
		if errors.Is(err, rdmerr.ErrBusBusy) {
			return nil
		}
		return &driver.Error{Op: "discovery response", Err: err}
	}
	return nil
}

func (r *Responder) respond(req frame.RdmRequestData, result rdmtypes.RdmResult) error {
	resp := frame.RdmResponseData{
		Destination:       req.Source,
		Source:            r.cfg.UID,
		TransactionNumber: req.TransactionNumber,
		MessageCount:      r.queue.MessageCount(),
		SubDevice:         req.SubDevice,
		CommandClass:      req.CommandClass.ResponseFor(),
		ParameterID:       req.ParameterID,
	}

	switch result.Kind() {
	case rdmtypes.KindAcknowledged:
		resp.ResponseType = rdmtypes.ResponseTypeAck
		resp.ParameterData = result.Data()
	case rdmtypes.KindAcknowledgedOverflow:
		resp.ResponseType = rdmtypes.ResponseTypeAckOverflow
		resp.ParameterData = result.Data()
	case rdmtypes.KindAcknowledgedTimer:
		resp.ResponseType = rdmtypes.ResponseTypeAckTimer
		est := result.TimerEstimate()
		dp, _ := rdmtypes.NewDataPack([]byte{byte(est >> 8), byte(est)})
		resp.ParameterData = dp
	case rdmtypes.KindNotAcknowledged:
		resp.ResponseType = rdmtypes.ResponseTypeNackReason
		reason := uint16(result.NackReason())
		dp, _ := rdmtypes.NewDataPack([]byte{byte(reason >> 8), byte(reason)})
		resp.ParameterData = dp
		r.cfg.Metrics.Nack(result.NackReason().String())
	case rdmtypes.KindNoResponse:
		return nil
	}

	encoded, err := frame.EncodeResponse(resp)
	if err != nil {
		return err
	}
	r.logf("responding",
		slog.String(logger.KeySessionID, r.sessionID),
		slog.String(logger.KeyResponseType, resp.ResponseType.String()))
	return r.driver.SendRDM(encoded)
}
