// Package controller implements the blocking, synchronous RDM controller
// engine (§4.3): request/response correlation, the retry policy,
// the typed helper catalogue, and the discovery bisection that drives
// them (§4.4, see discovery.go).
package controller

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

// Controller issues RDM requests over a Driver and correlates responses
// (§4.3). A Controller is not safe for concurrent use: requests on
// one controller are strictly serialised by the transaction number, per
// §5's ordering guarantee.
type Controller struct {
	driver driver.Driver
	cfg    Config

	tn        uint8
	sessionID string
	rxBuf     [frame.MaxFrameSize]byte
}

// New constructs a Controller over d. cfg.UID, cfg.ResponseTimeout and
// cfg.MaxRetries are validated with validator/v10 struct tags.
func New(d driver.Driver, cfg Config) (*Controller, error) {
	if err := cfg.validateConfig(); err != nil {
		return nil, fmt.Errorf("controller: invalid config: %w", err)
	}
	c := &Controller{
		driver:    d,
		cfg:       cfg,
		sessionID: cfg.sessionID(),
	}
	c.logf("controller session started", slog.String(logger.KeySessionID, c.sessionID), slog.String(logger.KeyUID, cfg.UID.String()))
	return c, nil
}

func (c *Controller) nextTransactionNumber() uint8 {
	tn := c.tn
	c.tn++
	return tn
}

func (c *Controller) logf(msg string, args ...any) {
	if c.cfg.Logger == nil {
		return
	}
	c.cfg.Logger.Info(msg, args...)
}

// isRetryable reports whether err is one of the four causes §4.3 /
// §7 names as retryable: Timeout, FramingError, ChecksumMismatch, or
// ResponseMismatch. Everything else (bad PDL, bad start code, an opaque
// driver error) is fatal for the current call.
func isRetryable(err error) bool {
	return errors.Is(err, rdmerr.ErrTimeout) ||
		errors.Is(err, rdmerr.ErrFraming) ||
		errors.Is(err, rdmerr.ErrChecksumMismatch) ||
		errors.Is(err, rdmerr.ErrResponseMismatch)
}

func retryCause(err error) string {
	switch {
	case errors.Is(err, rdmerr.ErrTimeout):
		return "timeout"
	case errors.Is(err, rdmerr.ErrFraming):
		return "framing"
	case errors.Is(err, rdmerr.ErrChecksumMismatch):
		return "checksum"
	case errors.Is(err, rdmerr.ErrResponseMismatch):
		return "mismatch"
	default:
		return "other"
	}
}

// SendRDMRequest assembles req (stamping Source and a fresh
// TransactionNumber), transmits it via the driver, and — for
// device-addressed requests — blocks for the matching response, retrying
// per the policy in §4.3/§7. Broadcast and manufacturer-broadcast
// requests are one-shot: no response is awaited and a zero
// RdmResponseData is returned on a successful send.
//
// DISC_UNIQUE_BRANCH is the one broadcast-addressed request that does
// expect an answer, but its answer uses the obfuscated discovery layout
// rather than a normal RdmResponseData frame; it is issued through
// discBranch (discovery.go), not this method.
func (c *Controller) SendRDMRequest(req frame.RdmRequestData) (frame.RdmResponseData, error) {
	req.Source = c.cfg.UID
	req.TransactionNumber = c.nextTransactionNumber()
	if req.PortID == 0 {
		req.PortID = 1
	}

	encoded, err := frame.EncodeRequest(req)
	if err != nil {
		return frame.RdmResponseData{}, fmt.Errorf("controller: encode request: %w", err)
	}

	expectResponse := req.Destination.Kind() == uid.KindDevice

	c.cfg.Metrics.RequestSent(req.CommandClass.String())
	c.logf("sending rdm request",
		slog.String(logger.KeySessionID, c.sessionID),
		slog.Int(logger.KeyTransactionNumber, int(req.TransactionNumber)),
		slog.String(logger.KeyCommandClass, req.CommandClass.String()),
		slog.Int(logger.KeyPID, int(req.ParameterID)))

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			c.cfg.Metrics.Retry(retryCause(lastErr))
			c.logf("retrying rdm request",
				slog.String(logger.KeySessionID, c.sessionID),
				slog.Int(logger.KeyRetry, attempt),
				slog.String("cause", retryCause(lastErr)))
		}

		resp, err := c.sendOnce(req, encoded, expectResponse)
		if err == nil {
			if resp.ResponseType == rdmtypes.ResponseTypeNackReason {
				c.recordNack(resp)
			}
			return resp, nil
		}
		lastErr = err
		if !isRetryable(err) {
			return frame.RdmResponseData{}, err
		}
	}

	c.cfg.Metrics.Timeout()
	return frame.RdmResponseData{}, fmt.Errorf("controller: %w: %v", rdmerr.ErrRetriesExhausted, lastErr)
}

// sendOnce performs a single send/receive attempt without retrying.
func (c *Controller) sendOnce(req frame.RdmRequestData, encoded []byte, expectResponse bool) (frame.RdmResponseData, error) {
	if err := c.driver.SendRDM(encoded); err != nil {
		return frame.RdmResponseData{}, classifyDriverErr(err)
	}
	if !expectResponse {
		return frame.RdmResponseData{}, nil
	}

	n, err := c.driver.ReceiveRDM(c.rxBuf[:], c.cfg.ResponseTimeout)
	if err != nil {
		return frame.RdmResponseData{}, classifyDriverErr(err)
	}

	resp, err := frame.DecodeResponse(c.rxBuf[:n])
	if err != nil {
		return frame.RdmResponseData{}, err
	}

	if err := c.validateResponse(req, resp); err != nil {
		return frame.RdmResponseData{}, err
	}
	return resp, nil
}

// classifyDriverErr normalises an error returned directly by the driver
// to one of rdmerr's sentinels when the driver already reports one
// (errors.Is sees through a *driver.Error wrapper); anything else is
// left as an opaque, non-retryable error.
func classifyDriverErr(err error) error {
	switch {
	case errors.Is(err, rdmerr.ErrTimeout), errors.Is(err, rdmerr.ErrFraming),
		errors.Is(err, rdmerr.ErrBusBusy), errors.Is(err, rdmerr.ErrDriverIO):
		return err
	default:
		return &driver.Error{Op: "send/receive", Err: err}
	}
}

// validateResponse checks the correlation fields §4.3 names:
// dest_uid = self.uid, src_uid = addressed_device, tn = last_sent_tn,
// cc matches the request's response class.
func (c *Controller) validateResponse(req frame.RdmRequestData, resp frame.RdmResponseData) error {
	if resp.Destination != c.cfg.UID {
		return fmt.Errorf("controller: %w: dest %s != self %s", rdmerr.ErrResponseMismatch, resp.Destination, c.cfg.UID)
	}
	if resp.Source != req.Destination.UID() {
		return fmt.Errorf("controller: %w: src %s != addressed %s", rdmerr.ErrResponseMismatch, resp.Source, req.Destination.UID())
	}
	if resp.TransactionNumber != req.TransactionNumber {
		return fmt.Errorf("controller: %w: tn %d != sent %d", rdmerr.ErrResponseMismatch, resp.TransactionNumber, req.TransactionNumber)
	}
	if resp.CommandClass != req.CommandClass.ResponseFor() {
		return fmt.Errorf("controller: %w: cc %s != expected %s", rdmerr.ErrResponseMismatch, resp.CommandClass, req.CommandClass.ResponseFor())
	}
	return nil
}

func (c *Controller) recordNack(resp frame.RdmResponseData) {
	reason := rdmtypes.NackReason(0)
	if resp.ParameterData.Len() >= 2 {
		b := resp.ParameterData.Bytes()
		reason = rdmtypes.NackReason(uint16(b[0])<<8 | uint16(b[1]))
	}
	c.cfg.Metrics.Nack(reason.String())
	c.logf("nack received",
		slog.String(logger.KeySessionID, c.sessionID),
		slog.String(logger.KeyResponseType, resp.ResponseType.String()),
		slog.String("reason", reason.String()))
}

// SendDMX transmits one complete DMX512 universe via the driver.
func (c *Controller) SendDMX(levels *[513]byte) error {
	if err := c.driver.SendDMX(levels); err != nil {
		return classifyDriverErr(err)
	}
	return nil
}

// NeedsRepaint reports whether the underlying driver expects SendDMX to
// be called on a cadence rather than latching a single frame.
func (c *Controller) NeedsRepaint() bool {
	return c.driver.NeedsRepaint()
}
