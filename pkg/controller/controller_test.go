package controller_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmxctl/rdm512/internal/rdmtest"
	"github.com/dmxctl/rdm512/pkg/controller"
	"github.com/dmxctl/rdm512/pkg/driver"
	"github.com/dmxctl/rdm512/pkg/rdmerr"
	"github.com/dmxctl/rdm512/pkg/rdmtypes"
)

// dropFirstNDriver wraps a driver.Driver and silently swallows the first
// n calls to SendRDM (reporting success without putting anything on the
// wire), forwarding every call after that. It proves out Controller's
// retry loop (§4.3, S6: bounded retries eventually succeed).
type dropFirstNDriver struct {
	driver.Driver
	n, calls int
}

func (d *dropFirstNDriver) SendRDM(b []byte) error {
	d.calls++
	if d.calls <= d.n {
		return nil
	}
	return d.Driver.SendRDM(b)
}

// S6: the controller's default MaxRetries=3 recovers from two consecutive
// dropped requests and succeeds on the third attempt.
func TestRetryRecoversFromDroppedRequests(t *testing.T) {
	bus := rdmtest.NewBus()
	target := mustUID(t, 0x7FF0, 0x00000001)
	newTestResponder(t, bus, target, nil)

	ctlPort := bus.NewPort()
	wrapped := &dropFirstNDriver{Driver: ctlPort, n: 2}

	cfg := controller.DefaultConfig(mustUID(t, 0x7FF0, 0x0000_00FE))
	cfg.ResponseTimeout = 5 * time.Millisecond
	cfg.MaxRetries = 3
	c, err := controller.New(wrapped, cfg)
	require.NoError(t, err)

	resp, err := c.DiscMute(target)
	require.NoError(t, err)
	assert.Equal(t, 3, wrapped.calls)
	assert.Equal(t, rdmtypes.ResponseTypeAck, resp.ResponseType)
}

// TestRetriesExhaustedReturnsError confirms a request that never gets
// through surfaces ErrRetriesExhausted rather than hanging.
func TestRetriesExhaustedReturnsError(t *testing.T) {
	bus := rdmtest.NewBus()
	target := mustUID(t, 0x7FF0, 0x00000001)
	newTestResponder(t, bus, target, nil)

	ctlPort := bus.NewPort()
	wrapped := &dropFirstNDriver{Driver: ctlPort, n: 10}

	cfg := controller.DefaultConfig(mustUID(t, 0x7FF0, 0x0000_00FE))
	cfg.ResponseTimeout = 5 * time.Millisecond
	cfg.MaxRetries = 3
	c, err := controller.New(wrapped, cfg)
	require.NoError(t, err)

	_, err = c.DiscMute(target)
	require.ErrorIs(t, err, rdmerr.ErrRetriesExhausted)
}
