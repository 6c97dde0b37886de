package controller

import (
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/dmxctl/rdm512/internal/telemetry/metrics"
	rdmuid "github.com/dmxctl/rdm512/pkg/uid"
)

// Config configures a Controller (§6's Controller::new(driver, config)).
type Config struct {
	// UID is this controller's own identity, used as the source UID on
	// every request and validated against the destination UID on every
	// response.
	UID rdmuid.UID `validate:"required"`

	// MaxRetries bounds how many times a request is resent after a
	// retryable failure (§4.3; default 3).
	MaxRetries int `validate:"gte=0"`

	// ResponseTimeout bounds how long SendRDMRequest waits for a
	// response before treating the attempt as timed out. Spec §4.2
	// bounds the protocol's own turnaround at ≤2.8ms/≤2.0ms; this is
	// the budget the driver is given per attempt, which should exceed
	// that bound to allow for scheduling jitter.
	ResponseTimeout time.Duration `validate:"gt=0"`

	// Logger is the library's optional structured-logging hook (spec
	// §6). Nil means silent.
	Logger *slog.Logger

	// Metrics is the library's optional Prometheus hook. Nil means no
	// metrics are recorded.
	Metrics *metrics.Recorder
}

// DefaultConfig returns a Config with spec-recommended defaults for own.
func DefaultConfig(own rdmuid.UID) Config {
	return Config{
		UID:             own,
		MaxRetries:      3,
		ResponseTimeout: 3 * time.Millisecond,
	}
}

var validate = validator.New()

func (c Config) validateConfig() error {
	return validate.Struct(c)
}

func (c Config) sessionID() string {
	return uuid.New().String()
}
