package responder

import (
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/dmxctl/rdm512/internal/telemetry/metrics"
	"github.com/dmxctl/rdm512/pkg/rdmtypes"
	rdmuid "github.com/dmxctl/rdm512/pkg/uid"
)

// Config configures a Responder (§6's Responder::new(driver, config)).
type Config struct {
	// UID is this responder's own identity.
	UID rdmuid.UID `validate:"required"`

	// SupportedPIDs is the read-only PID catalogue GET
	// SUPPORTED_PARAMETERS reports (§4.5). The required PIDs
	// (DISC_*, SUPPORTED_PARAMETERS, QUEUED_MESSAGE) are handled
	// internally and need not be listed here.
	SupportedPIDs rdmtypes.PIDList

	// QueueCapacity sizes the fixed-capacity queued-message ring.
	QueueCapacity int `validate:"gt=0"`

	// PollTimeout bounds how long one Poll call waits for an inbound
	// frame before returning with nothing to report.
	PollTimeout time.Duration `validate:"gt=0"`

	// Logger is the library's optional structured-logging hook. Nil
	// means silent.
	Logger *slog.Logger

	// Metrics is the library's optional Prometheus hook. Nil means no
	// metrics are recorded.
	Metrics *metrics.Recorder
}

// DefaultConfig returns a Config with spec-recommended defaults for own.
func DefaultConfig(own rdmuid.UID) Config {
	return Config{
		UID:           own,
		QueueCapacity: 8,
		PollTimeout:   10 * time.Millisecond,
	}
}

var validate = validator.New()

func (c Config) validateConfig() error {
	return validate.Struct(c)
}

func (c Config) sessionID() string {
	return uuid.New().String()
}
