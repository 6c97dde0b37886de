// Package config decodes host-supplied configuration for a Controller
// or Responder from a YAML file or an already-parsed map, the way a
// hosted application (rather than a bare-metal target building its
// Config literal at compile time) would configure this library: a
// mapstructure-decode-then-validate pass, with no CLI-flag/env-var
// precedence layering since this library exposes no CLI of its own.
package config

import (
	"fmt"
	"os"
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/dmxctl/rdm512/internal/telemetry/metrics"
	"github.com/dmxctl/rdm512/pkg/controller"
	"github.com/dmxctl/rdm512/pkg/responder"
	"github.com/dmxctl/rdm512/pkg/rdmtypes"
	rdmuid "github.com/dmxctl/rdm512/pkg/uid"
)

// FileConfig is the host-facing, serialisation-friendly shape of
// either a Controller's or a Responder's configuration. Fields not
// relevant to the side being built (e.g. SupportedPIDs for a
// controller) are simply ignored by the corresponding ToXConfig call.
type FileConfig struct {
	// UID is this endpoint's own identity, in "MMMM:DDDDDDDD" hex form.
	UID string `mapstructure:"uid" yaml:"uid" validate:"required"`

	// MaxRetries bounds a controller's per-request retry budget.
	MaxRetries int `mapstructure:"max_retries" yaml:"max_retries" validate:"gte=0"`

	// ResponseTimeout bounds how long a controller waits for a response
	// before retrying or giving up.
	ResponseTimeout time.Duration `mapstructure:"response_timeout" yaml:"response_timeout" validate:"gt=0"`

	// QueueCapacity sizes a responder's queued-message ring.
	QueueCapacity int `mapstructure:"queue_capacity" yaml:"queue_capacity" validate:"gt=0"`

	// PollTimeout bounds how long one responder Poll call waits for an
	// inbound frame.
	PollTimeout time.Duration `mapstructure:"poll_timeout" yaml:"poll_timeout" validate:"gt=0"`

	// SupportedPIDs lists the non-required PIDs a responder's
	// SUPPORTED_PARAMETERS response should report, as decimal or hex
	// ("0x1000") strings.
	SupportedPIDs []string `mapstructure:"supported_pids" yaml:"supported_pids"`
}

var validate = validator.New()

// LoadFile reads and decodes a YAML configuration file at path into a
// FileConfig, applying FileConfig's field-level validation. The
// ToControllerConfig and ToResponderConfig conversions do not validate
// again; controller.New and responder.New check the converted Config
// against its own tags.
func LoadFile(path string) (FileConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return FileConfig{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var generic map[string]any
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return FileConfig{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return DecodeMap(generic)
}

// DecodeMap decodes a host-supplied map[string]any (e.g. one fragment
// of a larger application config already parsed by the host) into a
// FileConfig.
func DecodeMap(raw map[string]any) (FileConfig, error) {
	var fc FileConfig
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: durationDecodeHook(),
		Result:     &fc,
	})
	if err != nil {
		return FileConfig{}, fmt.Errorf("config: build decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return FileConfig{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := validate.Struct(fc); err != nil {
		return FileConfig{}, fmt.Errorf("config: validate: %w", err)
	}
	return fc, nil
}

// ToControllerConfig builds a controller.Config from fc, starting from
// controller.DefaultConfig: any field fc leaves at its zero value
// (including MaxRetries 0) keeps the default.
func ToControllerConfig(fc FileConfig) (controller.Config, error) {
	self, err := rdmuid.Parse(fc.UID)
	if err != nil {
		return controller.Config{}, fmt.Errorf("config: controller uid: %w", err)
	}
	cfg := controller.DefaultConfig(self)
	if fc.MaxRetries != 0 {
		cfg.MaxRetries = fc.MaxRetries
	}
	if fc.ResponseTimeout != 0 {
		cfg.ResponseTimeout = fc.ResponseTimeout
	}
	return cfg, nil
}

// ToResponderConfig builds a responder.Config from fc.
func ToResponderConfig(fc FileConfig) (responder.Config, error) {
	self, err := rdmuid.Parse(fc.UID)
	if err != nil {
		return responder.Config{}, fmt.Errorf("config: responder uid: %w", err)
	}
	cfg := responder.DefaultConfig(self)
	if fc.QueueCapacity != 0 {
		cfg.QueueCapacity = fc.QueueCapacity
	}
	if fc.PollTimeout != 0 {
		cfg.PollTimeout = fc.PollTimeout
	}
	pids, err := parsePIDs(fc.SupportedPIDs)
	if err != nil {
		return responder.Config{}, err
	}
	cfg.SupportedPIDs = pids
	return cfg, nil
}

// WithMetrics attaches a Prometheus recorder to a controller.Config,
// the wiring point a host uses when it also wants D1 observability.
func WithMetrics(cfg controller.Config, rec *metrics.Recorder) controller.Config {
	cfg.Metrics = rec
	return cfg
}

func parsePIDs(raw []string) (rdmtypes.PIDList, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(rdmtypes.PIDList, 0, len(raw))
	for _, s := range raw {
		var v uint64
		_, err := fmt.Sscanf(s, "0x%x", &v)
		if err != nil {
			if _, err2 := fmt.Sscanf(s, "%d", &v); err2 != nil {
				return nil, fmt.Errorf("config: parse PID %q: %w", s, err)
			}
		}
		out = append(out, rdmtypes.PID(v))
	}
	return out, nil
}

// durationDecodeHook lets config files write human-readable durations
// ("3ms", "10s") rather than raw nanosecond integers.
func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}
