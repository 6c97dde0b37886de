// Package metrics wires the library's optional Prometheus
// instrumentation (SPEC_FULL.md D1). Every method is nil-safe so a
// Controller/Responder built without a Recorder pays no cost and makes
// no Prometheus call — the same "optional hook" shape as the logger
// package, grounded on dittofs's pkg/metrics/prometheus and
// runZeroInc-sockstats's pkg/exporter (a minimal Prometheus wrapper over
// a synchronous, low-level bus-polling API, the same shape as this
// module's Responder.Poll).
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Recorder holds the Prometheus collectors a Controller or Responder
// reports to. A nil *Recorder is valid and makes every method below a
// no-op, so host applications that don't want metrics never create or
// register Prometheus collectors.
type Recorder struct {
	RequestsSent      *prometheus.CounterVec
	Retries           *prometheus.CounterVec
	Timeouts          prometheus.Counter
	NacksByReason     *prometheus.CounterVec
	DiscoveryPasses   prometheus.Counter
	DevicesFound      prometheus.Counter
	QueuePushes       prometheus.Counter
	QueuePops         prometheus.Counter
}

// NewRecorder builds a Recorder and registers its collectors with reg.
// Pass prometheus.NewRegistry() (or prometheus.DefaultRegisterer) from
// the host application; this package never touches the global default
// registry implicitly.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		RequestsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rdm_requests_sent_total",
			Help: "RDM requests sent by command class.",
		}, []string{"command_class"}),
		Retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rdm_request_retries_total",
			Help: "RDM request retries by cause.",
		}, []string{"cause"}),
		Timeouts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rdm_request_timeouts_total",
			Help: "RDM requests that exhausted all retries.",
		}),
		NacksByReason: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rdm_nacks_total",
			Help: "NACK_REASON responses observed by reason.",
		}, []string{"reason"}),
		DiscoveryPasses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rdm_discovery_passes_total",
			Help: "Full-discovery passes run.",
		}),
		DevicesFound: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rdm_discovery_devices_found_total",
			Help: "Devices newly muted during discovery.",
		}),
		QueuePushes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rdm_responder_queue_pushes_total",
			Help: "Messages pushed onto a responder's queued-message ring.",
		}),
		QueuePops: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rdm_responder_queue_pops_total",
			Help: "Messages popped from a responder's queued-message ring.",
		}),
	}

	for _, c := range []prometheus.Collector{
		r.RequestsSent, r.Retries, r.Timeouts, r.NacksByReason,
		r.DiscoveryPasses, r.DevicesFound, r.QueuePushes, r.QueuePops,
	} {
		reg.MustRegister(c)
	}
	return r
}

func (r *Recorder) requestSent(commandClass string) {
	if r == nil {
		return
	}
	r.RequestsSent.WithLabelValues(commandClass).Inc()
}

// RequestSent records an outgoing request by command class name.
func (r *Recorder) RequestSent(commandClass string) {
	r.requestSent(commandClass)
}

// Retry records a retry attempt by cause (timeout, framing, checksum,
// mismatch).
func (r *Recorder) Retry(cause string) {
	if r == nil {
		return
	}
	r.Retries.WithLabelValues(cause).Inc()
}

// Timeout records a request that exhausted all retries.
func (r *Recorder) Timeout() {
	if r == nil {
		return
	}
	r.Timeouts.Inc()
}

// Nack records an observed NACK_REASON response.
func (r *Recorder) Nack(reason string) {
	if r == nil {
		return
	}
	r.NacksByReason.WithLabelValues(reason).Inc()
}

// DiscoveryPass records one full-discovery pass.
func (r *Recorder) DiscoveryPass() {
	if r == nil {
		return
	}
	r.DiscoveryPasses.Inc()
}

// DeviceFound records one device muted during discovery.
func (r *Recorder) DeviceFound() {
	if r == nil {
		return
	}
	r.DevicesFound.Inc()
}

// QueuePush records a message pushed onto a responder's queue.
func (r *Recorder) QueuePush() {
	if r == nil {
		return
	}
	r.QueuePushes.Inc()
}

// QueuePop records a message popped from a responder's queue.
func (r *Recorder) QueuePop() {
	if r == nil {
		return
	}
	r.QueuePops.Inc()
}
