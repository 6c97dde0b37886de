package logger

// Standard field keys for structured logging, shared across the
// controller, discovery, and responder packages so log lines stay
// greppable across the whole module.
const (
	KeySessionID        = "session_id"
	KeyUID              = "uid"
	KeySourceUID         = "source_uid"
	KeyDestinationUID    = "destination_uid"
	KeyTransactionNumber = "tn"
	KeySubDevice         = "sub_device"
	KeyCommandClass      = "command_class"
	KeyPID               = "pid"
	KeyPDL               = "pdl"
	KeyResponseType      = "response_type"
	KeyNackReason        = "nack_reason"
	KeyRetry             = "retry"
	KeyMaxRetries        = "max_retries"
	KeyLow               = "range_low"
	KeyHigh              = "range_high"
	KeyMuted             = "muted"
	KeyQueueDepth        = "queue_depth"
	KeyError             = "error"
)
