// Package rdmtypes holds the value types RDM requests, responses, and
// responder state are built from: command classes, NACK reasons,
// response types, the fixed-capacity containers (DataPack,
// QueuedMessageRing) the no-heap budget requires (§3, §5), and the
// slice-backed PIDList catalogue.
package rdmtypes

// CommandClass is the RDM CC field (E1.20 §6.2.6, Table A-2).
type CommandClass uint8

const (
	DiscoveryCommand       CommandClass = 0x10
	DiscoveryCommandResponse CommandClass = 0x11
	GetCommand             CommandClass = 0x20
	GetCommandResponse     CommandClass = 0x21
	SetCommand             CommandClass = 0x30
	SetCommandResponse     CommandClass = 0x31
)

// IsRequest reports whether cc is a request-side (as opposed to
// response-side) command class.
func (cc CommandClass) IsRequest() bool {
	switch cc {
	case DiscoveryCommand, GetCommand, SetCommand:
		return true
	default:
		return false
	}
}

// ResponseFor returns the response command class a request command
// class produces. Discovery requests other than DISC_UNIQUE_BRANCH have
// no response command class of their own and reuse DiscoveryCommandResponse.
func (cc CommandClass) ResponseFor() CommandClass {
	switch cc {
	case DiscoveryCommand:
		return DiscoveryCommandResponse
	case GetCommand:
		return GetCommandResponse
	case SetCommand:
		return SetCommandResponse
	default:
		return cc
	}
}

func (cc CommandClass) String() string {
	switch cc {
	case DiscoveryCommand:
		return "DISCOVERY_COMMAND"
	case DiscoveryCommandResponse:
		return "DISCOVERY_COMMAND_RESPONSE"
	case GetCommand:
		return "GET_COMMAND"
	case GetCommandResponse:
		return "GET_COMMAND_RESPONSE"
	case SetCommand:
		return "SET_COMMAND"
	case SetCommandResponse:
		return "SET_COMMAND_RESPONSE"
	default:
		return "UNKNOWN_COMMAND_CLASS"
	}
}

// PID is a 16-bit RDM Parameter ID (E1.20 §6.2.6).
type PID uint16

// PIDs this module names. DISC_UNIQUE_BRANCH, DISC_MUTE, DISC_UN_MUTE,
// QUEUED_MESSAGE and SUPPORTED_PARAMETERS are the required PIDs the
// responder state machine handles internally (§4.5); every other PID,
// including the ones below, is dispatched to the user handler.
const (
	PIDDiscUniqueBranch     PID = 0x0001
	PIDDiscMute             PID = 0x0002
	PIDDiscUnMute           PID = 0x0003
	PIDQueuedMessage        PID = 0x0020
	PIDSupportedParameters  PID = 0x0050
	PIDStatusMessage        PID = 0x0030
	PIDIdentifyDevice       PID = 0x1000
	PIDDeviceInfo           PID = 0x0060
	PIDDeviceLabel          PID = 0x0082
	PIDManufacturerLabel    PID = 0x0081
	PIDSoftwareVersionLabel PID = 0x00C0
	PIDDMXPersonality       PID = 0x00E0
	PIDDMXStartAddress      PID = 0x00F0
	PIDSensorDefinition     PID = 0x0200
	PIDSensorValue          PID = 0x0201
)
