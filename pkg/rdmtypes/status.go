package rdmtypes

import "github.com/dmxctl/rdm512/pkg/rdmerr"

// StatusType is the severity carried by a STATUS_MESSAGE response
// (E1.20 §10.3, Table A-19 "Status Type").
type StatusType uint8

const (
	StatusNone     StatusType = 0x00
	StatusGetLastMessage StatusType = 0x01
	StatusAdvisory StatusType = 0x02
	StatusWarning  StatusType = 0x03
	StatusError    StatusType = 0x04
)

// StatusMessage is the last STATUS_MESSAGE (or empty STATUS_NONE)
// QUEUED_MESSAGE falls back to when the queue is empty, per E1.20
// §10.3's STATUS_MESSAGE payload shape.
type StatusMessage struct {
	Type            StatusType
	SubDeviceID     uint16
	StatusMessageID uint16
	Data1           int16
	Data2           int16
}

// NoneStatus returns the empty STATUS_NONE sentinel QUEUED_MESSAGE falls back to
// when both the queue and message-status history are empty.
func NoneStatus() StatusMessage {
	return StatusMessage{Type: StatusNone}
}

const statusMessageWireSize = 9

// EncodeStatusMessage serialises msg as a STATUS_MESSAGE/QUEUED_MESSAGE
// fallback response payload (E1.20 Table A-19).
func EncodeStatusMessage(msg StatusMessage) DataPack {
	var b [statusMessageWireSize]byte
	b[0] = byte(msg.Type)
	b[1] = byte(msg.SubDeviceID >> 8)
	b[2] = byte(msg.SubDeviceID)
	b[3] = byte(msg.StatusMessageID >> 8)
	b[4] = byte(msg.StatusMessageID)
	b[5] = byte(uint16(msg.Data1) >> 8)
	b[6] = byte(msg.Data1)
	b[7] = byte(uint16(msg.Data2) >> 8)
	b[8] = byte(msg.Data2)
	dp, _ := NewDataPack(b[:])
	return dp
}

// DecodeStatusMessage parses a STATUS_MESSAGE/QUEUED_MESSAGE fallback
// response payload.
func DecodeStatusMessage(b []byte) (StatusMessage, error) {
	if len(b) < statusMessageWireSize {
		return StatusMessage{}, rdmerr.ErrPDLOutOfRange
	}
	return StatusMessage{
		Type:            StatusType(b[0]),
		SubDeviceID:     uint16(b[1])<<8 | uint16(b[2]),
		StatusMessageID: uint16(b[3])<<8 | uint16(b[4]),
		Data1:           int16(uint16(b[5])<<8 | uint16(b[6])),
		Data2:           int16(uint16(b[7])<<8 | uint16(b[8])),
	}, nil
}
