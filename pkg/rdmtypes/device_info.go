package rdmtypes

import "github.com/dmxctl/rdm512/pkg/rdmerr"

// DeviceInfo is the GET DEVICE_INFO (0x0060) response payload (E1.20
// Table A-1 / §10.5.1). Supplemented beyond spec.md's "non-exhaustive"
// helper list, since a believable device-management surface needs the
// one PID every responder implements.
type DeviceInfo struct {
	ProtocolVersionMajor uint8
	ProtocolVersionMinor uint8
	ModelID              uint16
	ProductCategory      uint16
	SoftwareVersionID     uint32
	DMXFootprint          uint16
	CurrentPersonality    uint8
	PersonalityCount      uint8
	DMXStartAddress       uint16
	SubDeviceCount        uint16
	SensorCount           uint8
}

const deviceInfoWireSize = 19

// DecodeDeviceInfo parses a GET DEVICE_INFO response's parameter data.
func DecodeDeviceInfo(b []byte) (DeviceInfo, error) {
	if len(b) < deviceInfoWireSize {
		return DeviceInfo{}, rdmerr.ErrPDLOutOfRange
	}
	return DeviceInfo{
		ProtocolVersionMajor: b[0],
		ProtocolVersionMinor: b[1],
		ModelID:              uint16(b[2])<<8 | uint16(b[3]),
		ProductCategory:      uint16(b[4])<<8 | uint16(b[5]),
		SoftwareVersionID:     uint32(b[6])<<24 | uint32(b[7])<<16 | uint32(b[8])<<8 | uint32(b[9]),
		DMXFootprint:          uint16(b[10])<<8 | uint16(b[11]),
		CurrentPersonality:    b[12],
		PersonalityCount:      b[13],
		DMXStartAddress:       uint16(b[14])<<8 | uint16(b[15]),
		SubDeviceCount:        uint16(b[16])<<8 | uint16(b[17]),
		SensorCount:           b[18],
	}, nil
}

// EncodeDeviceInfo serialises info as a GET DEVICE_INFO response payload.
func EncodeDeviceInfo(info DeviceInfo) DataPack {
	var b [deviceInfoWireSize]byte
	b[0] = info.ProtocolVersionMajor
	b[1] = info.ProtocolVersionMinor
	b[2] = byte(info.ModelID >> 8)
	b[3] = byte(info.ModelID)
	b[4] = byte(info.ProductCategory >> 8)
	b[5] = byte(info.ProductCategory)
	b[6] = byte(info.SoftwareVersionID >> 24)
	b[7] = byte(info.SoftwareVersionID >> 16)
	b[8] = byte(info.SoftwareVersionID >> 8)
	b[9] = byte(info.SoftwareVersionID)
	b[10] = byte(info.DMXFootprint >> 8)
	b[11] = byte(info.DMXFootprint)
	b[12] = info.CurrentPersonality
	b[13] = info.PersonalityCount
	b[14] = byte(info.DMXStartAddress >> 8)
	b[15] = byte(info.DMXStartAddress)
	b[16] = byte(info.SubDeviceCount >> 8)
	b[17] = byte(info.SubDeviceCount)
	b[18] = info.SensorCount
	dp, _ := NewDataPack(b[:])
	return dp
}
