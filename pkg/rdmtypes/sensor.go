package rdmtypes

import "github.com/dmxctl/rdm512/pkg/rdmerr"

// SensorDefinition is the GET SENSOR_DEFINITION (0x0200) response
// payload (E1.20 §10.7.1).
type SensorDefinition struct {
	SensorNumber uint8
	Type         uint8
	Unit         uint8
	Prefix       uint8
	RangeMin     int16
	RangeMax     int16
	NormalMin    int16
	NormalMax    int16
	Recorded     bool
	Description  string
}

const sensorDefinitionFixedSize = 13

// DecodeSensorDefinition parses a GET SENSOR_DEFINITION response.
func DecodeSensorDefinition(b []byte) (SensorDefinition, error) {
	if len(b) < sensorDefinitionFixedSize {
		return SensorDefinition{}, rdmerr.ErrPDLOutOfRange
	}
	return SensorDefinition{
		SensorNumber: b[0],
		Type:         b[1],
		Unit:         b[2],
		Prefix:       b[3],
		RangeMin:     int16(uint16(b[4])<<8 | uint16(b[5])),
		RangeMax:     int16(uint16(b[6])<<8 | uint16(b[7])),
		NormalMin:    int16(uint16(b[8])<<8 | uint16(b[9])),
		NormalMax:    int16(uint16(b[10])<<8 | uint16(b[11])),
		Recorded:     b[12] != 0,
		Description:  string(b[13:]),
	}, nil
}

// EncodeSensorDefinition serialises def as a GET SENSOR_DEFINITION
// response payload.
func EncodeSensorDefinition(def SensorDefinition) (DataPack, error) {
	buf := make([]byte, sensorDefinitionFixedSize+len(def.Description))
	buf[0] = def.SensorNumber
	buf[1] = def.Type
	buf[2] = def.Unit
	buf[3] = def.Prefix
	buf[4] = byte(uint16(def.RangeMin) >> 8)
	buf[5] = byte(def.RangeMin)
	buf[6] = byte(uint16(def.RangeMax) >> 8)
	buf[7] = byte(def.RangeMax)
	buf[8] = byte(uint16(def.NormalMin) >> 8)
	buf[9] = byte(def.NormalMin)
	buf[10] = byte(uint16(def.NormalMax) >> 8)
	buf[11] = byte(def.NormalMax)
	if def.Recorded {
		buf[12] = 1
	}
	copy(buf[13:], def.Description)
	return NewDataPack(buf)
}

// SensorValue is the GET SENSOR_VALUE (0x0201) response payload (E1.20
// §10.7.2).
type SensorValue struct {
	SensorNumber uint8
	Value        int16
	ValueLowest  int16
	ValueHighest int16
	ValueRecord  int16
}

const sensorValueWireSize = 9

// DecodeSensorValue parses a GET SENSOR_VALUE response.
func DecodeSensorValue(b []byte) (SensorValue, error) {
	if len(b) < sensorValueWireSize {
		return SensorValue{}, rdmerr.ErrPDLOutOfRange
	}
	return SensorValue{
		SensorNumber: b[0],
		Value:        int16(uint16(b[1])<<8 | uint16(b[2])),
		ValueLowest:  int16(uint16(b[3])<<8 | uint16(b[4])),
		ValueHighest: int16(uint16(b[5])<<8 | uint16(b[6])),
		ValueRecord:  int16(uint16(b[7])<<8 | uint16(b[8])),
	}, nil
}

// EncodeSensorValue serialises v as a GET SENSOR_VALUE response payload.
func EncodeSensorValue(v SensorValue) DataPack {
	var b [sensorValueWireSize]byte
	b[0] = v.SensorNumber
	b[1] = byte(uint16(v.Value) >> 8)
	b[2] = byte(v.Value)
	b[3] = byte(uint16(v.ValueLowest) >> 8)
	b[4] = byte(v.ValueLowest)
	b[5] = byte(uint16(v.ValueHighest) >> 8)
	b[6] = byte(v.ValueHighest)
	b[7] = byte(uint16(v.ValueRecord) >> 8)
	b[8] = byte(v.ValueRecord)
	dp, _ := NewDataPack(b[:])
	return dp
}
