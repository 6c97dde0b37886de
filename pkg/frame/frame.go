// Package frame implements the RDM wire codec: encoding and decoding of
// request/response frames (E1.20 §6.2), the obfuscated discovery
// response layout (E1.20 §7.6.3), and DMX512 level frames (E1.11). This
// is the bit-exact wire contract §4.1 describes; every function
// here is pure (no I/O, no allocation beyond the returned slice) so it
// can run identically on a hosted system or a bare-metal target.
package frame

import (
	"github.com/dmxctl/rdm512/pkg/rdmerr"
	"github.com/dmxctl/rdm512/pkg/rdmtypes"
	"github.com/dmxctl/rdm512/pkg/uid"
)

const (
	// StartCodeRDM is SC_RDM, the first byte of every RDM frame.
	StartCodeRDM = 0xCC
	// SubStartCode is SC_SUB_MESSAGE, the second byte of every RDM frame.
	SubStartCode = 0x01
	// StartCodeDMX is the DMX512 Null Start Code.
	StartCodeDMX = 0x00

	// headerSize is the number of bytes from SC_RDM up to and including
	// PDL, i.e. everything but the parameter data and the checksum.
	headerSize = 24
	// ChecksumSize is the width of the trailing checksum field.
	ChecksumSize = 2
	// MaxFrameSize is the largest possible RDM frame: header + max PDL + checksum.
	MaxFrameSize = headerSize + rdmtypes.MaxPDL + ChecksumSize

	// DMXUniverseSize is the number of slots in a full DMX512 frame,
	// start code included (512 channels + the start code byte = 513).
	DMXUniverseSize = 513
)

// RdmRequestData is the controller-to-responder RDM message shape
// (§3).
type RdmRequestData struct {
	Destination       uid.PackageAddress
	Source            uid.UID
	TransactionNumber uint8
	PortID            uint8
	MessageCount      uint8
	SubDevice         uint16
	CommandClass      rdmtypes.CommandClass
	ParameterID       rdmtypes.PID
	ParameterData     rdmtypes.DataPack
}

// RdmResponseData is the responder-to-controller RDM message shape
// (§3); it adds ResponseType in place of the request's PortID.
type RdmResponseData struct {
	Destination       uid.UID
	Source            uid.UID
	TransactionNumber uint8
	ResponseType      rdmtypes.ResponseType
	MessageCount      uint8
	SubDevice         uint16
	CommandClass      rdmtypes.CommandClass
	ParameterID       rdmtypes.PID
	ParameterData     rdmtypes.DataPack
}

func checksum(b []byte) uint16 {
	var sum uint16
	for _, v := range b {
		sum += uint16(v)
	}
	return sum
}

func putHeader(b []byte, dest, src [6]byte, tn, portOrRT uint8, mc uint8, sd uint16, cc rdmtypes.CommandClass, pid rdmtypes.PID, pdl int) {
	b[0] = StartCodeRDM
	b[1] = SubStartCode
	b[2] = byte(headerSize + pdl)
	copy(b[3:9], dest[:])
	copy(b[9:15], src[:])
	b[15] = tn
	b[16] = portOrRT
	b[17] = mc
	b[18] = byte(sd >> 8)
	b[19] = byte(sd)
	b[20] = byte(cc)
	b[21] = byte(pid >> 8)
	b[22] = byte(pid)
	b[23] = byte(pdl)
}

// EncodeRequest serialises req into a wire frame.
func EncodeRequest(req RdmRequestData) ([]byte, error) {
	pdl := req.ParameterData.Len()
	if pdl > rdmtypes.MaxPDL {
		return nil, rdmerr.ErrPDLTooLarge
	}

	destBytes := req.Destination.UID().Bytes()
	srcBytes := req.Source.Bytes()

	total := headerSize + pdl + ChecksumSize
	out := make([]byte, total)
	putHeader(out, destBytes, srcBytes, req.TransactionNumber, req.PortID, req.MessageCount, req.SubDevice, req.CommandClass, req.ParameterID, pdl)
	copy(out[headerSize:headerSize+pdl], req.ParameterData.Bytes())

	sum := checksum(out[:headerSize+pdl])
	out[headerSize+pdl] = byte(sum >> 8)
	out[headerSize+pdl+1] = byte(sum)
	return out, nil
}

// EncodeResponse serialises resp into a wire frame. It is the
// responder-side counterpart to EncodeRequest; §4.1 specifies the
// frame layout symmetrically for both directions.
func EncodeResponse(resp RdmResponseData) ([]byte, error) {
	pdl := resp.ParameterData.Len()
	if pdl > rdmtypes.MaxPDL {
		return nil, rdmerr.ErrPDLTooLarge
	}

	destBytes := resp.Destination.Bytes()
	srcBytes := resp.Source.Bytes()

	total := headerSize + pdl + ChecksumSize
	out := make([]byte, total)
	putHeader(out, destBytes, srcBytes, resp.TransactionNumber, uint8(resp.ResponseType), resp.MessageCount, resp.SubDevice, resp.CommandClass, resp.ParameterID, pdl)
	copy(out[headerSize:headerSize+pdl], resp.ParameterData.Bytes())

	sum := checksum(out[:headerSize+pdl])
	out[headerSize+pdl] = byte(sum >> 8)
	out[headerSize+pdl+1] = byte(sum)
	return out, nil
}

// decodeHeader validates and parses the shared parts of a request or
// response frame, returning the raw header fields and the parameter
// data slice (a sub-slice of b, not a copy).
func decodeHeader(b []byte) (dest, src [6]byte, tn, portOrRT, mc uint8, sd uint16, cc rdmtypes.CommandClass, pid rdmtypes.PID, pd []byte, err error) {
	if len(b) < headerSize+ChecksumSize {
		err = rdmerr.ErrShortFrame
		return
	}
	if b[0] != StartCodeRDM || b[1] != SubStartCode {
		err = rdmerr.ErrBadStartCode
		return
	}

	length := int(b[2])
	if length != len(b)-ChecksumSize {
		err = rdmerr.ErrLengthMismatch
		return
	}

	pdl := int(b[23])
	if pdl > rdmtypes.MaxPDL {
		err = rdmerr.ErrPDLOutOfRange
		return
	}
	if length != headerSize+pdl {
		err = rdmerr.ErrLengthMismatch
		return
	}

	gotSum := checksum(b[:headerSize+pdl])
	wantSum := uint16(b[headerSize+pdl])<<8 | uint16(b[headerSize+pdl+1])
	if gotSum != wantSum {
		err = rdmerr.ErrChecksumMismatch
		return
	}

	copy(dest[:], b[3:9])
	copy(src[:], b[9:15])
	tn = b[15]
	portOrRT = b[16]
	mc = b[17]
	sd = uint16(b[18])<<8 | uint16(b[19])
	cc = rdmtypes.CommandClass(b[20])
	pid = rdmtypes.PID(uint16(b[21])<<8 | uint16(b[22]))
	pd = b[headerSize : headerSize+pdl]
	return
}

// DecodeRequest parses a wire frame as an RdmRequestData.
func DecodeRequest(b []byte) (RdmRequestData, error) {
	dest, src, tn, port, mc, sd, cc, pid, pd, err := decodeHeader(b)
	if err != nil {
		return RdmRequestData{}, err
	}
	dp, err := rdmtypes.NewDataPack(pd)
	if err != nil {
		return RdmRequestData{}, err
	}
	return RdmRequestData{
		Destination:       uid.AddressFromUID(uid.FromBytes(dest)),
		Source:            uid.FromBytes(src),
		TransactionNumber: tn,
		PortID:            port,
		MessageCount:      mc,
		SubDevice:         sd,
		CommandClass:      cc,
		ParameterID:       pid,
		ParameterData:     dp,
	}, nil
}

// DecodeResponse parses a wire frame as an RdmResponseData.
func DecodeResponse(b []byte) (RdmResponseData, error) {
	dest, src, tn, rt, mc, sd, cc, pid, pd, err := decodeHeader(b)
	if err != nil {
		return RdmResponseData{}, err
	}
	dp, err := rdmtypes.NewDataPack(pd)
	if err != nil {
		return RdmResponseData{}, err
	}
	return RdmResponseData{
		Destination:       uid.FromBytes(dest),
		Source:            uid.FromBytes(src),
		TransactionNumber: tn,
		ResponseType:      rdmtypes.ResponseType(rt),
		MessageCount:      mc,
		SubDevice:         sd,
		CommandClass:      cc,
		ParameterID:       pid,
		ParameterData:     dp,
	}, nil
}
