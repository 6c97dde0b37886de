package rdmtypes

import "github.com/dmxctl/rdm512/pkg/rdmerr"

// MaxPDL is the largest parameter-data length E1.20 allows in one RDM
// frame (§6.2.6). The single-byte PDL field could express up to 255;
// the frame-size limit caps it at 231.
const MaxPDL = 231

// DataPack is a fixed-capacity byte sequence holding RDM parameter
// data. It never allocates beyond its backing array, satisfying the
// no-heap budget (§3, §5): every RDM request and response carries
// one by value.
type DataPack struct {
	buf [MaxPDL]byte
	n   int
}

// NewDataPack copies data into a DataPack, failing if data exceeds
// MaxPDL bytes.
func NewDataPack(data []byte) (DataPack, error) {
	var dp DataPack
	if len(data) > MaxPDL {
		return dp, rdmerr.ErrPDLTooLarge
	}
	dp.n = copy(dp.buf[:], data)
	return dp, nil
}

// Len returns the number of valid bytes.
func (dp DataPack) Len() int {
	return dp.n
}

// Bytes returns the valid prefix of the backing array. Callers must not
// retain the returned slice past the DataPack's next mutation; it
// aliases the array embedded in dp, not a heap copy.
func (dp *DataPack) Bytes() []byte {
	return dp.buf[:dp.n]
}

// Equal reports whether dp and other hold identical bytes.
func (dp DataPack) Equal(other DataPack) bool {
	if dp.n != other.n {
		return false
	}
	for i := 0; i < dp.n; i++ {
		if dp.buf[i] != other.buf[i] {
			return false
		}
	}
	return true
}
