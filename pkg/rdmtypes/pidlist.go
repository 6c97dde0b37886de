package rdmtypes

// MaxPIDsPerPage is the number of 2-byte PIDs that fit in one
// SUPPORTED_PARAMETERS response (115 * 2 = 230 <= MaxPDL).
const MaxPIDsPerPage = 115

// PIDList is a caller-owned list of supported PIDs, backed by a plain
// slice. A responder's config holds one for its entire supported-PID
// catalogue; the responder's SUPPORTED_PARAMETERS handling pages through
// it MaxPIDsPerPage at a time, emitting ACK_OVERFLOW between pages (§4.5).
type PIDList []PID

// Page returns the slice of pids starting at offset, at most
// MaxPIDsPerPage entries, and whether more pages follow.
func (l PIDList) Page(offset int) (page []PID, more bool) {
	if offset >= len(l) {
		return nil, false
	}
	end := offset + MaxPIDsPerPage
	if end >= len(l) {
		return l[offset:], false
	}
	return l[offset:end], true
}

// Contains reports whether pid is present in the list.
func (l PIDList) Contains(pid PID) bool {
	for _, p := range l {
		if p == pid {
			return true
		}
	}
	return false
}
