// Package wire defines the JSON shapes exchanged with child components:
// the Request variants a child may send, the Response variants the host
// may answer with, and the Event payload embedded in Response{type:event}.
package wire

import (
	"math"
	"sync/atomic"
)

var (
	// reqCounter mints ascending bookkeeping ids for Requests parsed off
	// a child's socket. The wire schema itself only exposes a
	// child-chosen id on ConfirmRecieve (which actually names a
	// Response id); every other Request variant still needs an id for
	// its Response's request field to echo, so the host mints one here.
	reqCounter uint32

	// hostReqCounter mints descending ids, starting just below
	// math.MaxUint32, for Requests the host synthesizes itself (e.g.
	// the crash-detected self-Drop in internal/process) rather than
	// parsing off a socket. Descending from the top of the uint32
	// space guarantees it can never collide with reqCounter's ascending
	// range, per spec.md §3.
	hostReqCounter uint32 = math.MaxUint32

	// respCounter mints every Response's own id, the value used as the
	// confirm-map key while a host-pushed event awaits acknowledgement.
	respCounter uint32
)

// NextRequestID mints the next ascending id for a Request parsed from a
// child's socket payload.
func NextRequestID() uint32 {
	return atomic.AddUint32(&reqCounter, 1)
}

// NextHostRequestID mints the next descending id for a Request the host
// builds itself rather than receiving from a child.
func NextHostRequestID() uint32 {
	return atomic.AddUint32(&hostReqCounter, ^uint32(0))
}

// NextResponseID mints the next ascending id for an outgoing Response.
func NextResponseID() uint32 {
	return atomic.AddUint32(&respCounter, 1)
}
