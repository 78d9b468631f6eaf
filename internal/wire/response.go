package wire

import (
	"encoding/json"

	"github.com/ccanvas/ccanvas/internal/discrim"
)

// ResponseType tags the variant carried by a Response.
type ResponseType string

const (
	RespSuccess     ResponseType = "success"
	RespError       ResponseType = "error"
	RespUndelivered ResponseType = "undelivered"
	RespEvent       ResponseType = "event"
)

// SuccessKind names the operation a success Response confirms.
type SuccessKind string

const (
	SuccessSpawned          SuccessKind = "spawned"
	SuccessSpaceCreated     SuccessKind = "space created"
	SuccessSubscribeAdded   SuccessKind = "subscribe added"
	SuccessSubscribeRemoved SuccessKind = "subscribe removed"
	SuccessDropped          SuccessKind = "dropped"
	SuccessRendered         SuccessKind = "rendered"
	SuccessMessageDelivered SuccessKind = "message delivered"
	SuccessListenerSet      SuccessKind = "listener set"
	SuccessFocusChanged     SuccessKind = "focus changed"
)

// ErrorKind names the failure a Response{type:error} reports.
type ErrorKind string

const (
	ErrComponentNotFound ErrorKind = "component not found"
	ErrSpawnFailed       ErrorKind = "spawn failed"
	ErrAlreadySubscribed ErrorKind = "already subscribed"
	ErrMalformedRequest  ErrorKind = "malformed request"
	ErrSpaceCreateFailed ErrorKind = "space create failed"
)

type SuccessPayload struct {
	Kind    SuccessKind           `json:"kind"`
	Discrim discrim.Discriminator `json:"discrim,omitempty"`
}

type ErrorPayload struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message,omitempty"`
}

// Response is what the host writes to a child's announced reply socket:
// either the answer to one of its requests or an unsolicited event. The
// request socket itself is read-only from the host's side.
type Response struct {
	Type    ResponseType    `json:"type"`
	ID      uint32          `json:"id"`
	Request *uint32         `json:"request,omitempty"`
	Success *SuccessPayload `json:"success,omitempty"`
	Error   *ErrorPayload   `json:"error,omitempty"`
	Event   *EventPayload   `json:"event,omitempty"`
}

// NewSuccess builds a success Response answering the request with id
// reqID, minting a fresh Response id.
func NewSuccess(reqID uint32, kind SuccessKind) Response {
	return Response{Type: RespSuccess, ID: NextResponseID(), Request: &reqID, Success: &SuccessPayload{Kind: kind}}
}

// NewSuccessWithDiscrim is NewSuccess plus the discriminator allocated by
// the operation (Spawn, NewSpace), returned so the child can address its
// new child going forward.
func NewSuccessWithDiscrim(reqID uint32, kind SuccessKind, d discrim.Discriminator) Response {
	return Response{Type: RespSuccess, ID: NextResponseID(), Request: &reqID, Success: &SuccessPayload{Kind: kind, Discrim: d}}
}

// NewError builds an error Response answering the request with id reqID.
func NewError(reqID uint32, kind ErrorKind, message string) Response {
	return Response{Type: RespError, ID: NextResponseID(), Request: &reqID, Error: &ErrorPayload{Kind: kind, Message: message}}
}

// NewUndelivered reports that a request was not delivered: its target
// resolved to nothing live, a subscription filter rejected a Message, or
// a Process was asked to Spawn.
func NewUndelivered(reqID uint32) Response {
	return Response{Type: RespUndelivered, ID: NextResponseID(), Request: &reqID}
}

// NewEvent wraps payload as an unsolicited Response, minting a fresh
// Response id used as the confirm-map key for the event's ConfirmRecieve
// round trip.
func NewEvent(payload EventPayload) Response {
	return Response{Type: RespEvent, ID: NextResponseID(), Event: &payload}
}

// Encode renders r as the bytes written to the child's socket.
func (r Response) Encode() ([]byte, error) {
	return json.Marshal(r)
}
