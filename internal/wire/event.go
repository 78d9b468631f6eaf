package wire

import (
	"encoding/json"

	"github.com/ccanvas/ccanvas/internal/discrim"
)

// EventKind tags the variant carried by an EventPayload.
type EventKind string

const (
	EventKey        EventKind = "key"
	EventMouse      EventKind = "mouse"
	EventResize     EventKind = "resize"
	EventMessage    EventKind = "message"
	EventFocused    EventKind = "focused"
	EventUnfocused  EventKind = "unfocused"
)

// EventPayload is the body of a Response{type:event}, delivered to a
// child as the result of a subscription match.
type EventPayload struct {
	Type    EventKind    `json:"type"`
	Key     *KeyData     `json:"key,omitempty"`
	Mouse   *MouseData   `json:"mouse,omitempty"`
	Resize  *ResizeData  `json:"resize,omitempty"`
	Message *MessageData `json:"message,omitempty"`
}

type KeyData struct {
	Code     KeyCode  `json:"code"`
	Value    string   `json:"value,omitempty"`
	Modifier Modifier `json:"modifier,omitempty"`
}

type MouseData struct {
	Kind MouseKind `json:"kind"`
	X    int       `json:"x"`
	Y    int       `json:"y"`
}

type ResizeData struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type MessageData struct {
	Content json.RawMessage       `json:"content"`
	Sender  discrim.Discriminator `json:"sender"`
}
