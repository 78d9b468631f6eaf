package wire

import (
	"encoding/json"
	"fmt"

	"github.com/ccanvas/ccanvas/internal/discrim"
	"github.com/ccanvas/ccanvas/internal/passes"
)

// RequestType tags the variant of an incoming Request, matching the
// "type" field every child-sent JSON object carries.
type RequestType string

const (
	ReqConfirmRecieve RequestType = "confirm recieve"
	ReqSubscribe      RequestType = "subscribe"
	ReqUnsubscribe    RequestType = "Unsubscribe"
	ReqSetSocket      RequestType = "set socket"
	ReqDrop           RequestType = "drop"
	ReqRender         RequestType = "render"
	ReqSpawn          RequestType = "spawn"
	ReqMessage        RequestType = "message"
	ReqNewSpace       RequestType = "new space"
	ReqFocusAt        RequestType = "focus at"
)

// RequestContent is implemented by every concrete request payload.
type RequestContent interface {
	requestType() RequestType
}

type ConfirmRecieve struct {
	ID   uint32 `json:"id"`
	Pass bool   `json:"pass"`
}

func (ConfirmRecieve) requestType() RequestType { return ReqConfirmRecieve }

type Subscribe struct {
	Channel   passes.Subscription
	Priority  *uint32
	Component discrim.Discriminator
}

func (Subscribe) requestType() RequestType { return ReqSubscribe }

type Unsubscribe struct {
	Channel   passes.Subscription
	Component discrim.Discriminator
}

func (Unsubscribe) requestType() RequestType { return ReqUnsubscribe }

type SetSocket struct {
	Path string `json:"path"`
}

func (SetSocket) requestType() RequestType { return ReqSetSocket }

type Drop struct {
	Discrim discrim.Discriminator `json:"discrim"`
}

func (Drop) requestType() RequestType { return ReqDrop }

type Render struct {
	Content json.RawMessage `json:"content"`
	Flush   bool            `json:"flush"`
}

func (Render) requestType() RequestType { return ReqRender }

type Spawn struct {
	Command string   `json:"command"`
	Args    []string `json:"args"`
	Label   string   `json:"label"`
}

func (Spawn) requestType() RequestType { return ReqSpawn }

type Message struct {
	Content json.RawMessage        `json:"content"`
	Sender  discrim.Discriminator  `json:"sender"`
	Target  discrim.Discriminator  `json:"target"`
}

func (Message) requestType() RequestType { return ReqMessage }

type NewSpace struct {
	Label string `json:"label"`
}

func (NewSpace) requestType() RequestType { return ReqNewSpace }

type FocusAt struct{}

func (FocusAt) requestType() RequestType { return ReqFocusAt }

// Request is the internal, fully-addressed form of a child's raw JSON
// request once the listener's rewriting pass (spec.md §4.3.1) has filled
// in Target. DecodeRequest itself leaves Target zero-valued; the
// listener populates it per variant before handing the Request to the
// EventBus.
type Request struct {
	ID      uint32
	Target  discrim.Discriminator
	Content RequestContent
}

type envelope struct {
	Type RequestType `json:"type"`
}

// DecodeRequest parses a single JSON object read off a child's request
// socket into a Request. Target is left empty — routing belongs to the
// listener, not the wire codec.
func DecodeRequest(raw []byte) (*Request, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("wire: decode request envelope: %w", err)
	}

	content, err := decodeContent(env.Type, raw)
	if err != nil {
		return nil, err
	}

	return &Request{ID: NextRequestID(), Content: content}, nil
}

func decodeContent(t RequestType, raw []byte) (RequestContent, error) {
	switch t {
	case ReqConfirmRecieve:
		var c ConfirmRecieve
		return c, unmarshalInto(raw, &c)
	case ReqSubscribe:
		var w struct {
			Channel  json.RawMessage `json:"channel"`
			Priority *uint32         `json:"priority"`
		}
		if err := unmarshalInto(raw, &w); err != nil {
			return nil, err
		}
		sub, err := passes.DecodeSubscription(w.Channel)
		if err != nil {
			return nil, err
		}
		return Subscribe{Channel: sub, Priority: w.Priority}, nil
	case ReqUnsubscribe:
		var w struct {
			Channel json.RawMessage `json:"channel"`
		}
		if err := unmarshalInto(raw, &w); err != nil {
			return nil, err
		}
		sub, err := passes.DecodeSubscription(w.Channel)
		if err != nil {
			return nil, err
		}
		simple, ok := sub.(passes.SimpleSub)
		if !ok {
			return nil, fmt.Errorf("wire: unsubscribe channel must not be a Multiple bundle")
		}
		return Unsubscribe{Channel: simple}, nil
	case ReqSetSocket:
		var c SetSocket
		return c, unmarshalInto(raw, &c)
	case ReqDrop:
		var c Drop
		return c, unmarshalInto(raw, &c)
	case ReqRender:
		var c Render
		return c, unmarshalInto(raw, &c)
	case ReqSpawn:
		var c Spawn
		return c, unmarshalInto(raw, &c)
	case ReqMessage:
		var c Message
		return c, unmarshalInto(raw, &c)
	case ReqNewSpace:
		var c NewSpace
		return c, unmarshalInto(raw, &c)
	case ReqFocusAt:
		return FocusAt{}, nil
	default:
		return nil, fmt.Errorf("wire: unknown request type %q", t)
	}
}

// EncodeContent renders a RequestContent back into the raw JSON object a
// child would send, envelope included. It exists for tests that need to
// drive a Process's listener the way a real child socket would.
func EncodeContent(c RequestContent) ([]byte, error) {
	switch v := c.(type) {
	case ConfirmRecieve:
		return marshalTagged(ReqConfirmRecieve, v)
	case Subscribe:
		channel, err := passes.EncodeSubscription(v.Channel)
		if err != nil {
			return nil, err
		}
		return marshalTagged(ReqSubscribe, struct {
			Channel  json.RawMessage `json:"channel"`
			Priority *uint32         `json:"priority,omitempty"`
		}{Channel: channel, Priority: v.Priority})
	case Unsubscribe:
		channel, err := passes.EncodeSubscription(v.Channel)
		if err != nil {
			return nil, err
		}
		return marshalTagged(ReqUnsubscribe, struct {
			Channel json.RawMessage `json:"channel"`
		}{Channel: channel})
	case SetSocket:
		return marshalTagged(ReqSetSocket, v)
	case Drop:
		return marshalTagged(ReqDrop, v)
	case Render:
		return marshalTagged(ReqRender, v)
	case Spawn:
		return marshalTagged(ReqSpawn, v)
	case Message:
		return marshalTagged(ReqMessage, v)
	case NewSpace:
		return marshalTagged(ReqNewSpace, v)
	case FocusAt:
		return marshalTagged(ReqFocusAt, v)
	default:
		return nil, fmt.Errorf("wire: unknown request content %T", c)
	}
}

func marshalTagged(t RequestType, body any) ([]byte, error) {
	bodyRaw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(bodyRaw, &m); err != nil {
		return nil, err
	}
	m["type"] = mustMarshal(t)
	return json.Marshal(m)
}

func mustMarshal(v any) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}

func unmarshalInto(raw []byte, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("wire: decode request body: %w", err)
	}
	return nil
}
