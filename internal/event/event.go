// Package event defines the internal Event variant that flows through
// the EventBus and every Space/Process's pass pipeline, along with the
// Subscriptions() projection used to look a matching audience up in a
// Passes table and the Wire() projection used to serialise an event for
// delivery to a child.
package event

import (
	"encoding/json"

	"github.com/ccanvas/ccanvas/internal/discrim"
	"github.com/ccanvas/ccanvas/internal/packet"
	"github.com/ccanvas/ccanvas/internal/passes"
	"github.com/ccanvas/ccanvas/internal/wire"
)

// Kind tags which field of Event is populated.
type Kind int

const (
	KindKeyPress Kind = iota
	KindMouseEvent
	KindScreenResize
	KindMessage
	KindFocus
	KindUnfocus
	KindRequestPacket
)

// RequestPacket is a host-addressed wire.Request paired with the
// one-shot response slot the sender awaits.
type RequestPacket = packet.Packet[wire.Request, wire.Response]

// Message carries the payload of an Event{Kind: KindMessage}.
type Message struct {
	Sender  discrim.Discriminator
	Target  discrim.Discriminator
	Content json.RawMessage
}

// Event is the closed set of values the EventBus and every pass pipeline
// operate over.
type Event struct {
	Kind    Kind
	Key     *wire.KeyData
	Mouse   *wire.MouseData
	Resize  *wire.ResizeData
	Message *Message
	Packet  *RequestPacket
}

func KeyPress(key wire.KeyData) Event { return Event{Kind: KindKeyPress, Key: &key} }

func MouseEvent(mouse wire.MouseData) Event { return Event{Kind: KindMouseEvent, Mouse: &mouse} }

func ScreenResize(width, height int) Event {
	return Event{Kind: KindScreenResize, Resize: &wire.ResizeData{Width: width, Height: height}}
}

func NewMessage(sender, target discrim.Discriminator, content json.RawMessage) Event {
	return Event{Kind: KindMessage, Message: &Message{Sender: sender, Target: target, Content: content}}
}

func Focus() Event { return Event{Kind: KindFocus} }

func Unfocus() Event { return Event{Kind: KindUnfocus} }

func NewRequestPacket(p *RequestPacket) Event { return Event{Kind: KindRequestPacket, Packet: p} }

// Subscriptions returns the SimpleSub keys a Passes table should be
// probed with to find this event's audience. RequestPacket events have
// no subscription projection — they are routed structurally instead
// (spec.md §4.4 steps 1-2).
func (e Event) Subscriptions() []passes.SimpleSub {
	switch e.Kind {
	case KindKeyPress:
		subs := []passes.SimpleSub{
			{Kind: passes.KindAnyKey},
			{Kind: passes.KindKeyCode, KeyCode: string(e.Key.Code)},
			{Kind: passes.KindKeyModifier, Modifier: string(e.Key.Modifier)},
			{Kind: passes.KindKeyPress, KeyCode: string(e.Key.Code), KeyValue: e.Key.Value, Modifier: string(e.Key.Modifier)},
		}
		return subs
	case KindMouseEvent:
		return []passes.SimpleSub{
			{Kind: passes.KindAnyMouse},
			{Kind: passes.KindMouseEvent, MouseKind: string(e.Mouse.Kind)},
		}
	case KindScreenResize:
		return []passes.SimpleSub{{Kind: passes.KindScreenResize}}
	case KindMessage:
		return []passes.SimpleSub{
			{Kind: passes.KindAnyMessage},
			{Kind: passes.KindMessage, Source: passes.SourceFrom(e.Message.Sender)},
		}
	case KindFocus:
		return []passes.SimpleSub{{Kind: passes.KindFocused}}
	case KindUnfocus:
		return []passes.SimpleSub{{Kind: passes.KindUnfocused}}
	default:
		return nil
	}
}

// Wire renders e as the payload of a Response{type:event} sent to a
// subscriber. RequestPacket events have no wire form — Process.Pass
// handles them as a residue before reaching this point.
func (e Event) Wire() wire.EventPayload {
	switch e.Kind {
	case KindKeyPress:
		return wire.EventPayload{Type: wire.EventKey, Key: e.Key}
	case KindMouseEvent:
		return wire.EventPayload{Type: wire.EventMouse, Mouse: e.Mouse}
	case KindScreenResize:
		return wire.EventPayload{Type: wire.EventResize, Resize: e.Resize}
	case KindMessage:
		return wire.EventPayload{Type: wire.EventMessage, Message: &wire.MessageData{Content: e.Message.Content, Sender: e.Message.Sender}}
	case KindFocus:
		return wire.EventPayload{Type: wire.EventFocused}
	case KindUnfocus:
		return wire.EventPayload{Type: wire.EventUnfocused}
	default:
		return wire.EventPayload{}
	}
}
