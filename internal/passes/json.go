package passes

import (
	"encoding/json"
	"fmt"

	"github.com/ccanvas/ccanvas/internal/discrim"
)

// wireSub is the on-the-wire shape of every Subscription variant. Only
// the fields relevant to Kind are populated; the rest are left zero.
type wireSub struct {
	Type     Kind            `json:"type"`
	Code     string          `json:"code,omitempty"`
	Value    string          `json:"value,omitempty"`
	Modifier string          `json:"modifier,omitempty"`
	Kind     string          `json:"kind,omitempty"`
	Source   discrim.Discriminator `json:"source,omitempty"`
	Subs     []wireMultiEntry `json:"subs,omitempty"`
}

type wireMultiEntry struct {
	Sub      json.RawMessage `json:"sub"`
	Priority *uint32         `json:"priority"`
}

// DecodeSubscription parses a Subscription JSON payload as described in
// spec.md §6 ("Subscription variants are tagged type: ...").
func DecodeSubscription(raw json.RawMessage) (Subscription, error) {
	var w wireSub
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("passes: decode subscription: %w", err)
	}
	switch w.Type {
	case KindMultiple:
		entries := make([]MultiEntry, 0, len(w.Subs))
		for _, e := range w.Subs {
			sub, err := DecodeSubscription(e.Sub)
			if err != nil {
				return nil, err
			}
			entries = append(entries, MultiEntry{Sub: sub, Priority: e.Priority})
		}
		return MultiSub{Entries: entries}, nil
	case KindAnyKey, KindAnyMouse, KindAnyMessage, KindScreenResize, KindFocused, KindUnfocused:
		return SimpleSub{Kind: w.Type}, nil
	case KindKeyPress:
		return SimpleSub{Kind: w.Type, KeyCode: w.Code, KeyValue: w.Value, Modifier: w.Modifier}, nil
	case KindKeyModifier:
		return SimpleSub{Kind: w.Type, Modifier: w.Modifier}, nil
	case KindKeyCode:
		return SimpleSub{Kind: w.Type, KeyCode: w.Code}, nil
	case KindMouseEvent:
		return SimpleSub{Kind: w.Type, MouseKind: w.Kind}, nil
	case KindMessage:
		return SimpleSub{Kind: w.Type, Source: w.Source.String()}, nil
	default:
		return nil, fmt.Errorf("passes: unknown subscription type %q", w.Type)
	}
}

// EncodeSubscription renders sub back into the wire shape DecodeSubscription
// accepts.
func EncodeSubscription(sub Subscription) (json.RawMessage, error) {
	switch s := sub.(type) {
	case MultiSub:
		entries := make([]wireMultiEntry, 0, len(s.Entries))
		for _, e := range s.Entries {
			raw, err := EncodeSubscription(e.Sub)
			if err != nil {
				return nil, err
			}
			entries = append(entries, wireMultiEntry{Sub: raw, Priority: e.Priority})
		}
		return json.Marshal(wireSub{Type: KindMultiple, Subs: entries})
	case SimpleSub:
		w := wireSub{Type: s.Kind, Code: s.KeyCode, Value: s.KeyValue, Modifier: s.Modifier, Kind: s.MouseKind}
		if s.Source != "" {
			d, err := discrim.Parse(s.Source)
			if err != nil {
				return nil, err
			}
			w.Source = d
		}
		return json.Marshal(w)
	default:
		return nil, fmt.Errorf("passes: unknown subscription implementation %T", sub)
	}
}

// Flatten returns every SimpleSub a Subscription resolves to, useful for
// callers that need to register the same PassItem priority across all of
// a Multiple's leaves (table lookups always use the leaves, never the
// Multiple wrapper itself).
func Flatten(sub Subscription) []SimpleSub {
	switch s := sub.(type) {
	case MultiSub:
		var out []SimpleSub
		for _, e := range s.Entries {
			out = append(out, Flatten(e.Sub)...)
		}
		return out
	case SimpleSub:
		return []SimpleSub{s}
	default:
		return nil
	}
}
