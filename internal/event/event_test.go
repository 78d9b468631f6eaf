package event

import (
	"testing"

	"github.com/ccanvas/ccanvas/internal/discrim"
	"github.com/ccanvas/ccanvas/internal/passes"
	"github.com/ccanvas/ccanvas/internal/wire"
)

func TestKeyPressSubscriptionsIncludeAnyKeyAndExactMatch(t *testing.T) {
	ev := KeyPress(wire.KeyData{Code: wire.KeyChar, Value: "q", Modifier: wire.ModNone})
	subs := ev.Subscriptions()

	var sawAny, sawExact bool
	for _, s := range subs {
		if s.Kind == passes.KindAnyKey {
			sawAny = true
		}
		if s.Kind == passes.KindKeyPress && s.KeyValue == "q" {
			sawExact = true
		}
	}
	if !sawAny || !sawExact {
		t.Fatalf("missing expected subscription keys: %+v", subs)
	}
}

func TestMessageSubscriptionsMatchSenderDiscrim(t *testing.T) {
	sender := discrim.Discriminator{1, 7}
	ev := NewMessage(sender, discrim.Discriminator{1, 9}, []byte(`"hi"`))
	subs := ev.Subscriptions()

	found := false
	for _, s := range subs {
		if s.Kind == passes.KindMessage && s.Source == sender.String() {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a specific-message subscription for sender, got %+v", subs)
	}
}

func TestFocusWireRendersFocusedType(t *testing.T) {
	if payload := Focus().Wire(); payload.Type != wire.EventFocused {
		t.Fatalf("expected focused type, got %q", payload.Type)
	}
	if payload := Unfocus().Wire(); payload.Type != wire.EventUnfocused {
		t.Fatalf("expected unfocused type, got %q", payload.Type)
	}
}

func TestResizeWireCarriesDimensions(t *testing.T) {
	payload := ScreenResize(80, 24).Wire()
	if payload.Resize == nil || payload.Resize.Width != 80 || payload.Resize.Height != 24 {
		t.Fatalf("unexpected resize payload: %+v", payload.Resize)
	}
}
