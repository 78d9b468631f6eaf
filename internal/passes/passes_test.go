package passes

import (
	"testing"

	"github.com/ccanvas/ccanvas/internal/discrim"
)

func u32(v uint32) *uint32 { return &v }

func TestSubscribeReplacesExistingEntryForSameDiscrim(t *testing.T) {
	p := New()
	d := discrim.Discriminator{1, 2}
	key := SimpleSub{Kind: KindAnyKey}

	p.Subscribe(key, PassItem{Discrim: d, Priority: u32(10)})
	p.Subscribe(key, PassItem{Discrim: d, Priority: u32(3)})

	subs := p.Subscribers([]SimpleSub{key})
	if len(subs) != 1 {
		t.Fatalf("expected exactly one entry (R1), got %d", len(subs))
	}
}

func TestUnsubscribeIdempotence(t *testing.T) {
	p := New()
	d := discrim.Discriminator{1, 2}
	key := SimpleSub{Kind: KindAnyKey}
	p.Subscribe(key, PassItem{Discrim: d, Priority: u32(0)})

	if !p.Unsubscribe(key, d) {
		t.Fatal("first unsubscribe should return true (R2)")
	}
	if p.Unsubscribe(key, d) {
		t.Fatal("second unsubscribe should return false (R2)")
	}
}

func TestPriorityOrdering(t *testing.T) {
	p := New()
	key := SimpleSub{Kind: KindAnyKey}
	a := discrim.Discriminator{1, 2}
	b := discrim.Discriminator{1, 3}
	c := discrim.Discriminator{1, 4}

	p.Subscribe(key, PassItem{Discrim: a, Priority: u32(10)})
	p.Subscribe(key, PassItem{Discrim: b, Priority: u32(5)})
	p.Subscribe(key, PassItem{Discrim: c, Priority: nil})

	subs := p.Subscribers([]SimpleSub{key})
	want := []string{b.String(), a.String(), c.String()}
	if len(subs) != len(want) {
		t.Fatalf("expected %d subs, got %d", len(want), len(subs))
	}
	for i, d := range subs {
		if d.String() != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], d.String())
		}
	}
}

func TestSubscribersDeduplicatesAcrossKeys(t *testing.T) {
	p := New()
	any := SimpleSub{Kind: KindAnyKey}
	specific := SimpleSub{Kind: KindKeyCode, KeyCode: "q"}
	d := discrim.Discriminator{1, 2}

	p.Subscribe(any, PassItem{Discrim: d, Priority: u32(5)})
	p.Subscribe(specific, PassItem{Discrim: d, Priority: u32(0)})

	subs := p.Subscribers([]SimpleSub{any, specific})
	if len(subs) != 1 {
		t.Fatalf("expected dedup to one entry (I3), got %d", len(subs))
	}
}

func TestUnsubAllSweepsEveryList(t *testing.T) {
	p := New()
	d := discrim.Discriminator{1, 2}
	other := discrim.Discriminator{1, 3}
	keyA := SimpleSub{Kind: KindAnyKey}
	keyB := SimpleSub{Kind: KindAnyMouse}

	p.Subscribe(keyA, PassItem{Discrim: d, Priority: u32(0)})
	p.Subscribe(keyB, PassItem{Discrim: d, Priority: u32(0)})
	p.Subscribe(keyB, PassItem{Discrim: other, Priority: u32(1)})

	p.UnsubAll(d)

	if subs := p.Subscribers([]SimpleSub{keyA}); len(subs) != 0 {
		t.Fatalf("expected keyA list emptied, got %v", subs)
	}
	subs := p.Subscribers([]SimpleSub{keyB})
	if len(subs) != 1 || !subs[0].Equal(other) {
		t.Fatalf("expected only %v to remain under keyB, got %v", other, subs)
	}
}

func TestSubscribeExpandsMultiple(t *testing.T) {
	p := New()
	d := discrim.Discriminator{1, 2}
	keyA := SimpleSub{Kind: KindAnyKey}
	keyB := SimpleSub{Kind: KindAnyMouse}

	multi := MultiSub{Entries: []MultiEntry{
		{Sub: keyA, Priority: u32(1)},
		{Sub: keyB, Priority: u32(2)},
	}}
	p.Subscribe(multi, PassItem{Discrim: d})

	if subs := p.Subscribers([]SimpleSub{keyA}); len(subs) != 1 {
		t.Fatalf("expected keyA to have the expanded entry, got %v", subs)
	}
	if subs := p.Subscribers([]SimpleSub{keyB}); len(subs) != 1 {
		t.Fatalf("expected keyB to have the expanded entry, got %v", subs)
	}
}
