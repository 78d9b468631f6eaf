// Package passes implements the priority-ordered subscription table owned
// by every Space: a mapping from Subscription filter to an ordered list of
// PassItems, kept dense (no empty lists) and unique per (filter, discrim).
package passes

import (
	"sort"
	"sync"

	"github.com/ccanvas/ccanvas/internal/discrim"
)

// Kind tags the flavor of a SimpleSub filter. The string values double as
// the wire protocol's "type" tag for Subscription JSON payloads.
type Kind string

const (
	KindAnyKey       Kind = "all key presses"
	KindAnyMouse     Kind = "all mouse events"
	KindAnyMessage   Kind = "all messages"
	KindKeyPress     Kind = "specific key press"
	KindKeyModifier  Kind = "specific key modifier"
	KindKeyCode      Kind = "specific key code"
	KindMouseEvent   Kind = "specific mouse event"
	KindMessage      Kind = "specific message"
	KindScreenResize Kind = "screen resize"
	KindFocused      Kind = "focused"
	KindUnfocused    Kind = "unfocused"
	KindMultiple     Kind = "multiple"
)

// SimpleSub is a single, comparable subscription filter. It is the only
// type ever used as a Passes map key — the Multiple variant always
// expands into SimpleSubs before it reaches storage.
type SimpleSub struct {
	Kind      Kind
	KeyCode   string
	KeyValue  string
	Modifier  string
	MouseKind string
	// Source is the discriminator.String() encoding of a "specific
	// message" subscription's expected sender, matched exactly; it is ""
	// for every other Kind.
	Source string
}

// SourceFrom encodes a discriminator for use as a SimpleSub.Source value.
func SourceFrom(d discrim.Discriminator) string {
	return d.String()
}

// Subscription is either a SimpleSub leaf or a MultiSub bundle. Only
// SimpleSub is comparable; MultiSub carries a slice and is expanded by
// Subscribe before anything is stored.
type Subscription interface {
	isSubscription()
}

func (SimpleSub) isSubscription() {}

// MultiEntry pairs a nested Subscription with the priority it should be
// registered at, used by MultiSub.
type MultiEntry struct {
	Sub      Subscription
	Priority *uint32
}

// MultiSub bundles several (Subscription, priority) pairs that expand
// into individual subscribe calls at subscribe-time.
type MultiSub struct {
	Entries []MultiEntry
}

func (MultiSub) isSubscription() {}

// PassItem is one entry in a Passes list: the discriminator being
// delivered to, and the priority it was registered at. Priority 0 is
// highest; nil is lowest. Ties are broken by insertion order.
type PassItem struct {
	Priority *uint32
	Discrim  discrim.Discriminator
}

// Passes is the subscription table owned by a single Space.
type Passes struct {
	mu      sync.Mutex
	entries map[SimpleSub][]PassItem
}

// New returns an empty Passes table.
func New() *Passes {
	return &Passes{entries: make(map[SimpleSub][]PassItem)}
}

// Subscribe registers item against sub. If sub is a MultiSub, it expands
// recursively, registering each nested subscription at its own priority
// but the same discriminator. For a SimpleSub, any existing entry for
// item.Discrim under sub is replaced, then item is inserted at the first
// position whose priority strictly exceeds item.Priority (nil sorts
// last), preserving existing ties before the new entry (R1).
func (p *Passes) Subscribe(sub Subscription, item PassItem) {
	switch s := sub.(type) {
	case MultiSub:
		for _, e := range s.Entries {
			p.Subscribe(e.Sub, PassItem{Discrim: item.Discrim, Priority: e.Priority})
		}
	case SimpleSub:
		p.subscribeSimple(s, item)
	}
}

func (p *Passes) subscribeSimple(key SimpleSub, item PassItem) {
	p.mu.Lock()
	defer p.mu.Unlock()

	list := p.entries[key]
	list = removeDiscrim(list, item.Discrim)

	pos := len(list)
	for i, existing := range list {
		if priorityLess(item.Priority, existing.Priority) {
			pos = i
			break
		}
	}
	list = append(list, PassItem{})
	copy(list[pos+1:], list[pos:])
	list[pos] = item
	p.entries[key] = list
}

// Unsubscribe removes discrim's entry from sub's list, if any. It reports
// whether an entry was actually removed (R2). Dropped-empty lists are
// removed from the map to keep it dense.
func (p *Passes) Unsubscribe(sub SimpleSub, d discrim.Discriminator) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	list, ok := p.entries[sub]
	if !ok {
		return false
	}
	before := len(list)
	list = removeDiscrim(list, d)
	if len(list) == before {
		return false
	}
	if len(list) == 0 {
		delete(p.entries, sub)
	} else {
		p.entries[sub] = list
	}
	return true
}

// UnsubAll sweeps every list, removing any item belonging to d, and
// drops any list that becomes empty as a result.
func (p *Passes) UnsubAll(d discrim.Discriminator) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for key, list := range p.entries {
		next := removeDiscrim(list, d)
		if len(next) == 0 {
			delete(p.entries, key)
		} else if len(next) != len(list) {
			p.entries[key] = next
		}
	}
}

// Subscribers concatenates every list matching subs, stable-sorts by
// priority, then deduplicates by discriminator keeping the first
// (lowest-priority-number) occurrence (I3).
func (p *Passes) Subscribers(subs []SimpleSub) []discrim.Discriminator {
	p.mu.Lock()
	var combined []PassItem
	for _, key := range subs {
		combined = append(combined, p.entries[key]...)
	}
	p.mu.Unlock()

	sort.SliceStable(combined, func(i, j int) bool {
		return priorityLess(combined[i].Priority, combined[j].Priority)
	})

	seen := make(map[string]bool, len(combined))
	out := make([]discrim.Discriminator, 0, len(combined))
	for _, item := range combined {
		key := item.Discrim.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item.Discrim)
	}
	return out
}

// priorityLess orders priorities ascending with nil ("lowest") last.
func priorityLess(a, b *uint32) bool {
	if a == nil {
		return false
	}
	if b == nil {
		return true
	}
	return *a < *b
}

func removeDiscrim(list []PassItem, d discrim.Discriminator) []PassItem {
	out := list[:0:0]
	for _, item := range list {
		if !item.Discrim.Equal(d) {
			out = append(out, item)
		}
	}
	return out
}
