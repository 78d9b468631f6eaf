// Package discrim implements the path-structured component identifiers
// ("discriminators") that address every Space and Process in a ccanvas
// tree. A discriminator is an ordered sequence of component ids allocated
// from a single global counter; it is never reused and never renumbered.
package discrim

import (
	"strconv"
	"strings"
	"sync/atomic"
)

// counter is the global monotonically increasing component id source.
// The master Space is hardcoded to Discriminator{1}, so the first value
// handed out by Next is 2.
var counter uint32 = 1

// Next returns the next globally unique component id.
func Next() uint32 {
	return atomic.AddUint32(&counter, 1)
}

// Master is the discriminator of the root Space.
func Master() Discriminator {
	return Discriminator{1}
}

// Discriminator is an ordered path from the virtual root to a component.
// The empty sequence denotes "no target / untargeted".
type Discriminator []uint32

// NewChild allocates a fresh component id and appends it to parent,
// returning the child's discriminator. parent is never mutated.
func NewChild(parent Discriminator) Discriminator {
	child := make(Discriminator, len(parent)+1)
	copy(child, parent)
	child[len(parent)] = Next()
	return child
}

// IsEmpty reports whether d denotes "no target".
func (d Discriminator) IsEmpty() bool {
	return len(d) == 0
}

// Clone returns an independent copy of d.
func (d Discriminator) Clone() Discriminator {
	if d == nil {
		return nil
	}
	c := make(Discriminator, len(d))
	copy(c, d)
	return c
}

// Equal reports whether d and other denote the same component.
func (d Discriminator) Equal(other Discriminator) bool {
	if len(d) != len(other) {
		return false
	}
	for i := range d {
		if d[i] != other[i] {
			return false
		}
	}
	return true
}

// IsParentOf reports whether d is a strict prefix of other.
func (d Discriminator) IsParentOf(other Discriminator) bool {
	if len(d) >= len(other) {
		return false
	}
	for i := range d {
		if d[i] != other[i] {
			return false
		}
	}
	return true
}

// ImmediateChild returns desc truncated to len(d)+1 if d is a (strict)
// ancestor of desc, i.e. the single next hop from d toward desc.
func (d Discriminator) ImmediateChild(desc Discriminator) (Discriminator, bool) {
	if !d.IsParentOf(desc) {
		return nil, false
	}
	return desc[:len(d)+1].Clone(), true
}

// ImmediateParent returns d with its last element removed. Calling
// ImmediateParent on an empty discriminator returns an empty one.
func (d Discriminator) ImmediateParent() Discriminator {
	if len(d) == 0 {
		return Discriminator{}
	}
	return d[:len(d)-1].Clone()
}

// String renders d as a "/"-joined decimal path, suitable for embedding
// in filesystem paths.
func (d Discriminator) String() string {
	if len(d) == 0 {
		return ""
	}
	parts := make([]string, len(d))
	for i, v := range d {
		parts[i] = strconv.FormatUint(uint64(v), 10)
	}
	return strings.Join(parts, "/")
}

// Parse parses the "/"-joined decimal form produced by String back into a
// Discriminator. An empty string parses to an empty Discriminator.
func Parse(s string) (Discriminator, error) {
	if s == "" {
		return Discriminator{}, nil
	}
	parts := strings.Split(s, "/")
	d := make(Discriminator, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return nil, err
		}
		d[i] = uint32(v)
	}
	return d, nil
}

// MarshalJSON renders d as a plain JSON array of integers.
func (d Discriminator) MarshalJSON() ([]byte, error) {
	if d == nil {
		return []byte("[]"), nil
	}
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range d {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatUint(uint64(v), 10))
	}
	b.WriteByte(']')
	return []byte(b.String()), nil
}

// UnmarshalJSON parses a plain JSON array of integers into d.
func (d *Discriminator) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*d = nil
		return nil
	}
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	s = strings.TrimSpace(s)
	if s == "" {
		*d = Discriminator{}
		return nil
	}
	parts := strings.Split(s, ",")
	out := make(Discriminator, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 32)
		if err != nil {
			return err
		}
		out[i] = uint32(v)
	}
	*d = out
	return nil
}
