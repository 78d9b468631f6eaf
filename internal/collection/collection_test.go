package collection

import (
	"testing"

	"github.com/ccanvas/ccanvas/internal/discrim"
)

func TestInsertGetRemove(t *testing.T) {
	c := New[string]()
	d := discrim.Discriminator{1, 2}

	if _, ok := c.Get(d); ok {
		t.Fatal("expected empty collection to miss")
	}

	c.Insert(d, "hello")
	v, ok := c.Get(d)
	if !ok || v != "hello" {
		t.Fatalf("expected hit with value 'hello', got %q ok=%v", v, ok)
	}
	if c.Len() != 1 {
		t.Fatalf("expected len 1, got %d", c.Len())
	}

	removed, ok := c.Remove(d)
	if !ok || removed != "hello" {
		t.Fatalf("expected removed value 'hello', got %q ok=%v", removed, ok)
	}
	if c.Len() != 0 {
		t.Fatal("expected collection to be empty after remove")
	}
}

func TestEachAndDiscriminators(t *testing.T) {
	c := New[int]()
	c.Insert(discrim.Discriminator{1, 2}, 1)
	c.Insert(discrim.Discriminator{1, 3}, 2)

	sum := 0
	c.Each(func(_ discrim.Discriminator, v int) { sum += v })
	if sum != 3 {
		t.Fatalf("expected sum 3, got %d", sum)
	}

	if len(c.Discriminators()) != 2 {
		t.Fatalf("expected 2 discriminators, got %d", len(c.Discriminators()))
	}
}
