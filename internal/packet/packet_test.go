package packet

import (
	"context"
	"testing"
	"time"
)

func TestRespondOnceThenError(t *testing.T) {
	p := New[string, int]("hello")
	if err := p.Respond(42); err != nil {
		t.Fatalf("first respond should succeed: %v", err)
	}
	if err := p.Respond(43); err != ErrDoubleResp {
		t.Fatalf("second respond should return ErrDoubleResp, got %v", err)
	}

	res, err := p.Wait(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res != 42 {
		t.Fatalf("expected 42, got %d", res)
	}
}

func TestWaitTimesOutWithContext(t *testing.T) {
	p := New[string, int]("hello")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := p.Wait(ctx); err == nil {
		t.Fatal("expected context deadline error")
	}
}

func TestPacketsNeverCompareEqual(t *testing.T) {
	a := New[string, int]("x")
	b := New[string, int]("x")
	if a == b {
		t.Fatal("distinct packets with identical requests must not be ==")
	}
}
