package queue

import "testing"

func TestPushThenPullPreservesOrder(t *testing.T) {
	q := New[int]()
	done := make(chan struct{})
	defer close(done)

	q.Push(1)
	q.Push(2)
	q.Push(3)

	for _, want := range []int{1, 2, 3} {
		got, ok := q.Pull(done)
		if !ok || got != want {
			t.Fatalf("expected %d, got %d ok=%v", want, got, ok)
		}
	}
}

func TestPullUnblocksOnDone(t *testing.T) {
	q := New[int]()
	done := make(chan struct{})
	close(done)

	_, ok := q.Pull(done)
	if ok {
		t.Fatal("expected Pull to report false once done fires with nothing queued")
	}
}

func TestCloseStopsPump(t *testing.T) {
	q := New[int]()
	q.Close()
	q.Push(1) // must not panic or block

	done := make(chan struct{})
	defer close(done)
	if _, ok := q.Pull(done); ok {
		t.Fatal("expected Pull to report false after Close")
	}
}
