// Package component defines the deferred evaluation handle (Unevaluated)
// that lets Process.Pass hand back a pending confirmation without making
// its caller await it while holding a structural lock.
package component

import "context"

// Unevaluated is either a concrete pass-through/capture decision or a
// deferred one backed by a channel that will eventually deliver it.
// Callers MUST release every Space/Collection/Passes lock before calling
// Evaluate — this is the system's core deadlock defence.
type Unevaluated struct {
	concrete bool
	isDone   bool
	result   <-chan bool
}

// Concrete wraps an already-known pass-through (true) / captured (false)
// decision, requiring no further waiting.
func Concrete(v bool) Unevaluated {
	return Unevaluated{isDone: true, concrete: v}
}

// Deferred wraps a channel that will eventually carry the decision. The
// channel must be closed or sent to exactly once.
func Deferred(ch <-chan bool) Unevaluated {
	return Unevaluated{result: ch}
}

// Evaluate blocks until the decision is known, or ctx is done — in which
// case it resolves to true (pass-through), matching the policy that a
// stuck child can never veto event propagation indefinitely.
func (u Unevaluated) Evaluate(ctx context.Context) bool {
	if u.isDone {
		return u.concrete
	}
	select {
	case v, ok := <-u.result:
		if !ok {
			return true
		}
		return v
	case <-ctx.Done():
		return true
	}
}
