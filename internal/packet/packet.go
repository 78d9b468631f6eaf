// Package packet implements the one-shot request/response correlation
// primitive used to carry a Request through the EventBus to whichever
// Space ultimately handles it, and its Response back to the sender.
package packet

import (
	"context"
	"errors"
	"sync/atomic"
)

// ErrDoubleResp is returned by Respond when a Packet's single response
// slot has already been consumed.
var ErrDoubleResp = errors.New("packet: response already sent")

// Packet wraps a request with a single-shot response slot. The slot may
// be consumed exactly once; a second Respond call returns ErrDoubleResp.
// Packet deliberately holds a channel field so two Packet values are
// never equal under ==, even if their requests happen to be equal.
type Packet[Req, Res any] struct {
	request   Req
	ch        chan Res
	responded atomic.Bool
}

// New wraps req in a fresh Packet with an unconsumed response slot.
func New[Req, Res any](req Req) *Packet[Req, Res] {
	return &Packet[Req, Res]{
		request: req,
		ch:      make(chan Res, 1),
	}
}

// Request returns the wrapped request.
func (p *Packet[Req, Res]) Request() Req {
	return p.request
}

// Respond delivers res to whoever is awaiting this packet. It may be
// called at most once; subsequent calls return ErrDoubleResp and are
// otherwise no-ops (invariant I4).
func (p *Packet[Req, Res]) Respond(res Res) error {
	if !p.responded.CompareAndSwap(false, true) {
		return ErrDoubleResp
	}
	p.ch <- res
	close(p.ch)
	return nil
}

// Wait blocks until Respond is called or ctx is done. If ctx is done
// first, the zero value of Res is returned alongside ctx.Err().
func (p *Packet[Req, Res]) Wait(ctx context.Context) (Res, error) {
	select {
	case res, ok := <-p.ch:
		if !ok {
			var zero Res
			return zero, errors.New("packet: channel closed without a response")
		}
		return res, nil
	case <-ctx.Done():
		var zero Res
		return zero, ctx.Err()
	}
}
