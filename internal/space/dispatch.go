package space

import (
	"context"
	"fmt"

	"github.com/ccanvas/ccanvas/internal/discrim"
	"github.com/ccanvas/ccanvas/internal/event"
	"github.com/ccanvas/ccanvas/internal/passes"
	"github.com/ccanvas/ccanvas/internal/wire"
)

// dispatch implements spec.md §4.4.1: a request that targets this Space
// itself, resolved by content variant.
func (s *Space) dispatch(ctx context.Context, pkt *event.RequestPacket) {
	req := pkt.Request()
	switch c := req.Content.(type) {
	case wire.Spawn:
		proc, err := s.Spawn(ctx, c.Label, c.Command, c.Args)
		if err != nil {
			pkt.Respond(wire.NewError(req.ID, wire.ErrSpawnFailed, err.Error()))
			return
		}
		pkt.Respond(wire.NewSuccessWithDiscrim(req.ID, wire.SuccessSpawned, proc.Discrim))

	case wire.NewSpace:
		child, err := newChildSpace(s, c.Label)
		if err != nil {
			pkt.Respond(wire.NewError(req.ID, wire.ErrSpaceCreateFailed, err.Error()))
			return
		}
		s.subspaces.Insert(child.Discrim, child)
		pkt.Respond(wire.NewSuccessWithDiscrim(req.ID, wire.SuccessSpaceCreated, child.Discrim))

	case wire.Subscribe:
		if !s.isImmediateChildProcess(c.Component) {
			pkt.Respond(wire.NewError(req.ID, wire.ErrComponentNotFound, "not an immediate child process"))
			return
		}
		s.passes.Subscribe(c.Channel, passes.PassItem{Priority: c.Priority, Discrim: c.Component})
		pkt.Respond(wire.NewSuccess(req.ID, wire.SuccessSubscribeAdded))

	case wire.Unsubscribe:
		if !s.isImmediateChildProcess(c.Component) {
			pkt.Respond(wire.NewError(req.ID, wire.ErrComponentNotFound, "not an immediate child process"))
			return
		}
		removed := false
		for _, leaf := range passes.Flatten(c.Channel) {
			if s.passes.Unsubscribe(leaf, c.Component) {
				removed = true
			}
		}
		if !removed {
			pkt.Respond(wire.NewError(req.ID, wire.ErrComponentNotFound, "not subscribed"))
			return
		}
		pkt.Respond(wire.NewSuccess(req.ID, wire.SuccessSubscribeRemoved))

	case wire.Drop:
		s.handleDrop(pkt, c.Discrim)

	case wire.Render:
		s.handleRender(pkt, c)

	case wire.Message:
		pkt.Respond(wire.NewSuccess(req.ID, wire.SuccessMessageDelivered))
		s.Pass(ctx, event.NewMessage(c.Sender, c.Target, c.Content))

	case wire.FocusAt:
		s.handleFocusAt(ctx, pkt)

	default:
		// ConfirmRecieve, SetSocket, and component-less Subscribe/
		// Unsubscribe never reach a Space — the listener either answers
		// them itself or rewrites component before forwarding.
		pkt.Respond(wire.NewError(req.ID, wire.ErrMalformedRequest, fmt.Sprintf("unexpected request at space: %T", c)))
	}
}

func (s *Space) handleRender(pkt *event.RequestPacket, c wire.Render) {
	req := pkt.Request()
	if s.term == nil {
		pkt.Respond(wire.NewError(req.ID, wire.ErrComponentNotFound, "render requests only reach the master space"))
		return
	}
	if err := s.term.Render(c.Content); err != nil {
		pkt.Respond(wire.NewError(req.ID, wire.ErrSpawnFailed, err.Error()))
		return
	}
	if c.Flush {
		if err := s.term.Flush(); err != nil {
			pkt.Respond(wire.NewError(req.ID, wire.ErrSpawnFailed, err.Error()))
			return
		}
	}
	pkt.Respond(wire.NewSuccess(req.ID, wire.SuccessRendered))
}

func (s *Space) handleFocusAt(ctx context.Context, pkt *event.RequestPacket) {
	req := pkt.Request()

	s.mu.Lock()
	prev := s.focus
	if prev.Kind == FocusChildren {
		s.focus = FocusState{Kind: FocusThis}
	}
	s.mu.Unlock()

	if prev.Kind == FocusChildren {
		if child, ok := s.subspaces.Get(prev.Target); ok {
			child.Pass(ctx, event.Unfocus())
		}
	}
	pkt.Respond(wire.NewSuccess(req.ID, wire.SuccessFocusChanged))
}

// handleDrop implements §4.4.1's Drop row: removing a process also
// sweeps its subscriptions (I1); removing a subspace cascades the drop
// through its own children and resets focus if it pointed there (I2).
func (s *Space) handleDrop(pkt *event.RequestPacket, d discrim.Discriminator) {
	req := pkt.Request()

	if proc, ok := s.processes.Remove(d); ok {
		proc.Drop()
		s.passes.UnsubAll(d)
		pkt.Respond(wire.NewSuccess(req.ID, wire.SuccessDropped))
		return
	}

	if sub, ok := s.subspaces.Remove(d); ok {
		sub.dropAll()
		s.mu.Lock()
		if s.focus.Kind == FocusChildren && s.focus.Target.Equal(d) {
			s.focus = FocusState{Kind: FocusThis}
		}
		s.mu.Unlock()
		pkt.Respond(wire.NewSuccess(req.ID, wire.SuccessDropped))
		return
	}

	pkt.Respond(wire.NewError(req.ID, wire.ErrComponentNotFound, "no such component"))
}

// dropAll recursively tears down every process and subspace owned by s,
// then removes s's own storage. Used when an ancestor drops s wholesale
// (spec.md scenario 4).
func (s *Space) dropAll() {
	for _, d := range s.processes.Discriminators() {
		if proc, ok := s.processes.Remove(d); ok {
			proc.Drop()
		}
	}
	for _, d := range s.subspaces.Discriminators() {
		if sub, ok := s.subspaces.Remove(d); ok {
			sub.dropAll()
		}
	}
	s.storage.Remove()
}

func (s *Space) isImmediateChildProcess(d discrim.Discriminator) bool {
	if d.IsEmpty() {
		return false
	}
	next, ok := s.Discrim.ImmediateChild(d)
	if !ok || !next.Equal(d) {
		return false
	}
	_, exists := s.processes.Get(d)
	return exists
}
