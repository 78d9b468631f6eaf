// Package space implements the recursive container of subspaces and
// processes that hosts routing, focus, and the per-space subscription
// table. A Space is the inner node of the component tree; Process is the
// leaf. The master Space (discriminator [1]) is the only one that ever
// touches the terminal.
package space

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ccanvas/ccanvas/internal/collection"
	"github.com/ccanvas/ccanvas/internal/discrim"
	"github.com/ccanvas/ccanvas/internal/event"
	"github.com/ccanvas/ccanvas/internal/logger"
	"github.com/ccanvas/ccanvas/internal/passes"
	"github.com/ccanvas/ccanvas/internal/process"
	"github.com/ccanvas/ccanvas/internal/storage"
	"github.com/ccanvas/ccanvas/internal/terminal"
	"github.com/ccanvas/ccanvas/internal/wire"
)

// FocusKind tags whether a Space's events fall through to itself or to a
// particular subspace once its own subscribers have been offered.
type FocusKind int

const (
	FocusThis FocusKind = iota
	FocusChildren
)

// FocusState is the variant described in spec.md §3: This, or
// Children(discrim).
type FocusState struct {
	Kind   FocusKind
	Target discrim.Discriminator
}

// Space owns a set of child Spaces and Processes, a subscription table
// over its immediate child processes, and which of its children (if any)
// receives events its own subscribers didn't capture.
type Space struct {
	Label   string
	Discrim discrim.Discriminator

	storage *storage.Storage
	publish process.Publisher
	term    terminal.Driver // non-nil only for the master Space

	mu    sync.Mutex
	focus FocusState

	subspaces *collection.Collection[*Space]
	processes *collection.Collection[*process.Process]
	passes    *passes.Passes

	log *slog.Logger
}

// NewMaster constructs the root Space at discriminator [1], the only one
// wired to a terminal.Driver.
func NewMaster(publish process.Publisher, term terminal.Driver) (*Space, error) {
	d := discrim.Master()
	st, err := storage.New(d)
	if err != nil {
		return nil, err
	}
	return &Space{
		Label:     "master",
		Discrim:   d,
		storage:   st,
		publish:   publish,
		term:      term,
		subspaces: collection.New[*Space](),
		processes: collection.New[*process.Process](),
		passes:    passes.New(),
		log:       logger.Component(d.String()),
	}, nil
}

func newChildSpace(parent *Space, label string) (*Space, error) {
	d := discrim.NewChild(parent.Discrim)
	st, err := storage.New(d)
	if err != nil {
		return nil, err
	}
	return &Space{
		Label:     label,
		Discrim:   d,
		storage:   st,
		publish:   parent.publish,
		subspaces: collection.New[*Space](),
		processes: collection.New[*process.Process](),
		passes:    passes.New(),
		log:       logger.Component(d.String()),
	}, nil
}

// Spawn launches a fresh child process under this Space, used directly
// by the host's boot sequence to start the initial child (spec.md §6).
func (s *Space) Spawn(ctx context.Context, label, command string, args []string) (*process.Process, error) {
	proc, err := process.Spawn(ctx, s.Discrim, s.publish, label, command, args)
	if err != nil {
		return nil, err
	}
	s.processes.Insert(proc.Discrim, proc)
	return proc, nil
}

// Pass implements the routing rule of spec.md §4.4.
func (s *Space) Pass(ctx context.Context, ev event.Event) bool {
	if ev.Kind == event.KindRequestPacket {
		return s.passRequest(ctx, ev.Packet)
	}
	return s.passEvent(ctx, ev)
}

func (s *Space) passRequest(ctx context.Context, pkt *event.RequestPacket) bool {
	req := pkt.Request()

	if req.Target.Equal(s.Discrim) {
		s.dispatch(ctx, pkt)
		return false
	}

	next, ok := s.Discrim.ImmediateChild(req.Target)
	if !ok {
		pkt.Respond(wire.NewUndelivered(req.ID))
		return false
	}

	if _, isFocusAt := req.Content.(wire.FocusAt); isFocusAt {
		s.focusTransit(ctx, pkt, next)
		return false
	}

	if proc, ok := s.processes.Get(next); ok {
		if !s.processAllowsRequest(next, req) {
			pkt.Respond(wire.NewUndelivered(req.ID))
			return false
		}
		proc.Pass(event.NewRequestPacket(pkt))
		return false
	}

	if sub, ok := s.subspaces.Get(next); ok {
		sub.Pass(ctx, event.NewRequestPacket(pkt))
		return false
	}

	pkt.Respond(wire.NewUndelivered(req.ID))
	return false
}

// processAllowsRequest enforces the subscription filter that gates
// Message delivery to a sibling process (spec.md §4.4 step 2): every
// other request type reaching a process target is unconditionally
// allowed through.
func (s *Space) processAllowsRequest(target discrim.Discriminator, req *wire.Request) bool {
	msg, ok := req.Content.(wire.Message)
	if !ok {
		return true
	}
	subs := []passes.SimpleSub{
		{Kind: passes.KindAnyMessage},
		{Kind: passes.KindMessage, Source: passes.SourceFrom(msg.Sender)},
	}
	for _, d := range s.passes.Subscribers(subs) {
		if d.Equal(target) {
			return true
		}
	}
	return false
}

// focusTransit implements spec.md §4.4.2.
func (s *Space) focusTransit(ctx context.Context, pkt *event.RequestPacket, next discrim.Discriminator) {
	req := pkt.Request()
	child, ok := s.subspaces.Get(next)
	if !ok {
		pkt.Respond(wire.NewError(req.ID, wire.ErrComponentNotFound, "no such subspace"))
		return
	}

	s.mu.Lock()
	prev := s.focus
	s.mu.Unlock()

	if prev.Kind == FocusChildren && prev.Target.Equal(next) {
		child.Pass(ctx, event.NewRequestPacket(pkt))
		return
	}

	if prev.Kind == FocusChildren {
		if prevChild, ok := s.subspaces.Get(prev.Target); ok {
			prevChild.Pass(ctx, event.Unfocus())
		}
	}

	s.mu.Lock()
	s.focus = FocusState{Kind: FocusChildren, Target: next.Clone()}
	s.mu.Unlock()

	child.Pass(ctx, event.NewRequestPacket(pkt))
	child.Pass(ctx, event.Focus())
}

// passEvent implements step 3 of spec.md §4.4's routing rule: offer the
// event to every subscriber in priority order, strictly sequentially —
// the next subscriber is only contacted once the previous one's
// confirmation has resolved — then fall through to the focused child if
// nobody captured it.
func (s *Space) passEvent(ctx context.Context, ev event.Event) bool {
	targets := s.passes.Subscribers(ev.Subscriptions())

	for _, d := range targets {
		proc, ok := s.processes.Get(d)
		if !ok {
			continue
		}
		u := proc.Pass(ev)
		if !u.Evaluate(ctx) {
			return false
		}
	}

	if ev.Kind == event.KindFocus || ev.Kind == event.KindUnfocus {
		return true
	}

	s.mu.Lock()
	focus := s.focus
	s.mu.Unlock()

	if focus.Kind == FocusChildren {
		if child, ok := s.subspaces.Get(focus.Target); ok {
			return child.Pass(ctx, ev)
		}
	}
	return true
}
