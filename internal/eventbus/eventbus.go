// Package eventbus implements the single process-wide unbounded queue
// that feeds every event — input, child requests, self-drops — to the
// master Space. Each event is handled as a detached task so one slow or
// misbehaving child can never block unrelated events; a panic inside one
// task is recovered and logged rather than taking down the host.
package eventbus

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/ccanvas/ccanvas/internal/discrim"
	"github.com/ccanvas/ccanvas/internal/event"
	"github.com/ccanvas/ccanvas/internal/logger"
	"github.com/ccanvas/ccanvas/internal/queue"
	"github.com/ccanvas/ccanvas/internal/space"
	"github.com/ccanvas/ccanvas/internal/wire"
)

// Bus is the host's single event queue.
type Bus struct {
	q *queue.Queue[event.Event]
}

// New returns an empty, running Bus.
func New() *Bus {
	return &Bus{q: queue.New[event.Event]()}
}

// Send enqueues ev for delivery to the master Space. Safe to call from
// any goroutine, including from within a detached task the bus itself
// spawned.
func (b *Bus) Send(ev event.Event) {
	b.q.Push(ev)
}

// Run drains the queue into master.Pass until a graceful-shutdown
// request arrives (spec.md §4.5) or ctx is cancelled, then waits for
// every in-flight detached task to finish before returning.
func (b *Bus) Run(ctx context.Context, master *space.Space) {
	var g errgroup.Group
	done := ctx.Done()

	for {
		ev, ok := b.q.Pull(done)
		if !ok {
			break
		}
		if shutdownPkt, isShutdown := asShutdown(ev); isShutdown {
			req := shutdownPkt.Request()
			shutdownPkt.Respond(wire.NewSuccess(req.ID, wire.SuccessDropped))
			break
		}

		ev := ev
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("panic in detached event task", "recover", r)
				}
			}()
			master.Pass(ctx, ev)
			return nil
		})
	}

	b.q.Close()
	g.Wait()
}

// asShutdown reports whether ev is the graceful-shutdown sentinel: a
// RequestPacket carrying Drop{discrim:[1]} with an empty target.
func asShutdown(ev event.Event) (*event.RequestPacket, bool) {
	if ev.Kind != event.KindRequestPacket {
		return nil, false
	}
	req := ev.Packet.Request()
	if !req.Target.IsEmpty() {
		return nil, false
	}
	drop, ok := req.Content.(wire.Drop)
	if !ok || !drop.Discrim.Equal(discrim.Master()) {
		return nil, false
	}
	return ev.Packet, true
}
