// Package process supervises a single child OS component: spawning it,
// listening for its Requests on a Unix socket, writing Responses back
// through an announced reply socket, detecting crashes, and cleaning up
// its storage and subscriptions on drop.
package process

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/cenkalti/backoff/v4"

	"github.com/ccanvas/ccanvas/internal/component"
	"github.com/ccanvas/ccanvas/internal/discrim"
	"github.com/ccanvas/ccanvas/internal/event"
	"github.com/ccanvas/ccanvas/internal/logger"
	"github.com/ccanvas/ccanvas/internal/packet"
	"github.com/ccanvas/ccanvas/internal/queue"
	"github.com/ccanvas/ccanvas/internal/storage"
	"github.com/ccanvas/ccanvas/internal/wire"
)

// Publisher enqueues an event onto the host's EventBus. It is injected
// rather than imported directly — eventbus sits above process in the
// dependency graph (eventbus -> space -> process), so process cannot
// import it without a cycle.
type Publisher func(event.Event)

// Process wraps a spawned child, its request listener, its response
// writer, and the confirm-map correlating pending events with the
// child's eventual ConfirmRecieve.
type Process struct {
	Label   string
	Discrim discrim.Discriminator
	parent  discrim.Discriminator

	storage *storage.Storage
	command string
	args    []string

	cmd      *exec.Cmd
	listener net.Listener
	publish  Publisher

	replyMu     sync.Mutex
	replySocket string

	confirmMu sync.Mutex
	confirm   map[uint32]chan bool

	responses *queue.Queue[responderMsg]
	ready     chan struct{}
	readyOnce sync.Once

	crashReported atomic.Bool

	ctx    context.Context
	cancel context.CancelFunc
	log    *slog.Logger
}

type responderMsg struct {
	setSocket string
	response  *wire.Response
}

// Spawn launches command as a child of parent, binds its request socket,
// and blocks until the child announces its reply socket via SetSocket —
// only then is the child guaranteed ready to receive events.
func Spawn(ctx context.Context, parent discrim.Discriminator, publish Publisher, label, command string, args []string) (*Process, error) {
	d := discrim.NewChild(parent)

	st, err := storage.New(d)
	if err != nil {
		return nil, fmt.Errorf("process: allocate storage: %w", err)
	}

	sockPath := st.SocketPath()
	if err := removeStale(sockPath); err != nil {
		st.Remove()
		return nil, fmt.Errorf("process: clear stale socket: %w", err)
	}

	ln, err := net.Listen("unix", sockPath)
	if err != nil {
		st.Remove()
		return nil, fmt.Errorf("process: bind request socket: %w", err)
	}

	cmd := exec.Command(command, args...)
	cmd.Dir = st.Dir()
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	if err := cmd.Start(); err != nil {
		ln.Close()
		st.Remove()
		return nil, fmt.Errorf("process: start child: %w", err)
	}

	pctx, cancel := context.WithCancel(context.Background())
	p := &Process{
		Label:     label,
		Discrim:   d,
		parent:    parent.Clone(),
		storage:   st,
		command:   command,
		args:      args,
		cmd:       cmd,
		listener:  ln,
		publish:   publish,
		confirm:   make(map[uint32]chan bool),
		responses: queue.New[responderMsg](),
		ready:     make(chan struct{}),
		ctx:       pctx,
		cancel:    cancel,
		log:       logger.Component(d.String()),
	}

	go p.listen()
	go p.respond()

	select {
	case <-p.ready:
		return p, nil
	case <-ctx.Done():
		p.Drop()
		return nil, ctx.Err()
	}
}

func removeStale(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Pass delivers ev to the child. RequestPacket events are handled
// structurally (spec.md §4.3.2); everything else is serialised and
// pushed to the responder, returning a Deferred handle the caller must
// evaluate only after releasing every Space/Collection lock it holds.
func (p *Process) Pass(ev event.Event) component.Unevaluated {
	if ev.Kind == event.KindRequestPacket {
		p.passPacket(ev.Packet)
		return component.Concrete(false)
	}
	return p.passEvent(ev)
}

func (p *Process) passPacket(pkt *event.RequestPacket) {
	req := pkt.Request()
	switch c := req.Content.(type) {
	case wire.Message:
		pkt.Respond(wire.NewSuccess(req.ID, wire.SuccessMessageDelivered))
		sub := event.NewMessage(c.Sender, c.Target, c.Content)
		// Discarded: a Process has nothing further to route to, and the
		// channel passEvent registers is buffered so nobody needing to
		// drain it isn't a leak risk.
		_ = p.Pass(sub)
	case wire.Spawn:
		pkt.Respond(wire.NewUndelivered(req.ID))
	default:
		p.log.Warn("process received unroutable request variant", "type", fmt.Sprintf("%T", c))
	}
}

func (p *Process) passEvent(ev event.Event) component.Unevaluated {
	resp := wire.NewEvent(ev.Wire())
	ch := make(chan bool, 1)

	p.confirmMu.Lock()
	p.confirm[resp.ID] = ch
	p.confirmMu.Unlock()

	p.responses.Push(responderMsg{response: &resp})
	return component.Deferred(ch)
}

// Drop kills the child, stops the listener/responder tasks, and removes
// the component's storage directory (invariant I5).
func (p *Process) Drop() error {
	p.cancel()
	if p.listener != nil {
		p.listener.Close()
	}
	if p.cmd != nil && p.cmd.Process != nil {
		syscall.Kill(-p.cmd.Process.Pid, syscall.SIGKILL)
	}
	p.responses.Close()
	return p.storage.Remove()
}

func (p *Process) listen() {
	for {
		conn, err := p.listener.Accept()
		if err != nil {
			return
		}
		go p.handleConn(conn)
	}
}

func (p *Process) handleConn(conn net.Conn) {
	defer conn.Close()
	raw, err := io.ReadAll(conn)
	if err != nil || len(raw) == 0 {
		return
	}
	req, err := wire.DecodeRequest(raw)
	if err != nil {
		p.log.Debug("dropping malformed request", "error", err)
		return
	}
	p.handleRequest(req)
}

// handleRequest implements the listener's rewriting table (spec.md
// §4.3.1): it fills in Target so the request travels to the correct
// authority, then forwards it through the EventBus and relays whatever
// Response eventually comes back.
func (p *Process) handleRequest(req *wire.Request) {
	switch c := req.Content.(type) {
	case wire.ConfirmRecieve:
		p.confirmMu.Lock()
		ch, ok := p.confirm[c.ID]
		if ok {
			delete(p.confirm, c.ID)
		}
		p.confirmMu.Unlock()
		if ok {
			ch <- c.Pass
			close(ch)
		}
		return

	case wire.SetSocket:
		abs := p.storage.Resolve(c.Path)
		p.responses.Push(responderMsg{setSocket: abs})
		resp := wire.NewSuccess(req.ID, wire.SuccessListenerSet)
		p.responses.Push(responderMsg{response: &resp})
		p.readyOnce.Do(func() { close(p.ready) })
		return

	case wire.Subscribe:
		c.Component = p.Discrim
		req.Content = c
		req.Target = p.parent
		optimistic := wire.NewSuccess(req.ID, wire.SuccessSubscribeAdded)
		p.responses.Push(responderMsg{response: &optimistic})

	case wire.Unsubscribe:
		c.Component = p.Discrim
		req.Content = c
		req.Target = p.parent

	case wire.Drop:
		d := c.Discrim
		if d.IsEmpty() {
			d = p.Discrim
		}
		c.Discrim = d
		req.Content = c
		req.Target = d.ImmediateParent()

	case wire.Render:
		req.Target = discrim.Master()

	case wire.Spawn:
		if req.Target.IsEmpty() {
			req.Target = p.parent
		}

	case wire.Message:
		c.Sender = p.Discrim
		req.Content = c
		req.Target = c.Target

	case wire.NewSpace, wire.FocusAt:
		req.Target = p.parent

	default:
		p.log.Debug("dropping request of unknown content type", "type", fmt.Sprintf("%T", c))
		return
	}

	pkt := packet.New[wire.Request, wire.Response](*req)
	p.publish(event.NewRequestPacket(pkt))

	resp, err := pkt.Wait(p.ctx)
	if err != nil {
		return
	}
	p.responses.Push(responderMsg{response: &resp})
}

func (p *Process) respond() {
	done := p.ctx.Done()
	for {
		msg, ok := p.responses.Pull(done)
		if !ok {
			return
		}
		if msg.setSocket != "" {
			p.replyMu.Lock()
			p.replySocket = msg.setSocket
			p.replyMu.Unlock()
			continue
		}
		p.deliver(msg.response)
	}
}

// deliver writes resp to the child's announced reply socket. Before
// writing, it non-blockingly checks whether the child has already
// exited; on the first such detection it publishes a self-Drop so the
// host reclaims this Process's subscriptions and storage (scenario 5).
func (p *Process) deliver(resp *wire.Response) {
	if p.hasExited() && p.crashReported.CompareAndSwap(false, true) {
		p.log.Warn("child exited before response delivered", "label", p.Label)
		selfDrop := packet.New[wire.Request, wire.Response](wire.Request{
			ID:      wire.NextHostRequestID(),
			Target:  p.parent,
			Content: wire.Drop{Discrim: p.Discrim},
		})
		p.publish(event.NewRequestPacket(selfDrop))
	}

	p.replyMu.Lock()
	sock := p.replySocket
	p.replyMu.Unlock()
	if sock == "" {
		p.evict(resp.ID)
		return
	}

	raw, err := resp.Encode()
	if err != nil {
		p.evict(resp.ID)
		return
	}

	err = backoff.Retry(func() error {
		conn, dialErr := net.Dial("unix", sock)
		if dialErr != nil {
			return dialErr
		}
		defer conn.Close()
		_, writeErr := conn.Write(raw)
		return writeErr
	}, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3))

	if err != nil {
		p.evict(resp.ID)
	}
}

// evict drops resp's confirm-map entry by closing its channel, which
// resolves any pending Unevaluated.Evaluate to true (pass-through) —
// the policy that a stuck or crashed child can never veto delivery.
func (p *Process) evict(id uint32) {
	p.confirmMu.Lock()
	ch, ok := p.confirm[id]
	if ok {
		delete(p.confirm, id)
	}
	p.confirmMu.Unlock()
	if ok {
		close(ch)
	}
}

func (p *Process) hasExited() bool {
	if p.cmd.ProcessState != nil {
		return true
	}
	// A signal-0 probe still succeeds on an exited but unreaped child, so
	// poll (and reap) its exit status without blocking instead.
	var ws syscall.WaitStatus
	pid, err := syscall.Wait4(p.cmd.Process.Pid, &ws, syscall.WNOHANG, nil)
	return err != nil || pid == p.cmd.Process.Pid
}
