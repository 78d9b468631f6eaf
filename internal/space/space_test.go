package space

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"testing"

	"github.com/ccanvas/ccanvas/internal/discrim"
	"github.com/ccanvas/ccanvas/internal/event"
	"github.com/ccanvas/ccanvas/internal/logger"
	"github.com/ccanvas/ccanvas/internal/packet"
	"github.com/ccanvas/ccanvas/internal/passes"
	"github.com/ccanvas/ccanvas/internal/storage"
	"github.com/ccanvas/ccanvas/internal/wire"
)

func simpleKeySub() passes.Subscription {
	return passes.SimpleSub{Kind: passes.KindAnyKey}
}

var storageOnce sync.Once

func initStorage(t *testing.T) {
	t.Helper()
	storageOnce.Do(func() {
		logger.Init("debug", "")
		if err := storage.Init(os.Getpid()); err != nil {
			t.Fatalf("storage.Init: %v", err)
		}
	})
}

func newTestMaster(t *testing.T) *Space {
	t.Helper()
	initStorage(t)
	m, err := NewMaster(func(event.Event) {}, nil)
	if err != nil {
		t.Fatalf("NewMaster: %v", err)
	}
	t.Cleanup(func() { m.dropAll() })
	return m
}

func send(t *testing.T, s *Space, req wire.Request) wire.Response {
	t.Helper()
	pkt := packet.New[wire.Request, wire.Response](req)
	s.Pass(context.Background(), event.NewRequestPacket(pkt))
	resp, err := pkt.Wait(context.Background())
	if err != nil {
		t.Fatalf("packet never answered: %v", err)
	}
	return resp
}

func TestNewSpaceCreatesSubspace(t *testing.T) {
	m := newTestMaster(t)

	resp := send(t, m, wire.Request{ID: 1, Target: m.Discrim, Content: wire.NewSpace{Label: "panel"}})
	if resp.Type != wire.RespSuccess || resp.Success.Kind != wire.SuccessSpaceCreated {
		t.Fatalf("expected SpaceCreated, got %+v", resp)
	}
	if m.subspaces.Len() != 1 {
		t.Fatalf("expected one subspace, got %d", m.subspaces.Len())
	}
}

func TestSubscribeRejectsUnknownComponent(t *testing.T) {
	m := newTestMaster(t)

	resp := send(t, m, wire.Request{ID: 1, Target: m.Discrim, Content: wire.Subscribe{
		Channel:   simpleKeySub(),
		Component: discrim.Discriminator{99, 99},
	}})
	if resp.Type != wire.RespError || resp.Error.Kind != wire.ErrComponentNotFound {
		t.Fatalf("expected ComponentNotFound, got %+v", resp)
	}
}

func TestFocusAtTransitionsThenResetsOnDrop(t *testing.T) {
	m := newTestMaster(t)

	created := send(t, m, wire.Request{ID: 1, Target: m.Discrim, Content: wire.NewSpace{Label: "a"}})
	childDiscrim := created.Success.Discrim

	focusResp := send(t, m, wire.Request{ID: 2, Target: childDiscrim, Content: wire.FocusAt{}})
	if focusResp.Type != wire.RespSuccess || focusResp.Success.Kind != wire.SuccessFocusChanged {
		t.Fatalf("expected FocusChanged, got %+v", focusResp)
	}

	m.mu.Lock()
	focus := m.focus
	m.mu.Unlock()
	if focus.Kind != FocusChildren || !focus.Target.Equal(childDiscrim) {
		t.Fatalf("expected focus on child, got %+v", focus)
	}

	dropResp := send(t, m, wire.Request{ID: 3, Target: m.Discrim, Content: wire.Drop{Discrim: childDiscrim}})
	if dropResp.Type != wire.RespSuccess || dropResp.Success.Kind != wire.SuccessDropped {
		t.Fatalf("expected Dropped, got %+v", dropResp)
	}

	m.mu.Lock()
	focus = m.focus
	m.mu.Unlock()
	if focus.Kind != FocusThis {
		t.Fatalf("expected focus reset to This after drop, got %+v", focus)
	}
}

func TestMessageAtSelfRespondsDelivered(t *testing.T) {
	m := newTestMaster(t)

	resp := send(t, m, wire.Request{ID: 1, Target: m.Discrim, Content: wire.Message{
		Content: json.RawMessage(`"hi"`),
		Sender:  discrim.Discriminator{1, 2},
		Target:  m.Discrim,
	}})
	if resp.Type != wire.RespSuccess || resp.Success.Kind != wire.SuccessMessageDelivered {
		t.Fatalf("expected MessageDelivered, got %+v", resp)
	}
}

func TestRenderWithoutTerminalErrors(t *testing.T) {
	m := newTestMaster(t)

	resp := send(t, m, wire.Request{ID: 1, Target: m.Discrim, Content: wire.Render{
		Content: json.RawMessage(`{"type":"noop"}`),
	}})
	if resp.Type != wire.RespError {
		t.Fatalf("expected error without a terminal driver, got %+v", resp)
	}
}
