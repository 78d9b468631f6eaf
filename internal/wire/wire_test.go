package wire

import (
	"bytes"
	"testing"

	"github.com/ccanvas/ccanvas/internal/discrim"
	"github.com/ccanvas/ccanvas/internal/passes"
)

func TestDecodeRequestRoundTripsSpawn(t *testing.T) {
	raw, err := EncodeContent(Spawn{Command: "bash", Args: []string{"-lc", "echo hi"}, Label: "shell"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	req, err := DecodeRequest(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	spawn, ok := req.Content.(Spawn)
	if !ok {
		t.Fatalf("expected Spawn content, got %T", req.Content)
	}
	if spawn.Command != "bash" || spawn.Label != "shell" {
		t.Fatalf("unexpected spawn content: %+v", spawn)
	}
}

func TestDecodeRequestRoundTripsSubscribe(t *testing.T) {
	raw, err := EncodeContent(Subscribe{Channel: passes.SimpleSub{Kind: passes.KindAnyKey}})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	req, err := DecodeRequest(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	sub, ok := req.Content.(Subscribe)
	if !ok {
		t.Fatalf("expected Subscribe content, got %T", req.Content)
	}
	simple, ok := sub.Channel.(passes.SimpleSub)
	if !ok || simple.Kind != passes.KindAnyKey {
		t.Fatalf("unexpected channel: %+v", sub.Channel)
	}
}

func TestDecodeRequestAssignsAscendingIDs(t *testing.T) {
	raw, _ := EncodeContent(FocusAt{})

	first, err := DecodeRequest(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	second, err := DecodeRequest(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if second.ID <= first.ID {
		t.Fatalf("expected ascending ids, got %d then %d", first.ID, second.ID)
	}
}

func TestHostRequestIDsDescendFromTop(t *testing.T) {
	first := NextHostRequestID()
	second := NextHostRequestID()
	if second >= first {
		t.Fatalf("expected descending host ids, got %d then %d", first, second)
	}
}

func TestResponseEncodeIncludesRequestID(t *testing.T) {
	resp := NewSuccess(42, SuccessDropped)
	raw, err := resp.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(raw) == 0 {
		t.Fatal("expected non-empty encoding")
	}
	if !bytes.Contains(raw, []byte(`"request":42`)) {
		t.Fatalf("expected encoding to carry request id 42, got %s", raw)
	}
	if resp.Request == nil || *resp.Request != 42 {
		t.Fatalf("expected request id 42, got %v", resp.Request)
	}
}

func TestDropDecodesDiscrim(t *testing.T) {
	raw, err := EncodeContent(Drop{Discrim: discrim.Discriminator{1, 2, 3}})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	req, err := DecodeRequest(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	drop, ok := req.Content.(Drop)
	if !ok {
		t.Fatalf("expected Drop content, got %T", req.Content)
	}
	if !drop.Discrim.Equal(discrim.Discriminator{1, 2, 3}) {
		t.Fatalf("unexpected discrim: %v", drop.Discrim)
	}
}
