package storage

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/ccanvas/ccanvas/internal/discrim"
)

func TestInitCreatesRoot(t *testing.T) {
	if err := Init(os.Getpid()); err != nil {
		t.Fatal(err)
	}
	defer Teardown()

	info, err := os.Stat(Root())
	if err != nil {
		t.Fatal(err)
	}
	if !info.IsDir() {
		t.Fatal("expected ROOT to be a directory")
	}
	want := filepath.Join(os.TempDir(), "ccanvas", strconv.Itoa(os.Getpid()))
	if Root() != want {
		t.Fatalf("expected ROOT %s, got %s", want, Root())
	}
}

func TestNewAndRemove(t *testing.T) {
	if err := Init(os.Getpid()); err != nil {
		t.Fatal(err)
	}
	defer Teardown()

	d := discrim.Discriminator{1, 5}
	s, err := New(d)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(s.Dir()); err != nil {
		t.Fatalf("expected dir to exist: %v", err)
	}
	wantSocket := filepath.Join(s.Dir(), "requests.sock")
	if s.SocketPath() != wantSocket {
		t.Fatalf("expected %s, got %s", wantSocket, s.SocketPath())
	}

	if err := s.Remove(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(s.Dir()); !os.IsNotExist(err) {
		t.Fatal("expected directory to be gone after Remove (invariant I5)")
	}
}

func TestResolve(t *testing.T) {
	if err := Init(os.Getpid()); err != nil {
		t.Fatal(err)
	}
	defer Teardown()

	s, err := New(discrim.Discriminator{1, 5})
	if err != nil {
		t.Fatal(err)
	}
	if got := s.Resolve("r.sock"); got != filepath.Join(s.Dir(), "r.sock") {
		t.Fatalf("expected relative path resolved under storage dir, got %s", got)
	}
	if got := s.Resolve("/tmp/abs.sock"); got != "/tmp/abs.sock" {
		t.Fatalf("expected absolute path untouched, got %s", got)
	}
}
