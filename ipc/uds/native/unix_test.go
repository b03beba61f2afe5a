//go:build linux || darwin

package native

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sys/unix"
)

func sockPath() string {
	return filepath.Join(os.TempDir(), uuid.New().String())
}

func mustLoad(t *testing.T) Provider {
	t.Helper()
	p, err := Load()
	if err != nil {
		t.Skipf("unix domain sockets unavailable: %s", err)
	}
	return p
}

func TestStreamRoundTrip(t *testing.T) {
	p := mustLoad(t)
	path := sockPath()
	defer os.Remove(path)

	l, err := p.Listen(path, Stream, 1)
	if err != nil {
		t.Fatalf("Listen(): got err == %s, want err == nil", err)
	}
	defer p.Close(l)

	type result struct {
		h   Handle
		err error
	}
	ch := make(chan result, 1)
	go func() {
		h, err := p.Open(path, Stream)
		ch <- result{h, err}
	}()

	srv, err := p.Accept(l, Stream)
	if err != nil {
		t.Fatalf("Accept(): got err == %s, want err == nil", err)
	}
	defer p.Close(srv)

	r := <-ch
	if r.err != nil {
		t.Fatalf("Open(): got err == %s, want err == nil", r.err)
	}
	defer p.Close(r.h)

	if n, err := p.Write(r.h, []byte("ping")); err != nil || n != 4 {
		t.Fatalf("Write(): got (%d, %v), want (4, nil)", n, err)
	}
	b := make([]byte, 16)
	n, err := p.Read(srv, b)
	if err != nil {
		t.Fatalf("Read(): got err == %s, want err == nil", err)
	}
	if string(b[:n]) != "ping" {
		t.Fatalf("Read(): got %q, want %q", b[:n], "ping")
	}

	// Half closing the client's write side is end-of-stream for the server.
	if err := p.ShutdownWrite(r.h); err != nil {
		t.Fatalf("ShutdownWrite(): got err == %s, want err == nil", err)
	}
	n, err = p.Read(srv, b)
	if err != nil || n != 0 {
		t.Fatalf("Read() after ShutdownWrite(): got (%d, %v), want (0, nil)", n, err)
	}
}

func TestDatagram(t *testing.T) {
	p := mustLoad(t)
	path := sockPath()
	defer os.Remove(path)

	srv, err := p.Create(path, Datagram)
	if err != nil {
		t.Fatalf("Create(): got err == %s, want err == nil", err)
	}
	defer p.Close(srv)

	c, err := p.Open(path, Datagram)
	if err != nil {
		t.Fatalf("Open(): got err == %s, want err == nil", err)
	}
	defer p.Close(c)

	for _, msg := range []string{"one", "two"} {
		if n, err := p.Write(c, []byte(msg)); err != nil || n != len(msg) {
			t.Fatalf("Write(%s): got (%d, %v), want (%d, nil)", msg, n, err, len(msg))
		}
	}
	b := make([]byte, 16)
	for _, want := range []string{"one", "two"} {
		n, err := p.Read(srv, b)
		if err != nil {
			t.Fatalf("Read(): got err == %s, want err == nil", err)
		}
		if string(b[:n]) != want {
			t.Errorf("Read(): got %q, want %q", b[:n], want)
		}
	}

	if _, err := p.Accept(srv, Datagram); err == nil {
		t.Errorf("Accept() on a datagram socket: got err == nil, want err != nil")
	}
}

func TestTimeout(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("accept() only honors SO_RCVTIMEO on linux")
	}
	p := mustLoad(t)
	path := sockPath()
	defer os.Remove(path)

	l, err := p.Listen(path, Stream, 1)
	if err != nil {
		t.Fatalf("Listen(): got err == %s, want err == nil", err)
	}
	defer p.Close(l)

	if err := p.Timeout(l, 50*time.Millisecond); err != nil {
		t.Fatalf("Timeout(): got err == %s, want err == nil", err)
	}

	start := time.Now()
	_, err = p.Accept(l, Stream)
	if !errors.Is(err, unix.EAGAIN) {
		t.Fatalf("Accept() with timeout: got err == %v, want EAGAIN", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Errorf("Accept() with timeout: took %v", time.Since(start))
	}
}

func TestOpenNoServer(t *testing.T) {
	p := mustLoad(t)

	h, err := p.Open(sockPath(), Stream)
	if err == nil {
		p.Close(h)
		t.Fatalf("Open(): got err == nil, want err != nil")
	}
	if h != InvalidHandle {
		t.Errorf("Open(): got handle %d, want InvalidHandle", h)
	}
}

func TestUnlink(t *testing.T) {
	p := mustLoad(t)
	path := sockPath()

	h, err := p.Listen(path, Stream, 0)
	if err != nil {
		t.Fatalf("Listen(): got err == %s, want err == nil", err)
	}
	p.Close(h)

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("socket file should exist after Close(): %s", err)
	}
	if err := p.Unlink(path); err != nil {
		t.Fatalf("Unlink(): got err == %s, want err == nil", err)
	}
	if err := p.Unlink(path); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("second Unlink(): got err == %v, want fs.ErrNotExist", err)
	}
}
