package main

import (
	"context"
	"errors"
	"testing"

	"github.com/johnsiilver/suds/ipc/uds"
	"github.com/johnsiilver/suds/ipc/uds/native"
	"github.com/johnsiilver/suds/ipc/uds/native/fake"
)

type timeoutErr struct{}

func (timeoutErr) Error() string { return "resource temporarily unavailable" }
func (timeoutErr) Timeout() bool { return true }

func TestServeStopsOnAcceptFailure(t *testing.T) {
	p := fake.New()
	p.AcceptFn = func(native.Handle, native.Mode) (native.Handle, error) {
		return native.InvalidHandle, fake.Failure(fake.Accept)
	}
	serv, err := uds.ListenStream(p, "/tmp/example.sock", 1)
	if err != nil {
		t.Fatal(err)
	}

	if err := serve(context.Background(), serv, uds.Cred{}); !errors.Is(err, uds.ErrIO) {
		t.Errorf("serve(): got err == %v, want ErrIO", err)
	}
	if got := p.Count(fake.Accept); got != 1 {
		t.Errorf("serve(): called accept %d times, want 1", got)
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := fake.New()
	p.AcceptFn = func(native.Handle, native.Mode) (native.Handle, error) {
		// Ctrl-C arrives while Accept is waiting.
		cancel()
		return native.InvalidHandle, timeoutErr{}
	}
	serv, err := uds.ListenStream(p, "/tmp/example.sock", 1)
	if err != nil {
		t.Fatal(err)
	}

	if err := serve(ctx, serv, uds.Cred{}); err != nil {
		t.Errorf("serve(): got err == %s, want err == nil", err)
	}
	if got := p.Count(fake.Accept); got != 1 {
		t.Errorf("serve(): called accept %d times, want 1", got)
	}
}
