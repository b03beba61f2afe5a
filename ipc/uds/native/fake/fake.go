/*
Package fake provides a native.Provider that records every call and can be told what to return.

With no hooks set, Provider behaves like a well mannered kernel: handle producing calls mint new
handles, writes accept everything, reads report end-of-stream and everything else succeeds.
Set a hook to change the result of a single operation:

	p := fake.New()
	p.WriteFn = func(h native.Handle, b []byte) (int, error) {
		return len(b) - 1, nil // Short write.
	}
*/
package fake

import (
	"fmt"
	"sync"
	"time"

	"github.com/johnsiilver/suds/ipc/uds/native"
)

// Op names a Provider method.
type Op string

// These are the operations recorded by Provider.
const (
	Create        Op = "create"
	Listen        Op = "listen"
	Accept        Op = "accept"
	Open          Op = "open"
	Read          Op = "read"
	Write         Op = "write"
	Timeout       Op = "timeout"
	Close         Op = "close"
	ShutdownRead  Op = "shutdown-read"
	ShutdownWrite Op = "shutdown-write"
	Unlink        Op = "unlink"
	PeerCred      Op = "peercred"
)

// Call is a record of a single call to Provider.
type Call struct {
	Op     Op
	Handle native.Handle
	Path   string
	Mode   native.Mode
	// Len is the buffer length for Read/Write and the backlog for Listen.
	Len int
	// Timeout is set for Timeout calls.
	Timeout time.Duration
}

// Provider implements native.Provider and native.CredProvider. It is safe for concurrent use.
type Provider struct {
	CreateFn        func(path string, mode native.Mode) (native.Handle, error)
	ListenFn        func(path string, mode native.Mode, backlog int) (native.Handle, error)
	AcceptFn        func(h native.Handle, mode native.Mode) (native.Handle, error)
	OpenFn          func(path string, mode native.Mode) (native.Handle, error)
	ReadFn          func(h native.Handle, b []byte) (int, error)
	WriteFn         func(h native.Handle, b []byte) (int, error)
	TimeoutFn       func(h native.Handle, d time.Duration) error
	CloseFn         func(h native.Handle) error
	ShutdownReadFn  func(h native.Handle) error
	ShutdownWriteFn func(h native.Handle) error
	UnlinkFn        func(path string) error
	PeerCredFn      func(h native.Handle) (native.PeerCred, error)

	mu    sync.Mutex
	next  native.Handle
	calls []Call
}

// New is the constructor for Provider. Handles are minted starting at 3, as they would be
// in a process with only stdin/stdout/stderr open.
func New() *Provider {
	return &Provider{next: 3}
}

func (p *Provider) record(c Call) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, c)
}

func (p *Provider) mint() native.Handle {
	p.mu.Lock()
	defer p.mu.Unlock()
	h := p.next
	p.next++
	return h
}

// Calls returns a copy of every call made so far, in order.
func (p *Provider) Calls() []Call {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Call, len(p.calls))
	copy(out, p.calls)
	return out
}

// Ops returns the Op of every call made so far, in order.
func (p *Provider) Ops() []Op {
	calls := p.Calls()
	out := make([]Op, 0, len(calls))
	for _, c := range calls {
		out = append(out, c.Op)
	}
	return out
}

// Count returns how many times op was called.
func (p *Provider) Count(op Op) int {
	n := 0
	for _, c := range p.Calls() {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Reset forgets all recorded calls. Hooks are left in place.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = nil
}

// Create implements native.Provider.Create.
func (p *Provider) Create(path string, mode native.Mode) (native.Handle, error) {
	p.record(Call{Op: Create, Path: path, Mode: mode})
	if p.CreateFn != nil {
		return p.CreateFn(path, mode)
	}
	return p.mint(), nil
}

// Listen implements native.Provider.Listen.
func (p *Provider) Listen(path string, mode native.Mode, backlog int) (native.Handle, error) {
	p.record(Call{Op: Listen, Path: path, Mode: mode, Len: backlog})
	if p.ListenFn != nil {
		return p.ListenFn(path, mode, backlog)
	}
	return p.mint(), nil
}

// Accept implements native.Provider.Accept.
func (p *Provider) Accept(h native.Handle, mode native.Mode) (native.Handle, error) {
	p.record(Call{Op: Accept, Handle: h, Mode: mode})
	if p.AcceptFn != nil {
		return p.AcceptFn(h, mode)
	}
	return p.mint(), nil
}

// Open implements native.Provider.Open.
func (p *Provider) Open(path string, mode native.Mode) (native.Handle, error) {
	p.record(Call{Op: Open, Path: path, Mode: mode})
	if p.OpenFn != nil {
		return p.OpenFn(path, mode)
	}
	return p.mint(), nil
}

// Read implements native.Provider.Read.
func (p *Provider) Read(h native.Handle, b []byte) (int, error) {
	p.record(Call{Op: Read, Handle: h, Len: len(b)})
	if p.ReadFn != nil {
		return p.ReadFn(h, b)
	}
	return 0, nil
}

// Write implements native.Provider.Write.
func (p *Provider) Write(h native.Handle, b []byte) (int, error) {
	p.record(Call{Op: Write, Handle: h, Len: len(b)})
	if p.WriteFn != nil {
		return p.WriteFn(h, b)
	}
	return len(b), nil
}

// Timeout implements native.Provider.Timeout.
func (p *Provider) Timeout(h native.Handle, d time.Duration) error {
	p.record(Call{Op: Timeout, Handle: h, Timeout: d})
	if p.TimeoutFn != nil {
		return p.TimeoutFn(h, d)
	}
	return nil
}

// Close implements native.Provider.Close.
func (p *Provider) Close(h native.Handle) error {
	p.record(Call{Op: Close, Handle: h})
	if p.CloseFn != nil {
		return p.CloseFn(h)
	}
	return nil
}

// ShutdownRead implements native.Provider.ShutdownRead.
func (p *Provider) ShutdownRead(h native.Handle) error {
	p.record(Call{Op: ShutdownRead, Handle: h})
	if p.ShutdownReadFn != nil {
		return p.ShutdownReadFn(h)
	}
	return nil
}

// ShutdownWrite implements native.Provider.ShutdownWrite.
func (p *Provider) ShutdownWrite(h native.Handle) error {
	p.record(Call{Op: ShutdownWrite, Handle: h})
	if p.ShutdownWriteFn != nil {
		return p.ShutdownWriteFn(h)
	}
	return nil
}

// Unlink implements native.Provider.Unlink.
func (p *Provider) Unlink(path string) error {
	p.record(Call{Op: Unlink, Path: path})
	if p.UnlinkFn != nil {
		return p.UnlinkFn(path)
	}
	return nil
}

// PeerCred implements native.CredProvider.PeerCred.
func (p *Provider) PeerCred(h native.Handle) (native.PeerCred, error) {
	p.record(Call{Op: PeerCred, Handle: h})
	if p.PeerCredFn != nil {
		return p.PeerCredFn(h)
	}
	return native.PeerCred{}, fmt.Errorf("fake: no peer credentials for handle %d", h)
}

// Failure returns an error that reads like one from the real provider.
func Failure(op Op) error {
	return fmt.Errorf("fake %s: operation failed", op)
}
