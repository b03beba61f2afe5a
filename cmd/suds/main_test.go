package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/johnsiilver/suds/ipc/uds"
	"github.com/johnsiilver/suds/ipc/uds/native"
	"github.com/johnsiilver/suds/ipc/uds/native/fake"
	"github.com/kylelemons/godebug/pretty"
)

func TestParseSocketFlags(t *testing.T) {
	tests := []struct {
		desc        string
		args        []string
		wantMode    uds.Mode
		wantOptions int
		wantErr     bool
	}{
		{desc: "defaults", args: []string{"--path", "/tmp/a.sock"}, wantMode: uds.Stream},
		{desc: "datagram", args: []string{"--path", "/tmp/a.sock", "--mode", "datagram"}, wantMode: uds.Datagram},
		{
			desc:        "timeout and file mode",
			args:        []string{"--path", "/tmp/a.sock", "--timeout", "1s", "--file-mode", "0770"},
			wantMode:    uds.Stream,
			wantOptions: 2,
		},
		{desc: "bad mode", args: []string{"--path", "/tmp/a.sock", "--mode", "seqpacket"}, wantErr: true},
		{desc: "bad file mode", args: []string{"--path", "/tmp/a.sock", "--file-mode", "rwx"}, wantErr: true},
	}

	for _, test := range tests {
		cmd := newServeCommand(fake.New())
		if err := cmd.Flags().Parse(test.args); err != nil {
			t.Fatalf("TestParseSocketFlags(%s): flag parsing failed: %s", test.desc, err)
		}

		sf, err := parseSocketFlags(cmd.Flags())
		switch {
		case err == nil && test.wantErr:
			t.Errorf("TestParseSocketFlags(%s): got err == nil, want err != nil", test.desc)
			continue
		case err != nil && !test.wantErr:
			t.Errorf("TestParseSocketFlags(%s): got err == %s, want err == nil", test.desc, err)
			continue
		case err != nil:
			continue
		}

		if sf.path != "/tmp/a.sock" {
			t.Errorf("TestParseSocketFlags(%s): got path %q", test.desc, sf.path)
		}
		if sf.mode != test.wantMode {
			t.Errorf("TestParseSocketFlags(%s): got mode %v, want %v", test.desc, sf.mode, test.wantMode)
		}
		if len(sf.options) != test.wantOptions {
			t.Errorf("TestParseSocketFlags(%s): got %d options, want %d", test.desc, len(sf.options), test.wantOptions)
		}
	}
}

func TestApp(t *testing.T) {
	app := newApp(fake.New())

	got := []string{}
	for _, c := range app.Commands() {
		got = append(got, c.Name())
	}
	want := []string{"recv", "send", "serve"}
	if diff := pretty.Compare(want, got); diff != "" {
		t.Errorf("commands -want/+got:\n%s", diff)
	}
	if app.PersistentFlags().Lookup("v") == nil {
		t.Errorf("glog flag -v is not exposed")
	}
}

func TestSendStream(t *testing.T) {
	p := fake.New()
	written := bytes.Buffer{}
	p.WriteFn = func(h native.Handle, b []byte) (int, error) {
		return written.Write(b)
	}
	reply := "world"
	p.ReadFn = func(h native.Handle, b []byte) (int, error) {
		n := copy(b, reply)
		reply = reply[n:]
		return n, nil
	}

	s, err := uds.Dial(p, "/tmp/a.sock", uds.Stream)
	if err != nil {
		t.Fatal(err)
	}

	out := bytes.Buffer{}
	if err := send(s, strings.NewReader("hello"), &out); err != nil {
		t.Fatalf("send(): got err == %s, want err == nil", err)
	}
	if written.String() != "hello" {
		t.Errorf("send(): wrote %q, want %q", written.String(), "hello")
	}
	if out.String() != "world" {
		t.Errorf("send(): copied %q to out, want %q", out.String(), "world")
	}
	if p.Count(fake.ShutdownWrite) != 1 {
		t.Errorf("send(): did not shut down writes after stdin ended")
	}
}

func TestSendDatagram(t *testing.T) {
	p := fake.New()
	s, err := uds.Dial(p, "/tmp/a.sock", uds.Datagram)
	if err != nil {
		t.Fatal(err)
	}

	if err := send(s, strings.NewReader("hello"), &bytes.Buffer{}); err != nil {
		t.Fatalf("send(): got err == %s, want err == nil", err)
	}
	if p.Count(fake.Write) != 1 || p.Count(fake.Read) != 0 {
		t.Errorf("send(): got ops %v, want a single write", p.Ops())
	}
}
