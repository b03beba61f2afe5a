package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/johnsiilver/suds/ipc/uds"
	"github.com/johnsiilver/suds/ipc/uds/native"
)

var (
	addr = flag.String("addr", "", "The path to the unix socket to dial")
)

func main() {
	flag.Parse()

	if *addr == "" {
		fmt.Println("did not pass --addr")
		os.Exit(1)
	}

	p, err := native.Load()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	cred, _, err := uds.Current()
	if err != nil {
		panic(err)
	}

	// Only talk to a server started by our own user.
	fi, err := os.Stat(*addr)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if owner, ok := fileOwner(fi); ok && owner != cred.UID.Int() {
		fmt.Printf("socket %s is owned by uid %d, not %d\n", *addr, owner, cred.UID.Int())
		os.Exit(1)
	}

	client, err := uds.DialStream(p, *addr)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer client.Close()

	// client implements io.ReadWriteCloser and this will print to the screen
	// whatever the server sends until the connection is closed.
	io.Copy(os.Stdout, client)
}
