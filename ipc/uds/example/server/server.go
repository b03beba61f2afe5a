package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/johnsiilver/suds/ipc/uds"
	"github.com/johnsiilver/suds/ipc/uds/native"

	log "github.com/golang/glog"
)

func main() {
	socketAddr := filepath.Join(os.TempDir(), uuid.New().String())

	p, err := native.Load()
	if err != nil {
		log.Exit(err)
	}

	cred, _, err := uds.Current()
	if err != nil {
		panic(err)
	}

	// This will set the socket file to have a uid and gid of whatever the
	// current user is. 0770 will be set for the file permissions (though on some
	// systems the sticky bit gets set, resulting in 1770.
	// The timeout lets Accept() wake up to notice Ctrl-C.
	serv, err := uds.ListenStream(
		p,
		socketAddr,
		10,
		uds.Chown(cred.UID.Int(), cred.GID.Int()),
		uds.FileMode(0770),
		uds.Timeout(time.Second),
	)
	if err != nil {
		panic(err)
	}
	defer serv.Unlink()
	defer serv.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Println("Listening on socket: ", socketAddr)

	if err := serve(ctx, serv, cred); err != nil {
		log.Error(err)
	}
}

func serve(ctx context.Context, serv *uds.StreamListener, cred uds.Cred) error {
	for ctx.Err() == nil {
		// This blocks for a client connecting and returns the connection object.
		conn, err := serv.Accept()
		if err != nil {
			if uds.IsTimeout(err) {
				continue
			}
			return err
		}
		// Connections inherit the listener's timeout, writes here should block as long as they need.
		if err := conn.SetTimeout(0); err != nil {
			conn.Close()
			return err
		}

		// We spinoff handling of this connection to its own goroutine and
		// go back to listening for another connection.
		go func() {
			defer conn.Close()

			// We are checking the client's user ID to make sure its the same
			// user ID or we reject it. Cred objects give you the user's
			// uid/gid/pid for filtering.
			peer, err := conn.Cred()
			if err != nil {
				log.Error(err)
				return
			}
			if peer.UID.Int() != cred.UID.Int() {
				log.Errorf("unauthorized user uid %d attempted a connection", peer.UID.Int())
				return
			}
			// Write to the stream every 10 seconds until the connection closes.
			for {
				if _, err := conn.Write([]byte(fmt.Sprintf("%s\n", time.Now().UTC()))); err != nil {
					return
				}
				time.Sleep(10 * time.Second)
			}
		}()
	}
	return nil
}
