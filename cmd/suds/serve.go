package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	log "github.com/golang/glog"
	"github.com/johnsiilver/suds/ipc/uds"
	"github.com/johnsiilver/suds/ipc/uds/native"
	"github.com/johnsiilver/suds/ipc/uds/pathwatch"
)

// pollInterval bounds each blocking accept or read in a serving loop so the loop can notice
// that it should stop.
var pollInterval = 250 * time.Millisecond

func newServeCommand(p native.Provider) *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Listen on a socket, echo stream connections and print datagrams",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serveAction(cmd, p)
		},
	}
	addSocketFlags(serveCmd)
	serveCmd.Flags().Int("backlog", 16, "connections that may wait to be accepted")
	serveCmd.Flags().String("file-mode", "", "octal permissions for the socket file, such as 0770")
	return serveCmd
}

func serveAction(cmd *cobra.Command, p native.Provider) error {
	sf, err := parseSocketFlags(cmd.Flags())
	if err != nil {
		return err
	}
	backlog, err := cmd.Flags().GetInt("backlog")
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	l, err := uds.Listen(p, sf.path, sf.mode, backlog, sf.options...)
	if err != nil {
		return err
	}
	defer func() {
		if err := l.Unlink(); err != nil {
			log.Error(err)
		}
	}()
	defer l.Close()

	// --timeout applies to connections, the listener itself only ever waits pollInterval.
	if err := l.SetTimeout(pollInterval); err != nil {
		return err
	}

	w, err := pathwatch.Removed(l.Path())
	if err != nil {
		return err
	}
	defer w.Close()

	log.Infof("serving %s socket at %s", l.Mode(), l.Path())

	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		if l.Mode() == uds.Datagram {
			errCh <- printDatagrams(loopCtx, l, cmd.OutOrStdout())
			return
		}
		errCh <- echoStreams(loopCtx, l, sf.timeout)
	}()

	select {
	case <-ctx.Done():
		log.Infof("shutting down: %s", ctx.Err())
	case <-w.Done():
		log.Infof("socket file %s was removed, shutting down", l.Path())
	case err := <-errCh:
		return err
	}

	// The loop must be out of Accept/Read before the listener is closed.
	cancel()
	select {
	case err := <-errCh:
		return err
	case <-time.After(4 * pollInterval):
		log.Warningf("serving loop on %s did not stop, the platform may not bound accept() by the socket timeout", l.Path())
		return nil
	}
}

// echoStreams accepts connections until ctx is done or Accept fails, each connection gets its
// own goroutine that writes back everything it reads. connTimeout is set on every connection,
// 0 blocks forever.
func echoStreams(ctx context.Context, l *uds.Listener, connTimeout time.Duration) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		s, err := l.Accept()
		if err != nil {
			if uds.IsTimeout(err) {
				continue
			}
			return err
		}
		// Accepted sockets inherit the listener's poll timeout.
		if err := s.SetTimeout(connTimeout); err != nil {
			log.Error(err)
			s.Close()
			continue
		}
		conn, err := uds.AsConn(s)
		if err != nil {
			s.Close()
			return err
		}

		go func() {
			defer conn.Close()

			if cred, err := conn.Cred(); err == nil {
				log.V(1).Infof("accepted connection from pid %s uid %s", cred.PID, cred.UID)
			}
			n, err := io.Copy(conn, conn)
			if err != nil {
				log.Errorf("echo: %s", err)
				return
			}
			log.V(1).Infof("echoed %d bytes", n)
		}()
	}
}

// printDatagrams prints each datagram received on l as a line of out.
func printDatagrams(ctx context.Context, l *uds.Listener, out io.Writer) error {
	r, err := l.Socket().Reader()
	if err != nil {
		return err
	}

	return readLoop(ctx, r, uds.Datagram, true, func(b []byte) error {
		_, err := fmt.Fprintf(out, "%s\n", b)
		return err
	})
}

// readLoop hands everything read from r to emit until ctx is done, the peer ends a stream or a
// read fails. A zero length read on a datagram socket is an empty datagram, not end of stream.
// Timeouts are retried when retryTimeouts is set and returned otherwise.
func readLoop(ctx context.Context, r *uds.Reader, mode uds.Mode, retryTimeouts bool, emit func([]byte) error) error {
	b := make([]byte, 64*1024)
	for {
		if ctx.Err() != nil {
			return nil
		}

		n, err := r.Read(b)
		switch {
		case err == nil:
		case uds.IsTimeout(err) && retryTimeouts:
			continue
		case errors.Is(err, io.EOF) && mode == uds.Datagram:
			n = 0
		case errors.Is(err, io.EOF):
			return nil
		default:
			return err
		}

		if err := emit(b[:n]); err != nil {
			return err
		}
	}
}
