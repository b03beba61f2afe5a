package main

import (
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/johnsiilver/suds/ipc/uds"
	"github.com/johnsiilver/suds/ipc/uds/native"
)

func newSendCommand(p native.Provider) *cobra.Command {
	sendCmd := &cobra.Command{
		Use:   "send",
		Short: "Connect to a socket and send stdin, stream replies are copied to stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return sendAction(cmd, p)
		},
	}
	addSocketFlags(sendCmd)
	return sendCmd
}

func sendAction(cmd *cobra.Command, p native.Provider) error {
	sf, err := parseSocketFlags(cmd.Flags())
	if err != nil {
		return err
	}

	s, err := uds.Dial(p, sf.path, sf.mode, sf.options...)
	if err != nil {
		return err
	}
	defer s.Close()

	return send(s, cmd.InOrStdin(), cmd.OutOrStdout())
}

// send copies in to s. If s can be read from, what the peer sends back is copied to out until
// the peer closes its side.
func send(s *uds.Socket, in io.Reader, out io.Writer) error {
	w, err := s.Writer()
	if err != nil {
		return err
	}
	r, err := s.Reader()
	if err != nil {
		// Datagram clients only write.
		_, err := io.Copy(w, in)
		return err
	}

	g := errgroup.Group{}
	g.Go(func() error {
		defer w.Close()
		_, err := io.Copy(w, in)
		return err
	})
	g.Go(func() error {
		_, err := io.Copy(out, r)
		return err
	})
	return g.Wait()
}
