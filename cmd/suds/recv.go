package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	log "github.com/golang/glog"
	"github.com/johnsiilver/suds/ipc/uds"
	"github.com/johnsiilver/suds/ipc/uds/native"
)

func newRecvCommand(p native.Provider) *cobra.Command {
	recvCmd := &cobra.Command{
		Use:   "recv",
		Short: "Create a socket for a single peer and copy what it sends to stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return recvAction(cmd, p)
		},
	}
	addSocketFlags(recvCmd)
	recvCmd.Flags().String("file-mode", "", "octal permissions for the socket file, such as 0770")
	return recvCmd
}

func recvAction(cmd *cobra.Command, p native.Provider) error {
	sf, err := parseSocketFlags(cmd.Flags())
	if err != nil {
		return err
	}

	s, err := uds.Create(p, sf.path, sf.mode, sf.options...)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Unlink(); err != nil {
			log.Error(err)
		}
	}()
	defer s.Close()

	// Create has already returned, a stream peer is connected by now.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Without --timeout reads wait pollInterval at a time so a signal is noticed.
	retry := sf.timeout == 0
	if retry {
		if err := s.SetTimeout(pollInterval); err != nil {
			return err
		}
	}

	r, err := s.Reader()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	return readLoop(ctx, r, s.Mode(), retry, func(b []byte) error {
		_, err := out.Write(b)
		return err
	})
}
