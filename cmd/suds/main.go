// Command suds serves, receives from and sends to Unix domain sockets.
//
//	suds serve --path /tmp/echo.sock
//	echo hello | suds send --path /tmp/echo.sock
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	log "github.com/golang/glog"
	"github.com/johnsiilver/suds/ipc/uds"
	"github.com/johnsiilver/suds/ipc/uds/native"
)

func main() {
	p, err := native.Load()
	if err != nil {
		log.Exit(err)
	}

	if err := newApp(p).Execute(); err != nil {
		log.Exit(err)
	}
}

func newApp(p native.Provider) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "suds",
		Short:         "Simple Unix domain sockets",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	// glog registers its flags (-v, -logtostderr, ...) with the standard flag package.
	pflag.CommandLine.AddGoFlagSet(flag.CommandLine)
	rootCmd.PersistentFlags().AddFlagSet(pflag.CommandLine)
	rootCmd.PersistentPreRunE = func(*cobra.Command, []string) error {
		// Values were already set through pflag, this only marks the set as parsed for glog.
		return flag.CommandLine.Parse(nil)
	}

	rootCmd.AddCommand(
		newServeCommand(p),
		newRecvCommand(p),
		newSendCommand(p),
	)
	return rootCmd
}

func addSocketFlags(cmd *cobra.Command) {
	cmd.Flags().String("path", "", "filesystem path of the socket")
	cmd.Flags().String("mode", "stream", "socket mode [stream, datagram]")
	cmd.Flags().Duration("timeout", 0, "bound blocking socket calls, 0 blocks forever")
	cmd.MarkFlagRequired("path")
}

type socketFlags struct {
	path    string
	mode    uds.Mode
	timeout time.Duration
	options []uds.Option
}

func parseSocketFlags(flags *pflag.FlagSet) (socketFlags, error) {
	sf := socketFlags{}

	path, err := flags.GetString("path")
	if err != nil {
		return sf, err
	}
	sf.path = path

	m, err := flags.GetString("mode")
	if err != nil {
		return sf, err
	}
	if sf.mode, err = native.ParseMode(m); err != nil {
		return sf, err
	}

	timeout, err := flags.GetDuration("timeout")
	if err != nil {
		return sf, err
	}
	sf.timeout = timeout
	if timeout > 0 {
		sf.options = append(sf.options, uds.Timeout(timeout))
	}

	if flags.Lookup("file-mode") != nil {
		fm, err := flags.GetString("file-mode")
		if err != nil {
			return sf, err
		}
		if fm != "" {
			perm, err := strconv.ParseUint(fm, 8, 32)
			if err != nil {
				return sf, fmt.Errorf("--file-mode %q is not an octal permission: %w", fm, err)
			}
			sf.options = append(sf.options, uds.FileMode(os.FileMode(perm)))
		}
	}
	return sf, nil
}
