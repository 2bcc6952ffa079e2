// Command pnstack runs the userspace TCP/IP stack against a named
// network interface.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/soypat/pnstack/config"
	"github.com/soypat/pnstack/device"
	"github.com/soypat/pnstack/stack"
)

func main() {
	os.Exit(run())
}

func run() int {
	var configPath string
	var debug bool

	root := &cobra.Command{
		Use:   "pnstack <interface>",
		Short: "Run the userspace TCP/IP stack against a network interface",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStack(args[0], configPath, debug)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.Flags().StringVar(&configPath, "config", "", "path to the YAML configuration file")
	root.Flags().BoolVar(&debug, "debug", false, "enable per-packet trace to stderr, overriding the config file")

	err := root.Execute()
	if err == nil {
		return 0
	}
	if ee, ok := err.(*exitError); ok {
		fmt.Fprintln(os.Stderr, ee.err)
		return ee.code
	}
	fmt.Fprintln(os.Stderr, err)
	return 2
}

// exitError lets runStack distinguish spec §6's two non-zero exit
// codes (1: fatal device error, 2: unusable configuration) from
// cobra's own usage errors.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func runStack(ifaceName, configPath string, debugOverride bool) error {
	if configPath == "" {
		return &exitError{code: 2, err: fmt.Errorf("pnstack: --config is required")}
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return &exitError{code: 2, err: err}
	}
	if debugOverride {
		cfg.Debug = true
	}

	var dev device.LinkDevice
	dev, err = device.OpenRawSocket(ifaceName)
	if err != nil {
		return &exitError{code: 1, err: fmt.Errorf("pnstack: open %q: %w", ifaceName, err)}
	}
	defer dev.Close()

	st := stack.NewState(cfg)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := stack.Run(ctx, dev, st); err != nil {
		return &exitError{code: 1, err: fmt.Errorf("pnstack: %w", err)}
	}
	return nil
}
