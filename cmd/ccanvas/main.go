// Command ccanvas boots the host process: it claims the terminal, starts
// the master Space and EventBus, spawns the initial child, and pumps
// stdin/SIGWINCH into the bus until a graceful shutdown request drains
// it (spec.md §6).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ccanvas/ccanvas/internal/discrim"
	"github.com/ccanvas/ccanvas/internal/event"
	"github.com/ccanvas/ccanvas/internal/eventbus"
	"github.com/ccanvas/ccanvas/internal/input"
	"github.com/ccanvas/ccanvas/internal/logger"
	"github.com/ccanvas/ccanvas/internal/packet"
	"github.com/ccanvas/ccanvas/internal/space"
	"github.com/ccanvas/ccanvas/internal/storage"
	"github.com/ccanvas/ccanvas/internal/terminal"
	"github.com/ccanvas/ccanvas/internal/wire"
)

var (
	logLevel string
	logFile  string
)

func main() {
	var bootErr error
	root := &cobra.Command{
		Use:   "ccanvas <label> <command> [args...]",
		Short: "terminal compositor and event bus for child processes",
		Args:  cobra.MinimumNArgs(2),
		// Argument errors print the error message and exit 0: spec.md §6
		// mandates exit code 0 on the argument-error path, unlike
		// cobra's usual non-zero-on-error default. Errors from boot
		// itself exit 1.
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			bootErr = boot(cmd, args[0], args[1], args[2:])
			return bootErr
		},
	}
	root.Flags().StringVar(&logLevel, "log-level", "info", "debug, info, warn, or error")
	root.Flags().StringVar(&logFile, "log-file", "", "file to append logs to (default stderr)")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "ccanvas:", err)
		if bootErr != nil {
			os.Exit(1)
		}
		os.Exit(0)
	}
}

func boot(cmd *cobra.Command, label, command string, args []string) error {
	if err := logger.Init(logLevel, logFile); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if err := storage.Init(os.Getpid()); err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	defer storage.Teardown()

	started := time.Now()
	driver := terminal.New(os.Stdin, os.Stdout)
	if err := driver.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	defer driver.Stop()

	bus := eventbus.New()
	master, err := space.NewMaster(bus.Send, driver)
	if err != nil {
		return fmt.Errorf("create master space: %w", err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	proc, err := master.Spawn(ctx, label, command, args)
	if err != nil {
		return fmt.Errorf("spawn %s: %w", command, err)
	}
	logger.Info("spawned initial child", "label", proc.Label, "discrim", proc.Discrim.String())

	src := input.New(os.Stdin, bus.Send)
	go src.Run(ctx)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		logger.Info("received interrupt, requesting shutdown")
		requestShutdown(bus)
	}()

	bus.Run(ctx, master)

	logger.Info("ccanvas exiting", "uptime", humanize.Time(started))
	return nil
}

// requestShutdown enqueues the graceful-shutdown sentinel the EventBus
// recognises and waits for its confirmation (spec.md §4.5).
func requestShutdown(bus *eventbus.Bus) {
	req := wire.Request{ID: wire.NextHostRequestID(), Content: wire.Drop{Discrim: discrim.Master()}}
	pkt := packet.New[wire.Request, wire.Response](req)
	bus.Send(event.NewRequestPacket(pkt))
	pkt.Wait(context.Background())
}
