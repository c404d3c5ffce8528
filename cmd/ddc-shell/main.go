// Command ddc-shell is an interactive shell for driving a DDC/CI monitor.
//
// Without flags it starts against a built-in simulated monitor, which makes
// it a self-contained playground for the protocol: read and write VCP
// features, fetch capabilities, inject bus faults and watch the retry
// policy absorb them.
//
// Usage:
//
//	ddc-shell [flags]
//
// Flags:
//
//	-addr uint          Monitor bus address (default 0x37)
//	-protocol-log string  File path for protocol event logging (CBOR format)
//	-verbose            Mirror protocol events to stderr
//
// Examples:
//
//	# Start the shell with protocol logging
//	ddc-shell -protocol-log session.dlog
//
//	# Inspect the captured session afterwards
//	ddc-log view session.dlog
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ddc-protocol/ddc-go/cmd/ddc-shell/interactive"
	ddclog "github.com/ddc-protocol/ddc-go/pkg/log"
	"github.com/ddc-protocol/ddc-go/pkg/monitor"
	"github.com/ddc-protocol/ddc-go/pkg/protocol"
	"github.com/ddc-protocol/ddc-go/pkg/sim"
	"github.com/ddc-protocol/ddc-go/pkg/wire"
)

var (
	addr        = flag.Uint("addr", uint(wire.DefaultDisplayAddr), "Monitor bus address")
	protocolLog = flag.String("protocol-log", "", "File path for protocol event logging (CBOR format)")
	verbose     = flag.Bool("verbose", false, "Mirror protocol events to stderr")
)

func main() {
	flag.Parse()

	if *addr > 0x7f {
		fmt.Fprintf(os.Stderr, "Error: bus address 0x%x is not a 7-bit address\n", *addr)
		os.Exit(1)
	}

	var logger ddclog.Logger
	if *protocolLog != "" {
		fileLogger, err := ddclog.NewFileLogger(*protocolLog)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: opening protocol log: %v\n", err)
			os.Exit(1)
		}
		defer fileLogger.Close()
		logger = fileLogger
		fmt.Printf("Protocol logging to %s\n", *protocolLog)
	}
	if *verbose {
		stderr := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		logger = ddclog.NewMultiLogger(logger, ddclog.NewSlogAdapter(stderr))
	}

	device := sim.NewMonitor()
	handle := monitor.New(device, protocol.Config{
		Addr:   uint8(*addr),
		Logger: logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shell, err := interactive.New(handle, device)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Simulated monitor at bus address 0x%02X (session %s)\n", *addr, handle.Conn().SessionID())
	shell.Run(ctx)
}
