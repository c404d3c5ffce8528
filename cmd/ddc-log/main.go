// Command ddc-log is a tool for viewing and analyzing DDC/CI protocol log
// files.
//
// Log files are created by running ddc-shell (or any program using the
// protocol logging infrastructure) with the -protocol-log flag.
//
// Usage:
//
//	ddc-log <command> [flags] <file.dlog>
//
// Commands:
//
//	view     View log file in human-readable format
//	stats    Show statistics about the log file
//
// Examples:
//
//	# View all events
//	ddc-log view session.dlog
//
//	# View only protocol-layer events
//	ddc-log view -layer protocol session.dlog
//
//	# Show statistics
//	ddc-log stats session.dlog
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	ddclog "github.com/ddc-protocol/ddc-go/pkg/log"
)

const usage = `ddc-log - DDC/CI Protocol Log Analyzer

Usage:
  ddc-log <command> [flags] <file.dlog>

Commands:
  view     View log file in human-readable format
  stats    Show statistics about the log file

Use "ddc-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "stats":
		runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func runView(args []string) {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	layer := fs.String("layer", "", "Filter by layer (transport, wire, protocol)")
	direction := fs.String("direction", "", "Filter by direction (in, out)")
	session := fs.String("session", "", "Filter by session identifier")
	hexDump := fs.Bool("hex", false, "Show frame payloads as hex")
	fs.Parse(args)

	events := readEvents(fs)
	for _, event := range events {
		if *layer != "" && !strings.EqualFold(event.Layer.String(), *layer) {
			continue
		}
		if *direction != "" && !strings.EqualFold(event.Direction.String(), *direction) {
			continue
		}
		if *session != "" && event.SessionID != *session {
			continue
		}
		printEvent(event, *hexDump)
	}
}

func runStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	fs.Parse(args)

	events := readEvents(fs)
	if len(events) == 0 {
		fmt.Println("No events")
		return
	}

	var frames, exchanges, errors, transient int
	frameBytes := 0
	sessions := map[string]int{}
	outcomes := map[string]int{}

	for _, event := range events {
		sessions[event.SessionID]++
		switch event.Category {
		case ddclog.CategoryFrame:
			frames++
			if event.Frame != nil {
				frameBytes += event.Frame.Size
			}
		case ddclog.CategoryExchange:
			exchanges++
			if event.Exchange != nil && event.Exchange.Outcome != "" {
				outcomes[event.Exchange.Outcome]++
			}
		case ddclog.CategoryError:
			errors++
			if event.Error != nil && event.Error.Transient {
				transient++
			}
		}
	}

	first := events[0].Timestamp
	last := events[len(events)-1].Timestamp

	fmt.Printf("Events:    %d\n", len(events))
	fmt.Printf("Span:      %s (%s .. %s)\n", last.Sub(first), first.Format("15:04:05.000"), last.Format("15:04:05.000"))
	fmt.Printf("Sessions:  %d\n", len(sessions))
	fmt.Printf("Frames:    %d (%d bytes)\n", frames, frameBytes)
	fmt.Printf("Exchanges: %d\n", exchanges)
	fmt.Printf("Errors:    %d (%d transient)\n", errors, transient)

	if len(outcomes) > 0 {
		names := make([]string, 0, len(outcomes))
		for name := range outcomes {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Println("Outcomes:")
		for _, name := range names {
			fmt.Printf("  %-10s %d\n", name, outcomes[name])
		}
	}
}

// readEvents opens the flag set's single positional file argument and
// reads every complete event from it.
func readEvents(fs *flag.FlagSet) []ddclog.Event {
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one log file is required")
		os.Exit(1)
	}

	reader, err := ddclog.OpenFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer reader.Close()

	events, err := reader.ReadAll()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: reading %s: %v\n", fs.Arg(0), err)
		os.Exit(1)
	}
	return events
}

func printEvent(event ddclog.Event, hexDump bool) {
	ts := event.Timestamp.Format("15:04:05.000")
	prefix := fmt.Sprintf("%s %-3s %-9s", ts, event.Direction, event.Layer)

	switch event.Category {
	case ddclog.CategoryFrame:
		if event.Frame == nil {
			return
		}
		line := fmt.Sprintf("%s frame %d bytes", prefix, event.Frame.Size)
		if hexDump {
			line += fmt.Sprintf("  % x", event.Frame.Data)
		}
		fmt.Println(line)
	case ddclog.CategoryExchange:
		if event.Exchange == nil {
			return
		}
		e := event.Exchange
		line := fmt.Sprintf("%s %s op=0x%02X attempt=%d state=%s", prefix, e.Kind, e.Opcode, e.Attempt, e.State)
		if e.Feature != 0 {
			line += fmt.Sprintf(" feature=0x%02X", e.Feature)
		}
		if e.Outcome != "" {
			line += " outcome=" + e.Outcome
		}
		fmt.Println(line)
	case ddclog.CategoryError:
		if event.Error == nil {
			return
		}
		class := "fatal"
		if event.Error.Transient {
			class = "transient"
		}
		fmt.Printf("%s %s error: %s\n", prefix, class, event.Error.Message)
	}
}
