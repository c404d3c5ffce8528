// Package interactive provides the interactive command-line interface
// for ddc-shell.
package interactive

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/ddc-protocol/ddc-go/pkg/monitor"
	"github.com/ddc-protocol/ddc-go/pkg/sim"
	"github.com/ddc-protocol/ddc-go/pkg/vcp"
)

// Shell handles interactive mode for ddc-shell.
type Shell struct {
	handle *monitor.Monitor
	device *sim.Monitor
	rl     *readline.Instance
}

// New creates a new interactive shell around a monitor handle. The device
// is optional; when present the shell exposes simulation commands (user
// changes, fault injection).
func New(handle *monitor.Monitor, device *sim.Monitor) (*Shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "ddc> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	return &Shell{
		handle: handle,
		device: device,
		rl:     rl,
	}, nil
}

// Stdout returns a writer that coordinates with the readline prompt.
func (s *Shell) Stdout() io.Writer {
	return s.rl.Stdout()
}

// Run starts the interactive command loop.
func (s *Shell) Run(ctx context.Context) {
	defer s.rl.Close()

	s.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := s.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(s.rl.Stdout(), "Exiting...")
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			s.printHelp()

		case "caps", "c":
			s.cmdCaps(ctx)

		case "rawcaps":
			s.cmdRawCaps(ctx)

		case "get", "g":
			s.cmdGet(ctx, args)

		case "set":
			s.cmdSet(ctx, args)

		case "brightness", "b":
			s.cmdFraction(ctx, args, "brightness", s.handle.Luminance, s.handle.SetLuminance)

		case "contrast":
			s.cmdFraction(ctx, args, "contrast", s.handle.Contrast, s.handle.SetContrast)

		case "input":
			s.cmdInput(ctx, args)

		case "language":
			s.cmdLanguage(ctx, args)

		case "save":
			s.cmdSave(ctx)

		case "changes":
			s.cmdChanges(ctx)

		case "user":
			s.cmdUser(args)

		case "fault":
			s.cmdFault(args)

		case "session":
			fmt.Fprintf(s.rl.Stdout(), "Session: %s\n", s.handle.Conn().SessionID())

		case "exit", "quit", "q":
			fmt.Fprintln(s.rl.Stdout(), "Exiting...")
			return

		default:
			fmt.Fprintf(s.rl.Stdout(), "Unknown command: %s (try 'help')\n", cmd)
		}
	}
}

func (s *Shell) printHelp() {
	out := s.rl.Stdout()
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  caps, c               Show parsed capabilities")
	fmt.Fprintln(out, "  rawcaps               Show the raw capability string")
	fmt.Fprintln(out, "  get, g <code>         Read a feature (hex code, e.g. 'get 10')")
	fmt.Fprintln(out, "  set <code> <value>    Write a feature")
	fmt.Fprintln(out, "  brightness, b [0..1]  Show or set brightness")
	fmt.Fprintln(out, "  contrast [0..1]       Show or set contrast")
	fmt.Fprintln(out, "  input [code]          Show or select the input source")
	fmt.Fprintln(out, "  language [code]       Show or select the OSD language")
	fmt.Fprintln(out, "  save                  Persist current settings")
	fmt.Fprintln(out, "  changes               Poll for settings changed at the OSD")
	if s.device != nil {
		fmt.Fprintln(out, "  user <code> <value>   Simulate a change at the physical controls")
		fmt.Fprintln(out, "  fault <kind> <n>      Inject faults: nak, corrupt, busy")
	}
	fmt.Fprintln(out, "  session               Show the session identifier")
	fmt.Fprintln(out, "  exit, quit            Leave the shell")
}

func (s *Shell) cmdCaps(ctx context.Context) {
	out := s.rl.Stdout()
	caps, err := s.handle.Capabilities(ctx)
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}

	if caps.Protocol != "" {
		fmt.Fprintf(out, "Protocol:   %s\n", caps.Protocol)
	}
	if caps.Technology != "" {
		fmt.Fprintf(out, "Technology: %s\n", caps.Technology)
	}
	if caps.Model != "" {
		fmt.Fprintf(out, "Model:      %s\n", caps.Model)
	}
	if caps.HasVersion {
		fmt.Fprintf(out, "MCCS:       %d.%d\n", caps.Version.Major, caps.Version.Minor)
	}
	if len(caps.Commands) > 0 {
		names := make([]string, len(caps.Commands))
		for i, op := range caps.Commands {
			names[i] = fmt.Sprintf("%02X", uint8(op))
		}
		fmt.Fprintf(out, "Commands:   %s\n", strings.Join(names, " "))
	}

	fmt.Fprintf(out, "Features:   %d\n", len(caps.VCP))
	for _, entry := range caps.VCP {
		line := fmt.Sprintf("  %02X %s", uint8(entry.Code), entry.Code)
		if len(entry.Values) > 0 {
			values := make([]string, len(entry.Values))
			for i, v := range entry.Values {
				values[i] = fmt.Sprintf("%02X", v)
			}
			line += " (" + strings.Join(values, " ") + ")"
		}
		fmt.Fprintln(out, line)
	}
}

func (s *Shell) cmdRawCaps(ctx context.Context) {
	raw, err := s.handle.Conn().RawCapabilities(ctx)
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Error: %v\n", err)
		return
	}
	fmt.Fprintln(s.rl.Stdout(), raw)
}

func (s *Shell) cmdGet(ctx context.Context, args []string) {
	out := s.rl.Stdout()
	if len(args) != 1 {
		fmt.Fprintln(out, "Usage: get <code>")
		return
	}
	code, err := parseCode(args[0])
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}

	value, err := s.handle.Get(ctx, code)
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(out, "%s = %s (%s)\n", code, value, value.Kind())
}

func (s *Shell) cmdSet(ctx context.Context, args []string) {
	out := s.rl.Stdout()
	if len(args) != 2 {
		fmt.Fprintln(out, "Usage: set <code> <value>")
		return
	}
	code, err := parseCode(args[0])
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}
	raw, err := strconv.ParseUint(args[1], 0, 16)
	if err != nil {
		fmt.Fprintf(out, "Error: invalid value %q\n", args[1])
		return
	}

	if err := s.handle.Set(ctx, code, vcp.Discrete(uint16(raw))); err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(out, "%s set to %d\n", code, raw)
}

func (s *Shell) cmdFraction(ctx context.Context, args []string, name string,
	get func(context.Context) (float64, error), set func(context.Context, float64) error) {
	out := s.rl.Stdout()

	if len(args) == 0 {
		f, err := get(ctx)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		fmt.Fprintf(out, "%s: %.0f%%\n", name, f*100)
		return
	}

	f, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		fmt.Fprintf(out, "Error: invalid fraction %q\n", args[0])
		return
	}
	if err := set(ctx, f); err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(out, "%s set to %.0f%%\n", name, f*100)
}

func (s *Shell) cmdInput(ctx context.Context, args []string) {
	out := s.rl.Stdout()
	if len(args) == 0 {
		source, err := s.handle.InputSource(ctx)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		fmt.Fprintf(out, "Input source: 0x%02X\n", source)
		return
	}

	raw, err := strconv.ParseUint(args[0], 16, 16)
	if err != nil {
		fmt.Fprintf(out, "Error: invalid source %q\n", args[0])
		return
	}
	if err := s.handle.SetInputSource(ctx, uint16(raw)); err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(out, "Input source set to 0x%02X\n", raw)
}

func (s *Shell) cmdLanguage(ctx context.Context, args []string) {
	out := s.rl.Stdout()
	if len(args) == 0 {
		language, err := s.handle.OSDLanguage(ctx)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		fmt.Fprintf(out, "OSD language: 0x%02X\n", language)
		return
	}

	raw, err := strconv.ParseUint(args[0], 16, 16)
	if err != nil {
		fmt.Fprintf(out, "Error: invalid language %q\n", args[0])
		return
	}
	if err := s.handle.SetOSDLanguage(ctx, uint16(raw)); err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(out, "OSD language set to 0x%02X\n", raw)
}

func (s *Shell) cmdSave(ctx context.Context) {
	out := s.rl.Stdout()
	if err := s.handle.SaveSettings(ctx); err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(out, "Settings saved")
}

func (s *Shell) cmdChanges(ctx context.Context) {
	out := s.rl.Stdout()
	changed, err := s.handle.PendingChanges(ctx)
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}
	if len(changed) == 0 {
		fmt.Fprintln(out, "No pending changes")
		return
	}
	for _, code := range changed {
		fmt.Fprintf(out, "Changed: %02X %s\n", uint8(code), code)
	}
}

func (s *Shell) cmdUser(args []string) {
	out := s.rl.Stdout()
	if s.device == nil {
		fmt.Fprintln(out, "No simulated device attached")
		return
	}
	if len(args) != 2 {
		fmt.Fprintln(out, "Usage: user <code> <value>")
		return
	}
	code, err := parseCode(args[0])
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}
	raw, err := strconv.ParseUint(args[1], 0, 16)
	if err != nil {
		fmt.Fprintf(out, "Error: invalid value %q\n", args[1])
		return
	}
	if err := s.device.SimulateUserChange(code, uint16(raw)); err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(out, "User changed %s to %d\n", code, raw)
}

func (s *Shell) cmdFault(args []string) {
	out := s.rl.Stdout()
	if s.device == nil {
		fmt.Fprintln(out, "No simulated device attached")
		return
	}
	if len(args) != 2 {
		fmt.Fprintln(out, "Usage: fault <nak|corrupt|busy> <n>")
		return
	}
	n, err := strconv.Atoi(args[1])
	if err != nil || n < 0 {
		fmt.Fprintf(out, "Error: invalid count %q\n", args[1])
		return
	}

	switch strings.ToLower(args[0]) {
	case "nak":
		s.device.InjectNAK(n)
	case "corrupt":
		s.device.InjectCorrupt(n)
	case "busy":
		s.device.InjectBusy(n)
	default:
		fmt.Fprintf(out, "Unknown fault kind: %s\n", args[0])
		return
	}
	fmt.Fprintf(out, "Next %d reads: %s\n", n, strings.ToLower(args[0]))
}

// parseCode accepts a feature code as hex ('10', '0x10') or by registry
// name ('Luminance').
func parseCode(arg string) (vcp.Code, error) {
	if raw, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(arg), "0x"), 16, 8); err == nil {
		return vcp.Code(raw), nil
	}
	if def, ok := vcp.LookupName(arg); ok {
		return def.Code, nil
	}
	return 0, fmt.Errorf("unknown feature %q (hex code or registry name)", arg)
}
