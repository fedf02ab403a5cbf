package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/carbonfish/platform-system-core/internal/config"
	"github.com/carbonfish/platform-system-core/internal/logwrap"

	"github.com/creack/pty"
	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// wrapFlags are the wrapper's own options, split off the front of the
// argument list before the wrapped command.
type wrapFlags struct {
	quiet       bool
	keepSignals bool
	useSyslog   bool
	crash       bool
}

func wrapCommand(cmd *cobra.Command, args []string) {
	// Handle help and version manually since flag parsing is disabled so
	// that flags can flow through to the wrapped command.
	help, version := prescanArgs(args)
	if help {
		cmd.Help()
		return
	}
	if version {
		fmt.Printf("%s v%s\n", appName, appVersion)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Printf("logwrapper: ignoring bad config: %v", err)
		cfg = config.Default()
	}

	flags, childArgs, err := parseWrapperArgs(args, cfg.Settings)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cmd.Usage()
		os.Exit(255)
	}
	if len(childArgs) == 0 {
		fmt.Fprintln(os.Stderr, "Error: command is required")
		cmd.Usage()
		os.Exit(255)
	}

	os.Exit(runWrapped(flags, childArgs))
}

// prescanArgs looks for a help or version request among the wrapper's own
// flags. Anything at or past the wrapped command (or "--") belongs to the
// wrapped program and is left alone.
func prescanArgs(args []string) (help, version bool) {
	for _, arg := range args {
		if arg == "--" || !strings.HasPrefix(arg, "-") {
			return false, false
		}
		switch arg {
		case "-h", "--help":
			return true, false
		case "--version":
			return false, true
		}
	}
	return false, false
}

// parseWrapperArgs splits the wrapper's flags from the wrapped command's
// argument vector. Scanning stops at "--" or at the first argument that does
// not start with a dash, so the wrapped program keeps its own flags.
func parseWrapperArgs(args []string, defaults config.Settings) (wrapFlags, []string, error) {
	flags := wrapFlags{
		quiet:       defaults.Quiet,
		keepSignals: !defaults.IgnoreIntQuit,
		useSyslog:   defaults.Syslog,
		crash:       defaults.CrashOnFailure,
	}

	i := 0
	for i < len(args) {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			break
		}
		i++
		switch arg {
		case "--":
			return flags, args[i:], nil
		case "-q", "--quiet":
			flags.quiet = true
		case "-k", "--keep-signals":
			flags.keepSignals = true
		case "-d", "--crash-on-failure":
			flags.crash = true
		case "--syslog":
			flags.useSyslog = true
		default:
			return flags, nil, fmt.Errorf("unknown flag %q", arg)
		}
	}
	return flags, args[i:], nil
}

func runWrapped(flags wrapFlags, childArgs []string) int {
	var status unix.WaitStatus
	opts := logwrap.Options{
		Status:        &status,
		IgnoreIntQuit: !flags.keepSignals,
		LogOutput:     !flags.quiet,
		WindowSize:    currentWinsize(),
	}

	if flags.useSyslog {
		sink, err := logwrap.NewSyslogSink()
		if err != nil {
			log.Printf("logwrapper: %v", err)
			return 255
		}
		defer sink.Close()
		opts.Sink = sink
	}

	if _, err := logwrap.Run(childArgs, opts); err != nil {
		return 255
	}

	code := 0
	if status.Exited() {
		code = status.ExitStatus()
	} else {
		code = 255
	}

	if flags.crash && code != 0 {
		// Let a crash handler capture the failing wrapper, debuggerd-style.
		_ = unix.Kill(unix.Getpid(), unix.SIGSEGV)
	}
	return code
}

// currentWinsize mirrors the controlling terminal's size onto the child's
// pty so full-width output does not wrap early. Returns nil when stdout is
// not a terminal.
func currentWinsize() *pty.Winsize {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return nil
	}
	w, h, err := term.GetSize(fd)
	if err != nil {
		return nil
	}
	return &pty.Winsize{Rows: uint16(h), Cols: uint16(w)}
}
