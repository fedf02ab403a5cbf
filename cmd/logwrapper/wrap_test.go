package main

import (
	"reflect"
	"testing"

	"github.com/carbonfish/platform-system-core/internal/config"
)

func TestParseWrapperArgsDefaults(t *testing.T) {
	flags, child, err := parseWrapperArgs([]string{"echo", "hello"}, config.Default().Settings)
	if err != nil {
		t.Fatalf("parseWrapperArgs failed: %v", err)
	}
	if flags.quiet || flags.keepSignals || flags.useSyslog || flags.crash {
		t.Errorf("unexpected flags from defaults: %+v", flags)
	}
	if !reflect.DeepEqual(child, []string{"echo", "hello"}) {
		t.Errorf("expected child argv [echo hello], got %v", child)
	}
}

func TestParseWrapperArgsFlags(t *testing.T) {
	flags, child, err := parseWrapperArgs(
		[]string{"-q", "-d", "--syslog", "-k", "prog"}, config.Default().Settings)
	if err != nil {
		t.Fatalf("parseWrapperArgs failed: %v", err)
	}
	if !flags.quiet || !flags.crash || !flags.useSyslog || !flags.keepSignals {
		t.Errorf("expected all flags set, got %+v", flags)
	}
	if !reflect.DeepEqual(child, []string{"prog"}) {
		t.Errorf("expected child argv [prog], got %v", child)
	}
}

func TestParseWrapperArgsStopsAtCommand(t *testing.T) {
	// Flags after the command belong to the wrapped program.
	flags, child, err := parseWrapperArgs(
		[]string{"-q", "make", "-j8", "--quiet"}, config.Default().Settings)
	if err != nil {
		t.Fatalf("parseWrapperArgs failed: %v", err)
	}
	if !flags.quiet {
		t.Error("expected quiet flag set")
	}
	if !reflect.DeepEqual(child, []string{"make", "-j8", "--quiet"}) {
		t.Errorf("child argv lost flags: %v", child)
	}
}

func TestParseWrapperArgsDoubleDash(t *testing.T) {
	// "--" lets the wrapped command itself start with a dash.
	_, child, err := parseWrapperArgs(
		[]string{"--", "-weird-prog", "arg"}, config.Default().Settings)
	if err != nil {
		t.Fatalf("parseWrapperArgs failed: %v", err)
	}
	if !reflect.DeepEqual(child, []string{"-weird-prog", "arg"}) {
		t.Errorf("expected child argv [-weird-prog arg], got %v", child)
	}
}

func TestParseWrapperArgsUnknownFlag(t *testing.T) {
	if _, _, err := parseWrapperArgs([]string{"-z", "prog"}, config.Default().Settings); err == nil {
		t.Error("expected an error for an unknown flag")
	}
}

func TestPrescanArgs(t *testing.T) {
	cases := []struct {
		args          []string
		help, version bool
	}{
		{[]string{"--help"}, true, false},
		{[]string{"-q", "-h", "prog"}, true, false},
		{[]string{"--version"}, false, true},
		{[]string{"-q", "--version"}, false, true},
		// Past the command (or "--"), help and version belong to the
		// wrapped program.
		{[]string{"prog", "--version"}, false, false},
		{[]string{"prog", "--help"}, false, false},
		{[]string{"--", "--version"}, false, false},
		{[]string{"-q", "prog"}, false, false},
	}
	for _, tc := range cases {
		help, version := prescanArgs(tc.args)
		if help != tc.help || version != tc.version {
			t.Errorf("prescanArgs(%v) = (%v, %v), expected (%v, %v)",
				tc.args, help, version, tc.help, tc.version)
		}
	}
}

func TestParseWrapperArgsConfigDefaults(t *testing.T) {
	settings := config.Settings{Quiet: true, IgnoreIntQuit: false, Syslog: true}
	flags, _, err := parseWrapperArgs([]string{"prog"}, settings)
	if err != nil {
		t.Fatalf("parseWrapperArgs failed: %v", err)
	}
	if !flags.quiet || !flags.keepSignals || !flags.useSyslog {
		t.Errorf("config defaults not applied: %+v", flags)
	}
}
