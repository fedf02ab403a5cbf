package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const (
	appName    = "logwrapper"
	appVersion = "1.0.0"
)

var rootCmd = &cobra.Command{
	Use:   appName + " [-d] [-q] [-k] [--syslog] <command> [args...]",
	Short: "Run a program on a pty and relay its output to the log",
	Long: `Logwrapper executes a program with stdout and stderr redirected through a
pseudo-terminal, so the child writes in line-buffered terminal mode, and
relays every line it produces to the log tagged with the program's name.
The wrapper exits with the child's exit code.

Flags before the command belong to the wrapper; everything from the first
non-flag argument on is passed to the wrapped program untouched.

  -d, --crash-on-failure   raise SIGSEGV after an abnormal or non-zero exit
  -q, --quiet              do not relay the child's output lines
  -k, --keep-signals       keep SIGINT/SIGQUIT delivery to the wrapper
      --syslog             log to the local syslog daemon instead of stderr

Defaults can be set in $XDG_CONFIG_HOME/logwrapper/config.kdl.

Examples:
  logwrapper make -j8
  logwrapper -q flaky-daemon --verbose
  logwrapper -- sh -c 'exit 7'`,
	Version:            appVersion,
	DisableFlagParsing: true,
	Args:               cobra.MinimumNArgs(1),
	Run:                wrapCommand,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("%s v%s\n", appName, appVersion))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(255)
	}
}
