//go:build linux

package logwrap

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"sync"
	"syscall"

	"github.com/creack/pty"
	"golang.org/x/sys/unix"
)

// spawnMu serializes pty allocation, the signal-mask window, and the spawn
// itself across concurrent invocations. The terminal allocator and the
// signal mask are process-wide; interleaving them with a concurrent spawn is
// not safe. Invocations run their relay loops outside the lock.
var spawnMu sync.Mutex

// ErrEmptyArgv is returned when Run is handed no program to execute.
var ErrEmptyArgv = errors.New("logwrap: empty argument vector")

// Options configure a single invocation. Constructed by the caller, consumed
// once by Run, not reused.
type Options struct {
	// Tag attributes the child's log lines. Empty means the base name of
	// argv[0].
	Tag string

	// Status, when non-nil, receives the child's raw wait status and leaves
	// result-code decoding to the caller.
	Status *unix.WaitStatus

	// IgnoreIntQuit shields the wrapper from SIGINT and SIGQUIT while the
	// child runs, so a ^C on the shared terminal reaches only the child.
	IgnoreIntQuit bool

	// LogOutput enables relaying the child's lines to the sink. Reassembly
	// and status handling run identically either way.
	LogOutput bool

	// Sink receives the relayed lines. Nil means a stderr sink.
	Sink Sink

	// WindowSize, when non-nil, is applied to the pty slave before the
	// child starts, so full-width output does not wrap at the kernel's
	// zero-size default.
	WindowSize *pty.Winsize
}

// Run executes argv with the child's stdout and stderr redirected through a
// fresh pseudo-terminal and relays the output to the sink. It blocks until
// the child has been reaped.
//
// The result is the child's exit code, or a negative errno-style code for
// internal failures: -ECHILD when the child did not exit normally and no raw
// status slot was supplied, the negated reap errno on a wait failure, and -1
// for setup failures (which also carry an error).
func Run(argv []string, opts Options) (int, error) {
	if len(argv) == 0 {
		return -1, ErrEmptyArgv
	}
	if opts.Sink == nil {
		opts.Sink = NewStderrSink()
	}
	if opts.Tag == "" {
		opts.Tag = filepath.Base(argv[0])
	}

	ptm, cmd, err := launch(argv, &opts)
	if err != nil {
		return -1, err
	}
	defer ptm.Close()
	defer cmd.Process.Release()

	if opts.IgnoreIntQuit {
		signal.Ignore(os.Interrupt, syscall.SIGQUIT)
		defer signal.Reset(os.Interrupt, syscall.SIGQUIT)
	}

	return pump(int(ptm.Fd()), cmd.Process.Pid, &opts)
}

// launch allocates the pty pair and spawns the child, all under the
// process-wide lock. On success the caller owns the master descriptor and
// the child handle; on failure everything acquired so far has been released.
func launch(argv []string, opts *Options) (*os.File, *exec.Cmd, error) {
	spawnMu.Lock()
	defer spawnMu.Unlock()

	ptm, pts, err := pty.Open()
	if err != nil {
		opts.Sink.Log(PriorityError, wrapperTag, "cannot allocate pty: %v", err)
		return nil, nil, fmt.Errorf("allocate pty: %w", err)
	}

	if opts.WindowSize != nil {
		// Advisory: a child that never queries the window size won't care.
		if err := pty.Setsize(pts, opts.WindowSize); err != nil {
			opts.Sink.Log(PriorityError, wrapperTag, "cannot size pty: %v", err)
		}
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = pts
	cmd.Stderr = pts

	err = startMasked(cmd)
	pts.Close()
	if err != nil {
		ptm.Close()
		opts.Sink.Log(PriorityError, wrapperTag, "executing %s failed: %v", argv[0], err)
		return nil, nil, fmt.Errorf("exec %s: %w", argv[0], err)
	}
	return ptm, cmd, nil
}

// startMasked starts the child with SIGINT and SIGQUIT blocked for the
// duration of the spawn, so neither side of the underlying fork can race a
// handler for them mid-flight. The previous mask is restored before
// returning.
func startMasked(cmd *exec.Cmd) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	var oldset unix.Sigset_t
	blockset := sigsetOf(unix.SIGINT, unix.SIGQUIT)
	if err := unix.PthreadSigmask(unix.SIG_BLOCK, &blockset, &oldset); err != nil {
		return fmt.Errorf("block signals: %w", err)
	}
	startErr := cmd.Start()
	if err := unix.PthreadSigmask(unix.SIG_SETMASK, &oldset, nil); err != nil && startErr == nil {
		startErr = fmt.Errorf("restore signal mask: %w", err)
	}
	return startErr
}

// sigsetOf builds a signal set the way sigaddset does.
func sigsetOf(sigs ...syscall.Signal) unix.Sigset_t {
	var set unix.Sigset_t
	for _, sig := range sigs {
		set.Val[(int(sig)-1)/64] |= 1 << (uint(int(sig)-1) % 64)
	}
	return set
}
