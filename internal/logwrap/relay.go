//go:build linux

package logwrap

import (
	"errors"
	"fmt"
	"syscall"

	"golang.org/x/sys/unix"
)

// pump relays the child's output from the pty master to the sink until the
// child is confirmed gone. Single-threaded and cooperative: it parks the
// calling goroutine in poll(2) and wakes for data or for the hangup raised
// when the child's side of the terminal closes.
func pump(masterFd, pid int, opts *Options) (int, error) {
	var (
		status unix.WaitStatus
		lb     lineBuffer
	)

	emit := func(line []byte) {
		if opts.LogOutput {
			opts.Sink.Log(PriorityInfo, opts.Tag, "%s", line)
		}
	}

	fds := []unix.PollFd{{Fd: int32(masterFd), Events: unix.POLLIN}}
	for reaped := false; !reaped; {
		if _, err := unix.Poll(fds, -1); err != nil {
			if err == unix.EINTR {
				continue
			}
			opts.Sink.Log(PriorityError, wrapperTag, "poll failed: %v", err)
			return -1, fmt.Errorf("poll pty master: %w", err)
		}

		if fds[0].Revents&unix.POLLIN != 0 {
			n, err := unix.Read(masterFd, lb.free())
			if err == nil && n > 0 {
				lb.scan(n, emit)
			}
			// A failed or empty read counts as "no data this round"; loop
			// termination is gated solely on hangup plus a successful reap.
		}

		if fds[0].Revents&unix.POLLHUP != 0 {
			n, err := unix.Wait4(pid, &status, unix.WNOHANG, nil)
			if err != nil {
				opts.Sink.Log(PriorityError, wrapperTag, "waitpid failed: %v", err)
				return -errnoCode(err), fmt.Errorf("reap child %d: %w", pid, err)
			}
			reaped = n > 0
		}
	}

	rc := 0
	switch {
	case opts.Status != nil:
		*opts.Status = status
	case status.Exited():
		rc = status.ExitStatus()
	default:
		rc = -int(unix.ECHILD)
	}

	if opts.LogOutput {
		if tail := lb.pending(); tail != nil {
			opts.Sink.Log(PriorityInfo, opts.Tag, "%s", tail)
		}
		logDisposition(opts.Sink, opts.Tag, status)
	}
	return rc, nil
}

// logDisposition emits the single summary line describing how the child
// ended. A clean zero exit stays quiet.
func logDisposition(sink Sink, tag string, status unix.WaitStatus) {
	switch {
	case status.Exited():
		if code := status.ExitStatus(); code != 0 {
			sink.Log(PriorityInfo, wrapperTag, "%s terminated by exit(%d)", tag, code)
		}
	case status.Signaled():
		sink.Log(PriorityInfo, wrapperTag, "%s terminated by signal %d", tag, status.Signal())
	case status.Stopped():
		sink.Log(PriorityInfo, wrapperTag, "%s stopped by signal %d", tag, status.StopSignal())
	}
}

// errnoCode extracts the numeric errno from err, or 1 when it carries none.
func errnoCode(err error) int {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return int(errno)
	}
	return 1
}
