// Package logwrap runs a program with its stdout and stderr attached to the
// slave side of a pseudo-terminal and relays everything it writes, one line
// at a time, to a logging sink tagged with the program's name. The pty keeps
// the child's stdio in line-buffered terminal mode instead of the fully
// buffered pipe mode, so lines arrive as the child produces them.
//
// An invocation blocks the calling goroutine until the child has been reaped
// and returns the child's exit code. Invocations are independent and may run
// concurrently; only the narrow window covering pty allocation, the
// signal-mask save, and the spawn itself is serialized process-wide.
package logwrap
