package logwrap

// lineBufferSize bounds the memory used for line reassembly per invocation.
// A line longer than this is force-flushed in one piece rather than growing
// the buffer.
const lineBufferSize = 4096

// lineBuffer reassembles complete lines from arbitrary byte chunks read off
// the pty master. It never allocates: bytes land directly in buf via free(),
// scan() walks the newly filled region, and leftovers are compacted to the
// front so the next read has room.
//
// Invariant: 0 <= consumed <= filled < len(buf). Bytes before consumed have
// been emitted (or discarded); bytes in [consumed, filled) are waiting for a
// line terminator.
type lineBuffer struct {
	buf      [lineBufferSize]byte
	consumed int
	filled   int
}

// free returns the writable tail of the buffer. The last byte is reserved so
// the full-buffer flush condition below can fire before the buffer is
// completely out of room.
func (lb *lineBuffer) free() []byte {
	return lb.buf[lb.filled : len(lb.buf)-1]
}

// scan processes n bytes newly written into free(). Carriage returns are
// dropped from the content and never break a line; a line feed emits
// everything since the last terminator as one line. After the walk the buffer
// is either force-flushed (full with no terminator seen), compacted (partial
// line pending), or reset (everything consumed).
//
// The slice handed to emit aliases the buffer and is only valid for the
// duration of the call.
func (lb *lineBuffer) scan(n int, emit func(line []byte)) {
	w := lb.filled
	for _, c := range lb.buf[lb.filled : lb.filled+n] {
		switch c {
		case '\r':
		case '\n':
			emit(lb.buf[lb.consumed:w])
			lb.consumed = w
		default:
			lb.buf[w] = c
			w++
		}
	}
	lb.filled = w

	switch {
	case lb.consumed == 0 && lb.filled == len(lb.buf)-1:
		// Buffer full with no terminator in sight: flush it as one line so
		// a child that never writes newlines cannot stall the relay.
		emit(lb.buf[:lb.filled])
		lb.consumed = 0
		lb.filled = 0
	case lb.consumed != lb.filled:
		// Keep the unterminated tail for the next read.
		lb.filled = copy(lb.buf[:], lb.buf[lb.consumed:lb.filled])
		lb.consumed = 0
	default:
		lb.consumed = 0
		lb.filled = 0
	}
}

// pending returns the unterminated tail still held in the buffer, or nil.
func (lb *lineBuffer) pending() []byte {
	if lb.consumed == lb.filled {
		return nil
	}
	return lb.buf[lb.consumed:lb.filled]
}
