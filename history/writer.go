package history

import "sync"

// writeOp is one file operation: write a snapshot, or remove the file.
type writeOp struct {
	records []Record
	remove  bool
}

// Writer applies file operations on a single background goroutine. Only the
// most recent pending operation is kept; older ones are superseded before
// they run.
type Writer struct {
	apply func(writeOp)

	mu      sync.Mutex
	cond    *sync.Cond
	pending *writeOp
	busy    bool
	closed  bool

	wake chan struct{}
	done chan struct{}
}

// NewWriter starts a writer that hands each operation to apply.
func NewWriter(apply func(writeOp)) *Writer {
	w := &Writer{
		apply: apply,
		wake:  make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
	w.cond = sync.NewCond(&w.mu)
	go w.loop()
	return w
}

// submit queues op, replacing any operation that has not started yet.
// Operations submitted after Close run synchronously.
func (w *Writer) submit(op writeOp) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		w.apply(op)
		return
	}
	w.pending = &op
	select {
	case w.wake <- struct{}{}:
	default:
	}
	w.mu.Unlock()
}

// Flush blocks until no operation is pending or running.
func (w *Writer) Flush() {
	w.mu.Lock()
	for w.pending != nil || w.busy {
		w.cond.Wait()
	}
	w.mu.Unlock()
}

// Close applies the pending operation, if any, and stops the goroutine.
func (w *Writer) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	close(w.wake)
	w.mu.Unlock()
	<-w.done
}

func (w *Writer) loop() {
	defer close(w.done)
	for range w.wake {
		w.drain()
	}
	w.drain()
}

func (w *Writer) drain() {
	for {
		w.mu.Lock()
		op := w.pending
		w.pending = nil
		if op == nil {
			w.busy = false
			w.cond.Broadcast()
			w.mu.Unlock()
			return
		}
		w.busy = true
		w.mu.Unlock()

		w.apply(*op)
	}
}
