package gamepad

// SignalKind distinguishes connect and disconnect notices.
type SignalKind int

const (
	Connected SignalKind = iota
	Disconnected
)

func (k SignalKind) String() string {
	if k == Disconnected {
		return "disconnected"
	}
	return "connected"
}

// Signal is a connect or disconnect notice for a device index. Counts and
// name are only meaningful for Connected.
type Signal struct {
	Kind    SignalKind
	Index   int
	Name    string
	Buttons int
	Axes    int
}

// FrameSource supplies raw frames on demand and announces devices coming
// and going.
type FrameSource interface {
	// Frame returns the latest raw frame for index. ok is false when the
	// index does not currently name a device. Frame never blocks.
	Frame(index int) (frame DeviceFrame, ok bool)

	// Signals returns the channel on which connect and disconnect notices
	// are delivered.
	Signals() <-chan Signal
}

// SignalQueue delivers signals on a buffered channel without blocking the
// producer. Signals that do not fit are held back and retried, in order,
// by later Offer and Flush calls. It is meant for a single producer.
type SignalQueue struct {
	ch      chan Signal
	pending []Signal
}

func NewSignalQueue(size int) *SignalQueue {
	return &SignalQueue{ch: make(chan Signal, size)}
}

// C returns the receive side of the queue.
func (q *SignalQueue) C() <-chan Signal {
	return q.ch
}

// Offer queues s behind any held-back signals and flushes. It returns the
// number of signals still held back.
func (q *SignalQueue) Offer(s Signal) int {
	q.pending = append(q.pending, s)
	return q.Flush()
}

// Flush moves held-back signals into the channel until it is full.
func (q *SignalQueue) Flush() int {
	n := 0
	for n < len(q.pending) {
		select {
		case q.ch <- q.pending[n]:
			n++
			continue
		default:
		}
		break
	}
	q.pending = q.pending[n:]
	if len(q.pending) == 0 {
		q.pending = nil
	}
	return len(q.pending)
}

// Pending returns the number of held-back signals.
func (q *SignalQueue) Pending() int {
	return len(q.pending)
}
