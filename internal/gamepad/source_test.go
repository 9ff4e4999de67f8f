package gamepad

import "testing"

func TestSignalQueueHoldsBackOverflow(t *testing.T) {
	q := NewSignalQueue(2)
	q.Offer(Signal{Kind: Connected, Index: 0})
	q.Offer(Signal{Kind: Connected, Index: 1})
	if n := q.Offer(Signal{Kind: Disconnected, Index: 0}); n != 1 {
		t.Fatalf("expected 1 held-back signal, got %d", n)
	}

	if s := <-q.C(); s.Kind != Connected || s.Index != 0 {
		t.Fatalf("unexpected first signal %+v", s)
	}
	if n := q.Flush(); n != 0 {
		t.Fatalf("expected flush to drain, got %d pending", n)
	}

	want := []Signal{
		{Kind: Connected, Index: 1},
		{Kind: Disconnected, Index: 0},
	}
	for i, w := range want {
		if got := <-q.C(); got != w {
			t.Errorf("signal %d: got %+v, want %+v", i, got, w)
		}
	}
	if q.Pending() != 0 {
		t.Errorf("expected empty queue, got %d", q.Pending())
	}
}

func TestSignalQueueKeepsOrderBehindBacklog(t *testing.T) {
	q := NewSignalQueue(1)
	q.Offer(Signal{Kind: Connected, Index: 0})
	q.Offer(Signal{Kind: Disconnected, Index: 0})
	<-q.C()
	// A new signal must not overtake the held-back disconnect.
	q.Offer(Signal{Kind: Connected, Index: 1})

	if s := <-q.C(); s.Kind != Disconnected {
		t.Fatalf("expected the held-back disconnect first, got %+v", s)
	}
	q.Flush()
	if s := <-q.C(); s.Kind != Connected || s.Index != 1 {
		t.Errorf("unexpected signal %+v", s)
	}
}
