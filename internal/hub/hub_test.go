// SPDX-License-Identifier: MIT
package hub

import (
	"errors"
	"testing"

	"audiohub/internal/dsp"
	"audiohub/internal/sink"
)

// addStage adds a constant to every sample. Order-sensitive against mulStage.
type addStage struct {
	name  string
	delta int32
}

func (s *addStage) Name() string { return s.name }
func (s *addStage) Process(buf []int32) {
	for i := range buf {
		buf[i] += s.delta
	}
}

// mulStage multiplies every sample by a constant.
type mulStage struct {
	name   string
	factor int32
}

func (s *mulStage) Name() string { return s.name }
func (s *mulStage) Process(buf []int32) {
	for i := range buf {
		buf[i] *= s.factor
	}
}

// captureSink records enqueued samples and can limit per-call acceptance.
type captureSink struct {
	samples []int32
	perCall int // Max samples accepted per Enqueue; 0 means unlimited
	limit   int // Total capacity; 0 means unlimited
	err     error
}

func (c *captureSink) Enqueue(samples []int32) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	n := len(samples)
	if c.perCall > 0 && n > c.perCall {
		n = c.perCall
	}
	if c.limit > 0 {
		if free := c.limit - len(c.samples); n > free {
			n = free
		}
	}
	c.samples = append(c.samples, samples[:n]...)
	return n, nil
}

func (c *captureSink) Close() error { return nil }

func TestWriteRunsChainInOrder(t *testing.T) {
	// (x+1)*2 != x*2+1 catches an out-of-order chain.
	h := New(&addStage{name: "add", delta: 1}, &mulStage{name: "mul", factor: 2})
	cs := &captureSink{}
	h.SetSink(cs)

	n, err := h.Write([]int32{1, 2, 3})
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if n != 3 {
		t.Fatalf("Write accepted %d samples, want 3", n)
	}

	want := []int32{4, 6, 8}
	for i, w := range want {
		if cs.samples[i] != w {
			t.Errorf("Sample %d = %d, want %d (chain ran out of order?)", i, cs.samples[i], w)
		}
	}
}

func TestWriteFullSink(t *testing.T) {
	h := New()
	cs := &captureSink{limit: 4}
	h.SetSink(cs)

	n, err := h.Write([]int32{1, 2, 3, 4, 5, 6})
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if n != 4 {
		t.Errorf("Write accepted %d samples, want 4 (sink full)", n)
	}

	// The remainder stays with the caller; nothing is dropped.
	if got := h.Stats().Dropped; got != 0 {
		t.Errorf("Dropped = %d, want 0", got)
	}
}

func TestWriteReoffersAfterPartialAccept(t *testing.T) {
	h := New()
	cs := &captureSink{perCall: 2}
	h.SetSink(cs)

	n, err := h.Write([]int32{1, 2, 3, 4, 5})
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if n != 5 {
		t.Errorf("Write accepted %d samples, want 5 after re-offers", n)
	}
	for i, w := range []int32{1, 2, 3, 4, 5} {
		if cs.samples[i] != w {
			t.Errorf("Sample %d = %d, want %d", i, cs.samples[i], w)
		}
	}
}

func TestWriteChainRunsOncePerBuffer(t *testing.T) {
	// With a doubling stage and a drip-feeding sink, samples must be
	// doubled exactly once even though Enqueue runs multiple times.
	h := New(&mulStage{name: "mul", factor: 2})
	cs := &captureSink{perCall: 1}
	h.SetSink(cs)

	if _, err := h.Write([]int32{1, 2, 3}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	for i, w := range []int32{2, 4, 6} {
		if cs.samples[i] != w {
			t.Errorf("Sample %d = %d, want %d (chain re-ran on re-offer?)", i, cs.samples[i], w)
		}
	}
}

func TestEnqueueBypassesChain(t *testing.T) {
	h := New(&mulStage{name: "mul", factor: 2})
	cs := &captureSink{}
	h.SetSink(cs)

	n, err := h.Enqueue([]int32{1, 2, 3})
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if n != 3 {
		t.Fatalf("Enqueue accepted %d samples, want 3", n)
	}
	for i, w := range []int32{1, 2, 3} {
		if cs.samples[i] != w {
			t.Errorf("Sample %d = %d, want %d (Enqueue ran the chain?)", i, cs.samples[i], w)
		}
	}
	if got := h.Stats().BuffersIn; got != 0 {
		t.Errorf("Enqueue counted as a buffer: BuffersIn = %d", got)
	}
}

func TestWriteNoSinkDrops(t *testing.T) {
	h := New()

	n, err := h.Write([]int32{1, 2, 3})
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if n != 3 {
		t.Errorf("Write with no sink consumed %d samples, want 3", n)
	}

	stats := h.Stats()
	if stats.Dropped != 3 {
		t.Errorf("Dropped = %d, want 3", stats.Dropped)
	}
	if stats.Delivered != 0 {
		t.Errorf("Delivered = %d, want 0", stats.Delivered)
	}
}

func TestWriteSinkError(t *testing.T) {
	h := New()
	h.SetSink(&captureSink{err: sink.ErrClosed})

	n, err := h.Write([]int32{1, 2, 3})
	if err == nil {
		t.Fatal("Expected error from closed sink, got nil")
	}
	if !errors.Is(err, sink.ErrClosed) {
		t.Errorf("Error = %v, want wrapped ErrClosed", err)
	}
	if n != 0 {
		t.Errorf("Write accepted %d samples through a closed sink", n)
	}
	if got := h.Stats().Dropped; got != 3 {
		t.Errorf("Dropped = %d, want 3", got)
	}
}

func TestWriteEmptyBuffer(t *testing.T) {
	h := New()
	h.SetSink(&captureSink{})

	if n, err := h.Write(nil); n != 0 || err != nil {
		t.Errorf("Write(nil) = (%d, %v), want (0, nil)", n, err)
	}
	if got := h.Stats().BuffersIn; got != 0 {
		t.Errorf("Empty write counted as a buffer: BuffersIn = %d", got)
	}
}

func TestSetSinkReplacement(t *testing.T) {
	h := New()
	first := &captureSink{}
	second := &captureSink{}

	h.SetSink(first)
	if _, err := h.Write([]int32{1}); err != nil {
		t.Fatal(err)
	}

	h.SetSink(second)
	if _, err := h.Write([]int32{2}); err != nil {
		t.Fatal(err)
	}

	if len(first.samples) != 1 || first.samples[0] != 1 {
		t.Errorf("First sink got %v, want [1]", first.samples)
	}
	if len(second.samples) != 1 || second.samples[0] != 2 {
		t.Errorf("Second sink got %v, want [2]", second.samples)
	}

	h.SetSink(nil)
	if h.Sink() != nil {
		t.Error("Sink() should be nil after detach")
	}
}

func TestChainMutation(t *testing.T) {
	h := New(&addStage{name: "a", delta: 1})

	if err := h.PushStage(&addStage{name: "b", delta: 2}); err != nil {
		t.Fatalf("PushStage failed: %v", err)
	}
	if err := h.PushStage(&addStage{name: "a", delta: 3}); err == nil {
		t.Error("PushStage accepted a duplicate name")
	}

	want := []string{"a", "b"}
	got := h.Chain()
	if len(got) != len(want) {
		t.Fatalf("Chain = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Chain[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if !h.RemoveStage("a") {
		t.Error("RemoveStage failed to find existing stage")
	}
	if h.RemoveStage("missing") {
		t.Error("RemoveStage reported success for unknown stage")
	}
	if names := h.Chain(); len(names) != 1 || names[0] != "b" {
		t.Errorf("Chain after removal = %v, want [b]", names)
	}
}

func TestSetChainRejectsDuplicates(t *testing.T) {
	h := New()
	err := h.SetChain(&addStage{name: "x", delta: 1}, &mulStage{name: "x", factor: 2})
	if err == nil {
		t.Error("SetChain accepted duplicate stage names")
	}
}

func TestWriteZeroAllocsHotPath(t *testing.T) {
	h := New(dsp.NewGain("gain", 0.8), dsp.NewGate("gate", 0.001))
	h.SetSink(sink.NewNull())

	samples := make([]int32, 512)
	for i := range samples {
		samples[i] = int32(i * 1000000)
	}

	allocs := testing.AllocsPerRun(100, func() {
		_, _ = h.Write(samples)
	})

	if allocs > 0 {
		t.Errorf("Expected zero allocations in Write hot path, got %.1f", allocs)
	}
}

func BenchmarkWriteHotPath(b *testing.B) {
	h := New(dsp.NewGain("gain", 0.8), dsp.NewGate("gate", 0.001))
	h.SetSink(sink.NewNull())

	samples := make([]int32, 512)
	for i := range samples {
		samples[i] = int32(i * 1000000)
	}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = h.Write(samples)
	}
}
