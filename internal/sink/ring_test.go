// SPDX-License-Identifier: MIT
package sink

import (
	"sync"
	"testing"
)

func TestRingCapacityRounding(t *testing.T) {
	tests := []struct {
		requested int
		expected  int
	}{
		{1000, 1024},
		{1024, 1024},
		{1, 1},
		{3, 4},
	}

	for _, tt := range tests {
		r := NewRing(tt.requested)
		if r.Cap() != tt.expected {
			t.Errorf("NewRing(%d).Cap() = %d, want %d", tt.requested, r.Cap(), tt.expected)
		}
	}
}

func TestRingEnqueueFull(t *testing.T) {
	r := NewRing(8)
	samples := make([]int32, 8)

	n, err := r.Enqueue(samples)
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if n != 8 {
		t.Fatalf("Accepted %d samples, want 8", n)
	}

	// Destination is now full: the contract is 0, not an error.
	n, err = r.Enqueue(samples)
	if err != nil {
		t.Fatalf("Enqueue on full ring returned error: %v", err)
	}
	if n != 0 {
		t.Errorf("Full ring accepted %d samples, want 0", n)
	}
}

func TestRingPartialAccept(t *testing.T) {
	r := NewRing(8)

	if n, _ := r.Enqueue(make([]int32, 5)); n != 5 {
		t.Fatalf("Accepted %d samples, want 5", n)
	}

	// Only 3 slots remain; a 6-sample offer is partially accepted.
	n, err := r.Enqueue(make([]int32, 6))
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if n != 3 {
		t.Errorf("Accepted %d samples, want 3", n)
	}
}

func TestRingRoundTripWithWrap(t *testing.T) {
	r := NewRing(8)

	// Advance the indices so the next writes wrap around the buffer end.
	if n, _ := r.Enqueue([]int32{1, 2, 3, 4, 5}); n != 5 {
		t.Fatal("Setup enqueue failed")
	}
	if n := r.Dequeue(make([]int32, 5)); n != 5 {
		t.Fatal("Setup dequeue failed")
	}

	in := []int32{10, 20, 30, 40, 50, 60}
	if n, _ := r.Enqueue(in); n != 6 {
		t.Fatal("Wrapping enqueue failed")
	}

	out := make([]int32, 6)
	if n := r.Dequeue(out); n != 6 {
		t.Fatal("Wrapping dequeue failed")
	}

	for i := range in {
		if out[i] != in[i] {
			t.Errorf("Sample %d: got %d, want %d", i, out[i], in[i])
		}
	}
}

func TestRingEmptyOperations(t *testing.T) {
	r := NewRing(8)

	if n := r.Dequeue(make([]int32, 4)); n != 0 {
		t.Errorf("Dequeue on empty ring = %d, want 0", n)
	}
	if n, err := r.Enqueue(nil); n != 0 || err != nil {
		t.Errorf("Enqueue(nil) = (%d, %v), want (0, nil)", n, err)
	}
	if r.Len() != 0 {
		t.Errorf("Len = %d, want 0", r.Len())
	}
}

func TestRingClosed(t *testing.T) {
	r := NewRing(8)
	if n, _ := r.Enqueue([]int32{1, 2}); n != 2 {
		t.Fatal("Setup enqueue failed")
	}

	if err := r.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if _, err := r.Enqueue([]int32{3}); err != ErrClosed {
		t.Errorf("Enqueue after Close = %v, want ErrClosed", err)
	}

	// Buffered samples stay readable for the consumer.
	out := make([]int32, 2)
	if n := r.Dequeue(out); n != 2 || out[0] != 1 || out[1] != 2 {
		t.Errorf("Dequeue after Close lost buffered samples: n=%d out=%v", n, out)
	}
}

func TestRingConcurrentProducerConsumer(t *testing.T) {
	const total = 1 << 16
	r := NewRing(1024)

	var wg sync.WaitGroup
	wg.Add(2)

	received := make([]int32, 0, total)

	go func() {
		defer wg.Done()
		sent := int32(0)
		buf := make([]int32, 64)
		for sent < total {
			n := len(buf)
			if rem := total - int(sent); rem < n {
				n = rem
			}
			for i := 0; i < n; i++ {
				buf[i] = sent + int32(i)
			}
			accepted, err := r.Enqueue(buf[:n])
			if err != nil {
				t.Errorf("Enqueue failed: %v", err)
				return
			}
			sent += int32(accepted)
		}
	}()

	go func() {
		defer wg.Done()
		buf := make([]int32, 64)
		for len(received) < total {
			n := r.Dequeue(buf)
			received = append(received, buf[:n]...)
		}
	}()

	wg.Wait()

	for i, v := range received {
		if v != int32(i) {
			t.Fatalf("Sample %d out of order: got %d", i, v)
		}
	}
}

func TestRingEnqueueZeroAllocsHotPath(t *testing.T) {
	r := NewRing(1 << 16)
	samples := make([]int32, 512)
	drain := make([]int32, 512)

	allocs := testing.AllocsPerRun(100, func() {
		_, _ = r.Enqueue(samples)
		_ = r.Dequeue(drain)
	})

	if allocs > 0 {
		t.Errorf("Expected zero allocations in ring hot path, got %.1f", allocs)
	}
}

func BenchmarkRingEnqueueDequeue(b *testing.B) {
	r := NewRing(1 << 14)
	samples := make([]int32, 512)
	drain := make([]int32, 512)

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = r.Enqueue(samples)
		_ = r.Dequeue(drain)
	}
}
